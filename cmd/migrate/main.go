package main

import (
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/quizduel-api/internal/config"
)

// Утилита миграций для случаев, когда нужно накатить/откатить схему
// вне запуска API (CI, ручное восстановление после dirty state).
func main() {
	var (
		down  = flag.Bool("down", false, "откатить одну миграцию вместо наката")
		force = flag.Int("force", -1, "принудительно выставить версию (сброс dirty state)")
		path  = flag.String("path", "migrations", "каталог с файлами миграций")
	)
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Не удалось открыть соединение с БД: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("БД недоступна: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("Не удалось создать драйвер миграций: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+*path, "postgres", driver)
	if err != nil {
		log.Fatalf("Не удалось инициализировать мигратор: %v", err)
	}

	switch {
	case *force >= 0:
		if err := m.Force(*force); err != nil {
			log.Fatalf("Force(%d) завершился ошибкой: %v", *force, err)
		}
		log.Printf("Версия схемы принудительно установлена: %d", *force)
	case *down:
		if err := m.Steps(-1); err != nil {
			log.Fatalf("Откат миграции завершился ошибкой: %v", err)
		}
		log.Println("Одна миграция откатана")
	default:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Накат миграций завершился ошибкой: %v", err)
		}
		version, dirty, _ := m.Version()
		log.Printf("Схема актуальна: версия %d, dirty=%t", version, dirty)
	}
}
