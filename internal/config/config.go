package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Game     GameConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// MaxOpenConns/MaxIdleConns — размер пула соединений. Игровые запросы
	// короткие, поэтому умеренного пула хватает даже под пиковым трафиком.
	MaxOpenConns int `mapstructure:"max_open_conns"`
	MaxIdleConns int `mapstructure:"max_idle_conns"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single' (для обратной совместимости).
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff/MaxRetryBackoff: интервалы между попытками (в миллисекундах)
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig содержит настройки проверки JWT. Выпуск токенов — обязанность
// внешнего identity-сервиса, ядро токены только валидирует.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// GameConfig содержит игровые настройки ядра матчей и турниров
type GameConfig struct {
	// WaitingTTLMinutes — TTL матча/турнира в ожидании соперников
	WaitingTTLMinutes int `mapstructure:"waiting_ttl_minutes"`
	// ActiveTTLMinutes — TTL активного матча/турнира
	ActiveTTLMinutes int `mapstructure:"active_ttl_minutes"`
	// DailyMatchLimit — базовый дневной лимит создания матчей
	DailyMatchLimit int `mapstructure:"daily_match_limit"`
	// DailyTournamentLimit — базовый дневной лимит создания турниров
	DailyTournamentLimit int `mapstructure:"daily_tournament_limit"`
	// SweepIntervalMinutes — период запуска sweeper'а истекших записей
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
	// RandomizeSeeding — случайный посев полуфиналов вместо порядка присоединения
	RandomizeSeeding bool `mapstructure:"randomize_seeding"`
}

// WaitingTTL возвращает TTL ожидания как Duration
func (g *GameConfig) WaitingTTL() time.Duration {
	return time.Duration(g.WaitingTTLMinutes) * time.Minute
}

// ActiveTTL возвращает TTL активной игры как Duration
func (g *GameConfig) ActiveTTL() time.Duration {
	return time.Duration(g.ActiveTTLMinutes) * time.Minute
}

// SweepInterval возвращает период sweeper'а как Duration
func (g *GameConfig) SweepInterval() time.Duration {
	return time.Duration(g.SweepIntervalMinutes) * time.Minute
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("database.max_open_conns", 25)
	vip.SetDefault("database.max_idle_conns", 10)
	vip.SetDefault("game.waiting_ttl_minutes", 30)
	vip.SetDefault("game.active_ttl_minutes", 120)
	vip.SetDefault("game.daily_match_limit", 10)
	vip.SetDefault("game.daily_tournament_limit", 3)
	vip.SetDefault("game.sweep_interval_minutes", 60)
	vip.SetDefault("game.randomize_seeding", false)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	vip.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции JWT
	vip.BindEnv("jwt.secret", "JWT_SECRET")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// Привязка для игровых настроек
	vip.BindEnv("game.waiting_ttl_minutes", "GAME_WAITING_TTL_MINUTES")
	vip.BindEnv("game.active_ttl_minutes", "GAME_ACTIVE_TTL_MINUTES")
	vip.BindEnv("game.daily_match_limit", "GAME_DAILY_MATCH_LIMIT")
	vip.BindEnv("game.daily_tournament_limit", "GAME_DAILY_TOURNAMENT_LIMIT")
	vip.BindEnv("game.sweep_interval_minutes", "GAME_SWEEP_INTERVAL_MINUTES")
	vip.BindEnv("game.randomize_seeding", "GAME_RANDOMIZE_SEEDING")

	// 3. Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Не страшно, если файла нет: есть BindEnv и дефолты
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("Game: waiting TTL %dm, active TTL %dm, limits %d/%d, sweep %dm",
			cfg.Game.WaitingTTLMinutes, cfg.Game.ActiveTTLMinutes,
			cfg.Game.DailyMatchLimit, cfg.Game.DailyTournamentLimit,
			cfg.Game.SweepIntervalMinutes)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if os.Getenv("GIN_MODE") == "release" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
	}

	return &cfg, nil
}
