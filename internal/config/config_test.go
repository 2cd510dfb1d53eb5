package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

const minimalConfig = `
database:
  host: "localhost"
  user: "postgres"
  dbname: "quizduel_db"
jwt:
  secret: "test-secret"
`

func TestLoad_PoolSizeDefaults(t *testing.T) {
	// Пул соединений не задан в файле — действуют значения по умолчанию
	path := writeTestConfig(t, minimalConfig)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
}

func TestLoad_PoolSizeFromEnv(t *testing.T) {
	// Переменные окружения перекрывают и файл, и умолчания
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "5")
	path := writeTestConfig(t, minimalConfig)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	path := writeTestConfig(t, `
database:
  host: "localhost"
  user: "postgres"
  dbname: "quizduel_db"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}
