package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "API_URL", "PUBLIC_URL", "DB_DRIVER", "DB_CONNECTION", "SECRET", "UPLOADS_DIR", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: "8080"
  apiURL: /api/v2/
database:
  driver: mysql
  host: db
  port: "3306"
  username: shop
  password: pw
  database: eshop
  transactionalOrders: false
redis:
  enabled: true
  addr: cache:6379
  ttl: 30s
auth:
  secret: s3cret
  tokenTTL: 1h
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, "/api/v2", config.Server.APIURL)
	assert.Equal(t, "mysql", config.Database.Driver)
	assert.False(t, config.Database.TransactionalOrders())
	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, 30*time.Second, config.Redis.TTL)
	assert.Equal(t, time.Hour, config.Auth.TokenTTL)
	assert.Equal(t, "s3cret", config.Auth.Secret)
	// 未設定的欄位保留預設值
	assert.Equal(t, "public/uploads", config.Uploads.Dir)
	assert.Equal(t, 10, config.Uploads.MaxGallery)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET", "from-env")
	t.Setenv("PORT", "9000")
	t.Setenv("API_URL", "shop/api")
	t.Setenv("REDIS_ADDR", "redis:6379")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", config.Auth.Secret)
	assert.Equal(t, "9000", config.Server.Port)
	assert.Equal(t, "/shop/api", config.Server.APIURL)
	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.True(t, config.Database.TransactionalOrders())
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "server: [not a map"))
	assert.Error(t, err)
}

func TestDialector(t *testing.T) {
	_, err := DatabaseConfig{Driver: "postgres"}.dialector()
	assert.Error(t, err)

	dialector, err := DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}.dialector()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", dialector.Name())

	dialector, err = DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", Username: "u", Password: "p", Database: "eshop"}.dialector()
	require.NoError(t, err)
	assert.Equal(t, "mysql", dialector.Name())
}

func TestSetupDatabase_SQLite(t *testing.T) {
	db, err := SetupDatabase(DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "eshop.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)

	for _, table := range []string{"users", "categories", "products", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestSetupRedisConnection(t *testing.T) {
	assert.Nil(t, SetupRedisConnection(RedisConfig{}))

	client := SetupRedisConnection(RedisConfig{Enabled: true, Addr: "localhost:6379"})
	require.NotNil(t, client)
	assert.Equal(t, "localhost:6379", client.Options().Addr)
	require.NoError(t, client.Close())
}
