package config

import (
	"errors"
	"eshop/models"
	"fmt"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"log/slog"
	"os"
	"strings"
	"time"
)

type ServerConfig struct {
	Port      string `yaml:"port"`
	APIURL    string `yaml:"apiURL"`
	PublicURL string `yaml:"publicURL"`
	LogFormat string `yaml:"logFormat"`
	LogLevel  string `yaml:"logLevel"`
}

type DatabaseConfig struct {
	Driver             string `yaml:"driver"`
	DSN                string `yaml:"dsn"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	Database           string `yaml:"database"`
	LogLevel           string `yaml:"logLevel"`
	TransactionalOrder *bool  `yaml:"transactionalOrders"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	Database int           `yaml:"database"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTTL"`
}

type UploadsConfig struct {
	Dir        string `yaml:"dir"`
	MaxGallery int    `yaml:"maxGallery"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Uploads  UploadsConfig  `yaml:"uploads"`
}

// 未提供設定檔時使用的預設設定
func Default() Config {
	transactional := true
	return Config{
		Server: ServerConfig{
			Port:      "3000",
			APIURL:    "/api/v1",
			LogFormat: "text",
			LogLevel:  "info",
		},
		Database: DatabaseConfig{
			Driver:             "sqlite",
			DSN:                "eshop.db",
			LogLevel:           "warn",
			TransactionalOrder: &transactional,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  15 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Uploads: UploadsConfig{
			Dir:        "public/uploads",
			MaxGallery: 10,
		},
	}
}

// 訂單新增與刪除是否在同一個資料庫事務內完成
func (c DatabaseConfig) TransactionalOrders() bool {
	return c.TransactionalOrder == nil || *c.TransactionalOrder
}

// 讀取設定檔並套用環境變數，filename為空則只使用預設值
func LoadConfig(filename string) (Config, error) {
	config := Default()
	if filename != "" {
		file, err := os.Open(filename)
		if err != nil {
			return config, err
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			return config, fmt.Errorf("decode %s: %w", filename, err)
		}
	}

	applyEnv(&config)

	if config.Auth.Secret == "" {
		return config, errors.New("auth.secret is required (or SECRET)")
	}
	config.Server.APIURL = "/" + strings.Trim(config.Server.APIURL, "/")
	return config, nil
}

func applyEnv(config *Config) {
	override := func(dst *string, key string) {
		if value := os.Getenv(key); value != "" {
			*dst = value
		}
	}
	override(&config.Server.Port, "PORT")
	override(&config.Server.APIURL, "API_URL")
	override(&config.Server.PublicURL, "PUBLIC_URL")
	override(&config.Database.Driver, "DB_DRIVER")
	override(&config.Database.DSN, "DB_CONNECTION")
	override(&config.Auth.Secret, "SECRET")
	override(&config.Uploads.Dir, "UPLOADS_DIR")
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
		config.Redis.Enabled = true
	}
}

// 依照設定建立slog Logger
func NewLogger(config ServerConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if config.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func (c DatabaseConfig) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case "mysql":
		dsn := c.DSN
		if c.Host != "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				c.Username,
				c.Password,
				c.Host,
				c.Port,
				c.Database,
			)
		}
		return mysql.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(c.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// 連接資料庫並建立資料表
func SetupDatabase(config DatabaseConfig) (*gorm.DB, error) {
	dialector, err := config.dialector()
	if err != nil {
		return nil, err
	}

	//參照欄位不建立外鍵，刪除時由服務層處理
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(gormLogLevel(config.LogLevel)),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	)
}

// 未啟用Redis時回傳nil
func SetupRedisConnection(config RedisConfig) *redis.Client {
	if !config.Enabled {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.Database,
	})
}
