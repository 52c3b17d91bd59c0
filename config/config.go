package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/yeremiapane/camarero-fulfillment/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"mysql"`
	DBDSN       string `envconfig:"DB_DSN" default:"root:root@tcp(127.0.0.1:3306)/camarero?charset=utf8mb4&parseTime=True&loc=UTC"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	KdsCacheTTL  time.Duration `envconfig:"KDS_CACHE_TTL" default:"3s"`
	WebhookURL   string        `envconfig:"AUDIT_WEBHOOK_URL"`
	WebhookTTL   time.Duration `envconfig:"AUDIT_WEBHOOK_TIMEOUT" default:"5s"`
	RateLimitRPS float64       `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateBurst    int           `envconfig:"RATE_LIMIT_BURST" default:"40"`
	CORSOrigin   string        `envconfig:"CORS_ALLOW_ORIGIN" default:"*"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads an optional env file and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			utils.InfoLogger.Printf("Warning: %s not loaded: %v", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "read configuration")
	}
	if cfg.DBDriver != "mysql" && cfg.DBDriver != "sqlite" {
		return nil, errors.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		dialector = mysql.Open(cfg.DBDSN)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "release" {
		logLevel = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.DBDriver)
	}

	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}
