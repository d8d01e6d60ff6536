package config

import (
	"fmt"
	"strings"
	"time"

	"waysfood-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"5000"`
	GinMode   string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	DBDriver  string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN     string `envconfig:"DB_DSN" default:"waysfood.db"`
	JWTSecret string `envconfig:"ACCESS_TOKEN_SECRET" default:"waysfood_access_secret"`

	TokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`

	// Domain is the public base URL used for locally stored uploads.
	Domain        string `envconfig:"DOMAIN" default:"http://localhost:5000"`
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"uploads"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"local"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	AWSRegion     string `envconfig:"AWS_REGION" default:"ap-southeast-1"`
	AssetBaseURL  string `envconfig:"ASSET_BASE_URL"`

	StateMachineFile     string   `envconfig:"STATE_MACHINE_FILE"`
	TransactionListLimit int      `envconfig:"TRANSACTION_LIST_LIMIT" default:"10"`
	CORSOrigins          []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// OpenDB connects with the configured driver.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Transaction{},
		&models.Order{},
		&models.TransactionHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
