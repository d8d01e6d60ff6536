package commands

import (
	"fmt"
	"os"

	"waysfood-api/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Global flags
	dbDriver string
	dbDSN    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "waysfood",
	Short: "WaysFood - food ordering marketplace API",
	Long: `WaysFood connects customers with partner restaurants.

Commands:
  serve     start the HTTP API
  migrate   create or update the database schema
  seed      insert a demo partner with two products`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver: sqlite, mysql or postgres (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "Database DSN (overrides DB_DSN)")
}

// bootstrap loads configuration, applies flag overrides and opens the database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbDriver != "" {
		cfg.DBDriver = dbDriver
	}
	if dbDSN != "" {
		cfg.DBDSN = dbDSN
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := config.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("Database connected", zap.String("driver", cfg.DBDriver))
	return cfg, logger, db, nil
}
