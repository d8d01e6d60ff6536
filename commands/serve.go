package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waysfood-api/config"
	"waysfood-api/middleware"
	"waysfood-api/routes"
	"waysfood-api/statemachine"
	"waysfood-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Serve flags
	port        string
	skipMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not auto-migrate on startup")
}

func runServe(ctx context.Context) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if port != "" {
		cfg.Port = port
	}
	if !skipMigrate {
		if err := config.Migrate(db); err != nil {
			return err
		}
	}

	machine, err := statemachine.LoadFile(cfg.StateMachineFile)
	if err != nil {
		return fmt.Errorf("failed to load state machine: %w", err)
	}

	images, uploadDir, err := openImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	router := routes.NewRouter(routes.Options{
		DB:          db,
		Images:      images,
		Machine:     machine,
		Tokens:      middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Logger:      logger,
		ListLimit:   cfg.TransactionListLimit,
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.StorageDriver),
			zap.Int("transitions", len(machine.Transitions())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("Server exited")
	return nil
}

// openImageStore returns the configured image store and, for local storage,
// the directory to serve at /uploads.
func openImageStore(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	switch cfg.StorageDriver {
	case "s3":
		store, err := storage.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.AssetBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case "local", "":
		store, err := storage.NewLocalStore(cfg.UploadDir, cfg.Domain)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}
