package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishkalaria12/snap-upload/config"
	"github.com/krishkalaria12/snap-upload/database"
	"github.com/krishkalaria12/snap-upload/logger"
	"github.com/krishkalaria12/snap-upload/router"
	"github.com/krishkalaria12/snap-upload/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	connectTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the image upload HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	startedAt := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	// Without the directory or the database nothing could be stored, so
	// both are fatal at startup.
	files, err := storage.NewLocal(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	store, err := database.Open(connectCtx, database.Options{
		URL:          cfg.DatabaseURL,
		DatabaseName: cfg.DatabaseName,
		Logger:       log,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	app := router.NewApp(router.Deps{
		Config:    cfg,
		Store:     store,
		Files:     files,
		Logger:    log,
		StartedAt: startedAt,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server is listening",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("uploadDir", cfg.UploadDir))
		serveErr <- app.Listen(net.JoinHostPort("", cfg.Port))
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("server forced to shutdown: %w", err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close database: %w", err))
	}

	log.Info("Server exited")
	return runErr
}
