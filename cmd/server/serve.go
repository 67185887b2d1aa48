package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ucpm/scrum-api/internal/auth"
	"github.com/ucpm/scrum-api/internal/database"
	"github.com/ucpm/scrum-api/internal/logging"
	"github.com/ucpm/scrum-api/internal/metrics"
	"github.com/ucpm/scrum-api/internal/policy"
	"github.com/ucpm/scrum-api/internal/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	// Running the binary without a subcommand serves.
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.GinMode)

	if err := database.Migrate(); err != nil {
		return err
	}

	table := policy.Default()
	if cfg.Policy.File != "" {
		table, err = policy.LoadFile(cfg.Policy.File)
		if err != nil {
			return err
		}
	}
	logging.Logger.WithField("version", table.Version()).Info("Permission policy loaded")

	m := metrics.New()
	sqlDB, err := database.GetDB().DB()
	if err != nil {
		return err
	}
	m.RegisterDBStats(sqlDB, cfg.Database.Driver)

	engine := router.New(router.Deps{
		DB:             database.GetDB(),
		Tokens:         auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL),
		Policy:         table,
		Metrics:        m,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.WithField("addr", cfg.Addr()).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}
	logging.Logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
