package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	handler "github.com/jhnwsk/spotify2tidal/internal/adapters/http"
	"github.com/jhnwsk/spotify2tidal/internal/bootstrap"
	"github.com/jhnwsk/spotify2tidal/internal/config"
	"github.com/jhnwsk/spotify2tidal/internal/logger"

	_ "github.com/jhnwsk/spotify2tidal/docs"
)

// @title			spotify2tidal API
// @version		1.0
// @description	API for migrating Spotify playlists to TIDAL.
// @description	Tracks are matched by ISRC, exact name and artist, or fuzzy similarity.

// @contact.name	spotify2tidal
// @license.name	MIT

// @host		localhost:8080
// @BasePath	/
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("SPOTIFY2TIDAL_CONFIG"))
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	h := handler.NewHandler(application.Service, log.Named("http"))
	h.RegisterRoutes(r)

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	log.Info("starting spotify2tidal API",
		zap.String("addr", addr),
		zap.Int("workers", cfg.MigrationWorkers),
		zap.Strings("sources", application.Sources.Available()),
		zap.String("swagger", "http://localhost"+addr+"/swagger/index.html"),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
