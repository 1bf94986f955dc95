package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/tastebase/backend/config"
	"github.com/tastebase/backend/internal/api"
	"github.com/tastebase/backend/internal/database"
	"github.com/tastebase/backend/internal/router"
	"github.com/tastebase/backend/internal/server"
	"github.com/tastebase/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg.ConfigureLogger()

	db, err := database.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to migrate database")
	}

	// Logout token revocation degrades gracefully without Redis.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, token revocation disabled")
		redisClient = nil
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure media storage")
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, redisClient)
	recipeService := service.NewRecipeService(db)
	mediaService := service.NewMediaService(s3Config)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, authService, mediaService),
		api.NewHealthHandler(db),
		cfg.AllowedOrigins,
	)

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logrus.WithError(err).Fatal("server error")
		}
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("shutting down")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.WithError(err).Fatal("server shutdown error")
	}
	logrus.Info("server stopped")
}
