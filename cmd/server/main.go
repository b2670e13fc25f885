package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"userauth/docs" // swagger docs
	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	"userauth/internal/handler"
	"userauth/internal/logging"
	"userauth/internal/notify"
	"userauth/internal/repository"
	"userauth/internal/router"
	"userauth/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title User Auth API
// @version 1.0
// @description User accounts with registration, login, password reset by email and JWT bearer authentication.
// @host localhost:8082
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		logging.New(os.Stderr, "error").Error(context.Background(), "server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(context.Background()); err != nil {
			logger.Warn(ctx, "close user store", "error", err)
		}
	}()
	logger.Info(ctx, "user store ready", "driver", cfg.StoreDriver)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if cacheClient == nil {
		logger.Warn(ctx, "REDIS_ADDR not set; logout revocation and single-use reset tokens are disabled")
	} else if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn(ctx, "redis unreachable; continuing without it", "error", err)
	}

	sender, err := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom, cfg.SMTPSkipVerify, logger)
	if err != nil {
		return err
	}
	if !sender.IsEnabled() {
		logger.Warn(ctx, "SMTP is not configured; password reset emails will be dropped")
	}

	// Initialize auth components
	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)
	tokenStore := auth.NewTokenStore(cacheClient)

	opts := service.Options{
		ResetURLBase:          cfg.ResetPasswordURL,
		HideUnknownResetEmail: cfg.ResetHideUnknownEmail,
		RepositoryTimeout:     cfg.RepositoryTimeout,
		NotificationTimeout:   cfg.NotificationTimeout,
	}

	// Initialize services
	authService := service.NewAuthService(repo, hasher, jwtService, tokenStore, sender, cacheClient, logger, opts)
	userService := service.NewUserService(repo, hasher, cacheClient, logger, opts)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, logger, jwtService, tokenStore, handler.NewAuthHandler(authService), handler.NewUserHandler(userService))

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}
	logger.Info(ctx, "swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info(ctx, "http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
