package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/notify"
	"userauth/internal/repository"
	"userauth/internal/service"
)

const fetchTimeout = 30 * time.Second

func main() {
	source := flag.String("source", "cmd/seed/users.example.json", "JSON file path or http(s) URL with an array of users")
	flag.Parse()

	if err := run(*source); err != nil {
		logging.New(os.Stderr, "error").Error(context.Background(), "seed failed", "error", err)
		os.Exit(1)
	}
}

func run(source string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	repo, closeRepo, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo(ctx)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Seeding never sends mail.
	sender, err := notify.NewSMTPSender("", "", "", "", false, logger)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		repo,
		auth.NewBcryptHasher(auth.DefaultBcryptCost),
		auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn),
		auth.NewTokenStore(cacheClient),
		sender,
		cacheClient,
		logger,
		service.Options{RepositoryTimeout: cfg.RepositoryTimeout},
	)

	logger.Info(ctx, "loading users", "source", source)
	users, err := loadUsers(ctx, source)
	if err != nil {
		return err
	}

	created, skipped, err := seedUsers(ctx, authService, users, logger)
	if err != nil {
		return err
	}
	logger.Info(ctx, "seed completed", "created", created, "skipped", skipped, "total", len(users))
	return nil
}

// loadUsers reads the seed payload from a local file or an http(s) URL.
func loadUsers(ctx context.Context, source string) ([]service.CreateUserInput, error) {
	var r io.Reader
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch users: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch users: unexpected status code %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var users []service.CreateUserInput
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	return users, nil
}

// seedUsers registers each user through the auth service so passwords are
// hashed. Emails that already exist or fail validation are skipped.
func seedUsers(ctx context.Context, svc service.AuthService, users []service.CreateUserInput, logger logging.Logger) (created, skipped int, err error) {
	for _, u := range users {
		_, err := svc.CreateUser(ctx, u)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrEmailInUse):
			logger.Info(ctx, "user exists, skipping", "email", u.Email)
			skipped++
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn(ctx, "invalid seed entry, skipping", "email", u.Email, "error", err)
			skipped++
		default:
			return created, skipped, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return created, skipped, nil
}
