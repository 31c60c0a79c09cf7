package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/codeventure/warden/adapters/directory"
	"github.com/codeventure/warden/adapters/events"
	"github.com/codeventure/warden/adapters/hasher"
	"github.com/codeventure/warden/adapters/registry"
	"github.com/codeventure/warden/adapters/tokenizer"
	"github.com/codeventure/warden/config"
	"github.com/codeventure/warden/logger"
	"github.com/codeventure/warden/service"
	transport "github.com/codeventure/warden/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zl.Fatal("parse redis url", zap.Error(err))
	}
	redisClient := redis.NewClient(opts)
	defer func() { _ = redisClient.Close() }()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		zl.Fatal("redis unreachable", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		zl.Fatal("postgres unreachable", zap.Error(err))
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		zl.Fatal("create publisher", zap.Error(err))
	}

	authService := service.NewSessionService(
		directory.NewPostgresDirectory(pool),
		hasher.NewBcryptHasher(cfg.BcryptCost),
		tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret)),
		registry.NewRedisRegistry(redisClient),
		events.NewWatermillPublisher(publisher),
		zl,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	var googleLogin *transport.GoogleOAuth
	if cfg.GoogleClientID != "" {
		googleLogin = transport.NewGoogleOAuth(authService, &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}, cfg.FrontendURL)
	}

	router := transport.SetupRouter(authService, googleLogin)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		zl.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown", zap.Error(err))
	}
}
