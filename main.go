package main

import (
	"context"
	"fmt"
	"time"

	"github.com/saas-webapp/web/internal/client"
	"github.com/saas-webapp/web/internal/config"
	"github.com/saas-webapp/web/internal/db"
	"github.com/saas-webapp/web/internal/handler"
	"github.com/saas-webapp/web/internal/service"
	"github.com/saas-webapp/web/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// @title SaaS Web Session Gateway
// @version 1.0
// @description Relays credentials to the auth backend and keeps the browser session in sync.
// @BasePath /
func main() {
	dotEnvLoaded := config.LoadDotEnv()
	cfg := config.Load()

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !dotEnvLoaded {
		logger.Info("No .env file found, relying on system env vars")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.Backend.BaseURL == "" {
		logger.Warn("API_URL is not set; login requests will fail")
	}

	ctx := context.Background()

	sessionStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open session store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()
	logger.Info("session store ready", zap.String("driver", cfg.Store.Driver))

	if purger, ok := sessionStore.(store.Purger); ok {
		purgeCtx, stopPurge := context.WithCancel(ctx)
		defer stopPurge()
		go store.RunPurger(purgeCtx, purger, sessionPurgeInterval, logger.Named("store"))
	}

	decoder, err := service.NewTokenDecoder(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to init token decoder", zap.Error(err))
	}
	cookies, err := service.NewSessionCookieCodec(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to init session cookie codec", zap.Error(err))
	}

	backend := client.NewBackendClient(cfg.Backend)
	relay := service.NewCredentialRelay(backend, decoder, service.DefaultExtractors(), logger.Named("relay"))
	sessions := service.NewSessionService(relay, backend, sessionStore, logger.Named("session"))

	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Cookies:        cookies,
		Sessions:       sessions,
		Logger:         logger.Named("http"),
	})

	logger.Info("server starting", zap.String("addr", cfg.Server.Addr))
	if err := router.Run(cfg.Server.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}

const sessionPurgeInterval = 10 * time.Minute

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	ttl, err := time.ParseDuration(cfg.Auth.SessionTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	switch cfg.Store.Driver {
	case "redis":
		rs, err := store.NewRedisStore(cfg.Redis, ttl)
		if err != nil {
			return nil, nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	case "postgres":
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		pg := &db.Postgres{Pool: pool, SessionTTL: ttl}
		if err := pg.EnsureSessionSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	default:
		return store.NewMemoryStoreWithTTL(ttl), func() {}, nil
	}
}
