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

	"github.com/rs/zerolog"

	"github.com/inkwell/content-api/internal/api"
	"github.com/inkwell/content-api/internal/api/handler"
	"github.com/inkwell/content-api/internal/core/ports"
	"github.com/inkwell/content-api/internal/core/service"
	"github.com/inkwell/content-api/internal/infrastructure/cache"
	mongostore "github.com/inkwell/content-api/internal/infrastructure/db/mongo"
	"github.com/inkwell/content-api/internal/infrastructure/db/postgres"
	redisstore "github.com/inkwell/content-api/internal/infrastructure/db/redis"
	"github.com/inkwell/content-api/internal/infrastructure/queue"
	"github.com/inkwell/content-api/internal/infrastructure/security"
	"github.com/inkwell/content-api/internal/infrastructure/telemetry"
	"github.com/inkwell/content-api/internal/pkg/config"
	"github.com/inkwell/content-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: cfg.Telemetry.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.WeakSecret() {
		log.Warn().Msg("JWT_SECRET is weak; set a random value of at least 32 bytes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// closer releases one resource on shutdown.
type closer func(ctx context.Context) error

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var closers []closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown step failed")
			}
		}
	}()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	closers = append(closers, closer(shutdownTracing))

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, st.close)

	cacheStore, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closeCache)
	readThrough := cache.NewReadThrough(cacheStore, cfg.Cache.TTL, logger.Component("cache"))

	// Stopped by its closer, after srv.Shutdown has drained requests.
	pool, stopPool := startHashPool(cfg.Auth.HashWorkers, logger.Component("hash-pool"))
	closers = append(closers, stopPool)

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost, pool)
	issuer := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, cfg.Auth.JWTIssuer)

	authService := service.NewAuthService(st.users, hasher, issuer, logger.Component("auth"))
	articleService := service.NewArticleService(st.articles, readThrough, logger.Component("articles"))

	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Identity: authService,
		Articles: articleService,
		Readiness: map[string]handler.Pinger{
			cfg.Storage.Driver: st.ping,
			"cache":            readThrough.Ping,
		},
		ServiceName: cfg.Telemetry.ServiceName,
		Log:         logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage.Driver).
			Str("cache", cfg.Cache.Driver).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func startHashPool(workers int, log zerolog.Logger) (*queue.WorkerPool, closer) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := queue.NewWorkerPool(workers, log)
	pool.Start(ctx)
	return pool, func(context.Context) error {
		cancel()
		return nil
	}
}

type storage struct {
	users    ports.UserRepository
	articles ports.ArticleRepository
	ping     handler.Pinger
	close    closer
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &storage{
			users:    mongostore.NewUserRepository(db),
			articles: mongostore.NewArticleRepository(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    client.Disconnect,
		}, nil

	default:
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.MigrateOnStart {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("database migrations applied")
		}
		return &storage{
			users:    postgres.NewUserRepository(pool),
			articles: postgres.NewArticleRepository(pool),
			ping:     func(ctx context.Context) error { return postgres.Ping(ctx, pool, 2*time.Second) },
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil
	}
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Store, closer, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewCacheStore(client, cache.Namespace), func(context.Context) error { return client.Close() }, nil
	case config.CacheDriverMemcached:
		return cache.NewMemcachedStore(cache.Namespace, time.Second, cfg.Memcached.Addrs...), noop, nil
	case config.CacheDriverMemory:
		return cache.NewMemoryStore(cfg.Cache.TTL), noop, nil
	default:
		return cache.NopStore{}, noop, nil
	}
}
