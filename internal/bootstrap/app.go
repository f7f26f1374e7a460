// Package bootstrap connects the configured backends and assembles the
// services behind the HTTP API.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/checkin-system/users-api/internal/api"
	"github.com/checkin-system/users-api/internal/core/ports"
	"github.com/checkin-system/users-api/internal/core/service"
	"github.com/checkin-system/users-api/internal/infrastructure/config"
	mongostore "github.com/checkin-system/users-api/internal/infrastructure/db/mongo"
	redisstore "github.com/checkin-system/users-api/internal/infrastructure/db/redis"
	"github.com/checkin-system/users-api/internal/infrastructure/db/sqlstore"
	"github.com/checkin-system/users-api/internal/infrastructure/http/handlers"
	"github.com/checkin-system/users-api/internal/infrastructure/queue"
)

const eventDrainTimeout = 5 * time.Second

type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Store  ports.Store

	Auth     *service.AuthService
	Users    *service.UserService
	CheckIns *service.CheckInService

	health  map[string]handlers.Pinger
	closers []func() error

	StartedAt time.Time
}

// New connects every configured backend. Redis and RabbitMQ are optional and
// only dialled when their address is set.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{
		Config:    cfg,
		Log:       log,
		health:    make(map[string]handlers.Pinger),
		StartedAt: time.Now(),
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store
	app.health["database"] = store
	app.closers = append(app.closers, store.Close)
	log.Info().Str("driver", cfg.Store.Driver).Msg("store connected")

	var opts []service.CheckInOption

	if cfg.Redis.Addr != "" {
		idem, err := redisstore.Open(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.closers = append(app.closers, idem.Close)
		app.health["redis"] = idem
		opts = append(opts, service.WithIdempotency(idem, cfg.Redis.IdempotencyTTL))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := queue.Connect(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		publisher := queue.NewRabbitPublisher(conn, cfg.RabbitMQ.Queue)
		dispatcher := queue.NewDispatcher(cfg.RabbitMQ.Workers, publisher, log)
		workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
		dispatcher.Start(workerCtx)
		// Drain the dispatcher before the connection goes away, giving up on
		// whatever is still queued after eventDrainTimeout.
		app.closers = append(app.closers, publisher.Close, func() error {
			timer := time.AfterFunc(eventDrainTimeout, stopWorkers)
			defer timer.Stop()
			dispatcher.Close()
			stopWorkers()
			return nil
		})
		app.health["rabbitmq"] = publisher
		opts = append(opts, service.WithPublisher(dispatcher))
		log.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("check-in events enabled")
	}

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.Auth = service.NewAuthService(store, hasher, cfg.Auth.TokenTTL, log)
	app.Users = service.NewUserService(store, hasher, log)
	app.CheckIns = service.NewCheckInService(store, log, opts...)
	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config) (ports.Store, error) {
	if cfg.Store.Driver == "mongo" {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return mongostore.NewStore(client, db), nil
	}

	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:       cfg.Store.Driver,
		DSN:          cfg.Store.DSN,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		MaxIdleConns: cfg.Store.MaxIdleConns,
		LogQueries:   cfg.Store.LogQueries,
	})
	if err != nil {
		return nil, err
	}
	return sqlstore.NewStore(db), nil
}

// Deps exposes the assembled services to the HTTP router.
func (a *App) Deps() api.Deps {
	return api.Deps{
		Log:      a.Log,
		Auth:     a.Auth,
		Users:    a.Users,
		CheckIns: a.CheckIns,
		Health:   a.health,
		Registry: prometheus.NewRegistry(),
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
