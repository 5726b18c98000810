// Package app assembles the storefront from its configuration.
//
// New builds every long-lived handle (store, cache, disk, worker pool, event
// bus, token issuer, services) once and injects them where they are used;
// nothing is kept in package-level state. Commands in commands.go drive it:
//
//	storefront serve        # HTTP (+ gRPC when GRPC_PORT is set)
//	storefront seed         # starter catalog
//	storefront db:indexes   # unique and search indexes
//	storefront route:list
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gographql "github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/schema"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/broker"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// catalogEvents are pushed to WebSocket subscribers.
var catalogEvents = []string{services.EventItemCreated, services.EventItemUpdated, services.EventItemDeleted}

// App is the assembled application.
type App struct {
	Config *config.Config
	Log    *slog.Logger

	Mongo   *database.Mongo // nil with the memory driver
	Store   *repositories.Store
	Cache   cache.Store
	Disk    storage.Disk
	Pool    *workerpool.Pool
	Bus     *event.Dispatcher
	Hub     *ws.Hub
	Tokens  *auth.TokenIssuer
	Limiter *middleware.RateLimiter

	Auth  *services.AuthService
	Items *services.ItemService
	Cart  *services.CartService

	Schema gographql.Schema

	publisher *broker.Publisher
	logSink   *logger.MongoHandler
}

// New connects the configured backends and wires the services. On error
// everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg, Log: logger.Setup(cfg)}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
		}
	}()

	if err = a.openStore(ctx); err != nil {
		return nil, err
	}
	if a.Cache, err = cache.New(ctx, cfg); err != nil {
		return nil, err
	}
	if a.Disk, err = storage.New(ctx, cfg); err != nil {
		return nil, err
	}

	a.Pool = workerpool.New(cfg.Workers)
	a.Bus = event.NewDispatcher(a.Pool)
	a.Hub = ws.NewHub(cfg.CORSOrigins)
	a.listen()

	a.Tokens = auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	a.Limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)

	a.Auth = services.NewAuthService(a.Store.Users, auth.NewBcryptHasher(), a.Tokens)
	a.Items = services.NewItemService(a.Store.Items, services.ItemServiceOptions{
		Cache:    a.Cache,
		CacheTTL: cfg.CacheTTL,
		Events:   a.Bus,
		Disk:     a.Disk,
	})
	a.Cart = services.NewCartService(a.Store.Cart, a.Store.Items, a.Bus)

	if a.Schema, err = schema.New(a.Items, a.Cart); err != nil {
		return nil, fmt.Errorf("app: graphql schema: %w", err)
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.DBDriver {
	case "memory":
		a.Store = repositories.NewMemoryStore()
		a.Log.Warn("using the in-memory store; data is lost on exit")
		return nil
	case "mongo", "":
		m, err := database.Connect(ctx, a.Config)
		if err != nil {
			return err
		}
		a.Mongo = m
		a.Store = repositories.NewMongoStore(m)

		if a.Config.LogMongo {
			a.logSink = logger.NewMongoHandler(ctx, m.DB.Collection(database.Logs), slog.LevelInfo)
			a.Log = logger.Setup(a.Config, a.logSink)
		}
		return nil
	default:
		return fmt.Errorf("app: unknown db driver %q", a.Config.DBDriver)
	}
}

// listen registers the event listeners.
func (a *App) listen() {
	a.Bus.Listen(event.Wildcard, func(ctx context.Context, e event.Event) error {
		logger.WithCtx(ctx).Debug("event", "name", e.Name, "request_id", e.RequestID)
		return nil
	})

	for _, name := range catalogEvents {
		a.Bus.Listen(name, a.Hub.Handle)
	}

	if len(a.Config.KafkaBrokers) > 0 {
		a.publisher = broker.NewKafka(a.Config.KafkaBrokers, a.Config.KafkaTopic)
		a.Bus.Listen(event.Wildcard, a.publisher.Handle)
		a.Log.Info("publishing events to kafka",
			"brokers", strings.Join(a.Config.KafkaBrokers, ","),
			"topic", a.Config.KafkaTopic,
		)
	}
}

// Background starts the hub loop and the rate-limiter janitor; both stop
// with ctx.
func (a *App) Background(ctx context.Context) {
	go a.Hub.Run(ctx)
	go a.Limiter.Janitor(ctx, time.Minute)
}

// Close drains queued events and releases every backend. Call it after the
// HTTP server has stopped accepting requests.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Pool != nil {
		a.Pool.Shutdown()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close kafka: %w", err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close cache: %w", err))
		}
	}
	if a.logSink != nil {
		a.logSink.Close()
		a.Log = logger.Setup(a.Config)
	}
	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("app: close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
