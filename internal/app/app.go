// Package app assembles the bot from configuration: storage, providers,
// services, handlers and the runtime options of the Telegram loop.
package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/kursbot/core/bootstrap"
	tg "github.com/m3rciful/kursbot/core/telegram"
	"github.com/m3rciful/kursbot/core/telegram/middleware"
	"github.com/m3rciful/kursbot/core/telegram/router"
	"github.com/m3rciful/kursbot/core/telegram/state"
	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/bot"
	"github.com/m3rciful/kursbot/internal/config"
	"github.com/m3rciful/kursbot/internal/job"
	"github.com/m3rciful/kursbot/internal/rates"
	"github.com/m3rciful/kursbot/internal/store"
)

// App holds every wired component of the bot process.
type App struct {
	cfg *config.Config
	db  *sqlx.DB
	rdb *redis.Client

	users    *store.UserRepository
	alerts   *store.AlertRepository
	provider rates.Provider
	service  *alerts.Service
	fsm      *state.Manager
	bot      *bot.Bot
}

// BootOptions tweak the wiring for different entrypoints.
type BootOptions struct {
	// SkipMigrations is set by one-shot CLIs running against an already
	// migrated database.
	SkipMigrations bool
}

// New bootstraps infrastructure and wires the application.
func New(cfg *config.Config, opts BootOptions) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:         cfg.CoreConfig(),
		Database:       cfg.Database,
		SkipMigrations: opts.SkipMigrations,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, db: res.DB}

	a.users = store.NewUserRepository(a.db)
	a.alerts = store.NewAlertRepository(a.db)

	a.provider = rates.NewHTTPProvider(cfg.Rates.URL, cfg.Rates.Timeout())
	if cfg.Redis.Addr != "" {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.provider = rates.NewCachedProvider(a.provider, a.rdb, cfg.Rates.CacheTTL())
	}

	a.service = alerts.NewService(a.alerts)
	a.fsm = state.NewManager(store.NewStateRepository(a.db))
	a.bot = bot.New(a.users, a.service, a.provider, a.fsm)

	return a, nil
}

// Engine builds an alert engine around the given notifier.
func (a *App) Engine(notifier alerts.Notifier) *alerts.Engine {
	return alerts.NewEngine(a.alerts, a.provider, notifier)
}

// Users exposes the user repository for entrypoint wiring.
func (a *App) Users() *store.UserRepository {
	return a.users
}

// Close releases infrastructure handles.
func (a *App) Close() error {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return a.db.Close()
}

// TelegramRunOptions builds the runtime options of the long-running bot.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()

	reg := tg.NewRegistry()
	a.bot.Register(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.fsm, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	var middlewares []tg.Middleware
	if core.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(core.RateLimit.ExcludeUpdates))
		for _, kind := range core.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		middlewares = append(middlewares, tg.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(core.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			engine := a.Engine(bot.NewNotifier(rt.Bot, a.users))
			if interval := a.cfg.Alerts.CycleInterval(); interval > 0 {
				go job.NewAlertPoller(engine, interval).Run(ctx)
			}
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			return a.Close()
		},
	}, nil
}
