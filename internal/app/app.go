package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/capitalmind/bot/core/bootstrap"
	coretelegram "github.com/capitalmind/bot/core/telegram"
	"github.com/capitalmind/bot/core/telegram/state"
	"github.com/capitalmind/bot/internal/generation"
	"github.com/capitalmind/bot/internal/service/dialog"
	"github.com/capitalmind/bot/internal/service/entitlement"
	"github.com/capitalmind/bot/internal/service/quiz"
	"github.com/capitalmind/bot/internal/storage"
	captelegram "github.com/capitalmind/bot/internal/telegram"
)

// App holds the wired application: storage, services, and handlers.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	handlers *captelegram.Handlers
}

// Bootstrap initializes infrastructure (logger, database, migrations) and
// wires the service graph.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	accounts := storage.NewAccounts(res.DB)
	quota := entitlement.New(accounts, cfg.Quota.FreeLimit)
	generator := generation.NewClient(cfg.OpenAI)

	dialogSvc := dialog.New(dialog.Options{
		Store:         accounts,
		Quota:         quota,
		Quiz:          quiz.New(),
		Generator:     generator,
		ProPriceStars: cfg.Payments.PriceStars,
	})

	handlers := captelegram.New(captelegram.Options{
		Accounts: accounts,
		Dialog:   dialogSvc,
		Quota:    quota,
		FSM:      state.NewMemoryManager(),
		AdminID:  cfg.Core.Telegram.AdminID,
		Payments: cfg.Payments,
	})

	return &App{cfg: cfg, db: res.DB, handlers: handlers}, nil
}

// TelegramRunOptions builds the route table and middleware chain for the
// core Telegram runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      a.handlers.Routes(reg),
	}, nil
}

// Close releases held infrastructure.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
