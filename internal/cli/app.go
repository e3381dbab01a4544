// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements inkctl, the operator tool for Inkwell deployments.

Commands share one [App] that connects to PostgreSQL and loads signing keys
lazily, so a command only needs the configuration it actually uses. Tests
build an App with in-memory repositories instead.
*/
package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/inkwell/internal/core/library"
	"github.com/taibuivan/inkwell/internal/core/node"
	"github.com/taibuivan/inkwell/internal/platform/config"
	"github.com/taibuivan/inkwell/internal/platform/constants"
	"github.com/taibuivan/inkwell/internal/platform/migration"
	pgstore "github.com/taibuivan/inkwell/internal/platform/postgres"
	"github.com/taibuivan/inkwell/internal/platform/sec"
)

// Migrator is the schema migration surface used by the migrate commands.
type Migrator interface {
	Up() error
	Down(steps int) error
	Status() (migration.Status, error)
}

// TokenIssuer mints access tokens.
type TokenIssuer interface {
	GenerateAccessToken(userID int64, role sec.UserRole, timeToLive time.Duration) (string, error)
}

// App holds the dependencies of every command.
//
// Fields left nil are built on first use from the environment.
type App struct {
	Logger    *slog.Logger
	Config    *config.Config
	Nodes     node.Repository
	Purchases library.Repository
	Migrator  Migrator
	Tokens    TokenIssuer

	// Transactional overrides the configured cascade mode when set.
	Transactional *bool

	pool *pgxpool.Pool
}

func (app *App) config() (*config.Config, error) {
	if app.Config != nil {
		return app.Config, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return cfg, nil
}

// storage connects the repositories unless they were injected.
func (app *App) storage(ctx context.Context) error {
	if app.Nodes != nil && app.Purchases != nil {
		return nil
	}

	cfg, err := app.config()
	if err != nil {
		return err
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, app.Logger)
	if err != nil {
		return err
	}

	app.pool = pool
	app.Nodes = node.NewRepository(pool)
	app.Purchases = library.NewRepository(pool)
	return nil
}

func (app *App) migrator() (Migrator, error) {
	if app.Migrator != nil {
		return app.Migrator, nil
	}

	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	app.Migrator = migration.NewRunner(cfg.DatabaseURL, cfg.MigrationPath, app.Logger)
	return app.Migrator, nil
}

func (app *App) issuer() (TokenIssuer, error) {
	if app.Tokens != nil {
		return app.Tokens, nil
	}

	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	tokens, err := sec.LoadTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return nil, err
	}
	app.Tokens = tokens
	return tokens, nil
}

func (app *App) transactional() bool {
	if app.Transactional != nil {
		return *app.Transactional
	}
	if app.Config != nil {
		return app.Config.CascadeTransactional
	}
	return true
}

// Close releases connections opened by the commands.
func (app *App) Close() {
	if app.pool != nil {
		app.pool.Close()
	}
}
