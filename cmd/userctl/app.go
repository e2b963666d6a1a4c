package main

import (
	"context"

	"github.com/JonMunkholm/useradmin/internal/config"
	"github.com/JonMunkholm/useradmin/internal/core"
	"github.com/JonMunkholm/useradmin/internal/store/postgres"
)

// app wires commands to configuration and storage. Tests replace both.
type app struct {
	loadConfig func() (*config.Config, error)
	openStores func(ctx context.Context, cfg *config.Config) (core.Stores, func(), error)
}

func defaultApp() *app {
	return &app{
		loadConfig: config.Load,
		openStores: func(ctx context.Context, cfg *config.Config) (core.Stores, func(), error) {
			pool, err := postgres.Connect(ctx, cfg.Database)
			if err != nil {
				return core.Stores{}, nil, err
			}
			return postgres.New(pool).Stores(), pool.Close, nil
		},
	}
}

// service loads configuration and returns a Service over the configured
// stores. The caller must run the returned close function.
func (a *app) service(ctx context.Context) (*core.Service, *config.Config, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, nil, withCode(exitUsage, err)
	}

	stores, closeFn, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	svc := core.NewService(stores,
		core.WithImportLimiter(core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
		core.WithImportTimeout(cfg.Import.Timeout),
		core.WithInvitationTTL(cfg.Invitation.TTL),
	)
	return svc, cfg, closeFn, nil
}
