package main

import (
	"context"
	"time"

	"Wildfund/config"
	"Wildfund/internal/domain/ledger"
	appfx "Wildfund/internal/fx"
	"Wildfund/internal/infrastructure"

	"go.uber.org/fx"
)

type ledgerDeps struct {
	Config    *config.Config
	Projects  *infrastructure.ProjectRepository
	Donations *infrastructure.DonationRepository
	Enricher  *ledger.Enricher
}

// withLedger monta o nucleo da aplicacao sem o servidor HTTP e executa fn.
func withLedger(ctx context.Context, fn func(ctx context.Context, deps *ledgerDeps) error) error {
	var deps ledgerDeps
	app := fx.New(
		appfx.CoreModule,
		fx.NopLogger,
		fx.Populate(&deps.Config, &deps.Projects, &deps.Donations, &deps.Enricher),
	)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, &deps)
}
