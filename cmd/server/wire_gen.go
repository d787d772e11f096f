// Hand-written to the shape Wire generates from wire.go.

//go:generate go run github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package main

import (
	"context"

	"arxivsync/internal/config"
	pipelinewire "arxivsync/internal/wire"
)

// InitializeApplication wires the full runtime graph from configuration.
// Mirrors what `wire` produces from cmd/server/wire.go's injector.
func InitializeApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := pipelinewire.ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	store, err := pipelinewire.ProvideCacheStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	tokens := pipelinewire.ProvideTokenManager(cfg, store, logger)
	tables := pipelinewire.ProvideTableClient(cfg, tokens, logger)
	acq := pipelinewire.ProvideAcquisitionEngine(cfg, logger)
	syncEngine := pipelinewire.ProvideSyncEngine(tables, logger)
	notifier := pipelinewire.ProvideNotifier(cfg, tables, store, logger)

	return NewApplication(cfg, logger, store, tokens, tables, acq, syncEngine, notifier), nil
}
