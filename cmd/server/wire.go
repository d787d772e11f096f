//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	pipelinewire "arxivsync/internal/wire"
)

// InitializeApplication wires the full runtime graph from configuration.
func InitializeApplication(ctx context.Context) (*Application, error) {
	wire.Build(pipelinewire.ApplicationProviderSet, NewApplication)
	return &Application{}, nil
}
