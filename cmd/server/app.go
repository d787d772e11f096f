package main

import (
	"log/slog"

	"arxivsync/internal/acquisition"
	"arxivsync/internal/cache"
	"arxivsync/internal/config"
	"arxivsync/internal/feishu"
	"arxivsync/internal/notify"
	"arxivsync/internal/sync"
)

// Application is the fully wired runtime graph: one acquisition engine,
// one feishu client pair, one sync engine, and one notifier, shared
// across every configured profile's pipeline run.
type Application struct {
	Config      *config.Config
	Logger      *slog.Logger
	Cache       cache.Store
	Tokens      *feishu.TokenManager
	Tables      *feishu.TableClient
	Acquisition *acquisition.Engine
	Sync        *sync.Engine
	Notifier    *notify.Notifier
}

// NewApplication assembles the Application from its resolved dependencies.
func NewApplication(
	cfg *config.Config,
	logger *slog.Logger,
	store cache.Store,
	tokens *feishu.TokenManager,
	tables *feishu.TableClient,
	acq *acquisition.Engine,
	syncEngine *sync.Engine,
	notifier *notify.Notifier,
) *Application {
	return &Application{
		Config:      cfg,
		Logger:      logger,
		Cache:       store,
		Tokens:      tokens,
		Tables:      tables,
		Acquisition: acq,
		Sync:        syncEngine,
		Notifier:    notifier,
	}
}
