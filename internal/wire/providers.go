// Package wire holds the dependency-injection provider functions for the
// pipeline, assembled by Wire into the binary's runtime graph.
package wire

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/wire"

	"arxivsync/internal/acquisition"
	"arxivsync/internal/cache"
	"arxivsync/internal/config"
	"arxivsync/internal/feishu"
	"arxivsync/internal/notify"
	"arxivsync/internal/sync"
)

// ConfigProviderSet loads configuration and builds the structured logger.
var ConfigProviderSet = wire.NewSet(
	config.LoadConfig,
	ProvideLogger,
)

// CacheProviderSet provides the token/chat-list cache backend.
var CacheProviderSet = wire.NewSet(
	ProvideCacheStore,
)

// FeishuProviderSet provides the token manager and remote table client.
var FeishuProviderSet = wire.NewSet(
	ProvideTokenManager,
	ProvideTableClient,
)

// PipelineProviderSet provides the acquisition engine, sync engine, and
// notifier.
var PipelineProviderSet = wire.NewSet(
	ProvideAcquisitionEngine,
	ProvideSyncEngine,
	ProvideNotifier,
)

// ApplicationProviderSet combines every provider set into the full graph.
var ApplicationProviderSet = wire.NewSet(
	ConfigProviderSet,
	CacheProviderSet,
	FeishuProviderSet,
	PipelineProviderSet,
)

// ProvideLogger builds the structured logger per the configured level,
// format, and output destination.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	return config.NewLogger(cfg)
}

// ProvideCacheStore opens the NATS-backed cache bucket when configured,
// starting an in-process server first if embedded mode is on, and falls
// back to an in-memory store when NATS is disabled or unreachable.
func ProvideCacheStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	if !cfg.NATS.Enabled {
		logger.Info("cache: NATS disabled, using in-memory store")
		return cache.NewMemoryStore(), nil
	}

	url := cfg.NATS.URL
	if cfg.NATS.Embedded.Enabled {
		embedded, err := cache.NewEmbeddedServer(cache.EmbeddedConfig{
			Host:      cfg.NATS.Embedded.Host,
			Port:      cfg.NATS.Embedded.Port,
			StoreDir:  cfg.NATS.Embedded.StoreDir,
			JetStream: true,
		}, logger)
		if err != nil {
			logger.Warn("cache: embedded server failed to start, falling back to in-memory store", slog.String("error", err.Error()))
			return cache.NewMemoryStore(), nil
		}
		url = embedded.ClientURL()
	}

	store, err := cache.NewNATSStore(ctx, cache.NATSConfig{
		URL:            url,
		ClientID:       cfg.NATS.ClientID,
		BucketName:     cfg.NATS.BucketName,
		ConnectTimeout: config.ParseDuration(cfg.NATS.ConnectTimeout, 5*time.Second),
	})
	if err != nil {
		logger.Warn("cache: NATS unavailable, falling back to in-memory store", slog.String("error", err.Error()))
		return cache.NewMemoryStore(), nil
	}
	return store, nil
}

// ProvideTokenManager builds the bearer-token manager for the feishu app
// credential set.
func ProvideTokenManager(cfg *config.Config, store cache.Store, logger *slog.Logger) *feishu.TokenManager {
	return feishu.NewTokenManager(cfg.Feishu.BaseURL, cfg.Feishu.AppID, cfg.Feishu.AppSecret, cfg.Feishu.UserToken, store, logger)
}

// ProvideTableClient builds the remote table/chat API client.
func ProvideTableClient(cfg *config.Config, tokens *feishu.TokenManager, logger *slog.Logger) *feishu.TableClient {
	return feishu.NewTableClient(cfg.Feishu.BaseURL, tokens, logger)
}

// ProvideAcquisitionEngine builds the ArXiv acquisition engine from
// configuration.
func ProvideAcquisitionEngine(cfg *config.Config, logger *slog.Logger) *acquisition.Engine {
	acqCfg := acquisition.Config{
		BaseURL:              cfg.ArXiv.BaseURL,
		RequestTimeout:       config.ParseDuration(cfg.ArXiv.RequestTimeout, 30*time.Second),
		MinRequestInterval:   config.ParseDuration(cfg.ArXiv.MinRequestInterval, 3*time.Second),
		MaxRetries:           cfg.ArXiv.MaxRetries,
		PageSizes:            cfg.ArXiv.PageSizes,
		EmptyPageStreakLimit: cfg.ArXiv.EmptyPageStreakLimit,
		MaxDaysPerBatch:      cfg.ArXiv.MaxDaysPerBatch,
		BatchOverlapDays:     cfg.ArXiv.BatchOverlapDays,
		MinBatchInterval:     config.ParseDuration(cfg.ArXiv.MinBatchInterval, time.Second),
	}
	return acquisition.NewEngine(acqCfg, logger)
}

// ProvideSyncEngine builds the sync engine over the remote table client.
func ProvideSyncEngine(tables *feishu.TableClient, logger *slog.Logger) *sync.Engine {
	return sync.NewEngine(tables, logger)
}

// chatAPIAdapter narrows *feishu.TableClient to notify.ChatAPI.
type chatAPIAdapter struct {
	tables *feishu.TableClient
}

func (a chatAPIAdapter) ListChats(ctx context.Context) ([]notify.Chat, error) {
	chats, err := a.tables.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]notify.Chat, len(chats))
	for i, c := range chats {
		out[i] = notify.Chat{ChatID: c.ChatID, Name: c.Name}
	}
	return out, nil
}

func (a chatAPIAdapter) SendMessage(ctx context.Context, chatID, msgType, content string) error {
	return a.tables.SendMessage(ctx, chatID, msgType, content)
}

// ProvideNotifier builds the notifier over the remote chat API, fronted
// by a TTL cache on the chat roster.
func ProvideNotifier(cfg *config.Config, tables *feishu.TableClient, store cache.Store, logger *slog.Logger) *notify.Notifier {
	chats := notify.NewCachedChatAPI(chatAPIAdapter{tables: tables}, store, logger)
	return notify.NewNotifier(chats, cfg.Feishu.MinPapersThreshold, logger)
}

// ProvideDevelopmentConfig loads configuration, falling back to
// development defaults if loading or validation fails for any reason.
func ProvideDevelopmentConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = &config.Config{}
		cfg.Server.Mode = "debug"
		cfg.Server.Port = 8080
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
		cfg.Logging.Output = "stdout"
		cfg.ArXiv.BaseURL = "http://export.arxiv.org/api/query"
	}
	return cfg
}
