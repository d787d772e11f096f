package cache

import (
	"fmt"
	"log/slog"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// EmbeddedServer wraps an in-process NATS server, started when no
// external NATS deployment is configured but a JetStream-backed cache is
// still wanted (development and single-box deployments).
type EmbeddedServer struct {
	server *natsserver.Server
	logger *slog.Logger
}

// EmbeddedConfig parameterizes the in-process server.
type EmbeddedConfig struct {
	Host      string
	Port      int
	StoreDir  string
	JetStream bool
}

// NewEmbeddedServer constructs and starts an in-process NATS server,
// blocking until it is ready for client connections.
func NewEmbeddedServer(cfg EmbeddedConfig, logger *slog.Logger) (*EmbeddedServer, error) {
	opts := &natsserver.Options{
		Host:      cfg.Host,
		Port:      cfg.Port,
		JetStream: cfg.JetStream,
		StoreDir:  cfg.StoreDir,
	}

	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded cache server: %w", err)
	}

	srv.SetLoggerV2(newSlogBridge(logger), false, false, false)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		return nil, fmt.Errorf("embedded cache server did not become ready")
	}

	logger.Info("cache: embedded server ready", slog.String("url", srv.ClientURL()))
	return &EmbeddedServer{server: srv, logger: logger}, nil
}

// ClientURL returns the URL client connections should target.
func (e *EmbeddedServer) ClientURL() string {
	return e.server.ClientURL()
}

// Shutdown stops the embedded server.
func (e *EmbeddedServer) Shutdown() {
	e.server.Shutdown()
}

// slogBridge adapts the server's verbose logger interface onto slog.
type slogBridge struct {
	logger *slog.Logger
}

func newSlogBridge(logger *slog.Logger) *slogBridge {
	return &slogBridge{logger: logger}
}

func (b *slogBridge) Noticef(format string, v ...interface{}) { b.logger.Info(fmt.Sprintf(format, v...)) }
func (b *slogBridge) Warnf(format string, v ...interface{})   { b.logger.Warn(fmt.Sprintf(format, v...)) }
func (b *slogBridge) Fatalf(format string, v ...interface{})  { b.logger.Error(fmt.Sprintf(format, v...)) }
func (b *slogBridge) Errorf(format string, v ...interface{})  { b.logger.Error(fmt.Sprintf(format, v...)) }
func (b *slogBridge) Debugf(format string, v ...interface{})  { b.logger.Debug(fmt.Sprintf(format, v...)) }
func (b *slogBridge) Tracef(format string, v ...interface{})  { b.logger.Debug(fmt.Sprintf(format, v...)) }
