// Package cache backs the process-wide state the core holds: the bearer
// token cache and the bot-chat-list cache. Both are rebuildable from the
// downstream API and may be discarded safely, so a JetStream KV bucket is
// used when NATS is configured and an in-memory map otherwise.
package cache

import (
	"context"
	"sync"
	"time"

	"arxivsync/internal/errors"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Store is the minimal get/put/delete contract both backends satisfy.
// Values are opaque byte payloads; callers own serialization.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NATSConfig mirrors the connection fields the messaging client needs,
// narrowed to what the cache bucket requires.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	ClientID      string `mapstructure:"client_id"`
	BucketName    string `mapstructure:"bucket_name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// natsStore is a JetStream KV-backed Store.
type natsStore struct {
	conn *nats.Conn
	kv   jetstream.KeyValue
}

// NewNATSStore connects to NATS and opens (creating if absent) the KV
// bucket used for cache entries.
func NewNATSStore(ctx context.Context, cfg NATSConfig) (Store, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientID),
		nats.Timeout(cfg.ConnectTimeout),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, errors.NewCacheError("connecting to cache backend", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.NewCacheError("opening jetstream context", err)
	}

	kv, err := js.KeyValue(ctx, cfg.BucketName)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: cfg.BucketName})
		if err != nil {
			conn.Close()
			return nil, errors.NewCacheError("creating cache bucket", err)
		}
	}

	return &natsStore{conn: conn, kv: kv}, nil
}

func (s *natsStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if err == jetstream.ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, errors.NewCacheError("reading cache entry", err)
	}
	return entry.Value(), true, nil
}

// Put writes value under key. The ttl argument is not applied: entries in
// the NATS bucket persist until they are overwritten or deleted.
func (s *natsStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.kv.Put(ctx, key, value)
	if err != nil {
		return errors.NewCacheError("writing cache entry", err)
	}
	return nil
}

func (s *natsStore) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil && err != jetstream.ErrKeyNotFound {
		return errors.NewCacheError("deleting cache entry", err)
	}
	return nil
}

// Close releases the underlying NATS connection.
func (s *natsStore) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}

// memoryStore is the in-memory fallback used when NATS is unconfigured.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryStore returns a Store backed by a plain map, with lazy
// expiry checked on Get.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *memoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, expires: expires}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
