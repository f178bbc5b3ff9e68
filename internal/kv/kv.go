// Package kv is the opaque string-keyed store the lead list and contact
// submissions are persisted in. Every backend stores one string value per
// key and replaces it atomically on Set.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownBackend = errors.New("unknown kv backend")

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

type Options struct {
	Backend       string
	SQLitePath    string
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MongoURI      string
	MongoDB       string
	DynamoTable   string
}

// Closer is a Store that owns a connection.
type Closer interface {
	Store
	Close() error
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Closer, error) {
	switch opts.Backend {
	case "", "sqlite":
		return NewSQLite(ctx, opts.SQLitePath)
	case "memory":
		return NewMemory(), nil
	case "redis":
		if opts.RedisURL != "" {
			return NewRedisFromURL(ctx, opts.RedisURL)
		}
		return NewRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "mongo":
		return NewMongo(ctx, opts.MongoURI, opts.MongoDB)
	case "dynamodb":
		return NewDynamo(ctx, opts.DynamoTable)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
