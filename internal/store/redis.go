// Package store provides the Redis-backed remote store the publisher reads
// its sheets from. The store is read-only from this process: the ingestion
// job owns all writes.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sheet names in the remote store, prefixed with the configured namespace.
const (
	MetaSheet     = "meta"
	MegazordSheet = "megazord"
)

// ErrAbsent reports that the store is reachable but the requested sheet has
// no payload yet. Callers use this to tell "empty" apart from "down".
var ErrAbsent = errors.New("store: key absent")

// Store is a read-only view over a Redis database holding the sheets.
type Store struct {
	client *redis.Client
	prefix string
}

// Open connects to the Redis instance at redisURL and verifies the
// connection. An empty prefix leaves sheet names unprefixed.
func Open(redisURL, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Store{client: client, prefix: prefix}, nil
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Key returns the namespaced store key for a sheet name.
func (s *Store) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

// Get fetches a sheet's raw payload. Returns ErrAbsent when the key holds
// no value; any other failure is a transport error.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", name, err)
	}
	return data, nil
}

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
