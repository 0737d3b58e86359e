// Package pricecache caches external price lookups in memory or in Redis
package pricecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	// DefaultTTL is how long a price snapshot stays fresh
	DefaultTTL = 5 * time.Minute
	keyPrefix  = "rwmarket:price:"
)

// Store is a byte-valued TTL cache
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Name() string
	Close() error
}

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	c *gocache.Cache
}

// NewMemoryStore creates an in-memory store that purges expired entries
// every cleanup interval
func NewMemoryStore(defaultTTL, cleanup time.Duration) *MemoryStore {
	return &MemoryStore{c: gocache.New(defaultTTL, cleanup)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *MemoryStore) Name() string { return BackendMemory }

func (m *MemoryStore) Close() error {
	m.c.Flush()
	return nil
}

// RedisStore shares entries between processes through Redis
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to addr and pings it
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (r *RedisStore) Name() string { return BackendRedis }

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// Options selects and configures a store backend
type Options struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open creates the store named by opts.Backend
func Open(ctx context.Context, opts Options) (Store, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(ttl, 2*ttl), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown price cache backend %q", opts.Backend)
	}
}
