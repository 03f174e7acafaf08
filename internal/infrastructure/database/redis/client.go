// Package redis provides the search-response cache backed by a standalone
// Redis instance. The cache is optional; when disabled the search service
// talks to postgres and the external sources directly.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/molsearch/internal/config"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Client
// ─────────────────────────────────────────────────────────────────────────────

var errClientClosed = errors.New(errors.ErrCodeCacheError, "redis client is closed")

// Client wraps a go-redis client with a closed flag so commands issued after
// Close fail fast instead of hitting a torn-down connection pool.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient connects to the configured Redis instance and verifies the
// connection with a ping before returning.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("redis")

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingTimeout := cfg.DialTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to connect to redis")
	}

	log.Info("connected to redis",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB),
	)

	return &Client{rdb: rdb, logger: log}, nil
}

// Close releases the connection pool. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rdb.Close()
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// HealthCheck pings the server; used by the readiness probe.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.isClosed() {
		return errClientClosed
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis ping failed")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Command wrappers
// ─────────────────────────────────────────────────────────────────────────────

func errStringCmd(err error) *redis.StringCmd {
	cmd := redis.NewStringCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errStatusCmd(err error) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errIntCmd(err error) *redis.IntCmd {
	cmd := redis.NewIntCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

// Get retrieves the value for a key.
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	if c.isClosed() {
		return errStringCmd(errClientClosed)
	}
	return c.rdb.Get(ctx, key)
}

// Set stores a value with a TTL. A zero TTL means no expiry.
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if c.isClosed() {
		return errStatusCmd(errClientClosed)
	}
	return c.rdb.Set(ctx, key, value, ttl)
}

// Del removes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		return errIntCmd(errClientClosed)
	}
	return c.rdb.Del(ctx, keys...)
}

// Exists reports how many of the given keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		return errIntCmd(errClientClosed)
	}
	return c.rdb.Exists(ctx, keys...)
}

// TTL returns the remaining lifetime of a key.
func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	if c.isClosed() {
		cmd := redis.NewDurationCmd(context.Background(), time.Second)
		cmd.SetErr(errClientClosed)
		return cmd
	}
	return c.rdb.TTL(ctx, key)
}

// Scan iterates keys matching a pattern; used to invalidate search entries
// after an upsert changes the local corpus.
func (c *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	return c.rdb.Scan(ctx, cursor, match, count)
}
