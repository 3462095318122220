package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Key is the hash that holds every entry
	Key string
	// Timeout bounds each command
	Timeout time.Duration
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     "localhost:6379",
		Password: "",
		DB:       0,
		Key:      "assets:archive",
		Timeout:  5 * time.Second,
	}
}

// Redis stores entries as fields of a single Redis hash.
type Redis struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(config RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	a := NewRedisWithClient(client, config.Key, config.Timeout)

	ctx, cancel := a.context()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("archive: connect redis %s: %w", config.Addr, err)
	}
	return a, nil
}

// NewRedisWithClient creates a Redis archive over an existing client
func NewRedisWithClient(client *redis.Client, key string, timeout time.Duration) *Redis {
	if timeout <= 0 {
		timeout = DefaultRedisConfig().Timeout
	}
	return &Redis{client: client, key: key, timeout: timeout}
}

func (a *Redis) EntryNames() ([]string, error) {
	ctx, cancel := a.context()
	defer cancel()

	names, err := a.client.HKeys(ctx, a.key).Result()
	if err != nil {
		return nil, fmt.Errorf("archive: list entries: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (a *Redis) Open(name string) (Entry, error) {
	ctx, cancel := a.context()
	defer cancel()

	data, err := a.client.HGet(ctx, a.key, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", name, err)
	}
	return newBufferedEntry(name, data, a.committer(name)), nil
}

func (a *Redis) Create(name string) (Entry, error) {
	if err := a.put(name, nil); err != nil {
		return nil, err
	}
	return newBufferedEntry(name, nil, a.committer(name)), nil
}

// Close closes the Redis connection
func (a *Redis) Close() error {
	return a.client.Close()
}

func (a *Redis) committer(name string) func([]byte) error {
	return func(data []byte) error {
		return a.put(name, data)
	}
}

func (a *Redis) put(name string, data []byte) error {
	ctx, cancel := a.context()
	defer cancel()

	if err := a.client.HSet(ctx, a.key, name, data).Err(); err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	return nil
}

func (a *Redis) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}
