package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis configuration
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Close gracefully closes the Redis client
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

const (
	idempotencyPrefix    = "dispatch:idempotency:"
	mechanicLocationsKey = "mechanics:locations"
)

// ReserveIdempotencyKey claims an idempotency key for the duration of a
// submission. Returns false if another submission already holds the key.
func ReserveIdempotencyKey(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (bool, error) {
	return client.SetNX(ctx, idempotencyPrefix+key, "pending", ttl).Result()
}

// RecordIdempotentRequest stores the request id produced for a key so a
// retried submission can return the original request.
func RecordIdempotentRequest(ctx context.Context, client *redis.Client, key string, requestID int, ttl time.Duration) error {
	return client.Set(ctx, idempotencyPrefix+key, requestID, ttl).Err()
}

// LookupIdempotentRequest returns the request id previously recorded for
// a key, or 0 when the key is unknown or still pending.
func LookupIdempotentRequest(ctx context.Context, client *redis.Client, key string) (int, error) {
	val, err := client.Get(ctx, idempotencyPrefix+key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(val)
	if err != nil {
		// "pending" marker or garbage; treat as unknown
		return 0, nil
	}
	return id, nil
}

// ReleaseIdempotencyKey drops a claimed key after a failed submission so
// the caller can retry.
func ReleaseIdempotencyKey(ctx context.Context, client *redis.Client, key string) error {
	return client.Del(ctx, idempotencyPrefix+key).Err()
}

// MirrorMechanicLocation writes a mechanic's coordinates into the shared
// geo index consumed by dashboards. Dispatch matching itself reads the
// entity store, not this index.
func MirrorMechanicLocation(ctx context.Context, client *redis.Client, mechanicID int, lat, lng float64) error {
	return client.GeoAdd(ctx, mechanicLocationsKey, &redis.GeoLocation{
		Name:      strconv.Itoa(mechanicID),
		Latitude:  lat,
		Longitude: lng,
	}).Err()
}
