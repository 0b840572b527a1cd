package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keys
const (
	SettingsKey        = "settings:billing"
	InvoiceListKeyFmt  = "invoices:list:%s:%s:%d:%d"
	MpsTokenKey        = "mps:access_token"
	invoiceListPattern = "invoices:list:*"
)

var client *redis.Client

// Init initializes the Redis connection. The cache degrades gracefully:
// when Redis is unreachable every helper becomes a no-op miss.
func Init() error {
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis"
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when the cache is disabled)
func GetClient() *redis.Client {
	return client
}

// GetJSON loads a cached JSON value into dest; returns false on miss
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores a JSON value with a TTL; errors are swallowed
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

// GetString returns a cached string value, empty on miss
func GetString(ctx context.Context, key string) string {
	if client == nil {
		return ""
	}
	val, err := client.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// SetString stores a string value with a TTL
func SetString(ctx context.Context, key, value string, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, value, ttl)
}

// InvoiceListKey builds the cache key for a filtered invoice list page
func InvoiceListKey(by, value string, page, limit int) string {
	return fmt.Sprintf(InvoiceListKeyFmt, by, value, page, limit)
}

// InvalidateInvoiceLists drops every cached invoice list page. Called after
// invoice creation, status changes and billing runs.
func InvalidateInvoiceLists(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, invoiceListPattern, 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

// InvalidateSettings drops the cached settings row
func InvalidateSettings(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, SettingsKey)
}
