package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLWorkflow  = 10 * time.Minute // workflow definitions change rarely
	TTLDashboard = 30 * time.Second // approver dashboards refresh often
	TTLPost      = 1 * time.Minute
	TTLDefault   = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixWorkflow      = "workflow:"
	PrefixOwnerWorkflow = "workflow:owner:"
	PrefixDashboard     = "dashboard:"
	PrefixPost          = "post:"
)

// Service Redis-backed cache for workflow and dashboard reads
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Workflow cache
	GetWorkflow(ctx context.Context, workflowID uint64) ([]byte, error)
	SetWorkflow(ctx context.Context, workflowID uint64, data interface{}) error
	InvalidateWorkflow(ctx context.Context, workflowID uint64) error
	InvalidateOwnerWorkflow(ctx context.Context, ownerID string) error

	// Dashboard cache
	GetDashboard(ctx context.Context, viewerID string) ([]byte, error)
	SetDashboard(ctx context.Context, viewerID string, data interface{}) error
	InvalidateDashboard(ctx context.Context, viewerID string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis-backed implementation
type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis connection is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return redis.Nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *redisCache) GetWorkflow(ctx context.Context, workflowID uint64) ([]byte, error) {
	if c.client == nil {
		return nil, redis.Nil
	}
	return c.client.Get(ctx, fmt.Sprintf("%s%d", PrefixWorkflow, workflowID)).Bytes()
}

func (c *redisCache) SetWorkflow(ctx context.Context, workflowID uint64, data interface{}) error {
	return c.Set(ctx, fmt.Sprintf("%s%d", PrefixWorkflow, workflowID), data, TTLWorkflow)
}

func (c *redisCache) InvalidateWorkflow(ctx context.Context, workflowID uint64) error {
	return c.Delete(ctx, fmt.Sprintf("%s%d", PrefixWorkflow, workflowID))
}

func (c *redisCache) InvalidateOwnerWorkflow(ctx context.Context, ownerID string) error {
	return c.Delete(ctx, PrefixOwnerWorkflow+ownerID)
}

func (c *redisCache) GetDashboard(ctx context.Context, viewerID string) ([]byte, error) {
	if c.client == nil {
		return nil, redis.Nil
	}
	return c.client.Get(ctx, PrefixDashboard+viewerID).Bytes()
}

func (c *redisCache) SetDashboard(ctx context.Context, viewerID string, data interface{}) error {
	return c.Set(ctx, PrefixDashboard+viewerID, data, TTLDashboard)
}

func (c *redisCache) InvalidateDashboard(ctx context.Context, viewerID string) error {
	return c.Delete(ctx, PrefixDashboard+viewerID)
}
