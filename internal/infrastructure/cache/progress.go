package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// progressTTL keeps stale progress entries from lingering after a job
// finishes or the service restarts mid-run.
const progressTTL = 24 * time.Hour

// Progress is the cached snapshot polled by job status endpoints
type Progress struct {
	Pct       int       `json:"pct"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressCache stores the latest progress snapshot per job for cheap
// polling without hitting the job_events table.
type ProgressCache interface {
	SetProgress(ctx context.Context, jobID string, pct int, message string) error
	GetProgress(ctx context.Context, jobID string) (*Progress, error)
	DeleteProgress(ctx context.Context, jobID string) error
}

func progressKey(jobID string) string {
	return "job:progress:" + jobID
}

// redisProgressCache is the Redis-backed implementation
type redisProgressCache struct {
	client *redis.Client
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRedisProgressCache creates a Redis-backed progress cache
func NewRedisProgressCache(client *redis.Client) ProgressCache {
	return &redisProgressCache{client: client}
}

func (c *redisProgressCache) SetProgress(ctx context.Context, jobID string, pct int, message string) error {
	b, err := json.Marshal(Progress{Pct: pct, Message: message, UpdatedAt: time.Now()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, progressKey(jobID), string(b), progressTTL).Err()
}

func (c *redisProgressCache) GetProgress(ctx context.Context, jobID string) (*Progress, error) {
	raw, err := c.client.Get(ctx, progressKey(jobID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *redisProgressCache) DeleteProgress(ctx context.Context, jobID string) error {
	return c.client.Del(ctx, progressKey(jobID)).Err()
}

// memoryProgressCache backs progress on the in-process store when Redis
// is disabled
type memoryProgressCache struct {
	store *MemoryStore
}

// NewMemoryProgressCache creates an in-process progress cache
func NewMemoryProgressCache() ProgressCache {
	return &memoryProgressCache{store: NewMemoryStore()}
}

func (c *memoryProgressCache) SetProgress(_ context.Context, jobID string, pct int, message string) error {
	b, err := json.Marshal(Progress{Pct: pct, Message: message, UpdatedAt: time.Now()})
	if err != nil {
		return err
	}
	c.store.Set(progressKey(jobID), string(b), progressTTL)
	return nil
}

func (c *memoryProgressCache) GetProgress(_ context.Context, jobID string) (*Progress, error) {
	raw, ok := c.store.Get(progressKey(jobID))
	if !ok {
		return nil, nil
	}
	var p Progress
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *memoryProgressCache) DeleteProgress(_ context.Context, jobID string) error {
	c.store.Delete(progressKey(jobID))
	return nil
}
