package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/advocacy-backend/internal/model"
)

const demographicsPrefix = "campaign:demographics:"

// SnapshotCache stores demographic snapshots per campaign.
type SnapshotCache interface {
	Get(ctx context.Context, campaignID int) (*model.DemographicSnapshot, error)
	Set(ctx context.Context, s *model.DemographicSnapshot) error
	Invalidate(ctx context.Context, campaignID int) error
}

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

func key(campaignID int) string {
	return demographicsPrefix + strconv.Itoa(campaignID)
}

// Get returns nil, nil on a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context, campaignID int) (*model.DemographicSnapshot, error) {
	raw, err := c.client.Get(ctx, key(campaignID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s model.DemographicSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &s, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, s *model.DemographicSnapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(s.CampaignID), raw, c.ttl).Err()
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context, campaignID int) error {
	return c.client.Del(ctx, key(campaignID)).Err()
}

// NoopCache is used when REDIS_URL is unset.
type NoopCache struct{}

func (NoopCache) Get(context.Context, int) (*model.DemographicSnapshot, error) { return nil, nil }
func (NoopCache) Set(context.Context, *model.DemographicSnapshot) error        { return nil }
func (NoopCache) Invalidate(context.Context, int) error                        { return nil }

var (
	_ SnapshotCache = (*RedisSnapshotCache)(nil)
	_ SnapshotCache = NoopCache{}
)
