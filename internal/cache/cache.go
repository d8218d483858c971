// Package cache keeps marshaled auction snapshots in Redis so the 10 s
// polling clients mostly never reach the primary store. Each snapshot is one
// value written atomically, so a cached read is always internally consistent.
// All methods are nil-receiver safe: a nil *Snapshots disables caching.
package cache

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "auc_snap:"

type Snapshots struct {
	rdc *redis.Client
	ttl time.Duration
}

// NewClient dials Redis and verifies the connection.
func NewClient(host string, port int) (*redis.Client, error) {
	maxPool := runtime.NumCPU() * 8
	if maxPool > 512 {
		maxPool = 512
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		PoolSize: maxPool,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rc.Ping(ctx).Result(); err != nil {
		err = errors.New("Redis connection failed: " + err.Error())
		zap.L().Error("redis_connect", zap.Error(err))
		return nil, err
	}
	return rc, nil
}

// NewSnapshots wraps a Redis client as a snapshot cache. The TTL should match
// the client poll interval; entries for ended auctions simply age out.
func NewSnapshots(rdc *redis.Client, ttl time.Duration) *Snapshots {
	return &Snapshots{rdc: rdc, ttl: ttl}
}

// Get returns the cached snapshot payload, or false on miss. Cache failures
// degrade to a miss rather than failing the read.
func (s *Snapshots) Get(ctx context.Context, auctionID string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	payload, err := s.rdc.Get(ctx, keyPrefix+auctionID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("snapshot_cache.get", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Put stores one snapshot payload.
func (s *Snapshots) Put(ctx context.Context, auctionID string, payload []byte) {
	if s == nil {
		return
	}
	if err := s.rdc.Set(ctx, keyPrefix+auctionID, payload, s.ttl).Err(); err != nil {
		zap.L().Warn("snapshot_cache.put", zap.Error(err))
	}
}

// PutMany stores several snapshots in one pipelined round-trip.
func (s *Snapshots) PutMany(ctx context.Context, payloads map[string][]byte) {
	if s == nil || len(payloads) == 0 {
		return
	}
	pipe := s.rdc.Pipeline()
	for id, payload := range payloads {
		pipe.Set(ctx, keyPrefix+id, payload, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Warn("snapshot_cache.put_many", zap.Error(err))
	}
}

// Drop removes a snapshot, forcing the next read through to the store.
func (s *Snapshots) Drop(ctx context.Context, auctionID string) {
	if s == nil {
		return
	}
	if err := s.rdc.Del(ctx, keyPrefix+auctionID).Err(); err != nil {
		zap.L().Warn("snapshot_cache.drop", zap.Error(err))
	}
}
