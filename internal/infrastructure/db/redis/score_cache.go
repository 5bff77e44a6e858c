package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/proconnect/verification-system/internal/api/metrics"
	"github.com/proconnect/verification-system/internal/core/domain"
)

const defaultScoreTTL = 10 * time.Minute

// ScoreCache stores serialized trust score breakdowns per user.
// Key format: trustscore:<user_id>
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache creates a ScoreCache wrapping the given Redis client.
// If ttl <= 0, defaultScoreTTL is used.
func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	if ttl <= 0 {
		ttl = defaultScoreTTL
	}
	return &ScoreCache{client: client, ttl: ttl}
}

// Get returns the cached breakdown, or (nil, nil) on a miss.
func (s *ScoreCache) Get(ctx context.Context, userID string) (*domain.TrustScoreBreakdown, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.ScoreCacheTotal.WithLabelValues("miss").Inc()
			return nil, nil
		}
		return nil, fmt.Errorf("score cache get: %w", err)
	}

	var b domain.TrustScoreBreakdown
	if err := json.Unmarshal(raw, &b); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		metrics.ScoreCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}

	metrics.ScoreCacheTotal.WithLabelValues("hit").Inc()
	return &b, nil
}

// Set stores the breakdown with the configured TTL.
func (s *ScoreCache) Set(ctx context.Context, userID string, b *domain.TrustScoreBreakdown) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("score cache marshal: %w", err)
	}
	return s.client.Set(ctx, s.key(userID), raw, s.ttl).Err()
}

// Invalidate drops the user's cached breakdown.
func (s *ScoreCache) Invalidate(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *ScoreCache) key(userID string) string {
	return fmt.Sprintf("trustscore:%s", userID)
}
