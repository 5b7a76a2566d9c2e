package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/stayhive/stayhive/internal/config"
)

const keySearchClient = "search:client:%s"

// SearchLimiter throttles the search endpoint per client IP. A nil limiter
// (redis not configured) allows everything; redis failures fail open so the
// limiter never takes search down with it.
type SearchLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewSearchLimiter(cfg config.Config, bucket *TokenBucket) *SearchLimiter {
	if bucket == nil {
		return nil
	}
	if cfg.SearchRateLimit <= 0 || cfg.SearchRateBurst <= 0 {
		return nil
	}
	return &SearchLimiter{
		bucket: bucket,
		rate:   cfg.SearchRateLimit,
		burst:  cfg.SearchRateBurst,
	}
}

func (l *SearchLimiter) Allow(ctx context.Context, clientIP string) (*Result, error) {
	if l == nil {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keySearchClient, strings.TrimSpace(clientIP))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
