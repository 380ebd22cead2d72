package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/sunterra/sunplan/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keySubmission = "sunplan:submit:%s"

var Module = fx.Module("ratelimit",
	fx.Provide(NewSubmissionLimiter),
)

type SubmissionLimiterParam struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	Redis *redis.Client `optional:"true"`
}

// SubmissionLimiter throttles quote submissions per client address. Without
// redis it is disabled and everything is allowed.
type SubmissionLimiter struct {
	log    *zap.Logger
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewSubmissionLimiter(p SubmissionLimiterParam) *SubmissionLimiter {
	if p.Redis == nil {
		return nil
	}
	return &SubmissionLimiter{
		log:    p.Log.Named("ratelimit"),
		bucket: NewTokenBucket(p.Redis),
		rate:   p.Cfg.SubmitRatePerSec,
		burst:  p.Cfg.SubmitBurst,
	}
}

func (l *SubmissionLimiter) Enabled() bool {
	return l != nil && l.bucket != nil && l.rate > 0 && l.burst > 0
}

// Allow reports whether the client may submit. Redis failures allow the
// request; a broken limiter must not block quotes.
func (l *SubmissionLimiter) Allow(ctx context.Context, clientIP string) bool {
	if !l.Enabled() {
		return true
	}
	allowed, err := l.bucket.Allow(ctx, fmt.Sprintf(keySubmission, strings.TrimSpace(clientIP)), l.rate, l.burst)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true
	}
	return allowed
}
