package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joinportal/intake/internal/ratelimit"
)

// rateLimitIntakePrefix is the Redis key prefix for submission windows.
const rateLimitIntakePrefix = "ratelimit:intake:"

// fixedWindowScript counts a request in a fixed window shared by all replicas.
// Once the count reaches the limit further requests are refused without
// incrementing, so the counter never exceeds the limit.
//
// Returns {allowed, count, ttl_ms}.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	if current >= limit then
		local ttl = redis.call('PTTL', key)
		if ttl < 0 then
			redis.call('PEXPIRE', key, window_ms)
			ttl = window_ms
		end
		return {0, current, ttl}
	end

	current = redis.call('INCR', key)
	if current == 1 then
		redis.call('PEXPIRE', key, window_ms)
	end

	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, window_ms)
		ttl = window_ms
	end

	return {1, current, ttl}
`)

// SubmissionLimiter enforces the intake fixed-window limit in Redis so that
// it holds across process restarts and replicas.
type SubmissionLimiter struct {
	cache  *Cache
	policy ratelimit.Policy
	now    func() time.Time
}

// NewSubmissionLimiter creates a Redis-backed limiter for the given policy.
func NewSubmissionLimiter(c *Cache, policy ratelimit.Policy) *SubmissionLimiter {
	return &SubmissionLimiter{
		cache:  c,
		policy: policy,
		now:    time.Now,
	}
}

// Allow implements ratelimit.Limiter.
func (l *SubmissionLimiter) Allow(ctx context.Context, clientID string) (*ratelimit.Result, error) {
	key := rateLimitIntakePrefix + hashClientID(clientID)

	result, err := fixedWindowScript.Run(ctx, l.cache.client,
		[]string{key},
		l.policy.Limit, l.policy.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("unexpected rate limit reply length %d", len(result))
	}

	allowed := result[0] == 1
	count := result[1]
	ttl := time.Duration(result[2]) * time.Millisecond

	res := &ratelimit.Result{
		Allowed:   allowed,
		Count:     count,
		Remaining: int64(l.policy.Limit) - count,
		ResetAt:   l.now().Add(ttl),
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !allowed {
		res.RetryAfter = ttl
	}

	return res, nil
}

// hashClientID creates a truncated SHA256 hash of a client identifier.
// Raw addresses are never written to Redis.
func hashClientID(id string) string {
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
