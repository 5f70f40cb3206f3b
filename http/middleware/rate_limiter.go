package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

const (
	defaultRate  = 5
	defaultBurst = 20
	visitorTTL   = 60 * time.Minute
)

// A Limiter decides whether the visitor identified by key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// A Visitor tracks a rate limiter and last seen time.
type Visitor struct {
	LastSeen time.Time
	Limiter  *rate.Limiter
}

// A Visitors maps a Visitor to an IP address.
//
// Visitors implements Limiter for a single server process.
type Visitors struct {
	burst int
	rps   rate.Limit
	val   map[string]Visitor

	lastCleanup time.Time
	sync.Mutex
}

// NewVisitors constructs a *Visitors limiting each visitor to rps requests every second
// with bursts of up to burst.
// Non-positive values fall back to 5 requests every second with bursts of up to 20.
func NewVisitors(rps, burst int) *Visitors {
	if rps <= 0 {
		rps = defaultRate
	}

	if burst <= 0 {
		burst = defaultBurst
	}

	return &Visitors{
		burst:       burst,
		rps:         rate.Limit(rps),
		val:         make(map[string]Visitor),
		lastCleanup: time.Now().UTC(),
	}
}

// Fetch retrieves the Visitor for the given ip creating a new Visitor if not seen.
func (vs *Visitors) Fetch(ip string) Visitor {
	vs.Lock()
	defer vs.Unlock()

	v, ok := vs.val[ip]
	if !ok {
		v = Visitor{Limiter: rate.NewLimiter(vs.rps, vs.burst)}
	}

	v.LastSeen = time.Now().UTC()
	vs.val[ip] = v
	return v
}

// Allow implements Limiter.
func (vs *Visitors) Allow(_ context.Context, ip string) (bool, error) {
	ok := vs.Fetch(ip).Limiter.Allow()
	vs.cleanup()
	return ok, nil
}

// Len returns the number of visitors currently tracked.
func (vs *Visitors) Len() int {
	vs.Lock()
	defer vs.Unlock()
	return len(vs.val)
}

// cleanup deletes a Visitor from Visitors if they have not been seen in over an hour.
// cleanup sweeps at most once a minute.
func (vs *Visitors) cleanup() {
	vs.Lock()
	defer vs.Unlock()

	now := time.Now().UTC()
	if now.Sub(vs.lastCleanup) < time.Minute {
		return
	}

	vs.lastCleanup = now
	for ip, v := range vs.val {
		if now.Sub(v.LastSeen) > visitorTTL {
			delete(vs.val, ip)
		}
	}
}

// RedisLimiter implements Limiter with a fixed one second window per visitor
// counted in Redis, so every server process shares the same limits.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	prefix string
}

// NewRedisLimiter constructs a *RedisLimiter allowing limit requests every second per visitor.
// A non-positive limit falls back to the burst of the in-memory Visitors.
func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	if limit <= 0 {
		limit = defaultBurst
	}

	return &RedisLimiter{client: client, limit: int64(limit), prefix: "repoview:ratelimit:"}
}

// Allow implements Limiter.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := strconv.FormatInt(time.Now().Unix(), 10)
	k := rl.prefix + key + ":" + window

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("could not count request: %w", err)
	}

	return incr.Val() <= rl.limit, nil
}

// RateLimit limits requests per IP address using the Limiter.
//
// NOTE: the in-memory implementation follows
// https://www.alexedwards.net/blog/how-to-rate-limit-http-requests
//
// When the Limiter errors, the request is let through.
//
// If l is nil, NoopAdapter returns and this middleware does nothing.
func RateLimit(l Limiter) Adapter {
	if l == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := l.Allow(r.Context(), GetIPAddress(r.Header))
			if err == nil && !ok {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}
