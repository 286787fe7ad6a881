package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	RequestsPerSecond float64
	Burst             int
	IdleWindow        time.Duration
	Enabled           bool
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter keeps an independent token bucket per client
// identity. Idle entries are swept out to bound memory. The single
// mutex covers both Allow and the sweep, so an entry is never evicted
// mid-consume.
type TokenBucketLimiter struct {
	sync.Mutex
	clients map[string]*client
	rps     rate.Limit
	burst   int
	idle    time.Duration
}

func NewTokenBucketLimiter(cfg Config) *TokenBucketLimiter {
	if cfg.IdleWindow <= 0 {
		cfg.IdleWindow = 3 * time.Minute
	}
	rl := &TokenBucketLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
		idle:    cfg.IdleWindow,
	}
	go rl.sweep()
	return rl
}

// Allow consumes one token from the identity's bucket, creating the
// bucket on first sight. It returns false without consuming anything
// when the bucket is empty.
func (rl *TokenBucketLimiter) Allow(identity string) bool {
	rl.Lock()
	defer rl.Unlock()

	c, ok := rl.clients[identity]
	if !ok {
		c = &client{bucket: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[identity] = c
	}
	c.lastSeen = time.Now()
	return c.bucket.Allow()
}

func (rl *TokenBucketLimiter) sweep() {
	ticker := time.NewTicker(rl.idle)
	for range ticker.C {
		rl.evictIdle()
	}
}

func (rl *TokenBucketLimiter) evictIdle() {
	rl.Lock()
	defer rl.Unlock()

	for identity, c := range rl.clients {
		if time.Since(c.lastSeen) > rl.idle {
			delete(rl.clients, identity)
		}
	}
}
