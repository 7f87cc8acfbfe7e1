package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterStore keeps one token bucket per key, such as a client IP.
// Buckets idle for longer than ttl are dropped on the next lookup.
type LimiterStore struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	r        rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func NewLimiterStore(r rate.Limit, burst int, ttl time.Duration) *LimiterStore {
	return &LimiterStore{
		limiters: make(map[string]*limiterEntry),
		r:        r,
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.ttl > 0 {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > s.ttl {
				delete(s.limiters, k)
			}
		}
	}

	if e, exists := s.limiters[key]; exists {
		e.lastSeen = now
		return e.limiter
	}
	limiter := rate.NewLimiter(s.r, s.burst)
	s.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// Allow reports whether one more event for key fits its bucket.
func (s *LimiterStore) Allow(key string) bool {
	return s.GetLimiter(key).Allow()
}

func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
