// Package ratelimit enforces a per-client hourly request cap on the
// generation endpoints.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"template-api/internal/models"
)

const HourInSeconds = 3600

// Result describes the outcome of a rate limit check
type Result struct {
	Allowed       bool
	RequestsUsed  int
	RequestsLimit int
	NextAvailable time.Time
}

// Limiter tracks request timestamps per client over a sliding one-hour
// window. A limit of 0 disables all checks.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	history map[string][]time.Time
}

func New(limit int) *Limiter {
	return &Limiter{
		limit:   limit,
		history: make(map[string][]time.Time),
	}
}

// Check reports whether key may make another request right now, without
// recording one.
func (l *Limiter) Check(key string) Result {
	if l.limit <= 0 {
		return Result{Allowed: true, RequestsLimit: l.limit}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	recent := l.prune(key, now)

	res := Result{
		Allowed:       len(recent) < l.limit,
		RequestsUsed:  len(recent),
		RequestsLimit: l.limit,
	}
	if !res.Allowed {
		res.NextAvailable = recent[0].Add(HourInSeconds * time.Second)
	}
	return res
}

// Record counts one request against key.
func (l *Limiter) Record(key string) {
	if l.limit <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.history[key] = append(l.prune(key, now), now)
}

// prune drops timestamps older than the window. Caller holds the lock.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-HourInSeconds * time.Second)
	var recent []time.Time
	for _, t := range l.history[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if recent == nil {
		delete(l.history, key)
	} else {
		l.history[key] = recent
	}
	return recent
}

// Middleware rejects requests over the limit with 429 and records allowed
// ones. Clients are keyed by remote IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		res := l.Check(key)
		if !res.Allowed {
			slog.Warn("rate limit exceeded",
				"client", key,
				"used", res.RequestsUsed,
				"limit", res.RequestsLimit)
			writeLimitExceeded(w, res)
			return
		}
		l.Record(key)
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeLimitExceeded(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(models.RateLimitError{
		Error: "rate limit exceeded, try again later",
		RateLimit: models.RateLimitInfo{
			Limit:      res.RequestsLimit,
			Used:       res.RequestsUsed,
			ResetAt:    res.NextAvailable.Unix(),
			ResetAtISO: res.NextAvailable.UTC().Format(time.RFC3339),
		},
	})
}
