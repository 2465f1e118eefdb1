/* Copyright 2025 Circadian Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/circadianapp/circadian/pkg/server/log"
	"golang.org/x/time/rate"
)

const (
	// visitorExpiry is how long an idle visitor's limiter is kept
	visitorExpiry = 3 * time.Minute
	// cleanupInterval is how often idle visitors are swept
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds the per-IP rate limiting state
type RateLimiter struct {
	perSecond int
	burst     int

	visitors map[string]*visitor
	mtx      sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter returns a limiter allowing perSecond requests per IP with
// the given burst. It starts a goroutine that sweeps idle visitors until Stop.
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	rl := &RateLimiter{
		perSecond: perSecond,
		burst:     burst,
		visitors:  make(map[string]*visitor),
		done:      make(chan struct{}),
	}
	go rl.cleanupVisitors()
	return rl
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

// getVisitor returns a limiter for a visitor with the given identifier. It
// adds the visitor to the map if not seen before.
func (rl *RateLimiter) getVisitor(identifier string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[identifier]
	if !exists {
		interval := time.Second / time.Duration(rl.perSecond)
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(interval), rl.burst),
		}
		rl.visitors[identifier] = v
	}

	v.lastSeen = time.Now()

	return v.limiter
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	for identifier, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorExpiry {
			delete(rl.visitors, identifier)
		}
	}
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

// lookupIP returns the request's IP
func lookupIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// Limit is a middleware to rate limit the handler
func (rl *RateLimiter) Limit(next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := lookupIP(r)
		limiter := rl.getVisitor(identifier)

		if !limiter.Allow() {
			log.WithFields(log.Fields{
				"ip":         identifier,
				"request_id": RequestIDFromContext(r.Context()),
			}).Warn("Too many requests")
			writeJSONError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ApplyLimit wraps h with rl when rateLimit is set and a limiter is configured
func ApplyLimit(h http.Handler, rl *RateLimiter, rateLimit bool) http.Handler {
	if !rateLimit || rl == nil {
		return h
	}

	return rl.Limit(h)
}
