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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/circadianapp/circadian/pkg/assert"
)

const (
	testRate  = 50
	testBurst = 10
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestLimit(t *testing.T) {
	limiter := NewRateLimiter(testRate, testBurst)
	defer limiter.Stop()
	h := limiter.Limit(okHandler())

	blockedCount := 0
	var lastBlocked *httptest.ResponseRecorder
	for i := 0; i < testBurst+5; i++ {
		req := httptest.NewRequest("POST", "/add-user", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		if w.Code == http.StatusTooManyRequests {
			blockedCount++
			lastBlocked = w
		}
	}

	if blockedCount == 0 {
		t.Fatal("Expected some requests to be rate limited after burst")
	}
	assert.Equal(t, lastBlocked.Header().Get("Content-Type"), "application/json", "content type mismatch")
	assert.EqualJSON(t, lastBlocked.Body.String(), `{"message": "too many requests"}`, "body mismatch")
}

func TestLimit_DifferentIPs(t *testing.T) {
	limiter := NewRateLimiter(testRate, testBurst)
	defer limiter.Stop()
	h := limiter.Limit(okHandler())

	for i := 0; i < testBurst+5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.2:5678"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Request from different IP should succeed, got status %d", w.Code)
	}
}

func TestApplyLimit(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()

	testCases := []struct {
		name      string
		limiter   *RateLimiter
		rateLimit bool
		expected  int
	}{
		{"limited route", limiter, true, http.StatusTooManyRequests},
		{"unlimited route", limiter, false, http.StatusOK},
		{"no limiter", nil, true, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := ApplyLimit(okHandler(), tc.limiter, tc.rateLimit)

			var code int
			for i := 0; i < 3; i++ {
				req := httptest.NewRequest("GET", "/", nil)
				req.RemoteAddr = "10.0.0.1:1000"
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				code = w.Code
			}

			assert.Equal(t, code, tc.expected, "status code mismatch")
		})
	}
}

func TestSweep(t *testing.T) {
	limiter := NewRateLimiter(testRate, testBurst)
	defer limiter.Stop()

	limiter.getVisitor("10.0.0.1")
	limiter.getVisitor("10.0.0.2")
	limiter.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * visitorExpiry)

	limiter.sweep(time.Now())

	_, stale := limiter.visitors["10.0.0.1"]
	_, fresh := limiter.visitors["10.0.0.2"]
	assert.Equal(t, stale, false, "stale visitor should be removed")
	assert.Equal(t, fresh, true, "fresh visitor should be kept")
}

func TestLookupIP(t *testing.T) {
	testCases := []struct {
		name         string
		remoteAddr   string
		forwardedFor string
		realIP       string
		expected     string
	}{
		{"remote addr", "192.168.1.1:1234", "", "", "192.168.1.1"},
		{"ipv6 remote addr", "[::1]:8000", "", "", "::1"},
		{"forwarded for", "10.0.0.1:1", "203.0.113.7, 10.0.0.1", "", "203.0.113.7"},
		{"real ip", "10.0.0.1:1", "", "198.51.100.2", "198.51.100.2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tc.forwardedFor)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			assert.Equal(t, lookupIP(req), tc.expected, "ip mismatch")
		})
	}
}
