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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/circadianapp/circadian/pkg/assert"
	"github.com/circadianapp/circadian/pkg/server/log"
	"github.com/circadianapp/circadian/pkg/server/metrics"
	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		_, err := uuid.Parse(seen)
		assert.Equal(t, err, nil, "expected a uuid")
		assert.Equal(t, w.Header().Get(HeaderRequestID), seen, "header mismatch")
	})

	t.Run("reused", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderRequestID, id)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, seen, id, "id should be reused")
	})

	t.Run("malformed incoming id is replaced", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderRequestID, "not a uuid\n")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, seen, "not a uuid\n", "id should be replaced")
	})
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.LevelDebug)
	defer log.SetOutput(os.Stderr)
	defer log.SetLevel(log.LevelInfo)

	h := Global(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest("POST", "/add-user", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}

	assert.Equal(t, line["level"], log.LevelWarn, "level mismatch")
	assert.Equal(t, line["method"], "POST", "method mismatch")
	assert.Equal(t, line["path"], "/add-user", "path mismatch")
	assert.Equal(t, line["status"], float64(500), "status mismatch")
	assert.Equal(t, line["remote_ip"], "192.168.1.1", "ip mismatch")
	assert.Equal(t, line["request_id"], w.Header().Get(HeaderRequestID), "request id mismatch")
}

func TestInstrument(t *testing.T) {
	m := metrics.New()

	h := Instrument(m, "/add-user", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/add-user", nil))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	res, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scraping: %v", err)
	}
	defer res.Body.Close()

	var body bytes.Buffer
	body.ReadFrom(res.Body)
	assert.Equal(t,
		bytes.Contains(body.Bytes(), []byte(`circadian_http_requests_total{code="200",method="POST",route="/add-user"} 1`)),
		true, "missing request series")
}
