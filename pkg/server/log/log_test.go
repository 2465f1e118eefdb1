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

package log

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelDebug)
	if Level() != LevelDebug {
		t.Errorf("Expected level %s, got %s", LevelDebug, Level())
	}

	SetLevel(LevelError)
	if Level() != LevelError {
		t.Errorf("Expected level %s, got %s", LevelError, Level())
	}
}

func TestShouldLog(t *testing.T) {
	defer SetLevel(LevelInfo)

	testCases := []struct {
		currentLevel string
		logLevel     string
		expected     bool
		description  string
	}{
		{LevelDebug, LevelDebug, true, "debug level should show debug"},
		{LevelDebug, LevelError, true, "debug level should show error"},

		{LevelInfo, LevelDebug, false, "info level should not show debug"},
		{LevelInfo, LevelInfo, true, "info level should show info"},
		{LevelInfo, LevelWarn, true, "info level should show warn"},

		{LevelWarn, LevelInfo, false, "warn level should not show info"},
		{LevelWarn, LevelWarn, true, "warn level should show warn"},

		{LevelError, LevelWarn, false, "error level should not show warn"},
		{LevelError, LevelError, true, "error level should show error"},

		{"bogus", LevelDebug, false, "unknown level behaves like info"},
		{"bogus", LevelInfo, true, "unknown level behaves like info"},
	}

	for _, tc := range testCases {
		SetLevel(tc.currentLevel)
		if got := shouldLog(tc.logLevel); got != tc.expected {
			t.Errorf("%s: expected %v, got %v", tc.description, tc.expected, got)
		}
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, l := range []string{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if !IsValidLevel(l) {
			t.Errorf("expected %s to be valid", l)
		}
	}
	if IsValidLevel("verbose") {
		t.Error("expected verbose to be invalid")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	WithFields(Fields{
		"uid":      "abc",
		"err":      errors.New("boom"),
		"duration": 1500 * time.Millisecond,
	}).Warn("writing document")

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}

	expected := map[string]interface{}{
		fieldKeyLevel:   LevelWarn,
		fieldKeyMessage: "writing document",
		"uid":           "abc",
		"err":           "boom",
		"duration":      "1.5s",
	}
	for k, v := range expected {
		if got[k] != v {
			t.Errorf("field %s: expected %v, got %v", k, v, got[k])
		}
	}
	if _, ok := got[fieldKeyUnixTimestamp]; !ok {
		t.Errorf("missing %s", fieldKeyUnixTimestamp)
	}
}

func TestWriteBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelInfo)

	SetLevel(LevelError)
	Info("dropped")
	Warn("dropped")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
