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

// Package assert provides functions to assert a condition in tests
package assert

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func getErrorMessage(m string, a, b interface{}) string {
	return fmt.Sprintf(`%s.
Actual:
========================
%+v
========================

Expected:
========================
%+v
========================

%s`, m, a, b, string(debug.Stack()))
}

// Equal errors a test if the actual does not match the expected
func Equal(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if a == b {
		return
	}

	t.Error(getErrorMessage(message, a, b))
}

// NotEqual fails a test if the actual matches the expected
func NotEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if a != b {
		return
	}

	t.Error(getErrorMessage(message, a, b))
}

// DeepEqual fails a test if the actual does not deeply equal the expected
func DeepEqual(t *testing.T, a, b interface{}, message string) {
	t.Helper()

	if cmp.Equal(a, b) {
		return
	}

	t.Errorf("%s.\nDiff (-actual +expected):\n%s", message, cmp.Diff(a, b))
}

// EqualJSON asserts that two JSON strings are equal
func EqualJSON(t *testing.T, a, b, message string) {
	t.Helper()

	var o1, o2 interface{}
	if err := json.Unmarshal([]byte(a), &o1); err != nil {
		t.Fatal(errors.Wrapf(err, "%s: unmarshalling actual", message))
	}
	if err := json.Unmarshal([]byte(b), &o2); err != nil {
		t.Fatal(errors.Wrapf(err, "%s: unmarshalling expected", message))
	}

	if !reflect.DeepEqual(o1, o2) {
		t.Errorf("%s.\nDiff (-actual +expected):\n%s", message, cmp.Diff(o1, o2))
	}
}

// StatusCodeEquals asserts that the response has the expected status code.
// On mismatch it fails the test and prints the response body.
func StatusCodeEquals(t *testing.T, res *http.Response, expected int, message string) {
	t.Helper()

	if res.StatusCode == expected {
		return
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading body"))
	}

	t.Fatalf("status code mismatch. %s: got %d, expected %d. Body: %s", message, res.StatusCode, expected, string(body))
}
