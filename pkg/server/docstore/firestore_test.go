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

package docstore

import (
	"context"
	"os"
	"testing"

	"github.com/circadianapp/circadian/pkg/assert"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// newEmulatorStore connects to the Firestore emulator, skipping the test
// when none is configured
func newEmulatorStore(t *testing.T) *FirestoreStore {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	s, err := NewFirestore(context.Background(), FirestoreParams{
		ProjectID: "demo-circadian",
		Emulator:  true,
	})
	if err != nil {
		t.Fatal(errors.Wrap(err, "connecting to emulator"))
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestNewFirestoreMissingCredentials(t *testing.T) {
	_, err := NewFirestore(context.Background(), FirestoreParams{
		CredentialsPath: t.TempDir() + "/missing.json",
	})

	assert.Equal(t, os.IsNotExist(errors.Cause(err)), true, "expected a not-exist error")
}

func TestFirestoreStoreOverwrite(t *testing.T) {
	s := newEmulatorStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	first := map[string]interface{}{"uid": id, "x": int64(1), "chronotype": "owl"}
	second := map[string]interface{}{"uid": id, "x": int64(2)}

	if err := s.Set(ctx, "users", id, first); err != nil {
		t.Fatal(errors.Wrap(err, "setting first"))
	}
	got, err := s.Get(ctx, "users", id)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting first"))
	}
	assert.DeepEqual(t, got, first, "first document mismatch")

	if err := s.Set(ctx, "users", id, second); err != nil {
		t.Fatal(errors.Wrap(err, "setting second"))
	}
	got, err = s.Get(ctx, "users", id)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting second"))
	}
	assert.DeepEqual(t, got, second, "document should hold only the second body")
}

func TestFirestoreStoreGetNotFound(t *testing.T) {
	s := newEmulatorStore(t)

	_, err := s.Get(context.Background(), "users", uuid.NewString())
	assert.Equal(t, err, ErrNotFound, "error mismatch")
}
