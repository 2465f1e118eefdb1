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
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/circadianapp/circadian/pkg/assert"
	"github.com/circadianapp/circadian/pkg/clock"
	"github.com/circadianapp/circadian/pkg/server/database"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func newSQLStore(t *testing.T) (*SQLStore, *clock.Mock) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(database.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}

	c := clock.NewMock()
	s := NewSQL(db, c)
	t.Cleanup(func() {
		s.Close()
	})

	return s, c
}

func TestSQLStoreSetGet(t *testing.T) {
	s, _ := newSQLStore(t)
	ctx := context.Background()

	data := map[string]interface{}{
		"uid":        "abc",
		"x":          int64(1),
		"chronotype": "lark",
		"sleep":      map[string]interface{}{"bed": "22:30", "wake": "06:30"},
	}
	if err := s.Set(ctx, "users", "abc", data); err != nil {
		t.Fatal(errors.Wrap(err, "setting document"))
	}

	got, err := s.Get(ctx, "users", "abc")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting document"))
	}

	assert.DeepEqual(t, got, data, "document mismatch")
}

func TestSQLStoreOverwrite(t *testing.T) {
	s, c := newSQLStore(t)
	ctx := context.Background()

	first := map[string]interface{}{"uid": "abc", "age": int64(30), "weight": 70.5}
	second := map[string]interface{}{"uid": "abc", "fitnessGoal": "endurance"}

	if err := s.Set(ctx, "users", "abc", first); err != nil {
		t.Fatal(errors.Wrap(err, "setting first"))
	}
	createdAt := c.Now()
	c.Advance(time.Hour)
	if err := s.Set(ctx, "users", "abc", second); err != nil {
		t.Fatal(errors.Wrap(err, "setting second"))
	}

	got, err := s.Get(ctx, "users", "abc")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting document"))
	}
	assert.DeepEqual(t, got, second, "document should hold only the second body")

	var doc database.Document
	if err := s.db.Where("collection = ? AND doc_id = ?", "users", "abc").First(&doc).Error; err != nil {
		t.Fatal(errors.Wrap(err, "reading row"))
	}
	assert.Equal(t, doc.CreatedAt.Equal(createdAt), true, "created_at should be kept")
	assert.Equal(t, doc.UpdatedAt.Equal(c.Now()), true, "updated_at should be bumped")

	var count int64
	if err := s.db.Model(&database.Document{}).Count(&count).Error; err != nil {
		t.Fatal(errors.Wrap(err, "counting rows"))
	}
	assert.Equal(t, count, int64(1), "expected one document")
}

func TestSQLStoreCollectionsAreSeparate(t *testing.T) {
	s, _ := newSQLStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "users", "abc", map[string]interface{}{"uid": "abc"}); err != nil {
		t.Fatal(errors.Wrap(err, "setting document"))
	}

	_, err := s.Get(ctx, "logs", "abc")
	assert.Equal(t, err, ErrNotFound, "error mismatch")
}

func TestSQLStoreGetNotFound(t *testing.T) {
	s, _ := newSQLStore(t)

	_, err := s.Get(context.Background(), "users", "missing")
	assert.Equal(t, err, ErrNotFound, "error mismatch")
}

func TestSQLStoreSetInvalidID(t *testing.T) {
	s, _ := newSQLStore(t)

	err := s.Set(context.Background(), "users", "a/b", map[string]interface{}{"uid": "a/b"})
	assert.Equal(t, errors.Cause(err), ErrInvalidID, "error mismatch")
}

func TestSQLStoreClosed(t *testing.T) {
	s, _ := newSQLStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(errors.Wrap(err, "closing store"))
	}

	err := s.Set(context.Background(), "users", "abc", map[string]interface{}{"uid": "abc"})
	assert.NotEqual(t, err, nil, "expected a write error after close")
}

func TestSQLStoreWholeFloatReadsBackAsInteger(t *testing.T) {
	s, _ := newSQLStore(t)
	ctx := context.Background()

	data, err := DecodeObject(strings.NewReader(`{"uid": "abc", "w": 1.0, "h": 1.5}`))
	if err != nil {
		t.Fatal(errors.Wrap(err, "decoding"))
	}
	assert.Equal(t, data["w"], float64(1), "decoded value mismatch")

	if err := s.Set(ctx, "users", "abc", data); err != nil {
		t.Fatal(errors.Wrap(err, "setting document"))
	}
	got, err := s.Get(ctx, "users", "abc")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting document"))
	}

	// the stored JSON text does not keep the decimal point
	assert.Equal(t, got["w"], int64(1), "whole float mismatch")
	assert.Equal(t, got["h"], 1.5, "fractional float mismatch")
}
