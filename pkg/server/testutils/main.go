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

// Package testutils provides utilities used in tests
package testutils

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/circadianapp/circadian/pkg/clock"
	"github.com/circadianapp/circadian/pkg/server/database"
	"github.com/circadianapp/circadian/pkg/server/docstore"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// InitMemoryDB creates an in-memory SQLite database with the schema initialized
func InitMemoryDB(t *testing.T) *gorm.DB {
	// a unique name per test keeps shared-cache databases apart
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := database.Open(database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		database.Close(db)
	})

	return db
}

// InitMemoryStore returns a SQL document store over a fresh in-memory database
func InitMemoryStore(t *testing.T) *docstore.SQLStore {
	return docstore.NewSQL(InitMemoryDB(t), clock.NewMock())
}

// MustGetDocument reads collection/id from s and fails the test on error
func MustGetDocument(t *testing.T, s docstore.Store, collection, id string) map[string]interface{} {
	t.Helper()

	data, err := s.Get(context.Background(), collection, id)
	if err != nil {
		t.Fatal(errors.Wrapf(err, "getting %s/%s", collection, id))
	}

	return data
}

// MustSetDocument writes collection/id to s and fails the test on error
func MustSetDocument(t *testing.T, s docstore.Store, collection, id string, data map[string]interface{}) {
	t.Helper()

	if err := s.Set(context.Background(), collection, id, data); err != nil {
		t.Fatal(errors.Wrapf(err, "setting %s/%s", collection, id))
	}
}

// FailingStore is a store whose every call returns Err
type FailingStore struct {
	Err error

	mu    sync.Mutex
	Calls int
}

// Set implements docstore.Store
func (s *FailingStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++

	return s.Err
}

// Get implements docstore.Store
func (s *FailingStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++

	return nil, s.Err
}

// Close implements docstore.Store
func (s *FailingStore) Close() error {
	return nil
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		// a trailing-slash redirect should be asserted, not followed
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}
	t.Cleanup(func() {
		res.Body.Close()
	})

	return res
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))
	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MakeJSONReq makes an HTTP request with a JSON body
func MakeJSONReq(endpoint, method, path, data string) *http.Request {
	req := MakeReq(endpoint, method, path, data)
	req.Header.Set("Content-Type", "application/json")

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}
