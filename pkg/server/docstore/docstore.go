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

// Package docstore persists schemaless documents grouped in collections.
// A document is written whole: Set replaces every field of a prior version.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// MaxIDBytes is the longest document id Firestore accepts
const MaxIDBytes = 1500

var (
	// ErrNotFound is returned by Get when no document has the given id
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is an error for an id that cannot name a document
	ErrInvalidID = errors.New("invalid document id")
	// ErrNotObject is an error for a JSON payload that is not an object
	ErrNotObject = errors.New("payload must be a JSON object")
	// ErrNumberRange is an error for a JSON number no float64 can hold
	ErrNumberRange = errors.New("number out of range")
)

// Store is a document database. Implementations are safe for concurrent use.
type Store interface {
	// Set writes data as the full contents of collection/id
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	// Get reads collection/id, returning ErrNotFound if it does not exist
	Get(ctx context.Context, collection, id string) (map[string]interface{}, error)
	Close() error
}

// ValidateID checks that id can name a document
func ValidateID(id string) error {
	switch {
	case id == "":
		return errors.Wrap(ErrInvalidID, "empty")
	case len(id) > MaxIDBytes:
		return errors.Wrapf(ErrInvalidID, "longer than %d bytes", MaxIDBytes)
	case strings.Contains(id, "/"):
		return errors.Wrapf(ErrInvalidID, "'%s' contains '/'", id)
	case id == "." || id == "..":
		return errors.Wrapf(ErrInvalidID, "'%s'", id)
	case len(id) >= 4 && strings.HasPrefix(id, "__") && strings.HasSuffix(id, "__"):
		return errors.Wrapf(ErrInvalidID, "'%s' is reserved", id)
	}

	return nil
}

// DecodeObject reads a single JSON object from r. Integral numbers become
// int64 and all other numbers float64.
func DecodeObject(r io.Reader) (map[string]interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decoding JSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after object")
		}
		return nil, errors.Wrap(err, "decoding JSON")
	}

	n, err := normalize(v)
	if err != nil {
		return nil, err
	}

	obj, ok := n.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}

	return obj, nil
}

func decodeBytes(b []byte) (map[string]interface{}, error) {
	return DecodeObject(bytes.NewReader(b))
}

func normalize(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, errors.Wrapf(ErrNumberRange, "'%s'", t.String())
		}
		return f, nil
	case map[string]interface{}:
		for k, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case []interface{}:
		for i, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}
