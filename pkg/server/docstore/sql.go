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
	"encoding/json"

	"github.com/circadianapp/circadian/pkg/clock"
	"github.com/circadianapp/circadian/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps documents as JSON text in a SQL table
type SQLStore struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewSQL returns a store over db. The schema must already be migrated.
func NewSQL(db *gorm.DB, c clock.Clock) *SQLStore {
	return &SQLStore{
		db:    db,
		clock: c,
	}
}

// Set upserts the document, replacing its whole body
func (s *SQLStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	b, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}

	now := s.clock.Now()
	doc := database.Document{
		Collection: collection,
		DocID:      id,
		Data:       string(b),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return errors.Wrapf(err, "writing document %s/%s", collection, id)
	}

	return nil
}

// Get reads one document
func (s *SQLStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	var doc database.Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading document %s/%s", collection, id)
	}

	data, err := decodeBytes([]byte(doc.Data))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding document %s/%s", collection, id)
	}

	return data, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return database.Close(s.db)
}
