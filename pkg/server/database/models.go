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

package database

import (
	"time"
)

// DocumentsTable is the table holding every stored document
const DocumentsTable = "documents"

// Document is one document of a collection. Data holds the JSON-encoded body.
type Document struct {
	Collection string    `gorm:"primaryKey;type:text"`
	DocID      string    `gorm:"primaryKey;column:doc_id;type:text"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false"`
}

// TableName implements gorm's tabler interface
func (Document) TableName() string {
	return DocumentsTable
}
