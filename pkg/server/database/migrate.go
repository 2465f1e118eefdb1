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
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/circadianapp/circadian/pkg/server/database/migrations"
	"github.com/circadianapp/circadian/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type migrationFile struct {
	filename string
	version  int
}

// parseMigrationFilename checks that name follows NNN-description.sql and
// returns its version
func parseMigrationFilename(name string) (int, error) {
	if !strings.HasSuffix(name, ".sql") {
		return 0, errors.Errorf("invalid migration filename %s: must end with .sql", name)
	}

	version, description, ok := strings.Cut(strings.TrimSuffix(name, ".sql"), "-")
	if !ok {
		return 0, errors.Errorf("invalid migration filename %s: must be NNN-description.sql", name)
	}
	if len(version) != 3 {
		return 0, errors.Errorf("invalid migration filename %s: version must be 3 digits", name)
	}
	for _, c := range version {
		if c < '0' || c > '9' {
			return 0, errors.Errorf("invalid migration filename %s: version must be numeric", name)
		}
	}
	v, _ := strconv.Atoi(version)
	if description == "" {
		return 0, errors.Errorf("invalid migration filename %s: description is required", name)
	}

	return v, nil
}

// Migrate runs the embedded migrations
func Migrate(db *gorm.DB) error {
	return migrate(db, migrations.Files)
}

// getMigrationFiles reads, validates, and sorts migration files
func getMigrationFiles(fsys fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading migration directory")
	}

	var files []migrationFile
	seen := make(map[int]string)
	for _, e := range entries {
		name := e.Name()

		v, err := parseMigrationFilename(name)
		if err != nil {
			return nil, err
		}

		if existing, found := seen[v]; found {
			return nil, errors.Errorf("duplicate migration version %d: %s and %s", v, existing, name)
		}
		seen[v] = name

		files = append(files, migrationFile{
			filename: name,
			version:  v,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].version < files[j].version
	})

	return files, nil
}

// migrate applies, in version order, every migration in fsys that is newer
// than the recorded schema version. Each file runs in its own transaction.
func migrate(db *gorm.DB, fsys fs.FS) error {
	if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_migrations (
					version INTEGER PRIMARY KEY,
					applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
	`).Error; err != nil {
		return errors.Wrap(err, "initializing migration table")
	}

	var version int
	if err := db.Raw("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version).Error; err != nil {
		return errors.Wrap(err, "reading current version")
	}

	files, err := getMigrationFiles(fsys)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"version": version,
		"files":   len(files),
	}).Debug("Database schema version.")

	for _, m := range files {
		if m.version <= version {
			continue
		}

		sql, err := fs.ReadFile(fsys, m.filename)
		if err != nil {
			return errors.Wrapf(err, "reading migration file %s", m.filename)
		}
		if len(strings.TrimSpace(string(sql))) == 0 {
			return errors.Errorf("migration file %s is empty", m.filename)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(sql)).Error; err != nil {
				return fmt.Errorf("migration %s failed: %w", m.filename, err)
			}
			if err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version).Error; err != nil {
				return errors.Wrapf(err, "recording migration %s", m.filename)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"file": m.filename,
		}).Info("Applied migration.")
	}

	return nil
}
