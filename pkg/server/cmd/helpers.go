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

package cmd

import (
	"context"

	"github.com/circadianapp/circadian/pkg/clock"
	"github.com/circadianapp/circadian/pkg/server/app"
	"github.com/circadianapp/circadian/pkg/server/config"
	"github.com/circadianapp/circadian/pkg/server/database"
	"github.com/circadianapp/circadian/pkg/server/docstore"
	"github.com/circadianapp/circadian/pkg/server/log"
	"github.com/circadianapp/circadian/pkg/server/metrics"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// storeFlags are the flags every command touching the store accepts
type storeFlags struct {
	configFile  string
	store       string
	credentials string
	projectID   string
	dbDriver    string
	dbPath      string
	logLevel    string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.configFile, "config", "", "Path to a TOML or YAML config file (env: CIRCADIAN_CONFIG, default: $XDG_CONFIG_HOME/circadian/config.toml)")
	fs.StringVar(&f.store, "store", "", "Document store: firestore or sql (env: STORE, default: firestore)")
	fs.StringVar(&f.credentials, "credentials", "", "Path to the service account key (env: GOOGLE_APPLICATION_CREDENTIALS)")
	fs.StringVar(&f.projectID, "projectId", "", "Firebase project id (env: FIREBASE_PROJECT_ID, default: from credentials)")
	fs.StringVar(&f.dbDriver, "dbDriver", "", "SQL driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)")
	fs.StringVar(&f.dbPath, "dbPath", "", "SQLite file or PostgreSQL DSN (env: DBPath, default: $XDG_DATA_HOME/circadian/server.db)")
	fs.StringVar(&f.logLevel, "logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")
}

func (f *storeFlags) params() config.Params {
	return config.Params{
		ConfigFile:      f.configFile,
		Store:           f.store,
		CredentialsPath: f.credentials,
		ProjectID:       f.projectID,
		DBDriver:        f.dbDriver,
		DBPath:          f.dbPath,
		LogLevel:        f.logLevel,
	}
}

func openStore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	switch cfg.Store {
	case config.StoreFirestore:
		s, err := docstore.NewFirestore(ctx, docstore.FirestoreParams{
			CredentialsPath: cfg.CredentialsPath,
			ProjectID:       cfg.ProjectID,
			Emulator:        cfg.UsesEmulator(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "opening firestore")
		}

		log.WithFields(log.Fields{
			"emulator":   cfg.UsesEmulator(),
			"project_id": cfg.ProjectID,
		}).Info("Firestore client initialized")

		return s, nil
	case config.StoreSQL:
		db, err := database.Open(cfg.DBDriver, cfg.DBPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}

		log.WithFields(log.Fields{
			"driver": cfg.DBDriver,
		}).Info("SQL store initialized")

		return docstore.NewSQL(db, clock.New()), nil
	default:
		return nil, errors.Wrapf(config.ErrStoreInvalid, "'%s'", cfg.Store)
	}
}

func initApp(ctx context.Context, cfg config.Config) (app.App, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return app.App{}, err
	}

	return app.App{
		Store:   store,
		Metrics: metrics.New(),
	}, nil
}
