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

package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/circadianapp/circadian/pkg/dirs"
	"github.com/circadianapp/circadian/pkg/server/log"
	"github.com/pkg/errors"
)

const (
	// StoreFirestore persists documents in Cloud Firestore
	StoreFirestore = "firestore"
	// StoreSQL persists documents in a SQL database through gorm
	StoreSQL = "sql"

	// DBDriverSQLite selects the SQLite driver for the sql store
	DBDriverSQLite = "sqlite"
	// DBDriverPostgres selects the PostgreSQL driver for the sql store
	DBDriverPostgres = "postgres"

	// DefaultDir is the directory name for Circadian data and configuration
	DefaultDir = "circadian"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultConfigFilename is the config file looked up when none is given
	DefaultConfigFilename = "config.toml"

	defaultPort      = "8000"
	defaultRateLimit = 50
	defaultRateBurst = 100
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(dirs.DataHome, DefaultDir, DefaultDBFilename)
	// DefaultConfigPath is the default path to the configuration file
	DefaultConfigPath = filepath.Join(dirs.ConfigHome, DefaultDir, DefaultConfigFilename)
)

var (
	// ErrPortInvalid is an error for an invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrStoreInvalid is an error for an unknown document store
	ErrStoreInvalid = errors.New("Invalid Store")
	// ErrCredentialsMissing is an error for a firestore configuration without a credential file
	ErrCredentialsMissing = errors.New("Credentials path is empty")
	// ErrProjectIDMissing is an error for an emulator configuration without a project id
	ErrProjectIDMissing = errors.New("Project ID is empty")
	// ErrDBDriverInvalid is an error for an unknown sql driver
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrDBMissingPath is an error for a sql configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
	// ErrRateLimitInvalid is an error for a malformed or negative rate limit
	ErrRateLimitInvalid = errors.New("Invalid rate limit")
)

// resolve returns value if non-empty, otherwise the env var, otherwise the
// value from the config file, otherwise the default
func resolve(value, envKey, fileVal, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	if fileVal != "" {
		return fileVal
	}
	return defaultVal
}

// Config is an application configuration
type Config struct {
	Port            string
	Store           string
	CredentialsPath string
	ProjectID       string
	EmulatorHost    string
	DBDriver        string
	DBPath          string
	LogLevel        string
	MetricsAddr     string
	RateLimit       int
	RateBurst       int
	ConfigFile      string
}

// Params are the configuration parameters for creating a new Config.
// Empty strings mean "not given".
type Params struct {
	ConfigFile      string
	Port            string
	Store           string
	CredentialsPath string
	ProjectID       string
	DBDriver        string
	DBPath          string
	LogLevel        string
	MetricsAddr     string
	RateLimit       string
	RateBurst       string
}

// New constructs and returns a new validated config.
// Empty string params fall back to environment variables, then the config
// file, then defaults.
func New(p Params) (Config, error) {
	path := resolve(p.ConfigFile, "CIRCADIAN_CONFIG", "", "")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	fc, err := loadFile(path, explicit)
	if err != nil {
		return Config{}, err
	}
	if fc.loaded {
		log.WithFields(log.Fields{
			"path": path,
		}).Debug("Loaded config file.")
	} else {
		path = ""
	}

	c := Config{
		Port:            resolve(p.Port, "PORT", fc.Port, defaultPort),
		Store:           resolve(p.Store, "STORE", fc.Store, StoreFirestore),
		CredentialsPath: resolve(p.CredentialsPath, "GOOGLE_APPLICATION_CREDENTIALS", fc.Credentials, ""),
		ProjectID:       resolve(p.ProjectID, "FIREBASE_PROJECT_ID", fc.ProjectID, ""),
		EmulatorHost:    os.Getenv("FIRESTORE_EMULATOR_HOST"),
		DBDriver:        resolve(p.DBDriver, "DB_DRIVER", fc.DBDriver, DBDriverSQLite),
		DBPath:          resolve(p.DBPath, "DBPath", fc.DBPath, DefaultDBPath),
		LogLevel:        resolve(p.LogLevel, "LOG_LEVEL", fc.LogLevel, log.LevelInfo),
		MetricsAddr:     resolve(p.MetricsAddr, "METRICS_ADDR", fc.MetricsAddr, ""),
		ConfigFile:      path,
	}

	c.RateLimit, err = parseRate(resolve(p.RateLimit, "RATE_LIMIT", intString(fc.RateLimit), ""), defaultRateLimit)
	if err != nil {
		return Config{}, err
	}
	c.RateBurst, err = parseRate(resolve(p.RateBurst, "RATE_BURST", intString(fc.RateBurst), ""), defaultRateBurst)
	if err != nil {
		return Config{}, err
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

func intString(v *int) string {
	if v == nil {
		return ""
	}

	return strconv.Itoa(*v)
}

func parseRate(s string, defaultVal int) (int, error) {
	if s == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrRateLimitInvalid, "'%s'", s)
	}

	return n, nil
}

// UsesEmulator reports whether the firestore store should talk to a local emulator
func (c Config) UsesEmulator() bool {
	return c.EmulatorHost != ""
}

// RateLimitEnabled reports whether requests should be rate limited
func (c Config) RateLimitEnabled() bool {
	return c.RateLimit > 0 && c.RateBurst > 0
}

func validate(c Config) error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	switch c.Store {
	case StoreFirestore:
		if c.UsesEmulator() {
			if c.ProjectID == "" {
				return ErrProjectIDMissing
			}
		} else if c.CredentialsPath == "" {
			return ErrCredentialsMissing
		}
	case StoreSQL:
		if c.DBDriver != DBDriverSQLite && c.DBDriver != DBDriverPostgres {
			return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
		}
		if c.DBPath == "" {
			return ErrDBMissingPath
		}
	default:
		return errors.Wrapf(ErrStoreInvalid, "'%s'", c.Store)
	}

	if !log.IsValidLevel(c.LogLevel) {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}

	return nil
}
