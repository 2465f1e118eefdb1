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
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ErrConfigFormat is an error for a config file with an unsupported extension
var ErrConfigFormat = errors.New("Unsupported config file format")

// fileConfig mirrors Params in a config file. Every key is optional.
type fileConfig struct {
	Port        string `toml:"port" yaml:"port"`
	Store       string `toml:"store" yaml:"store"`
	Credentials string `toml:"credentials" yaml:"credentials"`
	ProjectID   string `toml:"project_id" yaml:"project_id"`
	DBDriver    string `toml:"db_driver" yaml:"db_driver"`
	DBPath      string `toml:"db_path" yaml:"db_path"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	MetricsAddr string `toml:"metrics_addr" yaml:"metrics_addr"`
	RateLimit   *int   `toml:"rate_limit" yaml:"rate_limit"`
	RateBurst   *int   `toml:"rate_burst" yaml:"rate_burst"`

	loaded bool
}

// loadFile reads the config file at path. A missing file is only an error
// when the path was given explicitly.
func loadFile(path string, required bool) (fileConfig, error) {
	var fc fileConfig

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return fc, nil
		}
		return fc, errors.Wrapf(err, "reading config file %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(b), &fc); err != nil {
			return fc, errors.Wrapf(err, "decoding toml config %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(b, &fc); err != nil {
			return fc, errors.Wrapf(err, "decoding yaml config %s", path)
		}
	default:
		return fc, errors.Wrapf(ErrConfigFormat, "'%s'", path)
	}

	fc.loaded = true

	return fc, nil
}
