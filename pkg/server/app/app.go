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

package app

import (
	"github.com/circadianapp/circadian/pkg/server/docstore"
	"github.com/circadianapp/circadian/pkg/server/metrics"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyStore is an error for missing document store in the app configuration
	ErrEmptyStore = errors.New("No document store was provided")
	// ErrEmptyMetrics is an error for missing metrics in the app configuration
	ErrEmptyMetrics = errors.New("No metrics were provided")
)

// App is an application context shared by every request handler
type App struct {
	Store   docstore.Store
	Metrics *metrics.Metrics
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.Store == nil {
		return ErrEmptyStore
	}
	if a.Metrics == nil {
		return ErrEmptyMetrics
	}

	return nil
}
