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

package controllers

import (
	"net/http"

	"github.com/circadianapp/circadian/pkg/server/app"
)

// HealthMessage is the body of the root route
const HealthMessage = "Circadian App Backend Running!"

// NewHealth creates a new Health controller.
func NewHealth(app *app.App) *Health {
	return &Health{}
}

// Health is a health controller. It never touches the store.
type Health struct {
}

// Index handles GET /
func (n *Health) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, messageResponse{Message: HealthMessage})
}
