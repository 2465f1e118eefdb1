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
	"github.com/circadianapp/circadian/pkg/server/docstore"
	"github.com/pkg/errors"
)

// maxPayloadBytes matches Firestore's maximum document size
const maxPayloadBytes = 1 << 20

// UserAddedMessage acknowledges a user write
const UserAddedMessage = "User Added"

// NewUsers creates a new Users controller.
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

func parsePayload(w http.ResponseWriter, r *http.Request) (app.Record, error) {
	body := http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	defer body.Close()

	data, err := docstore.DecodeObject(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, app.ErrPayloadTooLarge
		}

		return nil, errors.Wrap(app.ErrInvalidPayload, errors.Cause(err).Error())
	}

	return app.Record(data), nil
}

// Create handles POST /add-user. The whole payload becomes the user's
// document.
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	rec, err := parsePayload(w, r)
	if err != nil {
		handleJSONError(w, r, err, "parsing payload")
		return
	}

	if err := u.app.AddUser(r.Context(), rec); err != nil {
		handleJSONError(w, r, err, "adding user")
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: UserAddedMessage})
}
