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
	"encoding/json"
	"net/http"

	"github.com/circadianapp/circadian/pkg/server/app"
	"github.com/circadianapp/circadian/pkg/server/log"
	"github.com/circadianapp/circadian/pkg/server/middleware"
	"github.com/pkg/errors"
)

type messageResponse struct {
	Message string `json:"message"`
}

// respondJSON encodes v as the response body
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// getStatusCode maps an error to the HTTP status it is reported with
func getStatusCode(err error) int {
	switch errors.Cause(err) {
	case app.ErrUIDRequired, app.ErrUIDInvalid, app.ErrInvalidPayload:
		return http.StatusBadRequest
	case app.ErrPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case app.ErrNotFound:
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// handleJSONError responds with the status for err. Server errors are logged
// and their details withheld from the client.
func handleJSONError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	statusCode := getStatusCode(err)

	if statusCode >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.RequestIDFromContext(r.Context()),
		}).ErrorWrap(err, msg)

		respondJSON(w, statusCode, messageResponse{Message: http.StatusText(statusCode)})
		return
	}

	respondJSON(w, statusCode, messageResponse{Message: err.Error()})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, messageResponse{Message: "not found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, messageResponse{Message: "method not allowed"})
}
