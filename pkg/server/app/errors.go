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
	"github.com/pkg/errors"
)

var (
	// ErrUIDRequired is an error for a user record without a uid
	ErrUIDRequired = errors.New("uid is required")
	// ErrUIDInvalid is an error for a uid that is not a usable document id
	ErrUIDInvalid = errors.New("uid must be a non-empty string without '/'")
	// ErrNotFound is an error for a user record that does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidPayload is an error for a request body that is not a JSON object
	ErrInvalidPayload = errors.New("request body must be a JSON object")
	// ErrPayloadTooLarge is an error for a request body over the size limit
	ErrPayloadTooLarge = errors.New("request body too large")
)
