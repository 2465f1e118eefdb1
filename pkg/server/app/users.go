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
	"context"
	"time"

	"github.com/circadianapp/circadian/pkg/server/docstore"
	"github.com/circadianapp/circadian/pkg/server/log"
	"github.com/pkg/errors"
)

const (
	// UsersCollection holds one document per user, keyed by uid
	UsersCollection = "users"
	// UIDField is the record key naming the user
	UIDField = "uid"
)

// Record is a user record as supplied by the client. Only uid is interpreted.
type Record map[string]interface{}

// UID returns the record's uid
func (r Record) UID() (string, error) {
	v, ok := r[UIDField]
	if !ok {
		return "", ErrUIDRequired
	}

	uid, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrUIDInvalid, "got %T", v)
	}
	if err := docstore.ValidateID(uid); err != nil {
		return "", errors.Wrap(ErrUIDInvalid, err.Error())
	}

	return uid, nil
}

// AddUser writes the record as the full contents of users/{uid}. An existing
// record with the same uid is replaced, not merged.
func (a *App) AddUser(ctx context.Context, rec Record) error {
	uid, err := rec.UID()
	if err != nil {
		return err
	}

	start := time.Now()
	err = a.Store.Set(ctx, UsersCollection, uid, rec)
	a.Metrics.ObserveWrite(UsersCollection, err, time.Since(start))
	if err != nil {
		return errors.Wrapf(err, "writing user %s", uid)
	}

	log.WithFields(log.Fields{
		"uid":    uid,
		"fields": len(rec),
	}).Debug("User written.")

	return nil
}

// GetUser reads the record stored for uid
func (a *App) GetUser(ctx context.Context, uid string) (Record, error) {
	data, err := a.Store.Get(ctx, UsersCollection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading user %s", uid)
	}

	return Record(data), nil
}
