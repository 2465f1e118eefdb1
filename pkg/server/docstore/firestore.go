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

package docstore

import (
	"context"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreParams configures a Firestore client
type FirestoreParams struct {
	// CredentialsPath is a service account key file. It is read once.
	CredentialsPath string
	// ProjectID overrides the project named in the credential
	ProjectID string
	// Emulator skips credentials; the client library reads
	// FIRESTORE_EMULATOR_HOST itself.
	Emulator bool
}

// FirestoreStore keeps documents in Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore loads the credential and opens a Firestore client
func NewFirestore(ctx context.Context, p FirestoreParams) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if !p.Emulator {
		cred, err := os.ReadFile(p.CredentialsPath)
		if err != nil {
			return nil, errors.Wrapf(err, "reading credentials %s", p.CredentialsPath)
		}
		opts = append(opts, option.WithCredentialsJSON(cred))
	}

	var conf *firebase.Config
	if p.ProjectID != "" {
		conf = &firebase.Config{ProjectID: p.ProjectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firestore client")
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) doc(collection, id string) (*firestore.DocumentRef, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	ref := s.client.Collection(collection).Doc(id)
	if ref == nil {
		return nil, errors.Wrapf(ErrInvalidID, "'%s'", id)
	}

	return ref, nil
}

// Set overwrites the document. No merge option is passed, so fields absent
// from data are removed.
func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	ref, err := s.doc(collection, id)
	if err != nil {
		return err
	}

	if _, err := ref.Set(ctx, data); err != nil {
		return errors.Wrapf(err, "writing document %s/%s", collection, id)
	}

	return nil
}

// Get reads one document
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	ref, err := s.doc(collection, id)
	if err != nil {
		return nil, err
	}

	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading document %s/%s", collection, id)
	}

	return snap.Data(), nil
}

// Close closes the Firestore client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
