// Package docstore is the document database used for account and profile
// data outside the event lifecycle: JSON documents addressed by collection
// and id.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collections in use.
const (
	CollectionUsers    = "users"
	CollectionAdmins   = "admins"
	CollectionProfiles = "profiles"
)

// Store is a generic get/set/update/delete interface over named collections.
type Store interface {
	// Get decodes the document into dest. Missing documents yield NOT_FOUND.
	Get(ctx context.Context, collection, id string, dest any) error

	// Set creates or replaces the document.
	Set(ctx context.Context, collection, id string, doc any) error

	// Update merges fields into the top level of an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// List returns the ids in a collection, most recently written first.
	List(ctx context.Context, collection string) ([]string, error)
}

func encode(doc any) (json.RawMessage, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("encode document: must be a JSON object")
	}
	return data, nil
}
