package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"familytree/internal/docstore"
)

// toFields converts a model or partial update into document fields.
// The id lives outside the document body and is dropped.
func toFields(v any) (docstore.Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var fields docstore.Fields
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	delete(fields, "id")
	return fields, nil
}

// fromDocument decodes document fields into out.
func fromDocument(doc docstore.Document, out any) error {
	b, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", doc.ID, err)
	}
	return nil
}

// updateFields encodes a partial update and stamps updatedAt.
func updateFields(update any, now time.Time) (docstore.Fields, error) {
	fields, err := toFields(update)
	if err != nil {
		return nil, err
	}
	fields["updatedAt"] = now
	return fields, nil
}

// archiveFields soft-deletes a record.
func archiveFields(now time.Time) docstore.Fields {
	return docstore.Fields{"isActive": false, "deletedAt": now, "updatedAt": now}
}

// archiveMutation is the batch entry that archives one document.
func archiveMutation(collection, id string, now time.Time) docstore.Mutation {
	return docstore.Mutation{Collection: collection, ID: id, Fields: archiveFields(now)}
}
