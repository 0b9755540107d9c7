// Package docstore persists ingested documents for extraction and indexing.
package docstore

import (
	"context"
	"fmt"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// NotFoundError is returned for unknown document IDs.
type NotFoundError struct {
	DocumentID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("docstore: no document %q", e.DocumentID)
}

// Store is the document persistence interface.
type Store interface {
	PutDocument(ctx context.Context, doc model.Document) error
	GetDocument(ctx context.Context, id string) (model.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]model.Document, error)
	Migrate(ctx context.Context) error
	Close() error
}
