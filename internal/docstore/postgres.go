package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/docex-labs/stakeholder-cli/internal/db"
	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// PostgresStore implements Store using a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore over an existing pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	text       TEXT NOT NULL,
	metadata   JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "docstore: postgres migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) PutDocument(ctx context.Context, doc model.Document) error {
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return eris.Wrap(err, "docstore: marshal metadata")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (id, title, text, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = $2, text = $3, metadata = $4`,
		doc.ID, doc.Title, doc.Text, metaJSON, doc.CreatedAt,
	)
	return eris.Wrapf(err, "docstore: postgres put document %s", doc.ID)
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (model.Document, error) {
	var doc model.Document
	var metaJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, title, text, metadata, created_at FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Text, &metaJSON, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Document{}, &NotFoundError{DocumentID: id}
	}
	if err != nil {
		return model.Document{}, eris.Wrapf(err, "docstore: postgres get document %s", id)
	}

	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &doc.Metadata); err != nil {
			return model.Document{}, eris.Wrap(err, "docstore: unmarshal metadata")
		}
	}
	return doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, text, metadata, created_at FROM documents ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "docstore: postgres list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var metaJSON []byte
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Text, &metaJSON, &doc.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "docstore: postgres scan document")
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &doc.Metadata); err != nil {
				return nil, eris.Wrap(err, "docstore: unmarshal metadata")
			}
		}
		docs = append(docs, doc)
	}
	return docs, eris.Wrap(rows.Err(), "docstore: postgres list iterate")
}
