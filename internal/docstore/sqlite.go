package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "docstore: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "docstore: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	text       TEXT NOT NULL,
	metadata   TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "docstore: sqlite migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutDocument(ctx context.Context, doc model.Document) error {
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return eris.Wrap(err, "docstore: marshal metadata")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, text, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title, text = excluded.text, metadata = excluded.metadata`,
		doc.ID, doc.Title, doc.Text, string(metaJSON), doc.CreatedAt,
	)
	return eris.Wrapf(err, "docstore: sqlite put document %s", doc.ID)
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, text, metadata, created_at FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, &NotFoundError{DocumentID: id}
	}
	if err != nil {
		return model.Document{}, eris.Wrapf(err, "docstore: sqlite get document %s", id)
	}
	return doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, text, metadata, created_at FROM documents ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "docstore: sqlite list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "docstore: sqlite scan document")
		}
		docs = append(docs, doc)
	}
	return docs, eris.Wrap(rows.Err(), "docstore: sqlite list iterate")
}

func scanDocument(scan func(...any) error) (model.Document, error) {
	var doc model.Document
	var metaJSON sql.NullString
	if err := scan(&doc.ID, &doc.Title, &doc.Text, &metaJSON, &doc.CreatedAt); err != nil {
		return model.Document{}, err
	}
	if metaJSON.Valid && metaJSON.String != "" && metaJSON.String != "null" {
		if err := json.Unmarshal([]byte(metaJSON.String), &doc.Metadata); err != nil {
			return model.Document{}, err
		}
	}
	return doc, nil
}
