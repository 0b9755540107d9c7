package graph

import (
	"context"
	"database/sql"
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
		return nil, eris.Wrap(err, "graph: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "graph: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS stakeholders (
	id             TEXT PRIMARY KEY,
	document_id    TEXT NOT NULL,
	name           TEXT NOT NULL,
	type           TEXT NOT NULL,
	role           TEXT,
	organization   TEXT,
	contact        TEXT,
	confidence     REAL NOT NULL,
	source_excerpt TEXT,
	model          TEXT,
	strategy       TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_stakeholders_document_id ON stakeholders(document_id);
CREATE INDEX IF NOT EXISTS idx_stakeholders_type ON stakeholders(type);
CREATE INDEX IF NOT EXISTS idx_stakeholders_name ON stakeholders(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_stakeholders_organization ON stakeholders(organization COLLATE NOCASE);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "graph: sqlite migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) IngestRecords(ctx context.Context, records []model.StakeholderRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "graph: sqlite begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stakeholders (id, document_id, name, type, role, organization, contact, confidence, source_excerpt, model, strategy, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, type = excluded.type, role = excluded.role,
			organization = excluded.organization, contact = excluded.contact,
			confidence = excluded.confidence, source_excerpt = excluded.source_excerpt,
			model = excluded.model, strategy = excluded.strategy`)
	if err != nil {
		return eris.Wrap(err, "graph: sqlite prepare insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.DocumentID, r.Name, string(r.Type), r.Role, r.Organization,
			r.Contact, r.Confidence, r.SourceExcerpt, r.Model, string(r.Strategy), now,
		); err != nil {
			return eris.Wrapf(err, "graph: sqlite insert stakeholder %s", r.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "graph: sqlite commit")
}

func (s *SQLiteStore) ExecuteQuery(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	if err := checkReadOnly(query); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyQueryError(query, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{Query: query, Err: err}
	}

	out := &ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExecutionError{Query: query, Err: err}
		}
		// database/sql hands back []byte for TEXT columns; normalize.
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecutionError{Query: query, Err: err}
	}
	return out, nil
}
