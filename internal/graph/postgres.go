package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

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
CREATE TABLE IF NOT EXISTS stakeholders (
	id             TEXT PRIMARY KEY,
	document_id    TEXT NOT NULL,
	name           TEXT NOT NULL,
	type           TEXT NOT NULL,
	role           TEXT,
	organization   TEXT,
	contact        TEXT,
	confidence     DOUBLE PRECISION NOT NULL,
	source_excerpt TEXT,
	model          TEXT,
	strategy       TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_stakeholders_document_id ON stakeholders(document_id);
CREATE INDEX IF NOT EXISTS idx_stakeholders_type ON stakeholders(type);
CREATE INDEX IF NOT EXISTS idx_stakeholders_name_lower ON stakeholders(lower(name));
CREATE INDEX IF NOT EXISTS idx_stakeholders_org_lower ON stakeholders(lower(organization));
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "graph: postgres migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var stakeholderColumns = []string{
	"id", "document_id", "name", "type", "role", "organization",
	"contact", "confidence", "source_excerpt", "model", "strategy", "created_at",
}

func (s *PostgresStore) IngestRecords(ctx context.Context, records []model.StakeholderRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.ID, r.DocumentID, r.Name, string(r.Type), r.Role, r.Organization,
			r.Contact, r.Confidence, r.SourceExcerpt, r.Model, string(r.Strategy), now,
		})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "stakeholders",
		Columns:      stakeholderColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	return eris.Wrap(err, "graph: postgres ingest records")
}

func (s *PostgresStore) ExecuteQuery(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	if err := checkReadOnly(query); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, rewritePlaceholders(query), args...)
	if err != nil {
		return nil, classifyQueryError(query, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	out := &ResultSet{Columns: cols}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &ExecutionError{Query: query, Err: err}
		}
		out.Rows = append(out.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyQueryError(query, err)
	}
	return out, nil
}

// rewritePlaceholders converts the builder's ? placeholders to pgx's $n
// form. Question marks inside quoted literals are left alone.
func rewritePlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
