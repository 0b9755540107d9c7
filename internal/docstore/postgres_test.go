package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgres(mock), mock
}

func TestPostgresPutDocument(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("doc-1", "Board Minutes", "text", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.PutDocument(context.Background(), model.Document{ID: "doc-1", Title: "Board Minutes", Text: "text"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDocument(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, title, text, metadata, created_at FROM documents`).
		WithArgs("doc-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "text", "metadata", "created_at"}).
			AddRow("doc-1", "Board Minutes", "text", []byte(`{"source":"minutes.pdf"}`), time.Now()))

	doc, err := s.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Board Minutes", doc.Title)
	assert.Equal(t, "minutes.pdf", doc.Metadata["source"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetDocumentNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, title, text, metadata, created_at FROM documents`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetDocument(context.Background(), "ghost")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
