package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRecords() []model.StakeholderRecord {
	return []model.StakeholderRecord{
		{
			ID: "r1", DocumentID: "doc-1", Name: "Jane Smith",
			Type: model.StakeholderIndividual, Role: "Chair",
			Organization: "Finance Committee", Confidence: 0.92,
			Model: "gpt-4o", Strategy: model.StrategyNativeSchema,
		},
		{
			ID: "r2", DocumentID: "doc-1", Name: "Acme Corp",
			Type: model.StakeholderOrganization, Role: "Vendor",
			Confidence: 0.81,
			Model:      "gpt-4o", Strategy: model.StrategyNativeSchema,
		},
	}
}

func TestSQLiteIngestAndQuery(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.IngestRecords(ctx, testRecords()))

	rs, err := s.ExecuteQuery(ctx,
		`SELECT name, role FROM stakeholders WHERE type = ? ORDER BY name`,
		string(model.StakeholderIndividual),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "role"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "Jane Smith", rs.Rows[0][0])
	assert.Equal(t, "Chair", rs.Rows[0][1])
}

func TestSQLiteIngestUpsertsByID(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	records := testRecords()
	require.NoError(t, s.IngestRecords(ctx, records))

	records[0].Role = "Treasurer"
	require.NoError(t, s.IngestRecords(ctx, records[:1]))

	rs, err := s.ExecuteQuery(ctx, `SELECT role FROM stakeholders WHERE id = ?`, "r1")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, "Treasurer", rs.Rows[0][0])
}

func TestSQLiteEmptyResult(t *testing.T) {
	s := newTestSQLite(t)

	rs, err := s.ExecuteQuery(context.Background(), `SELECT name FROM stakeholders WHERE organization = ?`, "Nobody Inc")
	require.NoError(t, err)
	assert.True(t, rs.Empty())
}

func TestSQLiteRejectsNonSelect(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.ExecuteQuery(context.Background(), `DELETE FROM stakeholders`)
	var syntaxErr *QuerySyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestSQLiteSyntaxErrorClassified(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.ExecuteQuery(context.Background(), `SELECT FROM WHERE`)
	var syntaxErr *QuerySyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestSQLiteIngestEmptyIsNoop(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.IngestRecords(context.Background(), nil))
}
