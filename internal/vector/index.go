// Package vector maintains the chromem-go embedding index over ingested
// documents and extracted stakeholders, and serves the semantic path's
// similarity search.
package vector

import (
	"context"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// DefaultCollection is the index collection name.
const DefaultCollection = "documents"

// Hit is one similarity match.
type Hit struct {
	DocumentID string
	Content    string
	Similarity float64
}

// Index wraps a chromem collection.
type Index struct {
	col    *chromem.Collection
	logger *zap.Logger
}

// Open creates or opens a persistent index at path. An empty path falls
// back to an in-memory database, which tests use.
func Open(path, collection string, embed chromem.EmbeddingFunc) (*Index, error) {
	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, eris.Wrap(err, "vector: open persistent db")
		}
	}
	return New(db, collection, embed)
}

// New builds an Index over an existing chromem database.
func New(db *chromem.DB, collection string, embed chromem.EmbeddingFunc) (*Index, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	col, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, eris.Wrapf(err, "vector: collection %s", collection)
	}
	return &Index{col: col, logger: zap.L().Named("vector")}, nil
}

// IndexDocuments embeds and stores the documents. Re-indexing a document ID
// replaces the previous entry.
func (ix *Index) IndexDocuments(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		meta := map[string]string{"title": d.Title}
		for k, v := range d.Metadata {
			meta[k] = v
		}
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:       d.ID,
			Content:  d.Title + "\n" + d.Text,
			Metadata: meta,
		})
	}

	if err := ix.col.AddDocuments(ctx, chromemDocs, 4); err != nil {
		return eris.Wrap(err, "vector: add documents")
	}
	ix.logger.Info("documents indexed", zap.Int("count", len(docs)))
	return nil
}

// IngestRecords embeds extracted stakeholders as searchable snippets so
// semantic answers draw on extraction output, not only raw documents.
// Record IDs are prefixed to keep them out of the document namespace.
func (ix *Index) IngestRecords(ctx context.Context, records []model.StakeholderRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, chromem.Document{
			ID:      "stakeholder:" + r.ID,
			Content: recordSnippet(r),
			Metadata: map[string]string{
				"kind":        "stakeholder",
				"document_id": r.DocumentID,
				"name":        r.Name,
			},
		})
	}

	if err := ix.col.AddDocuments(ctx, docs, 4); err != nil {
		return eris.Wrap(err, "vector: add stakeholder records")
	}
	ix.logger.Info("stakeholder records indexed", zap.Int("count", len(records)))
	return nil
}

// recordSnippet renders one stakeholder as a short prose line for
// embedding.
func recordSnippet(r model.StakeholderRecord) string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Role != "" {
		b.WriteString(" - " + r.Role)
	}
	if r.Type != "" {
		b.WriteString(" (" + string(r.Type) + ")")
	}
	if r.Organization != "" {
		b.WriteString(" at " + r.Organization)
	}
	if r.SourceExcerpt != "" {
		b.WriteString(". " + r.SourceExcerpt)
	}
	return b.String()
}

// Count returns the number of indexed items.
func (ix *Index) Count() int {
	return ix.col.Count()
}

// Search returns up to k hits with similarity at or above floor, best
// first. chromem requires k be at most the collection size, so k is capped.
func (ix *Index) Search(ctx context.Context, query string, k int, floor float64) ([]Hit, error) {
	count := ix.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := ix.col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, eris.Wrap(err, "vector: query")
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		sim := float64(r.Similarity)
		if sim < floor {
			continue
		}
		hits = append(hits, Hit{DocumentID: r.ID, Content: r.Content, Similarity: sim})
	}
	return hits, nil
}
