package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

var ingestConcurrency int

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest documents into the store and semantic index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		st, err := initStores(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := migrateStores(ctx, st); err != nil {
			return err
		}

		index, err := initIndex()
		if err != nil {
			return eris.Wrap(err, "open vector index")
		}

		var (
			mu   sync.Mutex
			docs []model.Document
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(ingestConcurrency)
		for _, path := range args {
			g.Go(func() error {
				text, err := os.ReadFile(path)
				if err != nil {
					return eris.Wrapf(err, "read %s", path)
				}

				doc := model.Document{
					ID:    uuid.NewString(),
					Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
					Text:  string(text),
				}
				if err := st.docs.PutDocument(gctx, doc); err != nil {
					return eris.Wrapf(err, "store %s", path)
				}

				mu.Lock()
				docs = append(docs, doc)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := index.IndexDocuments(ctx, docs); err != nil {
			return eris.Wrap(err, "index documents")
		}

		zap.L().Info("ingest complete",
			zap.Int("documents", len(docs)),
			zap.Int("indexed_total", index.Count()),
		)

		summary := make([]map[string]string, 0, len(docs))
		for _, d := range docs {
			summary = append(summary, map[string]string{"id": d.ID, "title": d.Title})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 4, "parallel file reads")
	rootCmd.AddCommand(ingestCmd)
}
