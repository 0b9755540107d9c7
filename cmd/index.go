package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var indexBatch int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Re-embed every stored document into the semantic index",
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

		docs, err := st.docs.ListDocuments(ctx, indexBatch)
		if err != nil {
			return eris.Wrap(err, "list documents")
		}
		if len(docs) == 0 {
			zap.L().Info("nothing to index")
			return nil
		}

		if err := index.IndexDocuments(ctx, docs); err != nil {
			return eris.Wrap(err, "index documents")
		}

		zap.L().Info("reindex complete",
			zap.Int("documents", len(docs)),
			zap.Int("indexed_total", index.Count()),
		)
		return nil
	},
}

func init() {
	indexCmd.Flags().IntVar(&indexBatch, "limit", 10000, "maximum documents to re-embed")
	rootCmd.AddCommand(indexCmd)
}
