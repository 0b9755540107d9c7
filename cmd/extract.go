package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/extractor"
	"github.com/docex-labs/stakeholder-cli/internal/model"
)

var (
	extractDocID      string
	extractPreference string
	extractModel      string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract stakeholders from a stored document",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
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

		olc, err := initOllama()
		if err != nil {
			return eris.Wrap(err, "init ollama client")
		}
		orch, _ := initExtractor(olc)

		doc, err := st.docs.GetDocument(ctx, extractDocID)
		if err != nil {
			return eris.Wrap(err, "load document")
		}

		req := model.ExtractionRequest{
			DocumentID:    extractDocID,
			Preference:    model.Preference(extractPreference),
			ModelOverride: extractModel,
		}

		result, err := orch.Extract(ctx, doc, req, func(p extractor.Progress) {
			zap.L().Info("attempt starting",
				zap.Int("attempt", p.AttemptsDone+1),
				zap.Int("total", p.AttemptsTotal),
				zap.String("model", p.CurrentModel),
			)
		})
		if err != nil {
			return eris.Wrap(err, "extraction")
		}

		if err := st.graph.IngestRecords(ctx, result.Stakeholders); err != nil {
			return eris.Wrap(err, "ingest records")
		}

		index, err := initIndex()
		if err != nil {
			return eris.Wrap(err, "open vector index")
		}
		if err := index.IngestRecords(ctx, result.Stakeholders); err != nil {
			return eris.Wrap(err, "embed records")
		}

		zap.L().Info("extraction complete",
			zap.String("document", extractDocID),
			zap.String("model", result.Model),
			zap.Int("stakeholders", len(result.Stakeholders)),
			zap.Float64("quality", result.QualityScore),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractDocID, "doc", "", "document ID (required)")
	extractCmd.Flags().StringVar(&extractPreference, "preference", "quality", "chain ordering: cost, quality, speed, privacy")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "pin a specific model to the front of the chain")
	_ = extractCmd.MarkFlagRequired("doc")
	rootCmd.AddCommand(extractCmd)
}
