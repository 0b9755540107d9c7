package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/query"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question over the stakeholder graph and document index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		question := strings.Join(args, " ")

		if err := cfg.Validate("ask"); err != nil {
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

		olc, err := initOllama()
		if err != nil {
			return eris.Wrap(err, "init ollama client")
		}

		orch, err := initQuery(st.graph, index, olc)
		if err != nil {
			return err
		}

		answer, err := orch.Ask(ctx, question)
		if err != nil {
			var noAnswer *query.NoAnswerError
			if errors.As(err, &noAnswer) {
				zap.L().Warn("no answer found", zap.String("question", question))
				fmt.Println("No answer could be produced from the graph or the indexed documents.")
				return nil
			}
			return eris.Wrap(err, "ask")
		}

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(answer)
		}

		fmt.Println(answer.Text)
		for _, ev := range answer.Evidence {
			if ev.ID != "" {
				fmt.Printf("  [%s] %s\n", ev.ID, ev.Text)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full answer with trace as JSON")
	rootCmd.AddCommand(askCmd)
}
