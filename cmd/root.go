package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stakeholder-cli",
	Short: "Stakeholder extraction and hybrid document query",
	Long:  "Extracts stakeholder records from documents through a capability-aware model fallback chain, stores them in a queryable graph, and answers questions over the graph and a semantic document index.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
