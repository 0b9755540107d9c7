package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/internal/registry"
)

var modelsPreference string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the registered model profiles and their strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Default()

		profiles := reg.All()
		if modelsPreference != "" {
			if !model.ValidPreference(model.Preference(modelsPreference)) {
				return fmt.Errorf("unknown preference %q (want cost, quality, speed, or privacy)", modelsPreference)
			}
			profiles = reg.CandidatesFor(model.Preference(modelsPreference))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tPROVIDER\tSTRATEGY\tLOCAL\tCOST")
		for _, p := range profiles {
			local := ""
			if p.Local {
				local = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Provider, p.Strategy, local, p.CostTier)
		}
		return w.Flush()
	},
}

func init() {
	modelsCmd.Flags().StringVar(&modelsPreference, "preference", "", "print the fallback order for a preference instead of the full table")
	rootCmd.AddCommand(modelsCmd)
}
