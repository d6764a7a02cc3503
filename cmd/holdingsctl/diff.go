package main

import (
	"fmt"

	"etf-analysis/internal/application/compare"
	"etf-analysis/internal/application/holdingscsv"
	"etf-analysis/internal/domain"

	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "diff <base.csv> <target.csv>",
		Short: "Compare two holdings exports",
		Long:  "Prints the summary, new, removed and reweighted holdings as JSON, or the export rows with --csv.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sides [2]*holdingscsv.Result
			for i, path := range args {
				text, err := readFile(path)
				if err != nil {
					return err
				}
				if sides[i], err = holdingscsv.ParseDetailed(text); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			res := compare.Diff(sides[0].Holdings, sides[1].Holdings)
			if asCSV {
				return res.WriteCSV(cmd.OutOrStdout())
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Summary compare.Summary        `json:"summary"`
				Added   []domain.Holding       `json:"new_holdings"`
				Removed []domain.Holding       `json:"removed_holdings"`
				Changed []compare.WeightChange `json:"weight_changes"`
			}{res.Summary, res.Added, res.Removed, res.Changed})
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Write CSV export rows instead of JSON")
	return cmd
}
