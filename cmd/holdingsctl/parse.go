package main

import (
	"fmt"

	"etf-analysis/internal/application/holdingscsv"
	"etf-analysis/internal/domain"
	"etf-analysis/internal/pkg/validation"

	"github.com/spf13/cobra"
)

type parseOutput struct {
	File       string                    `json:"file"`
	HeaderRow  int                       `json:"header_row"`
	Skipped    int                       `json:"skipped"`
	Stats      *holdingscsv.Stats        `json:"stats"`
	Validation validation.HoldingsReport `json:"validation"`
	Holdings   []domain.Holding          `json:"holdings,omitempty"`
}

func newParseCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "parse <file.csv>",
		Short: "Parse a holdings export and print holdings, stats and validation as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readFile(args[0])
			if err != nil {
				return err
			}
			res, err := holdingscsv.ParseDetailed(text)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := parseOutput{
				File:       args[0],
				HeaderRow:  res.HeaderRow,
				Skipped:    res.Skipped,
				Stats:      holdingscsv.GetStats(res.Holdings),
				Validation: validation.ValidateHoldings(res.Holdings),
			}
			if !summary {
				out.Holdings = res.Holdings
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "Omit the holding list")
	return cmd
}
