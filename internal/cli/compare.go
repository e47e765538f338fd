package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/study-planner/internal/loader"
	"github.com/noah-isme/study-planner/internal/planner"
)

var compareStrategies = []planner.Strategy{planner.StrategyScore, planner.StrategyDistance}

func newCompareCmd() *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every ranking strategy and summarise the plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runCompare(cmd *cobra.Command, opts *planOptions) error {
	disciplines, err := loader.LoadFile(opts.input, opts.format)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tSTATUS\tSEMESTERS\tUNPLACED\tELECTIVE LEFT\tTERMINATION")
	for _, strategy := range compareStrategies {
		cfg, err := opts.config(string(strategy))
		if err != nil {
			return err
		}
		result, err := planner.New(cfg).Plan(disciplines)
		if err != nil {
			return fmt.Errorf("invalid catalog: %w", err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			result.Strategy,
			result.Status,
			result.SemesterCount,
			len(result.Unplaced),
			result.ElectiveRemaining,
			result.Termination,
		)
	}
	return w.Flush()
}
