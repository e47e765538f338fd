package cli

import (
	"github.com/spf13/cobra"
)

// Version is reported by --version.
const Version = "1.0.0"

// NewRootCmd builds the planner command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "planner",
		Short:         "Allocate curriculum disciplines into semesters",
		Long:          `Builds study plans from a discipline catalog without running the HTTP service.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSimulateCmd(), newCompareCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
