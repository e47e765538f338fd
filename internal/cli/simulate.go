package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner/internal/loader"
	"github.com/noah-isme/study-planner/internal/planner"
	"github.com/noah-isme/study-planner/internal/service"
)

type simulateOptions struct {
	planOptions
	strategy string
	trace    bool
	verbose  bool
	export   string
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Build a study plan and print it as JSON",
		Long: `Runs the allocation over the catalog and prints the result as JSON.
With --trace the allocation events are written to stderr, one JSON object per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", string(planner.StrategyScore), "Ranking strategy: score or distance")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Write the allocation trace to stderr")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log allocation events")
	cmd.Flags().StringVar(&opts.export, "export", "", "Also write the plan to this .csv or .pdf file")
	return cmd
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	disciplines, err := loader.LoadFile(opts.input, opts.format)
	if err != nil {
		return err
	}
	cfg, err := opts.config(opts.strategy)
	if err != nil {
		return err
	}

	recorder := &planner.Recorder{}
	var observers multiObserver
	if opts.trace {
		observers = append(observers, recorder)
	}
	if opts.verbose {
		logr, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logr.Sync() //nolint:errcheck
		observers = append(observers, service.NewZapObserver(logr))
	}

	result, err := planner.New(cfg, planner.WithObserver(observers)).Plan(disciplines)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	if opts.trace {
		enc := json.NewEncoder(cmd.ErrOrStderr())
		for _, e := range recorder.Events() {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	if opts.export != "" {
		return exportResult(result, opts.export)
	}
	return nil
}

// multiObserver forwards every event to each observer in order.
type multiObserver []planner.Observer

func (m multiObserver) Observe(e planner.Event) {
	for _, o := range m {
		o.Observe(e)
	}
}

func exportResult(result *planner.PlanResult, path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	file, err := service.NewExportService(nil, nil, nil).Render(result, name, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
