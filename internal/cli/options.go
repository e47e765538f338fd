package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/study-planner/internal/planner"
)

// planOptions are the flags shared by simulate and compare.
type planOptions struct {
	input            string
	format           string
	maxWorkload      int
	maxElective      int
	currentSemester  int
	maxPerRound      int
	periods          []string
	noCapstoneBypass bool
}

func (o *planOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.input, "input", "i", "", "Discipline catalog (JSON or CSV)")
	flags.StringVar(&o.format, "format", "", "Input format: json or csv (default from extension)")
	flags.IntVar(&o.maxWorkload, "max-workload", planner.DefaultMaxWorkload, "Workload cap per semester")
	flags.IntVar(&o.maxElective, "max-elective", planner.DefaultMaxElectiveWorkload, "Total elective workload to reach")
	flags.IntVar(&o.currentSemester, "current-semester", planner.DefaultCurrentStudentSemester, "Student's current semester")
	flags.IntVar(&o.maxPerRound, "max-per-round", planner.DefaultMaxPerRound, "Disciplines placed per semester")
	flags.StringSliceVar(&o.periods, "periods", nil, "Preferred periods (morning,afternoon,evening)")
	flags.BoolVar(&o.noCapstoneBypass, "no-capstone-bypass", false, "Apply the period filter to capstone disciplines too")
	_ = cmd.MarkFlagRequired("input")
}

func (o *planOptions) config(strategy string) (planner.Config, error) {
	cfg := planner.DefaultConfig()
	cfg.MaxWorkload = o.maxWorkload
	cfg.MaxElectiveWorkload = o.maxElective
	cfg.CurrentStudentSemester = o.currentSemester
	cfg.MaxPerRound = o.maxPerRound
	cfg.BypassCapstone = !o.noCapstoneBypass

	s, err := planner.ParseStrategy(strategy)
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = s

	if len(o.periods) > 0 {
		cfg.PreferredPeriods = make([]planner.Period, 0, len(o.periods))
		for _, raw := range o.periods {
			p, err := planner.ParsePeriod(raw)
			if err != nil {
				return cfg, fmt.Errorf("--periods: %w", err)
			}
			cfg.PreferredPeriods = append(cfg.PreferredPeriods, p)
		}
	}
	return cfg, nil
}
