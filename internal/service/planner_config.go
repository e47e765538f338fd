package service

import (
	"fmt"

	"github.com/noah-isme/study-planner/internal/planner"
	"github.com/noah-isme/study-planner/pkg/config"
)

// PlannerDefaults maps the configured defaults onto an engine configuration.
// Zero values fall back to the engine's own defaults.
func PlannerDefaults(cfg config.PlannerConfig) (planner.Config, error) {
	out := planner.DefaultConfig()
	if cfg.MaxWorkload > 0 {
		out.MaxWorkload = cfg.MaxWorkload
	}
	if cfg.MaxElectiveWorkload >= 0 {
		out.MaxElectiveWorkload = cfg.MaxElectiveWorkload
	}
	if cfg.CurrentStudentSemester > 0 {
		out.CurrentStudentSemester = cfg.CurrentStudentSemester
	}
	out.BypassCapstone = cfg.BypassCapstone
	if cfg.MaxPerRound > 0 {
		out.MaxPerRound = cfg.MaxPerRound
	}
	if cfg.MaxRounds > 0 {
		out.MaxRounds = cfg.MaxRounds
	}
	if cfg.MaxEmptyRounds > 0 {
		out.MaxEmptyRounds = cfg.MaxEmptyRounds
	}

	strategy, err := planner.ParseStrategy(cfg.Strategy)
	if err != nil {
		return out, fmt.Errorf("PLANNER_STRATEGY: %w", err)
	}
	out.Strategy = strategy

	if len(cfg.PreferredPeriods) > 0 {
		out.PreferredPeriods = make([]planner.Period, 0, len(cfg.PreferredPeriods))
		for _, raw := range cfg.PreferredPeriods {
			period, err := planner.ParsePeriod(raw)
			if err != nil {
				return out, fmt.Errorf("PLANNER_PREFERRED_PERIODS: %w", err)
			}
			out.PreferredPeriods = append(out.PreferredPeriods, period)
		}
	}
	return out, nil
}
