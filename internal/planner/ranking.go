package planner

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Strategy names a built-in ranking heuristic.
type Strategy string

const (
	StrategyScore    Strategy = "score"
	StrategyDistance Strategy = "distance"
)

// ParseStrategy maps a strategy name to its Strategy.
func ParseStrategy(raw string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return StrategyScore, nil
	case StrategyScore, StrategyDistance:
		return s, nil
	}
	return "", fmt.Errorf("unknown ranking strategy %q", raw)
}

// RankContext is the state snapshot a round is ranked against.
type RankContext struct {
	Round                  int
	CurrentStudentSemester int
	ElectiveWorkload       int
	MaxElectiveWorkload    int
	unlocks                map[string]int
}

func newRankContext(round int, cfg Config, electiveWorkload int, pool []Discipline) *RankContext {
	unlocks := make(map[string]int)
	for i := range pool {
		if pool[i].Attended {
			continue
		}
		for _, code := range pool[i].PrerequisiteCodes {
			unlocks[code]++
		}
	}
	return &RankContext{
		Round:                  round,
		CurrentStudentSemester: cfg.CurrentStudentSemester,
		ElectiveWorkload:       electiveWorkload,
		MaxElectiveWorkload:    cfg.MaxElectiveWorkload,
		unlocks:                unlocks,
	}
}

// Unlocks counts the not-yet-attended disciplines that list code as a prerequisite.
func (rc *RankContext) Unlocks(code string) int {
	return rc.unlocks[code]
}

// Ranker orders the eligible pool of a round. Compare returns a negative
// number when a should be tried before b.
type Ranker interface {
	Name() string
	Compare(a, b *Discipline, rc *RankContext) int
}

// RankerFunc adapts a comparison function to the Ranker interface.
type RankerFunc func(a, b *Discipline, rc *RankContext) int

// Name implements Ranker.
func (f RankerFunc) Name() string { return "custom" }

// Compare implements Ranker.
func (f RankerFunc) Compare(a, b *Discipline, rc *RankContext) int { return f(a, b, rc) }

// ScoreMaximizing favours required disciplines, rewards unlocking future
// disciplines and penalises heavy workloads.
type ScoreMaximizing struct{}

// Name implements Ranker.
func (ScoreMaximizing) Name() string { return string(StrategyScore) }

// Compare implements Ranker.
func (ScoreMaximizing) Compare(a, b *Discipline, rc *RankContext) int {
	return cmp.Compare(Score(b, rc), Score(a, rc))
}

// Score is the heuristic value used by ScoreMaximizing.
func Score(d *Discipline, rc *RankContext) int {
	score := 50
	if d.IsRequired() {
		score = 100
	}
	score += 20 * rc.Unlocks(d.Code)
	score -= d.Workload / 10
	return score
}

// DistanceMinimizing favours required disciplines, then disciplines nearest
// the student's current semester, then electives landing closest to the
// elective budget.
type DistanceMinimizing struct{}

// Name implements Ranker.
func (DistanceMinimizing) Name() string { return string(StrategyDistance) }

// Compare implements Ranker.
func (DistanceMinimizing) Compare(a, b *Discipline, rc *RankContext) int {
	if c := cmp.Compare(electiveRank(a), electiveRank(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(semesterDistance(a, rc), semesterDistance(b, rc)); c != 0 {
		return c
	}
	return cmp.Compare(electiveOvershoot(a, rc), electiveOvershoot(b, rc))
}

func electiveRank(d *Discipline) int {
	if d.IsRequired() {
		return 0
	}
	return 1
}

func semesterDistance(d *Discipline, rc *RankContext) int {
	return abs(d.Semester - rc.CurrentStudentSemester)
}

func electiveOvershoot(d *Discipline, rc *RankContext) int {
	if !d.IsElective() {
		return 0
	}
	return abs(rc.MaxElectiveWorkload - (rc.ElectiveWorkload + d.Workload))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RankerFor resolves a built-in strategy.
func RankerFor(s Strategy) (Ranker, error) {
	switch s {
	case StrategyScore, "":
		return ScoreMaximizing{}, nil
	case StrategyDistance:
		return DistanceMinimizing{}, nil
	}
	return nil, fmt.Errorf("unknown ranking strategy %q", s)
}

// rank sorts the pool in place; ties keep input order.
func rank(pool []*Discipline, r Ranker, rc *RankContext) {
	slices.SortStableFunc(pool, func(a, b *Discipline) int {
		return r.Compare(a, b, rc)
	})
}
