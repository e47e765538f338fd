package planner

// Config tunes a planning run.
type Config struct {
	PreferredPeriods       []Period
	MaxWorkload            int
	MaxElectiveWorkload    int
	CurrentStudentSemester int
	BypassCapstone         bool
	Strategy               Strategy
	MaxPerRound            int
	MaxRounds              int
	MaxEmptyRounds         int
}

// Default limits of a planning run.
const (
	DefaultMaxWorkload            = 800
	DefaultMaxElectiveWorkload    = 400
	DefaultCurrentStudentSemester = 2
	DefaultMaxPerRound            = 7
	DefaultMaxRounds              = 20
	DefaultMaxEmptyRounds         = 3
)

// DefaultConfig returns the configuration used when callers omit parameters.
func DefaultConfig() Config {
	return Config{
		PreferredPeriods:       append([]Period(nil), AllPeriods...),
		MaxWorkload:            DefaultMaxWorkload,
		MaxElectiveWorkload:    DefaultMaxElectiveWorkload,
		CurrentStudentSemester: DefaultCurrentStudentSemester,
		BypassCapstone:         true,
		Strategy:               StrategyScore,
		MaxPerRound:            DefaultMaxPerRound,
		MaxRounds:              DefaultMaxRounds,
		MaxEmptyRounds:         DefaultMaxEmptyRounds,
	}
}

func (c Config) normalize() Config {
	if c.PreferredPeriods == nil {
		c.PreferredPeriods = append([]Period(nil), AllPeriods...)
	}
	if c.MaxWorkload <= 0 {
		c.MaxWorkload = DefaultMaxWorkload
	}
	if c.MaxElectiveWorkload < 0 {
		c.MaxElectiveWorkload = 0
	}
	if c.Strategy == "" {
		c.Strategy = StrategyScore
	}
	if c.MaxPerRound <= 0 {
		c.MaxPerRound = DefaultMaxPerRound
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.MaxEmptyRounds <= 0 {
		c.MaxEmptyRounds = DefaultMaxEmptyRounds
	}
	return c
}

// Option customises a Planner.
type Option func(*Planner)

// WithRanker overrides the ranking strategy named in the configuration.
func WithRanker(r Ranker) Option {
	return func(p *Planner) {
		if r != nil {
			p.ranker = r
		}
	}
}

// WithObserver attaches a trace sink.
func WithObserver(o Observer) Option {
	return func(p *Planner) {
		if o != nil {
			p.observer = o
		}
	}
}
