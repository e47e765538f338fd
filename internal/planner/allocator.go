package planner

import "fmt"

// Planner allocates disciplines into semesters greedily, one round at a time.
// A Planner holds no run state and may be shared between goroutines.
type Planner struct {
	cfg      Config
	ranker   Ranker
	observer Observer
}

// New builds a planner. An unknown strategy falls back to score ranking
// unless WithRanker supplies one.
func New(cfg Config, opts ...Option) *Planner {
	cfg = cfg.normalize()
	ranker, err := RankerFor(cfg.Strategy)
	if err != nil {
		ranker = ScoreMaximizing{}
	}
	p := &Planner{cfg: cfg, ranker: ranker, observer: nopObserver{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the normalized configuration.
func (p *Planner) Config() Config {
	return p.cfg
}

// Plan runs the allocation over a private copy of disciplines. The returned
// error is non-nil only when the input violates catalog invariants; a plan
// that leaves required disciplines out is reported through PlanResult.Status.
func (p *Planner) Plan(disciplines []Discipline) (*PlanResult, error) {
	if err := Validate(disciplines); err != nil {
		return nil, err
	}
	r := p.newRun(disciplines)
	r.loop()
	return r.assemble(disciplines), nil
}

type loopState int

const (
	stateSemesterClosed loopState = iota
	stateAccumulating
	stateTerminated
)

type run struct {
	cfg      Config
	ranker   Ranker
	observer Observer

	working          []Discipline
	filtered         []FilteredDiscipline
	completed        CodeSet
	electiveWorkload int
	rejections       map[string]Rejection

	round       int
	emptyRounds int
	semesters   []SemesterPlan
	termination Termination
}

func (p *Planner) newRun(input []Discipline) *run {
	pending := make([]Discipline, 0, len(input))
	electiveWorkload := 0
	for i := range input {
		if input[i].Attended {
			if input[i].IsElective() {
				electiveWorkload += input[i].Workload
			}
			continue
		}
		pending = append(pending, input[i])
	}

	working, filtered := FilterByPeriod(pending, p.cfg.PreferredPeriods, p.cfg.BypassCapstone)
	r := &run{
		cfg:              p.cfg,
		ranker:           p.ranker,
		observer:         p.observer,
		working:          working,
		filtered:         filtered,
		completed:        AttendedCodes(input),
		electiveWorkload: electiveWorkload,
		rejections:       make(map[string]Rejection),
		semesters:        make([]SemesterPlan, 0),
	}
	for _, f := range filtered {
		r.emit(Event{Kind: EventFiltered, Code: f.Code, Name: f.Name, Message: "no timetable in preferred periods"})
	}
	return r
}

func (r *run) emit(e Event) {
	r.observer.Observe(e)
}

func (r *run) loop() {
	state := stateSemesterClosed
	for state != stateTerminated {
		switch state {
		case stateSemesterClosed:
			if term, stop := r.shouldStop(); stop {
				r.terminate(term)
				state = stateTerminated
				continue
			}
			state = stateAccumulating
		case stateAccumulating:
			r.round++
			placed, ok := r.fillRound()
			if !ok {
				r.terminate(TerminationNoEligible)
				state = stateTerminated
				continue
			}
			if placed == 0 {
				r.emptyRounds++
			} else {
				r.emptyRounds = 0
			}
			state = stateSemesterClosed
		}
	}
}

func (r *run) terminate(term Termination) {
	r.termination = term
	r.emit(Event{Kind: EventTerminated, Round: r.round, Termination: term, ElectiveWorkload: r.electiveWorkload})
}

func (r *run) shouldStop() (Termination, bool) {
	if r.emptyRounds >= r.cfg.MaxEmptyRounds {
		return TerminationEmptyRounds, true
	}
	if !r.needsMore() {
		return TerminationCompleted, true
	}
	if r.round >= r.cfg.MaxRounds {
		return TerminationRoundLimit, true
	}
	return "", false
}

// needsMore holds while a required discipline is pending, or the elective
// budget is unmet and electives are still pending.
func (r *run) needsMore() bool {
	electivePending := false
	for i := range r.working {
		d := &r.working[i]
		if d.Attended {
			continue
		}
		if d.IsRequired() {
			return true
		}
		electivePending = true
	}
	return electivePending && r.electiveWorkload < r.cfg.MaxElectiveWorkload
}

func (r *run) completedCodes() CodeSet {
	codes := r.completed.clone()
	for i := range r.working {
		if r.working[i].Attended {
			codes.Add(r.working[i].Code)
		}
	}
	return codes
}

// fillRound builds one semester. It returns false when nothing is eligible.
func (r *run) fillRound() (int, bool) {
	r.completed = r.completedCodes()

	pool := make([]*Discipline, 0, len(r.working))
	for i := range r.working {
		d := &r.working[i]
		if IsEligible(d, r.completed) {
			pool = append(pool, d)
			continue
		}
		if !d.Attended {
			r.emit(Event{Kind: EventIneligible, Round: r.round, Code: d.Code, Name: d.Name, Codes: MissingPrerequisites(d, r.completed)})
		}
	}
	if len(pool) == 0 {
		return 0, false
	}

	rc := newRankContext(r.round, r.cfg, r.electiveWorkload, r.working)
	rank(pool, r.ranker, rc)
	r.emit(Event{Kind: EventRoundStart, Round: r.round, Codes: codesOf(pool), ElectiveWorkload: r.electiveWorkload})

	semester := SemesterPlan{Round: r.round, Placements: make([]Placement, 0)}
	var reserved []TimetableSlot
	for i, d := range pool {
		if len(semester.Placements) >= r.cfg.MaxPerRound {
			for _, rest := range pool[i:] {
				r.reject(rest, RejectRoundCapacity, "round is full")
			}
			break
		}
		slot, rejection, msg := r.tryPlace(d, semester.Workload, reserved)
		if rejection != "" {
			r.reject(d, rejection, msg)
			continue
		}

		semester.Placements = append(semester.Placements, Placement{
			Name:      d.Name,
			Code:      d.Code,
			Type:      d.Type,
			Semester:  d.Semester,
			Workload:  d.Workload,
			Timetable: slot.clone(),
		})
		d.Attended = true
		r.completed.Add(d.Code)
		semester.Workload += d.Workload
		if d.IsElective() {
			r.electiveWorkload += d.Workload
		}
		reserved = append(reserved, slot)
		delete(r.rejections, d.Code)
		r.emit(Event{Kind: EventPlaced, Round: r.round, Code: d.Code, Name: d.Name, Workload: semester.Workload, ElectiveWorkload: r.electiveWorkload, Message: slot.String()})
	}

	if len(semester.Placements) > 0 {
		r.semesters = append(r.semesters, semester)
	}
	r.emit(Event{Kind: EventRoundClosed, Round: r.round, Codes: placementCodes(semester), Workload: semester.Workload, ElectiveWorkload: r.electiveWorkload})
	return len(semester.Placements), true
}

// tryPlace picks the first slot of d that fits the round, first-fit.
func (r *run) tryPlace(d *Discipline, roundWorkload int, reserved []TimetableSlot) (TimetableSlot, Rejection, string) {
	if roundWorkload+d.Workload > r.cfg.MaxWorkload {
		return TimetableSlot{}, RejectWorkloadLimit, fmt.Sprintf("workload %d exceeds %d", roundWorkload+d.Workload, r.cfg.MaxWorkload)
	}
	if d.IsElective() && r.electiveCapReached() {
		return TimetableSlot{}, RejectElectiveCap, fmt.Sprintf("elective workload %d reached cap %d", r.electiveWorkload, r.cfg.MaxElectiveWorkload)
	}
	var last TimetableSlot
	for _, slot := range d.Timetables {
		other, hit := conflictsAny(slot, reserved)
		if !hit {
			return slot, "", ""
		}
		last = other
	}
	return TimetableSlot{}, RejectScheduleConflict, "conflicts with " + last.String()
}

// electiveCapReached blocks further electives once the budget is spent. With
// nothing spent yet the first elective is always let through, even when its
// workload alone exceeds the cap.
func (r *run) electiveCapReached() bool {
	return r.electiveWorkload >= r.cfg.MaxElectiveWorkload && r.electiveWorkload != 0
}

func (r *run) reject(d *Discipline, rejection Rejection, msg string) {
	r.rejections[d.Code] = rejection
	r.emit(Event{Kind: EventRejected, Round: r.round, Code: d.Code, Name: d.Name, Rejection: rejection, Message: msg})
}

func codesOf(pool []*Discipline) []string {
	codes := make([]string, len(pool))
	for i, d := range pool {
		codes[i] = d.Code
	}
	return codes
}

func placementCodes(s SemesterPlan) []string {
	codes := make([]string, len(s.Placements))
	for i, p := range s.Placements {
		codes[i] = p.Code
	}
	return codes
}
