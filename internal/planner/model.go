package planner

import (
	"errors"
	"fmt"
	"strings"
)

// DisciplineType distinguishes mandatory from optional disciplines.
type DisciplineType string

const (
	DisciplineRequired DisciplineType = "REQUIRED"
	DisciplineElective DisciplineType = "ELECTIVE"
)

// ParseDisciplineType accepts both the canonical names and the curriculum
// abbreviations used by course catalogs (OBG/OPT).
func ParseDisciplineType(raw string) (DisciplineType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "REQUIRED", "OBG":
		return DisciplineRequired, nil
	case "ELECTIVE", "OPT":
		return DisciplineElective, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
}

// Validation errors returned before the allocation starts.
var (
	ErrSlotMismatch  = errors.New("timetable days and hours differ in length")
	ErrDuplicateCode = errors.New("duplicate discipline code")
	ErrEmptyCode     = errors.New("discipline code is required")
	ErrWorkload      = errors.New("discipline workload must be positive")
	ErrUnknownType   = errors.New("unknown discipline type")
)

// TimetableSlot is one concrete meeting pattern. Days[i] meets at Hours[i].
type TimetableSlot struct {
	Days    []string `json:"days"`
	Hours   []string `json:"hours"`
	Teacher string   `json:"teacher"`
}

// ParseSlot builds a slot from the whitespace separated day and hour strings
// used on the wire ("SEG QUA", "AB-M AB-M").
func ParseSlot(days, hours, teacher string) (TimetableSlot, error) {
	slot := TimetableSlot{
		Days:    strings.Fields(days),
		Hours:   strings.Fields(hours),
		Teacher: teacher,
	}
	if len(slot.Days) != len(slot.Hours) {
		return TimetableSlot{}, fmt.Errorf("%w: %d days, %d hours", ErrSlotMismatch, len(slot.Days), len(slot.Hours))
	}
	return slot, nil
}

// String renders the slot back into its wire form.
func (s TimetableSlot) String() string {
	return strings.Join(s.Days, " ") + " / " + strings.Join(s.Hours, " ")
}

func (s TimetableSlot) clone() TimetableSlot {
	return TimetableSlot{
		Days:    append([]string(nil), s.Days...),
		Hours:   append([]string(nil), s.Hours...),
		Teacher: s.Teacher,
	}
}

// Discipline is a course offering.
type Discipline struct {
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Semester          int             `json:"semester"`
	Workload          int             `json:"workload"`
	Type              DisciplineType  `json:"type"`
	Attended          bool            `json:"attended"`
	PrerequisiteCodes []string        `json:"prerequisite_codes"`
	Timetables        []TimetableSlot `json:"timetables"`
}

// IsRequired reports whether the discipline is mandatory.
func (d *Discipline) IsRequired() bool {
	return d.Type == DisciplineRequired
}

// IsElective reports whether the discipline is optional.
func (d *Discipline) IsElective() bool {
	return d.Type == DisciplineElective
}

func (d Discipline) clone() Discipline {
	out := d
	out.PrerequisiteCodes = append([]string(nil), d.PrerequisiteCodes...)
	out.Timetables = make([]TimetableSlot, len(d.Timetables))
	for i, slot := range d.Timetables {
		out.Timetables[i] = slot.clone()
	}
	return out
}

// Validate checks the catalog invariants the allocator relies on.
func Validate(disciplines []Discipline) error {
	seen := make(map[string]struct{}, len(disciplines))
	for i := range disciplines {
		d := &disciplines[i]
		if strings.TrimSpace(d.Code) == "" {
			return fmt.Errorf("discipline %d (%s): %w", i, d.Name, ErrEmptyCode)
		}
		if _, dup := seen[d.Code]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, d.Code)
		}
		seen[d.Code] = struct{}{}
		if d.Workload <= 0 {
			return fmt.Errorf("discipline %s: %w", d.Code, ErrWorkload)
		}
		if d.Type != DisciplineRequired && d.Type != DisciplineElective {
			return fmt.Errorf("discipline %s: %w: %q", d.Code, ErrUnknownType, d.Type)
		}
		for j, slot := range d.Timetables {
			if len(slot.Days) != len(slot.Hours) {
				return fmt.Errorf("discipline %s timetable %d: %w", d.Code, j, ErrSlotMismatch)
			}
		}
	}
	return nil
}

// Placement binds a discipline to the slot chosen for it in a semester.
type Placement struct {
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	Type      DisciplineType `json:"type"`
	Semester  int            `json:"semester"`
	Workload  int            `json:"workload"`
	Timetable TimetableSlot  `json:"timetable"`
}

// SemesterPlan holds the placements committed in one round.
type SemesterPlan struct {
	Round      int         `json:"round"`
	Workload   int         `json:"workload"`
	Placements []Placement `json:"placements"`
}

// Status is the overall outcome of a planning run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Termination explains why the round loop stopped.
type Termination string

const (
	TerminationCompleted   Termination = "completed"
	TerminationNoEligible  Termination = "no_eligible"
	TerminationEmptyRounds Termination = "empty_rounds"
	TerminationRoundLimit  Termination = "round_limit"
)

// ReasonCode classifies why a required discipline was left out of the plan.
type ReasonCode string

const (
	ReasonPrerequisitesUnmet ReasonCode = "PREREQUISITES_UNMET"
	ReasonNoAllowedPeriod    ReasonCode = "NO_ALLOWED_PERIOD"
	ReasonConflictOrWorkload ReasonCode = "CONFLICT_OR_WORKLOAD"
)

var reasonMessages = map[ReasonCode]string{
	ReasonPrerequisitesUnmet: "prerequisites unmet",
	ReasonNoAllowedPeriod:    "no slot in allowed periods",
	ReasonConflictOrWorkload: "schedule conflict or workload limit",
}

// Message returns the human readable form of the reason.
func (r ReasonCode) Message() string {
	return reasonMessages[r]
}

// Rejection is the last cause that kept an eligible candidate out of a round.
type Rejection string

const (
	RejectWorkloadLimit    Rejection = "workload_limit"
	RejectElectiveCap      Rejection = "elective_cap"
	RejectScheduleConflict Rejection = "schedule_conflict"
	RejectRoundCapacity    Rejection = "round_capacity"
)

// Unplaced reports a required discipline the plan could not allocate.
type Unplaced struct {
	Name                 string         `json:"name"`
	Code                 string         `json:"code"`
	Type                 DisciplineType `json:"type"`
	ReasonCode           ReasonCode     `json:"reason_code"`
	Reason               string         `json:"reason"`
	MissingPrerequisites []string       `json:"missing_prerequisites,omitempty"`
	Detail               Rejection      `json:"detail,omitempty"`
}

// FilteredDiscipline is a discipline dropped because none of its slots fall
// in a preferred period.
type FilteredDiscipline struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// PlanResult is the outcome of a planning run.
type PlanResult struct {
	Semesters         []SemesterPlan       `json:"semesters"`
	SemesterCount     int                  `json:"quantity_semester"`
	Status            Status               `json:"prediction_status"`
	Description       string               `json:"description"`
	Unplaced          []Unplaced           `json:"disciplines_errors"`
	ElectiveRemaining int                  `json:"optative_workload_remaining"`
	ElectiveWorkload  int                  `json:"optative_workload"`
	FilteredOut       []FilteredDiscipline `json:"filtered_out"`
	Termination       Termination          `json:"termination"`
	Strategy          string               `json:"strategy"`
	Rounds            int                  `json:"rounds"`
}

// PlacedCodes lists every code placed by the run in placement order.
func (r *PlanResult) PlacedCodes() []string {
	return placedCodes(r.Semesters)
}
