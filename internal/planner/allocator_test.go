package planner

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPlacesPrerequisitesInEarlierSemesters(t *testing.T) {
	input := []Discipline{
		required("A", 60, nil, mustSlot("SEG", "AB-M")),
		required("B", 60, []string{"A"}, mustSlot("SEG", "AB-M")),
	}

	result, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	require.Len(t, result.Semesters, 2)
	assert.Equal(t, []string{"A"}, placementCodes(result.Semesters[0]))
	assert.Equal(t, []string{"B"}, placementCodes(result.Semesters[1]))
	assert.Equal(t, 2, result.SemesterCount)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, TerminationCompleted, result.Termination)
	assert.Empty(t, result.Unplaced)
}

func TestPlanLetsFirstOversizedElectiveThrough(t *testing.T) {
	input := []Discipline{elective("E", 500, nil, mustSlot("SEG", "AB-M"))}

	result, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"E"}, result.PlacedCodes())
	assert.Equal(t, 500, result.ElectiveWorkload)
	assert.Equal(t, 0, result.ElectiveRemaining)
	assert.Equal(t, StatusSuccess, result.Status)
}

func TestPlanStopsElectivesAtCap(t *testing.T) {
	input := []Discipline{
		elective("E1", 300, nil, distinctSlot(0)),
		elective("E2", 200, nil, distinctSlot(1)),
		elective("E3", 200, nil, distinctSlot(2)),
	}
	rec := &Recorder{}

	result, err := New(DefaultConfig(), WithObserver(rec)).Plan(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"E2", "E3"}, result.PlacedCodes())
	assert.Equal(t, 400, result.ElectiveWorkload)
	assert.Equal(t, 0, result.ElectiveRemaining)
	assert.Equal(t, StatusSuccess, result.Status, "electives never make a plan fail")
	assert.Equal(t, TerminationCompleted, result.Termination)

	rejected := rec.Filter(EventRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, "E1", rejected[0].Code)
	assert.Equal(t, RejectElectiveCap, rejected[0].Rejection)
}

func TestPlanAllRequiredAttendedWithoutElectives(t *testing.T) {
	a := required("A", 60, nil, mustSlot("SEG", "AB-M"))
	a.Attended = true
	b := required("B", 60, []string{"A"}, mustSlot("TER", "CD-T"))
	b.Attended = true

	result, err := New(DefaultConfig()).Plan([]Discipline{a, b})
	require.NoError(t, err)

	assert.Empty(t, result.Semesters)
	assert.Equal(t, 0, result.SemesterCount)
	assert.Empty(t, result.Unplaced)
	assert.Equal(t, 0, result.ElectiveWorkload)
	assert.Equal(t, 400, result.ElectiveRemaining)
	assert.Equal(t, StatusSuccess, result.Status)
}

func TestPlanWithEverythingAttended(t *testing.T) {
	a := required("A", 60, nil, mustSlot("SEG", "AB-M"))
	a.Attended = true
	e := elective("E", 100, nil, mustSlot("TER", "AB-M"))
	e.Attended = true

	result, err := New(DefaultConfig()).Plan([]Discipline{a, e})
	require.NoError(t, err)

	assert.Empty(t, result.Semesters)
	assert.Equal(t, 0, result.SemesterCount)
	assert.Equal(t, 0, result.Rounds)
	assert.Equal(t, 100, result.ElectiveWorkload)
	assert.Equal(t, 300, result.ElectiveRemaining)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, TerminationCompleted, result.Termination)
	assert.NotNil(t, result.Unplaced)
	assert.NotNil(t, result.FilteredOut)
}

func TestPlanRespectsWorkloadLimit(t *testing.T) {
	input := []Discipline{
		required("X", 300, nil, distinctSlot(0)),
		required("Y", 300, nil, distinctSlot(1)),
		required("Z", 300, nil, distinctSlot(2)),
	}

	result, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	require.Len(t, result.Semesters, 2)
	assert.Equal(t, []string{"X", "Y"}, placementCodes(result.Semesters[0]))
	assert.Equal(t, 600, result.Semesters[0].Workload)
	assert.Equal(t, []string{"Z"}, placementCodes(result.Semesters[1]))
}

func TestPlanDefersConflictingDiscipline(t *testing.T) {
	input := []Discipline{
		required("A", 60, nil, mustSlot("SEG", "AB-M")),
		required("B", 60, nil, mustSlot("SEG", "AB-M")),
	}

	result, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	require.Len(t, result.Semesters, 2)
	assert.Equal(t, []string{"A"}, placementCodes(result.Semesters[0]))
	assert.Equal(t, []string{"B"}, placementCodes(result.Semesters[1]))
}

func TestPlanFallsBackToAlternativeSlot(t *testing.T) {
	input := []Discipline{
		required("A", 60, nil, mustSlot("SEG", "AB-M")),
		required("B", 60, nil, mustSlot("SEG", "AB-M"), mustSlot("TER", "AB-M")),
	}

	result, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	require.Len(t, result.Semesters, 1)
	placements := result.Semesters[0].Placements
	require.Len(t, placements, 2)
	assert.Equal(t, []string{"TER"}, placements[1].Timetable.Days)
}

func TestPlanCapsDisciplinesPerRound(t *testing.T) {
	var input []Discipline
	for i := 0; i < 9; i++ {
		input = append(input, required(string(rune('A'+i)), 60, nil, distinctSlot(i)))
	}
	rec := &Recorder{}

	result, err := New(DefaultConfig(), WithObserver(rec)).Plan(input)
	require.NoError(t, err)

	require.Len(t, result.Semesters, 2)
	assert.Len(t, result.Semesters[0].Placements, DefaultMaxPerRound)
	assert.Len(t, result.Semesters[1].Placements, 2)
	for _, e := range rec.Filter(EventRejected) {
		assert.Equal(t, RejectRoundCapacity, e.Rejection)
	}
}

func TestPlanStopsAfterEmptyRounds(t *testing.T) {
	input := []Discipline{
		required("F", 900, nil, mustSlot("SEG", "AB-M")),
		required("G", 60, []string{"F"}, mustSlot("TER", "AB-M")),
	}

	result, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	assert.Empty(t, result.Semesters)
	assert.Equal(t, TerminationEmptyRounds, result.Termination)
	assert.Equal(t, DefaultMaxEmptyRounds, result.Rounds)
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, descriptionError, result.Description)
	require.Len(t, result.Unplaced, 2)

	assert.Equal(t, "F", result.Unplaced[0].Code)
	assert.Equal(t, ReasonConflictOrWorkload, result.Unplaced[0].ReasonCode)
	assert.Equal(t, RejectWorkloadLimit, result.Unplaced[0].Detail)
	assert.Equal(t, "schedule conflict or workload limit", result.Unplaced[0].Reason)

	assert.Equal(t, "G", result.Unplaced[1].Code)
	assert.Equal(t, ReasonPrerequisitesUnmet, result.Unplaced[1].ReasonCode)
	assert.Equal(t, []string{"F"}, result.Unplaced[1].MissingPrerequisites)
}

func TestPlanStopsWhenNothingIsEligible(t *testing.T) {
	input := []Discipline{required("A", 60, []string{"GHOST"}, mustSlot("SEG", "AB-M"))}

	result, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	assert.Equal(t, TerminationNoEligible, result.Termination)
	assert.Equal(t, 1, result.Rounds)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, ReasonPrerequisitesUnmet, result.Unplaced[0].ReasonCode)
	assert.Equal(t, []string{"GHOST"}, result.Unplaced[0].MissingPrerequisites)
}

func TestPlanHonoursRoundLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRounds = 2
	input := []Discipline{
		required("A", 60, nil, mustSlot("SEG", "AB-M")),
		required("B", 60, []string{"A"}, mustSlot("SEG", "AB-M")),
		required("C", 60, []string{"B"}, mustSlot("SEG", "AB-M")),
		required("D", 60, []string{"C"}, mustSlot("SEG", "AB-M")),
	}

	result, err := New(cfg).Plan(input)
	require.NoError(t, err)

	assert.Equal(t, TerminationRoundLimit, result.Termination)
	assert.Equal(t, 2, result.SemesterCount)
	require.Len(t, result.Unplaced, 2)
	assert.Equal(t, ReasonConflictOrWorkload, result.Unplaced[0].ReasonCode)
	assert.Equal(t, ReasonPrerequisitesUnmet, result.Unplaced[1].ReasonCode)
	assert.Equal(t, []string{"C"}, result.Unplaced[1].MissingPrerequisites)
}

func TestPlanReportsFilteredRequiredDiscipline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreferredPeriods = []Period{PeriodMorning}
	input := []Discipline{
		required("DAY", 60, nil, mustSlot("SEG", "AB-M")),
		required("NIGHT", 60, nil, mustSlot("SEG", "AB-N")),
	}

	result, err := New(cfg).Plan(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"DAY"}, result.PlacedCodes())
	assert.Equal(t, []FilteredDiscipline{{Name: "NIGHT", Code: "NIGHT"}}, result.FilteredOut)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, ReasonNoAllowedPeriod, result.Unplaced[0].ReasonCode)
	assert.Equal(t, StatusError, result.Status)
}

func TestPlanCapstoneBypass(t *testing.T) {
	capstone := required("TCC", 120, nil, mustSlot("QUI", "AB-N"))
	capstone.Name = "TCC I"
	input := []Discipline{capstone}

	cfg := DefaultConfig()
	cfg.PreferredPeriods = []Period{PeriodMorning}

	result, err := New(cfg).Plan(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCC"}, result.PlacedCodes())

	cfg.BypassCapstone = false
	result, err = New(cfg).Plan(input)
	require.NoError(t, err)
	assert.Empty(t, result.PlacedCodes())
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, ReasonNoAllowedPeriod, result.Unplaced[0].ReasonCode)
}

func TestPlanStrategiesDisagreeOnOrder(t *testing.T) {
	light := required("LIGHT", 30, nil, mustSlot("SEG", "AB-M"))
	light.Semester = 5
	due := required("DUE", 200, nil, mustSlot("TER", "AB-M"))
	due.Semester = 2
	input := []Discipline{light, due}

	cfg := DefaultConfig()
	cfg.MaxPerRound = 1

	score, err := New(cfg).Plan(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"LIGHT", "DUE"}, score.PlacedCodes())
	assert.Equal(t, "score", score.Strategy)

	cfg.Strategy = StrategyDistance
	distance, err := New(cfg).Plan(input)
	require.NoError(t, err)
	assert.Equal(t, []string{"DUE", "LIGHT"}, distance.PlacedCodes())
	assert.Equal(t, "distance", distance.Strategy)
}

func TestPlanWithCustomRanker(t *testing.T) {
	byCodeDesc := RankerFunc(func(a, b *Discipline, _ *RankContext) int {
		switch {
		case a.Code > b.Code:
			return -1
		case a.Code < b.Code:
			return 1
		}
		return 0
	})
	cfg := DefaultConfig()
	cfg.MaxPerRound = 1
	input := []Discipline{
		required("A", 60, nil, distinctSlot(0)),
		required("B", 60, nil, distinctSlot(1)),
		required("C", 60, nil, distinctSlot(2)),
	}

	result, err := New(cfg, WithRanker(byCodeDesc)).Plan(input)
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "B", "A"}, result.PlacedCodes())
	assert.Equal(t, "custom", result.Strategy)
}

func TestPlanRejectsInvalidCatalog(t *testing.T) {
	cases := []struct {
		name  string
		input []Discipline
		want  error
	}{
		{"duplicate code", []Discipline{required("A", 60, nil), required("A", 60, nil)}, ErrDuplicateCode},
		{"empty code", []Discipline{required("", 60, nil)}, ErrEmptyCode},
		{"zero workload", []Discipline{required("A", 0, nil)}, ErrWorkload},
		{"unknown type", []Discipline{{Code: "A", Workload: 60, Type: "MANDATORY"}}, ErrUnknownType},
		{"ragged slot", []Discipline{required("A", 60, nil, TimetableSlot{Days: []string{"SEG"}})}, ErrSlotMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := New(DefaultConfig()).Plan(tc.input)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tc.want), err.Error())
		})
	}
}

func TestPlanDoesNotMutateInput(t *testing.T) {
	input := generatedCatalog(20)
	before := cloneAll(input)

	_, err := New(DefaultConfig()).Plan(input)
	require.NoError(t, err)

	assert.Equal(t, before, input)
}

func TestPlanIsDeterministic(t *testing.T) {
	input := generatedCatalog(30)
	cfg := DefaultConfig()
	cfg.MaxWorkload = 300

	first, err := New(cfg).Plan(input)
	require.NoError(t, err)
	second, err := New(cfg).Plan(input)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestPlanInvariantsOnGeneratedCatalogs(t *testing.T) {
	configs := map[string]func(*Config){
		"defaults": func(*Config) {},
		"tight workload": func(c *Config) {
			c.MaxWorkload = 200
		},
		"distance": func(c *Config) {
			c.Strategy = StrategyDistance
			c.CurrentStudentSemester = 4
		},
		"morning and evening": func(c *Config) {
			c.PreferredPeriods = []Period{PeriodMorning, PeriodEvening}
		},
		"small rounds": func(c *Config) {
			c.MaxPerRound = 2
			c.MaxElectiveWorkload = 100
		},
	}
	for name, tweak := range configs {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tweak(&cfg)
			input := generatedCatalog(36)
			input[0].Attended = true
			input[1].Attended = true

			result, err := New(cfg).Plan(input)
			require.NoError(t, err)
			assertPlanInvariants(t, cfg, input, result)
		})
	}
}

func TestPlanEmitsTerminationLast(t *testing.T) {
	rec := &Recorder{}
	_, err := New(DefaultConfig(), WithObserver(rec)).Plan(generatedCatalog(12))
	require.NoError(t, err)

	events := rec.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, EventTerminated, events[len(events)-1].Kind)
	assert.Len(t, rec.Filter(EventTerminated), 1)
	assert.NotEmpty(t, rec.Filter(EventPlaced))
	assert.Len(t, rec.Filter(EventRoundStart), len(rec.Filter(EventRoundClosed)))
}

func TestNewFallsBackToScoreForUnknownStrategy(t *testing.T) {
	p := New(Config{Strategy: "random"})

	result, err := p.Plan([]Discipline{required("A", 60, nil, mustSlot("SEG", "AB-M"))})
	require.NoError(t, err)

	assert.Equal(t, "score", result.Strategy)
	assert.Equal(t, DefaultMaxWorkload, p.Config().MaxWorkload)
	assert.Equal(t, AllPeriods, p.Config().PreferredPeriods)
}

func assertPlanInvariants(t *testing.T, cfg Config, input []Discipline, result *PlanResult) {
	t.Helper()

	byCode := make(map[string]Discipline, len(input))
	for _, d := range input {
		byCode[d.Code] = d
	}
	done := AttendedCodes(input)
	seen := make(map[string]bool)

	for _, semester := range result.Semesters {
		require.NotEmpty(t, semester.Placements)
		assert.LessOrEqual(t, len(semester.Placements), cfg.MaxPerRound)

		total := 0
		for i, p := range semester.Placements {
			total += p.Workload
			assert.False(t, seen[p.Code], "%s placed twice", p.Code)
			assert.False(t, byCode[p.Code].Attended, "%s was already attended", p.Code)
			seen[p.Code] = true

			for _, pre := range byCode[p.Code].PrerequisiteCodes {
				assert.True(t, done.Has(pre), "%s placed before prerequisite %s", p.Code, pre)
			}
			for _, other := range semester.Placements[i+1:] {
				assert.False(t, Conflicts(p.Timetable, other.Timetable), "%s conflicts with %s", p.Code, other.Code)
			}
		}
		assert.Equal(t, total, semester.Workload)
		assert.LessOrEqual(t, total, cfg.MaxWorkload)

		for _, p := range semester.Placements {
			done.Add(p.Code)
		}
	}
	assert.Equal(t, len(result.Semesters), result.SemesterCount)
	assert.Equal(t, len(result.Unplaced) == 0, result.Status == StatusSuccess)
}
