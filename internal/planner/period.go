package planner

import (
	"fmt"
	"strings"
)

// Period is a coarse time-of-day bucket derived from a slot's hour code.
type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
	PeriodUnknown   Period = ""
)

// AllPeriods is the default preferred-period filter.
var AllPeriods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

var periodByHour = map[string]Period{
	"AB-M": PeriodMorning,
	"CD-M": PeriodMorning,
	"AB-T": PeriodAfternoon,
	"CD-T": PeriodAfternoon,
	"AB-N": PeriodEvening,
	"CD-N": PeriodEvening,
}

// Capstone and thesis disciplines are matched by these name markers.
var capstoneMarkers = []string{"TCC 1", "TCC 2", "TCC I", "TCC II"}

// ParsePeriod maps a period name to its Period.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case PeriodMorning, PeriodAfternoon, PeriodEvening:
		return p, nil
	}
	return PeriodUnknown, fmt.Errorf("unknown period %q", raw)
}

// Classify maps the slot's first hour token to a period.
func Classify(slot TimetableSlot) Period {
	if len(slot.Hours) == 0 {
		return PeriodUnknown
	}
	return periodByHour[slot.Hours[0]]
}

// IsCapstone reports whether the discipline name carries a capstone marker.
func IsCapstone(name string) bool {
	for _, marker := range capstoneMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// IsAllowed decides whether a slot passes the preferred-period filter.
func IsAllowed(slot TimetableSlot, periods []Period, name string, bypassCapstone bool) bool {
	if bypassCapstone && IsCapstone(name) {
		return true
	}
	period := Classify(slot)
	if period == PeriodUnknown {
		return false
	}
	for _, p := range periods {
		if p == period {
			return true
		}
	}
	return false
}

// AllowedSlots returns the discipline's slots that pass the filter, in input order.
func AllowedSlots(d *Discipline, periods []Period, bypassCapstone bool) []TimetableSlot {
	var allowed []TimetableSlot
	for _, slot := range d.Timetables {
		if IsAllowed(slot, periods, d.Name, bypassCapstone) {
			allowed = append(allowed, slot)
		}
	}
	return allowed
}

// FilterByPeriod copies every discipline with at least one allowed slot,
// keeping only those slots. The dropped disciplines are returned separately.
func FilterByPeriod(disciplines []Discipline, periods []Period, bypassCapstone bool) ([]Discipline, []FilteredDiscipline) {
	kept := make([]Discipline, 0, len(disciplines))
	var dropped []FilteredDiscipline
	for i := range disciplines {
		allowed := AllowedSlots(&disciplines[i], periods, bypassCapstone)
		if len(allowed) == 0 {
			dropped = append(dropped, FilteredDiscipline{Name: disciplines[i].Name, Code: disciplines[i].Code})
			continue
		}
		d := disciplines[i].clone()
		d.Timetables = make([]TimetableSlot, len(allowed))
		for j, slot := range allowed {
			d.Timetables[j] = slot.clone()
		}
		kept = append(kept, d)
	}
	return kept, dropped
}
