package planner

import "fmt"

// --- Fixtures ---

var (
	fixtureDays  = []string{"SEG", "TER", "QUA", "QUI", "SEX"}
	fixtureHours = []string{"AB-M", "CD-M", "AB-T", "CD-T", "AB-N", "CD-N"}
)

func mustSlot(days, hours string) TimetableSlot {
	slot, err := ParseSlot(days, hours, "Prof. Silva")
	if err != nil {
		panic(err)
	}
	return slot
}

func required(code string, workload int, prereqs []string, slots ...TimetableSlot) Discipline {
	return Discipline{
		Name:              code,
		Code:              code,
		Semester:          2,
		Workload:          workload,
		Type:              DisciplineRequired,
		PrerequisiteCodes: prereqs,
		Timetables:        slots,
	}
}

func elective(code string, workload int, prereqs []string, slots ...TimetableSlot) Discipline {
	d := required(code, workload, prereqs, slots...)
	d.Type = DisciplineElective
	return d
}

// distinctSlot returns the i-th of a family of mutually non-conflicting morning slots.
func distinctSlot(i int) TimetableSlot {
	return mustSlot(fixtureDays[i%len(fixtureDays)], fixtureHours[(i/len(fixtureDays))%2])
}

// generatedCatalog builds a deterministic curriculum with prerequisite
// chains, overlapping timetables and a few afternoon-only disciplines.
func generatedCatalog(n int) []Discipline {
	out := make([]Discipline, 0, n)
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("D%02d", i)
		var prereqs []string
		if i >= 4 {
			prereqs = append(prereqs, fmt.Sprintf("D%02d", i-4))
		}
		if i%5 == 0 && i >= 7 {
			prereqs = append(prereqs, fmt.Sprintf("D%02d", i-7))
		}

		firstHour := fixtureHours[i%len(fixtureHours)]
		secondHour := fixtureHours[(i+3)%len(fixtureHours)]
		if i%7 == 2 {
			firstHour, secondHour = "AB-T", "CD-T"
		}
		first := mustSlot(
			fixtureDays[i%len(fixtureDays)]+" "+fixtureDays[(i+2)%len(fixtureDays)],
			firstHour+" "+firstHour,
		)
		second := mustSlot(fixtureDays[(i+1)%len(fixtureDays)], secondHour)

		d := required(code, 30+(i*37)%120, prereqs, first, second)
		d.Name = "Disciplina " + code
		d.Semester = i/4 + 1
		if i%3 == 0 {
			d.Type = DisciplineElective
		}
		out = append(out, d)
	}
	return out
}

func cloneAll(in []Discipline) []Discipline {
	out := make([]Discipline, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}
