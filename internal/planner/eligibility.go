package planner

// CodeSet is a set of discipline codes.
type CodeSet map[string]struct{}

// Has reports membership.
func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Add inserts a code.
func (s CodeSet) Add(code string) {
	s[code] = struct{}{}
}

func (s CodeSet) clone() CodeSet {
	out := make(CodeSet, len(s))
	for code := range s {
		out[code] = struct{}{}
	}
	return out
}

// AttendedCodes collects the codes of every attended discipline.
func AttendedCodes(disciplines []Discipline) CodeSet {
	codes := make(CodeSet)
	for i := range disciplines {
		if disciplines[i].Attended {
			codes.Add(disciplines[i].Code)
		}
	}
	return codes
}

// MissingPrerequisites returns the prerequisite codes absent from completed,
// in declared order.
func MissingPrerequisites(d *Discipline, completed CodeSet) []string {
	var missing []string
	for _, code := range d.PrerequisiteCodes {
		if !completed.Has(code) {
			missing = append(missing, code)
		}
	}
	return missing
}

// IsEligible reports whether a discipline can be considered this round.
func IsEligible(d *Discipline, completed CodeSet) bool {
	if d.Attended {
		return false
	}
	for _, code := range d.PrerequisiteCodes {
		if !completed.Has(code) {
			return false
		}
	}
	return true
}
