package planner

const (
	descriptionSuccess = "study plan completed successfully"
	descriptionError   = "some disciplines could not be allocated"
)

// assemble classifies every required discipline left out of the plan and
// builds the result. input is the caller's untouched list.
func (r *run) assemble(input []Discipline) *PlanResult {
	placed := AttendedCodes(input)
	for _, code := range placedCodes(r.semesters) {
		placed.Add(code)
	}

	unplaced := make([]Unplaced, 0)
	for i := range input {
		d := &input[i]
		if !d.IsRequired() || placed.Has(d.Code) {
			continue
		}
		unplaced = append(unplaced, r.classify(d))
	}

	result := &PlanResult{
		Semesters:         r.semesters,
		SemesterCount:     len(r.semesters),
		Unplaced:          unplaced,
		ElectiveRemaining: max(0, r.cfg.MaxElectiveWorkload-r.electiveWorkload),
		ElectiveWorkload:  r.electiveWorkload,
		FilteredOut:       r.filtered,
		Termination:       r.termination,
		Strategy:          r.ranker.Name(),
		Rounds:            r.round,
	}
	if result.FilteredOut == nil {
		result.FilteredOut = make([]FilteredDiscipline, 0)
	}
	if len(unplaced) > 0 {
		result.Status = StatusError
		result.Description = descriptionError
	} else {
		result.Status = StatusSuccess
		result.Description = descriptionSuccess
	}
	return result
}

func (r *run) classify(d *Discipline) Unplaced {
	out := Unplaced{Name: d.Name, Code: d.Code, Type: d.Type}
	switch missing := MissingPrerequisites(d, r.completed); {
	case len(missing) > 0:
		out.ReasonCode = ReasonPrerequisitesUnmet
		out.MissingPrerequisites = missing
	case len(AllowedSlots(d, r.cfg.PreferredPeriods, r.cfg.BypassCapstone)) == 0:
		out.ReasonCode = ReasonNoAllowedPeriod
	default:
		out.ReasonCode = ReasonConflictOrWorkload
		out.Detail = r.rejections[d.Code]
	}
	out.Reason = out.ReasonCode.Message()
	return out
}

func placedCodes(semesters []SemesterPlan) []string {
	var codes []string
	for _, s := range semesters {
		codes = append(codes, placementCodes(s)...)
	}
	return codes
}
