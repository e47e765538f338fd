package planner

// Conflicts reports whether two slots meet on the same day at the same hour
// marker. Every day/hour pair of a is compared with every pair of b.
func Conflicts(a, b TimetableSlot) bool {
	for i := range a.Days {
		for j := range b.Days {
			if a.Days[i] == b.Days[j] && a.Hours[i] == b.Hours[j] {
				return true
			}
		}
	}
	return false
}

// conflictsAny reports whether slot collides with any reserved slot.
func conflictsAny(slot TimetableSlot, reserved []TimetableSlot) (TimetableSlot, bool) {
	for _, other := range reserved {
		if Conflicts(slot, other) {
			return other, true
		}
	}
	return TimetableSlot{}, false
}
