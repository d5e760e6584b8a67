package schedule

import "iter"

// HasConflict reports whether candidate overlaps any range in existing.
// existing must already be narrowed to the same court, date and confirmed
// status; this function only compares ranges.
func HasConflict(candidate TimeRange, existing []TimeRange) bool {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return true
		}
	}
	return false
}

// FilterAvailable yields the slots of all that overlap nothing in existing.
func FilterAvailable(all iter.Seq[TimeRange], existing []TimeRange) iter.Seq[TimeRange] {
	return func(yield func(TimeRange) bool) {
		for slot := range all {
			if HasConflict(slot, existing) {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}
