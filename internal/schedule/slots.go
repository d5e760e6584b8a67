package schedule

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"
)

// DefaultSlotDuration is the bookable slot length used when none is configured.
const DefaultSlotDuration = time.Hour

// ErrInvalidDuration is returned for slot durations that are not a
// positive whole number of minutes.
var ErrInvalidDuration = errors.New("invalid slot duration")

// GenerateSlots returns the bookable slots of window: contiguous ranges of
// length d starting at window.Start.  A trailing partial slot that would
// run past window.End is dropped, so a window shorter than d yields
// nothing.  The sequence is lazy and may be ranged over any number of
// times with identical results.
func GenerateSlots(window TimeRange, d time.Duration) (iter.Seq[TimeRange], error) {
	if d <= 0 || d%time.Minute != 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDuration, d)
	}
	if window.IsZero() {
		return nil, fmt.Errorf("%w: empty operating window", ErrInvalidRange)
	}
	step := int(d / time.Minute)
	return func(yield func(TimeRange) bool) {
		for cur := window.start.min; cur+step <= window.end.min; cur += step {
			slot := TimeRange{start: TimeOfDay{min: cur}, end: TimeOfDay{min: cur + step}}
			if !yield(slot) {
				return
			}
		}
	}, nil
}

// Slots is GenerateSlots collected into a slice.
func Slots(window TimeRange, d time.Duration) ([]TimeRange, error) {
	seq, err := GenerateSlots(window, d)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
