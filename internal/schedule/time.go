// Package schedule holds the time values used by availability and
// admission: wall-clock times of day, half-open time ranges on a single
// day, and calendar dates.  All comparisons happen on these types so no
// raw time.Time with a location ever crosses into the slot or overlap
// logic.
package schedule

import (
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"
)

// MinutesPerDay bounds TimeOfDay values.
const MinutesPerDay = 24 * 60

// ErrInvalidTime is returned for times that are not "HH:MM" within a day.
var ErrInvalidTime = errors.New("invalid time of day")

// ErrInvalidRange is returned when a range has start >= end.
var ErrInvalidRange = errors.New("invalid time range")

// ErrInvalidDate is returned for dates that are not "YYYY-MM-DD".
var ErrInvalidDate = errors.New("invalid date")

// TimeOfDay is a wall-clock time with minute granularity stored as
// minutes since midnight (0..1439).
type TimeOfDay struct {
    min int
}

// NewTimeOfDay builds a TimeOfDay from an hour and a minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
    if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
        return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
    }
    return TimeOfDay{min: hour*60 + minute}, nil
}

// TimeOfDayFromMinutes converts minutes since midnight into a TimeOfDay.
func TimeOfDayFromMinutes(m int) (TimeOfDay, error) {
    if m < 0 || m >= MinutesPerDay {
        return TimeOfDay{}, fmt.Errorf("%w: %d minutes", ErrInvalidTime, m)
    }
    return TimeOfDay{min: m}, nil
}

// MustTimeOfDay parses s and panics on failure.  Intended for constants
// and tests.
func MustTimeOfDay(s string) TimeOfDay {
    t, err := ParseTimeOfDay(s)
    if err != nil {
        panic(err)
    }
    return t
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.  Single digit hours
// ("9:30") are accepted; seconds are not.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
    s = strings.TrimSpace(s)
    hh, mm, ok := strings.Cut(s, ":")
    if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
        return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
    }
    h, err := strconv.Atoi(hh)
    if err != nil {
        return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
    }
    m, err := strconv.Atoi(mm)
    if err != nil {
        return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
    }
    return NewTimeOfDay(h, m)
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.min }

// Before reports whether t is strictly earlier than u.
func (t TimeOfDay) Before(u TimeOfDay) bool { return t.min < u.min }

// After reports whether t is strictly later than u.
func (t TimeOfDay) After(u TimeOfDay) bool { return t.min > u.min }

// String formats t as "HH:MM".
func (t TimeOfDay) String() string {
    return fmt.Sprintf("%02d:%02d", t.min/60, t.min%60)
}

// TimeRange is a half-open interval [Start, End) within one day.  The
// zero value is not a valid range; build ranges with NewTimeRange.
type TimeRange struct {
    start TimeOfDay
    end   TimeOfDay
}

// NewTimeRange returns the range [start, end).  Zero-length and inverted
// ranges are rejected with ErrInvalidRange.
func NewTimeRange(start, end TimeOfDay) (TimeRange, error) {
    if !start.Before(end) {
        return TimeRange{}, fmt.Errorf("%w: %s-%s", ErrInvalidRange, start, end)
    }
    return TimeRange{start: start, end: end}, nil
}

// ParseTimeRange parses two "HH:MM" boundaries into a range.  Parse
// failures of either side are reported as ErrInvalidTime wrapped in
// ErrInvalidRange so callers can match on the range error alone.
func ParseTimeRange(start, end string) (TimeRange, error) {
    s, err := ParseTimeOfDay(start)
    if err != nil {
        return TimeRange{}, fmt.Errorf("%w: start: %w", ErrInvalidRange, err)
    }
    e, err := ParseTimeOfDay(end)
    if err != nil {
        return TimeRange{}, fmt.Errorf("%w: end: %w", ErrInvalidRange, err)
    }
    return NewTimeRange(s, e)
}

// RangeFromMinutes builds a range from minute offsets, as stored in the
// database.
func RangeFromMinutes(start, end int) (TimeRange, error) {
    s, err := TimeOfDayFromMinutes(start)
    if err != nil {
        return TimeRange{}, err
    }
    // 1440 is not a TimeOfDay, so an end at midnight cannot be represented.
    e, err := TimeOfDayFromMinutes(end)
    if err != nil {
        return TimeRange{}, err
    }
    return NewTimeRange(s, e)
}

// Start returns the inclusive start of r.
func (r TimeRange) Start() TimeOfDay { return r.start }

// End returns the exclusive end of r.
func (r TimeRange) End() TimeOfDay { return r.end }

// Duration returns the length of r.
func (r TimeRange) Duration() time.Duration {
    return time.Duration(r.end.min-r.start.min) * time.Minute
}

// Overlaps reports whether r and o share any time.  Ranges that only touch
// at an endpoint (r.End == o.Start) do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
    return max(r.start.min, o.start.min) < min(r.end.min, o.end.min)
}

// Contains reports whether o lies entirely inside r.
func (r TimeRange) Contains(o TimeRange) bool {
    return o.start.min >= r.start.min && o.end.min <= r.end.min
}

// IsZero reports whether r is the zero value.
func (r TimeRange) IsZero() bool { return r == TimeRange{} }

// String formats r as "HH:MM-HH:MM".
func (r TimeRange) String() string { return r.start.String() + "-" + r.end.String() }

// Date is a calendar day without a time or location.
type Date struct {
    year  int
    month time.Month
    day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
    t, err := time.Parse(dateLayout, strings.TrimSpace(s))
    if err != nil {
        return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
    }
    return DateOf(t), nil
}

// MustDate parses s and panics on failure.
func MustDate(s string) Date {
    d, err := ParseDate(s)
    if err != nil {
        panic(err)
    }
    return d
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
    y, m, d := t.Date()
    return Date{year: y, month: m, day: d}
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// String formats d as "YYYY-MM-DD".
func (d Date) String() string {
    return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}
