package scheduling

import (
	"time"

	"planora/models"
)

// TimeInterval is a half-open time range [Start, End). Never persisted;
// constructed fresh per check.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// NewTimeInterval validates that start is strictly before end.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, &InvalidIntervalError{Start: start, End: end}
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching endpoints (a.End == b.Start) do not overlap.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Minutes returns the interval length in whole minutes.
func (i TimeInterval) Minutes() int {
	return int(i.End.Sub(i.Start).Minutes())
}

// intervalOf views a booking as its time interval.
func intervalOf(b models.Booking) TimeInterval {
	return TimeInterval{Start: b.Start, End: b.End}
}

// minutesIntoDay returns how many minutes into its calendar day t falls.
func minutesIntoDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// dayOf truncates t to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameDay reports whether two instants fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// isoWeekOf keys an instant by its ISO year and week.
type isoWeek struct {
	Year int
	Week int
}

func isoWeekOf(t time.Time) isoWeek {
	year, week := t.ISOWeek()
	return isoWeek{Year: year, Week: week}
}

// bookingMinutes returns a booking's duration in whole minutes.
func bookingMinutes(b models.Booking) int {
	return int(b.End.Sub(b.Start).Minutes())
}
