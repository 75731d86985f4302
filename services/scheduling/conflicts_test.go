package scheduling

import (
	"sort"
	"testing"
	"time"

	"planora/models"

	"go.uber.org/zap"
)

// fakeBookingReader serves a fixed booking set with the same filtering and
// ordering contract as the Mongo repository.
type fakeBookingReader struct {
	bookings []models.Booking
}

func (f *fakeBookingReader) FindByAgentAndPeriod(agentID string, from, to time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.AgentID == agentID && b.Start.Before(to) && b.End.After(from) && b.Status != models.BookingCancelled {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeBookingReader) FindOverlapping(agentID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.AgentID != agentID || b.ID == excludeID || b.Status == models.BookingCancelled {
			continue
		}
		if b.Start.Before(end) && b.End.After(start) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeBookingReader) FindPreviousBooking(agentID string, before time.Time) (*models.Booking, error) {
	dayStart := dayOf(before)
	var prev *models.Booking
	for _, b := range f.bookings {
		if b.AgentID != agentID || b.Status == models.BookingCancelled {
			continue
		}
		if b.End.After(dayStart) && !b.End.After(before) {
			if prev == nil || b.End.After(prev.End) {
				match := b
				prev = &match
			}
		}
	}
	return prev, nil
}

// fakeAvailabilityReader answers window coverage from a fixed set.
type fakeAvailabilityReader struct {
	windows []models.AvailabilityWindow
}

func (f *fakeAvailabilityReader) FindForDayAndTime(agentID string, day time.Weekday, startMin, endMin int) (*models.AvailabilityWindow, error) {
	for _, w := range f.windows {
		if w.AgentID == agentID && w.DayOfWeek == day && w.Start <= startMin && w.End >= endMin {
			match := w
			return &match, nil
		}
	}
	return nil, nil
}

// fullWeekAvailability covers every weekday end to end.
func fullWeekAvailability(agentID string) []models.AvailabilityWindow {
	windows := make([]models.AvailabilityWindow, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		windows = append(windows, models.AvailabilityWindow{
			AgentID:   agentID,
			DayOfWeek: day,
			Start:     0,
			End:       24 * 60,
		})
	}
	return windows
}

func newTestDetector(bookings []models.Booking, windows []models.AvailabilityWindow) *DefaultConflictDetector {
	return NewConflictDetector(
		&fakeBookingReader{bookings: bookings},
		&fakeAvailabilityReader{windows: windows},
		nil,
		FixedTravelTimeEstimator{Minutes: 15},
		DefaultRules(),
		nil,
		zap.NewNop(),
	)
}

// monday is a fixed reference day (2026-03-02 is a Monday).
var monday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func at(day time.Time, h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func booking(id, agentID string, start, end time.Time) models.Booking {
	return models.Booking{
		ID:      id,
		AgentID: agentID,
		Start:   start,
		End:     end,
		Status:  models.BookingScheduled,
	}
}

func conflictTypes(conflicts []models.Conflict) []models.ConflictType {
	types := make([]models.ConflictType, len(conflicts))
	for i, c := range conflicts {
		types[i] = c.Type
	}
	return types
}

func TestDetectAllConflictsRejectsInvalidRange(t *testing.T) {
	d := newTestDetector(nil, nil)
	if _, err := d.DetectAllConflicts("agent-1", monday, monday); err == nil {
		t.Fatalf("DetectAllConflicts with empty range: got nil error, want InvalidIntervalError")
	}
}

func TestDetectAllConflictsCleanCalendar(t *testing.T) {
	bookings := []models.Booking{
		booking("b1", "agent-1", at(monday, 9, 0), at(monday, 11, 0)),
		booking("b2", "agent-1", at(monday, 12, 0), at(monday, 14, 0)),
	}
	d := newTestDetector(bookings, fullWeekAvailability("agent-1"))

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("clean calendar: got %d conflicts %v, want 0", len(conflicts), conflictTypes(conflicts))
	}
}

func TestDetectAllConflictsOverlapAndOrdering(t *testing.T) {
	bookings := []models.Booking{
		booking("b1", "agent-1", at(monday, 10, 0), at(monday, 12, 0)),
		booking("b2", "agent-1", at(monday, 11, 0), at(monday, 13, 0)),
	}
	d := newTestDetector(bookings, fullWeekAvailability("agent-1"))

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	// The overlapping pair also fails the travel check (negative gap); the
	// critical overlap must sort first.
	if len(conflicts) != 2 {
		t.Fatalf("overlapping pair: got %d conflicts %v, want 2", len(conflicts), conflictTypes(conflicts))
	}
	if conflicts[0].Type != models.ConflictBookingOverlap || conflicts[0].Severity != models.SeverityCritical {
		t.Fatalf("first conflict: got %s/%s, want booking_overlap/critical", conflicts[0].Type, conflicts[0].Severity)
	}
	if conflicts[1].Type != models.ConflictTravelTime {
		t.Fatalf("second conflict: got %s, want travel_time", conflicts[1].Type)
	}
}

func TestDetectAllConflictsAvailabilityMissing(t *testing.T) {
	bookings := []models.Booking{
		booking("b1", "agent-1", at(monday, 9, 0), at(monday, 11, 0)),
	}
	// Window covers 10:00-18:00 only, so a 09:00 start is uncovered.
	windows := []models.AvailabilityWindow{{
		AgentID:   "agent-1",
		DayOfWeek: time.Monday,
		Start:     10 * 60,
		End:       18 * 60,
	}}
	d := newTestDetector(bookings, windows)

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != models.ConflictAvailabilityMissing {
		t.Fatalf("uncovered booking: got %v, want one availability_missing", conflictTypes(conflicts))
	}
	if conflicts[0].Severity != models.SeverityHigh {
		t.Fatalf("availability_missing severity: got %s, want high", conflicts[0].Severity)
	}
}

func TestDetectAllConflictsTravelShortfall(t *testing.T) {
	bookings := []models.Booking{
		booking("b1", "agent-1", at(monday, 9, 0), at(monday, 11, 0)),
		booking("b2", "agent-1", at(monday, 11, 15), at(monday, 13, 0)),
	}
	d := newTestDetector(bookings, fullWeekAvailability("agent-1"))
	d.Estimator = FixedTravelTimeEstimator{Minutes: 20}

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != models.ConflictTravelTime {
		t.Fatalf("travel shortfall: got %v, want one travel_time", conflictTypes(conflicts))
	}
	if got := conflicts[0].Details["missing_minutes"]; got != 5 {
		t.Fatalf("missing_minutes: got %v, want 5", got)
	}
	if got := conflicts[0].Details["gap_minutes"]; got != 15 {
		t.Fatalf("gap_minutes: got %v, want 15", got)
	}
}

func TestDailyCapBoundaryIsExclusive(t *testing.T) {
	// Exactly 600 worked minutes with a qualifying break: legal.
	atCap := []models.Booking{
		booking("b1", "agent-1", at(monday, 8, 0), at(monday, 13, 0)),
		booking("b2", "agent-1", at(monday, 13, 40), at(monday, 18, 40)),
	}
	d := newTestDetector(atCap, fullWeekAvailability("agent-1"))

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("exactly 10h worked: got %v, want no conflicts", conflictTypes(conflicts))
	}

	// One extra minute tips over the cap.
	overCap := []models.Booking{
		booking("b1", "agent-1", at(monday, 8, 0), at(monday, 13, 1)),
		booking("b2", "agent-1", at(monday, 13, 41), at(monday, 18, 41)),
	}
	d = newTestDetector(overCap, fullWeekAvailability("agent-1"))

	conflicts, err = d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != models.ConflictMaxHoursExceeded {
		t.Fatalf("601 worked minutes: got %v, want one max_hours_exceeded", conflictTypes(conflicts))
	}
	if got := conflicts[0].Details["excess_minutes"]; got != 1 {
		t.Fatalf("excess_minutes: got %v, want 1", got)
	}
	if got := conflicts[0].Details["period"]; got != "day" {
		t.Fatalf("period: got %v, want day", got)
	}
}

func TestWeeklyCap(t *testing.T) {
	// Five days of 580 worked minutes each: every day is under the daily
	// cap, the week totals 2900 and exceeds 2880.
	var bookings []models.Booking
	for i := 0; i < 5; i++ {
		day := monday.AddDate(0, 0, i)
		bookings = append(bookings,
			booking("m"+day.Format("02"), "agent-1", at(day, 8, 0), at(day, 13, 0)),
			booking("a"+day.Format("02"), "agent-1", at(day, 13, 40), at(day, 18, 20)),
		)
	}
	d := newTestDetector(bookings, fullWeekAvailability("agent-1"))

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != models.ConflictMaxHoursExceeded {
		t.Fatalf("2900-minute week: got %v, want one max_hours_exceeded", conflictTypes(conflicts))
	}
	if got := conflicts[0].Details["period"]; got != "week" {
		t.Fatalf("period: got %v, want week", got)
	}
	if got := conflicts[0].Details["excess_minutes"]; got != 20 {
		t.Fatalf("excess_minutes: got %v, want 20", got)
	}
	if !conflicts[0].Date.Equal(at(monday, 8, 0)) {
		t.Fatalf("weekly conflict date: got %v, want earliest booking start %v", conflicts[0].Date, at(monday, 8, 0))
	}
}

func TestBreakMissing(t *testing.T) {
	// 390 continuous minutes with no gap.
	continuous := []models.Booking{
		booking("b1", "agent-1", at(monday, 8, 0), at(monday, 14, 30)),
	}
	d := newTestDetector(continuous, fullWeekAvailability("agent-1"))

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != models.ConflictBreakMissing {
		t.Fatalf("390 continuous minutes: got %v, want one break_missing", conflictTypes(conflicts))
	}

	// A 35-minute gap at minute 200 resets the run; no conflict remains.
	withBreak := []models.Booking{
		booking("b1", "agent-1", at(monday, 8, 0), at(monday, 11, 20)),
		booking("b2", "agent-1", at(monday, 11, 55), at(monday, 14, 30)),
	}
	d = newTestDetector(withBreak, fullWeekAvailability("agent-1"))

	conflicts, err = d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("schedule with 35-minute break: got %v, want no conflicts", conflictTypes(conflicts))
	}
}

func TestBreakAccumulatesAcrossShortGaps(t *testing.T) {
	// 200 + 175 worked minutes joined by a 15-minute gap: the gap does not
	// reset the run, so 375 continuous minutes exceed 360.
	bookings := []models.Booking{
		booking("b1", "agent-1", at(monday, 8, 0), at(monday, 11, 20)),
		booking("b2", "agent-1", at(monday, 11, 35), at(monday, 14, 30)),
	}
	d := newTestDetector(bookings, fullWeekAvailability("agent-1"))

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != models.ConflictBreakMissing {
		t.Fatalf("short-gap run: got %v, want one break_missing", conflictTypes(conflicts))
	}
	if got := conflicts[0].Details["continuous_minutes"]; got != 375 {
		t.Fatalf("continuous_minutes: got %v, want 375", got)
	}
}

func TestReplacementCheckHook(t *testing.T) {
	bookings := []models.Booking{
		booking("b1", "agent-1", at(monday, 9, 0), at(monday, 10, 0)),
	}
	d := newTestDetector(bookings, fullWeekAvailability("agent-1"))
	d.ReplacementCheck = func(agentID string, bs []models.Booking) []models.Conflict {
		return []models.Conflict{{
			Type:     models.ConflictReplacement,
			Severity: models.SeverityLow,
			Date:     bs[0].Start,
			Message:  "replacement commitment collides",
		}}
	}

	conflicts, err := d.DetectAllConflicts("agent-1", monday, monday.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DetectAllConflicts: unexpected error %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].Type != models.ConflictReplacement {
		t.Fatalf("hook conflicts: got %v, want one replacement_conflict", conflictTypes(conflicts))
	}
}
