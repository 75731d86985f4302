package scheduling

import (
	"fmt"
	"sort"
	"time"

	"planora/models"

	"go.uber.org/zap"
)

// DetectAllConflicts audits every booking the agent holds in [from, to).
// All checks run over the same snapshot; conflicts come back sorted by
// (date, severity) with critical first.
func (d *DefaultConflictDetector) DetectAllConflicts(agentID string, from, to time.Time) ([]models.Conflict, error) {
	if _, err := NewTimeInterval(from, to); err != nil {
		return nil, err
	}

	bookings, err := d.BookingRepo.FindByAgentAndPeriod(agentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings for agent %s: %w", agentID, err)
	}

	conflicts := overlapConflicts(bookings)

	availability, err := d.availabilityConflicts(agentID, bookings)
	if err != nil {
		return nil, err
	}
	conflicts = append(conflicts, availability...)

	conflicts = append(conflicts, d.travelConflicts(bookings)...)
	conflicts = append(conflicts, hoursCapConflicts(bookings, d.Rules)...)
	conflicts = append(conflicts, breakConflicts(bookings, d.Rules)...)

	if d.ReplacementCheck != nil {
		conflicts = append(conflicts, d.ReplacementCheck(agentID, bookings)...)
	}

	sortConflicts(conflicts)

	d.Logger.Debug("conflict detection completed",
		zap.String("agentId", agentID),
		zap.Int("bookings", len(bookings)),
		zap.Int("conflicts", len(conflicts)))

	return conflicts, nil
}

// sortConflicts orders by date, then severity rank (critical first). The
// sort is stable so equal keys keep their emission order.
func sortConflicts(conflicts []models.Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		if !conflicts[i].Date.Equal(conflicts[j].Date) {
			return conflicts[i].Date.Before(conflicts[j].Date)
		}
		return conflicts[i].Severity.Rank() < conflicts[j].Severity.Rank()
	})
}

// overlapConflicts emits one critical conflict per overlapping booking pair.
func overlapConflicts(bookings []models.Booking) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(bookings); i++ {
		for j := i + 1; j < len(bookings); j++ {
			a, b := bookings[i], bookings[j]
			if !intervalOf(a).Overlaps(intervalOf(b)) {
				continue
			}
			conflicts = append(conflicts, models.Conflict{
				Type:     models.ConflictBookingOverlap,
				Severity: models.SeverityCritical,
				Date:     b.Start,
				Message:  fmt.Sprintf("bookings %s and %s overlap", a.ID, b.ID),
				Details: map[string]any{
					"booking_id":       a.ID,
					"other_booking_id": b.ID,
					"booking_start":    a.Start,
					"booking_end":      a.End,
					"other_start":      b.Start,
					"other_end":        b.End,
				},
			})
		}
	}
	return conflicts
}

// groupSameDay splits a start-sorted booking list into per-day runs, keyed
// by the start's calendar day.
func groupSameDay(bookings []models.Booking) [][]models.Booking {
	var groups [][]models.Booking
	for _, b := range bookings {
		n := len(groups)
		if n > 0 && sameDay(groups[n-1][0].Start, b.Start) {
			groups[n-1] = append(groups[n-1], b)
			continue
		}
		groups = append(groups, []models.Booking{b})
	}
	return groups
}

// travelConflicts checks consecutive same-day bookings for enough transit
// time between locations.
func (d *DefaultConflictDetector) travelConflicts(bookings []models.Booking) []models.Conflict {
	var conflicts []models.Conflict
	for _, day := range groupSameDay(bookings) {
		for k := 1; k < len(day); k++ {
			prev, next := day[k-1], day[k]
			if c := d.travelConflictBetween(prev, next); c != nil {
				conflicts = append(conflicts, *c)
			}
		}
	}
	return conflicts
}

// travelConflictBetween compares the gap before next against the estimated
// transit time from prev's location.
func (d *DefaultConflictDetector) travelConflictBetween(prev, next models.Booking) *models.Conflict {
	gap := int(next.Start.Sub(prev.End).Minutes())
	required := d.Estimator.Estimate(prev.LocationGeo, next.LocationGeo)
	if gap >= required {
		return nil
	}
	return &models.Conflict{
		Type:     models.ConflictTravelTime,
		Severity: models.SeverityMedium,
		Date:     next.Start,
		Message: fmt.Sprintf("only %d minutes between bookings %s and %s, estimated travel needs %d",
			gap, prev.ID, next.ID, required),
		Details: map[string]any{
			"booking_id":       prev.ID,
			"next_booking_id":  next.ID,
			"gap_minutes":      gap,
			"required_minutes": required,
			"missing_minutes":  required - gap,
		},
	}
}

// hoursCapConflicts sums worked minutes per calendar day and per ISO week,
// emitting a conflict wherever a cap is strictly exceeded. Working exactly
// the cap is legal.
func hoursCapConflicts(bookings []models.Booking, rules Rules) []models.Conflict {
	var conflicts []models.Conflict

	type dayTotal struct {
		day     time.Time
		minutes int
	}
	var days []dayTotal
	dayIdx := make(map[time.Time]int)

	type weekTotal struct {
		earliest time.Time
		minutes  int
	}
	var weeks []weekTotal
	weekIdx := make(map[isoWeek]int)

	for _, b := range bookings {
		minutes := bookingMinutes(b)

		day := dayOf(b.Start)
		if i, ok := dayIdx[day]; ok {
			days[i].minutes += minutes
		} else {
			dayIdx[day] = len(days)
			days = append(days, dayTotal{day: day, minutes: minutes})
		}

		week := isoWeekOf(b.Start)
		if i, ok := weekIdx[week]; ok {
			weeks[i].minutes += minutes
		} else {
			weekIdx[week] = len(weeks)
			weeks = append(weeks, weekTotal{earliest: b.Start, minutes: minutes})
		}
	}

	for _, dt := range days {
		if dt.minutes <= rules.MaxDailyMinutes {
			continue
		}
		conflicts = append(conflicts, models.Conflict{
			Type:     models.ConflictMaxHoursExceeded,
			Severity: models.SeverityHigh,
			Date:     dt.day,
			Message: fmt.Sprintf("%d worked minutes on %s exceed the daily cap of %d",
				dt.minutes, dt.day.Format("2006-01-02"), rules.MaxDailyMinutes),
			Details: map[string]any{
				"period":         "day",
				"worked_minutes": dt.minutes,
				"cap_minutes":    rules.MaxDailyMinutes,
				"excess_minutes": dt.minutes - rules.MaxDailyMinutes,
			},
		})
	}

	for _, wt := range weeks {
		if wt.minutes <= rules.MaxWeeklyMinutes {
			continue
		}
		year, week := wt.earliest.ISOWeek()
		conflicts = append(conflicts, models.Conflict{
			Type:     models.ConflictMaxHoursExceeded,
			Severity: models.SeverityHigh,
			Date:     wt.earliest,
			Message: fmt.Sprintf("%d worked minutes in week %d-W%02d exceed the weekly cap of %d",
				wt.minutes, year, week, rules.MaxWeeklyMinutes),
			Details: map[string]any{
				"period":         "week",
				"iso_year":       year,
				"iso_week":       week,
				"worked_minutes": wt.minutes,
				"cap_minutes":    rules.MaxWeeklyMinutes,
				"excess_minutes": wt.minutes - rules.MaxWeeklyMinutes,
			},
		})
	}

	return conflicts
}

// breakConflicts walks each day's bookings accumulating continuously worked
// minutes. A gap shorter than the minimum break keeps the run going without
// counting as work; a qualifying gap resets it. At most one conflict is
// emitted per day, for the first run that exceeds the continuous cap.
func breakConflicts(bookings []models.Booking, rules Rules) []models.Conflict {
	var conflicts []models.Conflict
	for _, day := range groupSameDay(bookings) {
		accumulated := 0
		runStart := day[0].Start
		for k, b := range day {
			if k == 0 {
				accumulated = bookingMinutes(b)
			} else {
				gap := int(b.Start.Sub(day[k-1].End).Minutes())
				if gap >= rules.MinBreakMinutes {
					accumulated = bookingMinutes(b)
					runStart = b.Start
				} else {
					accumulated += bookingMinutes(b)
				}
			}
			if accumulated > rules.MaxContinuousMinutes {
				conflicts = append(conflicts, models.Conflict{
					Type:     models.ConflictBreakMissing,
					Severity: models.SeverityMedium,
					Date:     runStart,
					Message: fmt.Sprintf("%d continuous worked minutes since %s without a %d-minute break",
						accumulated, runStart.Format("15:04"), rules.MinBreakMinutes),
					Details: map[string]any{
						"continuous_minutes":     accumulated,
						"max_continuous_minutes": rules.MaxContinuousMinutes,
						"required_break_minutes": rules.MinBreakMinutes,
					},
				})
				break
			}
		}
	}
	return conflicts
}
