package scheduling

import "planora/config"

// Rules carries the scheduling limits the detector enforces. Injected at
// construction so deployments can tune them without code changes.
type Rules struct {
	// MaxDailyMinutes caps worked minutes per calendar day. The cap itself
	// is legal; only strictly exceeding it conflicts.
	MaxDailyMinutes int

	// MaxWeeklyMinutes caps worked minutes per ISO week.
	MaxWeeklyMinutes int

	// MinBreakMinutes is the shortest gap that counts as a real break
	// between bookings.
	MinBreakMinutes int

	// MaxContinuousMinutes caps worked minutes without a qualifying break.
	MaxContinuousMinutes int
}

// DefaultRules returns the platform's standard labor limits: 10h per day,
// 48h per week, 30-minute breaks at least every 6 worked hours.
func DefaultRules() Rules {
	return Rules{
		MaxDailyMinutes:      600,
		MaxWeeklyMinutes:     2880,
		MinBreakMinutes:      30,
		MaxContinuousMinutes: 360,
	}
}

// RulesFromConfig builds Rules from the loaded application config, falling
// back to defaults for unset values.
func RulesFromConfig(cfg config.Config) Rules {
	rules := DefaultRules()
	if cfg.MaxDailyMinutes > 0 {
		rules.MaxDailyMinutes = cfg.MaxDailyMinutes
	}
	if cfg.MaxWeeklyMinutes > 0 {
		rules.MaxWeeklyMinutes = cfg.MaxWeeklyMinutes
	}
	if cfg.MinBreakMinutes > 0 {
		rules.MinBreakMinutes = cfg.MinBreakMinutes
	}
	if cfg.MaxContinuousMinutes > 0 {
		rules.MaxContinuousMinutes = cfg.MaxContinuousMinutes
	}
	return rules
}
