// Package validator holds request checks that binding tags cannot
// express: cross-field constraints and values with a domain range.
package validator

import (
	"fmt"

	"github.com/endosim/pk-api/internal/model"
)

// ValidateSchedule rejects schedules the simulator would silently
// reduce to nothing.
func ValidateSchedule(entries []model.ScheduleEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("schedule must contain at least one entry")
	}
	for i, entry := range entries {
		if entry.Drug == "" {
			return fmt.Errorf("schedule entry %d: drug is required", i)
		}
		if entry.Cycling && entry.DurationDays > 0 && float64(entry.DurationDays) > entry.IntervalDays {
			return fmt.Errorf("schedule entry %d: cycle duration %d days exceeds the %v day interval", i, entry.DurationDays, entry.IntervalDays)
		}
	}
	return nil
}

// ValidateCessationWindow checks stop/resume day consistency.
func ValidateCessationWindow(stopDay, resumeDay *float64) error {
	if resumeDay != nil && stopDay == nil {
		return fmt.Errorf("resume_day requires stop_day")
	}
	if stopDay != nil && resumeDay != nil && *resumeDay <= *stopDay {
		return fmt.Errorf("resume_day must be after stop_day")
	}
	return nil
}

// ValidateRoute checks that route names one of the known types.
func ValidateRoute(route model.RouteType) error {
	if !route.Valid() {
		return fmt.Errorf("unknown route type %q", route)
	}
	return nil
}

// ValidateFactors checks that every calibration factor is keyed by a
// known route and sits inside the allowed range.
func ValidateFactors(factors model.CalibrationFactors) error {
	for route, factor := range factors {
		if !route.Valid() {
			return fmt.Errorf("unknown route type %q in calibration factors", route)
		}
		if factor < model.CalibrationFactorMin || factor > model.CalibrationFactorMax {
			return fmt.Errorf("calibration factor for %s must be between %v and %v, got %v",
				route, model.CalibrationFactorMin, model.CalibrationFactorMax, factor)
		}
	}
	return nil
}
