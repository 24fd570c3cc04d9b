package pk

import (
	"github.com/endosim/pk-api/internal/model"
)

// SimulationInput describes one schedule simulation. Days and
// Resolution default to 30 and 100 when unset. StopDay/ResumeDay
// model a cessation window, e.g. around surgery.
type SimulationInput struct {
	Profile    model.PatientProfile
	Schedule   []model.ScheduleEntry
	Days       float64
	Resolution int
	Factors    model.CalibrationFactors
	StopDay    *float64
	ResumeDay  *float64
}

// Simulate superposes the single-dose curves of every dose implied by
// the schedule onto a uniform time grid covering [0, Days*24) hours
// with Days*Resolution samples. Entries with an unknown drug or an
// interval under the floor contribute nothing. The result is the
// total concentration in pg/mL per grid point, with each entry's
// contribution scaled by its route's calibration factor.
func (e *Engine) Simulate(in SimulationInput) *model.SimulationResult {
	cfg := &e.cfg
	if in.Days <= 0 {
		in.Days = 30
	}
	if in.Resolution <= 0 {
		in.Resolution = 100
	}

	totalHours := in.Days * 24
	numPoints := int(in.Days * float64(in.Resolution))
	stepHours := 24.0 / float64(in.Resolution)

	result := &model.SimulationResult{
		TimeDays:       make([]float64, numPoints),
		Concentrations: make([]float64, numPoints),
	}
	for i := 0; i < numPoints; i++ {
		result.TimeDays[i] = float64(i) / float64(in.Resolution)
	}

	if len(in.Schedule) == 0 {
		return result
	}

	profile := e.normalizeProfile(in.Profile)

	for _, entry := range in.Schedule {
		// A vanishing interval would explode the dose count.
		if entry.IntervalDays < cfg.MinIntervalDays {
			continue
		}

		drug, ok := e.store.Get(entry.Drug)
		if !ok {
			continue
		}

		factor := in.Factors.Get(drug.Route)
		ka, ke := e.RateConstants(drug)
		curve := e.doseCurveFor(drug, entry.DoseMg, ka, ke, profile)

		doseTimes := e.doseTimes(entry, totalHours, in.StopDay, in.ResumeDay)

		for _, doseHour := range doseTimes {
			for i := 0; i < numPoints; i++ {
				sinceDose := float64(i)*stepHours - doseHour
				if sinceDose < 0 {
					continue
				}
				result.Concentrations[i] += curve.at(sinceDose) * factor
			}
		}
	}

	return result
}

// doseTimes expands a schedule entry into concrete dose times in
// hours from simulation start. Cycle starts fall on multiples of the
// interval; a cycling entry turns each start into a run of daily
// doses beginning at its offset. The cessation window then filters:
// with only a stop day, every dose at or past it is dropped; with a
// resume day too, only doses strictly inside the window are dropped.
func (e *Engine) doseTimes(entry model.ScheduleEntry, totalHours float64, stopDay, resumeDay *float64) []float64 {
	intervalHours := entry.IntervalDays * 24

	var times []float64
	for k := 0; ; k++ {
		start := float64(k) * intervalHours
		if start >= totalHours {
			break
		}
		if entry.Cycling {
			duration := entry.DurationDays
			if duration < 1 {
				duration = 1
			}
			for d := 0; d < duration; d++ {
				doseTime := start + entry.OffsetDays*24 + float64(d)*24
				if doseTime < totalHours {
					times = append(times, doseTime)
				}
			}
		} else {
			times = append(times, start)
		}
	}

	if stopDay == nil {
		return times
	}

	stopHour := *stopDay * 24
	kept := times[:0]
	if resumeDay == nil {
		for _, t := range times {
			if t < stopHour {
				kept = append(kept, t)
			}
		}
		return kept
	}

	resumeHour := *resumeDay * 24
	for _, t := range times {
		if t <= stopHour || t >= resumeHour {
			kept = append(kept, t)
		}
	}
	return kept
}
