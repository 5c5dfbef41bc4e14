package sunpos

import (
	"time"

	"github.com/hblyp/pcsrt-go/internal/solrad/logging"
)

// Epoch is one sampled sun position the radiation model integrates over.
// StepCoef is the daylight duration the epoch stands for, in hours:
// step_mins/60 for a full step, including the step anchored at sunrise
// (unless sunset falls inside it), and the hours left until sunset for the
// step that spans sunset. Steps entirely in darkness or below the horizon
// mask generate no epoch.
type Epoch struct {
	Time     time.Time
	Position Position
	StepCoef float64
}

// state names the epoch generator's current phase, for diagnostics only;
// it does not change the arithmetic, only which branch produced a given
// epoch.
type state int

const (
	stateInitial state = iota
	stateWithinDay
	stateSpanningSunset
	statePolarDaySkip
	statePolarNightSkip
	stateTerminal
)

func (s state) String() string {
	switch s {
	case stateWithinDay:
		return "within-day"
	case stateSpanningSunset:
		return "spanning-sunrise-or-sunset"
	case statePolarDaySkip:
		return "polar-day"
	case statePolarNightSkip:
		return "polar-night"
	case stateTerminal:
		return "terminal"
	default:
		return "initial"
	}
}

// Generate walks [start, end) in stepMins increments, emitting one Epoch
// per step that has any daylight, clipped against both the Montenbruck/
// Pfleger sunrise/sunset boundary and an optional terrain Horizon mask.
// Days with no sunrise/sunset (polar day/night) are handled without a
// per-minute horizon crossing search, since the sun's altitude trend is
// monotonic enough within a single polar day/night that the horizon mask
// alone (for polar day) or nothing (for polar night) decides visibility.
func Generate(start, end time.Time, stepMins int, lat, lon float64, horizon Horizon, sunFn Func) []Epoch {
	if sunFn == nil {
		sunFn = SunCalcPosition
	}
	step := time.Duration(stepMins) * time.Minute
	stepHours := float64(stepMins) / 60.0

	var epochs []Epoch
	st := stateInitial

	var dayBounds DayBounds
	var boundsDay time.Time

	for t := start; t.Before(end); t = t.Add(step) {
		dayStart := t.Truncate(24 * time.Hour)
		if !dayStart.Equal(boundsDay) {
			dayBounds = CalcSunriseSunset(t, lat, lon)
			boundsDay = dayStart
		}

		switch {
		case dayBounds.PolarNight:
			st = statePolarNightSkip
			logging.Trace("epoch step %s: %s", t, st)
			continue
		case dayBounds.PolarDay:
			st = statePolarDaySkip
		default:
			stepEnd := t.Add(step)
			switch {
			case stepEnd.Before(dayBounds.Sunrise) || !t.Before(dayBounds.Sunset):
				continue
			case t.Before(dayBounds.Sunrise) && stepEnd.After(dayBounds.Sunrise):
				st = stateSpanningSunset
				// Anchor the epoch at sunrise itself rather than at the
				// pre-sunrise grid tick t: sampling the sun position at t
				// would return a below-horizon altitude and silently drop
				// the epoch, losing the first step_mins of real daylight.
				anchor := dayBounds.Sunrise
				anchorEnd := anchor.Add(step)
				coef := stepHours
				if anchorEnd.After(dayBounds.Sunset) {
					coef = dayBounds.Sunset.Sub(anchor).Hours()
				}
				epochs = appendEpoch(epochs, anchor, lat, lon, horizon, sunFn, coef)
				logging.Trace("epoch step %s: %s", t, st)
				continue
			case stepEnd.After(dayBounds.Sunset):
				st = stateSpanningSunset
				coef := dayBounds.Sunset.Sub(t).Hours()
				epochs = appendEpoch(epochs, t, lat, lon, horizon, sunFn, coef)
				logging.Trace("epoch step %s: %s", t, st)
				continue
			default:
				st = stateWithinDay
			}
		}

		epochs = appendEpoch(epochs, t, lat, lon, horizon, sunFn, stepHours)
		logging.Trace("epoch step %s: %s", t, st)
	}
	st = stateTerminal
	logging.Trace("epoch generation %s: %d epochs over [%s, %s)", st, len(epochs), start, end)

	return epochs
}

func appendEpoch(epochs []Epoch, t time.Time, lat, lon float64, horizon Horizon, sunFn Func, coef float64) []Epoch {
	if coef <= 0 {
		return epochs
	}
	pos := sunFn(t, lat, lon)
	if pos.Altitude <= 0 {
		return epochs
	}
	if !horizon.Visible(pos.Azimuth, pos.Altitude) {
		return epochs
	}
	return append(epochs, Epoch{Time: t, Position: pos, StepCoef: coef})
}
