// Package sunpos supplies the sun-position collaborator and sun-epoch
// generator. Azimuth/altitude come from an injected Func — by
// default github.com/sixdouglas/suncalc, with suncalc's radians +
// south-based azimuth convention converted to degrees clockwise-from-north.
package sunpos

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Position is the sun's location in the horizontal coordinate system:
// Altitude in degrees above the horizon, Azimuth in degrees clockwise from
// north.
type Position struct {
	Altitude float64
	Azimuth  float64
}

// Func resolves the sun's position at an instant and location. Default is
// SunCalcPosition; tests substitute deterministic stand-ins.
type Func func(t time.Time, latitude, longitude float64) Position

// SunCalcPosition wraps suncalc.GetPosition, fixing up its azimuth
// convention (-90=east, 0=south, 90=west, 180=north in radians) to the
// standard 0-360 clockwise-from-north degrees convention, exactly as
// aclements-shade's GetSunPos does.
func SunCalcPosition(t time.Time, latitude, longitude float64) Position {
	p := suncalc.GetPosition(t, latitude, longitude)
	const rad2deg = 180 / math.Pi
	return Position{
		Altitude: p.Altitude * rad2deg,
		Azimuth:  p.Azimuth*rad2deg + 180,
	}
}
