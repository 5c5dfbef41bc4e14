package sunpos

import "math"

// Horizon is the terrain skyline profile supplied via --horizon: either a
// flat 0-degree mask, or a polyline of heights sampled every AngleStep
// degrees of azimuth.
type Horizon struct {
	AngleStep     int
	HorizonHeight []float64
	IsFlat        bool
}

// Visible reports whether the sun, at the given azimuth/altitude in
// degrees, clears the horizon profile.
func (h Horizon) Visible(azimuthDeg, altitudeDeg float64) bool {
	if h.IsFlat {
		return altitudeDeg > 0
	}

	angleStep := float64(h.AngleStep)
	lastIdx := len(h.HorizonHeight) - 1

	angleIdx := int(math.Floor(azimuthDeg / angleStep))
	if angleIdx > lastIdx {
		angleIdx = lastIdx
	}
	if angleIdx < 0 {
		angleIdx = 0
	}

	leftHeight := h.HorizonHeight[angleIdx]
	var rightHeight float64
	if angleIdx == lastIdx {
		rightHeight = h.HorizonHeight[0]
	} else {
		rightHeight = h.HorizonHeight[angleIdx+1]
	}

	azimuthResidual := math.Mod(azimuthDeg, angleStep)
	horizonHeight := leftHeight + ((rightHeight-leftHeight)/angleStep)*azimuthResidual

	return altitudeDeg > horizonHeight
}
