package radiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
)

func noonEpoch(stepCoef float64) sunpos.Epoch {
	return sunpos.Epoch{
		Time:     time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC),
		Position: sunpos.Position{Altitude: 60, Azimuth: 180},
		StepCoef: stepCoef,
	}
}

func TestComputeLitProducesBeamAndDiffuse(t *testing.T) {
	t.Parallel()

	n := voxel.Normal{X: 0, Y: 0, Z: 1}
	r := Compute(n, noonEpoch(1.0), 0, 3.0, SolarConstant, false)

	assert.Greater(t, r.BeamComponent, 0.0)
	assert.Greater(t, r.DiffuseComponent, 0.0)
	assert.InDelta(t, r.BeamComponent+r.DiffuseComponent, r.GlobalIrradiance, 1e-9)
}

func TestComputeShadowedSuppressesBeamOnly(t *testing.T) {
	t.Parallel()

	n := voxel.Normal{X: 0, Y: 0, Z: 1}
	r := Compute(n, noonEpoch(1.0), 0, 3.0, SolarConstant, true)

	assert.Equal(t, 0.0, r.BeamComponent)
	assert.Greater(t, r.DiffuseComponent, 0.0)
}

func TestComputeScalesByStepCoef(t *testing.T) {
	t.Parallel()

	n := voxel.Normal{X: 0, Y: 0, Z: 1}
	full := Compute(n, noonEpoch(1.0), 0, 3.0, SolarConstant, false)
	half := Compute(n, noonEpoch(0.5), 0, 3.0, SolarConstant, false)

	assert.InDelta(t, full.GlobalIrradiance/2, half.GlobalIrradiance, 1e-6)
}

func TestComputeHigherElevationReducesAttenuation(t *testing.T) {
	t.Parallel()

	n := voxel.Normal{X: 0, Y: 0, Z: 1}
	sea := Compute(n, noonEpoch(1.0), 0, 3.0, SolarConstant, false)
	alt := Compute(n, noonEpoch(1.0), 2000, 3.0, SolarConstant, false)

	// less atmosphere to pass through at elevation: beam should not decrease
	assert.GreaterOrEqual(t, alt.BeamComponent, sea.BeamComponent)
}

func TestDistanceVariationIsNearOneYearRound(t *testing.T) {
	t.Parallel()

	for _, day := range []float64{0, 90, 180, 270, 365} {
		v := DistanceVariation(day)
		assert.InDelta(t, 1.0, v, 0.04)
	}
}
