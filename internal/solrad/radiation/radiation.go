// Package radiation implements the ESRA clear-sky irradiance model and the
// per-bucket translucence propagation pass.
package radiation

import (
	"math"

	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
)

// SolarConstant is the mean extraterrestrial solar irradiance in W/m²,
// matching the ESRA model's I0.
const SolarConstant = 1367.0

// Result is one voxel's contribution for a single sun epoch, matching
// VoxelIrradiance.
type Result struct {
	GlobalIrradiance float64
	BeamComponent    float64
	DiffuseComponent float64
}

// Compute evaluates the ESRA beam/diffuse model for a voxel's normal at the
// epoch's sun position, elevation and Linke turbidity, weighting the result
// by the epoch's StepCoef (the hours of daylight it stands for). inShadow
// suppresses the beam term but not the diffuse term. The distance
// correction is keyed off the epoch's calendar day. solarConstant is
// normally radiation.SolarConstant; callers pass a tuning-overridden value
// straight through instead of rescaling the result afterwards.
func Compute(normal voxel.Normal, epoch sunpos.Epoch, elevationM, linke, solarConstant float64, inShadow bool) Result {
	dayOfYear := float64(epoch.Time.YearDay() - 1)
	distVar := DistanceVariation(dayOfYear)

	solarAltitude := epoch.Position.Altitude * math.Pi / 180
	solarAzimuth := epoch.Position.Azimuth * math.Pi / 180

	zenithAngle := math.Pi/2 - solarAltitude
	sunX := math.Sin(solarAzimuth) * math.Cos(zenithAngle)
	sunY := math.Cos(solarAzimuth) * math.Cos(zenithAngle)
	sunZ := math.Sin(solarAltitude)

	angleBetween := vectorAngle(normal.X, normal.Y, normal.Z, sunX, sunY, sunZ)
	incline := math.Pi/2 - angleBetween
	if incline < 0 {
		incline += math.Pi / 2
	}

	var beam float64
	var haveBeam bool
	if !inShadow {
		beam = beamIrradiance(elevationM, solarAltitude, incline, distVar, linke, solarConstant)
		haveBeam = true
	}

	diffuse := diffuseIrradiance(solarAltitude, incline, normal, distVar, linke, beam, haveBeam, solarConstant)

	beam *= epoch.StepCoef
	diffuse *= epoch.StepCoef

	return Result{
		GlobalIrradiance: beam + diffuse,
		BeamComponent:    beam,
		DiffuseComponent: diffuse,
	}
}

// DistanceVariation is the earth-sun distance correction epsilon(dayOfYear),
// matching solar_distance_variation_correction.
func DistanceVariation(dayOfYear float64) float64 {
	j := 2 * math.Pi * dayOfYear / 365.25
	return 1 + 0.034221*math.Cos(j-0.048869)
}

func vectorAngle(ax, ay, az, bx, by, bz float64) float64 {
	dot := ax*bx + ay*by + az*bz
	na := math.Sqrt(ax*ax + ay*ay + az*az)
	nb := math.Sqrt(bx*bx + by*by + bz*bz)
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (na * nb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

func beamIrradiance(elevationM, solarAltitude, incline, distVar, linke, solarConstant float64) float64 {
	elevationCorrection := math.Exp(-elevationM / 8434.5)

	temp1 := 0.1594 + solarAltitude*(1.123+0.065656*solarAltitude)
	temp2 := 1 + solarAltitude*(28.9344+277.3971*solarAltitude)
	refractionCorrection := 0.061359 * temp1 / temp2

	solarAltitudeAngle := solarAltitude + refractionCorrection
	relativeOpticalAirMass := elevationCorrection /
		(math.Sin(solarAltitudeAngle) + 0.50572*math.Pow(solarAltitudeAngle*180/math.Pi+6.07995, -1.6364))

	var rayleigh float64
	if relativeOpticalAirMass <= 20 {
		m := relativeOpticalAirMass
		rayleigh = 1 / (6.6296 + m*(1.7513+m*(-0.1202+m*(0.0065-m*0.00013))))
	} else {
		rayleigh = 1 / (10.4 + 0.718*relativeOpticalAirMass)
	}

	beamTransmittance := math.Exp(-0.8662 * linke * relativeOpticalAirMass * rayleigh)

	return solarConstant * distVar * math.Sin(incline) * beamTransmittance
}

func diffuseIrradiance(solarAltitude, incline float64, normal voxel.Normal, distVar, linke, beam float64, haveBeam bool, solarConstant float64) float64 {
	tn := -0.015843 + 0.030543*linke + 0.0003797*linke*linke

	a0 := 0.2646 - 0.061581*linke + 0.0031408*linke*linke
	if a0 < 0.002 {
		a0 = 0.002 / tn
	}
	a1 := 2.0402 + 0.018945*linke - 0.011161*linke*linke
	a2 := -1.3025 + 0.039231*linke + 0.0085079*linke*linke

	sinAlt := math.Sin(solarAltitude)
	angularFn := a0 + a1*sinAlt + a2*sinAlt*sinAlt

	diffuseBase := solarConstant * distVar * tn * angularFn

	slope := vectorAngle(normal.X, normal.Y, 1, normal.X, normal.Y, normal.Z)

	if !haveBeam {
		return diffuseBase * diffuseFunction(slope, 0.25227)
	}

	kb := beam / solarConstant * distVar * sinAlt
	n := 0.00263 - 0.712*kb - 0.6883*kb*kb

	if solarAltitude*180/math.Pi > 5.7 {
		return diffuseBase * (diffuseFunction(slope, n)*(1-kb) + kb*math.Sin(incline)/sinAlt)
	}

	return diffuseBase *
		math.Pow(math.Cos(slope/2), 2) *
		(1 + kb*math.Pow(math.Sin(slope/2), 3)) *
		(1 + kb*math.Pow(math.Sin(incline), 2)*math.Pow(math.Sin(math.Pi/2-solarAltitude), 3))
}

func diffuseFunction(slope, n float64) float64 {
	return (1+math.Cos(slope))/2 + (math.Sin(slope)-slope*math.Cos(slope)-math.Pi*math.Pow(math.Sin(slope/2), 2))*n
}
