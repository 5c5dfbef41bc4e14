// Package geom collects the small vector/rotation helpers shared by the
// normal estimator, shadow engine and radiation model, built on gonum's
// spatial/r3.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	Deg2Rad = math.Pi / 180
	Rad2Deg = 180 / math.Pi
)

// SunDirection returns the unit vector pointing from a surface toward the
// sun, given altitude/azimuth in degrees using the standard convention
// (azimuth clockwise from north, altitude from horizon).
func SunDirection(altitudeDeg, azimuthDeg float64) r3.Vec {
	al := altitudeDeg * Deg2Rad
	az := azimuthDeg * Deg2Rad
	return r3.Unit(r3.Vec{
		X: math.Sin(az) * math.Cos(al),
		Y: math.Cos(az) * math.Cos(al),
		Z: math.Sin(al),
	})
}

// RotateXZ applies R_x(roll) . R_z(yaw) to v: yaw about Z first, then roll
// about X. The shadow engine calls this with roll = pi/2 + altitude, yaw =
// azimuth - pi to align the sun direction with +Z.
func RotateXZ(v r3.Vec, roll, yaw float64) r3.Vec {
	// Rotate about Z first.
	cz, sz := math.Cos(yaw), math.Sin(yaw)
	rz := r3.Vec{
		X: v.X*cz - v.Y*sz,
		Y: v.X*sz + v.Y*cz,
		Z: v.Z,
	}
	// Then about X.
	cr, sr := math.Cos(roll), math.Sin(roll)
	return r3.Vec{
		X: rz.X,
		Y: rz.Y*cr - rz.Z*sr,
		Z: rz.Y*sr + rz.Z*cr,
	}
}

// Incline returns the angle in degrees between surface normal n and the
// direction to the sun, clamped to [0, 180].
func Incline(n, sunDir r3.Vec) float64 {
	n = r3.Unit(n)
	cosTheta := r3.Dot(n, sunDir)
	if cosTheta > 1 {
		cosTheta = 1
	} else if cosTheta < -1 {
		cosTheta = -1
	}
	return math.Acos(cosTheta) * Rad2Deg
}

// UprightOrient flips n so its Z component is non-negative, matching the
// normal estimator's convention that surface normals point away from the
// ground.
func UprightOrient(n r3.Vec) r3.Vec {
	if n.Z < 0 {
		return r3.Vec{X: -n.X, Y: -n.Y, Z: -n.Z}
	}
	return n
}
