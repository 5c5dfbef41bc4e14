// Package normal implements the surface-normal estimator: an expanding
// shell search for neighboring points followed by a closed-form
// smallest-eigenvalue plane fit.
package normal

import (
	"math"

	"github.com/hblyp/pcsrt-go/internal/solrad/geom"
	"github.com/hblyp/pcsrt-go/internal/solrad/logging"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMaxShellDepth and DefaultMinShellMinimum are BuildAll's fallback
// tuning values, overridable via config.TuningDefaults.
const (
	DefaultMaxShellDepth   = 5
	DefaultMinShellMinimum = 4
)

// BuildAll estimates a normal for every voxel in g, returning the count of
// voxels for which the fit failed and fell back to upright (0,0,1), so the
// caller can log a warning if that count is nonzero. maxShellDepth and
// minShellMinimum come from config.TuningDefaults, defaulting to
// DefaultMaxShellDepth/DefaultMinShellMinimum.
func BuildAll(g *voxel.Grid, averagePointsPerVoxel float64, maxShellDepth, minShellMinimum int) int {
	minPoints := minShellMinimum
	if averagePointsPerVoxel >= float64(minShellMinimum) {
		minPoints = int(averagePointsPerVoxel)
	}

	type result struct {
		key    voxel.Key
		normal voxel.Normal
		failed bool
	}

	var keys []voxel.Key
	g.Range(func(v *voxel.Voxel) { keys = append(keys, v.Key) })

	results := make([]result, len(keys))
	for i, key := range keys {
		adjacent := g.SearchAdjacentPoints(key, int64(maxShellDepth), minPoints)
		n, ok := Estimate(adjacent)
		results[i] = result{key: key, normal: n, failed: !ok}
	}

	failed := 0
	for _, r := range results {
		if r.failed {
			failed++
		}
		if v := g.Get(r.key); v != nil {
			v.Normal = r.normal
		}
	}

	if failed > 0 {
		logging.Diag("normal estimation fell back to upright for %d/%d voxels", failed, len(keys))
	}
	return failed
}

// Estimate fits a plane to pts via the smallest-eigenvalue direction of
// their covariance matrix, oriented upright. ok is false (and the returned
// normal is the upright default) when fewer than 3 points are given or the
// points are degenerate (collinear/coincident).
func Estimate(pts []points.Point) (voxel.Normal, bool) {
	if len(pts) < 3 {
		return voxel.UprightNormal(), false
	}

	var centroid r3.Vec
	for _, p := range pts {
		centroid.X += p.X
		centroid.Y += p.Y
		centroid.Z += p.Z
	}
	n := float64(len(pts))
	centroid = r3.Vec{X: centroid.X / n, Y: centroid.Y / n, Z: centroid.Z / n}

	var xx, xy, xz, yy, yz, zz float64
	for _, p := range pts {
		rx, ry, rz := p.X-centroid.X, p.Y-centroid.Y, p.Z-centroid.Z
		xx += rx * rx
		xy += rx * ry
		xz += rx * rz
		yy += ry * ry
		yz += ry * rz
		zz += rz * rz
	}

	detX := yy*zz - yz*yz
	detY := xx*zz - xz*xz
	detZ := xx*yy - xy*xy
	detMax := math.Max(detX, math.Max(detY, detZ))

	if detMax <= 0 {
		return voxel.UprightNormal(), false
	}

	var dir r3.Vec
	switch detMax {
	case detX:
		dir = r3.Vec{X: detX, Y: xz*yz - xy*zz, Z: xy*yz - xz*yy}
	case detY:
		dir = r3.Vec{X: xz*yz - xy*zz, Y: detY, Z: xy*xz - yz*xx}
	default:
		dir = r3.Vec{X: xy*yz - xz*yy, Y: xy*xz - yz*xx, Z: detZ}
	}

	unit := r3.Unit(dir)
	upright := geom.UprightOrient(unit)
	return voxel.Normal{X: upright.X, Y: upright.Y, Z: upright.Z}, true
}
