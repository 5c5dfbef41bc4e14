// Package shadow implements the rotated-grid shadow engine: every voxel
// key is rotated so the sun direction aligns with +Z, then bucketed by its
// rotated (x, y); within each bucket the voxel with the smallest rotated z
// is lit, the rest are shadowed, ordered top-down for the translucence
// propagation pass.
package shadow

import (
	"math"
	"sort"

	"github.com/hblyp/pcsrt-go/internal/solrad/geom"
	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotatedKey is a voxel's position in the sun-aligned rotated frame,
// resolved to a half-integer bucket (round(2*rotated)) the way
// get_rotated_voxel_key_pairs divides by 0.5 before rounding.
type RotatedKey struct {
	X, Y, Z int64
}

// Bucket is one column of voxels sharing a rotated (X, Y): Members is
// ordered from top (smallest rotated Z, lit) to bottom (largest rotated Z),
// ready for translucence propagation.
type Bucket struct {
	X, Y    int64
	Members []voxel.Key
}

// Occluder is the reserved seam for a future terrain-DEM occlusion pass
// (never invoked by the default pipeline; see DESIGN.md's resolved open
// questions).
type Occluder interface {
	Blocks(key voxel.Key, sun sunpos.Position) bool
}

// Buckets rotates every voxel key in g to align with the sun direction and
// groups them by rotated (x, y), sorted top-down within each bucket.
func Buckets(g *voxel.Grid, sun sunpos.Position) []Bucket {
	roll := math.Pi/2 + sun.Altitude*geom.Deg2Rad
	yaw := sun.Azimuth*geom.Deg2Rad - math.Pi

	byXY := make(map[[2]int64][]struct {
		key voxel.Key
		z   int64
	})

	g.Range(func(v *voxel.Voxel) {
		rk := rotate(v.Key, roll, yaw)
		bucketKey := [2]int64{rk.X, rk.Y}
		byXY[bucketKey] = append(byXY[bucketKey], struct {
			key voxel.Key
			z   int64
		}{key: v.Key, z: rk.Z})
	})

	buckets := make([]Bucket, 0, len(byXY))
	for xy, members := range byXY {
		sort.Slice(members, func(i, j int) bool {
			if members[i].z != members[j].z {
				return members[i].z < members[j].z
			}
			a, b := members[i].key, members[j].key
			if a.X != b.X {
				return a.X < b.X
			}
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return a.Z < b.Z
		})
		keys := make([]voxel.Key, len(members))
		for i, m := range members {
			keys[i] = m.key
		}
		buckets = append(buckets, Bucket{X: xy[0], Y: xy[1], Members: keys})
	}
	return buckets
}

func rotate(k voxel.Key, roll, yaw float64) RotatedKey {
	v := r3.Vec{X: float64(k.X), Y: float64(k.Y), Z: float64(k.Z)}
	rv := geom.RotateXZ(v, roll, yaw)
	return RotatedKey{
		X: roundHalf(rv.X / 0.5),
		Y: roundHalf(rv.Y / 0.5),
		Z: roundHalf(rv.Z / 0.5),
	}
}

func roundHalf(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}
