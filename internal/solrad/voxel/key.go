// Package voxel implements the voxel grid: quantized integer keys,
// per-voxel irradiation accumulators and a concurrent-read hash table keyed
// by those integers.
package voxel

import "math"

// Key is the integer address of a voxel: a point's coordinates divided by
// the voxel size and rounded half-away-from-zero.
type Key struct {
	X, Y, Z int64
}

// KeyOf quantizes a point coordinate into a Key at the given voxel size.
func KeyOf(x, y, z, voxelSize float64) Key {
	return Key{
		X: roundHalfAway(x / voxelSize),
		Y: roundHalfAway(y / voxelSize),
		Z: roundHalfAway(z / voxelSize),
	}
}

func roundHalfAway(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}

// Shell returns the keys in the cubic shell at Chebyshev distance layer
// from k: the surface of a (2*layer+1)^3 cube centered on k, used by the
// expanding shell search of the normal estimator.
func (k Key) Shell(layer int64) []Key {
	if layer == 0 {
		return []Key{k}
	}
	var out []Key
	for dx := -layer; dx <= layer; dx++ {
		for dy := -layer; dy <= layer; dy++ {
			for dz := -layer; dz <= layer; dz++ {
				if abs64(dx) == layer || abs64(dy) == layer || abs64(dz) == layer {
					out = append(out, Key{k.X + dx, k.Y + dy, k.Z + dz})
				}
			}
		}
	}
	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
