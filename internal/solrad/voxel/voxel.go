package voxel

import (
	"sync"

	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

// Irradiation accumulates the radiation-model outputs for a voxel across
// all sun epochs. Guarded by Voxel.mu since workers write to it from
// parallel per-epoch goroutines.
type Irradiation struct {
	GlobalIrradiance float64
	BeamComponent    float64
	DiffuseComponent float64
	SunHours         float64
}

// AddIrradiation accumulates another epoch's contribution under the
// voxel's lock. lit tells it whether this voxel received direct beam this
// epoch (diffuse alone, from a shadowed voxel under open sky, does not
// count as a sun hour).
func (v *Voxel) AddIrradiation(beam, diffuse float64, sunHoursWeight float64, lit bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Irradiation.BeamComponent += beam
	v.Irradiation.DiffuseComponent += diffuse
	v.Irradiation.GlobalIrradiance += beam + diffuse
	if lit {
		v.Irradiation.SunHours += sunHoursWeight
	}
}

// Snapshot returns a copy of the current accumulator, safe to read
// concurrently with in-flight writers.
func (v *Voxel) Snapshot() Irradiation {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.Irradiation
}

// Normal is the voxel's estimated surface normal, defaulting to upright
// (0,0,1) until normal estimation runs or when estimation fails.
type Normal struct {
	X, Y, Z float64
}

func UprightNormal() Normal { return Normal{0, 0, 1} }

// Voxel is one cell of the grid: its integer key, the points that quantized
// into it, its estimated normal and its radiation accumulator. Area and
// Translucence are optional per-voxel hints; both are nil unless a caller
// explicitly supplies them — the current pipeline never populates Area.
type Voxel struct {
	Key          Key
	Points       []points.Point
	Normal       Normal
	Area         *float64
	Translucence *float64

	Irradiation Irradiation
	mu          sync.RWMutex
}

func newVoxel(key Key, p points.Point) *Voxel {
	return &Voxel{
		Key:    key,
		Points: []points.Point{p},
		Normal: UprightNormal(),
	}
}

func (v *Voxel) pushPoint(p points.Point) {
	v.Points = append(v.Points, p)
}
