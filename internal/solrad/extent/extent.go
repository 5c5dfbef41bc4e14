// Package extent holds the point-cloud bounding box type shared by block
// and cloud (kept separate from cloud to avoid an import cycle: block needs
// Extent, and cloud's density/voxel-size solver needs block).
package extent

import (
	"errors"
	"io"
	"math"

	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

// Extent is the point cloud's axis-aligned bounding box.
type Extent struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

func New() Extent {
	return Extent{
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
}

// Update widens the extent to include p.
func (e *Extent) Update(p points.Point) {
	if p.X < e.MinX {
		e.MinX = p.X
	}
	if p.Y < e.MinY {
		e.MinY = p.Y
	}
	if p.Z < e.MinZ {
		e.MinZ = p.Z
	}
	if p.X > e.MaxX {
		e.MaxX = p.X
	}
	if p.Y > e.MaxY {
		e.MaxY = p.Y
	}
	if p.Z > e.MaxZ {
		e.MaxZ = p.Z
	}
}

// Dimensions returns the inclusive x/y/z span of the extent.
func (e Extent) Dimensions() (x, y, z float64) {
	return e.MaxX - e.MinX + 1, e.MaxY - e.MinY + 1, e.MaxZ - e.MinZ + 1
}

// Empty reports whether the extent was never updated (the EmptyInput
// condition).
func (e Extent) Empty() bool {
	return math.IsInf(e.MinX, 1)
}

// ComputeExtent scans every point a Source yields once, matching
// get_cloud_params's extent-accumulation loop.
func ComputeExtent(src points.Source) (Extent, int, error) {
	r, err := src.Open()
	if err != nil {
		return Extent{}, 0, err
	}
	defer r.Close()

	e := New()
	count := 0
	for {
		p, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return e, count, err
		}
		e.Update(p)
		count++
	}
	return e, count, nil
}
