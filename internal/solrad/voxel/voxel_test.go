package voxel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

func TestKeyOfRoundsHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Key{X: 1, Y: -1, Z: 0}, KeyOf(0.5, -0.5, 0.49, 1.0))
	assert.Equal(t, Key{X: 2, Y: -2, Z: 2}, KeyOf(5, -5, 5, 2.5))
}

func TestShellCoversFullCubeSurface(t *testing.T) {
	t.Parallel()

	k := Key{X: 0, Y: 0, Z: 0}
	shell := k.Shell(1)
	// the surface of a 3x3x3 cube minus the center: 27 - 1 = 26 cells
	assert.Len(t, shell, 26)

	seen := make(map[Key]bool)
	for _, sk := range shell {
		seen[sk] = true
	}
	assert.True(t, seen[Key{X: 1, Y: 1, Z: 1}])
	assert.True(t, seen[Key{X: -1, Y: -1, Z: -1}])
	assert.True(t, seen[Key{X: 1, Y: 0, Z: 0}])
	assert.False(t, seen[Key{X: 0, Y: 0, Z: 0}])
}

func TestShellZeroLayerIsSelf(t *testing.T) {
	t.Parallel()

	k := Key{X: 3, Y: 4, Z: 5}
	assert.Equal(t, []Key{k}, k.Shell(0))
}

func TestGridInsertAndGet(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	g.Insert(points.Point{X: 0.1, Y: 0.1, Z: 0.1}, 1.0)
	g.Insert(points.Point{X: 0.2, Y: 0.2, Z: 0.2}, 1.0)
	g.Insert(points.Point{X: 5, Y: 5, Z: 5}, 1.0)

	assert.Equal(t, 2, g.Len())

	v := g.Get(KeyOf(0.1, 0.1, 0.1, 1.0))
	if assert.NotNil(t, v) {
		assert.Len(t, v.Points, 2)
	}

	assert.Nil(t, g.Get(Key{X: 99, Y: 99, Z: 99}))
}

func TestGridRangeVisitsEveryVoxel(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	for i := 0; i < 5; i++ {
		g.Insert(points.Point{X: float64(i) * 10, Y: 0, Z: 0}, 1.0)
	}
	count := 0
	g.Range(func(v *Voxel) { count++ })
	assert.Equal(t, 5, count)
}

func TestSearchAdjacentPointsExpandsShellUntilEnough(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	center := Key{X: 0, Y: 0, Z: 0}
	g.Insert(points.Point{X: 0, Y: 0, Z: 0}, 1.0)
	g.Insert(points.Point{X: 1, Y: 0, Z: 0}, 1.0)
	g.Insert(points.Point{X: 0, Y: 1, Z: 0}, 1.0)
	g.Insert(points.Point{X: -1, Y: -1, Z: -1}, 1.0)

	found := g.SearchAdjacentPoints(center, 2, 3)
	assert.GreaterOrEqual(t, len(found), 3)
}

func TestSearchAdjacentPointsStopsAtMaxDepth(t *testing.T) {
	t.Parallel()

	g := NewGrid()
	g.Insert(points.Point{X: 0, Y: 0, Z: 0}, 1.0)

	found := g.SearchAdjacentPoints(Key{X: 0, Y: 0, Z: 0}, 1, 100)
	assert.Len(t, found, 1)
}

func TestVoxelAddIrradiationAccumulates(t *testing.T) {
	t.Parallel()

	v := newVoxel(Key{}, points.Point{})
	v.AddIrradiation(10, 5, 0.5, true)
	v.AddIrradiation(0, 0, 1.0, false) // no illumination: sun hours not credited

	snap := v.Snapshot()
	assert.Equal(t, 10.0, snap.BeamComponent)
	assert.Equal(t, 5.0, snap.DiffuseComponent)
	assert.Equal(t, 15.0, snap.GlobalIrradiance)
	assert.Equal(t, 0.5, snap.SunHours)
}

func TestVoxelAddIrradiationShadowedWithDiffuseDoesNotCreditSunHours(t *testing.T) {
	t.Parallel()

	v := newVoxel(Key{}, points.Point{})
	v.AddIrradiation(0, 3, 0.5, false) // shadowed voxel: diffuse only, not lit

	snap := v.Snapshot()
	assert.Equal(t, 0.0, snap.BeamComponent)
	assert.Equal(t, 3.0, snap.DiffuseComponent)
	assert.Equal(t, 0.0, snap.SunHours)
}

func TestVoxelAddIrradiationConcurrentSafe(t *testing.T) {
	t.Parallel()

	v := newVoxel(Key{}, points.Point{})
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.AddIrradiation(1, 1, 0.1, true)
		}()
	}
	wg.Wait()

	snap := v.Snapshot()
	assert.Equal(t, 200.0, snap.GlobalIrradiance)
}

func TestUprightNormalDefault(t *testing.T) {
	t.Parallel()

	v := newVoxel(Key{}, points.Point{X: 1})
	assert.Equal(t, UprightNormal(), v.Normal)
}
