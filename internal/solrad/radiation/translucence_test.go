package radiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hblyp/pcsrt-go/internal/solrad/points"
	"github.com/hblyp/pcsrt-go/internal/solrad/shadow"
	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
)

func translucent(v float64) *float64 { return &v }

func epochAt(z float64) sunpos.Epoch {
	return sunpos.Epoch{
		Time:     time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC),
		Position: sunpos.Position{Altitude: 60, Azimuth: 180},
		StepCoef: 1.0,
	}
}

func TestPropagateOpaqueStopsBeamBelow(t *testing.T) {
	t.Parallel()

	g := voxel.NewGrid()
	g.Insert(points.Point{X: 0, Y: 0, Z: 2}, 1.0)
	g.Insert(points.Point{X: 0, Y: 0, Z: 1}, 1.0)
	g.Insert(points.Point{X: 0, Y: 0, Z: 0}, 1.0)

	top := g.Get(voxel.KeyOf(0, 0, 2, 1.0))
	mid := g.Get(voxel.KeyOf(0, 0, 1, 1.0))
	bot := g.Get(voxel.KeyOf(0, 0, 0, 1.0))
	require.NotNil(t, top)
	require.NotNil(t, mid)
	require.NotNil(t, bot)
	top.Translucence = nil // opaque

	bucket := shadow.Bucket{Members: []voxel.Key{top.Key, mid.Key, bot.Key}}

	Propagate(g, bucket, epochAt(0), 0, 3.0, SolarConstant)

	topSnap := top.Snapshot()
	midSnap := mid.Snapshot()
	botSnap := bot.Snapshot()

	assert.Greater(t, topSnap.BeamComponent, 0.0)
	assert.Equal(t, 0.0, midSnap.BeamComponent)
	assert.Equal(t, 0.0, botSnap.BeamComponent)
	// diffuse still accrues for every voxel regardless of shadowing
	assert.Greater(t, midSnap.DiffuseComponent, 0.0)
	assert.Greater(t, botSnap.DiffuseComponent, 0.0)
}

func TestPropagateTranslucentAttenuatesInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	g := voxel.NewGrid()
	g.Insert(points.Point{X: 0, Y: 0, Z: 1}, 1.0)
	g.Insert(points.Point{X: 0, Y: 0, Z: 0}, 1.0)

	top := g.Get(voxel.KeyOf(0, 0, 1, 1.0))
	bot := g.Get(voxel.KeyOf(0, 0, 0, 1.0))
	require.NotNil(t, top)
	require.NotNil(t, bot)
	top.Translucence = translucent(0.5)

	bucket := shadow.Bucket{Members: []voxel.Key{top.Key, bot.Key}}
	Propagate(g, bucket, epochAt(0), 0, 3.0, SolarConstant)

	topBeam := top.Snapshot().BeamComponent
	botBeam := bot.Snapshot().BeamComponent

	assert.Greater(t, topBeam, 0.0)
	assert.Greater(t, botBeam, 0.0)
	assert.InDelta(t, topBeam*0.5, botBeam, 1e-6)
}

func TestPropagateShadowedVoxelBeamIsLeakedNotOwnComputation(t *testing.T) {
	t.Parallel()

	g := voxel.NewGrid()
	g.Insert(points.Point{X: 0, Y: 0, Z: 1}, 1.0)
	g.Insert(points.Point{X: 0, Y: 0, Z: 0}, 1.0)

	top := g.Get(voxel.KeyOf(0, 0, 1, 1.0))
	bot := g.Get(voxel.KeyOf(0, 0, 0, 1.0))
	require.NotNil(t, top)
	require.NotNil(t, bot)
	top.Translucence = translucent(0.5)
	// bot has a very different normal from top (a vertical east-facing
	// wall instead of upright): if Propagate mistakenly ran bot through
	// its own lit computation instead of carrying top's beam down, bot's
	// beam would reflect its own incline angle rather than top.BeamComponent*0.5.
	bot.Normal = voxel.Normal{X: 1, Y: 0, Z: 0}

	bucket := shadow.Bucket{Members: []voxel.Key{top.Key, bot.Key}}
	Propagate(g, bucket, epochAt(0), 0, 3.0, SolarConstant)

	topSnap := top.Snapshot()
	botSnap := bot.Snapshot()

	assert.Greater(t, topSnap.BeamComponent, 0.0)
	assert.InDelta(t, topSnap.BeamComponent*0.5, botSnap.BeamComponent, 1e-6)
	// bot's diffuse component comes from its own (shadowed) computation
	// with its own normal, not top's.
	assert.Greater(t, botSnap.DiffuseComponent, 0.0)
}

func TestPropagateCreditsSunHoursOnlyToDirectlyLitVoxel(t *testing.T) {
	t.Parallel()

	g := voxel.NewGrid()
	g.Insert(points.Point{X: 0, Y: 0, Z: 1}, 1.0)
	g.Insert(points.Point{X: 0, Y: 0, Z: 0}, 1.0)

	top := g.Get(voxel.KeyOf(0, 0, 1, 1.0))
	bot := g.Get(voxel.KeyOf(0, 0, 0, 1.0))
	require.NotNil(t, top)
	require.NotNil(t, bot)
	top.Translucence = nil // opaque: bot gets diffuse only, never any beam

	bucket := shadow.Bucket{Members: []voxel.Key{top.Key, bot.Key}}
	Propagate(g, bucket, epochAt(0), 0, 3.0, SolarConstant)

	assert.Greater(t, top.Snapshot().SunHours, 0.0)
	assert.Greater(t, bot.Snapshot().DiffuseComponent, 0.0)
	assert.Equal(t, 0.0, bot.Snapshot().SunHours)
}

func TestPropagateSkipsMissingVoxelsInBucket(t *testing.T) {
	t.Parallel()

	g := voxel.NewGrid()
	g.Insert(points.Point{X: 0, Y: 0, Z: 0}, 1.0)
	real := g.Get(voxel.KeyOf(0, 0, 0, 1.0))
	require.NotNil(t, real)

	missing := voxel.Key{X: 99, Y: 99, Z: 99}
	bucket := shadow.Bucket{Members: []voxel.Key{missing, real.Key}}

	assert.NotPanics(t, func() {
		Propagate(g, bucket, epochAt(0), 0, 3.0, SolarConstant)
	})
	assert.Greater(t, real.Snapshot().GlobalIrradiance, 0.0)
}
