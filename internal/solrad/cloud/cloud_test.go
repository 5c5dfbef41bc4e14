package cloud

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hblyp/pcsrt-go/internal/solrad/extent"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

type fakeReader struct {
	pts []points.Point
	i   int
}

func (f *fakeReader) Read() (points.Point, error) {
	if f.i >= len(f.pts) {
		return points.Point{}, io.EOF
	}
	p := f.pts[f.i]
	f.i++
	return p, nil
}

func (f *fakeReader) Close() error { return nil }

type fakeSource struct{ pts []points.Point }

func (s fakeSource) Open() (points.Reader, error) {
	return &fakeReader{pts: s.pts}, nil
}

func gridOf(nx, ny, nz int, spacing float64) []points.Point {
	var pts []points.Point
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				pts = append(pts, points.Point{X: float64(x) * spacing, Y: float64(y) * spacing, Z: float64(z) * spacing})
			}
		}
	}
	return pts
}

func TestAveragePointsInVoxel(t *testing.T) {
	t.Parallel()

	// Two points per occupied voxel at voxel size 1: duplicate every grid point.
	pts := gridOf(3, 3, 1, 1.0)
	pts = append(pts, pts...)
	src := fakeSource{pts: pts}
	ext := extent.Extent{MinX: 0, MaxX: 2, MinY: 0, MaxY: 2, MinZ: 0, MaxZ: 0}

	avg, err := AveragePointsInVoxel(src, ext, 0, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, avg, 1e-9)
}

func TestAveragePointsInVoxelEmptyCloud(t *testing.T) {
	t.Parallel()

	src := fakeSource{}
	ext := extent.Extent{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 0}
	avg, err := AveragePointsInVoxel(src, ext, 0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)
}

func TestSolveVoxelSizeConverges(t *testing.T) {
	t.Parallel()

	pts := gridOf(10, 10, 10, 1.0)
	src := fakeSource{pts: pts}
	ext := extent.Extent{MinX: 0, MaxX: 9, MinY: 0, MaxY: 9, MinZ: 0, MaxZ: 9}

	voxelSize, avg, err := SolveVoxelSize(src, ext, 0, 8.0, 0.5)
	require.NoError(t, err)
	assert.Greater(t, voxelSize, 0.0)
	assert.InDelta(t, 8.0, avg, 1.0)
}

func TestGetCloudParamsFixedVoxelSize(t *testing.T) {
	t.Parallel()

	pts := gridOf(4, 4, 1, 1.0)
	src := fakeSource{pts: pts}

	fixed := 2.0
	params, err := GetCloudParams(src, 0, &fixed, 8.0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, params.VoxelSize)
	assert.Equal(t, 16, params.PointCount)
}

func TestGetCloudParamsCustomSolvePrecision(t *testing.T) {
	t.Parallel()

	pts := gridOf(8, 8, 1, 1.0)
	src := fakeSource{pts: pts}

	params, err := GetCloudParams(src, 0, nil, 4.0, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, params.AverageInVoxel, 0.05)
}

func TestGetCloudParamsAutoVoxelSize(t *testing.T) {
	t.Parallel()

	pts := gridOf(8, 8, 1, 1.0)
	src := fakeSource{pts: pts}

	params, err := GetCloudParams(src, 0, nil, 4.0, 0)
	require.NoError(t, err)
	assert.Greater(t, params.VoxelSize, 0.0)
	assert.Equal(t, 64, params.PointCount)
}

func TestDensityStatsMinMaxAverage(t *testing.T) {
	t.Parallel()

	pts := gridOf(3, 3, 1, 1.0)
	pts = append(pts, points.Point{X: 0, Y: 0, Z: 0}) // doubles one voxel's count
	src := fakeSource{pts: pts}
	ext := extent.Extent{MinX: 0, MaxX: 2, MinY: 0, MaxY: 2, MinZ: 0, MaxZ: 0}

	min, max, avg, err := DensityStats(src, ext, 0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 2.0, max)
	assert.Greater(t, avg, 1.0)
}

func TestDensityStatsEmptyCloud(t *testing.T) {
	t.Parallel()

	src := fakeSource{}
	ext := extent.Extent{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 0}
	min, max, avg, err := DensityStats(src, ext, 0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 0.0, max)
	assert.Equal(t, 0.0, avg)
}
