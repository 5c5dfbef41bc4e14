package lasio

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hblyp/pcsrt-go/internal/solrad/extent"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.las")
	ext := extent.Extent{MinX: 100, MinY: 200, MinZ: 10, MaxX: 110, MaxY: 210, MaxZ: 20}

	w, err := NewWriter(path, ext, 2.5, 3, 8.0)
	require.NoError(t, err)

	want := []points.Point{
		{X: 100.5, Y: 200.25, Z: 10.125, Intensity: 42, Classification: 2},
		{X: 105.0, Y: 205.0, Z: 15.0, Intensity: 0, Classification: 0},
		{X: 110.0, Y: 210.0, Z: 20.0, Intensity: 1000, Classification: 9},
	}
	wantExtra := [][]float64{
		{1.1, 2.2, 3.3, 4},
		{0, 0, 0, 0},
		{9.9, 8.8, 7.7, 12},
	}

	for i, p := range want {
		err := w.WritePoint(p, points.ExtraRecord{Fields: wantExtra[i]})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.EqualValues(t, 3, r.Header().PointCount)

	var got []points.Point
	for {
		p, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, p)
	}
	require.Len(t, got, len(want))

	for i, p := range want {
		assert.InDelta(t, p.X, got[i].X, 0.001, "point %d X", i)
		assert.InDelta(t, p.Y, got[i].Y, 0.001, "point %d Y", i)
		assert.InDelta(t, p.Z, got[i].Z, 0.001, "point %d Z", i)
		assert.Equal(t, p.Intensity, got[i].Intensity, "point %d intensity", i)
		assert.Equal(t, p.Classification, got[i].Classification, "point %d classification", i)
	}

	_, err = r.Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSourceOpenReopensIndependently(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reopen.las")
	w, err := NewWriter(path, extent.Extent{}, 1, 1, 1)
	require.NoError(t, err)
	require.NoError(t, w.WritePoint(points.Point{X: 1, Y: 2, Z: 3}, points.ExtraRecord{Fields: []float64{0, 0, 0, 0}}))
	require.NoError(t, w.Close())

	src := Source{Path: path}

	r1, err := src.Open()
	require.NoError(t, err)
	_, err = r1.Read()
	require.NoError(t, err)
	require.NoError(t, r1.Close())

	r2, err := src.Open()
	require.NoError(t, err)
	defer r2.Close()
	p, err := r2.Read()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.X, 0.001)
}

func TestHasGPSTime(t *testing.T) {
	t.Parallel()

	assert.False(t, hasGPSTime(0))
	assert.False(t, hasGPSTime(2))
	assert.True(t, hasGPSTime(1))
	assert.True(t, hasGPSTime(3))
}
