package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
)

func TestWriteProducesNonEmptyHTML(t *testing.T) {
	t.Parallel()

	epochs := []sunpos.Epoch{
		{Time: time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC), Position: sunpos.Position{Altitude: 20, Azimuth: 100}, StepCoef: 1},
		{Time: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC), Position: sunpos.Position{Altitude: 60, Azimuth: 180}, StepCoef: 1},
		{Time: time.Date(2026, 7, 31, 17, 0, 0, 0, time.UTC), Position: sunpos.Position{Altitude: 10, Azimuth: 270}, StepCoef: 1},
	}
	stats := Stats{LitCount: 120, ShadowedCount: 40}

	path := filepath.Join(t.TempDir(), "report.html")
	err := Write(path, epochs, stats)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, string(data), "solrad sun altitude")
}

func TestWriteEmptyEpochsStillRenders(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.html")
	err := Write(path, nil, Stats{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestWriteInvalidPathReturnsError(t *testing.T) {
	t.Parallel()

	err := Write(filepath.Join(t.TempDir(), "missing-dir", "report.html"), nil, Stats{})
	assert.Error(t, err)
}
