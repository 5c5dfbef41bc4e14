package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuningFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTuningDefaults(t *testing.T) {
	t.Parallel()

	t.Run("partial overlay", func(t *testing.T) {
		path := writeTuningFile(t, "tuning.json", `{"desired_avg_points_per_voxel": 12.5, "normal_max_shell_depth": 7}`)
		td, err := LoadTuningDefaults(path)
		require.NoError(t, err)
		assert.Equal(t, 12.5, td.DesiredAvgPointsPerVoxelOr(8))
		assert.Equal(t, 7, td.NormalMaxShellDepthOr(5))
		assert.Equal(t, 4, td.NormalMinShellMinimumOr(4))
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		path := writeTuningFile(t, "tuning.txt", `{}`)
		_, err := LoadTuningDefaults(path)
		assert.Error(t, err)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "huge.json")
		big := make([]byte, 2*1024*1024)
		for i := range big {
			big[i] = ' '
		}
		require.NoError(t, os.WriteFile(path, big, 0o644))
		_, err := LoadTuningDefaults(path)
		assert.Error(t, err)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		path := writeTuningFile(t, "bad.json", `not json`)
		_, err := LoadTuningDefaults(path)
		assert.Error(t, err)
	})
}

func TestTuningDefaultsOrMethodsHandleNilReceiver(t *testing.T) {
	t.Parallel()

	var td *TuningDefaults
	assert.Equal(t, 8.0, td.DesiredAvgPointsPerVoxelOr(8))
	assert.Equal(t, 0.5, td.VoxelSizeSolvePrecisionOr(0.5))
	assert.Equal(t, 5, td.NormalMaxShellDepthOr(5))
	assert.Equal(t, 4, td.NormalMinShellMinimumOr(4))
	assert.Equal(t, 1361.0, td.SolarConstantOr(1361))
}
