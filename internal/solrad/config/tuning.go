package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hblyp/pcsrt-go/internal/solrad/errs"
)

// TuningDefaults is a JSON overlay of otherwise-hardcoded algorithm
// constants, mirroring internal/config/tuning.go's pointer-field pattern:
// omitted fields keep their package default, present fields override it.
type TuningDefaults struct {
	DesiredAvgPointsPerVoxel *float64 `json:"desired_avg_points_per_voxel,omitempty"`
	VoxelSizeSolvePrecision  *float64 `json:"voxel_size_solve_precision,omitempty"`
	NormalMaxShellDepth      *int     `json:"normal_max_shell_depth,omitempty"`
	NormalMinShellMinimum    *int     `json:"normal_min_shell_minimum,omitempty"`
	SolarConstant            *float64 `json:"solar_constant,omitempty"`
}

// LoadTuningDefaults loads a TuningDefaults overlay from a JSON file,
// validating the path the same way tuning.go does: must end in .json, and
// capped at 1MB to keep a malformed --tuning-defaults flag from reading an
// arbitrary large file.
func LoadTuningDefaults(path string) (*TuningDefaults, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, errs.Config("load tuning defaults", fmt.Errorf("tuning defaults file must have .json extension, got %q", ext))
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, errs.IO("load tuning defaults", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, errs.Config("load tuning defaults", fmt.Errorf("tuning defaults file too large: %d bytes (max %d)", info.Size(), maxFileSize))
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, errs.IO("load tuning defaults", err)
	}

	defaults := &TuningDefaults{}
	if err := json.Unmarshal(data, defaults); err != nil {
		return nil, errs.Config("load tuning defaults", fmt.Errorf("parse tuning defaults JSON: %w", err))
	}
	return defaults, nil
}

// DesiredAvgPointsPerVoxelOr returns the overlay's value if set, else fall.
func (t *TuningDefaults) DesiredAvgPointsPerVoxelOr(fall float64) float64 {
	if t != nil && t.DesiredAvgPointsPerVoxel != nil {
		return *t.DesiredAvgPointsPerVoxel
	}
	return fall
}

// VoxelSizeSolvePrecisionOr returns the overlay's value if set, else fall.
func (t *TuningDefaults) VoxelSizeSolvePrecisionOr(fall float64) float64 {
	if t != nil && t.VoxelSizeSolvePrecision != nil {
		return *t.VoxelSizeSolvePrecision
	}
	return fall
}

// NormalMaxShellDepthOr returns the overlay's value if set, else fall.
func (t *TuningDefaults) NormalMaxShellDepthOr(fall int) int {
	if t != nil && t.NormalMaxShellDepth != nil {
		return *t.NormalMaxShellDepth
	}
	return fall
}

// NormalMinShellMinimumOr returns the overlay's value if set, else fall.
func (t *TuningDefaults) NormalMinShellMinimumOr(fall int) int {
	if t != nil && t.NormalMinShellMinimum != nil {
		return *t.NormalMinShellMinimum
	}
	return fall
}

// SolarConstantOr returns the overlay's value if set, else fall.
func (t *TuningDefaults) SolarConstantOr(fall float64) float64 {
	if t != nil && t.SolarConstant != nil {
		return *t.SolarConstant
	}
	return fall
}
