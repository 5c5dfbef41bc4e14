package cloud

import (
	"github.com/hblyp/pcsrt-go/internal/solrad/extent"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
)

// DefaultVoxelSizeSolvePrecision is the convergence tolerance SolveVoxelSize
// stops at when GetCloudParams is called without a tuning-overridden
// precision.
const DefaultVoxelSizeSolvePrecision = 0.5

// GetCloudParams reads the whole cloud once to establish its extent and
// point count, then either accepts a caller-supplied voxel size or solves
// for one that hits desiredAveragePoints within solvePrecision (<=0 falls
// back to DefaultVoxelSizeSolvePrecision), matching get_cloud_params.go's
// orchestration of extent.rs + voxel_size.rs.
func GetCloudParams(src points.Source, blockSize float64, fixedVoxelSize *float64, desiredAveragePoints float64, solvePrecision float64) (Params, error) {
	ext, count, err := extent.ComputeExtent(src)
	if err != nil {
		return Params{}, err
	}
	if solvePrecision <= 0 {
		solvePrecision = DefaultVoxelSizeSolvePrecision
	}

	var voxelSize, avgPoints float64
	if fixedVoxelSize != nil {
		voxelSize = *fixedVoxelSize
		avgPoints, err = AveragePointsInVoxel(src, ext, blockSize, voxelSize)
		if err != nil {
			return Params{}, err
		}
	} else {
		voxelSize, avgPoints, err = SolveVoxelSize(src, ext, blockSize, desiredAveragePoints, solvePrecision)
		if err != nil {
			return Params{}, err
		}
	}

	return Params{
		VoxelSize:      voxelSize,
		PointCount:     count,
		AverageInVoxel: avgPoints,
		Extent:         ext,
	}, nil
}
