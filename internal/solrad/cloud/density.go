package cloud

import (
	"math"

	"github.com/hblyp/pcsrt-go/internal/solrad/block"
	"github.com/hblyp/pcsrt-go/internal/solrad/extent"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
	"gonum.org/v1/gonum/stat"
)

// Params is the realized voxel-size/point-count summary, written back into
// the PCSRT VLR and --report output.
type Params struct {
	VoxelSize      float64
	PointCount     int
	AverageInVoxel float64
	Extent         extent.Extent
}

// AveragePointsInVoxel voxelizes every block at voxelSize (without overlap)
// and returns the mean points-per-occupied-voxel across the whole cloud,
// matching get_average_points_in_voxel.
func AveragePointsInVoxel(src points.Source, ext extent.Extent, blockSize, voxelSize float64) (float64, error) {
	var totalPoints, totalVoxels float64
	err := block.Iterate(src, ext, block.Params{Size: blockSize}, func(b *block.Block) error {
		seen := make(map[voxel.Key]struct{})
		for _, p := range b.Points {
			totalPoints++
			k := voxel.KeyOf(p.X, p.Y, p.Z, voxelSize)
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				totalVoxels++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if totalVoxels == 0 {
		return 0, nil
	}
	return totalPoints / totalVoxels, nil
}

// SolveVoxelSize iteratively finds the voxel size that yields, on average,
// targetAvgPoints points per occupied voxel within precision, matching
// get_voxel_size_and_average_points's fixed-point iteration (assumes point
// density scales with the cube of voxel size).
func SolveVoxelSize(src points.Source, ext extent.Extent, blockSize, targetAvgPoints, precision float64) (voxelSize, avgPoints float64, err error) {
	avgPoints, err = AveragePointsInVoxel(src, ext, blockSize, 1)
	if err != nil {
		return 0, 0, err
	}
	voxelSize = math.Cbrt(targetAvgPoints / avgPoints)

	for math.Abs(avgPoints-targetAvgPoints) > precision {
		avgPoints, err = AveragePointsInVoxel(src, ext, blockSize, voxelSize)
		if err != nil {
			return 0, 0, err
		}
		if avgPoints == 0 {
			break
		}
		voxelSize = math.Cbrt((voxelSize * voxelSize * voxelSize * targetAvgPoints) / avgPoints)
	}

	voxelSize = math.Round(voxelSize*100) / 100
	return voxelSize, avgPoints, nil
}

// DensityStats reports the min/max/average occupied-voxel point density
// across the cloud, computed via gonum/stat.
func DensityStats(src points.Source, ext extent.Extent, blockSize, voxelSize float64) (min, max, average float64, err error) {
	var samples []float64
	err = block.Iterate(src, ext, block.Params{Size: blockSize}, func(b *block.Block) error {
		counts := make(map[voxel.Key]int)
		for _, p := range b.Points {
			counts[voxel.KeyOf(p.X, p.Y, p.Z, voxelSize)]++
		}
		for _, c := range counts {
			samples = append(samples, float64(c))
		}
		return nil
	})
	if err != nil || len(samples) == 0 {
		return 0, 0, 0, err
	}
	min, max = samples[0], samples[0]
	for _, s := range samples {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	average = stat.Mean(samples, nil)
	return min, max, average, nil
}

