// Command solrad computes per-point solar irradiation for a LiDAR point
// cloud: voxelized rotated-grid shadow casting integrated against the ESRA
// clear-sky radiation model over a sun-epoch series. A single-shot batch
// CLI: no listen address, no graceful-shutdown goroutines, runs once and
// exits.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hblyp/pcsrt-go/internal/solrad/cloud"
	"github.com/hblyp/pcsrt-go/internal/solrad/config"
	"github.com/hblyp/pcsrt-go/internal/solrad/errs"
	"github.com/hblyp/pcsrt-go/internal/solrad/logging"
	"github.com/hblyp/pcsrt-go/internal/solrad/pipeline"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
	"github.com/hblyp/pcsrt-go/internal/solrad/points/lasio"
	"github.com/hblyp/pcsrt-go/internal/solrad/points/plyio"
	"github.com/hblyp/pcsrt-go/internal/solrad/rundb"
)

func main() {
	params, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fail(err)
	}

	logging.SetLevel(params.LogLevel, os.Stderr)

	var tuning *config.TuningDefaults
	if params.TuningDefaults != "" {
		tuning, err = config.LoadTuningDefaults(params.TuningDefaults)
		if err != nil {
			fail(err)
		}
	}

	src := lasio.Source{Path: params.InputFile}

	desiredAvgPoints := tuning.DesiredAvgPointsPerVoxelOr(params.DesiredAvgPoints)
	solvePrecision := tuning.VoxelSizeSolvePrecisionOr(cloud.DefaultVoxelSizeSolvePrecision)
	cloudParams, err := cloud.GetCloudParams(src, params.BlockParams.Size, params.FixedVoxelSize, desiredAvgPoints, solvePrecision)
	if err != nil {
		fail(err)
	}

	if min, max, avg, err := cloud.DensityStats(src, cloudParams.Extent, params.BlockParams.Size, cloudParams.VoxelSize); err != nil {
		logging.Diag("compute density stats: %v", err)
	} else {
		logging.Diag("occupied voxel density: min=%.2f max=%.2f avg=%.2f points/voxel", min, max, avg)
	}

	writer, err := openWriter(params, cloudParams)
	if err != nil {
		fail(err)
	}

	var ledger *rundb.DB
	if params.RunDB != "" {
		ledger, err = rundb.Open(params.RunDB)
		if err != nil {
			fail(err)
		}
		defer ledger.Close()
	}

	cfg := pipeline.Config{
		Source:                  src,
		Writer:                  writer,
		Centroid:                params.Centroid,
		TimeRange:               params.TimeRange,
		StepMinutes:             params.StepMinutes,
		Linke:                   params.Linke,
		Horizon:                 params.Horizon,
		BlockParams:             params.BlockParams,
		DesiredAvgPoints:        desiredAvgPoints,
		FixedVoxelSize:          params.FixedVoxelSize,
		VoxelSizeSolvePrecision: solvePrecision,
		PrecomputedParams:       &cloudParams,
		MaxShellDepth:           tuning.NormalMaxShellDepthOr(0),
		MinShellMinimum:         tuning.NormalMinShellMinimumOr(0),
		SolarConstant:           tuning.SolarConstantOr(0),
		ReportPath:              params.ReportPath,
	}

	startedAt := time.Now()
	if ledger != nil {
		run, err := ledger.BeginRun(params.InputFile, params.OutputFile, startedAt)
		if err != nil {
			logging.Diag("begin run ledger entry: %v", err)
		} else {
			cfg.Ledger = ledger
			cfg.RunID = run.ID
		}
	}

	result, err := pipeline.Run(cfg)
	closeErr := writer.Close()

	if ledger != nil && cfg.RunID != "" {
		finErr := ledger.FinishRun(cfg.RunID, time.Now(), result.CloudParams, result.EpochCount, result.FailedNormalCount, err)
		if finErr != nil {
			logging.Diag("finish run ledger entry: %v", finErr)
		}
	}

	if err != nil {
		fail(err)
	}
	if closeErr != nil {
		fail(errs.IO("close output writer", closeErr))
	}

	logging.Ops("solrad run complete: %d epochs, %d voxels fell back to upright normal, %d lit/%d shadowed voxel-epochs",
		result.EpochCount, result.FailedNormalCount, result.LitVoxelEpochs, result.ShadowedVoxelEpochs)
}

func openWriter(params config.RunParams, cloudParams cloud.Params) (points.Writer, error) {
	switch params.FileType {
	case points.PLYAscii:
		return plyio.NewWriter(params.OutputFile, plyio.ASCII)
	case points.PLYBinary:
		return plyio.NewWriter(params.OutputFile, plyio.BinaryBigEndian)
	case points.LAS:
		return lasio.NewWriter(params.OutputFile, cloudParams.Extent, cloudParams.VoxelSize,
			float64(cloudParams.PointCount), cloudParams.AverageInVoxel)
	default:
		return nil, errs.Config("open writer", fmt.Errorf("unsupported output format %s", params.FileType))
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	var se *errs.Error
	if errors.As(err, &se) {
		os.Exit(se.ExitCode())
	}
	os.Exit(3)
}
