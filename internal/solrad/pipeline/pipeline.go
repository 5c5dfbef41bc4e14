// Package pipeline is the composition root wiring cloud-parameter
// estimation through block iteration, normal estimation, sun-epoch
// generation, rotated-grid shadowing, the ESRA radiation model and
// translucence propagation, and the annotated-cloud writer. Structured as
// a Config struct of (mostly optional) dependencies with stage-shaped
// helper functions instead of one monolithic function, and a
// reflect-based isNilInterface guard for the optional interface
// dependencies.
package pipeline

import (
	"reflect"
	"sync"

	"github.com/hblyp/pcsrt-go/internal/solrad/block"
	"github.com/hblyp/pcsrt-go/internal/solrad/cloud"
	"github.com/hblyp/pcsrt-go/internal/solrad/config"
	"github.com/hblyp/pcsrt-go/internal/solrad/errs"
	"github.com/hblyp/pcsrt-go/internal/solrad/logging"
	"github.com/hblyp/pcsrt-go/internal/solrad/normal"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
	"github.com/hblyp/pcsrt-go/internal/solrad/radiation"
	"github.com/hblyp/pcsrt-go/internal/solrad/report"
	"github.com/hblyp/pcsrt-go/internal/solrad/shadow"
	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
	"github.com/hblyp/pcsrt-go/internal/solrad/voxel"
)

// isNilInterface reports whether an interface value is nil or wraps a nil
// pointer, guarding against the classic Go interface-nil pitfall where a
// typed nil pointer compares non-nil against the bare interface.
func isNilInterface(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// RunLedger is the optional run-tracking sink (rundb.DB satisfies it; kept
// as an interface here so pipeline does not import database/sql or pull
// golang-migrate into every caller).
type RunLedger interface {
	RecordBlock(runID string, blockNumber, pointCount, voxelCount int) error
}

// Config wires every optional/required dependency for one pipeline run.
// Only Source, Writer, Centroid, TimeRange and Linke are required; Ledger,
// RunID and ReportPath are zero-valued no-ops when unset.
type Config struct {
	Source points.Source
	Writer points.Writer

	Centroid    config.Centroid
	TimeRange   config.TimeRange
	StepMinutes int
	Linke       config.Linke
	Horizon     sunpos.Horizon
	BlockParams config.BlockParams

	DesiredAvgPoints        float64
	FixedVoxelSize          *float64
	VoxelSizeSolvePrecision float64

	// PrecomputedParams, when set, skips the GetCloudParams extent/density
	// scan — used when the caller already had to compute cloud parameters
	// up front to build a format-specific Writer (e.g. lasio.NewWriter
	// needs voxel size and extent to write its PCSRT VLR before any point
	// is appended).
	PrecomputedParams *cloud.Params

	MaxShellDepth   int
	MinShellMinimum int

	// SolarConstant overrides radiation.SolarConstant when positive; zero
	// falls back to the default.
	SolarConstant float64

	Workers int

	Ledger   RunLedger // optional
	RunID    string
	ReportPath string // optional; empty disables the HTML report

	SunFn sunpos.Func // optional override, used by tests
}

// Result summarizes one completed run for cmd/solrad and the run ledger.
type Result struct {
	CloudParams       cloud.Params
	EpochCount        int
	FailedNormalCount int
	LitVoxelEpochs    int
	ShadowedVoxelEpochs int
}

// Run executes the full C3-C10 chain against cfg.Source, writing annotated
// points to cfg.Writer.
func Run(cfg Config) (Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	maxShellDepth := cfg.MaxShellDepth
	if maxShellDepth <= 0 {
		maxShellDepth = normal.DefaultMaxShellDepth
	}
	minShellMinimum := cfg.MinShellMinimum
	if minShellMinimum <= 0 {
		minShellMinimum = normal.DefaultMinShellMinimum
	}
	solarConstant := cfg.SolarConstant
	if solarConstant <= 0 {
		solarConstant = radiation.SolarConstant
	}

	var params cloud.Params
	if cfg.PrecomputedParams != nil {
		params = *cfg.PrecomputedParams
	} else {
		var err error
		params, err = cloud.GetCloudParams(cfg.Source, cfg.BlockParams.Size, cfg.FixedVoxelSize, cfg.DesiredAvgPoints, cfg.VoxelSizeSolvePrecision)
		if err != nil {
			return Result{}, err
		}
	}
	if params.PointCount == 0 {
		return Result{}, errs.EmptyInput("pipeline run")
	}

	epochs := sunpos.Generate(cfg.TimeRange.From, cfg.TimeRange.To, cfg.StepMinutes,
		cfg.Centroid.Lat, cfg.Centroid.Lon, cfg.Horizon, cfg.SunFn)
	logging.Ops("generated %d sun epochs", len(epochs))
	if len(epochs) == 0 {
		logging.Diag("%v", errs.DegenerateEpoch("generate sun epochs"))
	}

	result := Result{CloudParams: params, EpochCount: len(epochs)}

	blockParams := block.Params{Size: cfg.BlockParams.Size, Overlap: cfg.BlockParams.Overlap}
	blockNumber := 0
	err := block.Iterate(cfg.Source, params.Extent, blockParams, func(b *block.Block) error {
		lit, shadowed, failedNormals, voxelCount, err := processBlock(b, params, epochs, cfg, solarConstant)
		if err != nil {
			return err
		}
		result.FailedNormalCount += failedNormals
		result.LitVoxelEpochs += lit
		result.ShadowedVoxelEpochs += shadowed

		if !isNilInterface(cfg.Ledger) {
			if err := cfg.Ledger.RecordBlock(cfg.RunID, blockNumber, len(b.Points), voxelCount); err != nil {
				logging.Diag("record block %d in run ledger: %v", blockNumber, err)
			}
		}
		blockNumber++
		return nil
	})
	if err != nil {
		return result, err
	}

	if cfg.ReportPath != "" {
		stats := report.Stats{LitCount: result.LitVoxelEpochs, ShadowedCount: result.ShadowedVoxelEpochs}
		if err := report.Write(cfg.ReportPath, epochs, stats); err != nil {
			logging.Diag("write diagnostics report: %v", err)
		}
	}

	return result, nil
}

// processBlock voxelizes one block, estimates normals, then fans the sun
// epochs out across cfg.Workers goroutines. Each worker computes the
// rotated-grid shadow buckets for its epoch and propagates translucence
// through them; concurrent epochs touching the same voxel serialize through
// Voxel's own RWMutex (voxel.Voxel.AddIrradiation), so no additional
// locking is needed here.
func processBlock(b *block.Block, params cloud.Params, epochs []sunpos.Epoch, cfg Config, solarConstant float64) (lit, shadowed, failedNormals, voxelCount int, err error) {
	grid := voxel.NewGrid()
	for _, p := range b.Points {
		grid.Insert(p, params.VoxelSize)
	}

	failedNormals = normal.BuildAll(grid, params.AverageInVoxel, cfg.MaxShellDepthOrDefault(), cfg.MinShellMinimumOrDefault())

	type epochStats struct{ lit, shadowed int }
	statsCh := make(chan epochStats, len(epochs))
	sem := make(chan struct{}, cfg.Workers)
	var wg sync.WaitGroup

	for _, epoch := range epochs {
		wg.Add(1)
		sem <- struct{}{}
		go func(e sunpos.Epoch) {
			defer wg.Done()
			defer func() { <-sem }()

			buckets := shadow.Buckets(grid, e.Position)
			s := epochStats{}
			elevationM := cfg.Centroid.Elevation
			linke := cfg.Linke.ValueForMonth(e.Time.Month())
			for _, bucket := range buckets {
				radiation.Propagate(grid, bucket, e, elevationM, linke, solarConstant)
				s.lit++
				s.shadowed += len(bucket.Members) - 1
			}
			statsCh <- s
		}(epoch)
	}

	wg.Wait()
	close(statsCh)
	for s := range statsCh {
		lit += s.lit
		shadowed += s.shadowed
	}

	if err := writeBlock(grid, b, cfg.Writer); err != nil {
		return lit, shadowed, failedNormals, grid.Len(), err
	}
	return lit, shadowed, failedNormals, grid.Len(), nil
}

func writeBlock(grid *voxel.Grid, b *block.Block, w points.Writer) error {
	var writeErr error
	grid.Range(func(v *voxel.Voxel) {
		if writeErr != nil {
			return
		}
		irr := v.Snapshot()
		for _, p := range v.Points {
			extra := points.ExtraRecord{
				VoxelKey: [3]int64{v.Key.X, v.Key.Y, v.Key.Z},
				Fields:   []float64{irr.GlobalIrradiance, irr.BeamComponent, irr.DiffuseComponent, irr.SunHours},
			}
			untranslated := points.Point{
				X:              p.X + b.Translation.X,
				Y:              p.Y + b.Translation.Y,
				Z:              p.Z + b.Translation.Z,
				Intensity:      p.Intensity,
				Classification: p.Classification,
				GPSTime:        p.GPSTime,
			}
			if err := w.WritePoint(untranslated, extra); err != nil {
				writeErr = errs.IO("write annotated point", err)
			}
		}
	})
	return writeErr
}

// MaxShellDepthOrDefault returns cfg.MaxShellDepth, falling back to
// normal.DefaultMaxShellDepth when unset.
func (cfg Config) MaxShellDepthOrDefault() int {
	if cfg.MaxShellDepth > 0 {
		return cfg.MaxShellDepth
	}
	return normal.DefaultMaxShellDepth
}

// MinShellMinimumOrDefault returns cfg.MinShellMinimum, falling back to
// normal.DefaultMinShellMinimum when unset.
func (cfg Config) MinShellMinimumOrDefault() int {
	if cfg.MinShellMinimum > 0 {
		return cfg.MinShellMinimum
	}
	return normal.DefaultMinShellMinimum
}
