// Package config parses the solrad CLI surface and the optional tuning
// defaults overlay: a single flag.FlagSet of top-level flag vars, plus a
// handful of comma-separated compound flags (centroid, time range, Linke
// turbidity, block params) each with their own small parser.
package config

import (
	"flag"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hblyp/pcsrt-go/internal/solrad/errs"
	"github.com/hblyp/pcsrt-go/internal/solrad/points"
	"github.com/hblyp/pcsrt-go/internal/solrad/sunpos"
)

// Centroid is the reference point used to compute sunrise/sunset and sun
// position; elevation is in metres above sea level.
type Centroid struct {
	Lat, Lon, Elevation float64
}

// ParseCentroid parses "lat,lon,elevation", validating lat in [-90,90] and
// lon in [-180,180], matching cli/input_params/centroid/parsers.rs.
func ParseCentroid(input string) (Centroid, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 3 {
		return Centroid{}, errs.Config("parse centroid", fmt.Errorf("centroid coords invalid: %q", input))
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Centroid{}, errs.Config("parse centroid", fmt.Errorf("centroid coords invalid: %q", input))
		}
		vals[i] = v
	}
	if vals[0] < -90 || vals[0] > 90 {
		return Centroid{}, errs.Config("parse centroid", fmt.Errorf("centroid lat not in -90;90 range: %v", vals[0]))
	}
	if vals[1] < -180 || vals[1] > 180 {
		return Centroid{}, errs.Config("parse centroid", fmt.Errorf("centroid lon not in -180;180 range: %v", vals[1]))
	}
	return Centroid{Lat: vals[0], Lon: vals[1], Elevation: vals[2]}, nil
}

// TimeRange bounds the sun-epoch generator.
type TimeRange struct {
	From, To time.Time
}

// ParseTimeRange parses "RFC3339From,RFC3339To".
func ParseTimeRange(input string) (TimeRange, error) {
	parts := strings.SplitN(input, ",", 2)
	if len(parts) != 2 {
		return TimeRange{}, errs.Config("parse time range", fmt.Errorf("invalid time range: %q", input))
	}
	from, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeRange{}, errs.Config("parse time range", fmt.Errorf("invalid time range \"from\" param: %w", err))
	}
	to, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeRange{}, errs.Config("parse time range", fmt.Errorf("invalid time range \"to\" param: %w", err))
	}
	return TimeRange{From: from, To: to}, nil
}

// Linke holds one Linke turbidity factor per calendar month (index 0 =
// January), or the same value repeated twelve times for a single-value
// input, matching src/lib/common/structs/linke.rs.
type Linke [12]float64

// ValueForMonth returns the turbidity factor for a time.Month.
func (l Linke) ValueForMonth(m time.Month) float64 {
	return l[int(m)-1]
}

var (
	singleLinkeRe  = regexp.MustCompile(`^\d+\.?\d*$`)
	monthlyLinkeRe = regexp.MustCompile(`^(\d+\.?\d*,){11}\d+\.?\d*$`)
)

// ParseLinke accepts either a single float (applied to all twelve months)
// or exactly twelve comma-separated floats, matching
// cli_new/input_params/linke/parsers.rs.
func ParseLinke(input string) (Linke, error) {
	switch {
	case singleLinkeRe.MatchString(input):
		v, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return Linke{}, errs.Config("parse linke", fmt.Errorf("invalid single linke turbidity factor value: %q", input))
		}
		var l Linke
		for i := range l {
			l[i] = v
		}
		return l, nil
	case monthlyLinkeRe.MatchString(input):
		parts := strings.Split(input, ",")
		var l Linke
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return Linke{}, errs.Config("parse linke", fmt.Errorf("invalid monthly linke value: %q", p))
			}
			l[i] = v
		}
		return l, nil
	default:
		return Linke{}, errs.Config("parse linke", fmt.Errorf("invalid linke turbidity factor value [use single float value or 12 (monthly) float values separated by comma]: %q", input))
	}
}

// BlockParams configures the block iterator. Overlap is in the same
// units as the point cloud's coordinates.
type BlockParams struct {
	Size, Overlap float64
}

// DefaultBlockParams processes the whole cloud as a single block, matching
// BlockParams::default() (size: usize::MAX, overlap: 0).
func DefaultBlockParams() BlockParams {
	return BlockParams{Size: 0, Overlap: 0}
}

// ParseBlockParams parses "size,overlap".
func ParseBlockParams(input string) (BlockParams, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return BlockParams{}, errs.Config("parse block params", fmt.Errorf("invalid block params: %q", input))
	}
	size, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return BlockParams{}, errs.Config("parse block params", fmt.Errorf("invalid block size: %q", parts[0]))
	}
	overlap, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return BlockParams{}, errs.Config("parse block params", fmt.Errorf("invalid block overlap: %q", parts[1]))
	}
	return BlockParams{Size: size, Overlap: overlap}, nil
}

// ParseHorizon parses a comma-separated list of per-sector horizon
// heights in degrees; a single "0" (the Horizon::default()) means flat.
func ParseHorizon(input string) (sunpos.Horizon, error) {
	parts := strings.Split(input, ",")
	heights := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return sunpos.Horizon{}, errs.Config("parse horizon", fmt.Errorf("invalid horizon height: %q", p))
		}
		heights[i] = v
	}
	flat := len(heights) == 1 && heights[0] == 0
	return sunpos.Horizon{
		AngleStep:     360 / len(heights),
		HorizonHeight: heights,
		IsFlat:        flat,
	}, nil
}

// ParseFileType resolves a file's extension to a points.FileType, matching
// cli_new/input_params/file/parsers.rs.
func ParseFileType(path string) (points.FileType, error) {
	ext := path[strings.LastIndex(path, ".")+1:]
	ft, err := points.ParseFileType(strings.ToLower(ext))
	if err != nil {
		return 0, errs.Config("parse file type", fmt.Errorf("unsupported file type %q of %q", ext, path))
	}
	return ft, nil
}

// RunParams is the fully parsed CLI surface for one solrad run.
type RunParams struct {
	InputFile       string
	OutputFile      string
	FileType        points.FileType // output format, resolved from OutputFile's extension
	Centroid        Centroid
	TimeRange       TimeRange
	StepMinutes     int
	Linke           Linke
	Horizon         sunpos.Horizon
	BlockParams     BlockParams
	DesiredAvgPoints float64
	FixedVoxelSize  *float64
	TuningDefaults  string
	RunDB           string
	ReportPath      string
	LogLevel        string
}

// ParseFlags parses args (excluding argv[0]) into a RunParams, matching
// lidar.go's top-level flag.String/flag.Float64 declaration style but
// scoped to one FlagSet so repeated calls (tests) don't panic on
// re-registration.
func ParseFlags(args []string) (RunParams, error) {
	fs := flag.NewFlagSet("solrad", flag.ContinueOnError)

	input := fs.String("input", "", "input point cloud file (.las/.laz/.ply)")
	output := fs.String("output", "", "output point cloud file")
	centroid := fs.String("centroid", "", "lat,lon,elevation")
	timeRange := fs.String("time-range", "", "RFC3339From,RFC3339To")
	step := fs.Int("step-minutes", 60, "sun-epoch sampling step, in minutes")
	linke := fs.String("linke-turbidity-factor", "3.0", "single value, or 12 comma-separated monthly values")
	horizon := fs.String("horizon", "0", "comma-separated per-sector horizon heights in degrees, or \"0\" for flat")
	blockParams := fs.String("block-process-params", "", "size,overlap; omitted processes the whole cloud as one block")
	desiredAvg := fs.Float64("desired-avg-points-per-voxel", 8.0, "target average points per voxel for automatic voxel sizing")
	fixedVoxel := fs.Float64("voxel-size", 0, "fixed voxel size; 0 enables automatic sizing against desired-avg-points-per-voxel")
	tuningDefaults := fs.String("tuning-defaults", "", "path to a JSON tuning overlay")
	runDB := fs.String("run-db", "", "path to a sqlite run ledger; empty disables it")
	report := fs.String("report", "", "path to an HTML diagnostics report; empty disables it")
	logLevel := fs.String("log-level", "ops", "ops, diag, or trace")

	if err := fs.Parse(args); err != nil {
		return RunParams{}, errs.Config("parse flags", err)
	}

	if *input == "" {
		return RunParams{}, errs.Config("parse flags", fmt.Errorf("-input is required"))
	}
	if *output == "" {
		return RunParams{}, errs.Config("parse flags", fmt.Errorf("-output is required"))
	}

	ft, err := ParseFileType(*output)
	if err != nil {
		return RunParams{}, err
	}

	c, err := ParseCentroid(*centroid)
	if err != nil {
		return RunParams{}, err
	}

	tr, err := ParseTimeRange(*timeRange)
	if err != nil {
		return RunParams{}, err
	}

	l, err := ParseLinke(*linke)
	if err != nil {
		return RunParams{}, err
	}

	h, err := ParseHorizon(*horizon)
	if err != nil {
		return RunParams{}, err
	}

	bp := DefaultBlockParams()
	if *blockParams != "" {
		bp, err = ParseBlockParams(*blockParams)
		if err != nil {
			return RunParams{}, err
		}
	}

	var fixedVoxelSize *float64
	if *fixedVoxel > 0 {
		fixedVoxelSize = fixedVoxel
	}

	return RunParams{
		InputFile:        *input,
		OutputFile:       *output,
		FileType:         ft,
		Centroid:         c,
		TimeRange:        tr,
		StepMinutes:      *step,
		Linke:            l,
		Horizon:          h,
		BlockParams:      bp,
		DesiredAvgPoints: *desiredAvg,
		FixedVoxelSize:   fixedVoxelSize,
		TuningDefaults:   *tuningDefaults,
		RunDB:            *runDB,
		ReportPath:       *report,
		LogLevel:         *logLevel,
	}, nil
}
