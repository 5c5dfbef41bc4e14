// Package rundb is an optional sqlite ledger of solrad runs: one row per
// invocation recording its cloud parameters and timing, plus one row per
// processed block, so a long batch of runs over a LiDAR archive can be
// audited afterwards. Grounded on internal/db/db.go's PRAGMA/migration
// bootstrap and internal/db/migrate.go's golang-migrate wiring, trimmed to
// this package's single schema (no legacy-schema detection/baselining —
// solrad always starts from migration 0001, so that machinery has nothing
// to adapt to).
package rundb

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hblyp/pcsrt-go/internal/solrad/cloud"
	"github.com/hblyp/pcsrt-go/internal/solrad/errs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a sqlite run ledger.
type DB struct {
	*sql.DB
}

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Open opens (creating if needed) the sqlite file at path, applies the
// teacher's pragma set, and runs migrations up to the latest version.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.IO("open run db", err)
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, errs.IO("open run db", fmt.Errorf("apply pragma %q: %w", p, err))
		}
	}

	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrateUp() error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return errs.IO("migrate run db", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return errs.IO("migrate run db", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return errs.IO("migrate run db", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return errs.IO("migrate run db", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errs.IO("migrate run db", err)
	}
	return nil
}

// Run is one recorded solrad invocation.
type Run struct {
	ID          string
	StartedAt   time.Time
	InputPath   string
	OutputPath  string
	CloudParams cloud.Params
}

// BeginRun inserts a placeholder run row with a fresh UUID before the cloud
// parameters are known (they are only computed once the pipeline starts
// reading the input cloud), and returns it. Callers call FinishRun once the
// pipeline completes (or fails) to fill in cloud parameters and counters.
func (db *DB) BeginRun(inputPath, outputPath string, startedAt time.Time) (Run, error) {
	run := Run{
		ID:         uuid.NewString(),
		StartedAt:  startedAt,
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
	_, err := db.Exec(`
		INSERT INTO run (run_id, started_at_unix_nanos, input_path, output_path,
			voxel_size, point_count, average_points_in_voxel,
			min_x, max_x, min_y, max_y, min_z, max_z)
		VALUES (?, ?, ?, ?, 0, 0, 0, 0, 0, 0, 0, 0, 0)`,
		run.ID, startedAt.UnixNano(), inputPath, outputPath,
	)
	if err != nil {
		return Run{}, errs.IO("begin run", err)
	}
	return run, nil
}

// FinishRun records completion time, the run's cloud parameters, the epoch
// count, normal-estimation failure count and a final error message (empty
// on success). params is zero-valued if the pipeline failed before cloud
// parameters could be computed.
func (db *DB) FinishRun(runID string, finishedAt time.Time, params cloud.Params, epochCount, failedNormalCount int, runErr error) error {
	errText := ""
	if runErr != nil {
		errText = runErr.Error()
	}
	_, err := db.Exec(`
		UPDATE run SET finished_at_unix_nanos = ?, epoch_count = ?, failed_normal_count = ?, error = ?,
			voxel_size = ?, point_count = ?, average_points_in_voxel = ?,
			min_x = ?, max_x = ?, min_y = ?, max_y = ?, min_z = ?, max_z = ?
		WHERE run_id = ?`,
		finishedAt.UnixNano(), epochCount, failedNormalCount, errText,
		params.VoxelSize, params.PointCount, params.AverageInVoxel,
		params.Extent.MinX, params.Extent.MaxX, params.Extent.MinY, params.Extent.MaxY,
		params.Extent.MinZ, params.Extent.MaxZ,
		runID,
	)
	if err != nil {
		return errs.IO("finish run", err)
	}
	return nil
}

// RecordBlock logs one processed block's point/voxel counts.
func (db *DB) RecordBlock(runID string, blockNumber, pointCount, voxelCount int) error {
	_, err := db.Exec(`
		INSERT INTO run_block (run_id, block_number, point_count, voxel_count) VALUES (?, ?, ?, ?)`,
		runID, blockNumber, pointCount, voxelCount,
	)
	if err != nil {
		return errs.IO("record block", err)
	}
	return nil
}
