package journalpg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

func (p PostgresRepo) CreateRun(ctx context.Context, run *model.Run) error {
	query := `INSERT INTO runs (run_uid, input_dir, output_dir, error_dir, max_width, max_height, spacing, watermark, watermark_scale, opacity, started_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	return p.DB.QueryRowContext(ctx, query,
		run.UID,
		run.Batch.InputDir,
		run.Batch.OutputDir,
		run.Batch.ErrorDir,
		run.Batch.MaxWidth,
		run.Batch.MaxHeight,
		run.Batch.Spacing,
		run.Watermark.Path,
		run.Watermark.Scale,
		run.Watermark.Opacity,
		run.StartedAt).Err()
}

// FinishRun stores the final counters; a run that was never created gives ErrRunNotFound.
func (p PostgresRepo) FinishRun(ctx context.Context, run *model.Run) error {
	query := `UPDATE runs SET total = $1, succeeded = $2, failed = $3, finished_at = $4
	WHERE run_uid = $5
	RETURNING run_uid`

	var uid string
	err := p.DB.QueryRowContext(ctx, query, run.Total, run.Succeeded, run.Failed, run.FinishedAt, run.UID).Scan(&uid)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return model.ErrRunNotFound // 404
		default:
			return err // 500
		}
	}
	return nil
}

func (p PostgresRepo) AddFile(ctx context.Context, ev *model.FileEvent) error {
	query := `INSERT INTO run_files (run_uid, file_name, status, stage, err_msg, routed, resized, output_key, width, height, processed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	at := time.Now().UTC()
	if ev.At != nil {
		at = *ev.At
	}

	return p.DB.QueryRowContext(ctx, query,
		ev.RunID,
		ev.File,
		ev.Status,
		ev.Stage,
		ev.ErrMsg,
		ev.Routed,
		ev.Resized,
		ev.OutputKey,
		ev.Width,
		ev.Height,
		at).Err()
}

func (p PostgresRepo) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query := `SELECT run_uid, input_dir, output_dir, error_dir, max_width, max_height, spacing, watermark, watermark_scale, opacity, total, succeeded, failed, started_at, finished_at
	FROM runs
	WHERE run_uid = $1`

	run, err := scanRun(p.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrRunNotFound
		default:
			return nil, err // 500
		}
	}
	return run, nil
}

// ListRuns expects req.Sort and req.Order already normalized to column/direction.
func (p PostgresRepo) ListRuns(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
	query := fmt.Sprintf(`SELECT run_uid, input_dir, output_dir, error_dir, max_width, max_height, spacing, watermark, watermark_scale, opacity, total, succeeded, failed, started_at, finished_at
	FROM runs
	ORDER BY %s %s
	LIMIT $1
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	runs := make([]model.Run, 0, req.Limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return runs, nil
}

func (p PostgresRepo) ListFiles(ctx context.Context, runID string) ([]model.FileEvent, error) {
	query := `SELECT run_uid, file_name, status, stage, err_msg, routed, resized, output_key, width, height, processed_at
	FROM run_files
	WHERE run_uid = $1
	ORDER BY id ASC`

	rows, err := p.DB.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	files := []model.FileEvent{}
	for rows.Next() {
		var ev model.FileEvent
		if err := rows.Scan(&ev.RunID,
			&ev.File,
			&ev.Status,
			&ev.Stage,
			&ev.ErrMsg,
			&ev.Routed,
			&ev.Resized,
			&ev.OutputKey,
			&ev.Width,
			&ev.Height,
			&ev.At); err != nil {
			return nil, err
		}
		files = append(files, ev)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return files, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var run model.Run
	if err := row.Scan(&run.UID,
		&run.Batch.InputDir,
		&run.Batch.OutputDir,
		&run.Batch.ErrorDir,
		&run.Batch.MaxWidth,
		&run.Batch.MaxHeight,
		&run.Batch.Spacing,
		&run.Watermark.Path,
		&run.Watermark.Scale,
		&run.Watermark.Opacity,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&run.StartedAt,
		&run.FinishedAt); err != nil {
		return nil, err
	}
	return &run, nil
}
