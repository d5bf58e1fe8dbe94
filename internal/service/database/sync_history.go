package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// SyncHistoryRepository keeps an audit trail of sync runs.
type SyncHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSyncHistoryRepository(postgres *PostgresService, logger *zap.Logger) *SyncHistoryRepository {
	return &SyncHistoryRepository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

type datasetRow struct {
	Dataset string
	Success bool
	Count   int
	Error   sql.NullString
}

// datasetRows flattens report results in dataset order.
func datasetRows(report domain.SyncReport) []datasetRow {
	rows := make([]datasetRow, 0, len(report.Results))
	for ds, res := range report.Results {
		rows = append(rows, datasetRow{
			Dataset: string(ds),
			Success: res.Success,
			Count:   res.Count,
			Error:   sql.NullString{String: res.Error, Valid: res.Error != ""},
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Dataset < rows[j].Dataset })
	return rows
}

// RecordRun stores report and its per-dataset results in one transaction.
func (r *SyncHistoryRepository) RecordRun(ctx context.Context, report domain.SyncReport) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin sync run tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_runs (id, started_at, finished_at, failed)
		VALUES ($1, $2, $3, $4)
	`, report.ID, report.StartedAt, report.FinishedAt, report.Failed())
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sync_run_datasets (run_id, dataset, success, count, error)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare dataset insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range datasetRows(report) {
		if _, err := stmt.ExecContext(ctx, report.ID, row.Dataset, row.Success, row.Count, row.Error); err != nil {
			return fmt.Errorf("failed to insert dataset %s: %w", row.Dataset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync run: %w", err)
	}

	r.logger.Debug("Sync run recorded",
		zap.String("run_id", report.ID.String()),
		zap.Int("datasets", len(report.Results)))
	return nil
}

// LatestRuns returns up to limit runs, newest first.
func (r *SyncHistoryRepository) LatestRuns(ctx context.Context, limit int) ([]domain.SyncReport, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at
		FROM sync_runs
		ORDER BY finished_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var (
		reports []domain.SyncReport
		ids     []string
		index   = make(map[uuid.UUID]int)
	)
	for rows.Next() {
		var report domain.SyncReport
		if err := rows.Scan(&report.ID, &report.StartedAt, &report.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		report.Results = make(map[domain.Dataset]domain.DatasetResult)
		index[report.ID] = len(reports)
		ids = append(ids, report.ID.String())
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync runs: %w", err)
	}
	if len(reports) == 0 {
		return reports, nil
	}

	dsRows, err := r.db.QueryContext(ctx, `
		SELECT run_id, dataset, success, count, error
		FROM sync_run_datasets
		WHERE run_id = ANY($1::uuid[])
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query sync run datasets: %w", err)
	}
	defer dsRows.Close()

	for dsRows.Next() {
		var (
			runID uuid.UUID
			row   datasetRow
		)
		if err := dsRows.Scan(&runID, &row.Dataset, &row.Success, &row.Count, &row.Error); err != nil {
			return nil, fmt.Errorf("failed to scan sync run dataset: %w", err)
		}
		i, ok := index[runID]
		if !ok {
			continue
		}
		reports[i].Results[domain.Dataset(row.Dataset)] = domain.DatasetResult{
			Success: row.Success,
			Count:   row.Count,
			Error:   row.Error.String,
		}
	}
	if err := dsRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync run datasets: %w", err)
	}

	return reports, nil
}
