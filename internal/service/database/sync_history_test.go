package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "reps"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=reps sslmode=disable", cfg.DSN())
}

func TestDatasetRowsAreOrderedAndNullable(t *testing.T) {
	rows := datasetRows(domain.SyncReport{Results: map[domain.Dataset]domain.DatasetResult{
		domain.DatasetSweden: {Success: true, Count: 349},
		domain.DatasetFrance: {Success: false, Error: "origin returned 503"},
	}})

	require.Len(t, rows, 2)
	assert.Equal(t, "france", rows[0].Dataset)
	assert.True(t, rows[0].Error.Valid)
	assert.Equal(t, "sweden", rows[1].Dataset)
	assert.False(t, rows[1].Error.Valid)
	assert.Equal(t, 349, rows[1].Count)
}

// Runs against a live database only when POSTGRES_TEST_HOST is set.
func TestSyncHistoryRoundTrip(t *testing.T) {
	host := os.Getenv("POSTGRES_TEST_HOST")
	if host == "" {
		t.Skip("POSTGRES_TEST_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("POSTGRES_TEST_PORT"))
	if port == 0 {
		port = 5432
	}

	pg, err := NewPostgresService(PostgresConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("POSTGRES_TEST_USER"),
		Password: os.Getenv("POSTGRES_TEST_PASSWORD"),
		Database: os.Getenv("POSTGRES_TEST_DB"),
	}, zap.NewNop())
	require.NoError(t, err)
	defer pg.Close()

	ctx := context.Background()
	require.NoError(t, pg.EnsureSchema(ctx))

	repo := NewSyncHistoryRepository(pg, zap.NewNop())
	now := time.Now().UTC().Truncate(time.Millisecond)
	report := domain.SyncReport{
		ID:         uuid.New(),
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
		Results: map[domain.Dataset]domain.DatasetResult{
			domain.DatasetFrance: {Success: false, Error: "timeout"},
			domain.DatasetSweden: {Success: true, Count: 349},
		},
	}
	require.NoError(t, repo.RecordRun(ctx, report))

	runs, err := repo.LatestRuns(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	var found *domain.SyncReport
	for i := range runs {
		if runs[i].ID == report.ID {
			found = &runs[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, report.Results, found.Results)
	assert.Equal(t, 1, found.Failed())
}
