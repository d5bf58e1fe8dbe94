package syncjob

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/metrics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Fetcher downloads one representative dataset from its origin.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.CachedRep, error)
}

// FetcherFunc adapts a method value such as OpenAustralia.FetchHouse.
type FetcherFunc func(ctx context.Context) ([]domain.CachedRep, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]domain.CachedRep, error) {
	return f(ctx)
}

// CommitteeFetcher rebuilds the committee membership map.
type CommitteeFetcher interface {
	Fetch(ctx context.Context) (domain.CommitteeMap, error)
}

// Writer is the write side of the dataset store.
type Writer interface {
	PutReps(ctx context.Context, ds domain.Dataset, reps []domain.CachedRep) error
	PutCommittees(ctx context.Context, m domain.CommitteeMap) error
	MarkSynced(ctx context.Context, at time.Time) error
}

// HistoryRecorder persists finished runs. Optional.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, report domain.SyncReport) error
}

// Job refreshes the cached datasets. Each dataset is fetched and written
// independently, so one failing origin never blocks the others.
type Job struct {
	store      Writer
	fetchers   map[domain.Dataset]Fetcher
	committees CommitteeFetcher
	history    HistoryRecorder
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Job)

func WithHistory(h HistoryRecorder) Option {
	return func(j *Job) { j.history = h }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(j *Job) { j.metrics = m }
}

func NewJob(store Writer, fetchers map[domain.Dataset]Fetcher, committees CommitteeFetcher, logger *zap.Logger, opts ...Option) *Job {
	j := &Job{
		store:      store,
		fetchers:   fetchers,
		committees: committees,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run syncs the given datasets, or all of them when none are named. The
// last-sync timestamp is written even when some datasets fail.
func (j *Job) Run(ctx context.Context, datasets ...domain.Dataset) domain.SyncReport {
	if len(datasets) == 0 {
		datasets = domain.AllDatasets
	}

	ctx, cancel := context.WithTimeout(ctx, constants.Timeouts.SyncRunCap)
	defer cancel()

	report := domain.SyncReport{
		ID:        uuid.New(),
		StartedAt: j.now().UTC(),
		Results:   make(map[domain.Dataset]domain.DatasetResult, len(datasets)),
	}

	j.logger.Info("Sync started",
		zap.String("run_id", report.ID.String()),
		zap.Int("datasets", len(datasets)))

	results := make([]domain.DatasetResult, len(datasets))
	p := pool.New()
	for idx, ds := range datasets {
		idx, ds := idx, ds
		p.Go(func() {
			results[idx] = j.syncOne(ctx, ds)
		})
	}
	p.Wait()

	for idx, ds := range datasets {
		report.Results[ds] = results[idx]
	}

	report.FinishedAt = j.now().UTC()
	if err := j.store.MarkSynced(ctx, report.FinishedAt); err != nil {
		j.logger.Error("Failed to write last sync timestamp", zap.Error(err))
	}

	if j.history != nil {
		if err := j.history.RecordRun(ctx, report); err != nil {
			j.logger.Warn("Failed to record sync run", zap.String("run_id", report.ID.String()), zap.Error(err))
		}
	}

	j.logger.Info("Sync finished",
		zap.String("run_id", report.ID.String()),
		zap.Int("failed", report.Failed()),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)))

	return report
}

func (j *Job) syncOne(ctx context.Context, ds domain.Dataset) domain.DatasetResult {
	timeout := constants.Timeouts.Sync
	if ds == domain.DatasetEUMeps {
		timeout = constants.Timeouts.SyncXML
	}
	if ds == domain.DatasetAustraliaSenators {
		timeout = constants.Timeouts.SyncState * 2
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	count, err := j.fetchAndStore(dctx, ds)
	j.metrics.ObserveSync(string(ds), err == nil, count)
	if err != nil {
		j.logger.Warn("Dataset sync failed", zap.String("dataset", string(ds)), zap.Error(err))
		return domain.DatasetResult{Success: false, Error: err.Error()}
	}

	j.logger.Info("Dataset synced", zap.String("dataset", string(ds)), zap.Int("count", count))
	return domain.DatasetResult{Success: true, Count: count}
}

// fetchAndStore refuses to overwrite a cache entry with an empty result.
func (j *Job) fetchAndStore(ctx context.Context, ds domain.Dataset) (int, error) {
	if ds == domain.DatasetEUCommitteeMembers {
		if j.committees == nil {
			return 0, fmt.Errorf("no committee source configured")
		}
		m, err := j.committees.Fetch(ctx)
		if err != nil {
			return 0, err
		}
		if len(m) == 0 {
			return 0, fmt.Errorf("no committee members found")
		}
		if err := j.store.PutCommittees(ctx, m); err != nil {
			return 0, err
		}
		return len(m), nil
	}

	f, ok := j.fetchers[ds]
	if !ok {
		return 0, fmt.Errorf("no fetcher configured for %s", ds)
	}
	reps, err := f.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if len(reps) == 0 {
		return 0, fmt.Errorf("%s origin returned no records", ds)
	}
	if err := j.store.PutReps(ctx, ds, reps); err != nil {
		return 0, err
	}
	return len(reps), nil
}
