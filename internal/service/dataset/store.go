package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/pkg/errors"
	"go.uber.org/zap"
)

var datasetKeys = map[domain.Dataset]string{
	domain.DatasetFrance:             constants.CacheKeys.FranceDeputies,
	domain.DatasetSweden:             constants.CacheKeys.SwedenMPs,
	domain.DatasetAustraliaHouse:     constants.CacheKeys.AustraliaHouse,
	domain.DatasetAustraliaSenators:  constants.CacheKeys.AustraliaSenators,
	domain.DatasetEUMeps:             constants.CacheKeys.EUMeps,
	domain.DatasetEUCommitteeMembers: constants.CacheKeys.EUCommitteeMembers,
}

// Store is the typed view over the cached datasets. Every write carries the
// dataset retention TTL.
type Store struct {
	kv         KV
	logger     *zap.Logger
	ttl        time.Duration
	retryAfter time.Duration
}

func NewStore(kv KV, logger *zap.Logger) *Store {
	return &Store{
		kv:         kv,
		logger:     logger,
		ttl:        constants.CacheTTL.Dataset,
		retryAfter: constants.CacheTTL.RetryAfter,
	}
}

// KeyFor returns the cache key of ds.
func KeyFor(ds domain.Dataset) (string, error) {
	key, ok := datasetKeys[ds]
	if !ok {
		return "", fmt.Errorf("unknown dataset %q", ds)
	}
	return key, nil
}

// Reps returns the cached records of a representative dataset, or a
// NotCachedError when it was never synced or has expired.
func (s *Store) Reps(ctx context.Context, ds domain.Dataset) ([]domain.CachedRep, error) {
	key, err := KeyFor(ds)
	if err != nil {
		return nil, err
	}

	var reps []domain.CachedRep
	found, err := s.kv.Get(ctx, key, &reps)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Debug("Dataset not cached", zap.String("dataset", string(ds)))
		return nil, errors.NewNotCachedError(string(ds), s.retryAfter)
	}
	return reps, nil
}

func (s *Store) PutReps(ctx context.Context, ds domain.Dataset, reps []domain.CachedRep) error {
	key, err := KeyFor(ds)
	if err != nil {
		return err
	}
	if reps == nil {
		reps = []domain.CachedRep{}
	}
	return s.kv.Set(ctx, key, reps, s.ttl)
}

// Committees returns the cached MEP committee map. found is false when the
// map was never built; callers decide whether that is fatal.
func (s *Store) Committees(ctx context.Context) (domain.CommitteeMap, bool, error) {
	m := domain.CommitteeMap{}
	found, err := s.kv.Get(ctx, constants.CacheKeys.EUCommitteeMembers, &m)
	if err != nil || !found {
		return domain.CommitteeMap{}, false, err
	}
	return m, true, nil
}

func (s *Store) PutCommittees(ctx context.Context, m domain.CommitteeMap) error {
	if m == nil {
		m = domain.CommitteeMap{}
	}
	return s.kv.Set(ctx, constants.CacheKeys.EUCommitteeMembers, m, s.ttl)
}

// LastSync returns the time of the last completed sync job, or nil.
func (s *Store) LastSync(ctx context.Context) (*time.Time, error) {
	var at time.Time
	found, err := s.kv.Get(ctx, constants.CacheKeys.LastSync, &at)
	if err != nil || !found {
		return nil, err
	}
	return &at, nil
}

func (s *Store) MarkSynced(ctx context.Context, at time.Time) error {
	return s.kv.Set(ctx, constants.CacheKeys.LastSync, at.UTC(), s.ttl)
}

// Status reports the last sync time and whether each dataset is cached.
func (s *Store) Status(ctx context.Context) (domain.SyncStatus, error) {
	status := domain.SyncStatus{Datasets: make(map[domain.Dataset]domain.DatasetStatus, len(domain.AllDatasets))}

	last, err := s.LastSync(ctx)
	if err != nil {
		return status, err
	}
	status.LastSync = last

	for _, ds := range domain.AllDatasets {
		var count int
		var cached bool
		if ds == domain.DatasetEUCommitteeMembers {
			m, found, err := s.Committees(ctx)
			if err != nil {
				return status, err
			}
			cached, count = found, len(m)
		} else {
			reps, err := s.Reps(ctx, ds)
			switch {
			case errors.IsNotCached(err):
			case err != nil:
				return status, err
			default:
				cached, count = true, len(reps)
			}
		}
		status.Datasets[ds] = domain.DatasetStatus{Cached: cached, Count: count}
	}
	return status, nil
}

// Ping reports whether the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.kv.Exists(ctx, constants.CacheKeys.LastSync)
	return err
}
