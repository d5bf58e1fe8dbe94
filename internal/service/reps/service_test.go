package reps

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kapu/repfinder-go/internal/directory"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/geo"
	"github.com/kapu/repfinder-go/internal/metrics"
	"github.com/kapu/repfinder-go/internal/service/dataset"
	"github.com/kapu/repfinder-go/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type adapterFunc func(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error)

func (f adapterFunc) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	return f(ctx, unit)
}

type scraperFunc func(ctx context.Context) (domain.CommitteeMap, error)

func (f scraperFunc) Fetch(ctx context.Context) (domain.CommitteeMap, error) {
	return f(ctx)
}

func newTestService(adapters directory.Registry, m *metrics.Metrics) *Service {
	return NewService(geo.NewStaticResolvers(), adapters, nil, m, zap.NewNop())
}

func TestFindResolvesThenLooksUp(t *testing.T) {
	var gotUnit domain.AdminUnit
	svc := newTestService(directory.Registry{
		domain.CountryFR: adapterFunc(func(_ context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
			gotUnit = unit
			return []domain.Representative{{Name: "Deputy", District: "Corse-du-Sud (1)", Country: domain.CountryFR}}, nil
		}),
	}, nil)

	reps, err := svc.Find(context.Background(), domain.Locator{Country: domain.CountryFR, Postal: "20090"})
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "2A", gotUnit.Code)
}

func TestFindNeverReturnsSilentEmpty(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := newTestService(directory.Registry{
		domain.CountryAU: adapterFunc(func(context.Context, domain.AdminUnit) ([]domain.Representative, error) {
			return []domain.Representative{{Name: "", District: "ACT", Country: domain.CountryAU}}, nil
		}),
	}, m)

	_, err := svc.Find(context.Background(), domain.Locator{Country: domain.CountryAU, Postal: "2600"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("AU", "not_found")))
}

func TestFindRejectsInvalidInputBeforeAdapter(t *testing.T) {
	called := false
	svc := newTestService(directory.Registry{
		domain.CountryCA: adapterFunc(func(context.Context, domain.AdminUnit) ([]domain.Representative, error) {
			called = true
			return nil, nil
		}),
	}, nil)

	_, err := svc.Find(context.Background(), domain.Locator{Country: domain.CountryCA, Postal: "1234567"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errors.StatusOf(err))
	assert.Equal(t, errors.ReasonInvalidFormat, errors.ReasonOf(err))
	assert.False(t, called)
}

func TestFindUnsupportedCountry(t *testing.T) {
	svc := newTestService(directory.Registry{}, nil)
	_, err := svc.Find(context.Background(), domain.Locator{Country: "JP", Postal: "100-0001"})
	require.Error(t, err)
	assert.Equal(t, errors.ReasonUnsupportedCountry, errors.ReasonOf(err))
}

func TestFindPropagatesNotCached(t *testing.T) {
	store := dataset.NewStore(dataset.NewMemoryKV(), zap.NewNop())
	svc := newTestService(directory.Registry{
		domain.CountrySE: directory.NewSwedenAdapter(store),
	}, nil)

	_, err := svc.Find(context.Background(), domain.Locator{Country: domain.CountrySE, Postal: "11453"})
	require.Error(t, err)
	assert.True(t, errors.IsNotCached(err))
	assert.Equal(t, http.StatusServiceUnavailable, errors.StatusOf(err))
	assert.Positive(t, errors.RetryAfterOf(err))
}

func bigCommitteeMap(n int) domain.CommitteeMap {
	m := domain.CommitteeMap{}
	for i := 0; i < n; i++ {
		m.Add(fmt.Sprint(i), domain.CommitteeAFET)
	}
	return m
}

func TestCommitteeGuardUsesFreshCache(t *testing.T) {
	ctx := context.Background()
	store := dataset.NewStore(dataset.NewMemoryKV(), zap.NewNop())
	require.NoError(t, store.PutCommittees(ctx, bigCommitteeMap(60)))

	guard := NewCommitteeGuard(store, scraperFunc(func(context.Context) (domain.CommitteeMap, error) {
		t.Fatal("scraper must not run when cache is fresh")
		return nil, nil
	}), zap.NewNop())

	m, err := guard.EnsureCommittees(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 60)
}

func TestCommitteeGuardRebuildsSmallMapOnce(t *testing.T) {
	ctx := context.Background()
	store := dataset.NewStore(dataset.NewMemoryKV(), zap.NewNop())
	require.NoError(t, store.PutCommittees(ctx, bigCommitteeMap(3)))

	var calls atomic.Int32
	release := make(chan struct{})
	guard := NewCommitteeGuard(store, scraperFunc(func(context.Context) (domain.CommitteeMap, error) {
		calls.Add(1)
		<-release
		return bigCommitteeMap(80), nil
	}), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := guard.EnsureCommittees(ctx)
			assert.NoError(t, err)
			assert.Len(t, m, 80)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	persisted, found, err := store.Committees(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, persisted, 80)
}

func TestCommitteeGuardEmptyRebuildIsUpstreamError(t *testing.T) {
	store := dataset.NewStore(dataset.NewMemoryKV(), zap.NewNop())
	guard := NewCommitteeGuard(store, scraperFunc(func(context.Context) (domain.CommitteeMap, error) {
		return domain.CommitteeMap{}, nil
	}), zap.NewNop())

	_, err := guard.EnsureCommittees(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeUpstream, errors.CodeOf(err))

	_, found, err := store.Committees(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCommitteeGuardRebuildOutlivesCaller(t *testing.T) {
	store := dataset.NewStore(dataset.NewMemoryKV(), zap.NewNop())
	guard := NewCommitteeGuard(store, scraperFunc(func(ctx context.Context) (domain.CommitteeMap, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return bigCommitteeMap(60), nil
	}), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := guard.EnsureCommittees(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 60)

	persisted, found, err := store.Committees(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, persisted, 60)
}
