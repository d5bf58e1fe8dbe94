package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore() (*Store, *MemoryKV) {
	kv := NewMemoryKV()
	return NewStore(kv, zap.NewNop()), kv
}

func TestRepsNotCached(t *testing.T) {
	store, _ := newStore()

	_, err := store.Reps(context.Background(), domain.DatasetFrance)
	require.Error(t, err)
	assert.True(t, errors.IsNotCached(err))
	assert.Equal(t, 503, errors.StatusOf(err))
	assert.Equal(t, 5*time.Minute, errors.RetryAfterOf(err))
}

func TestRepsRoundTrip(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	in := []domain.CachedRep{{Name: "Anna Andersson", District: "Stockholms kommun", Valkrets: "Stockholms kommun"}}
	require.NoError(t, store.PutReps(ctx, domain.DatasetSweden, in))

	out, err := store.Reps(ctx, domain.DatasetSweden)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEmptyDatasetIsStillCached(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	require.NoError(t, store.PutReps(ctx, domain.DatasetAustraliaHouse, nil))

	out, err := store.Reps(ctx, domain.DatasetAustraliaHouse)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDatasetExpires(t *testing.T) {
	store, kv := newStore()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }

	require.NoError(t, store.PutReps(ctx, domain.DatasetFrance, []domain.CachedRep{{Name: "x", District: "y"}}))

	now = now.Add(59 * 24 * time.Hour)
	_, err := store.Reps(ctx, domain.DatasetFrance)
	require.NoError(t, err)

	now = now.Add(2 * 24 * time.Hour)
	_, err = store.Reps(ctx, domain.DatasetFrance)
	assert.True(t, errors.IsNotCached(err))
}

func TestCommittees(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	_, found, err := store.Committees(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	m := domain.CommitteeMap{}
	m.Add("197490", domain.CommitteeAFET)
	m.Add("197490", domain.CommitteeDROI)
	require.NoError(t, store.PutCommittees(ctx, m))

	got, found, err := store.Committees(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "AFET, DROI", got.Label("197490"))
}

func TestStatus(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.PutReps(ctx, domain.DatasetFrance, []domain.CachedRep{{Name: "a"}, {Name: "b"}}))
	require.NoError(t, store.MarkSynced(ctx, at))

	status, err := store.Status(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.LastSync)
	assert.True(t, at.Equal(*status.LastSync))
	assert.Equal(t, domain.DatasetStatus{Cached: true, Count: 2}, status.Datasets[domain.DatasetFrance])
	assert.Equal(t, domain.DatasetStatus{}, status.Datasets[domain.DatasetSweden])
	assert.Len(t, status.Datasets, len(domain.AllDatasets))
}
