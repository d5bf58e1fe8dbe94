package reps

import (
	"context"
	"net/http"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CommitteeStore is the committee part of the dataset store.
type CommitteeStore interface {
	Committees(ctx context.Context) (domain.CommitteeMap, bool, error)
	PutCommittees(ctx context.Context, m domain.CommitteeMap) error
}

// CommitteeScraper rebuilds the map from the Parliament's member pages.
type CommitteeScraper interface {
	Fetch(ctx context.Context) (domain.CommitteeMap, error)
}

// CommitteeGuard is the self-healing read of the committee map. Concurrent
// EU lookups that find the map stale share a single rebuild.
type CommitteeGuard struct {
	store      CommitteeStore
	scraper    CommitteeScraper
	logger     *zap.Logger
	minEntries int
	group      singleflight.Group
}

func NewCommitteeGuard(store CommitteeStore, scraper CommitteeScraper, logger *zap.Logger) *CommitteeGuard {
	return &CommitteeGuard{
		store:      store,
		scraper:    scraper,
		logger:     logger,
		minEntries: constants.LookupLimits.CommitteeMinEntries,
	}
}

func (g *CommitteeGuard) EnsureCommittees(ctx context.Context) (domain.CommitteeMap, error) {
	cached, found, err := g.store.Committees(ctx)
	if err != nil {
		g.logger.Warn("Failed to read committee map, rebuilding", zap.Error(err))
	}
	if found && len(cached) >= g.minEntries {
		return cached, nil
	}

	g.logger.Info("Committee map missing or too small, rebuilding",
		zap.Bool("found", found),
		zap.Int("entries", len(cached)))

	// The rebuild is shared, so it must outlive the caller that started it.
	v, err, shared := g.group.Do(constants.CacheKeys.EUCommitteeMembers, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.Timeouts.Sync)
		defer cancel()
		return g.rebuild(rctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		g.logger.Debug("Joined in-flight committee rebuild")
	}
	return v.(domain.CommitteeMap), nil
}

func (g *CommitteeGuard) rebuild(ctx context.Context) (domain.CommitteeMap, error) {
	m, err := g.scraper.Fetch(ctx)
	if err != nil {
		return nil, errors.NewUpstreamError("Could not load EU committee membership", "europarl", 0, err)
	}
	if len(m) == 0 {
		return nil, errors.NewUpstreamError("Could not load EU committee membership", "europarl", http.StatusBadGateway, nil)
	}
	if err := g.store.PutCommittees(ctx, m); err != nil {
		g.logger.Warn("Failed to persist rebuilt committee map", zap.Error(err))
	}
	g.logger.Info("Committee map rebuilt", zap.Int("entries", len(m)))
	return m, nil
}
