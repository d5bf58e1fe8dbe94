package reps

import (
	"context"
	"strings"
	"time"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/directory"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/geo"
	"github.com/kapu/repfinder-go/internal/metrics"
	"github.com/kapu/repfinder-go/pkg/errors"
	"go.uber.org/zap"
)

// Service is the request-facing lookup: resolve the locator to an
// administrative unit, then ask that country's directory adapter for the
// legislators. It never returns an empty list without an error.
type Service struct {
	resolvers  geo.Registry
	adapters   directory.Registry
	committees *CommitteeGuard
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewService(resolvers geo.Registry, adapters directory.Registry, committees *CommitteeGuard, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		resolvers:  resolvers,
		adapters:   adapters,
		committees: committees,
		metrics:    m,
		logger:     logger,
	}
}

func (s *Service) Find(ctx context.Context, loc domain.Locator) ([]domain.Representative, error) {
	start := time.Now()
	reps, err := s.find(ctx, loc)

	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(errors.CodeOf(err))
	}
	s.metrics.ObserveLookup(string(loc.Country), outcome, time.Since(start))

	if err != nil {
		fields := []zap.Field{
			zap.String("country", string(loc.Country)),
			zap.String("code", errors.CodeOf(err)),
			zap.Error(err),
		}
		if errors.StatusOf(err) >= 500 {
			s.logger.Warn("Representative lookup failed", fields...)
		} else {
			s.logger.Debug("Representative lookup rejected", fields...)
		}
		return nil, err
	}
	return reps, nil
}

func (s *Service) find(ctx context.Context, loc domain.Locator) ([]domain.Representative, error) {
	adapter, ok := s.adapters[loc.Country]
	if !ok {
		return nil, errors.NewValidationError("Unsupported country", errors.ReasonUnsupportedCountry, "country", string(loc.Country))
	}

	timeout := constants.Timeouts.Lookup
	if loc.Country == domain.CountryDE {
		timeout = constants.Timeouts.LookupSlow
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	unit, err := s.resolvers.Resolve(ctx, loc)
	if err != nil {
		return nil, err
	}

	found, err := adapter.Lookup(ctx, unit)
	if err != nil {
		return nil, err
	}

	reps := make([]domain.Representative, 0, len(found))
	for _, r := range found {
		if !r.Valid() {
			s.logger.Debug("Dropping incomplete representative record",
				zap.String("country", string(loc.Country)),
				zap.String("name", r.Name))
			continue
		}
		reps = append(reps, r)
	}

	if len(reps) == 0 {
		return nil, errors.NewNotFoundError("No representatives found for this location", errors.ReasonNoMatchFound, map[string]any{
			"country": string(loc.Country),
		})
	}
	return reps, nil
}

// EnsureCommittees returns a usable committee map, rebuilding it when the
// cached one is missing or implausibly small.
func (s *Service) EnsureCommittees(ctx context.Context) (domain.CommitteeMap, error) {
	return s.committees.EnsureCommittees(ctx)
}
