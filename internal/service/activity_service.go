package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/cache"
	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/enrich"
	"github.com/spec-kit/merchant-crm/internal/repository"
)

// ActivityService serves the enriched merchant interaction log.
type ActivityService struct {
	activities repository.ActivityRepository
	enricher   *enrich.Enricher
	cache      cache.ViewCache
	logger     *zap.Logger
}

// NewActivityService builds the service.
func NewActivityService(activities repository.ActivityRepository, enricher *enrich.Enricher, viewCache cache.ViewCache, logger *zap.Logger) *ActivityService {
	if viewCache == nil {
		viewCache = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{activities: activities, enricher: enricher, cache: viewCache, logger: logger}
}

// ListActivities returns enriched activities matching filter.
func (s *ActivityService) ListActivities(ctx context.Context, filter repository.ActivityFilter) ([]domain.EnrichedActivity, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeActivities, cache.Key("list", filter), func() ([]domain.EnrichedActivity, bool, error) {
		rows, err := s.activities.List(ctx, filter)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Activities(ctx, rows)
		return enriched, complete, nil
	})
}

// ListMerchantActivities returns a merchant's enriched activities.
func (s *ActivityService) ListMerchantActivities(ctx context.Context, merchantID string, order repository.Order) ([]domain.EnrichedActivity, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeActivities, cache.Key("merchant", merchantID, order), func() ([]domain.EnrichedActivity, bool, error) {
		rows, err := s.activities.ListByMerchant(ctx, merchantID, order)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Activities(ctx, rows)
		return enriched, complete, nil
	})
}
