package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/cache"
	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/enrich"
	"github.com/spec-kit/merchant-crm/internal/repository"
)

// TaskService serves enriched follow-up tasks.
type TaskService struct {
	tasks    repository.TaskRepository
	enricher *enrich.Enricher
	cache    cache.ViewCache
	logger   *zap.Logger
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository, enricher *enrich.Enricher, viewCache cache.ViewCache, logger *zap.Logger) *TaskService {
	if viewCache == nil {
		viewCache = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{tasks: tasks, enricher: enricher, cache: viewCache, logger: logger}
}

// ListTasks returns enriched tasks matching filter.
func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.EnrichedTask, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeTasks, cache.Key("list", filter), func() ([]domain.EnrichedTask, bool, error) {
		rows, err := s.tasks.List(ctx, filter)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Tasks(ctx, rows)
		return enriched, complete, nil
	})
}

// ListMerchantTasks returns a merchant's enriched tasks.
func (s *TaskService) ListMerchantTasks(ctx context.Context, merchantID string, order repository.Order) ([]domain.EnrichedTask, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeTasks, cache.Key("merchant", merchantID, order), func() ([]domain.EnrichedTask, bool, error) {
		rows, err := s.tasks.ListByMerchant(ctx, merchantID, order)
		if err != nil {
			return nil, false, err
		}
		enriched, complete := s.enricher.Tasks(ctx, rows)
		return enriched, complete, nil
	})
}
