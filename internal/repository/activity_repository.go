package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// ActivityFilter captures activity listing parameters.
type ActivityFilter struct {
	MerchantID   *string
	CreatedBy    *string
	Type         *domain.ActivityType
	OccurredFrom *time.Time
	OccurredTo   *time.Time
	Order        Order
	Limit        int
	Offset       int
}

// ActivityRepository reads the merchant interaction log.
type ActivityRepository interface {
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
	ListByMerchant(ctx context.Context, merchantID string, order Order) ([]domain.Activity, error)
}

const activityColumns = `id, merchant_id, created_by, type, notes, occurred_at, created_at`

var activityOrderFields = map[string]string{
	"occurred_at": "occurred_at",
	"created_at":  "created_at",
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) ListByMerchant(ctx context.Context, merchantID string, order Order) ([]domain.Activity, error) {
	return r.List(ctx, ActivityFilter{MerchantID: &merchantID, Order: order, Limit: maxPageSize})
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error) {
	w := &whereBuilder{}
	if filter.MerchantID != nil {
		w.eq("merchant_id", *filter.MerchantID)
	}
	if filter.CreatedBy != nil {
		w.eq("created_by", *filter.CreatedBy)
	}
	if filter.Type != nil {
		w.eq("type", string(*filter.Type))
	}
	if filter.OccurredFrom != nil {
		w.cmp("occurred_at", ">=", *filter.OccurredFrom)
	}
	if filter.OccurredTo != nil {
		w.cmp("occurred_at", "<=", *filter.OccurredTo)
	}
	where, args := w.build()
	limit, offset := page(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM activities WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		activityColumns, where, filter.Order.clause(activityOrderFields, "occurred_at"), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.MerchantID, &a.CreatedBy, &a.Type, &a.Notes, &a.OccurredAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
