package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// TaskFilter captures task listing parameters.
type TaskFilter struct {
	MerchantID *string
	AssignedTo *string
	Status     *domain.TaskStatus
	Order      Order
	Limit      int
	Offset     int
}

// TaskRepository reads merchant follow-up tasks.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	ListByMerchant(ctx context.Context, merchantID string, order Order) ([]domain.Task, error)
}

const taskColumns = `id, merchant_id, assigned_to, title, description, status, due_date, created_by, created_at, updated_at`

var taskOrderFields = map[string]string{
	"due_date":   "due_date",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) ListByMerchant(ctx context.Context, merchantID string, order Order) ([]domain.Task, error) {
	return r.List(ctx, TaskFilter{MerchantID: &merchantID, Order: order, Limit: maxPageSize})
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	w := &whereBuilder{}
	if filter.MerchantID != nil {
		w.eq("merchant_id", *filter.MerchantID)
	}
	if filter.AssignedTo != nil {
		w.eq("assigned_to", *filter.AssignedTo)
	}
	if filter.Status != nil {
		w.eq("status", string(*filter.Status))
	}
	where, args := w.build()
	limit, offset := page(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		taskColumns, where, filter.Order.clause(taskOrderFields, "updated_at"), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *task)
	}
	return result, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID,
		&t.MerchantID,
		&t.AssignedTo,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
