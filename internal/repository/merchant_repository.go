package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// MerchantFilter captures merchant listing parameters.
type MerchantFilter struct {
	Status *domain.MerchantStatus
	Order  Order
	Limit  int
	Offset int
}

// MerchantRepository provides merchant persistence.
type MerchantRepository interface {
	FetchByIDs(ctx context.Context, ids []string) ([]domain.Merchant, error)
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)
	List(ctx context.Context, filter MerchantFilter) ([]domain.Merchant, error)
}

const merchantColumns = `id, display_name, legal_name, status, industry, website, owner_id, created_at, updated_at`

var merchantOrderFields = map[string]string{
	"display_name": "display_name",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

type merchantRepository struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository creates repository.
func NewMerchantRepository(pool *pgxpool.Pool) MerchantRepository {
	return &merchantRepository{pool: pool}
}

func (r *merchantRepository) FetchByIDs(ctx context.Context, ids []string) ([]domain.Merchant, error) {
	if len(ids) == 0 {
		return []domain.Merchant{}, nil
	}
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id = ANY($1::uuid[])`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMerchants(rows)
}

func (r *merchantRepository) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id=$1`
	return scanMerchant(r.pool.QueryRow(ctx, query, id))
}

func (r *merchantRepository) List(ctx context.Context, filter MerchantFilter) ([]domain.Merchant, error) {
	w := &whereBuilder{}
	if filter.Status != nil {
		w.eq("status", string(*filter.Status))
	}
	where, args := w.build()
	limit, offset := page(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM merchants WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		merchantColumns, where, filter.Order.clause(merchantOrderFields, "updated_at"), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMerchants(rows)
}

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var m domain.Merchant
	if err := row.Scan(
		&m.ID,
		&m.DisplayName,
		&m.LegalName,
		&m.Status,
		&m.Industry,
		&m.Website,
		&m.OwnerID,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMerchants(rows pgx.Rows) ([]domain.Merchant, error) {
	result := []domain.Merchant{}
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}
