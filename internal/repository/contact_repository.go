package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// ContactRepository persists merchant contacts.
type ContactRepository interface {
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Contact, error)
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, id string, patch domain.ContactPatch) (*domain.Contact, error)
	// DemoteOthers clears is_primary on every contact of the merchant except exceptID.
	DemoteOthers(ctx context.Context, merchantID, exceptID string) (int64, error)
	// DemoteAll clears is_primary on every contact of the merchant.
	DemoteAll(ctx context.Context, merchantID string) (int64, error)
	// LockMerchant holds the merchant's primary-contact lock until the
	// enclosing transaction ends.
	LockMerchant(ctx context.Context, merchantID string) error
	// WithinTx runs fn against a repository bound to one transaction.
	WithinTx(ctx context.Context, fn func(ContactRepository) error) error
}

const contactColumns = `id, merchant_id, name, email, phone, role_label, is_primary, created_at, updated_at`

type contactRepository struct {
	pool *pgxpool.Pool
	q    querier
}

// NewContactRepository creates repository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool, q: pool}
}

func (r *contactRepository) WithinTx(ctx context.Context, fn func(ContactRepository) error) error {
	if r.pool == nil {
		// already inside a transaction
		return fn(r)
	}
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(&contactRepository{q: tx})
	})
}

func (r *contactRepository) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE merchant_id=$1 ORDER BY is_primary DESC, name ASC`
	rows, err := r.q.Query(ctx, query, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contact)
	}
	return result, rows.Err()
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1`
	return scanContact(r.q.QueryRow(ctx, query, id))
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (merchant_id, name, email, phone, role_label, is_primary)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		contact.MerchantID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.RoleLabel,
		contact.IsPrimary,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (r *contactRepository) Update(ctx context.Context, id string, patch domain.ContactPatch) (*domain.Contact, error) {
	fields := map[string]any{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.Phone != nil {
		fields["phone"] = *patch.Phone
	}
	if patch.RoleLabel != nil {
		fields["role_label"] = *patch.RoleLabel
	}
	if patch.IsPrimary != nil {
		fields["is_primary"] = *patch.IsPrimary
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := []string{"updated_at=NOW()"}
	args := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		args = append(args, fields[column])
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE contacts SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), contactColumns)
	return scanContact(r.q.QueryRow(ctx, query, args...))
}

func (r *contactRepository) DemoteOthers(ctx context.Context, merchantID, exceptID string) (int64, error) {
	const query = `
        UPDATE contacts SET is_primary=FALSE, updated_at=NOW()
        WHERE merchant_id=$1 AND id<>$2 AND is_primary`
	cmd, err := r.q.Exec(ctx, query, merchantID, exceptID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *contactRepository) DemoteAll(ctx context.Context, merchantID string) (int64, error) {
	const query = `
        UPDATE contacts SET is_primary=FALSE, updated_at=NOW()
        WHERE merchant_id=$1 AND is_primary`
	cmd, err := r.q.Exec(ctx, query, merchantID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *contactRepository) LockMerchant(ctx context.Context, merchantID string) error {
	if r.pool != nil {
		return errors.New("contact repository: LockMerchant outside a transaction")
	}
	_, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('contacts:' || $1))`, merchantID)
	return err
}

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	if err := row.Scan(
		&c.ID,
		&c.MerchantID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.RoleLabel,
		&c.IsPrimary,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
