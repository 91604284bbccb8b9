package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// TicketFilter captures optional ticket predicates.
type TicketFilter struct {
	MerchantID  *string
	AssignedTo  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Category    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Order       Order
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error)
	ApplyStatus(ctx context.Context, id string, patch domain.StatusPatch) (*domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListByMerchant(ctx context.Context, merchantID string, order Order) ([]domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Search(ctx context.Context, query string, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int64, error)
}

const ticketColumns = `id, subject, description, status, priority, category, merchant_id, assigned_to,
               created_by, resolved_at, created_at, updated_at`

var ticketOrderFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"priority":   "priority",
	"status":     "status",
	"subject":    "subject",
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, status, priority, category, merchant_id, assigned_to, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.MerchantID,
		ticket.AssignedTo,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	fields := map[string]any{}
	if patch.Subject != nil {
		fields["subject"] = *patch.Subject
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.ClearAssignee {
		fields["assigned_to"] = nil
	} else if patch.AssignedTo != nil {
		fields["assigned_to"] = *patch.AssignedTo
	}
	updatedAt := patch.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	fields["updated_at"] = updatedAt
	return r.updateFields(ctx, id, fields)
}

func (r *ticketRepository) ApplyStatus(ctx context.Context, id string, patch domain.StatusPatch) (*domain.Ticket, error) {
	return r.updateFields(ctx, id, patch.Fields())
}

// updateFields writes exactly the given columns and returns the stored row.
func (r *ticketRepository) updateFields(ctx context.Context, id string, fields map[string]any) (*domain.Ticket, error) {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		args = append(args, fields[column])
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)
	return scanTicket(r.pool.QueryRow(ctx, query, args...))
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) ListByMerchant(ctx context.Context, merchantID string, order Order) ([]domain.Ticket, error) {
	return r.List(ctx, TicketFilter{MerchantID: &merchantID, Order: order, Limit: maxPageSize})
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := ticketWhere(filter)
	limit, offset := page(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		ticketColumns, where, filter.Order.clause(ticketOrderFields, "updated_at"), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Search runs the search_tickets database function. Only the first status and
// priority of the filter are forwarded.
func (r *ticketRepository) Search(ctx context.Context, term string, filter TicketFilter) ([]domain.Ticket, error) {
	var status, priority *string
	if len(filter.Statuses) > 0 {
		s := string(filter.Statuses[0])
		status = &s
	}
	if len(filter.Priorities) > 0 {
		p := string(filter.Priorities[0])
		priority = &p
	}
	limit, offset := page(filter.Limit, filter.Offset)
	query := `SELECT ` + ticketColumns + ` FROM search_tickets($1, $2, $3, $4, $5, $6, $7)`

	rows, err := r.pool.Query(ctx, query,
		strings.TrimSpace(term), status, priority, filter.AssignedTo, filter.Category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int64, error) {
	where, args := ticketWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&total)
	return total, err
}

func ticketWhere(filter TicketFilter) (string, []any) {
	w := &whereBuilder{}
	if filter.MerchantID != nil {
		w.eq("merchant_id", *filter.MerchantID)
	}
	if filter.AssignedTo != nil {
		w.eq("assigned_to", *filter.AssignedTo)
	}
	if filter.Category != nil {
		w.eq("category", *filter.Category)
	}
	if len(filter.Statuses) > 0 {
		values := make([]any, len(filter.Statuses))
		for i, s := range filter.Statuses {
			values[i] = string(s)
		}
		w.in("status", values)
	}
	if len(filter.Priorities) > 0 {
		values := make([]any, len(filter.Priorities))
		for i, p := range filter.Priorities {
			values[i] = string(p)
		}
		w.in("priority", values)
	}
	if filter.CreatedFrom != nil {
		w.cmp("created_at", ">=", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		w.cmp("created_at", "<=", *filter.CreatedTo)
	}
	return w.build()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.MerchantID,
		&ticket.AssignedTo,
		&ticket.CreatedBy,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
