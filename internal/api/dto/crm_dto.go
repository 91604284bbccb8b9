package dto

import (
	"time"

	"github.com/spec-kit/merchant-crm/internal/domain"
)

// CreateContactRequest payload.
type CreateContactRequest struct {
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	RoleLabel *string `json:"role_label"`
	IsPrimary bool    `json:"is_primary"`
}

// UpdateContactRequest is a partial contact edit.
type UpdateContactRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	RoleLabel *string `json:"role_label"`
	IsPrimary *bool   `json:"is_primary"`
}

// SetPrimaryRequest payload for POST /contacts/:id/primary.
type SetPrimaryRequest struct {
	MerchantID string `json:"merchant_id"`
}

// ContactResponse is a contact row.
type ContactResponse struct {
	ID         string    `json:"id"`
	MerchantID string    `json:"merchant_id"`
	Name       string    `json:"name"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	RoleLabel  *string   `json:"role_label"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewContactResponse maps a contact.
func NewContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ID:         c.ID,
		MerchantID: c.MerchantID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		RoleLabel:  c.RoleLabel,
		IsPrimary:  c.IsPrimary,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// TaskResponse is an enriched task.
type TaskResponse struct {
	ID           string            `json:"id"`
	MerchantID   string            `json:"merchant_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Status       domain.TaskStatus `json:"status"`
	DueDate      *time.Time        `json:"due_date"`
	AssignedTo   *string           `json:"assigned_to"`
	CreatedAt    time.Time         `json:"created_at"`
	AssignedUser *ProfileSummary   `json:"assigned_user"`
	Merchant     *MerchantSummary  `json:"merchant"`
}

// NewTaskResponse maps an enriched task.
func NewTaskResponse(t *domain.EnrichedTask) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		MerchantID:   t.MerchantID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		DueDate:      t.DueDate,
		AssignedTo:   t.AssignedTo,
		CreatedAt:    t.CreatedAt,
		AssignedUser: NewProfileSummary(t.AssignedUser),
		Merchant:     NewMerchantSummary(t.Merchant),
	}
}

// ActivityResponse is an enriched activity.
type ActivityResponse struct {
	ID         string              `json:"id"`
	MerchantID string              `json:"merchant_id"`
	Type       domain.ActivityType `json:"type"`
	Notes      string              `json:"notes"`
	OccurredAt time.Time           `json:"occurred_at"`
	Author     *ProfileSummary     `json:"author"`
	Merchant   *MerchantSummary    `json:"merchant"`
}

// NewActivityResponse maps an enriched activity.
func NewActivityResponse(a *domain.EnrichedActivity) ActivityResponse {
	return ActivityResponse{
		ID:         a.ID,
		MerchantID: a.MerchantID,
		Type:       a.Type,
		Notes:      a.Notes,
		OccurredAt: a.OccurredAt,
		Author:     NewProfileSummary(a.Author),
		Merchant:   NewMerchantSummary(a.Merchant),
	}
}
