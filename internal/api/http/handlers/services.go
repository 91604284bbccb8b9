package handlers

import (
	"context"

	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/repository"
	"github.com/spec-kit/merchant-crm/internal/service"
)

// TicketService is what the ticket and board handlers need.
type TicketService interface {
	ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.EnrichedTicket, error)
	ListMerchantTickets(ctx context.Context, merchantID string, order repository.Order) ([]domain.EnrichedTicket, error)
	GetTicket(ctx context.Context, id string) (*domain.EnrichedTicket, error)
	SearchTickets(ctx context.Context, term string, filter repository.TicketFilter) ([]domain.EnrichedTicket, error)
	CountTickets(ctx context.Context, filter repository.TicketFilter) (int64, error)
	CreateTicket(ctx context.Context, input service.TicketCreateInput) (*domain.EnrichedTicket, error)
	UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch) (*domain.EnrichedTicket, error)
	TransitionStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.EnrichedTicket, error)
	BoardTickets(ctx context.Context) ([]domain.EnrichedTicket, error)
}

// ContactService is what the contact handlers need.
type ContactService interface {
	ListContacts(ctx context.Context, merchantID string) ([]domain.Contact, error)
	CreateContact(ctx context.Context, input service.ContactCreateInput) (*domain.Contact, error)
	UpdateContact(ctx context.Context, id string, patch domain.ContactPatch) (*domain.Contact, error)
	SetPrimary(ctx context.Context, contactID, merchantID string) (*domain.Contact, error)
}

// TaskService lists enriched tasks.
type TaskService interface {
	ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.EnrichedTask, error)
	ListMerchantTasks(ctx context.Context, merchantID string, order repository.Order) ([]domain.EnrichedTask, error)
}

// ActivityService lists enriched activities.
type ActivityService interface {
	ListActivities(ctx context.Context, filter repository.ActivityFilter) ([]domain.EnrichedActivity, error)
	ListMerchantActivities(ctx context.Context, merchantID string, order repository.Order) ([]domain.EnrichedActivity, error)
}

// AuthService performs profile login.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Profile, string, domain.Token, error)
}
