package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/cache"
	"github.com/spec-kit/merchant-crm/internal/domain"
	"github.com/spec-kit/merchant-crm/internal/events"
	"github.com/spec-kit/merchant-crm/internal/repository"
	apperrors "github.com/spec-kit/merchant-crm/pkg/util"
)

// ContactService keeps at most one primary contact per merchant. Every write
// that sets is_primary demotes the merchant's other contacts first, then writes
// the target, inside one transaction.
//
// Concurrent writes for one merchant serialize on the merchant's lock, taken
// before anything is demoted.
type ContactService struct {
	contacts   repository.ContactRepository
	cache      cache.ViewCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ContactDependencies wires ContactService.
type ContactDependencies struct {
	ContactRepo repository.ContactRepository
	Cache       cache.ViewCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// ContactCreateInput describes a new contact.
type ContactCreateInput struct {
	MerchantID string
	Name       string
	Email      *string
	Phone      *string
	RoleLabel  *string
	IsPrimary  bool
}

// NewContactService builds the service.
func NewContactService(deps ContactDependencies) *ContactService {
	s := &ContactService{
		contacts:   deps.ContactRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ListContacts returns a merchant's contacts, primary first.
func (s *ContactService) ListContacts(ctx context.Context, merchantID string) ([]domain.Contact, error) {
	return readThrough(ctx, s.cache, s.logger, cache.ScopeContacts, cache.Key("merchant", merchantID), func() ([]domain.Contact, bool, error) {
		contacts, err := s.contacts.ListByMerchant(ctx, merchantID)
		return contacts, err == nil, err
	})
}

// SetPrimary makes contactID the merchant's only primary contact.
func (s *ContactService) SetPrimary(ctx context.Context, contactID, merchantID string) (*domain.Contact, error) {
	var (
		updated *domain.Contact
		demoted int64
	)
	err := s.contacts.WithinTx(ctx, func(tx repository.ContactRepository) error {
		target, err := tx.GetByID(ctx, contactID)
		if err != nil {
			return err
		}
		if target.MerchantID != merchantID {
			return apperrors.NewValidationError("contact does not belong to merchant", map[string]any{
				"contact_id":  contactID,
				"merchant_id": merchantID,
			})
		}
		updated, demoted, err = promote(ctx, tx, target.MerchantID, contactID, domain.ContactPatch{})
		return err
	})
	if err != nil {
		s.logger.Warn("set primary contact failed", zap.String("contact_id", contactID), zap.Error(err))
		return nil, err
	}

	s.afterWrite(ctx, events.Event{
		Type:       events.EventContactPrimaryChanged,
		EntityID:   updated.ID,
		MerchantID: updated.MerchantID,
		Payload:    events.ContactPrimaryChangedPayload{Demoted: demoted},
	})
	return updated, nil
}

// CreateContact inserts a contact. A primary contact demotes every existing
// contact of the merchant before the insert.
func (s *ContactService) CreateContact(ctx context.Context, input ContactCreateInput) (*domain.Contact, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if strings.TrimSpace(input.MerchantID) == "" {
		return nil, apperrors.NewValidationError("merchant_id is required", map[string]any{"field": "merchant_id"})
	}
	contact := &domain.Contact{
		MerchantID: input.MerchantID,
		Name:       name,
		Email:      input.Email,
		Phone:      input.Phone,
		RoleLabel:  input.RoleLabel,
		IsPrimary:  input.IsPrimary,
	}

	err := s.contacts.WithinTx(ctx, func(tx repository.ContactRepository) error {
		if contact.IsPrimary {
			if err := tx.LockMerchant(ctx, contact.MerchantID); err != nil {
				return err
			}
			if _, err := tx.DemoteAll(ctx, contact.MerchantID); err != nil {
				return err
			}
		}
		return tx.Create(ctx, contact)
	})
	if err != nil {
		s.logger.Warn("create contact failed", zap.String("merchant_id", input.MerchantID), zap.Error(err))
		return nil, err
	}

	s.afterWrite(ctx, events.Event{
		Type:       events.EventContactCreated,
		EntityID:   contact.ID,
		MerchantID: contact.MerchantID,
		Payload:    events.ContactCreatedPayload{Name: contact.Name, IsPrimary: contact.IsPrimary},
	})
	return contact, nil
}

// UpdateContact applies a partial edit. Setting is_primary to true goes through
// the same demote-then-write sequence as SetPrimary.
func (s *ContactService) UpdateContact(ctx context.Context, id string, patch domain.ContactPatch) (*domain.Contact, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
	}
	if patch.IsPrimary == nil || !*patch.IsPrimary {
		updated, err := s.contacts.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		invalidate(ctx, s.cache, s.logger, cache.ScopeContacts)
		return updated, nil
	}

	var (
		updated *domain.Contact
		demoted int64
	)
	err := s.contacts.WithinTx(ctx, func(tx repository.ContactRepository) error {
		target, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated, demoted, err = promote(ctx, tx, target.MerchantID, id, patch)
		return err
	})
	if err != nil {
		s.logger.Warn("update contact failed", zap.String("contact_id", id), zap.Error(err))
		return nil, err
	}

	s.afterWrite(ctx, events.Event{
		Type:       events.EventContactPrimaryChanged,
		EntityID:   updated.ID,
		MerchantID: updated.MerchantID,
		Payload:    events.ContactPrimaryChangedPayload{Demoted: demoted},
	})
	return updated, nil
}

// promote locks the merchant, demotes its other contacts, then writes patch
// with is_primary set on the target.
func promote(ctx context.Context, tx repository.ContactRepository, merchantID, contactID string, patch domain.ContactPatch) (*domain.Contact, int64, error) {
	if err := tx.LockMerchant(ctx, merchantID); err != nil {
		return nil, 0, err
	}
	demoted, err := tx.DemoteOthers(ctx, merchantID, contactID)
	if err != nil {
		return nil, 0, err
	}
	primary := true
	patch.IsPrimary = &primary
	updated, err := tx.Update(ctx, contactID, patch)
	if err != nil {
		return nil, 0, err
	}
	return updated, demoted, nil
}

func (s *ContactService) afterWrite(ctx context.Context, event events.Event) {
	invalidate(ctx, s.cache, s.logger, cache.ScopeContacts)
	publish(ctx, s.dispatcher, s.logger, s.now, event)
}
