/**
 * @description
 * Collection lifecycle: create, approve, reject, cancel. These transitions
 * are independent of batch timing; the batch orchestrator in bsrun.go drives
 * the notification and settlement transitions.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: Entity ids.
 * - github.com/shopspring/decimal: Exact decimal amounts.
 * - internal/domain, internal/store: Domain models and data access.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/corebank/directdebit-service/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionService creates and transitions single collections.
type CollectionService struct {
	collections store.CollectionStore
	mandates    store.MandateStore
}

// NewCollectionService creates a new collection service.
func NewCollectionService(collections store.CollectionStore, mandates store.MandateStore) *CollectionService {
	return &CollectionService{
		collections: collections,
		mandates:    mandates,
	}
}

// Get returns a collection by id.
func (s *CollectionService) Get(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, err := s.collections.GetCollection(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrCollectionNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create produces a Created collection under an Active mandate. The due date
// is compared at UTC date granularity and must not be before today.
func (s *CollectionService) Create(ctx context.Context, mandateID uuid.UUID, dueDate time.Time, amount decimal.Decimal, memo string) (*domain.Collection, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	mandate, err := s.mandates.GetMandate(ctx, mandateID)
	if err != nil {
		if errors.Is(err, store.ErrMandateNotFound) {
			return nil, ErrMandateNotFound
		}
		return nil, fmt.Errorf("load mandate: %w", err)
	}
	if mandate.Status != domain.MandateActive {
		return nil, ErrMandateNotActive
	}

	today := dateOnly(time.Now().UTC())
	due := dateOnly(dueDate)
	if due.Before(today) {
		return nil, ErrDueDateInPast
	}

	collection := &domain.Collection{
		ID:         uuid.New(),
		MandateID:  mandateID,
		DueDate:    due,
		Amount:     amount,
		Memo:       memo,
		Status:     domain.CollectionCreated,
		CreatedUTC: time.Now().UTC(),
	}

	if err := s.collections.CreateCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("persist collection: %w", err)
	}
	return collection, nil
}

// Approve marks a collection Approved and stamps the decision time. Only the
// terminal states block the transition; approving from Notified, Failed or
// even Rejected is permitted.
func (s *CollectionService) Approve(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	return s.decide(ctx, id, domain.CollectionApproved)
}

// Reject marks a collection Rejected and stamps the decision time, under the
// same permissive rules as Approve.
func (s *CollectionService) Reject(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	return s.decide(ctx, id, domain.CollectionRejected)
}

func (s *CollectionService) decide(ctx context.Context, id uuid.UUID, status domain.CollectionStatus) (*domain.Collection, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CollectionCancelled || c.Status == domain.CollectionCollected {
		return nil, ErrInvalidStatus
	}

	now := time.Now().UTC()
	c.Status = status
	c.DecisionUTC = &now

	if err := s.collections.UpdateCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("persist collection decision: %w", err)
	}
	return c, nil
}

// Cancel marks a collection Cancelled. A Collected collection can no longer
// be cancelled; any other prior state, including Cancelled itself, is
// overwritten.
func (s *CollectionService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CollectionCollected {
		return nil, ErrAlreadyCollected
	}

	c.Status = domain.CollectionCancelled

	if err := s.collections.UpdateCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("persist collection cancellation: %w", err)
	}
	return c, nil
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
