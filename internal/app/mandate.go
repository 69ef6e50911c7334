/**
 * @description
 * Mandate authorization lifecycle: create, activate, cancel. A mandate is the
 * standing authorization every collection must reference; it starts Pending,
 * settles nothing until Active, and Cancelled is terminal.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: Entity ids.
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
)

// MandateService creates and transitions mandates.
type MandateService struct {
	mandates  store.MandateStore
	customers store.CustomerStore
	accounts  store.AccountStore
}

// NewMandateService creates a new mandate service.
func NewMandateService(mandates store.MandateStore, customers store.CustomerStore, accounts store.AccountStore) *MandateService {
	return &MandateService{
		mandates:  mandates,
		customers: customers,
		accounts:  accounts,
	}
}

// Get returns a mandate by id.
func (s *MandateService) Get(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	m, err := s.mandates.GetMandate(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMandateNotFound) {
			return nil, ErrMandateNotFound
		}
		return nil, err
	}
	return m, nil
}

// Create validates the debtor, payer account and settlement account and
// produces a Pending mandate.
func (s *MandateService) Create(ctx context.Context, debtorCustomerID, payerAccountID, settlementAccountID uuid.UUID) (*domain.Mandate, error) {
	if debtorCustomerID == uuid.Nil {
		return nil, ErrDebtorCustomerIDRequired
	}
	if payerAccountID == uuid.Nil {
		return nil, ErrPayerAccountIDRequired
	}

	if _, err := s.customers.GetCustomer(ctx, debtorCustomerID); err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			return nil, ErrDebtorNotFound
		}
		return nil, fmt.Errorf("load debtor customer: %w", err)
	}

	payer, err := s.accounts.GetAccount(ctx, payerAccountID)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return nil, fmt.Errorf("load payer account: %w", err)
	}
	if payer == nil || !payer.Active {
		return nil, ErrPayerAccountNotFound
	}

	if settlementAccountID == uuid.Nil {
		return nil, ErrSettlementAccountIDRequired
	}
	settlement, err := s.accounts.GetAccount(ctx, settlementAccountID)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return nil, fmt.Errorf("load settlement account: %w", err)
	}
	if settlement == nil || !settlement.Active {
		return nil, ErrSettlementAccountNotFound
	}

	mandate := &domain.Mandate{
		ID:                  uuid.New(),
		DebtorCustomerID:    debtorCustomerID,
		PayerAccountID:      payerAccountID,
		SettlementAccountID: settlementAccountID,
		Status:              domain.MandatePending,
		CreatedUTC:          time.Now().UTC(),
	}

	if err := s.mandates.CreateMandate(ctx, mandate); err != nil {
		return nil, fmt.Errorf("persist mandate: %w", err)
	}
	return mandate, nil
}

// Activate moves a mandate to Active and stamps the activation time.
// Re-activating an already-Active mandate is permitted and simply restamps;
// a Cancelled mandate can never come back.
func (s *MandateService) Activate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	mandate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if mandate.Status == domain.MandateCancelled {
		return nil, ErrMandateCancelled
	}

	now := time.Now().UTC()
	mandate.Status = domain.MandateActive
	mandate.ActivatedUTC = &now

	if err := s.mandates.UpdateMandate(ctx, mandate); err != nil {
		return nil, fmt.Errorf("persist mandate activation: %w", err)
	}
	return mandate, nil
}

// Cancel unconditionally moves a mandate to Cancelled and stamps the
// cancellation time, regardless of prior state.
func (s *MandateService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	mandate, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	mandate.Status = domain.MandateCancelled
	mandate.CancelledUTC = &now

	if err := s.mandates.UpdateMandate(ctx, mandate); err != nil {
		return nil, fmt.Errorf("persist mandate cancellation: %w", err)
	}
	return mandate, nil
}
