package app

import (
	"context"
	"errors"
	"testing"

	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/corebank/directdebit-service/internal/store"
	"github.com/google/uuid"
)

type mandateRepoStub struct {
	mandates  map[uuid.UUID]*domain.Mandate
	customers map[uuid.UUID]*domain.Customer
	accounts  map[uuid.UUID]*domain.Account

	updateCalled int
}

func (s *mandateRepoStub) GetMandate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	m, ok := s.mandates[id]
	if !ok {
		return nil, store.ErrMandateNotFound
	}
	return m, nil
}

func (s *mandateRepoStub) CreateMandate(ctx context.Context, m *domain.Mandate) error {
	s.mandates[m.ID] = m
	return nil
}

func (s *mandateRepoStub) UpdateMandate(ctx context.Context, m *domain.Mandate) error {
	s.updateCalled++
	s.mandates[m.ID] = m
	return nil
}

func (s *mandateRepoStub) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrCustomerNotFound
	}
	return c, nil
}

func (s *mandateRepoStub) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	s.customers[c.ID] = c
	return nil
}

func (s *mandateRepoStub) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return a, nil
}

func (s *mandateRepoStub) CreateAccount(ctx context.Context, a *domain.Account) error {
	s.accounts[a.ID] = a
	return nil
}

func newMandateFixture() (*mandateRepoStub, *MandateService, *domain.Customer, *domain.Account, *domain.Account) {
	debtor := &domain.Customer{ID: uuid.New(), Name: "Ada", Tier: domain.TierStandard}
	payer := &domain.Account{ID: uuid.New(), CustomerID: debtor.ID, AccountNumber: "0001", Active: true}
	settlement := &domain.Account{ID: uuid.New(), CustomerID: uuid.New(), AccountNumber: "0002", Active: true}

	repo := &mandateRepoStub{
		mandates:  map[uuid.UUID]*domain.Mandate{},
		customers: map[uuid.UUID]*domain.Customer{debtor.ID: debtor},
		accounts:  map[uuid.UUID]*domain.Account{payer.ID: payer, settlement.ID: settlement},
	}
	svc := NewMandateService(repo, repo, repo)
	return repo, svc, debtor, payer, settlement
}

func TestMandateCreate_ProducesPendingMandate(t *testing.T) {
	repo, svc, debtor, payer, settlement := newMandateFixture()

	mandate, err := svc.Create(context.Background(), debtor.ID, payer.ID, settlement.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if mandate.Status != domain.MandatePending {
		t.Fatalf("expected Pending status, got %q", mandate.Status)
	}
	if mandate.ActivatedUTC != nil || mandate.CancelledUTC != nil {
		t.Fatal("new mandate must carry no lifecycle timestamps")
	}
	if _, ok := repo.mandates[mandate.ID]; !ok {
		t.Fatal("expected mandate to be persisted")
	}
}

func TestMandateCreate_ValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		call    func(svc *MandateService, debtor *domain.Customer, payer, settlement *domain.Account) error
		wantErr error
	}{
		{
			name: "missing debtor id",
			call: func(svc *MandateService, debtor *domain.Customer, payer, settlement *domain.Account) error {
				_, err := svc.Create(context.Background(), uuid.Nil, payer.ID, settlement.ID)
				return err
			},
			wantErr: ErrDebtorCustomerIDRequired,
		},
		{
			name: "missing payer id",
			call: func(svc *MandateService, debtor *domain.Customer, payer, settlement *domain.Account) error {
				_, err := svc.Create(context.Background(), debtor.ID, uuid.Nil, settlement.ID)
				return err
			},
			wantErr: ErrPayerAccountIDRequired,
		},
		{
			name: "unknown debtor",
			call: func(svc *MandateService, debtor *domain.Customer, payer, settlement *domain.Account) error {
				_, err := svc.Create(context.Background(), uuid.New(), payer.ID, settlement.ID)
				return err
			},
			wantErr: ErrDebtorNotFound,
		},
		{
			name: "unknown payer account",
			call: func(svc *MandateService, debtor *domain.Customer, payer, settlement *domain.Account) error {
				_, err := svc.Create(context.Background(), debtor.ID, uuid.New(), settlement.ID)
				return err
			},
			wantErr: ErrPayerAccountNotFound,
		},
		{
			name: "missing settlement id",
			call: func(svc *MandateService, debtor *domain.Customer, payer, settlement *domain.Account) error {
				_, err := svc.Create(context.Background(), debtor.ID, payer.ID, uuid.Nil)
				return err
			},
			wantErr: ErrSettlementAccountIDRequired,
		},
		{
			name: "unknown settlement account",
			call: func(svc *MandateService, debtor *domain.Customer, payer, settlement *domain.Account) error {
				_, err := svc.Create(context.Background(), debtor.ID, payer.ID, uuid.New())
				return err
			},
			wantErr: ErrSettlementAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc, debtor, payer, settlement := newMandateFixture()
			err := tt.call(svc, debtor, payer, settlement)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMandateCreate_InactivePayerAccountRejected(t *testing.T) {
	_, svc, debtor, payer, settlement := newMandateFixture()
	payer.Active = false

	_, err := svc.Create(context.Background(), debtor.ID, payer.ID, settlement.ID)
	if !errors.Is(err, ErrPayerAccountNotFound) {
		t.Fatalf("expected PayerAccountNotFound, got %v", err)
	}
}

func TestMandateActivate_StampsActivationTime(t *testing.T) {
	repo, svc, debtor, payer, settlement := newMandateFixture()
	mandate, err := svc.Create(context.Background(), debtor.ID, payer.ID, settlement.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	activated, err := svc.Activate(context.Background(), mandate.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if activated.Status != domain.MandateActive {
		t.Fatalf("expected Active, got %q", activated.Status)
	}
	if activated.ActivatedUTC == nil {
		t.Fatal("expected activation timestamp")
	}
	if repo.updateCalled != 1 {
		t.Fatalf("expected one update, got %d", repo.updateCalled)
	}
}

func TestMandateActivate_RepeatActivationRestamps(t *testing.T) {
	_, svc, debtor, payer, settlement := newMandateFixture()
	mandate, _ := svc.Create(context.Background(), debtor.ID, payer.ID, settlement.ID)

	first, err := svc.Activate(context.Background(), mandate.ID)
	if err != nil {
		t.Fatalf("first activation failed: %v", err)
	}
	firstStamp := *first.ActivatedUTC

	second, err := svc.Activate(context.Background(), mandate.ID)
	if err != nil {
		t.Fatalf("repeat activation must be permitted, got %v", err)
	}
	if second.Status != domain.MandateActive {
		t.Fatalf("expected Active, got %q", second.Status)
	}
	if second.ActivatedUTC.Before(firstStamp) {
		t.Fatal("repeat activation must restamp, not rewind")
	}
}

func TestMandateActivate_CancelledMandateStaysCancelled(t *testing.T) {
	repo, svc, debtor, payer, settlement := newMandateFixture()
	mandate, _ := svc.Create(context.Background(), debtor.ID, payer.ID, settlement.ID)
	if _, err := svc.Cancel(context.Background(), mandate.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	updatesBefore := repo.updateCalled

	_, err := svc.Activate(context.Background(), mandate.ID)
	if !errors.Is(err, ErrMandateCancelled) {
		t.Fatalf("expected MandateCancelled, got %v", err)
	}
	if repo.mandates[mandate.ID].Status != domain.MandateCancelled {
		t.Fatal("cancelled mandate must stay cancelled")
	}
	if repo.updateCalled != updatesBefore {
		t.Fatal("rejected activation must not persist")
	}
}

func TestMandateCancel_IsUnconditional(t *testing.T) {
	_, svc, debtor, payer, settlement := newMandateFixture()

	for _, activateFirst := range []bool{false, true} {
		mandate, _ := svc.Create(context.Background(), debtor.ID, payer.ID, settlement.ID)
		if activateFirst {
			if _, err := svc.Activate(context.Background(), mandate.ID); err != nil {
				t.Fatalf("activate failed: %v", err)
			}
		}

		cancelled, err := svc.Cancel(context.Background(), mandate.ID)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if cancelled.Status != domain.MandateCancelled {
			t.Fatalf("expected Cancelled, got %q", cancelled.Status)
		}
		if cancelled.CancelledUTC == nil {
			t.Fatal("expected cancellation timestamp")
		}
	}
}

func TestMandateTransitions_UnknownMandate(t *testing.T) {
	_, svc, _, _, _ := newMandateFixture()

	if _, err := svc.Activate(context.Background(), uuid.New()); !errors.Is(err, ErrMandateNotFound) {
		t.Fatalf("expected MandateNotFound on activate, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), uuid.New()); !errors.Is(err, ErrMandateNotFound) {
		t.Fatalf("expected MandateNotFound on cancel, got %v", err)
	}
}
