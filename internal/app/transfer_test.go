package app

import (
	"context"
	"errors"
	"testing"

	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/corebank/directdebit-service/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type transferLedgerStub struct {
	accounts  map[uuid.UUID]*domain.Account
	customers map[uuid.UUID]*domain.Customer

	applyCalled int
	appliedRec  *domain.Transaction
	applyErr    error
}

func (s *transferLedgerStub) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return a, nil
}

func (s *transferLedgerStub) CreateAccount(ctx context.Context, a *domain.Account) error {
	s.accounts[a.ID] = a
	return nil
}

func (s *transferLedgerStub) ApplyTransfer(ctx context.Context, from, to *domain.Account, rec *domain.Transaction) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.applyCalled++
	s.appliedRec = rec
	return nil
}

func (s *transferLedgerStub) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, store.ErrCustomerNotFound
	}
	return c, nil
}

func (s *transferLedgerStub) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	s.customers[c.ID] = c
	return nil
}

type recordingPublisher struct {
	routingKeys []string
	bodies      []interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.routingKeys = append(p.routingKeys, routingKey)
	p.bodies = append(p.bodies, body)
	return nil
}

func (p *recordingPublisher) Close() {}

func newTransferFixture(tier domain.CustomerTier, fromBalance int64) (*transferLedgerStub, *domain.Account, *domain.Account) {
	owner := &domain.Customer{ID: uuid.New(), Name: "Ada", Tier: tier}
	from := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    owner.ID,
		AccountNumber: "0001",
		Balance:       decimal.NewFromInt(fromBalance),
		Active:        true,
	}
	to := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    owner.ID,
		AccountNumber: "0002",
		Balance:       decimal.Zero,
		Active:        true,
	}
	ledger := &transferLedgerStub{
		accounts:  map[uuid.UUID]*domain.Account{from.ID: from, to.ID: to},
		customers: map[uuid.UUID]*domain.Customer{owner.ID: owner},
	}
	return ledger, from, to
}

func TestEvaluateLimit(t *testing.T) {
	tests := []struct {
		name       string
		tier       domain.CustomerTier
		amount     int64
		wantAllow  bool
		wantReason string
	}{
		{name: "standard at tier limit is allowed", tier: domain.TierStandard, amount: 1000, wantAllow: true},
		{name: "standard above tier limit is denied", tier: domain.TierStandard, amount: 1001, wantAllow: false, wantReason: ReasonLimitExceeded},
		{name: "premium above standard limit is allowed", tier: domain.TierPremium, amount: 5000, wantAllow: true},
		{name: "premium at manual approval threshold is allowed", tier: domain.TierPremium, amount: 10000, wantAllow: true},
		{name: "premium above manual approval threshold is denied", tier: domain.TierPremium, amount: 10001, wantAllow: false, wantReason: ReasonRequiresManualApproval},
		{name: "manual approval takes precedence over tier limit", tier: domain.TierStandard, amount: 15000, wantAllow: false, wantReason: ReasonRequiresManualApproval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateLimit(tt.tier, decimal.NewFromInt(tt.amount))
			if got.Allowed != tt.wantAllow {
				t.Fatalf("expected allowed=%t, got %t", tt.wantAllow, got.Allowed)
			}
			if got.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, got.Reason)
			}
		})
	}
}

func TestTransfer_SuccessMovesExactAmountOnce(t *testing.T) {
	ledger, from, to := newTransferFixture(domain.TierPremium, 10000)
	publisher := &recordingPublisher{}
	engine := NewTransferEngine(ledger, ledger, publisher)

	amount := decimal.NewFromInt(250)
	result, err := engine.Transfer(context.Background(), from.ID, to.ID, amount)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got reason %q", result.Reason)
	}

	if !from.Balance.Equal(decimal.NewFromInt(9750)) {
		t.Fatalf("expected source balance 9750, got %s", from.Balance)
	}
	if !to.Balance.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected destination balance 250, got %s", to.Balance)
	}
	if ledger.applyCalled != 1 {
		t.Fatalf("expected exactly one atomic persist, got %d", ledger.applyCalled)
	}

	rec := result.Transaction
	if rec == nil {
		t.Fatal("expected a transaction record on success")
	}
	if rec.FromAccountID != from.ID || rec.ToAccountID != to.ID {
		t.Fatal("transaction record references wrong accounts")
	}
	if !rec.Amount.Equal(amount) {
		t.Fatalf("expected recorded amount %s, got %s", amount, rec.Amount)
	}
	if rec.Status != domain.TransactionCompleted {
		t.Fatalf("expected Completed status, got %q", rec.Status)
	}
	if ledger.appliedRec != rec {
		t.Fatal("persisted record differs from returned record")
	}

	if len(publisher.routingKeys) != 1 || publisher.routingKeys[0] != "transfer.completed" {
		t.Fatalf("expected a single transfer.completed event, got %v", publisher.routingKeys)
	}
}

func TestTransfer_DenialReasonsInCheckOrder(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal)
		wantReason string
	}{
		{
			name: "unknown source account",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				return uuid.New(), to.ID, decimal.NewFromInt(10)
			},
			wantReason: ReasonAccountNotFound,
		},
		{
			name: "unknown destination account",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				return from.ID, uuid.New(), decimal.NewFromInt(10)
			},
			wantReason: ReasonAccountNotFound,
		},
		{
			name: "inactive source account",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				from.Active = false
				return from.ID, to.ID, decimal.NewFromInt(10)
			},
			wantReason: ReasonAccountInactive,
		},
		{
			name: "inactive destination account",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				to.Active = false
				return from.ID, to.ID, decimal.NewFromInt(10)
			},
			wantReason: ReasonAccountInactive,
		},
		{
			name: "inactive account wins over invalid amount",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				from.Active = false
				return from.ID, to.ID, decimal.NewFromInt(-5)
			},
			wantReason: ReasonAccountInactive,
		},
		{
			name: "zero amount",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				return from.ID, to.ID, decimal.Zero
			},
			wantReason: ReasonInvalidAmount,
		},
		{
			name: "negative amount",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				return from.ID, to.ID, decimal.NewFromInt(-1)
			},
			wantReason: ReasonInvalidAmount,
		},
		{
			name: "insufficient balance",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				return from.ID, to.ID, decimal.NewFromInt(101)
			},
			wantReason: ReasonInsufficientBalance,
		},
		{
			name: "unknown source owner",
			setup: func(ledger *transferLedgerStub, from, to *domain.Account) (uuid.UUID, uuid.UUID, decimal.Decimal) {
				delete(ledger.customers, from.CustomerID)
				return from.ID, to.ID, decimal.NewFromInt(10)
			},
			wantReason: ReasonUnknownCustomer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger, from, to := newTransferFixture(domain.TierPremium, 100)
			engine := NewTransferEngine(ledger, ledger, nil)

			fromID, toID, amount := tt.setup(ledger, from, to)
			result, err := engine.Transfer(context.Background(), fromID, toID, amount)
			if err != nil {
				t.Fatalf("expected denial result, got error %v", err)
			}
			if result.Success {
				t.Fatal("expected denial, got success")
			}
			if result.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, result.Reason)
			}
			if ledger.applyCalled != 0 {
				t.Fatal("denied transfer must not persist anything")
			}
		})
	}
}

func TestTransfer_DenialLeavesBalancesUntouched(t *testing.T) {
	ledger, from, to := newTransferFixture(domain.TierStandard, 100)
	engine := NewTransferEngine(ledger, ledger, nil)

	result, err := engine.Transfer(context.Background(), from.ID, to.ID, decimal.NewFromInt(500))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Success || result.Reason != ReasonInsufficientBalance {
		t.Fatalf("expected InsufficientBalance denial, got %+v", result)
	}

	if !from.Balance.Equal(decimal.NewFromInt(100)) || !to.Balance.Equal(decimal.Zero) {
		t.Fatalf("balances changed on denial: from=%s to=%s", from.Balance, to.Balance)
	}
}

func TestTransfer_StandardTierLimitDenied(t *testing.T) {
	ledger, from, to := newTransferFixture(domain.TierStandard, 5000)
	engine := NewTransferEngine(ledger, ledger, nil)

	result, err := engine.Transfer(context.Background(), from.ID, to.ID, decimal.NewFromInt(2000))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Success || result.Reason != ReasonLimitExceeded {
		t.Fatalf("expected LimitExceeded denial, got %+v", result)
	}
}

func TestTransfer_InfrastructureFaultSurfacesAsError(t *testing.T) {
	ledger, from, to := newTransferFixture(domain.TierPremium, 1000)
	ledger.applyErr = errors.New("connection reset")
	engine := NewTransferEngine(ledger, ledger, nil)

	_, err := engine.Transfer(context.Background(), from.ID, to.ID, decimal.NewFromInt(100))
	if err == nil {
		t.Fatal("expected persistence fault to surface as error")
	}
}
