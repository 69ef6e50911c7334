/**
 * @description
 * This file contains the transfer engine: the funds-movement decision
 * procedure and its execution. It is the only component in the service that
 * mutates account balances. Expected business denials come back as a
 * TransferResult value with a stable reason code; only infrastructure
 * failures surface as errors.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: Transaction ids.
 * - github.com/shopspring/decimal: Exact decimal arithmetic.
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/rabbitmq: Event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/corebank/directdebit-service/internal/store"
	"github.com/corebank/directdebit-service/pkg/rabbitmq"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stable transfer denial reason codes. These are part of the caller contract.
const (
	ReasonAccountNotFound        = "AccountNotFound"
	ReasonAccountInactive        = "AccountInactive"
	ReasonInvalidAmount          = "InvalidAmount"
	ReasonInsufficientBalance    = "InsufficientBalance"
	ReasonUnknownCustomer        = "UnknownCustomer"
	ReasonRequiresManualApproval = "RequiresManualApproval"
	ReasonLimitExceeded          = "LimitExceeded"
	ReasonTransferFailed         = "TransferFailed"
)

// Risk-limit thresholds for the decision table.
var (
	manualApprovalThreshold = decimal.NewFromInt(10_000)
	standardTierLimit       = decimal.NewFromInt(1_000)
)

// TransferDecision is the outcome of the risk-limit decision table.
type TransferDecision struct {
	Allowed bool
	Reason  string
}

// TransferResult reports the outcome of a transfer attempt. Transaction is
// populated only on success.
type TransferResult struct {
	Success     bool
	Reason      string
	Transaction *domain.Transaction
}

func transferOK(rec *domain.Transaction) TransferResult {
	return TransferResult{Success: true, Transaction: rec}
}

func transferFail(reason string) TransferResult {
	return TransferResult{Success: false, Reason: reason}
}

// EvaluateLimit applies the risk-limit decision table to a customer tier and
// amount. It is pure and side-effect free so it can be called (and tested)
// independently of the engine.
//
// Decision table:
//   - amount > 10,000: deny RequiresManualApproval, regardless of tier
//   - tier Standard and amount > 1,000: deny LimitExceeded
//   - otherwise: allow
func EvaluateLimit(tier domain.CustomerTier, amount decimal.Decimal) TransferDecision {
	if amount.GreaterThan(manualApprovalThreshold) {
		return TransferDecision{Allowed: false, Reason: ReasonRequiresManualApproval}
	}
	if tier == domain.TierStandard && amount.GreaterThan(standardTierLimit) {
		return TransferDecision{Allowed: false, Reason: ReasonLimitExceeded}
	}
	return TransferDecision{Allowed: true}
}

// TransferEngine evaluates and executes single funds movements between two
// accounts.
type TransferEngine struct {
	ledger    store.LedgerStore
	customers store.CustomerStore
	producer  rabbitmq.Publisher
}

// NewTransferEngine creates a new transfer engine. producer may be nil when
// event publishing is disabled.
func NewTransferEngine(ledger store.LedgerStore, customers store.CustomerStore, producer rabbitmq.Publisher) *TransferEngine {
	return &TransferEngine{
		ledger:    ledger,
		customers: customers,
		producer:  producer,
	}
}

// Transfer moves amount from one account to another. Checks run in fixed
// order and the first failing check wins; a failed check performs no
// persistence at all. On success both balances change by exactly amount and
// exactly one Completed transaction record is appended, atomically.
func (e *TransferEngine) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) (TransferResult, error) {
	from, err := e.ledger.GetAccount(ctx, fromID)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return TransferResult{}, fmt.Errorf("load source account: %w", err)
	}
	to, getErr := e.ledger.GetAccount(ctx, toID)
	if getErr != nil && !errors.Is(getErr, store.ErrAccountNotFound) {
		return TransferResult{}, fmt.Errorf("load destination account: %w", getErr)
	}

	if from == nil || to == nil {
		return transferFail(ReasonAccountNotFound), nil
	}
	if !from.Active || !to.Active {
		return transferFail(ReasonAccountInactive), nil
	}
	if !amount.IsPositive() {
		return transferFail(ReasonInvalidAmount), nil
	}
	if from.Balance.LessThan(amount) {
		return transferFail(ReasonInsufficientBalance), nil
	}

	owner, err := e.customers.GetCustomer(ctx, from.CustomerID)
	if err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			return transferFail(ReasonUnknownCustomer), nil
		}
		return TransferResult{}, fmt.Errorf("load source account owner: %w", err)
	}

	decision := EvaluateLimit(owner.Tier, amount)
	if !decision.Allowed {
		return transferFail(decision.Reason), nil
	}

	// Apply transfer
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(amount)

	rec := &domain.Transaction{
		ID:            uuid.New(),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        amount,
		TimestampUTC:  time.Now().UTC(),
		Status:        domain.TransactionCompleted,
	}

	if err := e.ledger.ApplyTransfer(ctx, from, to, rec); err != nil {
		return TransferResult{}, fmt.Errorf("apply transfer: %w", err)
	}

	if e.producer != nil {
		event := domain.TransferCompletedEvent{
			TransactionID: rec.ID,
			FromAccountID: rec.FromAccountID,
			ToAccountID:   rec.ToAccountID,
			Amount:        rec.Amount,
			Timestamp:     rec.TimestampUTC,
		}
		if pubErr := e.producer.Publish(ctx, rabbitmq.EventsExchange, "transfer.completed", event); pubErr != nil {
			log.Printf("level=warn component=transfer_engine msg=\"event publish failed\" transaction_id=%s err=%v", rec.ID, pubErr)
		}
	}

	return transferOK(rec), nil
}
