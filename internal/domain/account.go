/**
 * @description
 * This file defines the ledger-side domain models for the directdebit-service:
 * customers, accounts, and the immutable transaction records produced by the
 * transfer engine.
 *
 * @notes
 * - Monetary values use shopspring/decimal so that debits and credits are exact;
 *   a balance never accumulates binary floating-point error.
 * - Entities reference each other by id only. Any navigation (account -> owning
 *   customer, transaction -> accounts) is an explicit store lookup, never an
 *   embedded back-reference.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerTier classifies a customer for the transfer risk-limit decision.
type CustomerTier string

const (
	TierStandard CustomerTier = "Standard"
	TierPremium  CustomerTier = "Premium"
)

// Customer is the owner of one or more accounts. The tier is, besides the
// amount, the only input to the transfer risk check.
type Customer struct {
	ID   uuid.UUID    `json:"id"`
	Name string       `json:"name"`
	Tier CustomerTier `json:"tier"`
}

// Account is a ledger account. Its balance is mutated only by the transfer
// engine, and a balance mutation is always persisted together with the
// transaction record that explains it.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Active        bool            `json:"active"`
}

// TransactionCompleted is the only status a transaction record ever carries:
// failed transfers do not produce a record at all.
const TransactionCompleted = "Completed"

// Transaction is the append-only record of one executed funds movement.
// It is immutable once created.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	TimestampUTC  time.Time       `json:"timestamp_utc"`
	Status        string          `json:"status"`
}
