/**
 * @description
 * This file defines the store interfaces the core services depend on. The
 * interfaces keep the domain state machines decoupled from PostgreSQL: the
 * services never reach into shared mutable state, all reads and writes go
 * through these narrow contracts, and the tests substitute in-memory stubs.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: Entity identifiers.
 * - internal/domain: Domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrMandateNotFound    = errors.New("mandate not found")
	ErrCollectionNotFound = errors.New("collection not found")
)

// CustomerStore holds customer records.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, c *domain.Customer) error
}

// AccountStore holds account records.
type AccountStore interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	CreateAccount(ctx context.Context, a *domain.Account) error
}

// LedgerStore is the transfer engine's view of persistence. ApplyTransfer
// durably writes the two already-mutated account balances together with the
// transaction record in a single database transaction; the store never
// computes balances itself.
type LedgerStore interface {
	AccountStore
	ApplyTransfer(ctx context.Context, from, to *domain.Account, rec *domain.Transaction) error
}

// MandateStore holds mandate records.
type MandateStore interface {
	GetMandate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error)
	CreateMandate(ctx context.Context, m *domain.Mandate) error
	UpdateMandate(ctx context.Context, m *domain.Mandate) error
}

// CollectionStore holds collection records and the two range queries the
// batch orchestrator sweeps over. SaveCollections writes the outcome of a
// whole batch in one database transaction.
type CollectionStore interface {
	GetCollection(ctx context.Context, id uuid.UUID) (*domain.Collection, error)
	CreateCollection(ctx context.Context, c *domain.Collection) error
	UpdateCollection(ctx context.Context, c *domain.Collection) error

	// GetUpcoming returns Created collections due within [from, to],
	// inclusive both ends, at date granularity.
	GetUpcoming(ctx context.Context, from, to time.Time) ([]*domain.Collection, error)

	// GetDue returns collections in status Created, Notified or Approved
	// with a due date on or before now's date.
	GetDue(ctx context.Context, now time.Time) ([]*domain.Collection, error)

	SaveCollections(ctx context.Context, cols []*domain.Collection) error
}
