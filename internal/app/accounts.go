/**
 * @description
 * Customer and account creation. These are plain validation flows with no
 * state machine of their own; balances created here are only ever mutated by
 * the transfer engine afterwards.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/corebank/directdebit-service/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerService creates and looks up customers.
type CustomerService struct {
	customers store.CustomerStore
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customers store.CustomerStore) *CustomerService {
	return &CustomerService{customers: customers}
}

// Create registers a customer with the given display name and tier.
func (s *CustomerService) Create(ctx context.Context, name string, tier domain.CustomerTier) (*domain.Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if tier == "" {
		tier = domain.TierStandard
	}

	customer := &domain.Customer{
		ID:   uuid.New(),
		Name: strings.TrimSpace(name),
		Tier: tier,
	}

	if err := s.customers.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("persist customer: %w", err)
	}
	return customer, nil
}

// Get returns a customer by id.
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return c, nil
}

// AccountService creates and looks up accounts.
type AccountService struct {
	accounts  store.AccountStore
	customers store.CustomerStore
}

// NewAccountService creates a new account service.
func NewAccountService(accounts store.AccountStore, customers store.CustomerStore) *AccountService {
	return &AccountService{accounts: accounts, customers: customers}
}

// Create opens an active account for an existing customer with a non-negative
// starting balance.
func (s *AccountService) Create(ctx context.Context, customerID uuid.UUID, accountNumber string, initialBalance decimal.Decimal) (*domain.Account, error) {
	if customerID == uuid.Nil {
		return nil, ErrCustomerIDRequired
	}
	if strings.TrimSpace(accountNumber) == "" {
		return nil, ErrAccountNumberRequired
	}
	if initialBalance.IsNegative() {
		return nil, ErrInvalidInitialBalance
	}

	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}

	account := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    customerID,
		AccountNumber: strings.TrimSpace(accountNumber),
		Balance:       initialBalance,
		Active:        true,
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}
	return account, nil
}

// Get returns an account by id.
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}
