/**
 * @description
 * This file provides the PostgreSQL implementation of the store interfaces.
 * It contains all the SQL for customers, accounts, transactions, mandates and
 * collections. Multi-row writes that must be durable together (a transfer's
 * two balance updates plus its transaction record, a batch run's collection
 * outcomes) run inside a single pgx transaction.
 *
 * @dependencies
 * - context, time, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver.
 * - internal/domain: Domain models.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements CustomerStore, LedgerStore, MandateStore and
// CollectionStore against a shared connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetCustomer retrieves a customer by id.
func (r *PostgresRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	query := `SELECT id, name, tier FROM customers WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateCustomer inserts a new customer record.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (id, name, tier) VALUES ($1, $2, $3)`
	_, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Tier)
	return err
}

// GetAccount retrieves an account by id.
func (r *PostgresRepository) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var a domain.Account
	query := `SELECT id, customer_id, account_number, balance, active FROM accounts WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.CustomerID, &a.AccountNumber, &a.Balance, &a.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// CreateAccount inserts a new account record.
func (r *PostgresRepository) CreateAccount(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, customer_id, account_number, balance, active) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, a.ID, a.CustomerID, a.AccountNumber, a.Balance, a.Active)
	return err
}

// ApplyTransfer persists both mutated balances and appends the transaction
// record in one database transaction. Either everything commits or nothing
// does.
func (r *PostgresRepository) ApplyTransfer(ctx context.Context, from, to *domain.Account, rec *domain.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transfer tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, acct := range []*domain.Account{from, to} {
		tag, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, acct.Balance, acct.ID)
		if err != nil {
			return fmt.Errorf("update balance for account %s: %w", acct.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAccountNotFound
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, from_account_id, to_account_id, amount, timestamp_utc, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.FromAccountID, rec.ToAccountID, rec.Amount, rec.TimestampUTC, rec.Status)
	if err != nil {
		return fmt.Errorf("insert transaction record: %w", err)
	}

	return tx.Commit(ctx)
}

// GetMandate retrieves a mandate by id.
func (r *PostgresRepository) GetMandate(ctx context.Context, id uuid.UUID) (*domain.Mandate, error) {
	var m domain.Mandate
	query := `
		SELECT id, debtor_customer_id, payer_account_id, settlement_account_id,
		       status, created_utc, activated_utc, cancelled_utc
		FROM mandates WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.DebtorCustomerID, &m.PayerAccountID, &m.SettlementAccountID,
		&m.Status, &m.CreatedUTC, &m.ActivatedUTC, &m.CancelledUTC)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMandateNotFound
		}
		return nil, err
	}
	return &m, nil
}

// CreateMandate inserts a new mandate record.
func (r *PostgresRepository) CreateMandate(ctx context.Context, m *domain.Mandate) error {
	query := `
		INSERT INTO mandates (id, debtor_customer_id, payer_account_id, settlement_account_id,
		                      status, created_utc, activated_utc, cancelled_utc)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.DebtorCustomerID, m.PayerAccountID, m.SettlementAccountID,
		m.Status, m.CreatedUTC, m.ActivatedUTC, m.CancelledUTC)
	return err
}

// UpdateMandate persists a mandate's mutable state.
func (r *PostgresRepository) UpdateMandate(ctx context.Context, m *domain.Mandate) error {
	query := `
		UPDATE mandates
		SET status = $1, activated_utc = $2, cancelled_utc = $3
		WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, m.Status, m.ActivatedUTC, m.CancelledUTC, m.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMandateNotFound
	}
	return nil
}

const collectionColumns = `id, mandate_id, due_date, amount, memo, status,
	created_utc, notified_utc, decision_utc, collected_utc, failure_reason`

func scanCollection(row pgx.Row) (*domain.Collection, error) {
	var c domain.Collection
	err := row.Scan(
		&c.ID, &c.MandateID, &c.DueDate, &c.Amount, &c.Memo, &c.Status,
		&c.CreatedUTC, &c.NotifiedUTC, &c.DecisionUTC, &c.CollectedUTC, &c.FailureReason)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCollection retrieves a collection by id.
func (r *PostgresRepository) GetCollection(ctx context.Context, id uuid.UUID) (*domain.Collection, error) {
	c, err := scanCollection(r.db.QueryRow(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return c, nil
}

// CreateCollection inserts a new collection record.
func (r *PostgresRepository) CreateCollection(ctx context.Context, c *domain.Collection) error {
	query := `
		INSERT INTO collections (id, mandate_id, due_date, amount, memo, status,
		                         created_utc, notified_utc, decision_utc, collected_utc, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.MandateID, c.DueDate, c.Amount, c.Memo, c.Status,
		c.CreatedUTC, c.NotifiedUTC, c.DecisionUTC, c.CollectedUTC, c.FailureReason)
	return err
}

// UpdateCollection persists a single collection's mutable state.
func (r *PostgresRepository) UpdateCollection(ctx context.Context, c *domain.Collection) error {
	tag, err := r.db.Exec(ctx, updateCollectionSQL,
		c.Status, c.NotifiedUTC, c.DecisionUTC, c.CollectedUTC, c.FailureReason, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

const updateCollectionSQL = `
	UPDATE collections
	SET status = $1, notified_utc = $2, decision_utc = $3, collected_utc = $4, failure_reason = $5
	WHERE id = $6`

// GetUpcoming returns Created collections due within [from, to], inclusive.
func (r *PostgresRepository) GetUpcoming(ctx context.Context, from, to time.Time) ([]*domain.Collection, error) {
	query := `SELECT ` + collectionColumns + `
		FROM collections
		WHERE status = $1 AND due_date >= $2 AND due_date <= $3
		ORDER BY due_date, created_utc`
	rows, err := r.db.Query(ctx, query, domain.CollectionCreated, dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

// GetDue returns Created, Notified and Approved collections due on or before
// now's date.
func (r *PostgresRepository) GetDue(ctx context.Context, now time.Time) ([]*domain.Collection, error) {
	query := `SELECT ` + collectionColumns + `
		FROM collections
		WHERE status = ANY($1) AND due_date <= $2
		ORDER BY due_date, created_utc`
	statuses := []string{
		string(domain.CollectionCreated),
		string(domain.CollectionNotified),
		string(domain.CollectionApproved),
	}
	rows, err := r.db.Query(ctx, query, statuses, dateOnly(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

// SaveCollections writes the outcome of a whole batch run in one database
// transaction.
func (r *PostgresRepository) SaveCollections(ctx context.Context, cols []*domain.Collection) error {
	if len(cols) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range cols {
		if _, err := tx.Exec(ctx, updateCollectionSQL,
			c.Status, c.NotifiedUTC, c.DecisionUTC, c.CollectedUTC, c.FailureReason, c.ID); err != nil {
			return fmt.Errorf("save collection %s: %w", c.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func collectRows(rows pgx.Rows) ([]*domain.Collection, error) {
	var cols []*domain.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
