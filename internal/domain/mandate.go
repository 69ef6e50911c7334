/**
 * @description
 * This file defines the Mandate domain model: a standing authorization that
 * lets a creditor collect funds from a debtor's payer account into a
 * settlement account.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// MandateStatus is the authorization state of a mandate.
type MandateStatus string

const (
	MandatePending   MandateStatus = "Pending"
	MandateActive    MandateStatus = "Active"
	MandateCancelled MandateStatus = "Cancelled"
)

// Mandate authorizes collections against a payer account. A mandate starts
// Pending, must be Active before any collection referencing it can be created
// or settled, and Cancelled is terminal.
type Mandate struct {
	ID                  uuid.UUID     `json:"id"`
	DebtorCustomerID    uuid.UUID     `json:"debtor_customer_id"`
	PayerAccountID      uuid.UUID     `json:"payer_account_id"`
	SettlementAccountID uuid.UUID     `json:"settlement_account_id"`
	Status              MandateStatus `json:"status"`
	CreatedUTC          time.Time     `json:"created_utc"`
	ActivatedUTC        *time.Time    `json:"activated_utc,omitempty"`
	CancelledUTC        *time.Time    `json:"cancelled_utc,omitempty"`
}
