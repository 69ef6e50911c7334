/**
 * @description
 * This file defines the Collection domain model: a single scheduled
 * direct-debit instruction under a mandate, for a specific amount and due
 * date. Settlement always routes through the mandate's payer and settlement
 * accounts; a collection carries no account ids of its own.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionStatus is the lifecycle state of a collection.
type CollectionStatus string

const (
	CollectionCreated   CollectionStatus = "Created"
	CollectionNotified  CollectionStatus = "Notified"
	CollectionApproved  CollectionStatus = "Approved"
	CollectionRejected  CollectionStatus = "Rejected"
	CollectionCollected CollectionStatus = "Collected"
	CollectionFailed    CollectionStatus = "Failed"
	CollectionCancelled CollectionStatus = "Cancelled"
)

// Collection is one direct-debit instruction. Collected and Cancelled are
// terminal; a failed collection keeps its failure reason until a later run
// settles it and clears the reason.
type Collection struct {
	ID            uuid.UUID        `json:"id"`
	MandateID     uuid.UUID        `json:"mandate_id"`
	DueDate       time.Time        `json:"due_date"` // UTC, date granularity
	Amount        decimal.Decimal  `json:"amount"`
	Memo          string           `json:"memo"`
	Status        CollectionStatus `json:"status"`
	CreatedUTC    time.Time        `json:"created_utc"`
	NotifiedUTC   *time.Time       `json:"notified_utc,omitempty"`
	DecisionUTC   *time.Time       `json:"decision_utc,omitempty"`
	CollectedUTC  *time.Time       `json:"collected_utc,omitempty"`
	FailureReason *string          `json:"failure_reason,omitempty"`
}
