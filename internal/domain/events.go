/**
 * @description
 * Message payloads published to RabbitMQ when money moves or a batch run
 * records an outcome. Downstream consumers (notification, reporting) key off
 * the routing key; the payload carries the ids needed to re-query state.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferCompletedEvent is published after a transfer has been durably applied.
type TransferCompletedEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// CollectionSettledEvent is published when a BS run settles a collection.
type CollectionSettledEvent struct {
	CollectionID uuid.UUID       `json:"collection_id"`
	MandateID    uuid.UUID       `json:"mandate_id"`
	Amount       decimal.Decimal `json:"amount"`
	CollectedUTC time.Time       `json:"collected_utc"`
}

// CollectionFailedEvent is published when a BS run marks a collection failed.
// Reason carries the stable failure code also persisted on the collection.
type CollectionFailedEvent struct {
	CollectionID uuid.UUID `json:"collection_id"`
	MandateID    uuid.UUID `json:"mandate_id"`
	Reason       string    `json:"reason"`
}
