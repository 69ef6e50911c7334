/**
 * @description
 * The BS run: the scheduled batch process that walks collections through
 * notification and settlement. Each candidate succeeds or fails on its own;
 * one item's failure never aborts its siblings, and the batch's status
 * changes are written back in a single store call at the end of the sweep.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: Entity ids.
 * - github.com/shopspring/decimal: Exact decimal amounts.
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

// transferExecutor is the slice of the transfer engine the BS run needs.
type transferExecutor interface {
	Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) (TransferResult, error)
}

// BSRunService orchestrates the two batch sweeps over due and upcoming
// collections. Runs against the same data set must be serialized by the
// caller; concurrent invocations can double-process candidates.
type BSRunService struct {
	collections store.CollectionStore
	mandates    store.MandateStore
	transfers   transferExecutor
	producer    rabbitmq.Publisher
}

// NewBSRunService creates a new batch orchestrator. producer may be nil when
// event publishing is disabled.
func NewBSRunService(collections store.CollectionStore, mandates store.MandateStore, transfers transferExecutor, producer rabbitmq.Publisher) *BSRunService {
	return &BSRunService{
		collections: collections,
		mandates:    mandates,
		transfers:   transfers,
		producer:    producer,
	}
}

// NotifyUpcoming marks Created collections due within daysAhead days of
// nowUTC (inclusive both ends, date granularity) as Notified, persists the
// whole batch once, and returns the number notified.
func (s *BSRunService) NotifyUpcoming(ctx context.Context, nowUTC time.Time, daysAhead int) (int, error) {
	from := dateOnly(nowUTC)
	to := from.AddDate(0, 0, daysAhead)

	toNotify, err := s.collections.GetUpcoming(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("query upcoming collections: %w", err)
	}

	for _, c := range toNotify {
		notified := nowUTC
		c.Status = domain.CollectionNotified
		c.NotifiedUTC = &notified
	}

	if len(toNotify) > 0 {
		if err := s.collections.SaveCollections(ctx, toNotify); err != nil {
			return 0, fmt.Errorf("persist notified collections: %w", err)
		}
	}

	return len(toNotify), nil
}

// CollectDue settles every due collection in status Created, Notified or
// Approved. Every candidate gets a status written back, success or failure,
// in one batch persist; the returned count covers only the collections that
// reached Collected in this run. Callers that need failure visibility must
// re-query failed collections.
func (s *BSRunService) CollectDue(ctx context.Context, nowUTC time.Time) (int, error) {
	due, err := s.collections.GetDue(ctx, nowUTC)
	if err != nil {
		return 0, fmt.Errorf("query due collections: %w", err)
	}

	processed := 0

	for i, c := range due {
		fault, err := s.collectOne(ctx, c, nowUTC)
		if err != nil {
			// Infrastructure fault: item i's own transfer is atomic, so it
			// either committed or left no trace. Flush the outcomes already
			// recorded for earlier items before surfacing the fault.
			if i > 0 {
				if saveErr := s.collections.SaveCollections(ctx, due[:i]); saveErr != nil {
					log.Printf("level=error component=bs_run msg=\"partial batch flush failed\" items=%d err=%v", i, saveErr)
				}
			}
			return processed, fmt.Errorf("collect %s: %w", c.ID, err)
		}
		if !fault {
			processed++
		}
	}

	if len(due) > 0 {
		if err := s.collections.SaveCollections(ctx, due); err != nil {
			return 0, fmt.Errorf("persist collection outcomes: %w", err)
		}
	}

	return processed, nil
}

// collectOne walks a single candidate through mandate checks and the transfer
// engine, mutating its status in place. The bool reports whether the item
// failed a business check (true) or was collected (false); the error carries
// only infrastructure faults.
func (s *BSRunService) collectOne(ctx context.Context, c *domain.Collection, nowUTC time.Time) (bool, error) {
	mandate, err := s.mandates.GetMandate(ctx, c.MandateID)
	if err != nil && !errors.Is(err, store.ErrMandateNotFound) {
		return true, err
	}

	if mandate == nil {
		s.markFailed(ctx, c, ReasonMandateNotFound)
		return true, nil
	}
	if mandate.Status != domain.MandateActive {
		s.markFailed(ctx, c, ReasonMandateNotActive)
		return true, nil
	}
	if mandate.SettlementAccountID == uuid.Nil {
		s.markFailed(ctx, c, ReasonSettlementAccountMissing)
		return true, nil
	}

	result, err := s.transfers.Transfer(ctx, mandate.PayerAccountID, mandate.SettlementAccountID, c.Amount)
	if err != nil {
		return true, err
	}

	if !result.Success {
		reason := result.Reason
		if reason == "" {
			reason = ReasonTransferFailed
		}
		s.markFailed(ctx, c, reason)
		return true, nil
	}

	collected := nowUTC
	c.Status = domain.CollectionCollected
	c.CollectedUTC = &collected
	c.FailureReason = nil

	if s.producer != nil {
		event := domain.CollectionSettledEvent{
			CollectionID: c.ID,
			MandateID:    c.MandateID,
			Amount:       c.Amount,
			CollectedUTC: collected,
		}
		if pubErr := s.producer.Publish(ctx, rabbitmq.EventsExchange, "collection.settled", event); pubErr != nil {
			log.Printf("level=warn component=bs_run msg=\"settled event publish failed\" collection_id=%s err=%v", c.ID, pubErr)
		}
	}

	return false, nil
}

func (s *BSRunService) markFailed(ctx context.Context, c *domain.Collection, reason string) {
	c.Status = domain.CollectionFailed
	c.FailureReason = &reason

	if s.producer != nil {
		event := domain.CollectionFailedEvent{
			CollectionID: c.ID,
			MandateID:    c.MandateID,
			Reason:       reason,
		}
		if pubErr := s.producer.Publish(ctx, rabbitmq.EventsExchange, "collection.failed", event); pubErr != nil {
			log.Printf("level=warn component=bs_run msg=\"failed event publish failed\" collection_id=%s err=%v", c.ID, pubErr)
		}
	}
}

// Failure reason codes recorded on collections by the BS run.
const (
	ReasonMandateNotFound          = "MandateNotFound"
	ReasonMandateNotActive         = "MandateNotActive"
	ReasonSettlementAccountMissing = "SettlementAccountMissing"
)
