/**
 * @description
 * This file contains the HTTP handlers for the directdebit-service API.
 * Handlers parse incoming requests, call the core services, and map business
 * failures to HTTP status codes. The reason code of a business failure is
 * returned verbatim in the response body; handlers add no domain logic of
 * their own.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - github.com/google/uuid, github.com/shopspring/decimal: Request field types.
 * - internal/app, internal/domain: Core services and models.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/corebank/directdebit-service/internal/app"
	"github.com/corebank/directdebit-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Handlers holds the core services the HTTP layer fronts.
type Handlers struct {
	customers   *app.CustomerService
	accounts    *app.AccountService
	transfers   *app.TransferEngine
	mandates    *app.MandateService
	collections *app.CollectionService
	bsRun       *app.BSRunService

	notifyDaysAhead int
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	customers *app.CustomerService,
	accounts *app.AccountService,
	transfers *app.TransferEngine,
	mandates *app.MandateService,
	collections *app.CollectionService,
	bsRun *app.BSRunService,
	notifyDaysAhead int,
) *Handlers {
	return &Handlers{
		customers:       customers,
		accounts:        accounts,
		transfers:       transfers,
		mandates:        mandates,
		collections:     collections,
		bsRun:           bsRun,
		notifyDaysAhead: notifyDaysAhead,
	}
}

type createCustomerRequest struct {
	Name string              `json:"name"`
	Tier domain.CustomerTier `json:"tier"`
}

type createAccountRequest struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	AccountNumber  string          `json:"account_number"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type transferRequest struct {
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type transferResponse struct {
	Success     bool                `json:"success"`
	Reason      string              `json:"reason,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

type createMandateRequest struct {
	DebtorCustomerID    uuid.UUID `json:"debtor_customer_id"`
	PayerAccountID      uuid.UUID `json:"payer_account_id"`
	SettlementAccountID uuid.UUID `json:"settlement_account_id"`
}

type createCollectionRequest struct {
	MandateID uuid.UUID       `json:"mandate_id"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo"`
}

type batchRunResponse struct {
	Notified  *int `json:"notified,omitempty"`
	Collected *int `json:"collected,omitempty"`
}

// CreateCustomerHandler handles POST /customers.
func (h *Handlers) CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	customer, err := h.customers.Create(r.Context(), req.Name, req.Tier)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// GetCustomerHandler handles GET /customers/{id}.
func (h *Handlers) GetCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// CreateAccountHandler handles POST /accounts.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.accounts.Create(r.Context(), req.CustomerID, req.AccountNumber, req.InitialBalance)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// GetAccountHandler handles GET /accounts/{id}.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// TransferHandler handles POST /transfers. Business denials come back as a
// 422 with the engine's reason code; only infrastructure faults are a 500.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.transfers.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		log.Printf("level=error component=api endpoint=transfer msg=\"transfer fault\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "transfer failed")
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, transferResponse{Success: false, Reason: result.Reason})
		return
	}
	writeJSON(w, http.StatusCreated, transferResponse{Success: true, Transaction: result.Transaction})
}

// CreateMandateHandler handles POST /mandates.
func (h *Handlers) CreateMandateHandler(w http.ResponseWriter, r *http.Request) {
	var req createMandateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	mandate, err := h.mandates.Create(r.Context(), req.DebtorCustomerID, req.PayerAccountID, req.SettlementAccountID)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mandate)
}

// GetMandateHandler handles GET /mandates/{id}.
func (h *Handlers) GetMandateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	mandate, err := h.mandates.Get(r.Context(), id)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mandate)
}

// ActivateMandateHandler handles POST /mandates/{id}/activate.
func (h *Handlers) ActivateMandateHandler(w http.ResponseWriter, r *http.Request) {
	h.mandateTransition(w, r, h.mandates.Activate)
}

// CancelMandateHandler handles POST /mandates/{id}/cancel.
func (h *Handlers) CancelMandateHandler(w http.ResponseWriter, r *http.Request) {
	h.mandateTransition(w, r, h.mandates.Cancel)
}

func (h *Handlers) mandateTransition(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id uuid.UUID) (*domain.Mandate, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	mandate, err := transition(r.Context(), id)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mandate)
}

// CreateCollectionHandler handles POST /collections.
func (h *Handlers) CreateCollectionHandler(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	collection, err := h.collections.Create(r.Context(), req.MandateID, req.DueDate, req.Amount, req.Memo)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

// GetCollectionHandler handles GET /collections/{id}.
func (h *Handlers) GetCollectionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	collection, err := h.collections.Get(r.Context(), id)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

// ApproveCollectionHandler handles POST /collections/{id}/approve.
func (h *Handlers) ApproveCollectionHandler(w http.ResponseWriter, r *http.Request) {
	h.collectionTransition(w, r, h.collections.Approve)
}

// RejectCollectionHandler handles POST /collections/{id}/reject.
func (h *Handlers) RejectCollectionHandler(w http.ResponseWriter, r *http.Request) {
	h.collectionTransition(w, r, h.collections.Reject)
}

// CancelCollectionHandler handles POST /collections/{id}/cancel.
func (h *Handlers) CancelCollectionHandler(w http.ResponseWriter, r *http.Request) {
	h.collectionTransition(w, r, h.collections.Cancel)
}

func (h *Handlers) collectionTransition(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id uuid.UUID) (*domain.Collection, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	collection, err := transition(r.Context(), id)
	if err != nil {
		h.writeBusinessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

// NotifyHandler handles POST /bs/notify?daysAhead=N.
func (h *Handlers) NotifyHandler(w http.ResponseWriter, r *http.Request) {
	daysAhead := h.notifyDaysAhead
	if raw := r.URL.Query().Get("daysAhead"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "daysAhead must be a non-negative integer")
			return
		}
		daysAhead = parsed
	}

	count, err := h.bsRun.NotifyUpcoming(r.Context(), time.Now().UTC(), daysAhead)
	if err != nil {
		log.Printf("level=error component=api endpoint=bs_notify msg=\"notify run fault\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "notification run failed")
		return
	}
	writeJSON(w, http.StatusOK, batchRunResponse{Notified: &count})
}

// CollectHandler handles POST /bs/collect.
func (h *Handlers) CollectHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.bsRun.CollectDue(r.Context(), time.Now().UTC())
	if err != nil {
		log.Printf("level=error component=api endpoint=bs_collect msg=\"collect run fault\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "collection run failed")
		return
	}
	writeJSON(w, http.StatusOK, batchRunResponse{Collected: &count})
}

// writeBusinessError maps a coded business error to an HTTP status and echoes
// the reason code; anything unrecognized is treated as an infrastructure
// fault.
func (h *Handlers) writeBusinessError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, app.ErrMandateNotFound),
		errors.Is(err, app.ErrCollectionNotFound),
		errors.Is(err, app.ErrCustomerNotFound),
		errors.Is(err, app.ErrAccountNotFound),
		errors.Is(err, app.ErrDebtorNotFound),
		errors.Is(err, app.ErrPayerAccountNotFound),
		errors.Is(err, app.ErrSettlementAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrMandateCancelled),
		errors.Is(err, app.ErrMandateNotActive),
		errors.Is(err, app.ErrInvalidStatus),
		errors.Is(err, app.ErrAlreadyCollected):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidAmount),
		errors.Is(err, app.ErrDueDateInPast),
		errors.Is(err, app.ErrNameRequired),
		errors.Is(err, app.ErrCustomerIDRequired),
		errors.Is(err, app.ErrAccountNumberRequired),
		errors.Is(err, app.ErrInvalidInitialBalance),
		errors.Is(err, app.ErrDebtorCustomerIDRequired),
		errors.Is(err, app.ErrPayerAccountIDRequired),
		errors.Is(err, app.ErrSettlementAccountIDRequired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("level=error component=api path=%s msg=\"unexpected failure\" err=%v", r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
