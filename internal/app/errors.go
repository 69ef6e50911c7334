/**
 * @description
 * Business-rule failures for the directdebit-service core. Each error's
 * message is the stable reason code callers key off, so the strings are part
 * of the service contract and must not be reworded.
 */

package app

import "errors"

var (
	// Mandate lifecycle
	ErrDebtorCustomerIDRequired    = errors.New("DebtorCustomerIdRequired")
	ErrPayerAccountIDRequired      = errors.New("PayerAccountIdRequired")
	ErrDebtorNotFound              = errors.New("DebtorNotFound")
	ErrPayerAccountNotFound        = errors.New("PayerAccountNotFound")
	ErrSettlementAccountIDRequired = errors.New("SettlementAccountIdRequired")
	ErrSettlementAccountNotFound   = errors.New("SettlementAccountNotFound")
	ErrMandateNotFound             = errors.New("MandateNotFound")
	ErrMandateCancelled            = errors.New("MandateCancelled")

	// Collection lifecycle
	ErrCollectionNotFound = errors.New("CollectionNotFound")
	ErrMandateNotActive   = errors.New("MandateNotActive")
	ErrInvalidAmount      = errors.New("InvalidAmount")
	ErrDueDateInPast      = errors.New("DueDateInPast")
	ErrInvalidStatus      = errors.New("InvalidStatus")
	ErrAlreadyCollected   = errors.New("AlreadyCollected")

	// Onboarding and lookups
	ErrAccountNotFound       = errors.New("AccountNotFound")
	ErrNameRequired          = errors.New("NameRequired")
	ErrCustomerIDRequired    = errors.New("CustomerIdRequired")
	ErrAccountNumberRequired = errors.New("AccountNumberRequired")
	ErrInvalidInitialBalance = errors.New("InvalidInitialBalance")
	ErrCustomerNotFound      = errors.New("CustomerNotFound")
)
