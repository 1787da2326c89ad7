package domain

import "errors"

// Saga business errors. These are returned by the transfer service before any
// mutation is persisted and mapped to stable reply codes at the messaging
// boundary; they are never retried automatically.
var (
	// ErrInvalidAmount is returned when a transfer amount is zero or negative.
	ErrInvalidAmount = errors.New("transfer amount must be positive")
	// ErrDuplicateTransaction is returned when a ledger entry already exists
	// for the (transaction id, transfer type) idempotency key.
	ErrDuplicateTransaction = errors.New("transaction already processed")
	// ErrAccountNotFound is returned when no account matches the account number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientBalance is returned when a withdrawal exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrMissingPriorWithdraw is returned when a deposit arrives before the
	// withdraw leg of the same saga is durably recorded.
	ErrMissingPriorWithdraw = errors.New("no prior withdraw recorded for transaction")
	// ErrTransactionNotFound is returned by compensate when no withdraw ledger
	// entry exists for the transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrAlreadyCompensated is returned when a withdrawal was already reversed.
	ErrAlreadyCompensated = errors.New("transaction already compensated")
)
