// Package domain holds the entities and closed code sets of the transfer
// ledger: accounts, transfer history entries, and the business errors the
// saga operations report.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a bank account row. Its balance is an integer amount in minor
// currency units and never goes negative; the balance is mutated only while
// the caller holds the row lock acquired via AccountRepository.LockByNumber.
type Account struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	Balance       int64
	Status        AccountStatus
	BankCode      BankCode
	Currency      CurrencyCode
	WithdrawLimit int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Debit subtracts amount from the balance. Amount must already be validated
// positive by the caller.
func (a *Account) Debit(amount int64) error {
	if a.Balance < amount {
		return ErrInsufficientBalance
	}
	a.Balance -= amount
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount int64) {
	a.Balance += amount
}
