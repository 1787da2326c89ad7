// Package repository defines the persistence contracts the saga operations
// consume. Implementations live in infra/repository.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/minwoo-song/bankcore/pkg/domain"
)

// AccountRepository is the lockable account store.
type AccountRepository interface {
	// LockByNumber acquires an exclusive, transaction-scoped row lock on the
	// account and returns it. It blocks while another transaction holds the
	// lock and returns domain.ErrAccountNotFound when no row matches. The
	// lock is released at the enclosing transaction boundary, never before.
	LockByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// LockByID is LockByNumber keyed by account id; the compensate path uses
	// it because the withdraw ledger entry references the account by id.
	LockByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// UpdateBalance persists a new balance for the locked account. It must be
	// called inside the same transaction that holds the row lock.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error
}

// TransferRepository is the append-only transfer-history ledger.
type TransferRepository interface {
	// Exists is the idempotency probe for the (transaction id, type) key.
	// It takes no lock.
	Exists(ctx context.Context, transactionID string, transferType domain.TransferType) (bool, error)

	// FindByTransactionID returns the ledger entry for the key, or
	// domain.ErrTransactionNotFound.
	FindByTransactionID(ctx context.Context, transactionID string, transferType domain.TransferType) (*domain.TransferHistory, error)

	// Create appends a new ledger entry.
	Create(ctx context.Context, entry *domain.TransferHistory) error

	// UpdateStatus changes the status of an existing entry. Status is the
	// only mutable column of the ledger.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransferStatus) error
}

// UnitOfWork runs a function inside one database transaction and hands it
// repositories bound to that transaction, so a row lock taken through them is
// held until Do returns and every write commits or rolls back together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransferRepository() (TransferRepository, error)
}
