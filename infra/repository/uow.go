// Package repository wires the gorm unit of work that gives saga operations
// one transaction boundary and transaction-bound repository access.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	accountrepo "github.com/minwoo-song/bankcore/infra/repository/account"
	transferrepo "github.com/minwoo-song/bankcore/infra/repository/transfer"
	repo "github.com/minwoo-song/bankcore/pkg/repository"
)

// ErrNoTransaction is returned when a repository accessor is used outside Do.
var ErrNoTransaction = errors.New("repository access outside a unit of work")

// UoW provides transaction boundary and repository access in one abstraction.
// Handing out repositories from the UoW guarantees they all share the
// transaction session, so the account row lock and every ledger write commit
// or roll back together.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside one database transaction. If fn returns an error the
// transaction rolls back and any row lock taken through the provided
// repositories is released.
func (u *UoW) Do(ctx context.Context, fn func(uow repo.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

// AccountRepository returns an account repository bound to the current
// transaction.
func (u *UoW) AccountRepository() (repo.AccountRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return accountrepo.New(u.tx), nil
}

// TransferRepository returns a transfer-history repository bound to the
// current transaction.
func (u *UoW) TransferRepository() (repo.TransferRepository, error) {
	if u.tx == nil {
		return nil, ErrNoTransaction
	}
	return transferrepo.New(u.tx), nil
}

var _ repo.UnitOfWork = (*UoW)(nil)
