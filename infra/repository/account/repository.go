// Package account implements the lockable account repository over gorm.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minwoo-song/bankcore/infra/repository/model"
	"github.com/minwoo-song/bankcore/pkg/domain"
	repo "github.com/minwoo-song/bankcore/pkg/repository"
)

type repository struct {
	db *gorm.DB
}

// New creates an account repository bound to the given session. Pass the
// transaction handle from the unit of work so row locks live until commit.
func New(db *gorm.DB) repo.AccountRepository {
	return &repository{db: db}
}

// LockByNumber implements repository.AccountRepository using
// SELECT ... FOR UPDATE; the row lock is held by the surrounding transaction
// and released at its boundary.
func (r *repository) LockByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	var acct model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_number = ?", accountNumber).
		First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("lock account by number: %w", err)
	}
	return mapModelToDomain(&acct)
}

// LockByID implements repository.AccountRepository.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var acct model.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("lock account by id: %w", err)
	}
	return mapModelToDomain(&acct)
}

// UpdateBalance implements repository.AccountRepository.
func (r *repository) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", id).
		Update("balance", balance)
	if res.Error != nil {
		return fmt.Errorf("update account balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// mapModelToDomain validates stored codes while mapping; a row with a code
// outside the closed sets is corrupt and surfaces as an error instead of a
// zero value.
func mapModelToDomain(acct *model.Account) (*domain.Account, error) {
	status, err := domain.ParseAccountStatus(acct.Status)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", acct.ID, err)
	}
	bank, err := domain.ParseBankCode(acct.BankCode)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", acct.ID, err)
	}
	currency, err := domain.ParseCurrencyCode(acct.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", acct.ID, err)
	}
	return &domain.Account{
		ID:            acct.ID,
		UserID:        acct.UserID,
		AccountNumber: acct.AccountNumber,
		Balance:       acct.Balance,
		Status:        status,
		BankCode:      bank,
		Currency:      currency,
		WithdrawLimit: acct.WithdrawLimit,
		CreatedAt:     acct.CreatedAt,
		UpdatedAt:     acct.UpdatedAt,
	}, nil
}
