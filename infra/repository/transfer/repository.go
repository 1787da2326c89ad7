// Package transfer implements the append-only transfer-history repository
// over gorm.
package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minwoo-song/bankcore/infra/repository/model"
	"github.com/minwoo-song/bankcore/pkg/domain"
	repo "github.com/minwoo-song/bankcore/pkg/repository"
)

type repository struct {
	db *gorm.DB
}

// New creates a transfer-history repository bound to the given session.
func New(db *gorm.DB) repo.TransferRepository {
	return &repository{db: db}
}

// Exists implements repository.TransferRepository.
func (r *repository) Exists(ctx context.Context, transactionID string, transferType domain.TransferType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TransferHistory{}).
		Where("transaction_id = ? AND transfer_type = ?", transactionID, string(transferType)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("probe ledger entry: %w", err)
	}
	return count > 0, nil
}

// FindByTransactionID implements repository.TransferRepository.
func (r *repository) FindByTransactionID(ctx context.Context, transactionID string, transferType domain.TransferType) (*domain.TransferHistory, error) {
	var entry model.TransferHistory
	err := r.db.WithContext(ctx).
		Where("transaction_id = ? AND transfer_type = ?", transactionID, string(transferType)).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find ledger entry: %w", err)
	}
	return mapModelToDomain(&entry)
}

// Create implements repository.TransferRepository.
func (r *repository) Create(ctx context.Context, entry *domain.TransferHistory) error {
	row := model.TransferHistory{
		ID:                 entry.ID,
		TransactionID:      entry.TransactionID,
		TransferType:       string(entry.Type),
		TransferStatus:     string(entry.Status),
		CounterpartAccount: entry.CounterpartAccount,
		TransferAmount:     entry.Amount,
		CurrencyCode:       string(entry.Currency),
		BalanceAfter:       entry.BalanceAfter,
		AccountID:          entry.AccountID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		// Two redeliveries can pass the Exists probe before either commits;
		// the unique (transaction_id, transfer_type) index is the backstop.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateTransaction
		}
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// UpdateStatus implements repository.TransferRepository.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransferStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.TransferHistory{}).
		Where("id = ?", id).
		Update("transfer_status", string(status))
	if res.Error != nil {
		return fmt.Errorf("update ledger entry status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func mapModelToDomain(entry *model.TransferHistory) (*domain.TransferHistory, error) {
	transferType, err := domain.ParseTransferType(entry.TransferType)
	if err != nil {
		return nil, fmt.Errorf("ledger entry %s: %w", entry.ID, err)
	}
	status, err := domain.ParseTransferStatus(entry.TransferStatus)
	if err != nil {
		return nil, fmt.Errorf("ledger entry %s: %w", entry.ID, err)
	}
	currency, err := domain.ParseCurrencyCode(entry.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("ledger entry %s: %w", entry.ID, err)
	}
	return &domain.TransferHistory{
		ID:                 entry.ID,
		TransactionID:      entry.TransactionID,
		Type:               transferType,
		Status:             status,
		CounterpartAccount: entry.CounterpartAccount,
		Amount:             entry.TransferAmount,
		Currency:           currency,
		BalanceAfter:       entry.BalanceAfter,
		AccountID:          entry.AccountID,
		CreatedAt:          entry.CreatedAt,
	}, nil
}
