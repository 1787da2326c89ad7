// Package model holds the gorm row types of the ledger store.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Account represents an account record in the database.
type Account struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null"`
	AccountNumber string    `gorm:"not null;uniqueIndex"`
	Balance       int64     `gorm:"not null"`
	Status        string    `gorm:"type:varchar(16);not null;default:'ACTIVE'"`
	BankCode      string    `gorm:"type:varchar(32);not null"`
	CurrencyCode  string    `gorm:"type:varchar(8);not null;default:'WON'"`
	WithdrawLimit int64     `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// TransferHistory represents one ledger entry. The composite unique index on
// (transaction_id, transfer_type) is the saga idempotency key.
type TransferHistory struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransactionID      string    `gorm:"not null;uniqueIndex:ux_transfer_txn_type"`
	TransferType       string    `gorm:"type:varchar(16);not null;uniqueIndex:ux_transfer_txn_type"`
	TransferStatus     string    `gorm:"type:varchar(24);not null"`
	CounterpartAccount string    `gorm:"not null"`
	TransferAmount     int64     `gorm:"not null"`
	CurrencyCode       string    `gorm:"type:varchar(8);not null"`
	BalanceAfter       int64     `gorm:"not null"`
	AccountID          uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt          time.Time
}

// TableName specifies the table name for the TransferHistory model.
func (TransferHistory) TableName() string {
	return "transfer_histories"
}
