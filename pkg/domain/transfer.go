package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransferType classifies a ledger entry.
type TransferType string

const (
	TransferWithdraw   TransferType = "WITHDRAW"
	TransferDeposit    TransferType = "DEPOSIT"
	TransferInterest   TransferType = "INTEREST"
	TransferCompensate TransferType = "COMPENSATE"
)

// ParseTransferType validates a wire code and rejects unknown types.
func ParseTransferType(code string) (TransferType, error) {
	switch TransferType(code) {
	case TransferWithdraw, TransferDeposit, TransferInterest, TransferCompensate:
		return TransferType(code), nil
	default:
		return "", fmt.Errorf("unknown transfer type %q", code)
	}
}

// Display returns human-readable text for the transfer type.
func (t TransferType) Display() string {
	switch t {
	case TransferWithdraw:
		return "withdrawal"
	case TransferDeposit:
		return "deposit"
	case TransferInterest:
		return "interest payout"
	case TransferCompensate:
		return "compensating reversal"
	default:
		return string(t)
	}
}

// TransferStatus is the outcome recorded on a ledger entry. The only legal
// transition after creation is SUCCESS → COMPENSATED, applied exactly once by
// the compensate operation.
type TransferStatus string

const (
	StatusSuccess            TransferStatus = "SUCCESS"
	StatusFailed             TransferStatus = "FAILED"
	StatusCompensated        TransferStatus = "COMPENSATED"
	StatusCompensationFailed TransferStatus = "COMPENSATION_FAILED"
)

// ParseTransferStatus validates a wire code and rejects unknown statuses.
func ParseTransferStatus(code string) (TransferStatus, error) {
	switch TransferStatus(code) {
	case StatusSuccess, StatusFailed, StatusCompensated, StatusCompensationFailed:
		return TransferStatus(code), nil
	default:
		return "", fmt.Errorf("unknown transfer status %q", code)
	}
}

// Display returns human-readable text for the status.
func (s TransferStatus) Display() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusCompensated:
		return "compensated"
	case StatusCompensationFailed:
		return "compensation failed"
	default:
		return string(s)
	}
}

// CompensationCounterpart marks the counterpart column of a COMPENSATE ledger
// entry: the credit originates from the system, not from another account.
const CompensationCounterpart = "SYSTEM-COMPENSATION"

// TransferHistory is one immutable funds-movement record. The pair
// (TransactionID, Type) is unique and acts as the saga idempotency key; the
// transaction id is supplied by the requesting side, never generated here.
type TransferHistory struct {
	ID                 uuid.UUID
	TransactionID      string
	Type               TransferType
	Status             TransferStatus
	CounterpartAccount string // encrypted, except the system compensation marker
	Amount             int64
	Currency           CurrencyCode
	BalanceAfter       int64
	AccountID          uuid.UUID
	CreatedAt          time.Time
}
