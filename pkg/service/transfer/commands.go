package transfer

import "github.com/minwoo-song/bankcore/pkg/domain"

// WithdrawCommand debits the source leg of a saga. Account numbers are the
// encrypted values carried on the wire.
type WithdrawCommand struct {
	TransactionID  string
	Account        string // encrypted source account number
	CounterAccount string // encrypted destination account number
	Amount         int64
	Currency       domain.CurrencyCode
}

// DepositCommand credits the destination leg of a saga.
type DepositCommand struct {
	TransactionID  string
	Account        string // encrypted destination account number
	CounterAccount string // encrypted source account number
	Amount         int64
	Currency       domain.CurrencyCode
}

// CompensateCommand reverses a recorded withdrawal whose deposit leg never
// completed.
type CompensateCommand struct {
	TransactionID string
}
