// Package dto defines the wire shapes exchanged over the request/reply
// messaging channel and the stable reply codes.
package dto

// WithdrawRequest is the inbound payload of a request.withdraw command.
// Account numbers arrive encrypted; the saga decrypts them for lookup.
// MessageCreatedAt is the producer's epoch-millisecond creation time; the
// expiry check uses the Kafka record timestamp instead, but the field is part
// of the wire contract.
type WithdrawRequest struct {
	TransactionID    string `json:"transactionId" validate:"required"`
	WithdrawBankCode string `json:"withdrawBankCode" validate:"required"`
	WithdrawAccount  string `json:"withdrawAccount" validate:"required"`
	TransferAmount   int64  `json:"transferAmount"`
	CurrencyCode     string `json:"currencyCode" validate:"required"`
	CounterAccount   string `json:"counterAccount" validate:"required"`
	CounterBankCode  string `json:"counterBankCode" validate:"required"`
	MessageCreatedAt int64  `json:"messageCreatedAt"`
}

// DepositRequest is the inbound payload of a request.deposit command.
type DepositRequest struct {
	TransactionID   string `json:"transactionId" validate:"required"`
	DepositBankCode string `json:"depositBankCode" validate:"required"`
	DepositAccount  string `json:"depositAccount" validate:"required"`
	TransferAmount  int64  `json:"transferAmount"`
	CurrencyCode    string `json:"currencyCode" validate:"required"`
	CounterAccount  string `json:"counterAccount" validate:"required"`
	CounterBankCode string `json:"counterBankCode" validate:"required"`
}

// CompensateRequest is the inbound payload of a request.compensate command.
type CompensateRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
}

// Reply is the outcome payload written to the reply topic. Success replies
// carry no business data.
type Reply struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}
