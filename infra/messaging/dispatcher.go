package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator"

	"github.com/minwoo-song/bankcore/pkg/domain"
	"github.com/minwoo-song/bankcore/pkg/dto"
	"github.com/minwoo-song/bankcore/pkg/service/transfer"
)

// TransferService is the saga surface the dispatcher invokes.
type TransferService interface {
	Withdraw(ctx context.Context, cmd transfer.WithdrawCommand) error
	Deposit(ctx context.Context, cmd transfer.DepositCommand) error
	Compensate(ctx context.Context, cmd transfer.CompensateCommand) error
}

// DeadLetterPublisher routes an exhausted message to the dead-letter channel
// with its command metadata preserved.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg InboundMessage) error
}

// Dispatcher maps request/reply messages onto saga operations. Business
// failures are returned immediately as reply codes; unexpected failures are
// retried a bounded number of times, and on exhaustion the compensate class
// is handed to the dead-letter channel; compensation must never be dropped.
type Dispatcher struct {
	transfers TransferService
	dlq       DeadLetterPublisher
	validate  *validator.Validate
	ttl       time.Duration
	attempts  int
	backoff   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. ttl bounds message age, attempts and
// backoff shape the retry policy for unexpected failures.
func NewDispatcher(
	transfers TransferService,
	dlq DeadLetterPublisher,
	ttl time.Duration,
	attempts int,
	backoff time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	if attempts <= 0 {
		attempts = 3
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Dispatcher{
		transfers: transfers,
		dlq:       dlq,
		validate:  validator.New(),
		ttl:       ttl,
		attempts:  attempts,
		backoff:   backoff,
		logger:    logger.With("component", "dispatcher"),
		now:       time.Now,
	}
}

// Handle processes one request/reply message and returns the reply payload.
func (d *Dispatcher) Handle(ctx context.Context, msg InboundMessage) dto.Reply {
	logger := d.logger.With("cmd", msg.Cmd, "correlation_id", msg.CorrelationID)

	switch msg.Cmd {
	case CmdWithdraw, CmdDeposit, CmdCompensate:
	default:
		logger.Error("unrecognized command on request topic")
		return dto.FailureReply(dto.CodeInternalError)
	}

	if age := d.now().Sub(msg.ProducedAt); age > d.ttl {
		logger.Warn("expired message, skipping", "age", age, "ttl", d.ttl)
		return dto.FailureReply(dto.CodeRequestTimeout)
	}

	switch msg.Cmd {
	case CmdWithdraw:
		return d.handleWithdraw(ctx, logger, msg)
	case CmdDeposit:
		return d.handleDeposit(ctx, logger, msg)
	default:
		return d.handleCompensate(ctx, logger, msg)
	}
}

func (d *Dispatcher) handleWithdraw(ctx context.Context, logger *slog.Logger, msg InboundMessage) dto.Reply {
	var req dto.WithdrawRequest
	if reply, ok := d.decode(logger, msg.Value, &req); !ok {
		return reply
	}
	currency, err := domain.ParseCurrencyCode(req.CurrencyCode)
	if err != nil {
		logger.Warn("rejecting request", "error", err)
		return dto.FailureReply(dto.CodeBadRequest)
	}
	if err := parseBankCodes(req.WithdrawBankCode, req.CounterBankCode); err != nil {
		logger.Warn("rejecting request", "error", err)
		return dto.FailureReply(dto.CodeBadRequest)
	}

	err = d.invoke(ctx, func(ctx context.Context) error {
		return d.transfers.Withdraw(ctx, transfer.WithdrawCommand{
			TransactionID:  req.TransactionID,
			Account:        req.WithdrawAccount,
			CounterAccount: req.CounterAccount,
			Amount:         req.TransferAmount,
			Currency:       currency,
		})
	})
	if err != nil {
		logger.Error("withdraw failed", "transaction_id", req.TransactionID, "error", err)
		return failureReplyFor(err)
	}
	return dto.SuccessReply(dto.CodeWithdrawOK)
}

func (d *Dispatcher) handleDeposit(ctx context.Context, logger *slog.Logger, msg InboundMessage) dto.Reply {
	var req dto.DepositRequest
	if reply, ok := d.decode(logger, msg.Value, &req); !ok {
		return reply
	}
	currency, err := domain.ParseCurrencyCode(req.CurrencyCode)
	if err != nil {
		logger.Warn("rejecting request", "error", err)
		return dto.FailureReply(dto.CodeBadRequest)
	}
	if err := parseBankCodes(req.DepositBankCode, req.CounterBankCode); err != nil {
		logger.Warn("rejecting request", "error", err)
		return dto.FailureReply(dto.CodeBadRequest)
	}

	err = d.invoke(ctx, func(ctx context.Context) error {
		return d.transfers.Deposit(ctx, transfer.DepositCommand{
			TransactionID:  req.TransactionID,
			Account:        req.DepositAccount,
			CounterAccount: req.CounterAccount,
			Amount:         req.TransferAmount,
			Currency:       currency,
		})
	})
	if err != nil {
		logger.Error("deposit failed", "transaction_id", req.TransactionID, "error", err)
		return failureReplyFor(err)
	}
	return dto.SuccessReply(dto.CodeDepositOK)
}

func (d *Dispatcher) handleCompensate(ctx context.Context, logger *slog.Logger, msg InboundMessage) dto.Reply {
	var req dto.CompensateRequest
	if reply, ok := d.decode(logger, msg.Value, &req); !ok {
		return reply
	}

	err := d.invoke(ctx, func(ctx context.Context) error {
		return d.transfers.Compensate(ctx, transfer.CompensateCommand{TransactionID: req.TransactionID})
	})
	if err == nil {
		return dto.SuccessReply(dto.CodeCompensateOK)
	}
	if isBusinessError(err) {
		logger.Error("compensate rejected", "transaction_id", req.TransactionID, "error", err)
		return failureReplyFor(err)
	}

	// Retries exhausted on an infrastructure fault: hand off to the
	// dead-letter channel for out-of-band recovery.
	logger.Error("compensate failed, routing to dead-letter channel",
		"transaction_id", req.TransactionID, "error", err)
	if dlqErr := d.dlq.Publish(ctx, msg); dlqErr != nil {
		logger.Error("dead-letter publish failed", "transaction_id", req.TransactionID, "error", dlqErr)
	}
	return dto.FailureReply(dto.CodeCompensationFailed)
}

// parseBankCodes rejects bank codes outside the closed set before the saga
// runs; the codes themselves are pass-through metadata.
func parseBankCodes(codes ...string) error {
	for _, code := range codes {
		if _, err := domain.ParseBankCode(code); err != nil {
			return err
		}
	}
	return nil
}

// decode unmarshals and validates an inbound payload. On failure it returns
// the reply to send and ok=false.
func (d *Dispatcher) decode(logger *slog.Logger, raw []byte, out any) (dto.Reply, bool) {
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("malformed payload", "error", err)
		return dto.FailureReply(dto.CodeBadRequest), false
	}
	if err := d.validate.Struct(out); err != nil {
		logger.Warn("invalid payload", "error", err)
		return dto.FailureReply(dto.CodeBadRequest), false
	}
	return dto.Reply{}, true
}

// invoke runs op, retrying unexpected failures with a fixed backoff.
// Business rejections return immediately; they are deterministic and
// retrying them cannot change the outcome.
func (d *Dispatcher) invoke(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		err = op(ctx)
		if err == nil || isBusinessError(err) {
			return err
		}
		d.logger.Warn("operation failed, retrying", "attempt", attempt, "error", err)
		if attempt < d.attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.backoff):
			}
		}
	}
	return err
}

var businessErrors = []error{
	domain.ErrInvalidAmount,
	domain.ErrDuplicateTransaction,
	domain.ErrAccountNotFound,
	domain.ErrInsufficientBalance,
	domain.ErrMissingPriorWithdraw,
	domain.ErrTransactionNotFound,
	domain.ErrAlreadyCompensated,
}

func isBusinessError(err error) bool {
	for _, be := range businessErrors {
		if errors.Is(err, be) {
			return true
		}
	}
	return false
}

// failureReplyFor maps a saga error to its stable reply code; anything
// unrecognized degrades to the generic internal-error code.
func failureReplyFor(err error) dto.Reply {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return dto.FailureReply(dto.CodeInvalidAmount)
	case errors.Is(err, domain.ErrDuplicateTransaction):
		return dto.FailureReply(dto.CodeDuplicateTxn)
	case errors.Is(err, domain.ErrAccountNotFound):
		return dto.FailureReply(dto.CodeAccountNotFound)
	case errors.Is(err, domain.ErrInsufficientBalance):
		return dto.FailureReply(dto.CodeInsufficientBalance)
	case errors.Is(err, domain.ErrMissingPriorWithdraw):
		return dto.FailureReply(dto.CodeMissingWithdraw)
	case errors.Is(err, domain.ErrTransactionNotFound):
		return dto.FailureReply(dto.CodeTxnNotFound)
	case errors.Is(err, domain.ErrAlreadyCompensated):
		return dto.FailureReply(dto.CodeAlreadyCompensated)
	default:
		return dto.FailureReply(dto.CodeInternalError)
	}
}
