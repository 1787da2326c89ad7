// Package transfer implements the saga operations of the transfer engine:
// withdraw, deposit, and compensate. Each operation runs in a single
// database transaction; the account row lock taken inside it is the only
// serialization mechanism, and the (transaction id, transfer type) ledger
// key makes every operation idempotent under redelivery.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/minwoo-song/bankcore/pkg/domain"
	"github.com/minwoo-song/bankcore/pkg/repository"
)

// Cipher encrypts and decrypts account numbers. Inbound requests carry
// encrypted numbers; lookups need the plaintext; ledger rows store the
// counterpart re-encrypted.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Service executes saga operations against the ledger store.
type Service struct {
	uow    repository.UnitOfWork
	cipher Cipher
	logger *slog.Logger
}

// NewService creates a transfer service.
func NewService(uow repository.UnitOfWork, cipher Cipher, logger *slog.Logger) *Service {
	return &Service{uow: uow, cipher: cipher, logger: logger.With("service", "transfer")}
}

// Withdraw debits the source account and records a WITHDRAW ledger entry.
// Validations run in order: amount, idempotency, account existence, balance;
// every rejection happens before any mutation, and the first two happen
// before the row lock so failed validations never block other transfers.
func (s *Service) Withdraw(ctx context.Context, cmd WithdrawCommand) error {
	logger := s.logger.With("transactionId", cmd.TransactionID, "type", domain.TransferWithdraw)

	if cmd.Amount <= 0 {
		return domain.ErrInvalidAmount
	}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transfers, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		exists, err := transfers.Exists(ctx, cmd.TransactionID, domain.TransferWithdraw)
		if err != nil {
			return fmt.Errorf("idempotency probe: %w", err)
		}
		if exists {
			return domain.ErrDuplicateTransaction
		}

		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		number, err := s.cipher.Decrypt(cmd.Account)
		if err != nil {
			return fmt.Errorf("decrypt withdraw account: %w", err)
		}
		acct, err := accounts.LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := acct.Debit(cmd.Amount); err != nil {
			return err
		}

		counterpart, err := s.reencrypt(cmd.CounterAccount)
		if err != nil {
			return err
		}
		entry := &domain.TransferHistory{
			ID:                 uuid.New(),
			TransactionID:      cmd.TransactionID,
			Type:               domain.TransferWithdraw,
			Status:             domain.StatusSuccess,
			CounterpartAccount: counterpart,
			Amount:             cmd.Amount,
			Currency:           cmd.Currency,
			BalanceAfter:       acct.Balance,
			AccountID:          acct.ID,
		}
		if err := transfers.Create(ctx, entry); err != nil {
			return fmt.Errorf("append withdraw entry: %w", err)
		}
		return accounts.UpdateBalance(ctx, acct.ID, acct.Balance)
	})
	if err != nil {
		return err
	}

	logger.Info("withdraw completed", "amount", cmd.Amount, "currency", cmd.Currency)
	return nil
}

// Deposit credits the destination account and records a DEPOSIT ledger entry.
// A deposit only completes the second leg of a saga: it requires a durably
// recorded WITHDRAW entry for the same transaction id.
func (s *Service) Deposit(ctx context.Context, cmd DepositCommand) error {
	logger := s.logger.With("transactionId", cmd.TransactionID, "type", domain.TransferDeposit)

	if cmd.Amount <= 0 {
		return domain.ErrInvalidAmount
	}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transfers, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		exists, err := transfers.Exists(ctx, cmd.TransactionID, domain.TransferDeposit)
		if err != nil {
			return fmt.Errorf("idempotency probe: %w", err)
		}
		if exists {
			return domain.ErrDuplicateTransaction
		}
		withdrawn, err := transfers.Exists(ctx, cmd.TransactionID, domain.TransferWithdraw)
		if err != nil {
			return fmt.Errorf("ordering probe: %w", err)
		}
		if !withdrawn {
			return domain.ErrMissingPriorWithdraw
		}

		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		number, err := s.cipher.Decrypt(cmd.Account)
		if err != nil {
			return fmt.Errorf("decrypt deposit account: %w", err)
		}
		acct, err := accounts.LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		acct.Credit(cmd.Amount)

		counterpart, err := s.reencrypt(cmd.CounterAccount)
		if err != nil {
			return err
		}
		entry := &domain.TransferHistory{
			ID:                 uuid.New(),
			TransactionID:      cmd.TransactionID,
			Type:               domain.TransferDeposit,
			Status:             domain.StatusSuccess,
			CounterpartAccount: counterpart,
			Amount:             cmd.Amount,
			Currency:           cmd.Currency,
			BalanceAfter:       acct.Balance,
			AccountID:          acct.ID,
		}
		if err := transfers.Create(ctx, entry); err != nil {
			return fmt.Errorf("append deposit entry: %w", err)
		}
		return accounts.UpdateBalance(ctx, acct.ID, acct.Balance)
	})
	if err != nil {
		return err
	}

	logger.Info("deposit completed", "amount", cmd.Amount, "currency", cmd.Currency)
	return nil
}

// Compensate credits back a recorded withdrawal whose deposit leg never
// completed, appends a COMPENSATE ledger entry, and flips the original
// WITHDRAW entry to COMPENSATED, all in one transaction. Infrastructure
// failures propagate so the dead-letter path can replay the operation;
// compensation is never silently dropped.
func (s *Service) Compensate(ctx context.Context, cmd CompensateCommand) error {
	logger := s.logger.With("transactionId", cmd.TransactionID, "type", domain.TransferCompensate)

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		transfers, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		original, err := transfers.FindByTransactionID(ctx, cmd.TransactionID, domain.TransferWithdraw)
		if err != nil {
			return err
		}
		if original.Status == domain.StatusCompensated {
			return domain.ErrAlreadyCompensated
		}
		if original.Amount <= 0 {
			return domain.ErrInvalidAmount
		}

		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acct, err := accounts.LockByID(ctx, original.AccountID)
		if err != nil {
			return err
		}
		acct.Credit(original.Amount)

		reversal := &domain.TransferHistory{
			ID:                 uuid.New(),
			TransactionID:      cmd.TransactionID,
			Type:               domain.TransferCompensate,
			Status:             domain.StatusCompensated,
			CounterpartAccount: domain.CompensationCounterpart,
			Amount:             original.Amount,
			Currency:           original.Currency,
			BalanceAfter:       acct.Balance,
			AccountID:          acct.ID,
		}
		if err := transfers.Create(ctx, reversal); err != nil {
			// A concurrent replay that passed the status check loses the
			// race on the ledger unique key; the reversal it raced against
			// committed, so report the idempotent outcome.
			if errors.Is(err, domain.ErrDuplicateTransaction) {
				return domain.ErrAlreadyCompensated
			}
			return fmt.Errorf("append compensate entry: %w", err)
		}
		if err := transfers.UpdateStatus(ctx, original.ID, domain.StatusCompensated); err != nil {
			return fmt.Errorf("mark withdraw compensated: %w", err)
		}
		return accounts.UpdateBalance(ctx, acct.ID, acct.Balance)
	})
	if err != nil {
		return err
	}

	logger.Info("compensation completed")
	return nil
}

// reencrypt validates an inbound encrypted account number and returns the
// ciphertext to store at rest.
func (s *Service) reencrypt(encrypted string) (string, error) {
	plain, err := s.cipher.Decrypt(encrypted)
	if err != nil {
		return "", fmt.Errorf("decrypt counterpart account: %w", err)
	}
	out, err := s.cipher.Encrypt(plain)
	if err != nil {
		return "", fmt.Errorf("encrypt counterpart account: %w", err)
	}
	return out, nil
}
