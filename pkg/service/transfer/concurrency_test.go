package transfer_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minwoo-song/bankcore/pkg/domain"
	"github.com/minwoo-song/bankcore/pkg/repository"
	"github.com/minwoo-song/bankcore/pkg/service/transfer"
)

// memStore emulates the database's row-lock discipline in memory: locking an
// account blocks other transactions on that account until the unit of work
// returns, and the ledger enforces the (transaction id, type) unique key.
type memStore struct {
	mu       sync.Mutex
	rowLocks map[uuid.UUID]*sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	byNumber map[string]uuid.UUID
	entries  []domain.TransferHistory
}

func newMemStore(accounts ...*domain.Account) *memStore {
	s := &memStore{
		rowLocks: make(map[uuid.UUID]*sync.Mutex),
		accounts: make(map[uuid.UUID]*domain.Account),
		byNumber: make(map[string]uuid.UUID),
	}
	for _, a := range accounts {
		copied := *a
		s.accounts[a.ID] = &copied
		s.byNumber[a.AccountNumber] = a.ID
		s.rowLocks[a.ID] = &sync.Mutex{}
	}
	return s
}

func (s *memStore) balance(id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Balance
}

func (s *memStore) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// memUoW is one transaction over memStore. Row locks acquired through it are
// released when Do returns, mirroring commit-time lock release.
type memUoW struct {
	store *memStore
	held  []*sync.Mutex
}

func (u *memUoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	tx := &memUoW{store: u.store}
	defer func() {
		for _, l := range tx.held {
			l.Unlock()
		}
	}()
	return fn(tx)
}

func (u *memUoW) AccountRepository() (repository.AccountRepository, error) {
	return &memAccounts{tx: u}, nil
}

func (u *memUoW) TransferRepository() (repository.TransferRepository, error) {
	return &memTransfers{tx: u}, nil
}

type memAccounts struct{ tx *memUoW }

func (r *memAccounts) lock(id uuid.UUID) (*domain.Account, error) {
	r.tx.store.mu.Lock()
	acct, ok := r.tx.store.accounts[id]
	rowLock := r.tx.store.rowLocks[id]
	r.tx.store.mu.Unlock()
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	rowLock.Lock()
	r.tx.held = append(r.tx.held, rowLock)

	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	copied := *acct
	return &copied, nil
}

func (r *memAccounts) LockByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	r.tx.store.mu.Lock()
	id, ok := r.tx.store.byNumber[accountNumber]
	r.tx.store.mu.Unlock()
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.lock(id)
}

func (r *memAccounts) LockByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return r.lock(id)
}

func (r *memAccounts) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	acct, ok := r.tx.store.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acct.Balance = balance
	return nil
}

type memTransfers struct{ tx *memUoW }

func (r *memTransfers) Exists(ctx context.Context, transactionID string, transferType domain.TransferType) (bool, error) {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	for _, e := range r.tx.store.entries {
		if e.TransactionID == transactionID && e.Type == transferType {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTransfers) FindByTransactionID(ctx context.Context, transactionID string, transferType domain.TransferType) (*domain.TransferHistory, error) {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	for i := range r.tx.store.entries {
		e := r.tx.store.entries[i]
		if e.TransactionID == transactionID && e.Type == transferType {
			return &e, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *memTransfers) Create(ctx context.Context, entry *domain.TransferHistory) error {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	for _, e := range r.tx.store.entries {
		if e.TransactionID == entry.TransactionID && e.Type == entry.Type {
			return domain.ErrDuplicateTransaction
		}
	}
	r.tx.store.entries = append(r.tx.store.entries, *entry)
	return nil
}

func (r *memTransfers) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransferStatus) error {
	r.tx.store.mu.Lock()
	defer r.tx.store.mu.Unlock()
	for i := range r.tx.store.entries {
		if r.tx.store.entries[i].ID == id {
			r.tx.store.entries[i].Status = status
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

func TestWithdraw_ConcurrentWithdrawsSerializeOnRowLock(t *testing.T) {
	acct := testAccount("111-111", 10_000)
	store := newMemStore(acct)
	svc := transfer.NewService(&memUoW{store: store}, fakeCipher{}, slog.Default())

	amounts := map[string]int64{"tx-a": 6_000, "tx-b": 7_000}
	errs := make(map[string]error, len(amounts))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for txID, amount := range amounts {
		wg.Add(1)
		go func(txID string, amount int64) {
			defer wg.Done()
			err := svc.Withdraw(context.Background(), transfer.WithdrawCommand{
				TransactionID:  txID,
				Account:        "enc:111-111",
				CounterAccount: "enc:222-222",
				Amount:         amount,
				Currency:       domain.CurrencyWon,
			})
			mu.Lock()
			errs[txID] = err
			mu.Unlock()
		}(txID, amount)
	}
	wg.Wait()

	// Exactly one of the two can fit within the balance.
	var succeeded []string
	for txID, err := range errs {
		if err == nil {
			succeeded = append(succeeded, txID)
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}
	}
	require.Len(t, succeeded, 1)
	assert.Equal(t, 10_000-amounts[succeeded[0]], store.balance(acct.ID))
	assert.Equal(t, 1, store.entryCount())
	assert.GreaterOrEqual(t, store.balance(acct.ID), int64(0))
}

func TestWithdraw_ConcurrentRedeliveryWritesOneEntry(t *testing.T) {
	acct := testAccount("111-111", 10_000)
	store := newMemStore(acct)
	svc := transfer.NewService(&memUoW{store: store}, fakeCipher{}, slog.Default())

	const deliveries = 8
	results := make(chan error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Withdraw(context.Background(), transfer.WithdrawCommand{
				TransactionID:  "tx-1",
				Account:        "enc:111-111",
				CounterAccount: "enc:222-222",
				Amount:         1_000,
				Currency:       domain.CurrencyWon,
			})
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, domain.ErrDuplicateTransaction)
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, deliveries-1, dup)
	assert.Equal(t, int64(9_000), store.balance(acct.ID))
	assert.Equal(t, 1, store.entryCount())
}

func TestCompensate_ConcurrentReplaysCreditOnce(t *testing.T) {
	acct := testAccount("111-111", 10_000)
	store := newMemStore(acct)
	svc := transfer.NewService(&memUoW{store: store}, fakeCipher{}, slog.Default())
	ctx := context.Background()

	require.NoError(t, svc.Withdraw(ctx, transfer.WithdrawCommand{
		TransactionID:  "tx-1",
		Account:        "enc:111-111",
		CounterAccount: "enc:222-222",
		Amount:         4_000,
		Currency:       domain.CurrencyWon,
	}))
	require.Equal(t, int64(6_000), store.balance(acct.ID))

	const replays = 4
	results := make(chan error, replays)
	var wg sync.WaitGroup
	for i := 0; i < replays; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Compensate(ctx, transfer.CompensateCommand{TransactionID: "tx-1"})
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyCompensated)
		}
	}
	assert.Equal(t, 1, ok, "exactly one replay performs the reversal")
	assert.Equal(t, int64(10_000), store.balance(acct.ID), "the credit must apply exactly once")
	assert.Equal(t, 2, store.entryCount())
}

func TestSaga_WithdrawDepositCompensateFlow(t *testing.T) {
	src := testAccount("111-111", 10_000)
	dst := testAccount("222-222", 500)
	store := newMemStore(src, dst)
	svc := transfer.NewService(&memUoW{store: store}, fakeCipher{}, slog.Default())
	ctx := context.Background()

	// Deposit before withdraw is refused.
	err := svc.Deposit(ctx, transfer.DepositCommand{
		TransactionID:  "tx-1",
		Account:        "enc:222-222",
		CounterAccount: "enc:111-111",
		Amount:         3_000,
		Currency:       domain.CurrencyWon,
	})
	require.ErrorIs(t, err, domain.ErrMissingPriorWithdraw)

	require.NoError(t, svc.Withdraw(ctx, transfer.WithdrawCommand{
		TransactionID:  "tx-1",
		Account:        "enc:111-111",
		CounterAccount: "enc:222-222",
		Amount:         3_000,
		Currency:       domain.CurrencyWon,
	}))
	assert.Equal(t, int64(7_000), store.balance(src.ID))

	require.NoError(t, svc.Deposit(ctx, transfer.DepositCommand{
		TransactionID:  "tx-1",
		Account:        "enc:222-222",
		CounterAccount: "enc:111-111",
		Amount:         3_000,
		Currency:       domain.CurrencyWon,
	}))
	assert.Equal(t, int64(3_500), store.balance(dst.ID))

	// Reversal credits the withdrawal back to the source account.
	require.NoError(t, svc.Compensate(ctx, transfer.CompensateCommand{TransactionID: "tx-1"}))
	assert.Equal(t, int64(10_000), store.balance(src.ID))

	// Replays of the compensation are rejected and move no money.
	err = svc.Compensate(ctx, transfer.CompensateCommand{TransactionID: "tx-1"})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompensated)
	assert.Equal(t, int64(10_000), store.balance(src.ID))
}
