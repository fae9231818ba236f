package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
)

// countingLedger 只記錄被呼叫的次數
type countingLedger struct {
	calls int
}

func (l *countingLedger) GetCurrentBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	l.calls++
	return decimal.NewFromInt(42), nil
}

func (l *countingLedger) AddTransaction(ctx context.Context, accountNumber string, amount decimal.Decimal, opts ...domain.TransactionOption) (domain.TransactionResult, error) {
	l.calls++
	return domain.TransactionResult{Code: "C", Balance: amount}, nil
}

func (l *countingLedger) Transfer(ctx context.Context, fromAccountNumber string, amount decimal.Decimal, toAccountNumber string, opts ...domain.TransactionOption) ([]domain.TransactionResult, error) {
	l.calls++
	return []domain.TransactionResult{{Code: "T"}, {Code: "T"}}, nil
}

func (l *countingLedger) GetAccountHistory(ctx context.Context, accountNumber string, opts *domain.HistoryOptions) (domain.HistoryResult, error) {
	l.calls++
	return domain.HistoryResult{CurrentPage: 1, PageSize: 20}, nil
}

func (l *countingLedger) GetTransactionByCode(ctx context.Context, code string) (domain.Transaction, error) {
	l.calls++
	return domain.Transaction{Code: code}, nil
}

func TestCoreUseCaseRejectsMissingArguments(t *testing.T) {
	ledger := &countingLedger{}
	core := NewCoreUseCase(ledger)
	ctx := context.Background()

	_, err := core.GetCurrentBalance(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	_, err = core.AddTransaction(ctx, "", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	_, err = core.Transfer(ctx, "A1", decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	_, err = core.Transfer(ctx, "", decimal.NewFromInt(1), "A2")
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	_, err = core.GetAccountHistory(ctx, "", nil)
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	_, err = core.GetTransactionByCode(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingArgument)

	assert.Zero(t, ledger.calls)
}

func TestCoreUseCaseForwardsToLedger(t *testing.T) {
	ledger := &countingLedger{}
	core := NewCoreUseCase(ledger)
	ctx := context.Background()

	balance, err := core.GetCurrentBalance(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(42)))

	res, err := core.AddTransaction(ctx, "A1", decimal.NewFromInt(7))
	require.NoError(t, err)
	assert.Equal(t, "C", res.Code)

	legs, err := core.Transfer(ctx, "A1", decimal.NewFromInt(7), "A2")
	require.NoError(t, err)
	assert.Len(t, legs, 2)

	_, err = core.GetAccountHistory(ctx, "A1", nil)
	require.NoError(t, err)

	tx, err := core.GetTransactionByCode(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "X", tx.Code)

	assert.Equal(t, 5, ledger.calls)
}
