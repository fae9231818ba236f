package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層
// 只負責檢查必要參數，其餘直接交給 Ledger
type CoreUseCase struct {
	ledger Ledger
}

func NewCoreUseCase(ledger Ledger) *CoreUseCase {
	return &CoreUseCase{
		ledger: ledger,
	}
}

// GetCurrentBalance 取得帳戶餘額
func (c *CoreUseCase) GetCurrentBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	if accountNumber == "" {
		return decimal.Zero, domain.NewMissingArgumentError("accountNumber")
	}
	return c.ledger.GetCurrentBalance(ctx, accountNumber)
}

// AddTransaction 新增交易
func (c *CoreUseCase) AddTransaction(ctx context.Context, accountNumber string, amount decimal.Decimal, opts ...domain.TransactionOption) (domain.TransactionResult, error) {
	if accountNumber == "" {
		return domain.TransactionResult{}, domain.NewMissingArgumentError("accountNumber")
	}
	return c.ledger.AddTransaction(ctx, accountNumber, amount, opts...)
}

// Transfer 轉帳
func (c *CoreUseCase) Transfer(ctx context.Context, fromAccountNumber string, amount decimal.Decimal, toAccountNumber string, opts ...domain.TransactionOption) ([]domain.TransactionResult, error) {
	if fromAccountNumber == "" {
		return nil, domain.NewMissingArgumentError("fromAccountNumber")
	}
	if toAccountNumber == "" {
		return nil, domain.NewMissingArgumentError("toAccountNumber")
	}
	return c.ledger.Transfer(ctx, fromAccountNumber, amount, toAccountNumber, opts...)
}

// GetAccountHistory 查詢交易歷史
func (c *CoreUseCase) GetAccountHistory(ctx context.Context, accountNumber string, opts *domain.HistoryOptions) (domain.HistoryResult, error) {
	if accountNumber == "" {
		return domain.HistoryResult{}, domain.NewMissingArgumentError("accountNumber")
	}
	return c.ledger.GetAccountHistory(ctx, accountNumber, opts)
}

// GetTransactionByCode 以交易代碼查詢
func (c *CoreUseCase) GetTransactionByCode(ctx context.Context, code string) (domain.Transaction, error) {
	if code == "" {
		return domain.Transaction{}, domain.NewMissingArgumentError("code")
	}
	return c.ledger.GetTransactionByCode(ctx, code)
}
