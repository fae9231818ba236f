package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
)

// Ledger 是帳務系統的介面
// 餘額計算、轉帳原子性都由實作背後的資料庫負責，實作本身不保存跨呼叫的狀態
type Ledger interface {
	// GetCurrentBalance 取得帳戶目前餘額
	GetCurrentBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error)
	// AddTransaction 新增一筆交易
	AddTransaction(ctx context.Context, accountNumber string, amount decimal.Decimal, opts ...domain.TransactionOption) (domain.TransactionResult, error)
	// Transfer 轉帳，回傳扣款與入帳兩筆結果
	Transfer(ctx context.Context, fromAccountNumber string, amount decimal.Decimal, toAccountNumber string, opts ...domain.TransactionOption) ([]domain.TransactionResult, error)
	// GetAccountHistory 分頁查詢帳戶交易歷史
	GetAccountHistory(ctx context.Context, accountNumber string, opts *domain.HistoryOptions) (domain.HistoryResult, error)
	// GetTransactionByCode 以交易代碼查詢交易
	GetTransactionByCode(ctx context.Context, code string) (domain.Transaction, error)
}
