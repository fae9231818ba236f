package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-pg-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-pg-ledger/pkg/postgres"
)

// SQLSTATE
const (
	sqlStateNoDataFound    = "P0002"
	sqlStateNoData         = "02000"
	sqlStateUndefinedTable = "42P01"
)

// Querier 執行參數化查詢，*postgres.Client 即為實作
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) ([]postgres.Row, error)
}

// ViewNameCache 帳戶歷史 view 名稱的快取
type ViewNameCache interface {
	Get(ctx context.Context, accountNumber string) (string, bool)
	Set(ctx context.Context, accountNumber string, viewName string)
	Invalidate(ctx context.Context, accountNumber string)
}

// PostgresLedger 透過 stored procedure 存取帳務資料
// 餘額計算、轉帳與分區都在資料庫內完成，這裡只負責組裝呼叫與整理結果
//
// 結構:
//
//	db: 連線池
//	naming: schema / prefix 命名規則
//	now: 取得當下時間 (測試可替換)
//	viewNames: 歷史 view 名稱快取，nil 代表每次都向資料庫查詢
type PostgresLedger struct {
	db        Querier
	naming    Naming
	now       func() time.Time
	viewNames ViewNameCache
}

// LedgerOption 定義了 PostgresLedger 的配置選項函數
type LedgerOption func(*PostgresLedger)

// WithClock 替換取得當下時間的函數
func WithClock(now func() time.Time) LedgerOption {
	return func(l *PostgresLedger) {
		l.now = now
	}
}

// WithViewNameCache 啟用歷史 view 名稱快取
func WithViewNameCache(cache ViewNameCache) LedgerOption {
	return func(l *PostgresLedger) {
		l.viewNames = cache
	}
}

// NewPostgresLedger 建立 PostgresLedger
//
// 參數:
//
//	db: 連線池
//	naming: 命名規則
//	opts: 可選設定
func NewPostgresLedger(db Querier, naming Naming, opts ...LedgerOption) (*PostgresLedger, error) {
	if db == nil {
		return nil, domain.NewMissingArgumentError("connectionPool")
	}
	if naming.schema == "" {
		return nil, domain.NewMissingArgumentError("databaseConfig")
	}
	ledger := &PostgresLedger{
		db:     db,
		naming: naming,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ledger)
	}
	return ledger, nil
}

// ensureTransactionPartition 確保當期的交易分區存在
// 每次寫入前都呼叫一次，分區已存在時資料庫端不做任何事
func (l *PostgresLedger) ensureTransactionPartition(ctx context.Context) error {
	sql := fmt.Sprintf("SELECT * FROM %s(%s())",
		l.naming.Qualify(opCreateTransactionPeriod),
		l.naming.Qualify(opCurrentPeriod),
	)
	_, err := l.db.Query(ctx, sql)
	return err
}

// GetCurrentBalance 取得帳戶餘額
func (l *PostgresLedger) GetCurrentBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	sql := fmt.Sprintf("SELECT balance FROM %s(?) AS balance", l.naming.Qualify(opGetBalance))
	rows, err := l.db.Query(ctx, sql, accountNumber)
	if err != nil {
		return decimal.Zero, notFoundFromStore(err, fmt.Sprintf("Account '%s' does not exist.", accountNumber))
	}
	if len(rows) == 0 {
		return decimal.Zero, domain.NewNotFoundError(fmt.Sprintf("Account '%s' does not exist.", accountNumber), nil)
	}
	return requiredDecimal(rows[0], colBalance)
}

// AddTransaction 新增一筆交易
//
// 參數順序固定為: 帳號, 金額, 代碼, 時間, 說明, metadata
func (l *PostgresLedger) AddTransaction(ctx context.Context, accountNumber string, amount decimal.Decimal, opts ...domain.TransactionOption) (domain.TransactionResult, error) {
	o := domain.NewTransactionOptions(opts...)
	meta, err := encodeMeta(o.Meta)
	if err != nil {
		return domain.TransactionResult{}, err
	}

	if err := l.ensureTransactionPartition(ctx); err != nil {
		return domain.TransactionResult{}, err
	}

	sql := fmt.Sprintf("SELECT * FROM %s(?, ?, ?, ?, ?, ?)", l.naming.Qualify(opInsertTransaction))
	rows, err := l.db.Query(ctx, sql,
		accountNumber,
		amount,
		optionalString(o.Code),
		o.TimestampOr(l.now()),
		optionalString(o.Description),
		meta,
	)
	if err != nil {
		return domain.TransactionResult{}, err
	}
	if len(rows) == 0 {
		return domain.TransactionResult{}, fmt.Errorf("%s returned no rows", l.naming.Name(opInsertTransaction))
	}
	return toTransactionResult(rows[0])
}

// Transfer 從 fromAccountNumber 轉帳到 toAccountNumber
// 兩筆交易由資料庫在同一個 transaction 內完成
//
// 參數順序固定為: 轉出帳號, 金額, 轉入帳號, 代碼, 時間, 說明, metadata
func (l *PostgresLedger) Transfer(ctx context.Context, fromAccountNumber string, amount decimal.Decimal, toAccountNumber string, opts ...domain.TransactionOption) ([]domain.TransactionResult, error) {
	o := domain.NewTransactionOptions(opts...)
	meta, err := encodeMeta(o.Meta)
	if err != nil {
		return nil, err
	}

	if err := l.ensureTransactionPartition(ctx); err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT * FROM %s(?, ?, ?, ?, ?, ?, ?)", l.naming.Qualify(opTransfer))
	rows, err := l.db.Query(ctx, sql,
		fromAccountNumber,
		amount,
		toAccountNumber,
		optionalString(o.Code),
		o.TimestampOr(l.now()),
		optionalString(o.Description),
		meta,
	)
	if err != nil {
		return nil, err
	}

	results := make([]domain.TransactionResult, 0, len(rows))
	for _, row := range rows {
		result, err := toTransactionResult(row)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// GetAccountHistory 分頁查詢帳戶交易歷史
// 分頁參數錯誤時不會送出任何查詢
func (l *PostgresLedger) GetAccountHistory(ctx context.Context, accountNumber string, opts *domain.HistoryOptions) (domain.HistoryResult, error) {
	query, err := domain.ResolveHistoryQuery(opts, l.now())
	if err != nil {
		return domain.HistoryResult{}, err
	}

	viewName, err := l.accountHistoryViewName(ctx, accountNumber)
	if err != nil {
		return domain.HistoryResult{}, err
	}

	// view 名稱來自資料庫，不是使用者輸入
	sql := fmt.Sprintf(
		"SELECT *, count(code) OVER() AS total_count FROM %s WHERE timestamp >= ? AND timestamp <= ? LIMIT ? OFFSET ?",
		viewName,
	)
	rows, err := l.db.Query(ctx, sql,
		query.Date.From,
		query.Date.To,
		query.Pagination.PageSize,
		query.Offset(),
	)
	if err != nil {
		// 分區輪替後舊的 view 會消失，快取必須跟著失效
		if l.viewNames != nil && hasSQLState(err, sqlStateUndefinedTable) {
			l.viewNames.Invalidate(ctx, accountNumber)
		}
		return domain.HistoryResult{}, err
	}

	result := domain.HistoryResult{
		CurrentPage:  query.Pagination.PageNumber,
		PageSize:     query.Pagination.PageSize,
		TotalCount:   0,
		Transactions: make([]domain.Transaction, 0, len(rows)),
	}
	if len(rows) > 0 {
		if result.TotalCount, err = asInt64(rows[0][colTotalCount]); err != nil {
			return domain.HistoryResult{}, fmt.Errorf("column %q: %w", colTotalCount, err)
		}
	}
	for _, row := range rows {
		tx, err := toTransaction(row)
		if err != nil {
			return domain.HistoryResult{}, err
		}
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

// accountHistoryViewName 取得帳戶歷史 view 的名稱
func (l *PostgresLedger) accountHistoryViewName(ctx context.Context, accountNumber string) (string, error) {
	if l.viewNames != nil {
		if name, ok := l.viewNames.Get(ctx, accountNumber); ok {
			return name, nil
		}
	}

	sql := fmt.Sprintf("SELECT %s(?) AS view_name", l.naming.Qualify(opGetAccountHistoryViewName))
	rows, err := l.db.Query(ctx, sql, accountNumber)
	if err != nil {
		return "", notFoundFromStore(err, fmt.Sprintf("Account '%s' does not exist.", accountNumber))
	}
	if len(rows) == 0 || rows[0][colViewName] == nil {
		return "", domain.NewNotFoundError(fmt.Sprintf("Account '%s' does not exist.", accountNumber), nil)
	}
	name, err := asString(rows[0][colViewName])
	if err != nil {
		return "", fmt.Errorf("column %q: %w", colViewName, err)
	}
	if name == "" {
		return "", domain.NewNotFoundError(fmt.Sprintf("Account '%s' does not exist.", accountNumber), nil)
	}

	if l.viewNames != nil {
		l.viewNames.Set(ctx, accountNumber, name)
	}
	return name, nil
}

// GetTransactionByCode 以交易代碼查詢單筆交易
func (l *PostgresLedger) GetTransactionByCode(ctx context.Context, code string) (domain.Transaction, error) {
	sql := fmt.Sprintf("SELECT * FROM %s WHERE code = ? LIMIT 1", l.naming.Qualify(relTransaction))
	rows, err := l.db.Query(ctx, sql, code)
	if err != nil {
		return domain.Transaction{}, err
	}
	if len(rows) == 0 {
		return domain.Transaction{}, domain.NewNotFoundError(fmt.Sprintf("Transaction with code '%s' does not exist.", code), nil)
	}
	return toTransaction(rows[0])
}

// optionalString 未提供的選填字串以 nil 送出 (NULL)，不能省略以免參數錯位
func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// notFoundFromStore 資料庫明確回報查無資料時轉成 E_NOT_FOUND，其他錯誤原樣回傳
func notFoundFromStore(err error, message string) error {
	if hasSQLState(err, sqlStateNoDataFound) || hasSQLState(err, sqlStateNoData) {
		return domain.NewNotFoundError(message, err)
	}
	return err
}

var _ usecase.Ledger = (*PostgresLedger)(nil)
