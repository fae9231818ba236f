package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction 已入帳的交易紀錄 (不可變)
// Balance 是套用此筆交易之後的帳戶餘額，由資料庫計算
type Transaction struct {
	Timestamp     time.Time       `json:"timestamp"`
	Code          string          `json:"code"`
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	// Description 人看的補充說明，資料庫為 NULL 時為 nil
	Description *string `json:"description,omitempty"`
	// Meta 機器看的補充資料，內容不做任何解析
	Meta any `json:"meta,omitempty"`
}

// TransactionResult 新增交易 / 轉帳後回傳的結果
type TransactionResult struct {
	Code    string          `json:"code"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionOptions 新增交易與轉帳共用的選填欄位
// nil 代表呼叫端沒有提供，送進資料庫時會是 NULL (Timestamp 例外，預設為當下時間)
type TransactionOptions struct {
	Timestamp   *time.Time
	Code        *string
	Description *string
	Meta        any
}

// TransactionOption 定義了 TransactionOptions 的配置選項函數
type TransactionOption func(*TransactionOptions)

// WithTimestamp 指定交易發生時間
func WithTimestamp(ts time.Time) TransactionOption {
	return func(o *TransactionOptions) {
		o.Timestamp = &ts
	}
}

// WithCode 指定交易代碼；未指定時由資料庫產生
func WithCode(code string) TransactionOption {
	return func(o *TransactionOptions) {
		o.Code = &code
	}
}

// WithDescription 指定交易說明
func WithDescription(description string) TransactionOption {
	return func(o *TransactionOptions) {
		o.Description = &description
	}
}

// WithMeta 指定交易的 metadata
func WithMeta(meta any) TransactionOption {
	return func(o *TransactionOptions) {
		o.Meta = meta
	}
}

// NewTransactionOptions 套用所有選項並回傳結果
func NewTransactionOptions(opts ...TransactionOption) TransactionOptions {
	var o TransactionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TimestampOr 回傳指定的交易時間，未指定則回傳 now
func (o TransactionOptions) TimestampOr(now time.Time) time.Time {
	if o.Timestamp == nil {
		return now
	}
	return *o.Timestamp
}
