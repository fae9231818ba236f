package postgres

import (
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
)

// 資料庫物件的基本名稱，實際名稱為 schema + prefix + 基本名稱
const (
	opGetBalance                = "get_balance"
	opInsertTransaction         = "insert_transaction"
	opTransfer                  = "transfer"
	opCurrentPeriod             = "current_period"
	opCreateTransactionPeriod   = "create_transaction_period"
	opGetAccountHistoryViewName = "get_account_history_view_name"
	relTransaction              = "transaction"
)

var prefixPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Naming 集中處理 schema 與 prefix，呼叫端不會寫死任何資料庫物件名稱
type Naming struct {
	schema string
	prefix string
}

// NewNaming 建立 Naming
//
// 參數:
//
//	schema: 資料庫 schema 名稱 (必填)
//	prefix: 資料庫物件名稱前綴 (可為空，只允許小寫英數與底線)
func NewNaming(schema string, prefix string) (Naming, error) {
	if schema == "" {
		return Naming{}, domain.NewMissingArgumentError("schemaName")
	}
	if prefix != "" && !prefixPattern.MatchString(prefix) {
		return Naming{}, domain.NewInvalidArgumentError("databaseItemsPrefix", "must match "+prefixPattern.String())
	}
	return Naming{schema: schema, prefix: prefix}, nil
}

// Name 回傳加上 prefix 的名稱 (不含 schema)
func (n Naming) Name(base string) string {
	return n.prefix + base
}

// Qualify 回傳可直接放進 SQL 的完整名稱，例如 "ledger".bank_get_balance
func (n Naming) Qualify(base string) string {
	return pgx.Identifier{n.schema}.Sanitize() + "." + n.Name(base)
}
