package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-pg-ledger/pkg/postgres"
)

// 資料庫回傳的欄位名稱
const (
	colTimestamp     = "timestamp"
	colCode          = "code"
	colAccountNumber = "account_number"
	colAccountCamel  = "accountNumber"
	colAmount        = "amount"
	colBalance       = "balance"
	colDescription   = "description"
	colMeta          = "meta"
	colTotalCount    = "total_count"
	colViewName      = "view_name"
)

// toTransactionResult 將 insert_transaction / transfer 回傳的資料列轉成 TransactionResult
func toTransactionResult(row postgres.Row) (domain.TransactionResult, error) {
	code, err := requiredString(row, colCode)
	if err != nil {
		return domain.TransactionResult{}, err
	}
	balance, err := requiredDecimal(row, colBalance)
	if err != nil {
		return domain.TransactionResult{}, err
	}
	return domain.TransactionResult{Code: code, Balance: balance}, nil
}

// toTransaction 將交易資料列轉成對外的 Transaction
// 只挑選公開欄位，其餘資料庫內部欄位 (id、分區鍵、total_count...) 一律丟棄
func toTransaction(row postgres.Row) (domain.Transaction, error) {
	var tx domain.Transaction
	var err error

	if tx.Timestamp, err = requiredTime(row, colTimestamp); err != nil {
		return domain.Transaction{}, err
	}
	if tx.Code, err = requiredString(row, colCode); err != nil {
		return domain.Transaction{}, err
	}

	// 帳號在資料庫是固定長度欄位，需去掉補齊的空白
	account, ok := row[colAccountNumber]
	if !ok {
		account, ok = row[colAccountCamel]
	}
	if !ok || account == nil {
		return domain.Transaction{}, fmt.Errorf("missing column %q", colAccountNumber)
	}
	accountNumber, err := asString(account)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("column %q: %w", colAccountNumber, err)
	}
	tx.AccountNumber = strings.TrimSpace(accountNumber)

	if tx.Amount, err = requiredDecimal(row, colAmount); err != nil {
		return domain.Transaction{}, err
	}
	if tx.Balance, err = requiredDecimal(row, colBalance); err != nil {
		return domain.Transaction{}, err
	}

	if v := row[colDescription]; v != nil {
		description, err := asString(v)
		if err != nil {
			return domain.Transaction{}, fmt.Errorf("column %q: %w", colDescription, err)
		}
		tx.Description = &description
	}
	tx.Meta = decodeMeta(row[colMeta])
	return tx, nil
}

// encodeMeta 將 metadata 轉成 JSON 文字交給資料庫，nil 保持 nil (NULL)
func encodeMeta(meta any) (any, error) {
	switch v := meta.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if v == nil {
			return nil, nil
		}
		return string(v), nil
	case []byte:
		if v == nil {
			return nil, nil
		}
		return string(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, domain.NewInvalidArgumentError("meta", err.Error())
		}
		return string(b), nil
	}
}

// decodeMeta 解析資料庫回傳的 metadata
// jsonb 經由 driver 會是字串，無法解析時原樣回傳
func decodeMeta(v any) any {
	var raw []byte
	switch m := v.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(m)
	case []byte:
		raw = m
	default:
		return v
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}

func requiredString(row postgres.Row, col string) (string, error) {
	v, ok := row[col]
	if !ok || v == nil {
		return "", fmt.Errorf("missing column %q", col)
	}
	s, err := asString(v)
	if err != nil {
		return "", fmt.Errorf("column %q: %w", col, err)
	}
	return s, nil
}

func requiredDecimal(row postgres.Row, col string) (decimal.Decimal, error) {
	v, ok := row[col]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("missing column %q", col)
	}
	d, err := asDecimal(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("column %q: %w", col, err)
	}
	return d, nil
}

func requiredTime(row postgres.Row, col string) (time.Time, error) {
	v, ok := row[col]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("missing column %q", col)
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("column %q: %w", col, err)
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("column %q: unsupported type %T", col, v)
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case string:
		return decimal.NewFromString(n)
	case []byte:
		return decimal.NewFromString(string(n))
	case int64:
		return decimal.NewFromInt(n), nil
	case int32:
		return decimal.NewFromInt32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", v)
	}
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
