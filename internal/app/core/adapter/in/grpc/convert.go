package grpc

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
)

// field 取出欄位，null 視為沒有提供
func field(in *structpb.Struct, name string) (*structpb.Value, bool) {
	v, ok := in.GetFields()[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func stringField(in *structpb.Struct, name string) (string, bool, error) {
	v, ok := field(in, name)
	if !ok {
		return "", false, nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", false, domain.NewInvalidArgumentError(name, "must be a string")
	}
	return s.StringValue, true, nil
}

// requiredString 必填字串，空字串交給 usecase 判斷
func requiredString(in *structpb.Struct, name string) (string, error) {
	s, _, err := stringField(in, name)
	return s, err
}

// decimalField 金額可以是字串 ("100.25") 或數字
func decimalField(in *structpb.Struct, name string) (decimal.Decimal, error) {
	v, ok := field(in, name)
	if !ok {
		return decimal.Zero, domain.NewMissingArgumentError(name)
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(kind.StringValue)
		if err != nil {
			return decimal.Zero, domain.NewInvalidArgumentError(name, err.Error())
		}
		return d, nil
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return decimal.Zero, domain.NewInvalidArgumentError(name, "must be a finite number")
		}
		return decimal.NewFromFloat(kind.NumberValue), nil
	default:
		return decimal.Zero, domain.NewInvalidArgumentError(name, "must be a decimal string or number")
	}
}

func intField(in *structpb.Struct, name string) (int, bool, error) {
	v, ok := field(in, name)
	if !ok {
		return 0, false, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, false, domain.NewInvalidArgumentError(name, "must be an integer")
	}
	// float64(math.MaxInt) 是 2^63，本身就超出 int 範圍
	if n.NumberValue >= math.MaxInt || n.NumberValue < math.MinInt {
		return 0, false, domain.NewInvalidArgumentError(name, "out of range")
	}
	return int(n.NumberValue), true, nil
}

// timeField RFC 3339 格式的時間
func timeField(in *structpb.Struct, name string) (time.Time, bool, error) {
	s, ok, err := stringField(in, name)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false, domain.NewInvalidArgumentError(name, err.Error())
	}
	return t, true, nil
}

// transactionOptions 讀取 timestamp / code / description / meta
func transactionOptions(in *structpb.Struct) ([]domain.TransactionOption, error) {
	var opts []domain.TransactionOption
	ts, ok, err := timeField(in, "timestamp")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, domain.WithTimestamp(ts))
	}
	code, ok, err := stringField(in, "code")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, domain.WithCode(code))
	}
	description, ok, err := stringField(in, "description")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, domain.WithDescription(description))
	}
	if meta, ok := field(in, "meta"); ok {
		opts = append(opts, domain.WithMeta(meta.AsInterface()))
	}
	return opts, nil
}

// historyOptions 讀取 pageNumber / pageSize / from / to
// 只給其中一個分頁欄位時，另一個使用預設值；日期區間必須頭尾都給
func historyOptions(in *structpb.Struct) (*domain.HistoryOptions, error) {
	opts := &domain.HistoryOptions{}

	pageNumber, hasNumber, err := intField(in, "pageNumber")
	if err != nil {
		return nil, err
	}
	pageSize, hasSize, err := intField(in, "pageSize")
	if err != nil {
		return nil, err
	}
	if hasNumber || hasSize {
		opts.Pagination = &domain.Pagination{PageNumber: domain.DefaultPageNumber, PageSize: domain.DefaultPageSize}
		if hasNumber {
			opts.Pagination.PageNumber = pageNumber
		}
		if hasSize {
			opts.Pagination.PageSize = pageSize
		}
	}

	from, hasFrom, err := timeField(in, "from")
	if err != nil {
		return nil, err
	}
	to, hasTo, err := timeField(in, "to")
	if err != nil {
		return nil, err
	}
	switch {
	case hasFrom && hasTo:
		opts.Date = &domain.DateRange{From: from, To: to}
	case hasFrom:
		return nil, domain.NewMissingArgumentError("to")
	case hasTo:
		return nil, domain.NewMissingArgumentError("from")
	}
	return opts, nil
}

// toStruct 以 JSON 為中介轉成 Struct，欄位名稱沿用 domain 的 json tag
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to build response struct: %w", err)
	}
	return out, nil
}
