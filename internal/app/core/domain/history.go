package domain

import (
	"math"
	"time"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
)

// Pagination 分頁設定，PageNumber 從 1 開始
type Pagination struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// DateRange 日期篩選範圍 (包含頭尾)
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// HistoryOptions 查詢交易歷史時呼叫端可以覆寫的設定，nil 欄位使用預設值
type HistoryOptions struct {
	Pagination *Pagination `json:"pagination,omitempty"`
	Date       *DateRange  `json:"date,omitempty"`
}

// HistoryQuery 套用預設值並驗證過的查詢條件
type HistoryQuery struct {
	Pagination Pagination
	Date       DateRange
}

// Offset 回傳 SQL OFFSET，第一頁為 0
func (q HistoryQuery) Offset() int {
	if q.Pagination.PageNumber <= 1 {
		return 0
	}
	return (q.Pagination.PageNumber - 1) * q.Pagination.PageSize
}

// HistoryResult 一頁交易歷史
// TotalCount 是符合條件的總筆數，與分頁無關
type HistoryResult struct {
	CurrentPage  int           `json:"currentPage"`
	PageSize     int           `json:"pageSize"`
	TotalCount   int64         `json:"totalCount"`
	Transactions []Transaction `json:"transactions"`
}

// DefaultDateRange 回傳預設的查詢區間：一個月前的同一天 00:00:00.000 到今天 23:59:59.999
// 月份天數不足時依 time.AddDate 的規則進位 (例如 3/31 的前一個月為 3/3)
func DefaultDateRange(now time.Time) DateRange {
	y, m, d := now.Date()
	loc := now.Location()
	return DateRange{
		From: time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, -1, 0),
		To:   time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// ResolveHistoryQuery 將呼叫端設定合併到預設值之上並驗證分頁參數
//
// 參數:
//
//	opts: 呼叫端設定，可為 nil
//	now: 計算預設日期區間用的當下時間
//
// 回傳:
//
//	HistoryQuery: 可直接拿來組 SQL 的查詢條件
//	error: ErrInvalidPageNumber / ErrInvalidPageSize
func ResolveHistoryQuery(opts *HistoryOptions, now time.Time) (HistoryQuery, error) {
	query := HistoryQuery{
		Pagination: Pagination{PageNumber: DefaultPageNumber, PageSize: DefaultPageSize},
	}
	if opts != nil && opts.Pagination != nil {
		query.Pagination = *opts.Pagination
	}
	if opts != nil && opts.Date != nil {
		query.Date = *opts.Date
	} else {
		query.Date = DefaultDateRange(now)
	}

	if query.Pagination.PageNumber < 1 {
		return HistoryQuery{}, ErrInvalidPageNumber
	}
	if query.Pagination.PageSize < 1 {
		return HistoryQuery{}, ErrInvalidPageSize
	}
	// OFFSET 不能溢位
	if query.Pagination.PageNumber-1 > math.MaxInt/query.Pagination.PageSize {
		return HistoryQuery{}, ErrInvalidPageNumber
	}
	return query, nil
}
