package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDateRange(t *testing.T) {
	now := time.Date(2024, time.March, 10, 14, 35, 12, 123, time.UTC)

	r := DefaultDateRange(now)

	assert.Equal(t, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2024, time.March, 10, 23, 59, 59, 999000000, time.UTC), r.To)
}

func TestDefaultDateRangeAcrossYearBoundary(t *testing.T) {
	now := time.Date(2025, time.January, 15, 8, 0, 0, 0, time.UTC)

	r := DefaultDateRange(now)

	assert.Equal(t, time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2025, time.January, 15, 23, 59, 59, 999000000, time.UTC), r.To)
}

func TestDefaultDateRangeFromBeforeTo(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 3*366; day++ {
		now := start.AddDate(0, 0, day).Add(17 * time.Hour)
		r := DefaultDateRange(now)
		require.Truef(t, r.From.Before(r.To), "from %v not before to %v (now %v)", r.From, r.To, now)
	}
}

func TestResolveHistoryQueryDefaults(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	q, err := ResolveHistoryQuery(nil, now)
	require.NoError(t, err)

	assert.Equal(t, Pagination{PageNumber: 1, PageSize: 20}, q.Pagination)
	assert.Equal(t, DefaultDateRange(now), q.Date)
	assert.Equal(t, 0, q.Offset())
}

func TestResolveHistoryQueryKeepsCallerValues(t *testing.T) {
	from := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)

	q, err := ResolveHistoryQuery(&HistoryOptions{
		Pagination: &Pagination{PageNumber: 3, PageSize: 7},
		Date:       &DateRange{From: from, To: to},
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 3, q.Pagination.PageNumber)
	assert.Equal(t, 7, q.Pagination.PageSize)
	assert.Equal(t, from, q.Date.From)
	assert.Equal(t, to, q.Date.To)
	assert.Equal(t, 14, q.Offset())
}

func TestResolveHistoryQueryDateOnlyKeepsDefaultPagination(t *testing.T) {
	q, err := ResolveHistoryQuery(&HistoryOptions{
		Date: &DateRange{From: time.Unix(0, 0), To: time.Unix(100, 0)},
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Pagination{PageNumber: DefaultPageNumber, PageSize: DefaultPageSize}, q.Pagination)
}

func TestResolveHistoryQueryRejectsBadPagination(t *testing.T) {
	tests := []struct {
		name       string
		pagination Pagination
		code       ErrorCode
	}{
		{"zero page number", Pagination{PageNumber: 0, PageSize: 20}, CodeInvalidPageNo},
		{"negative page number", Pagination{PageNumber: -2, PageSize: 20}, CodeInvalidPageNo},
		{"zero page size", Pagination{PageNumber: 1, PageSize: 0}, CodeInvalidPageSize},
		{"negative page size", Pagination{PageNumber: 1, PageSize: -1}, CodeInvalidPageSize},
		{"offset overflows", Pagination{PageNumber: math.MaxInt, PageSize: 2}, CodeInvalidPageNo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.pagination
			_, err := ResolveHistoryQuery(&HistoryOptions{Pagination: &p}, time.Now())
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
		})
	}
}

func TestResolveHistoryQueryLargestOffset(t *testing.T) {
	p := Pagination{PageNumber: math.MaxInt/2 + 1, PageSize: 2}
	q, err := ResolveHistoryQuery(&HistoryOptions{Pagination: &p}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt-1, q.Offset())

	p = Pagination{PageNumber: 2, PageSize: math.MaxInt}
	q, err = ResolveHistoryQuery(&HistoryOptions{Pagination: &p}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, q.Offset())
}

func TestHistoryQueryOffsetNeverNegative(t *testing.T) {
	for page := 1; page <= 50; page++ {
		for size := 1; size <= 50; size++ {
			q := HistoryQuery{Pagination: Pagination{PageNumber: page, PageSize: size}}
			require.Equal(t, (page-1)*size, q.Offset())
			require.GreaterOrEqual(t, q.Offset(), 0)
		}
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("Transaction with code 'X' does not exist.", nil)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidPageSize))
	assert.Equal(t, "Transaction with code 'X' does not exist.", err.Error())
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("no_data_found")
	err := NewNotFoundError("account not found", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(cause))
}

func TestTransactionOptions(t *testing.T) {
	now := time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)
	ts := now.Add(-time.Hour)

	empty := NewTransactionOptions()
	assert.Nil(t, empty.Code)
	assert.Nil(t, empty.Description)
	assert.Nil(t, empty.Meta)
	assert.Equal(t, now, empty.TimestampOr(now))

	full := NewTransactionOptions(
		WithTimestamp(ts),
		WithCode("C-1"),
		WithDescription("rent"),
		WithMeta(map[string]any{"k": "v"}),
	)
	require.NotNil(t, full.Code)
	require.NotNil(t, full.Description)
	assert.Equal(t, "C-1", *full.Code)
	assert.Equal(t, "rent", *full.Description)
	assert.Equal(t, map[string]any{"k": "v"}, full.Meta)
	assert.Equal(t, ts, full.TimestampOr(now))
}
