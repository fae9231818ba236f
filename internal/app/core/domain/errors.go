package domain

import (
	"errors"
	"fmt"
)

// ErrorCode 對外公開的錯誤代碼，由外層 (HTTP / gRPC) 轉換為狀態碼
type ErrorCode string

const (
	CodeNotFound        ErrorCode = "E_NOT_FOUND"
	CodeInvalidPageNo   ErrorCode = "E_INVALID_PAGE_NO"
	CodeInvalidPageSize ErrorCode = "E_INVALID_PAGE_SIZE"
	CodeMissingArgument ErrorCode = "E_MISSING_ARGUMENT"
	CodeInvalidArgument ErrorCode = "E_INVALID_ARGUMENT"
)

// Error 帶有錯誤代碼的業務錯誤
//
// 結構:
//
//	Code: 錯誤代碼
//	Message: 給呼叫端看的訊息
//	Err: 原始錯誤 (例如資料庫回傳的錯誤)，可為 nil
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 只比較錯誤代碼，讓 errors.Is(err, ErrNotFound) 對任何 E_NOT_FOUND 都成立
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	// ErrNotFound 查無資料
	ErrNotFound = &Error{Code: CodeNotFound, Message: "not found"}

	// ErrInvalidPageNumber 頁碼必須從 1 開始
	ErrInvalidPageNumber = &Error{Code: CodeInvalidPageNo, Message: "pageNumber must be 1-based positive number."}

	// ErrInvalidPageSize 每頁筆數至少 1
	ErrInvalidPageSize = &Error{Code: CodeInvalidPageSize, Message: "pageSize must be greater than or equal to 1."}

	// ErrMissingArgument 缺少必要參數
	ErrMissingArgument = &Error{Code: CodeMissingArgument, Message: "missing argument"}

	// ErrInvalidArgument 參數格式錯誤
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
)

// NewMissingArgumentError 建立指明參數名稱的 ErrMissingArgument
func NewMissingArgumentError(name string) error {
	return &Error{
		Code:    CodeMissingArgument,
		Message: fmt.Sprintf("missing argument: %s", name),
	}
}

// NewInvalidArgumentError 建立指明參數名稱與原因的 ErrInvalidArgument
func NewInvalidArgumentError(name string, reason string) error {
	return &Error{
		Code:    CodeInvalidArgument,
		Message: fmt.Sprintf("invalid argument %s: %s", name, reason),
	}
}

// NewNotFoundError 建立帶訊息的 ErrNotFound，cause 可為 nil
func NewNotFoundError(message string, cause error) error {
	return &Error{
		Code:    CodeNotFound,
		Message: message,
		Err:     cause,
	}
}

// CodeOf 取出錯誤代碼，非業務錯誤回傳空字串
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
