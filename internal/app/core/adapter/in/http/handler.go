package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-pg-ledger/internal/app/core/usecase"
)

const (
	codeFatalError    = "E_FATAL_ERROR"
	fatalErrorMessage = "Fatal error occurred."
)

// ErrorResponse 錯誤回應格式
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// transactionRequest 新增交易與轉帳共用的選填欄位
type transactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Timestamp   *time.Time       `json:"timestamp"`
	Code        *string          `json:"code"`
	Description *string          `json:"description"`
	Meta        json.RawMessage  `json:"meta"`
}

func (r transactionRequest) options() []domain.TransactionOption {
	var opts []domain.TransactionOption
	if r.Timestamp != nil {
		opts = append(opts, domain.WithTimestamp(*r.Timestamp))
	}
	if r.Code != nil {
		opts = append(opts, domain.WithCode(*r.Code))
	}
	if r.Description != nil {
		opts = append(opts, domain.WithDescription(*r.Description))
	}
	if len(r.Meta) > 0 && string(r.Meta) != "null" {
		opts = append(opts, domain.WithMeta(r.Meta))
	}
	return opts
}

type transferRequest struct {
	transactionRequest
	FromAccountNumber string `json:"fromAccountNumber" binding:"required"`
	ToAccountNumber   string `json:"toAccountNumber" binding:"required"`
}

type historyRequest struct {
	Page *int   `form:"page"`
	Size *int   `form:"size"`
	From string `form:"from"`
	To   string `form:"to"`
}

// options 只給 page 或 size 其中一個時，另一個使用預設值
func (r historyRequest) options() (*domain.HistoryOptions, error) {
	opts := &domain.HistoryOptions{}
	if r.Page != nil || r.Size != nil {
		opts.Pagination = &domain.Pagination{PageNumber: domain.DefaultPageNumber, PageSize: domain.DefaultPageSize}
		if r.Page != nil {
			opts.Pagination.PageNumber = *r.Page
		}
		if r.Size != nil {
			opts.Pagination.PageSize = *r.Size
		}
	}
	if r.From == "" && r.To == "" {
		return opts, nil
	}
	if r.From == "" {
		return nil, domain.NewMissingArgumentError("from")
	}
	if r.To == "" {
		return nil, domain.NewMissingArgumentError("to")
	}
	from, err := time.Parse(time.RFC3339Nano, r.From)
	if err != nil {
		return nil, domain.NewInvalidArgumentError("from", err.Error())
	}
	to, err := time.Parse(time.RFC3339Nano, r.To)
	if err != nil {
		return nil, domain.NewInvalidArgumentError("to", err.Error())
	}
	opts.Date = &domain.DateRange{From: from, To: to}
	return opts, nil
}

type Handler struct {
	core *usecase.CoreUseCase
	log  *zap.Logger
}

func NewHandler(core *usecase.CoreUseCase, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		core: core,
		log:  log,
	}
}

// GetBalance GET /v1/accounts/:accountNumber/balance
func (h *Handler) GetBalance(c *gin.Context) {
	accountNumber := c.Param("accountNumber")
	balance, err := h.core.GetCurrentBalance(c.Request.Context(), accountNumber)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accountNumber": accountNumber,
		"balance":       balance,
	})
}

// AddTransaction POST /v1/accounts/:accountNumber/transactions
func (h *Handler) AddTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.NewInvalidArgumentError("body", err.Error()))
		return
	}
	result, err := h.core.AddTransaction(c.Request.Context(), c.Param("accountNumber"), *req.Amount, req.options()...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Transfer POST /v1/transfers
func (h *Handler) Transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.NewInvalidArgumentError("body", err.Error()))
		return
	}
	results, err := h.core.Transfer(c.Request.Context(), req.FromAccountNumber, *req.Amount, req.ToAccountNumber, req.options()...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transactions": results})
}

// GetAccountHistory GET /v1/accounts/:accountNumber/transactions?page=&size=&from=&to=
func (h *Handler) GetAccountHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, domain.NewInvalidArgumentError("query", err.Error()))
		return
	}
	opts, err := req.options()
	if err != nil {
		h.fail(c, err)
		return
	}
	history, err := h.core.GetAccountHistory(c.Request.Context(), c.Param("accountNumber"), opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetTransactionByCode GET /v1/transactions/:code
func (h *Handler) GetTransactionByCode(c *gin.Context) {
	tx, err := h.core.GetTransactionByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// fail 業務錯誤回傳 404 / 400，其他錯誤只記錄在 log，對外一律回傳 500
func (h *Handler) fail(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	switch code {
	case domain.CodeNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Code: string(code), Message: err.Error()})
	case domain.CodeInvalidPageNo, domain.CodeInvalidPageSize, domain.CodeMissingArgument, domain.CodeInvalidArgument:
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Code: string(code), Message: err.Error()})
	default:
		h.log.Error("ledger operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Code: codeFatalError, Message: fatalErrorMessage})
	}
}
