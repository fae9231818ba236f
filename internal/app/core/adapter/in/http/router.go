package http

import (
	"strconv"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-pg-ledger/pkg/metrics"
)

// NewRouter 建立 HTTP 路由
//
// 參數:
//
//	h: 帳務 handler
//	log: 請求 log 與 panic recovery 使用
//	m: Prometheus 指標，同時提供 /metrics
func NewRouter(h *Handler, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(ginzap.Ginzap(log, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(log, true))
	router.Use(metricsMiddleware(m))

	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/v1")
	{
		v1.GET("/accounts/:accountNumber/balance", h.GetBalance)
		v1.POST("/accounts/:accountNumber/transactions", h.AddTransaction)
		v1.GET("/accounts/:accountNumber/transactions", h.GetAccountHistory)
		v1.POST("/transfers", h.Transfer)
		v1.GET("/transactions/:code", h.GetTransactionByCode)
	}
	return router
}

// metricsMiddleware 以路由樣板 (不是實際路徑) 作為 method 標籤
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" || route == "/metrics" {
			return
		}
		m.Observe("http", c.Request.Method+" "+route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
