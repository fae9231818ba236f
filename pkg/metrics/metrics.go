package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 帳務服務的 Prometheus 指標
type Metrics struct {
	registry *prometheus.Registry
	// RequestDuration 每個對外操作的耗時，依 transport (grpc/http)、method、結果代碼分類
	RequestDuration *prometheus.HistogramVec
}

// New 建立獨立的 registry 並註冊所有指標 (含 Go runtime 與 process 指標)
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "rpc_duration_seconds",
			Help:      "Duration of ledger operations by transport, method and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "method", "code"}),
	}
	registry.MustRegister(
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe 記錄一次操作
func (m *Metrics) Observe(transport string, method string, code string, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(transport, method, code).Observe(elapsed.Seconds())
}

// Handler 回傳 /metrics 使用的 http.Handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
