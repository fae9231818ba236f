package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAndExpose(t *testing.T) {
	m := New()
	m.Observe("grpc", "GetBalance", "OK", 15*time.Millisecond)
	m.Observe("grpc", "GetBalance", "OK", 25*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ledger_rpc_duration_seconds_count{code="OK",method="GetBalance",transport="grpc"} 2`)
}
