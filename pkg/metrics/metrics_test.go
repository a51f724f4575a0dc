package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}

func TestRecordSignedContext(t *testing.T) {
	before := testutil.ToFloat64(SignedContextsTotal.WithLabelValues("inverted", "ok"))
	RecordSignedContext("inverted", "ok")
	RecordSignedContext("inverted", "ok")
	after := testutil.ToFloat64(SignedContextsTotal.WithLabelValues("inverted", "ok"))
	assert.Equal(t, before+2, after)
}

func TestRecordPrice(t *testing.T) {
	RecordPrice("eth-usd", 3100.5, 3*time.Second)
	assert.Equal(t, 3100.5, testutil.ToFloat64(LastPrice.WithLabelValues("eth-usd")))
	assert.Equal(t, 3.0, testutil.ToFloat64(PriceStalenessSeconds.WithLabelValues("eth-usd")))
}

func TestNewServer_ServesMetrics(t *testing.T) {
	Init()
	RecordUpstreamRequest("pyth", "ok", 20*time.Millisecond)
	RecordStreamClients(3)

	srv := NewServer(":0", "/metrics")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `upstream_requests_total{source="pyth",status="ok"}`)
	assert.Contains(t, string(body), "stream_clients 3")
}
