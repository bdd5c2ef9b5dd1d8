package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-forensics/internal/engine"
	"github.com/carson-networks/ledger-forensics/internal/logging"
	"github.com/carson-networks/ledger-forensics/internal/operator"
	"github.com/carson-networks/ledger-forensics/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	op := operator.NewOperatorDelegator(nil, 1)
	op.Start()
	t.Cleanup(op.Stop)

	rest := &Rest{
		Logger:   logging.SetupLogging(false),
		Service:  service.NewService(engine.New(), nil),
		Operator: op,
	}
	srv := httptest.NewServer(rest.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutes_Status(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_AnalysisThenMetrics(t *testing.T) {
	srv := newTestServer(t)

	payload, err := json.Marshal(map[string]any{
		"transactions": []map[string]any{
			{"amount": "10", "vendor_id": "A"},
			{"amount": "20", "vendor_id": "A"},
		},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/v1/analysis", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()

	buf := new(strings.Builder)
	_, err = buf.ReadFrom(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "forensics_detector_runs_total")
	assert.Contains(t, buf.String(), `forensics_engine_analyses_total{source="request"}`)
}

func TestRoutes_OpenAPI(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/openapi.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
