package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/posm-recon/internal/audit"
	"github.com/sells-group/posm-recon/internal/config"
	"github.com/sells-group/posm-recon/internal/model"
	"github.com/sells-group/posm-recon/internal/recon"
	"github.com/sells-group/posm-recon/internal/resolve"
)

const testDataset = `
stores:
  - store_id: S1
    store_name: S1 Official
    region: North
display_assignments:
  - store_id: S1
    model: M1
    is_displayed: true
posm_requirements:
  - model: M1
    posm_code: P1
  - model: M1
    posm_code: P2
submissions:
  - id: sub-1
    shop_name_label: S1 Official
    model_responses:
      - model: M1
        posm_selections:
          - posm_code: P1
            selected: true
`

func setupServeTest(t *testing.T) chi.Router {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0644))

	origDataset := datasetPath
	origCfg := cfg
	datasetPath = path
	cfg = &config.Config{
		Recon: recon.DefaultConfig(),
		Audit: audit.DefaultThresholds(),
		Server: config.ServerConfig{
			Port:           8080,
			RatePerSecond:  100,
			RateBurst:      100,
			AllowedOrigins: []string{"*"},
		},
	}
	t.Cleanup(func() {
		datasetPath = origDataset
		cfg = origCfg
	})

	return newRouter(recon.NewEngine(cfg.Recon))
}

func TestServe_Health(t *testing.T) {
	router := setupServeTest(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServe_Completion(t *testing.T) {
	router := setupServeTest(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/completion", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result model.CompletionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.PerAssignment, 1)
	assert.Equal(t, "S1", result.PerAssignment[0].StoreID)
	assert.Equal(t, 1, result.PerAssignment[0].CompletedCount)
	assert.Equal(t, 2, result.PerAssignment[0].RequiredCount)
	assert.Equal(t, model.StatusPartial, result.PerAssignment[0].Status)
}

func TestServe_Audit(t *testing.T) {
	router := setupServeTest(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var report model.AuditReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Summary.StoresAudited)
}

func TestServe_Resolve(t *testing.T) {
	router := setupServeTest(t)

	body := strings.NewReader(`{"shop_name_label":"S1 Official"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resolution resolve.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolution))
	assert.True(t, resolution.Accepted)
	assert.Equal(t, "exact_name", resolution.Method)
	assert.InDelta(t, 1.0, resolution.Confidence, 0.001)
}

func TestShutdownServer_DrainsInFlight(t *testing.T) {
	started := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: handler}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	statusCh := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			statusCh <- 0
			return
		}
		resp.Body.Close()
		statusCh <- resp.StatusCode
	}()

	// Shut down while the request is in flight; the drain must let it finish.
	<-started
	shutdownServer(srv)

	assert.Equal(t, http.StatusOK, <-statusCh)
	assert.ErrorIs(t, <-serveErr, http.ErrServerClosed)
}

func TestServe_ResolveRejectsEmptyLabels(t *testing.T) {
	router := setupServeTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
