package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegate/internal/casefile"
	"casegate/internal/notify"
	"casegate/internal/override"
	"casegate/internal/request"
	requesthandler "casegate/internal/request/handler"
	"casegate/internal/rules"
	ruleshandler "casegate/internal/rules/handler"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cases := casefile.NewInMemoryStore()
	overrides := override.NewService(override.NewInMemoryStore(), logger)
	evaluator := rules.NewService(casefile.NewSnapshotProvider(cases), overrides, nil)
	lifecycle := request.NewService(request.NewInMemoryStore(), cases, notify.Noop{}, logger, nil)

	return NewRouter(
		ruleshandler.New(evaluator, overrides, logger),
		requesthandler.New(lifecycle, logger),
	)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRoutesMounted(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hac/pending", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hac/history", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "upstream-id-42")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id-42", w.Header().Get("X-Request-Id"))

	// Without an incoming id, one is minted.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestActorThreadedToHandlers(t *testing.T) {
	srv := newTestServer(t)

	body := strings.NewReader(`{"caseId":"case-001","type":"case_update","payload":{"state":"USC_READY"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/hac/submit", body)
	req.Header.Set("X-Actor", "clerk-7")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Request struct {
			SubmittedBy string `json:"submittedBy"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "clerk-7", resp.Request.SubmittedBy)
}
