package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegate/internal/casefile"
	"casegate/internal/override"
	"casegate/internal/rules"
	"casegate/pkg/testutil"
)

func newTestRouter(t *testing.T) (chi.Router, casefile.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cases := casefile.NewInMemoryStore()
	overrides := override.NewService(override.NewInMemoryStore(), logger)
	evaluator := rules.NewService(casefile.NewSnapshotProvider(cases), overrides, nil)

	r := chi.NewRouter()
	New(evaluator, overrides, logger).Register(r)
	return r, cases
}

func seedCase(t *testing.T, cases casefile.Store, caseID string) {
	t.Helper()
	err := cases.PutCase(t.Context(), caseID, casefile.Document{
		"client": casefile.Document{"name": "Jan Kowalski", "email": "jan@example.com", "surname": "Kowalski"},
		"state":  "OBY_SUBMITTABLE",
	})
	require.NoError(t, err)
}

func postJSON(t *testing.T, r chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, path, body)
	return testutil.DoRequest(r, testutil.WithActor(req, "reviewer-1"))
}

func TestHandleEvaluate(t *testing.T) {
	r, cases := newTestRouter(t)
	seedCase(t, cases, "case-001")

	w := postJSON(t, r, "/hac/evaluate", map[string]string{"caseId": "case-001"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "case-001", resp["case_id"])
	assert.Contains(t, []any{"GREEN", "AMBER", "RED"}, resp["status"])
	assert.Len(t, resp["results"], 10)
	assert.Contains(t, resp, "canProceed")
	assert.Contains(t, resp, "summary")
}

func TestHandleEvaluateUnknownCase(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/hac/evaluate", map[string]string{"caseId": "missing"})
	testutil.AssertStatusAndError(t, w, http.StatusNotFound, "not_found")
}

func TestHandleEvaluateBadRequest(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("missing caseId", func(t *testing.T) {
		w := postJSON(t, r, "/hac/evaluate", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/hac/evaluate", "{nope")
		w := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, w, http.StatusBadRequest, "bad_request")
	})

	t.Run("invalid caseId format", func(t *testing.T) {
		w := postJSON(t, r, "/hac/evaluate", map[string]string{"caseId": "../etc"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleOverride(t *testing.T) {
	r, cases := newTestRouter(t)
	seedCase(t, cases, "case-001")

	w := postJSON(t, r, "/hac/override", map[string]string{
		"caseId": "case-001",
		"ruleId": "USC.STATUS.REG",
		"reason": "registration confirmed by consulate",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp OverrideResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Override)
	assert.Equal(t, "USC.STATUS.REG", resp.Override.RuleID)
	assert.Equal(t, "reviewer-1", resp.Override.OverriddenBy)
	assert.NotEmpty(t, resp.Override.ID)

	// The next evaluation reflects the override.
	w = postJSON(t, r, "/hac/evaluate", map[string]string{"caseId": "case-001"})
	require.Equal(t, http.StatusOK, w.Code)

	var eval rules.Evaluation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eval))
	for _, result := range eval.Results {
		if result.RuleID == "USC.STATUS.REG" {
			assert.Equal(t, rules.StatusPassWithOverride, result.Status)
		}
	}
	assert.Equal(t, 1, eval.Summary.Overrides)
}

func TestHandleOverrideValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []map[string]string{
		{"ruleId": "USC.STATUS.REG", "reason": "x"},
		{"caseId": "case-001", "reason": "x"},
		{"caseId": "case-001", "ruleId": "USC.STATUS.REG"},
		{"caseId": "case-001", "ruleId": "USC.STATUS.REG", "reason": "   "},
	}
	for _, body := range tests {
		w := postJSON(t, r, "/hac/override", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestHandleListOverrides(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/hac/override", map[string]string{
		"caseId": "case-001",
		"ruleId": "USC.STATUS.REG",
		"reason": "confirmed",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/hac/overrides/case-001", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp OverrideListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Overrides, 1)
	assert.Equal(t, "case-001", resp.Overrides[0].CaseID)
}
