package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lmcgowan/pricelab/internal/feedback"
	"github.com/lmcgowan/pricelab/internal/profile"
)

type stubCaller struct {
	response string
	err      error
}

func (s *stubCaller) GenerateJSON(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type stubPDF struct{}

func (stubPDF) Render(_ context.Context, _ string) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

const stubResponse = `{
	"competitive_summary": "ok",
	"buy_percentage": 50,
	"sentiment": "fine",
	"comments": ["nice"],
	"best_aspects": {"aspect1":"a","pct1":60,"aspect2":"b","pct2":30,"other_pct":10},
	"worst_aspects": {"aspect1":"c","pct1":60,"aspect2":"d","pct2":30,"other_pct":10},
	"star_ratings": {"1":0,"2":0,"3":0,"4":40,"5":60}
}`

func newTestServer(t *testing.T, caller feedback.LLMCaller) (http.Handler, *profile.MemStore) {
	t.Helper()
	store := profile.NewMemStore()
	sim := feedback.NewSimulator(caller, store)
	return NewServer(store, sim, stubPDF{}), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResp(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return out
}

const validProfile = `{
	"name": "Soap Bar",
	"city": "Boise",
	"state": "ID",
	"pricing_mode": "cost_plus",
	"costs": {"materials": [{"name":"oils","unit_cost":2.00}], "margin_pct": 50},
	"customer_count": 100
}`

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, &stubCaller{response: stubResponse})
	rec := do(t, h, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPriceEndpoint(t *testing.T) {
	h, _ := newTestServer(t, &stubCaller{response: stubResponse})
	rec := do(t, h, http.MethodPost, "/v1/price", validProfile)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeResp(t, rec)
	if out["price"].(float64) != 3.00 {
		t.Fatalf("price = %v, want 3.00", out["price"])
	}
}

func TestPriceEndpointBadMode(t *testing.T) {
	h, _ := newTestServer(t, &stubCaller{response: stubResponse})
	rec := do(t, h, http.MethodPost, "/v1/price", `{"name":"x","pricing_mode":"vibes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSimulateEndpointSuccess(t *testing.T) {
	h, store := newTestServer(t, &stubCaller{response: stubResponse})
	rec := do(t, h, http.MethodPost, "/v1/simulate", validProfile)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeResp(t, rec)
	run := out["run"].(map[string]any)
	if run["status"] != "displayed" {
		t.Fatalf("run status = %v", run["status"])
	}
	runs, _ := store.ListRuns()
	if len(runs) != 1 {
		t.Fatalf("stored runs = %d", len(runs))
	}
}

func TestSimulateEndpointBadMode(t *testing.T) {
	h, store := newTestServer(t, &stubCaller{response: stubResponse})
	rec := do(t, h, http.MethodPost, "/v1/simulate", `{"name":"Soap Bar","city":"Boise","state":"ID","pricing_mode":"vibes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeResp(t, rec)
	if !strings.Contains(out["error"].(string), "pricing_mode") {
		t.Fatalf("error = %v", out["error"])
	}
	if runs, _ := store.ListRuns(); len(runs) != 0 {
		t.Fatal("invalid mode recorded a run")
	}
}

func TestSimulateEndpointValidation(t *testing.T) {
	h, store := newTestServer(t, &stubCaller{response: stubResponse})
	rec := do(t, h, http.MethodPost, "/v1/simulate", `{"name":"Soap Bar","pricing_mode":"cost_plus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeResp(t, rec)
	msg := out["error"].(string)
	if !strings.Contains(msg, "please enter") {
		t.Fatalf("error = %q", msg)
	}
	if runs, _ := store.ListRuns(); len(runs) != 0 {
		t.Fatal("validation failure recorded a run")
	}
}

func TestSimulateEndpointUpstreamFailure(t *testing.T) {
	h, _ := newTestServer(t, &stubCaller{err: errors.New("timeout")})
	rec := do(t, h, http.MethodPost, "/v1/simulate", validProfile)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeResp(t, rec)
	run := out["run"].(map[string]any)
	if run["status"] != "failed" {
		t.Fatalf("run status = %v", run["status"])
	}
	if !strings.Contains(run["error_text"].(string), "timeout") {
		t.Fatalf("error_text = %v", run["error_text"])
	}
}

func TestProfileCRUDAndExport(t *testing.T) {
	h, _ := newTestServer(t, &stubCaller{response: stubResponse})

	if rec := do(t, h, http.MethodPost, "/v1/profiles", validProfile); rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/v1/profiles/Soap%20Bar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/profiles/Soap%20Bar/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Soap_Bar.json") {
		t.Fatalf("content disposition = %q", cd)
	}

	exported := rec.Body.String()
	rec = do(t, h, http.MethodPost, "/v1/profiles/import", exported)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, http.MethodDelete, "/v1/profiles/Soap%20Bar", ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/profiles/Soap%20Bar", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/v1/profiles/Soap%20Bar", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete of unknown profile = %d", rec.Code)
	}
}

func TestRunReportFormats(t *testing.T) {
	h, _ := newTestServer(t, &stubCaller{response: stubResponse})
	rec := do(t, h, http.MethodPost, "/v1/simulate", validProfile)
	if rec.Code != http.StatusOK {
		t.Fatalf("simulate status = %d", rec.Code)
	}
	runID := decodeResp(t, rec)["run"].(map[string]any)["id"].(string)

	rec = do(t, h, http.MethodGet, "/v1/runs/"+runID+"/report", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "# Pricing Simulation Report") {
		t.Fatalf("md report: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/runs/"+runID+"/report?format=html", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<table>") {
		t.Fatalf("html report: %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/runs/"+runID+"/report?format=pdf", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf report: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}

	rec = do(t, h, http.MethodGet, "/v1/runs/"+runID+"/report?format=docx", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: %d", rec.Code)
	}
}

func TestGetRunNotFound(t *testing.T) {
	h, _ := newTestServer(t, &stubCaller{response: stubResponse})
	if rec := do(t, h, http.MethodGet, "/v1/runs/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
