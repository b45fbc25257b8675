package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
	"github.com/phishguard/phishguard/internal/utils"
)

func newTestServer() *Server {
	logger := zap.NewNop()
	service := core.NewAnalyzerService(core.NewEngine(nil), nil, nil, logger, false, 0)
	return NewServer(service, utils.NewTextProcessor(logger), logger, "127.0.0.1:0", 65536)
}

func doRequest(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("body = %q, want a healthy status", rec.Body.String())
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/messages/analyze",
		map[string]string{"message": "Please enter your password immediately"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var verdict core.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if verdict.IsSafe {
		t.Error("IsSafe = true, want false for a credential prompt")
	}
	if verdict.Label != core.LabelScam {
		t.Errorf("Label = %q, want %q", verdict.Label, core.LabelScam)
	}
	if verdict.ProcessingID == "" {
		t.Error("ProcessingID missing from response")
	}
}

func TestAnalyzeEndpointRejectsEmptyMessage(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/messages/analyze", map[string]string{"message": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointRejectsBadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/analyze", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeBatchEndpoint(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/messages/analyze/batch",
		map[string][]string{"messages": {
			"See you at lunch tomorrow",
			"Please enter your password immediately",
		}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp analyzeBatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", resp.TotalCount)
	}
	if resp.UnsafeCount != 1 {
		t.Errorf("UnsafeCount = %d, want 1", resp.UnsafeCount)
	}
	if len(resp.Verdicts) != 2 {
		t.Fatalf("Verdicts = %d, want 2", len(resp.Verdicts))
	}
	if !resp.Verdicts[0].IsSafe || resp.Verdicts[1].IsSafe {
		t.Error("verdict order must follow request order")
	}
}

func TestAnalyzeBatchEndpointLimits(t *testing.T) {
	rec := doRequest(t, http.MethodPost, "/api/v1/messages/analyze/batch",
		map[string][]string{"messages": {}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", rec.Code)
	}

	oversized := make([]string, maxBatchSize+1)
	for i := range oversized {
		oversized[i] = "hello"
	}
	rec = doRequest(t, http.MethodPost, "/api/v1/messages/analyze/batch",
		map[string][]string{"messages": oversized})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized batch status = %d, want 400", rec.Code)
	}
}

func TestPatternsEndpoint(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/api/v1/patterns", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Version         string   `json:"version"`
		TrustedPatterns []string `json:"trusted_patterns"`
		TrustedDomains  []string `json:"trusted_domains"`
		SuspiciousTLDs  []string `json:"suspicious_tlds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Version == "" {
		t.Error("version missing")
	}
	if len(resp.TrustedPatterns) == 0 || len(resp.TrustedDomains) == 0 || len(resp.SuspiciousTLDs) == 0 {
		t.Error("exported tables must not be empty")
	}
}
