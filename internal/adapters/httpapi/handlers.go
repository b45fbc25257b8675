package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/phishguard/phishguard/internal/core"
)

const maxBatchSize = 100

type analyzeRequest struct {
	Message string `json:"message"`
}

type analyzeBatchRequest struct {
	Messages []string `json:"messages"`
}

type analyzeBatchResponse struct {
	TotalCount  int             `json:"total_count"`
	UnsafeCount int             `json:"unsafe_count"`
	Verdicts    []*core.Verdict `json:"verdicts"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	verdict, err := s.Process(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("Failed to analyze message", zap.Error(err))
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, verdict)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req analyzeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Messages) == 0 {
		http.Error(w, "At least one message is required", http.StatusBadRequest)
		return
	}
	if len(req.Messages) > maxBatchSize {
		http.Error(w, "Maximum 100 messages per batch", http.StatusBadRequest)
		return
	}

	resp := analyzeBatchResponse{
		TotalCount: len(req.Messages),
		Verdicts:   make([]*core.Verdict, 0, len(req.Messages)),
	}
	for _, msg := range req.Messages {
		verdict, err := s.Process(r.Context(), msg)
		if err != nil {
			s.logger.Error("Failed to analyze message in batch", zap.Error(err))
			http.Error(w, "Analysis failed", http.StatusInternalServerError)
			return
		}
		if !verdict.IsSafe {
			resp.UnsafeCount++
		}
		resp.Verdicts = append(resp.Verdicts, verdict)
	}

	s.logger.Info("Batch analyzed",
		zap.Int("total", resp.TotalCount),
		zap.Int("unsafe", resp.UnsafeCount))

	writeJSON(w, resp)
}

// handlePatterns exports the detection tables so clients can run local
// matching without a round-trip per message.
func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	tables := s.service.Engine().Tables()

	trustedPatterns := make([]string, 0, len(tables.TrustedPatterns))
	for _, p := range tables.TrustedPatterns {
		trustedPatterns = append(trustedPatterns, p.String())
	}

	writeJSON(w, struct {
		Version           string   `json:"version"`
		LastUpdated       string   `json:"last_updated"`
		TrustedPatterns   []string `json:"trusted_patterns"`
		TrustedDomains    []string `json:"trusted_domains"`
		FinancialKeywords []string `json:"financial_keywords"`
		AcademicKeywords  []string `json:"academic_keywords"`
		MarketingKeywords []string `json:"marketing_keywords"`
		URLShorteners     []string `json:"url_shorteners"`
		SuspiciousTLDs    []string `json:"suspicious_tlds"`
		BrandNames        []string `json:"brand_names"`
	}{
		Version:           "1.0.0",
		LastUpdated:       time.Now().UTC().Format(time.RFC3339),
		TrustedPatterns:   trustedPatterns,
		TrustedDomains:    tables.TrustedDomains,
		FinancialKeywords: tables.FinancialKeywords,
		AcademicKeywords:  tables.AcademicKeywords,
		MarketingKeywords: tables.MarketingKeywords,
		URLShorteners:     tables.ShortenerDomains,
		SuspiciousTLDs:    tables.SuspiciousTLDs,
		BrandNames:        tables.BrandNames,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Status string `json:"status"`
	}{Status: "healthy"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
