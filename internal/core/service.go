package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalyzerService wraps the pure engine with the caller-side concerns of a
// host process: verdict caching, optional external URL-reputation lookup,
// and structured logging. The engine stays side-effect-free; everything
// impure lives here.
type AnalyzerService struct {
	engine       *Engine
	cache        VerdictCache
	reputation   URLReputation
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewAnalyzerService creates a new analyzer service. The reputation client
// may be nil, in which case verdicts rest on the engine alone.
func NewAnalyzerService(
	engine *Engine,
	cache VerdictCache,
	reputation URLReputation,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *AnalyzerService {
	return &AnalyzerService{
		engine:       engine,
		cache:        cache,
		reputation:   reputation,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// Engine returns the underlying classification engine.
func (s *AnalyzerService) Engine() *Engine {
	return s.engine
}

// AnalyzeMessage classifies a raw message. Cached verdicts are returned
// as-is; fresh verdicts are fused with external reputation (when configured)
// before being stamped, cached and returned. Reputation failures degrade to
// the engine verdict rather than failing the analysis.
func (s *AnalyzerService) AnalyzeMessage(ctx context.Context, raw string) (*Verdict, error) {
	key := messageKey(raw)

	if s.cacheEnabled && s.cache != nil {
		if verdict, ok := s.cache.Get(ctx, key); ok {
			s.logger.Debug("Verdict cache hit", zap.String("key", key))
			return verdict, nil
		}
	}

	verdict := s.engine.Analyze(raw)

	// Whitelisted transactional messages short-circuit every later stage,
	// reputation lookup included.
	if s.reputation != nil && verdict.Intent != IntentTransactional {
		s.fuseReputation(ctx, raw, verdict)
	}

	verdict.AnalyzedAt = time.Now().UTC()
	verdict.ProcessingID = uuid.NewString()

	if s.cacheEnabled && s.cache != nil {
		s.cache.Set(ctx, key, verdict, s.cacheTTL)
	}

	s.logger.Info("Message analyzed",
		zap.String("processing_id", verdict.ProcessingID),
		zap.Bool("is_safe", verdict.IsSafe),
		zap.String("label", string(verdict.Label)),
		zap.Float64("risk_score", verdict.RiskScore),
		zap.String("intent", string(verdict.Intent)),
		zap.Int("signals", len(verdict.Signals)))

	return verdict, nil
}

// fuseReputation consults the external reputation source for each URL in the
// message and merges any hit into the verdict: the risk score takes the
// maximum of the engine score and the scaled external score, and the verdict
// is re-evaluated against the intent threshold.
func (s *AnalyzerService) fuseReputation(ctx context.Context, raw string, verdict *Verdict) {
	urls := s.engine.ExtractURLs(s.engine.Normalize(raw))
	for _, u := range urls {
		result, err := s.reputation.CheckURL(ctx, u)
		if err != nil {
			s.logger.Warn("URL reputation lookup failed",
				zap.String("url", u),
				zap.Error(err))
			continue
		}
		if !result.IsPhishing {
			continue
		}

		// Fusion rule: take the maximum of the two scores. The external
		// confidence (0..1) is scaled onto the engine's additive scale.
		if external := result.Confidence * 10; external > verdict.RiskScore {
			verdict.RiskScore = external
		}
		verdict.Signals = append(verdict.Signals, Signal{
			Type:     SignalReputationFlagged,
			Severity: SeverityHigh,
			Reason:   "URL flagged by external reputation service",
		})
		verdict.IsSafe, verdict.Label = s.engine.ApplyThreshold(verdict.Intent, verdict.RiskScore, true)
	}
}

// messageKey derives the cache key for a raw message.
func messageKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
