package core

import (
	"context"
	"time"
)

// VerdictCache stores analysis verdicts keyed by message hash.
type VerdictCache interface {
	// Get retrieves a cached verdict. The second return value reports
	// whether a live (non-expired) entry was found.
	Get(ctx context.Context, key string) (*Verdict, bool)

	// Set stores a verdict with the given TTL.
	Set(ctx context.Context, key string, verdict *Verdict, ttl time.Duration)

	// Delete removes a cached verdict.
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}

// ReputationResult is the response of an external URL-reputation service.
type ReputationResult struct {
	URL        string  `json:"url"`
	IsPhishing bool    `json:"is_phishing"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// URLReputation consults an external reputation source for a single URL.
// The engine itself never calls out; implementations are composed by the
// service layer with their own timeout policy.
type URLReputation interface {
	CheckURL(ctx context.Context, url string) (*ReputationResult, error)
}
