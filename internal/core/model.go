package core

import (
	"time"
)

// Severity grades how strongly a signal indicates risk.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Label is the graduated verdict label layered on top of the binary safety flag.
type Label string

const (
	LabelSafe       Label = "SAFE"
	LabelSuspicious Label = "SUSPICIOUS"
	LabelScam       Label = "SCAM"
)

// Intent is the coarse topical classification of a message. It selects the
// risk-acceptance threshold used by the verdict synthesizer.
type Intent string

const (
	IntentFinancial Intent = "FINANCIAL"
	IntentAcademic  Intent = "ACADEMIC"
	IntentMarketing Intent = "MARKETING"
	IntentUnknown   Intent = "UNKNOWN"
	// IntentTransactional is reserved for messages short-circuited by the
	// trusted-pattern whitelist (legitimate OTP delivery notices).
	IntentTransactional Intent = "TRANSACTIONAL"
)

// Signal type tags.
const (
	SignalWhitelisted       = "WHITELISTED"
	SignalOTPRequest        = "OTP_REQUEST"
	SignalCredentialPrompt  = "CREDENTIAL_PROMPT"
	SignalUrgency           = "URGENCY"
	SignalThreat            = "THREAT"
	SignalImpersonation     = "IMPERSONATION"
	SignalHighEntropyToken  = "HIGH_ENTROPY_TOKEN"
	SignalShortenedURL      = "SHORTENED_URL"
	SignalIPURL             = "IP_URL"
	SignalSuspiciousTLD     = "SUSPICIOUS_TLD"
	SignalSubdomainSpoofing = "SUBDOMAIN_SPOOFING"
	SignalHomoglyphURL      = "HOMOGLYPH_URL"
	SignalMalformedURL      = "MALFORMED_URL"
	SignalReputationFlagged = "REPUTATION_FLAGGED"
)

// Signal is a named, severity-tagged explanation attached to a verdict.
type Signal struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason"`
}

// Finding is an intermediate score-bearing detection produced by the URL and
// token sub-detectors, later folded into a Signal.
type Finding struct {
	Type   string
	Score  int
	Reason string
}

// Verdict is the result of analyzing a single message.
//
// AnalyzedAt and ProcessingID are stamped by the service layer; the engine
// itself leaves them zero so that identical inputs yield identical verdicts.
type Verdict struct {
	IsSafe       bool      `json:"isSafe"`
	Label        Label     `json:"label"`
	RiskScore    float64   `json:"riskScore"`
	Intent       Intent    `json:"intent"`
	Signals      []Signal  `json:"signals"`
	AnalyzedAt   time.Time `json:"analyzedAt,omitempty"`
	ProcessingID string    `json:"processingId,omitempty"`
}
