package core

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	uiNoisePattern    = regexp.MustCompile(`(?i)\b(Forwarded|Download|Downloaded|Media omitted|This message was deleted)\b`)
	timestampPattern  = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s?(am|pm)?\s*$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	urlPattern        = regexp.MustCompile(`(?i)https?://[^\s)]+`)
	tokenPattern      = regexp.MustCompile(`\b[A-Za-z0-9]{8,}\b`)
	ipv4HostPattern   = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+$`)
)

// phraseRule is one high-risk phrase category. Each rule yields at most one
// signal per message regardless of how many times its pattern matches.
type phraseRule struct {
	signalType string
	severity   Severity
	reason     string
	pattern    *regexp.Regexp
	// requires, when set, must also match for the rule to fire. Used for
	// co-occurrence rules such as authority impersonation.
	requires *regexp.Regexp
}

var phraseRules = []phraseRule{
	{
		signalType: SignalOTPRequest,
		severity:   SeverityHigh,
		reason:     "Request for OTP or verification code",
		pattern:    regexp.MustCompile(`(?i)send\s+(otp|code|password)|enter\s+(otp|code)|share\s+(otp|code)`),
	},
	{
		signalType: SignalCredentialPrompt,
		severity:   SeverityHigh,
		reason:     "Request for sensitive credentials",
		pattern:    regexp.MustCompile(`(?i)(enter|provide|confirm)\s+(your\s+)?(password|pin|cvv)`),
	},
	{
		signalType: SignalUrgency,
		severity:   SeverityMedium,
		reason:     "Urgency language detected",
		pattern:    regexp.MustCompile(`(?i)\b(urgent|immediately|asap|right now|expires?\s+soon|act\s+now)\b`),
	},
	{
		signalType: SignalThreat,
		severity:   SeverityHigh,
		reason:     "Threatening language detected",
		pattern:    regexp.MustCompile(`(?i)\b(account\s+(blocked|suspended|locked)|legal\s+action|arrest)\b`),
	},
	{
		signalType: SignalImpersonation,
		severity:   SeverityHigh,
		reason:     "Impersonation of authority",
		pattern:    regexp.MustCompile(`(?i)\b(bank|rbi|government|police|income\s+tax)\b`),
		requires:   regexp.MustCompile(`(?i)(verify|confirm|validate)`),
	},
}

// Engine is the stateless message-risk classifier. Given raw message text it
// produces a risk score, a categorical verdict, an inferred intent, and a
// list of explanatory signals. It performs no I/O and holds no mutable
// state, so a single Engine may be shared by concurrent callers.
type Engine struct {
	tables *Tables
}

// NewEngine creates an engine backed by the given tables. A nil tables value
// selects DefaultTables.
func NewEngine(tables *Tables) *Engine {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Engine{tables: tables}
}

// Tables returns the detection tables the engine was built with.
func (e *Engine) Tables() *Tables {
	return e.tables
}

// Analyze runs the full pipeline on a raw message and returns its verdict.
// It never fails: degenerate input normalizes to an empty string and is
// judged safe unless it happens to match a risk pattern.
func (e *Engine) Analyze(raw string) *Verdict {
	message := e.Normalize(raw)

	if e.MatchesTrustedPattern(message) {
		return &Verdict{
			IsSafe:    true,
			Label:     LabelSafe,
			RiskScore: 0,
			Intent:    IntentTransactional,
			Signals: []Signal{{
				Type:     SignalWhitelisted,
				Severity: SeverityLow,
				Reason:   "Matches trusted transactional pattern",
			}},
		}
	}

	intent := e.ClassifyIntent(message)
	phraseSignals := e.DetectHighRiskSignals(message)
	urlFindings := e.AnalyzeURLs(message)
	tokenFindings := e.DetectHighEntropyTokens(message)

	return e.synthesize(intent, phraseSignals, urlFindings, tokenFindings)
}

// Normalize strips UI-chrome tokens and whitespace artifacts from raw input.
// It is idempotent: Normalize(Normalize(x)) == Normalize(x).
func (e *Engine) Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = uiNoisePattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	// The timestamp rule only applies when the timestamp is the whole
	// remaining content, so it must see the collapsed form.
	if timestampPattern.MatchString(text) {
		return ""
	}
	return text
}

// MatchesTrustedPattern reports whether the normalized message is a known
// benign transactional shape, such as an OTP delivery notice.
func (e *Engine) MatchesTrustedPattern(message string) bool {
	for _, p := range e.tables.TrustedPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

// ClassifyIntent buckets the message into a coarse topic by keyword-table
// scoring. Financial keywords dominate regardless of relative counts:
// credential topics are inherently higher-risk than any volume of marketing
// language.
func (e *Engine) ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)

	financial := countKeywords(lower, e.tables.FinancialKeywords)
	academic := countKeywords(lower, e.tables.AcademicKeywords)
	marketing := countKeywords(lower, e.tables.MarketingKeywords)

	switch {
	case financial > 0:
		return IntentFinancial
	case academic > 0 && academic >= marketing:
		return IntentAcademic
	case marketing > 0:
		return IntentMarketing
	default:
		return IntentUnknown
	}
}

// countKeywords counts how many list members occur as substrings. No word
// boundary is required; the match is intentionally permissive to catch
// embedded terms.
func countKeywords(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

// DetectHighRiskSignals applies the fixed phrase rules. Rules are evaluated
// independently; a message may trigger several categories at once.
func (e *Engine) DetectHighRiskSignals(message string) []Signal {
	var signals []Signal
	for _, rule := range phraseRules {
		if !rule.pattern.MatchString(message) {
			continue
		}
		if rule.requires != nil && !rule.requires.MatchString(message) {
			continue
		}
		signals = append(signals, Signal{
			Type:     rule.signalType,
			Severity: rule.severity,
			Reason:   rule.reason,
		})
	}
	return signals
}

// DetectHighEntropyTokens flags alphanumeric tokens that look like generated
// codes, credentials or hashes: length >= 8, mixed case plus a digit, and
// Shannon entropy strictly above the configured threshold. Reasons truncate
// the token so full secrets are never echoed into logs or UI.
func (e *Engine) DetectHighEntropyTokens(message string) []Finding {
	var findings []Finding
	for _, token := range tokenPattern.FindAllString(message, -1) {
		if len(token) < e.tables.EntropyMinLength || !isMixedAlphanumeric(token) {
			continue
		}
		if shannonEntropy(token) > e.tables.EntropyThreshold {
			findings = append(findings, Finding{
				Type:   SignalHighEntropyToken,
				Score:  2,
				Reason: fmt.Sprintf("Suspicious random token detected: %s...", token[:10]),
			})
		}
	}
	return findings
}

// isMixedAlphanumeric reports whether the token contains at least one digit,
// one uppercase and one lowercase letter.
func isMixedAlphanumeric(token string) bool {
	var hasDigit, hasUpper, hasLower bool
	for _, r := range token {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	return hasDigit && hasUpper && hasLower
}

// shannonEntropy computes -sum(p(c) * log2(p(c))) over the character
// distribution of s, in bits per character.
func shannonEntropy(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	freq := make(map[rune]int, len(runes))
	for _, r := range runes {
		freq[r]++
	}
	entropy := 0.0
	length := float64(len(runes))
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// ExtractURLs returns every absolute URL embedded in the message.
func (e *Engine) ExtractURLs(message string) []string {
	return urlPattern.FindAllString(message, -1)
}

// AnalyzeURLs performs lexical and structural inspection of every URL in the
// message. No network access occurs. A URL that cannot be parsed produces a
// MALFORMED_URL finding; analysis continues with the next URL. Hosts ending
// with a trusted domain are exempted from all checks, not merely
// down-weighted.
func (e *Engine) AnalyzeURLs(message string) []Finding {
	var findings []Finding
	for _, raw := range e.ExtractURLs(message) {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			findings = append(findings, Finding{
				Type:   SignalMalformedURL,
				Score:  2,
				Reason: "Malformed URL detected",
			})
			continue
		}
		host := strings.ToLower(u.Hostname())

		if e.isTrustedHost(host) {
			continue
		}

		for _, s := range e.tables.ShortenerDomains {
			if strings.Contains(host, s) {
				findings = append(findings, Finding{
					Type:   SignalShortenedURL,
					Score:  4,
					Reason: "Shortened URL detected",
				})
				break
			}
		}

		if ipv4HostPattern.MatchString(host) {
			findings = append(findings, Finding{
				Type:   SignalIPURL,
				Score:  5,
				Reason: "IP address used as domain",
			})
		}

		for _, tld := range e.tables.SuspiciousTLDs {
			if strings.HasSuffix(host, "."+tld) {
				findings = append(findings, Finding{
					Type:   SignalSuspiciousTLD,
					Score:  3,
					Reason: "Suspicious domain extension",
				})
				break
			}
		}

		if labels := strings.Split(host, "."); len(labels) > 2 {
			subdomains := strings.Join(labels[:len(labels)-2], ".")
			for _, brand := range e.tables.BrandNames {
				if strings.Contains(subdomains, brand) {
					findings = append(findings, Finding{
						Type:   SignalSubdomainSpoofing,
						Score:  5,
						Reason: "Brand name in subdomain (possible spoofing)",
					})
					break
				}
			}
		}

		if attack, brand := detectHomoglyph(host); attack {
			findings = append(findings, Finding{
				Type:   SignalHomoglyphURL,
				Score:  5,
				Reason: fmt.Sprintf("Hostname visually impersonates %s", brand),
			})
		}
	}
	return findings
}

func (e *Engine) isTrustedHost(host string) bool {
	for _, d := range e.tables.TrustedDomains {
		if strings.HasSuffix(host, d) {
			return true
		}
	}
	return false
}

// ApplyThreshold evaluates a risk score against the intent-dependent
// threshold table. A message is unsafe if any phrase signal carried HIGH
// severity, regardless of total score, or if the score reaches the
// threshold. The label escalates to SCAM once the score reaches the
// threshold scaled by the scam multiplier.
func (e *Engine) ApplyThreshold(intent Intent, score float64, hasHighSeverity bool) (bool, Label) {
	threshold, ok := e.tables.IntentThresholds[intent]
	if !ok {
		threshold = e.tables.DefaultThreshold
	}
	if !hasHighSeverity && score < threshold {
		return true, LabelSafe
	}
	if score >= threshold*e.tables.ScamMultiplier {
		return false, LabelScam
	}
	return false, LabelSuspicious
}

// synthesize aggregates all findings into the final verdict. Scoring is
// purely additive: HIGH phrase signals add 5, MEDIUM add 3, and URL and
// token findings add their own scores. The unified signal sequence preserves
// detector-group order (phrases, URL findings, token findings); the order
// carries display priority, not scoring weight.
func (e *Engine) synthesize(intent Intent, phraseSignals []Signal, urlFindings, tokenFindings []Finding) *Verdict {
	score := 0.0
	hasHigh := false
	for _, s := range phraseSignals {
		if s.Severity == SeverityHigh {
			score += 5
			hasHigh = true
		} else {
			score += 3
		}
	}
	for _, f := range urlFindings {
		score += float64(f.Score)
	}
	for _, f := range tokenFindings {
		score += float64(f.Score)
	}

	isSafe, label := e.ApplyThreshold(intent, score, hasHigh)

	signals := make([]Signal, 0, len(phraseSignals)+len(urlFindings)+len(tokenFindings))
	signals = append(signals, phraseSignals...)
	for _, f := range urlFindings {
		signals = append(signals, findingToSignal(f))
	}
	for _, f := range tokenFindings {
		signals = append(signals, findingToSignal(f))
	}

	return &Verdict{
		IsSafe:    isSafe,
		Label:     label,
		RiskScore: score,
		Intent:    intent,
		Signals:   signals,
	}
}

// findingToSignal maps a score-bearing finding into signal form, deriving
// severity by thresholding the score.
func findingToSignal(f Finding) Signal {
	severity := SeverityMedium
	if f.Score > 3 {
		severity = SeverityHigh
	}
	return Signal{Type: f.Type, Severity: severity, Reason: f.Reason}
}
