package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "  hello   world  ", "hello world"},
		{"strips forwarded marker", "Forwarded hello", "hello"},
		{"strips media placeholder", "Media omitted", ""},
		{"drops bare timestamp", "10:30 pm", ""},
		{"drops bare timestamp without meridiem", "9:05", ""},
		{"drops timestamp left behind by noise removal", "Forwarded 10:45 pm", ""},
		{"drops timestamp with stretched spacing", "10:45    pm", ""},
		{"empty input", "", ""},
		{"plain message untouched", "see you at lunch", "see you at lunch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := engine.Normalize(got); again != got {
				t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestAnalyzeWhitelistShortCircuit(t *testing.T) {
	engine := NewEngine(nil)

	for _, msg := range []string{
		"Your OTP is 482910",
		"Use 4829 as your account verification code",
		"482910 is your login code",
	} {
		verdict := engine.Analyze(msg)
		if !verdict.IsSafe {
			t.Errorf("Analyze(%q).IsSafe = false, want true", msg)
		}
		if verdict.Label != LabelSafe {
			t.Errorf("Analyze(%q).Label = %q, want %q", msg, verdict.Label, LabelSafe)
		}
		if verdict.RiskScore != 0 {
			t.Errorf("Analyze(%q).RiskScore = %v, want 0", msg, verdict.RiskScore)
		}
		if verdict.Intent != IntentTransactional {
			t.Errorf("Analyze(%q).Intent = %q, want %q", msg, verdict.Intent, IntentTransactional)
		}
		if len(verdict.Signals) != 1 || verdict.Signals[0].Type != SignalWhitelisted {
			t.Errorf("Analyze(%q).Signals = %v, want single %s signal", msg, verdict.Signals, SignalWhitelisted)
		}
	}
}

func TestClassifyIntent(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name    string
		message string
		want    Intent
	}{
		{"financial keywords", "your bank account needs attention", IntentFinancial},
		{"academic keywords", "join our hackathon workshop", IntentAcademic},
		{"marketing keywords", "limited time discount offer", IntentMarketing},
		{"financial beats marketing volume", "discount offer sale deal on your credit card", IntentFinancial},
		{"academic wins ties", "hackathon discount", IntentAcademic},
		{"no keywords", "see you tomorrow", IntentUnknown},
		{"empty message", "", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ClassifyIntent(tt.message); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestDetectHighRiskSignals(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name      string
		message   string
		wantTypes []string
	}{
		{"otp request", "please share otp with us", []string{SignalOTPRequest}},
		{"credential prompt", "enter your password to continue", []string{SignalCredentialPrompt}},
		{"urgency", "act now before it is too late", []string{SignalUrgency}},
		{"threat", "your account blocked until payment", []string{SignalThreat}},
		{"impersonation with action verb", "the bank needs you to verify your details", []string{SignalImpersonation}},
		{"authority mention alone is not impersonation", "greetings from your bank", nil},
		{"urgent suffix does not match", "respond urgently please", nil},
		{"clean message", "lunch at noon?", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := engine.DetectHighRiskSignals(tt.message)
			var types []string
			for _, s := range signals {
				types = append(types, s.Type)
			}
			if !reflect.DeepEqual(types, tt.wantTypes) {
				t.Errorf("DetectHighRiskSignals(%q) = %v, want %v", tt.message, types, tt.wantTypes)
			}
		})
	}
}

func TestDetectHighRiskSignalsFiresOncePerRule(t *testing.T) {
	engine := NewEngine(nil)

	signals := engine.DetectHighRiskSignals("urgent! act now, expires soon")
	if len(signals) != 1 || signals[0].Type != SignalUrgency {
		t.Fatalf("got %v, want a single %s signal", signals, SignalUrgency)
	}
}

func TestShannonEntropy(t *testing.T) {
	if got := shannonEntropy("aaaa"); got != 0 {
		t.Errorf("shannonEntropy(aaaa) = %v, want 0", got)
	}
	if got := shannonEntropy("ab"); got != 1 {
		t.Errorf("shannonEntropy(ab) = %v, want 1", got)
	}
	if got := shannonEntropy(""); got != 0 {
		t.Errorf("shannonEntropy(empty) = %v, want 0", got)
	}
}

func TestDetectHighEntropyTokens(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("flags random-looking token", func(t *testing.T) {
		// 24 distinct characters: entropy log2(24) > 4.5.
		findings := engine.DetectHighEntropyTokens("your code aB1cD2eF3gH4iJ5kL6mN7oP8 expires")
		if len(findings) != 1 {
			t.Fatalf("got %d findings, want 1", len(findings))
		}
		f := findings[0]
		if f.Type != SignalHighEntropyToken || f.Score != 2 {
			t.Errorf("finding = %+v, want type %s score 2", f, SignalHighEntropyToken)
		}
		if !strings.Contains(f.Reason, "aB1cD2eF3g") || strings.Contains(f.Reason, "aB1cD2eF3gH") {
			t.Errorf("reason %q should truncate the token to ten characters", f.Reason)
		}
	})

	t.Run("threshold is strict", func(t *testing.T) {
		// Eight characters twice plus sixteen singletons over 32 runes gives
		// an entropy of exactly 4.5, which must not be flagged.
		findings := engine.DetectHighEntropyTokens("token aa11BB22cc33DD44eFgHiJkLmN567890 attached")
		if len(findings) != 0 {
			t.Errorf("got %v, want no findings at the boundary", findings)
		}
	})

	t.Run("requires mixed case and digits", func(t *testing.T) {
		findings := engine.DetectHighEntropyTokens("lowercase12345678 UPPERCASE12345678")
		if len(findings) != 0 {
			t.Errorf("got %v, want none for single-case tokens", findings)
		}
	})
}

func TestAnalyzeURLs(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name      string
		message   string
		wantTypes []string
	}{
		{"trusted host exempt", "see https://accounts.google.com/signin", nil},
		{"shortened url", "click http://bit.ly/x1 today", []string{SignalShortenedURL}},
		{"ip literal host", "login at http://192.168.1.5/account", []string{SignalIPURL}},
		{"suspicious tld", "visit http://win-big.xyz/promo", []string{SignalSuspiciousTLD}},
		{"brand in subdomain", "verify at http://paypal.security-update.com/login", []string{SignalSubdomainSpoofing}},
		{"empty host is malformed", "open https://:8080/path please", []string{SignalMalformedURL}},
		{"no urls", "no links here", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := engine.AnalyzeURLs(tt.message)
			var types []string
			for _, f := range findings {
				types = append(types, f.Type)
			}
			if !reflect.DeepEqual(types, tt.wantTypes) {
				t.Errorf("AnalyzeURLs(%q) = %v, want %v", tt.message, types, tt.wantTypes)
			}
		})
	}
}

func TestAnalyzeURLsHomoglyphHost(t *testing.T) {
	engine := NewEngine(nil)

	findings := engine.AnalyzeURLs("login at http://раypal.com/secure")
	if len(findings) != 1 || findings[0].Type != SignalHomoglyphURL {
		t.Fatalf("got %v, want a single %s finding", findings, SignalHomoglyphURL)
	}
	if findings[0].Score != 5 {
		t.Errorf("score = %d, want 5", findings[0].Score)
	}
}

func TestApplyThreshold(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name      string
		intent    Intent
		score     float64
		hasHigh   bool
		wantSafe  bool
		wantLabel Label
	}{
		{"below financial threshold", IntentFinancial, 3, false, true, LabelSafe},
		{"at financial threshold", IntentFinancial, 4, false, false, LabelSuspicious},
		{"financial scam band", IntentFinancial, 6, false, false, LabelScam},
		{"high severity overrides low score", IntentUnknown, 2, true, false, LabelSuspicious},
		{"marketing needs more evidence", IntentMarketing, 6, false, true, LabelSafe},
		{"marketing at threshold", IntentMarketing, 7, false, false, LabelSuspicious},
		{"marketing scam band", IntentMarketing, 10.5, false, false, LabelScam},
		{"unknown intent uses default", IntentUnknown, 6, false, false, LabelSuspicious},
		{"unmapped intent uses default", Intent("OTHER"), 5.9, false, true, LabelSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, label := engine.ApplyThreshold(tt.intent, tt.score, tt.hasHigh)
			if safe != tt.wantSafe || label != tt.wantLabel {
				t.Errorf("ApplyThreshold(%q, %v, %v) = (%v, %q), want (%v, %q)",
					tt.intent, tt.score, tt.hasHigh, safe, label, tt.wantSafe, tt.wantLabel)
			}
		})
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("benign message", func(t *testing.T) {
		verdict := engine.Analyze("See you at lunch tomorrow")
		if !verdict.IsSafe || verdict.Label != LabelSafe || verdict.RiskScore != 0 {
			t.Errorf("verdict = %+v, want safe with zero score", verdict)
		}
		if len(verdict.Signals) != 0 {
			t.Errorf("signals = %v, want none", verdict.Signals)
		}
	})

	t.Run("credential phishing is a scam", func(t *testing.T) {
		verdict := engine.Analyze("Please enter your password immediately")
		if verdict.IsSafe {
			t.Error("IsSafe = true, want false")
		}
		if verdict.Intent != IntentFinancial {
			t.Errorf("Intent = %q, want %q", verdict.Intent, IntentFinancial)
		}
		// CREDENTIAL_PROMPT (5) + URGENCY (3) against the financial scam band.
		if verdict.RiskScore != 8 {
			t.Errorf("RiskScore = %v, want 8", verdict.RiskScore)
		}
		if verdict.Label != LabelScam {
			t.Errorf("Label = %q, want %q", verdict.Label, LabelScam)
		}
		var hasHigh bool
		for _, s := range verdict.Signals {
			if s.Severity == SeverityHigh {
				hasHigh = true
			}
		}
		if !hasHigh {
			t.Error("expected at least one HIGH severity signal")
		}
	})

	t.Run("ip url alone is suspicious", func(t *testing.T) {
		verdict := engine.Analyze("Login at http://192.168.1.5/account")
		if verdict.IsSafe || verdict.Label != LabelSuspicious {
			t.Errorf("verdict = %+v, want unsafe SUSPICIOUS", verdict)
		}
		if verdict.RiskScore != 5 {
			t.Errorf("RiskScore = %v, want 5", verdict.RiskScore)
		}
	})

	t.Run("additional evidence escalates", func(t *testing.T) {
		base := engine.Analyze("Login at http://192.168.1.5/account")
		escalated := engine.Analyze("Urgent: Login at http://192.168.1.5/account")
		if escalated.RiskScore <= base.RiskScore {
			t.Errorf("score did not grow: %v -> %v", base.RiskScore, escalated.RiskScore)
		}
		if escalated.Label != LabelScam {
			t.Errorf("Label = %q, want %q", escalated.Label, LabelScam)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		msg := "Urgent: verify your bank account at http://paypal.security-update.com or face legal action"
		first := engine.Analyze(msg)
		second := engine.Analyze(msg)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Analyze is not deterministic:\n%+v\n%+v", first, second)
		}
	})

	t.Run("signal order follows detector groups", func(t *testing.T) {
		verdict := engine.Analyze("Urgent: open http://bit.ly/x1")
		if len(verdict.Signals) != 2 {
			t.Fatalf("signals = %v, want exactly two", verdict.Signals)
		}
		if verdict.Signals[0].Type != SignalUrgency || verdict.Signals[1].Type != SignalShortenedURL {
			t.Errorf("signal order = [%s %s], want phrase signals before URL findings",
				verdict.Signals[0].Type, verdict.Signals[1].Type)
		}
	})
}

func TestFindingToSignalSeverity(t *testing.T) {
	if s := findingToSignal(Finding{Type: SignalSuspiciousTLD, Score: 3}); s.Severity != SeverityMedium {
		t.Errorf("score 3 severity = %q, want %q", s.Severity, SeverityMedium)
	}
	if s := findingToSignal(Finding{Type: SignalIPURL, Score: 5}); s.Severity != SeverityHigh {
		t.Errorf("score 5 severity = %q, want %q", s.Severity, SeverityHigh)
	}
}
