package core

import (
	"regexp"
)

// Tables holds the declarative configuration the engine matches against.
// A Tables value is immutable after construction and safe for concurrent use.
type Tables struct {
	// TrustedPatterns are legitimate transactional message shapes (OTP
	// delivery notices). A match short-circuits the whole pipeline.
	TrustedPatterns []*regexp.Regexp

	// TrustedDomains exempts URLs whose host ends with one of these
	// suffixes from all structural checks.
	TrustedDomains []string

	FinancialKeywords []string
	AcademicKeywords  []string
	MarketingKeywords []string

	ShortenerDomains []string
	SuspiciousTLDs   []string
	BrandNames       []string

	// IntentThresholds maps each intent to the minimum risk score at which
	// a message is judged unsafe. Financial messages are judged on a lower
	// bar because the cost of a missed credential theft is higher than for
	// marketing spam.
	IntentThresholds map[Intent]float64
	DefaultThreshold float64

	// ScamMultiplier scales a threshold into the score at which the label
	// escalates from SUSPICIOUS to SCAM.
	ScamMultiplier float64

	EntropyMinLength int
	EntropyThreshold float64
}

// DefaultTables returns the built-in detection tables.
func DefaultTables() *Tables {
	return &Tables{
		TrustedPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^your otp (is|code)?\s*:?\s*\d{4,8}$`),
			regexp.MustCompile(`(?i)^use \d{4,8} as your.*verification code$`),
			regexp.MustCompile(`(?i)^\d{6}\s+is your.*code$`),
		},
		TrustedDomains: []string{
			"google.com", "youtube.com", "youtu.be", "microsoft.com",
			"apple.com", "amazon.com", "facebook.com", "instagram.com",
			"twitter.com", "linkedin.com", "github.com", "stackoverflow.com",
			"hdfcbank.com", "netbanking.hdfcbank.com",
		},
		FinancialKeywords: []string{
			"bank", "banking", "account", "otp", "kyc", "atm",
			"payment", "transfer", "transaction", "wallet", "upi",
			"credit card", "debit card", "cvv", "pin", "password",
		},
		AcademicKeywords: []string{
			"hackathon", "coding", "bootcamp", "workshop", "college",
			"university", "course", "exam", "student", "registration",
			"admission", "scholarship", "internship",
		},
		MarketingKeywords: []string{
			"discount", "offer", "sale", "coupon", "promo", "deal",
			"limited time", "buy now", "certification", "training",
		},
		ShortenerDomains: []string{
			"bit.ly", "tinyurl.com", "t.co", "goo.gl", "is.gd", "rebrand.ly",
		},
		SuspiciousTLDs: []string{
			"xyz", "top", "click", "zip", "tk", "loan", "online", "vip",
		},
		BrandNames: []string{
			"google", "facebook", "amazon", "microsoft", "apple", "paypal", "hdfc",
		},
		IntentThresholds: map[Intent]float64{
			IntentFinancial: 4,
			IntentMarketing: 7,
			IntentAcademic:  8,
			IntentUnknown:   6,
		},
		DefaultThreshold: 6,
		ScamMultiplier:   1.5,
		EntropyMinLength: 8,
		EntropyThreshold: 4.5,
	}
}
