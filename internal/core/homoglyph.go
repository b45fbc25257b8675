package core

import (
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// Homoglyph detection flags hostnames that visually impersonate a known
// brand by mixing Latin with Cyrillic or Greek confusables. It is
// deliberately conservative: pure single-script internationalized domains
// are never flagged, and a label only matches when its visual skeleton
// exactly equals a brand skeleton.

// brandReference maps brand skeletons to their official domains. It is not a
// whitelist; it only identifies which brand a spoofed label targets.
var brandReference = map[string][]string{
	"paypal":    {"paypal.com"},
	"google":    {"google.com"},
	"microsoft": {"microsoft.com"},
	"apple":     {"apple.com"},
	"amazon":    {"amazon.com"},
	"facebook":  {"facebook.com"},
}

// confusables maps common Cyrillic and Greek lookalikes to their Latin
// skeleton. The table is kept small to avoid false positives.
var confusables = map[rune]rune{
	// Cyrillic
	'а': 'a', 'А': 'a',
	'е': 'e', 'Е': 'e',
	'о': 'o', 'О': 'o',
	'р': 'p', 'Р': 'p',
	'с': 'c', 'С': 'c',
	'х': 'x', 'Х': 'x',
	'у': 'y', 'У': 'y',
	'к': 'k', 'К': 'k',
	'м': 'm', 'М': 'm',
	'т': 't', 'Т': 't',
	// Greek
	'α': 'a', 'Α': 'a',
	'β': 'b', 'Β': 'b',
	'ο': 'o', 'Ο': 'o',
	'ρ': 'p', 'Ρ': 'p',
	'ι': 'i', 'Ι': 'i',
	'τ': 't', 'Τ': 't',
	'ν': 'v', 'Ν': 'v',
	'σ': 's', 'Σ': 's',
}

// detectHomoglyph reports whether the hostname visually impersonates a known
// brand, and which brand it targets.
func detectHomoglyph(host string) (bool, string) {
	normalized := normalizeHostname(host)
	if normalized == "" {
		return false, ""
	}

	// Only mixed Latin + Cyrillic/Greek hostnames are candidates. Pure
	// IDNs (CJK, Arabic, single-script Cyrillic) are legitimate.
	if !hasMixedScript(strings.ReplaceAll(normalized, ".", "")) {
		return false, ""
	}

	for _, label := range strings.Split(normalized, ".") {
		skeleton := labelSkeleton(label)
		official, known := brandReference[skeleton]
		if !known {
			continue
		}
		lower := strings.ToLower(normalized)
		for _, d := range official {
			if lower == d || strings.HasSuffix(lower, "."+d) {
				return false, ""
			}
		}
		return true, skeleton
	}
	return false, ""
}

// normalizeHostname decodes punycode labels and applies NFKC normalization.
func normalizeHostname(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return ""
	}
	labels := strings.Split(host, ".")
	for i, label := range labels {
		if strings.HasPrefix(strings.ToLower(label), "xn--") {
			if decoded, err := idna.ToUnicode(label); err == nil {
				label = decoded
			}
		}
		labels[i] = norm.NFKC.String(label)
	}
	return strings.Join(labels, ".")
}

// labelSkeleton maps each character of a label to its visual skeleton.
func labelSkeleton(label string) string {
	var b strings.Builder
	for _, r := range label {
		// Full-width ASCII folds onto its ASCII counterpart.
		if r >= 0xFF01 && r <= 0xFF5E {
			r -= 0xFEE0
		}
		if mapped, ok := confusables[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			// Leave anything else alone rather than map aggressively.
			b.WriteRune(r)
		}
	}
	return b.String()
}

// hasMixedScript reports whether text contains Latin characters alongside
// Cyrillic or Greek ones.
func hasMixedScript(text string) bool {
	var latin, cyrillic, greek bool
	for _, r := range text {
		switch {
		case r >= 0x0041 && r <= 0x007A || r >= 0x00C0 && r <= 0x024F:
			latin = true
		case r >= 0x0400 && r <= 0x052F || r >= 0x2DE0 && r <= 0x2DFF:
			cyrillic = true
		case r >= 0x0370 && r <= 0x03FF || r >= 0x1F00 && r <= 0x1FFF:
			greek = true
		}
	}
	return latin && (cyrillic || greek)
}
