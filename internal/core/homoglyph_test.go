package core

import "testing"

func TestDetectHomoglyph(t *testing.T) {
	tests := []struct {
		name      string
		host      string
		wantHit   bool
		wantBrand string
	}{
		// Cyrillic er and a in the first two positions.
		{"cyrillic paypal lookalike", "раypal.com", true, "paypal"},
		// Cyrillic o twice.
		{"cyrillic google lookalike", "gооgle.com", true, "google"},
		// Cyrillic a and er twice, Latin tail.
		{"cyrillic apple lookalike", "аррle.com", true, "apple"},
		{"genuine latin domain", "paypal.com", false, ""},
		{"unrelated latin domain", "example.com", false, ""},
		// Single-script Cyrillic IDN; the palochka has no Latin skeleton.
		{"punycode single-script idn", "xn--80ak6aa92e.com", false, ""},
		{"empty host", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, brand := detectHomoglyph(tt.host)
			if hit != tt.wantHit || brand != tt.wantBrand {
				t.Errorf("detectHomoglyph(%q) = (%v, %q), want (%v, %q)",
					tt.host, hit, brand, tt.wantHit, tt.wantBrand)
			}
		})
	}
}

func TestLabelSkeleton(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"PayPal", "paypal"},
		{"раypal", "paypal"}, // Cyrillic er, a
		{"example123", "example123"},
	}

	for _, tt := range tests {
		if got := labelSkeleton(tt.label); got != tt.want {
			t.Errorf("labelSkeleton(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestHasMixedScript(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"paypal", false},
		{"раypal", true},  // Cyrillic + Latin
		{"аррӏе", false},  // pure Cyrillic
		{"αβγ", false},    // pure Greek
		{"googlе", true},  // Latin + Cyrillic ie
	}

	for _, tt := range tests {
		if got := hasMixedScript(tt.text); got != tt.want {
			t.Errorf("hasMixedScript(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
