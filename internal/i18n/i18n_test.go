package i18n

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", LangEN},
		{"fr", LangFR},
		{"ar", LangAR},
		{"FR", LangFR},
		{" ar ", LangAR},
		{"", LangEN},
		{"de", LangEN},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestT_Localized(t *testing.T) {
	en := T(LangEN, "refusal.domain")
	fr := T(LangFR, "refusal.domain")
	ar := T(LangAR, "refusal.domain")

	if en == fr || en == ar || fr == ar {
		t.Error("refusal.domain should differ across languages")
	}
	if !strings.Contains(en, "Rabat") {
		t.Errorf("English refusal should carry example queries, got %q", en)
	}
}

func TestT_FallbackToEnglish(t *testing.T) {
	// Unsupported language falls back to the English entry.
	if got, want := T("de", "error.try_later"), T(LangEN, "error.try_later"); got != want {
		t.Errorf("T(de) = %q, want English fallback %q", got, want)
	}
}

func TestT_UnknownIDReturnsID(t *testing.T) {
	if got := T(LangEN, "no.such.message"); got != "no.such.message" {
		t.Errorf("T() = %q, want id passthrough", got)
	}
}

// Every message id must be translated into all three supported languages;
// a missing entry would silently fall back to English in production.
func TestCoverage_AllLanguages(t *testing.T) {
	for _, id := range MessageIDs() {
		for _, lang := range []string{LangEN, LangFR, LangAR} {
			if _, ok := messages[id][lang]; !ok {
				t.Errorf("message %q missing language %q", id, lang)
			}
		}
	}
}

func TestSprintf(t *testing.T) {
	got := Sprintf(LangEN, "weather.report", "Rabat", "clear sky", 24.0, 18.0, 27.0, 12.0)
	if !strings.Contains(got, "Rabat") || !strings.Contains(got, "24") {
		t.Errorf("Sprintf() = %q", got)
	}
}
