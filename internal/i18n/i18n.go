// Package i18n provides the localized user-facing message table.
//
// Every string shown to a caller lives here, keyed by (message id,
// language). The language is a per-request value carried explicitly by
// callers; there is no package-global current language.
package i18n

import (
	"fmt"
	"strings"
)

// Supported languages.
const (
	LangEN = "en"
	LangFR = "fr"
	LangAR = "ar"
)

// Normalize maps a request language code to a supported language,
// defaulting to English.
func Normalize(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case LangFR, "fr-fr", "french":
		return LangFR
	case LangAR, "ar-ma", "arabic":
		return LangAR
	default:
		return LangEN
	}
}

// T returns the message for (id, lang). Falls back to English, then to
// the id itself so a missing entry is visible rather than silent.
func T(lang, id string) string {
	if msg, ok := messages[id][lang]; ok {
		return msg
	}
	if msg, ok := messages[id][LangEN]; ok {
		return msg
	}
	return id
}

// Sprintf formats the localized message for (id, lang) with args.
func Sprintf(lang, id string, args ...any) string {
	return fmt.Sprintf(T(lang, id), args...)
}

// MessageIDs returns all known message ids. Used by tests to verify
// translation coverage.
func MessageIDs() []string {
	ids := make([]string, 0, len(messages))
	for id := range messages {
		ids = append(ids, id)
	}
	return ids
}
