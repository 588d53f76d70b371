// Package assemble builds the bounded context block handed to the
// generation backend.
//
// The block is deterministic given the same records and caps: fixed
// category order (services, places, stadiums, news), one formatted line
// per record truncated to the per-line cap, and a final truncation of
// the whole block to the total cap. The caps bound model token cost and
// come from configuration, never from constants at the call sites.
package assemble

import (
	"fmt"
	"strings"

	"github.com/medinaguide/medina/internal/i18n"
	"github.com/medinaguide/medina/internal/store"
)

// Caps are the character budgets for the context block.
type Caps struct {
	Line  int // per-record line cap
	Total int // whole-block cap
}

// Input groups the records per category.
type Input struct {
	Services []store.Record
	Places   []store.Record
	Stadiums []store.Record
	News     []store.Record
}

// Block renders the context block for the given language.
// Empty categories produce no section at all.
func Block(in Input, lang string, caps Caps) string {
	var sections []string

	appendSection := func(headingID string, records []store.Record, format func(store.Record, string) string) {
		if len(records) == 0 {
			return
		}
		lines := make([]string, 0, len(records)+1)
		lines = append(lines, i18n.T(lang, headingID)+":")
		for _, r := range records {
			lines = append(lines, "- "+Truncate(format(r, lang), caps.Line))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	appendSection("context.services", in.Services, formatService)
	appendSection("context.places", in.Places, formatPlace)
	appendSection("context.stadiums", in.Stadiums, formatStadium)
	appendSection("context.news", in.News, formatNews)

	return Truncate(strings.Join(sections, "\n\n"), caps.Total)
}

// DisplayName picks the record name in the caller's language-ordered
// preference list, falling back to an empty string when all are absent.
func DisplayName(r store.Record, lang string) string {
	var chain []string
	switch lang {
	case i18n.LangFR:
		chain = []string{r.NameFR, r.NameEN, r.NameAR}
	case i18n.LangAR:
		chain = []string{r.NameAR, r.NameEN, r.NameFR}
	default:
		chain = []string{r.NameEN, r.NameFR, r.NameAR}
	}
	for _, name := range chain {
		if name != "" {
			return name
		}
	}
	return ""
}

func formatService(r store.Record, lang string) string {
	parts := []string{DisplayName(r, lang)}
	if r.Category != "" {
		parts = append(parts, r.Category)
	}
	if r.Address != "" {
		parts = append(parts, r.Address)
	}
	if r.Phone != "" {
		parts = append(parts, "tel: "+r.Phone)
	}
	return strings.Join(parts, ", ")
}

func formatPlace(r store.Record, lang string) string {
	if r.City != "" {
		return DisplayName(r, lang) + ", " + r.City
	}
	return DisplayName(r, lang)
}

func formatStadium(r store.Record, lang string) string {
	parts := []string{DisplayName(r, lang)}
	if r.City != "" {
		parts = append(parts, r.City)
	}
	if r.Capacity > 0 {
		parts = append(parts, fmt.Sprintf("capacity %d", r.Capacity))
	}
	return strings.Join(parts, ", ")
}

func formatNews(r store.Record, lang string) string {
	if !r.PublishedAt.IsZero() {
		return DisplayName(r, lang) + " (" + r.PublishedAt.Format("2006-01-02") + ")"
	}
	return DisplayName(r, lang)
}

// Truncate cuts s to at most n runes. Rune-based so multi-byte scripts
// are never cut mid-character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
