// Package intent classifies user messages before any retrieval or
// generation call is made.
//
// Classification is a pure lexical match against a declarative rule table
// of (intent, language, phrases). Matching is on whole tokens or whole
// token sequences, never raw substrings, so a keyword like "rain" does not
// fire inside "training". Intents are evaluated in a fixed priority order
// (Weather, Directions, Web) with AppData as the default, so overlapping
// keywords resolve deterministically.
package intent

import (
	"strings"
	"unicode"

	"github.com/medinaguide/medina/internal/i18n"
)

// Intent is the classification of an incoming user message.
type Intent int

const (
	// AppData means the query should be answered from the domain tables.
	AppData Intent = iota
	// Weather routes to the weather lookup adapter.
	Weather
	// Directions routes to the routing lookup adapter.
	Directions
	// Web routes to the web search adapter.
	Web
)

// String returns the intent name for logging.
func (i Intent) String() string {
	switch i {
	case Weather:
		return "weather"
	case Directions:
		return "directions"
	case Web:
		return "web"
	default:
		return "app_data"
	}
}

// External reports whether the intent requires an external lookup adapter.
func (i Intent) External() bool {
	return i != AppData
}

// rule binds one intent to the phrases that trigger it in one language.
// New languages or phrases are added here without touching control flow.
type rule struct {
	intent  Intent
	lang    string
	phrases []string
}

var rules = []rule{
	{Weather, i18n.LangEN, []string{
		"weather", "temperature", "forecast", "rain", "sunny", "humidity",
	}},
	{Weather, i18n.LangFR, []string{
		"météo", "meteo", "température", "pluie", "prévisions", "previsions",
	}},
	{Weather, i18n.LangAR, []string{
		"الطقس", "طقس", "حرارة", "درجة الحرارة", "أمطار", "مطر",
	}},

	{Directions, i18n.LangEN, []string{
		"directions", "route", "itinerary", "bus", "train", "tram", "taxi",
		"how to get", "how do i get",
	}},
	{Directions, i18n.LangFR, []string{
		"itinéraire", "itineraire", "trajet", "comment aller", "comment se rendre",
	}},
	{Directions, i18n.LangAR, []string{
		"اتجاهات", "طريق", "كيف أصل", "حافلة", "قطار",
	}},

	{Web, i18n.LangEN, []string{
		"latest", "price", "prices", "review", "reviews", "opening hours",
	}},
	{Web, i18n.LangFR, []string{
		"prix", "avis", "horaires d'ouverture", "dernières nouvelles",
	}},
	{Web, i18n.LangAR, []string{
		"سعر", "أسعار", "مراجعات", "آخر الأخبار",
	}},
}

// priority is the evaluation order; AppData is the default and never listed.
var priority = []Intent{Weather, Directions, Web}

// Classify returns the intent of a user message. It is deterministic,
// case-insensitive and performs no I/O. Rules for all languages are
// evaluated regardless of the request language, since users mix languages
// freely.
func Classify(text string) Intent {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return AppData
	}
	joined := " " + strings.Join(tokens, " ") + " "

	for _, want := range priority {
		for _, r := range rules {
			if r.intent != want {
				continue
			}
			for _, phrase := range r.phrases {
				if matchPhrase(joined, phrase) {
					return want
				}
			}
		}
	}
	return AppData
}

// tokenize lowercases and splits on any rune that is not a letter or
// digit. Works for Latin and Arabic script alike.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// matchPhrase reports whether the tokenized phrase occurs as a contiguous
// token sequence in the space-joined, space-padded token string.
func matchPhrase(joined, phrase string) bool {
	want := tokenize(phrase)
	if len(want) == 0 {
		return false
	}
	return strings.Contains(joined, " "+strings.Join(want, " ")+" ")
}
