// Package lang attributes a text sample to one side of the EN<->TR pair.
//
// The heuristic is deterministic and total: any input maps to exactly one
// of the two tags. Turkish-specific letters are a strong per-character
// signal; common function words break ties for ASCII-only text.
package lang

import (
	"strings"

	"tercuman/internal/domain"
)

var turkishLetters = map[rune]struct{}{
	'ç': {}, 'ğ': {}, 'ı': {}, 'ö': {}, 'ş': {}, 'ü': {},
	'Ç': {}, 'Ğ': {}, 'İ': {}, 'Ö': {}, 'Ş': {}, 'Ü': {},
}

var turkishStopwords = map[string]struct{}{
	"ve": {}, "bir": {}, "bu": {}, "da": {}, "de": {}, "ne": {},
	"için": {}, "ama": {}, "evet": {}, "hayır": {}, "ben": {}, "sen": {},
	"biz": {}, "var": {}, "yok": {}, "çok": {}, "gibi": {}, "daha": {},
	"mi": {}, "mı": {}, "mu": {}, "şey": {}, "tamam": {}, "nasıl": {},
}

var englishStopwords = map[string]struct{}{
	"the": {}, "and": {}, "is": {}, "are": {}, "a": {}, "an": {},
	"i": {}, "you": {}, "we": {}, "it": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "for": {}, "this": {}, "that": {}, "with": {},
	"yes": {}, "no": {}, "not": {}, "have": {}, "do": {}, "what": {},
}

// Detect maps a text sample to EN or TR. Empty or ambiguous input
// defaults to English.
func Detect(text string) domain.Language {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return domain.LanguageEnglish
	}

	for _, r := range trimmed {
		if _, ok := turkishLetters[r]; ok {
			return domain.LanguageTurkish
		}
	}

	var en, tr int
	for _, token := range strings.Fields(strings.ToLower(trimmed)) {
		token = strings.Trim(token, ".,!?;:\"'()")
		if token == "" {
			continue
		}
		if _, ok := turkishStopwords[token]; ok {
			tr++
		}
		if _, ok := englishStopwords[token]; ok {
			en++
		}
	}
	if tr > en {
		return domain.LanguageTurkish
	}
	return domain.LanguageEnglish
}
