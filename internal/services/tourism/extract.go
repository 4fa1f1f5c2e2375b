package tourism

import (
	"regexp"
	"strings"
	"unicode"
)

// Closed-class words that never form part of a place name. Membership is
// checked case-normalized so "The" and "the" share one entry.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true,
	"and": true, "or": true,
	"can": true, "what": true, "where": true, "how": true, "when": true, "why": true,
	"is": true, "are": true, "will": true, "want": true,
	"to": true, "in": true, "at": true, "for": true,
	"i": true, "my": true, "me": true, "we": true, "our": true,
}

// Words that terminate a capitalized run after an anchor phrase.
var runTerminators = map[string]bool{
	"what": true, "let": true, "temperature": true, "places": true, "and": true,
}

// Anchor phrases signaling that a destination follows. Tried in declared
// order; within a pattern every match is scanned and the first one yielding
// a non-empty cleaned run wins.
var anchorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:going\s+to|traveling\s+to|travelling\s+to|travel\s+to|want\s+to\s+visit|plan\s+to\s+visit|visiting|visits|visit)\s+`),
	regexp.MustCompile(`(?i)\b(?:in|at)\s+`),
	regexp.MustCompile(`(?i)\bto\s+`),
	regexp.MustCompile(`(?i)\b(?:place|city|location)\s+(?:is|called|named|in)\s+`),
}

var sentenceSplit = regexp.MustCompile(`[.!?]\s+`)

func isStopWord(word string) bool {
	return stopWords[strings.ToLower(word)]
}

func isCapitalized(word string) bool {
	r := []rune(word)
	return len(r) > 0 && unicode.IsUpper(r[0])
}

func trimPunct(word string) string {
	return strings.TrimRight(word, ".,!?;:")
}

// ExtractPlaceName guesses a place name from free query text via an ordered
// fallback chain: anchor phrases, then a per-sentence capitalization scan,
// then a last-resort global scan. Returns "" when nothing plausible is found.
func ExtractPlaceName(query string) string {
	text := strings.TrimSpace(query)
	if text == "" {
		return ""
	}

	if place := extractByAnchor(text); place != "" {
		return place
	}
	if place := extractBySentence(text); place != "" {
		return place
	}
	return extractGlobal(text)
}

func extractByAnchor(text string) string {
	for _, pattern := range anchorPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			run := captureRun(text[loc[1]:])
			if place := cleanRun(run); place != "" {
				return place
			}
		}
	}
	return ""
}

// captureRun collects the maximal run of capitalized tokens following an
// anchor, stopping at the first lowercase token, terminator word, or
// trailing punctuation.
func captureRun(rest string) []string {
	var run []string
	for _, word := range strings.Fields(rest) {
		trimmed := trimPunct(word)
		if trimmed == "" || !isCapitalized(trimmed) {
			break
		}
		if runTerminators[strings.ToLower(trimmed)] {
			break
		}
		run = append(run, trimmed)
		if len(trimmed) != len(word) {
			break
		}
	}
	return run
}

// cleanRun strips a leading article and drops stop words; whatever remains
// is the candidate place name.
func cleanRun(run []string) string {
	if len(run) > 0 {
		switch strings.ToLower(run[0]) {
		case "the", "a", "an":
			run = run[1:]
		}
	}

	var kept []string
	for _, word := range run {
		if !isStopWord(word) {
			kept = append(kept, word)
		}
	}

	place := strings.Join(kept, " ")
	if len(place) <= 2 {
		return ""
	}
	return place
}

func extractBySentence(text string) string {
	for _, sentence := range sentenceSplit.Split(text, -1) {
		words := strings.Fields(sentence)
		for i, word := range words {
			cleaned := trimPunct(word)
			if len(cleaned) <= 2 || !isCapitalized(cleaned) || isStopWord(cleaned) {
				continue
			}

			run := []string{cleaned}
			for j := i + 1; j < len(words) && j < i+3; j++ {
				next := trimPunct(words[j])
				if next == "" || !isCapitalized(next) || isStopWord(next) {
					break
				}
				run = append(run, next)
			}

			place := strings.Join(run, " ")
			if len(place) > 2 && !isStopWord(place) {
				return place
			}
		}
	}
	return ""
}

// extractGlobal is the last resort: every capitalized word anywhere in the
// text. A single candidate is only trusted when the text itself does not
// start with a capital, so ordinary sentence-initial capitalization is not
// mistaken for a place.
func extractGlobal(text string) string {
	var candidates []string
	for _, word := range strings.Fields(text) {
		cleaned := trimPunct(word)
		if len(cleaned) > 2 && isCapitalized(cleaned) && !isStopWord(cleaned) {
			candidates = append(candidates, cleaned)
		}
	}

	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) > 1 || !isCapitalized(text) {
		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		return strings.Join(candidates, " ")
	}
	return ""
}
