package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/seenimoa/neuroquant/pkg/models"
)

// ------------------------------------------------------------------
// Keyword-based classifier (offline, no model server needed).
// When a hosted model is configured the engine uses it instead; this
// classifier is the deterministic fallback.
// ------------------------------------------------------------------

// bullish / bearish keyword dictionaries (lowercase).
var bullishWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "soar": 0.7, "jump": 0.5,
	"upbeat": 0.5, "growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"strong": 0.4, "recovery": 0.5, "breakout": 0.6, "gain": 0.4,
	"record high": 0.7, "all-time high": 0.7, "beats": 0.5,
	"exceeds": 0.5, "tops estimates": 0.6, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "buyback": 0.5, "partnership": 0.3,
}

var bearishWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6, "tumble": 0.6,
	"sink": 0.5, "downgrade": 0.6, "underperform": 0.6, "selloff": 0.7,
	"sell-off": 0.7, "weak": 0.4, "decline": 0.5, "loss": 0.4, "fall": 0.4,
	"correction": 0.5, "default": 0.7, "fraud": 0.8, "lawsuit": 0.6,
	"probe": 0.5, "investigation": 0.5, "recall": 0.5, "layoff": 0.5,
	"misses": 0.5, "warning": 0.5, "concern": 0.3, "bubble": 0.5,
}

// Lexicon classifies headlines by weighted keyword matches.
type Lexicon struct{}

// NewLexicon returns the keyword classifier.
func NewLexicon() *Lexicon { return &Lexicon{} }

func (*Lexicon) Name() string { return "lexicon" }

// Classify never fails. Confidence grows with the number of matched
// keywords and shrinks when bullish and bearish terms cancel out.
func (*Lexicon) Classify(_ context.Context, text string) (Prediction, error) {
	net, conf := ScoreHeadline(text)
	switch {
	case net > 0:
		return Prediction{Label: models.SentimentPositive, Confidence: conf * net}, nil
	case net < 0:
		return Prediction{Label: models.SentimentNegative, Confidence: conf * -net}, nil
	default:
		return Prediction{Label: models.SentimentNeutral, Confidence: conf}, nil
	}
}

// ScoreHeadline returns the net keyword score of a headline in -1..+1
// and a match-based confidence. Keywords match whole words, so "gain"
// counts in "gains" but not in "against".
func ScoreHeadline(headline string) (score float64, confidence float64) {
	tokens := tokenize(headline)

	bullScore := 0.0
	bearScore := 0.0
	matches := 0

	for word, weight := range bullishWords {
		if containsPhrase(tokens, word) {
			bullScore += weight
			matches++
		}
	}
	for word, weight := range bearishWords {
		if containsPhrase(tokens, word) {
			bearScore += weight
			matches++
		}
	}

	total := bullScore + bearScore
	if matches == 0 || total == 0 {
		return 0, 0.1 // no signal
	}

	score = (bullScore - bearScore) / total
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// inflections a keyword may carry on its last word.
var inflections = []string{"", "s", "es", "d", "ed", "ing", "er"}

// tokenize lowercases s and splits it on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsPhrase reports whether the keyword's words appear consecutively
// in tokens. Only the final word may be inflected.
func containsPhrase(tokens []string, keyword string) bool {
	words := tokenize(keyword)
	if len(words) == 0 || len(words) > len(tokens) {
		return false
	}
	last := len(words) - 1
	for i := 0; i+last < len(tokens); i++ {
		ok := true
		for j := 0; j < last; j++ {
			if tokens[i+j] != words[j] {
				ok = false
				break
			}
		}
		if ok && inflected(tokens[i+last], words[last]) {
			return true
		}
	}
	return false
}

func inflected(token, word string) bool {
	rest, found := strings.CutPrefix(token, word)
	if !found {
		return false
	}
	for _, suffix := range inflections {
		if rest == suffix {
			return true
		}
	}
	return false
}
