// Package scorer rates how well a query matches a catalog entry. Several
// signals are evaluated against the target (exact, prefix, subsequence,
// substring, transliteration, synonym, keyword, edit-distance similarity)
// and the best one wins; the reasons that fired travel with the score so
// callers can explain a ranking. Matching is case-insensitive and the
// package holds no state.
package scorer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Signal scores. Signals combine by taking the maximum across everything that
// fired, never by summation.
const (
	ScoreExact           = 1000
	ScorePrefix          = 500
	ScoreSimilarityHigh  = 400
	ScoreTransliteration = 350
	ScoreSubsequence     = 300
	ScoreSynonym         = 300
	ScoreSimilarityMid   = 250
	ScoreSubstring       = 200
	ScoreSimilarityLow   = 150
	ScoreKeywordBase     = 200
	ScoreKeywordPerToken = 50
)

// Reason tags accumulated for every signal that fired.
const (
	ReasonExact           = "exact"
	ReasonPrefix          = "prefix"
	ReasonSubsequence     = "subsequence"
	ReasonSubstring       = "substring"
	ReasonTransliteration = "transliteration"
	ReasonSynonym         = "synonym"
	ReasonKeyword         = "keyword"
	ReasonSimilarity      = "similarity"
)

// Result carries the combined score and the tags of every contributing signal.
type Result struct {
	Score   int // In [0, 1000]
	Reasons []string
}

// Score evaluates query against target (and an optional keyword list) and
// combines the independent matching signals into one score. It is pure,
// deterministic, and case-insensitive; it never fails, including on empty
// inputs. An exact match short-circuits at 1000 without evaluating anything
// else. The edit-distance signal is evaluated last: it is the only signal
// that is not O(n).
func Score(query, target string, keywords []string) Result {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(strings.TrimSpace(target))

	if q == t {
		return Result{Score: ScoreExact, Reasons: []string{ReasonExact}}
	}

	var res Result
	fire := func(score int, reason string) {
		res.Reasons = append(res.Reasons, reason)
		if score > res.Score {
			res.Score = score
		}
	}

	if strings.HasPrefix(t, q) {
		fire(ScorePrefix, ReasonPrefix)
	}
	if subsequenceMatch(q, t) {
		fire(ScoreSubsequence, ReasonSubsequence)
	}
	if q != "" && strings.Contains(t, q) {
		fire(ScoreSubstring, ReasonSubstring)
	}
	if translitMatch(q, t) {
		fire(ScoreTransliteration, ReasonTransliteration)
	}
	if synonymMatch(q, t) {
		fire(ScoreSynonym, ReasonSynonym)
	}
	if len(keywords) > 0 {
		if n := matchKeywords(q, keywords); n > 0 {
			fire(ScoreKeywordBase+ScoreKeywordPerToken*n, ReasonKeyword)
		}
	}

	switch sim := Similarity(q, t); {
	case sim >= 0.8:
		fire(ScoreSimilarityHigh, ReasonSimilarity)
	case sim >= 0.6:
		fire(ScoreSimilarityMid, ReasonSimilarity)
	case sim >= 0.4:
		fire(ScoreSimilarityLow, ReasonSimilarity)
	}

	return res
}

// Levenshtein returns the single-edit-cost (insert/delete/substitute)
// distance between a and b.
func Levenshtein(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}

// Similarity returns the normalized edit-distance similarity
// 1 - distance/max(runeLen(a), runeLen(b)), in [0, 1].
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// subsequenceMatch reports whether every non-space character of target
// appears in query in the same relative order, scanning target left to right
// and consuming matching characters from query.
func subsequenceMatch(query, target string) bool {
	qr := []rune(query)
	i := 0
	matchedAny := false
	for _, ch := range target {
		if unicode.IsSpace(ch) {
			continue
		}
		matchedAny = true
		for i < len(qr) && qr[i] != ch {
			i++
		}
		if i >= len(qr) {
			return false
		}
		i++
	}
	return matchedAny
}

// matchKeywords tokenizes the query on whitespace and counts tokens that
// match any keyword by substring in either direction, or through the
// transliteration/synonym tables.
func matchKeywords(query string, keywords []string) int {
	matched := 0
	for _, tok := range strings.Fields(query) {
		for _, raw := range keywords {
			kw := strings.ToLower(strings.TrimSpace(raw))
			if kw == "" {
				continue
			}
			if strings.Contains(kw, tok) || strings.Contains(tok, kw) ||
				translitMatch(tok, kw) || synonymMatch(tok, kw) {
				matched++
				break
			}
		}
	}
	return matched
}
