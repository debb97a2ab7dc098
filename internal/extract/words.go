package extract

import (
	"regexp"
	"strings"
)

// stopwords are tokens that never belong in a synthesized description:
// command vocabulary, articles, prepositions, pronouns, filler.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"i": true, "my": true, "me": true, "we": true, "our": true, "it": true,
	"for": true, "on": true, "at": true, "in": true, "to": true, "of": true,
	"add": true, "record": true, "log": true, "please": true, "new": true,
	"expense": true, "income": true, "transaction": true, "spent": true,
	"paid": true, "pay": true, "pays": true, "bought": true, "buy": true,
	"got": true, "received": true, "earned": true, "cost": true, "costs": true,
	"total": true, "was": true, "is": true, "this": true, "that": true,
	"today": true, "yesterday": true, "just": true, "some": true,
	"every": true, "each": true, "per": true, "month": true, "months": true,
	"week": true, "weeks": true, "day": true, "days": true, "year": true, "years": true,
	"dollar": true, "dollars": true, "euro": true, "euros": true,
	"pound": true, "pounds": true, "yen": true, "usd": true, "eur": true, "gbp": true,
}

// smallWords stay lowercase inside a title (never at the start).
var smallWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "for": true, "to": true, "in": true, "on": true, "at": true,
}

var (
	numericTokenRE = regexp.MustCompile(`^[\d.,]+$`)
	wordSplitRE    = regexp.MustCompile(`[^\p{L}\d]+`)

	// trailingDateRE strips date clauses from a title tail
	// ("by June", "until 2027", "before next summer", "in March 2027").
	trailingDateRE = regexp.MustCompile(
		`(?i)\s+(?:by|before|until|till|in)\s+(?:next\s+\w+|january|february|march|april|may|june|july|august|september|october|november|december|\d{4})\b.*$`)

	// personalSuffixRE strips personal-reference tails ("for me", "for my son").
	personalSuffixRE = regexp.MustCompile(`(?i)\s+for\s+(?:me|us|myself|my\s+\w+)\s*$`)

	// leadingPrepRE strips leading prepositions and articles from a title.
	leadingPrepRE = regexp.MustCompile(`(?i)^(?:for|a|an|the|to|my|buying|saving)\s+`)
)

// MeaningfulWords returns the 1-3 most meaningful words of text: stopwords
// and numeric tokens removed, original order kept.
func MeaningfulWords(text string) []string {
	var out []string
	for _, tok := range wordSplitRE.Split(text, -1) {
		if tok == "" || numericTokenRE.MatchString(tok) {
			continue
		}
		if stopwords[strings.ToLower(tok)] {
			continue
		}
		out = append(out, tok)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// Describe synthesizes a short description from the user's message,
// falling back to the category name when nothing meaningful remains.
func Describe(text, fallback string) string {
	words := MeaningfulWords(text)
	if len(words) == 0 {
		return fallback
	}
	return TitleCase(strings.Join(words, " "))
}

// TitleCase upper-cases each word except small connectives, which stay
// lowercase unless they open the phrase.
func TitleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && smallWords[lower] {
			words[i] = lower
			continue
		}
		r := []rune(lower)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// CleanTitle normalizes a raw target title: leading prepositions off,
// trailing date clauses and personal references off, then title case.
func CleanTitle(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.Trim(t, `"'`)
	for {
		stripped := leadingPrepRE.ReplaceAllString(t, "")
		if stripped == t {
			break
		}
		t = stripped
	}
	t = trailingDateRE.ReplaceAllString(t, "")
	t = personalSuffixRE.ReplaceAllString(t, "")
	t = strings.TrimRight(strings.TrimSpace(t), ".,!?")
	if t == "" {
		return ""
	}
	return TitleCase(t)
}
