package category

import (
	"regexp"
	"strings"
	"sync"
)

// Scoring weights. Exact term > whole word > substring; example phrases sit
// between whole-word and substring so "ate out" beats a stray substring hit.
const (
	scoreExactTerm = 10
	scoreWholeWord = 5
	scoreExample   = 4
	scoreSubstring = 2
)

var (
	wordRECache   = map[string]*regexp.Regexp{}
	wordRECacheMu sync.Mutex
)

func wholeWordRE(term string) *regexp.Regexp {
	wordRECacheMu.Lock()
	defer wordRECacheMu.Unlock()
	re, ok := wordRECache[term]
	if !ok {
		re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		wordRECache[term] = re
	}
	return re
}

// Normalize maps free text to exactly one canonical category.
//
// Resolution order:
//  1. exact case-insensitive match against canonical names
//  2. merchant-name override (always Dining Out)
//  3. keyword/example scoring, highest score wins, ties broken by table order
//  4. Other when nothing scores above zero
//
// Normalize is total, deterministic and idempotent:
// Normalize(Normalize(x).Name) == Normalize(x) for all x.
func Normalize(freeText string) Category {
	text := strings.TrimSpace(freeText)
	if text == "" {
		return Other
	}

	if c, ok := ByName(text); ok {
		return c
	}

	lower := strings.ToLower(text)
	for _, merchant := range merchantOverrides {
		if strings.Contains(lower, merchant) {
			return DiningOut
		}
	}

	best := Other
	bestScore := 0
	for _, c := range all {
		s := score(lower, c)
		if s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

func score(lower string, c Category) int {
	total := 0
	for _, kw := range c.keywords {
		switch {
		case lower == kw:
			total += scoreExactTerm
		case wholeWordRE(kw).MatchString(lower):
			total += scoreWholeWord
		case strings.Contains(lower, kw):
			total += scoreSubstring
		}
	}
	for _, ex := range c.examples {
		if strings.Contains(lower, ex) {
			total += scoreExample
		}
	}
	return total
}
