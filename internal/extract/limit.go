package extract

import (
	"regexp"
	"strings"

	"github.com/pocketfin/pocketfin/internal/category"
	"github.com/pocketfin/pocketfin/internal/llm"
)

// limitConfirmRE detects the explicit limit confirmation the assistant is
// instructed to emit: `I've set a limit for <category> at target <amount>`.
var limitConfirmRE = regexp.MustCompile(
	`(?i)\b(?:i'?ve|i have)\s+set\s+(?:a\s+)?(?:spending\s+)?limit\s+for\s+([\p{L} &'-]+?)\s+at\s+target\s*([$€£¥]?)\s*(\d+(?:[.,]\d+)?)`)

// looseLimitRE covers softer phrasings of the same confirmation
// ("set a limit of $50 for Dining Out", "limit for Groceries is now $200").
var looseLimitRE = regexp.MustCompile(
	`(?i)\blimit\b[^.!?\n]*?\bfor\s+([\p{L} &'-]+?)\s+(?:at|of|to|is now)\s*([$€£¥]?)\s*(\d+(?:[.,]\d+)?)` +
		`|\blimit\s+of\s*([$€£¥]?)\s*(\d+(?:[.,]\d+)?)\s+for\s+([\p{L} &'-]+)`)

// suggestionRE parses a specific category+amount suggestion out of an
// assistant message, either the ranked-list form `**Dining Out** — target
// $59.22` or an inline `limit for Dining Out at $59.22`.
var suggestionRE = regexp.MustCompile(
	`(?i)\*\*([\p{L} &'-]+?)\*\*\s*[—–:-]+\s*(?:target|limit|cap)?\s*([$€£¥]?)\s*(\d+(?:[.,]\d+)?)` +
		`|\b(?:limit|cap|budget)\s+(?:for\s+)?([\p{L} &'-]+?)\s+(?:at|of|to)\s*([$€£¥]?)\s*(\d+(?:[.,]\d+)?)`)

// rankedLineRE parses one line of a ranked recommendation list. The strict
// form is `**Category** — target $X`; the loose form drops the emphasis
// and the word "target".
var rankedLineRE = regexp.MustCompile(
	`(?i)^\s*(?:\d+[.)]\s*)?(?:[-*•]\s*)?\*{0,2}([\p{L} &'-]+?)\*{0,2}\s*[—–:-]+\s*(?:target|limit|cap)?\s*[$€£¥]?\s*(\d+(?:[.,]\d+)?)\s*$`)

// IsLimitConfirmation reports whether a reply confirms a spending limit.
func IsLimitConfirmation(reply string) bool {
	return limitConfirmRE.MatchString(reply) || looseLimitRE.MatchString(reply)
}

// limitRule is one path of the limit-recovery cascade.
type limitRule struct {
	name    string
	extract func(messages []llm.Message, reply string) []Limit
}

var limitRules = []limitRule{
	{
		// The reply itself carries an explicit confirmation.
		name: "explicit-confirmation",
		extract: func(_ []llm.Message, reply string) []Limit {
			if m := limitConfirmRE.FindStringSubmatch(reply); m != nil {
				if l, ok := validLimit(m[1], m[3]); ok {
					return []Limit{l}
				}
			}
			if m := looseLimitRE.FindStringSubmatch(reply); m != nil {
				catPhrase, amount := m[1], m[3]
				if catPhrase == "" {
					catPhrase, amount = m[6], m[5]
				}
				if l, ok := validLimit(catPhrase, amount); ok {
					return []Limit{l}
				}
			}
			return nil
		},
	},
	{
		// The user confirmed with a bare affirmative; the specifics live in
		// the assistant's previous message. A generic, categoryless offer
		// ("shall I set a limit for any of your spending categories?")
		// yields nothing: a vague agreement must not fabricate a limit.
		name: "affirmed-suggestion",
		extract: func(messages []llm.Message, _ string) []Limit {
			if !IsAffirmative(lastUserText(messages)) {
				return nil
			}
			prev := lastAssistantText(messages)
			if prev == "" {
				return nil
			}
			if m := suggestionRE.FindStringSubmatch(prev); m != nil {
				catPhrase, amount := m[1], m[3]
				if catPhrase == "" {
					catPhrase, amount = m[4], m[6]
				}
				if l, ok := validLimit(catPhrase, amount); ok {
					return []Limit{l}
				}
			}
			return nil
		},
	},
	{
		// A ranked recommendation list inside an analysis reply; each line
		// is validated independently and non-taxonomy phrases are dropped.
		name: "ranked-list",
		extract: func(_ []llm.Message, reply string) []Limit {
			var out []Limit
			for _, line := range strings.Split(reply, "\n") {
				m := rankedLineRE.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				if l, ok := validLimit(m[1], m[2]); ok {
					out = append(out, l)
				}
			}
			return out
		},
	},
}

// ReplyLimits attempts post-call extraction of spending limits. The three
// paths are tried in order; the first that yields candidates wins.
func ReplyLimits(messages []llm.Message, reply string) []Limit {
	for _, rule := range limitRules {
		if limits := rule.extract(messages, reply); len(limits) > 0 {
			return limits
		}
	}
	return nil
}

// validLimit is the single validity funnel for all three paths: the
// category phrase must name a taxonomy member in the variable-cost subset
// (no normalization guessing: "any of your spending categories" must not
// become a record), and the amount must be positive, rounded to
// minor-unit precision.
func validLimit(catPhrase, amount string) (Limit, bool) {
	cat, ok := category.ByName(strings.TrimSpace(catPhrase))
	if !ok || cat.Class != category.ClassVariable {
		return Limit{}, false
	}
	amt, ok := parseAmount(amount)
	if !ok || !amt.IsPositive() {
		return Limit{}, false
	}
	return Limit{Category: cat, Amount: RoundMinorUnit(amt)}, true
}
