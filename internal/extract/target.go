package extract

import (
	"regexp"
	"strings"

	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/shopspring/decimal"
)

// targetConfirmRE detects a reply that explicitly confirms a savings
// target/goal was set.
var targetConfirmRE = regexp.MustCompile(
	`(?i)\b(?:i'?ve|i have)\s+(?:set(?:\s+up)?|created|saved)\b[^.!\n]*\b(?:goal|target)\b` +
		`|\b(?:savings\s+)?(?:goal|target)\b[^.!\n]*\bhas been\s+(?:set|created|saved)\b` +
		`|✅[^\n]*\b(?:goal|target)\b`)

// IsTargetConfirmation reports whether a reply confirms a savings target.
func IsTargetConfirmation(reply string) bool {
	return targetConfirmRE.MatchString(reply) && !IsLimitConfirmation(reply)
}

// saveForRE captures the savings subject ("save 900 for a new phone").
var saveForRE = regexp.MustCompile(`(?i)\b(?:save|saving|goal)(?:\s+up)?(?:\s+of)?[\s\d.,$€£¥]*\bfor\s+([^.!?\n]+)`)

// quotedTitleRE captures a quoted title from the reply's own confirmation
// text (`I've set up the goal "New Phone" ...`).
var quotedTitleRE = regexp.MustCompile(`["“']([^"”']{2,60})["”']`)

// assistantAskRE captures the subject of the assistant's preceding question
// ("How much would you like to save for the trip?").
var assistantAskRE = regexp.MustCompile(`(?i)\bsav\w*\s+for\s+(?:the\s+|a\s+|an\s+)?([^.!?\n]+)\?`)

// themeTitles maps common savings theme words to canonical titles.
// Used when no usable description can be recovered from the conversation.
var themeTitles = []struct {
	word  string
	title string
}{
	{"phone", "New Phone"},
	{"hotel", "Hotel Stay"},
	{"trip", "Trip"},
	{"vacation", "Vacation"},
	{"holiday", "Vacation"},
	{"car", "New Car"},
	{"house", "House"},
	{"home", "House"},
	{"apartment", "House"},
	{"wedding", "Wedding"},
	{"education", "Education"},
	{"college", "Education"},
	{"university", "Education"},
	{"retirement", "Retirement"},
	{"emergency", "Emergency Fund"},
}

// targetInput is the material a target rule works from.
type targetInput struct {
	users         []string // last user messages, newest first
	assistantPrev string   // assistant message preceding the last user turn
	reply         string   // the model's confirmation reply
}

// targetRule is one step of the target-recovery cascade. It returns the
// amount and a raw (uncleaned) title; an empty title is allowed and falls
// through to the theme lexicon.
type targetRule struct {
	name    string
	extract func(in targetInput) (decimal.Decimal, string, bool)
}

var targetRules = []targetRule{
	{
		// Amount and description co-located in the newest user message.
		name: "colocated",
		extract: func(in targetInput) (decimal.Decimal, string, bool) {
			if len(in.users) == 0 {
				return decimal.Zero, "", false
			}
			amt, ok := largestNumber(in.users[0], false)
			if !ok {
				return decimal.Zero, "", false
			}
			title := rawTitle(in.users[0])
			if title == "" {
				return decimal.Zero, "", false
			}
			return amt, title, true
		},
	},
	{
		// Amount and description split across the last two user turns,
		// in either order.
		name: "split-across-turns",
		extract: func(in targetInput) (decimal.Decimal, string, bool) {
			if len(in.users) < 2 {
				return decimal.Zero, "", false
			}
			if amt, ok := largestNumber(in.users[0], false); ok {
				if title := rawTitle(in.users[1]); title != "" {
					return amt, title, true
				}
			}
			if amt, ok := largestNumber(in.users[1], false); ok {
				if title := rawTitle(in.users[0]); title != "" {
					return amt, title, true
				}
			}
			return decimal.Zero, "", false
		},
	},
	{
		// Amount alone; description recovered from the assistant's
		// preceding question or from the reply's own confirmation text.
		name: "amount-only",
		extract: func(in targetInput) (decimal.Decimal, string, bool) {
			var amt decimal.Decimal
			ok := false
			for _, u := range in.users {
				if amt, ok = largestNumber(u, false); ok {
					break
				}
			}
			if !ok {
				if amt, ok = largestNumber(in.reply, false); !ok {
					return decimal.Zero, "", false
				}
			}
			if m := assistantAskRE.FindStringSubmatch(in.assistantPrev); m != nil {
				return amt, m[1], true
			}
			if m := quotedTitleRE.FindStringSubmatch(in.reply); m != nil {
				return amt, m[1], true
			}
			if m := saveForRE.FindStringSubmatch(in.reply); m != nil {
				return amt, m[1], true
			}
			// No description anywhere; let the theme lexicon try.
			return amt, "", true
		},
	},
}

// ReplyTarget attempts post-call extraction of a savings target. It is
// gated on the reply containing an explicit target/goal confirmation.
func ReplyTarget(messages []llm.Message, reply string) (*Target, bool) {
	if !IsTargetConfirmation(reply) {
		return nil, false
	}

	in := targetInput{
		users:         lastUserTexts(messages, 2),
		assistantPrev: lastAssistantText(messages),
		reply:         reply,
	}

	for _, rule := range targetRules {
		amt, raw, ok := rule.extract(in)
		if !ok || !amt.IsPositive() {
			continue
		}

		title := CleanTitle(raw)
		if title == "" {
			title = themeTitle(append([]string{reply, in.assistantPrev}, in.users...))
		}
		if title == "" {
			title = "Savings Target " + RoundMinorUnit(amt).String()
		}

		currency := InferCurrency(append(in.users, in.assistantPrev, reply)...)
		return &Target{
			Title:    title,
			Amount:   RoundMinorUnit(amt),
			Currency: currency,
		}, true
	}
	return nil, false
}

// rawTitle pulls a savings subject phrase out of one message, preferring
// the explicit "save ... for X" form over leftover meaningful words.
func rawTitle(text string) string {
	if m := saveForRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	words := MeaningfulWords(numberRE.ReplaceAllString(text, " "))
	// Drop savings vocabulary that survives the stopword filter.
	var kept []string
	for _, w := range words {
		switch strings.ToLower(w) {
		case "save", "saving", "savings", "goal", "target", "want", "like", "set":
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// themeTitle scans texts for a known savings theme word.
func themeTitle(texts []string) string {
	for _, text := range texts {
		words := map[string]bool{}
		for _, w := range wordSplitRE.Split(strings.ToLower(text), -1) {
			words[w] = true
		}
		for _, th := range themeTitles {
			if words[th.word] {
				return th.title
			}
		}
	}
	return ""
}
