// Package extract parses structured financial records out of free-text
// conversation content.
//
// Three independent extractors produce candidate records:
// - transactions (pre-call from the user message, post-call from the reply)
// - savings targets (post-call only)
// - spending limits (post-call, three cascading paths)
//
// All extractors are deterministic and side-effect-free: the same input
// always yields the same record or no match, and nothing is persisted here.
// Each extractor is an ordered list of predicate+extractor rules so coverage
// gaps show up as missing rules, not as dead branches inside one function.
package extract

import (
	"strings"

	"github.com/pocketfin/pocketfin/internal/category"
	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/shopspring/decimal"
)

// Transaction kinds mirror the storage vocabulary.
const (
	KindIncome   = "income"
	KindExpense  = "expense"
	KindTransfer = "transfer"
)

// Transaction is a candidate income/expense record.
type Transaction struct {
	Kind        string
	Amount      decimal.Decimal
	Category    category.Category
	Description string
}

// Target is a candidate savings target.
type Target struct {
	Title    string
	Amount   decimal.Decimal
	Currency string // empty = caller's profile currency
}

// Limit is a candidate spending limit (budget target) for one category.
type Limit struct {
	Category category.Category
	Amount   decimal.Decimal
}

// affirmatives are short confirmation turns. A bare affirmative carries no
// intent of its own; its meaning comes entirely from the preceding
// assistant message.
var affirmatives = []string{
	"yes", "yep", "yeah", "sure", "ok", "okay", "do it", "go ahead",
	"yes please", "si por favor", "sí por favor",
	"sounds good", "please do", "please", "confirm", "correct", "done",
	"si", "sí", "claro", "dale", "hazlo", "de acuerdo",
}

// IsAffirmative reports whether text is a bare user confirmation.
func IsAffirmative(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!")
	for _, a := range affirmatives {
		if t == a {
			return true
		}
	}
	return false
}

// lastUserText returns the content of the most recent user message,
// or "" when the history holds none.
func lastUserText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// lastAssistantText returns the content of the most recent assistant
// message, or "" when the history holds none.
func lastAssistantText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}

// lastUserTexts returns up to n most recent user messages, newest first.
func lastUserTexts(messages []llm.Message, n int) []string {
	var out []string
	for i := len(messages) - 1; i >= 0 && len(out) < n; i-- {
		if messages[i].Role == llm.RoleUser {
			out = append(out, messages[i].Content)
		}
	}
	return out
}
