package extract

import (
	"regexp"
	"strings"

	"github.com/pocketfin/pocketfin/internal/category"
	"github.com/pocketfin/pocketfin/internal/llm"
)

// Unambiguous add-record phrasing. The pre-call extractor fires on these
// alone; anything softer waits for the model reply.
var (
	addExpenseRE = regexp.MustCompile(
		`(?i)\b(?:add|record|log)\s+(?:an?\s+)?(?:expense|spending)\b` +
			`|\ba(?:ñ|n)ade\s+(?:un\s+)?gasto\b|\bagrega(?:r)?\s+(?:un\s+)?gasto\b`)
	addIncomeRE = regexp.MustCompile(
		`(?i)\b(?:add|record|log)\s+(?:an?\s+)?income\b` +
			`|\ba(?:ñ|n)ade\s+(?:un\s+)?ingreso\b|\bagrega(?:r)?\s+(?:un\s+)?ingreso\b`)
	transferRE = regexp.MustCompile(`(?i)\btransfer(?:red)?\b|\bmoved?\s+\S+\s+(?:to|into)\b`)
)

// Softer kind vocabulary used post-call, when the reply itself already
// confirmed that a transaction happened.
var (
	incomeWordsRE  = regexp.MustCompile(`(?i)\b(?:income|received|earned|salary|got paid|payout|ingreso)\b`)
	expenseWordsRE = regexp.MustCompile(`(?i)\b(?:expense|spent|paid|bought|purchase[d]?|cost|gasto)\b`)
)

// Reply confirmation detection.
var (
	txConfirmRE = regexp.MustCompile(
		`(?i)\b(?:i'?ve|i have)\s+(?:recorded|added|saved|logged)\b[^.!\n]*\b(?:expense|income|transaction|purchase|payment)\b`)
	successMarkerRE = regexp.MustCompile(
		`(?i)✅|\bsuccessfully\b|\bhas been\s+(?:added|saved|recorded|logged)\b`)
)

// afterPrepRE captures the phrase after the last "on/for/at", the usual
// position of the spending category ("spent 40 on groceries").
var afterPrepRE = regexp.MustCompile(`(?i)\b(?:on|for|at)\s+([^.!?\n]+)`)

// forItPhraseRE removes "for it" before category resolution so the "for"
// is not mistaken for a category preposition.
var forItPhraseRE = regexp.MustCompile(`(?i)\bfor it\b`)

// IsAddExpense reports whether text is an unambiguous record-expense
// command.
func IsAddExpense(text string) bool { return addExpenseRE.MatchString(text) }

// IsAddIncome reports whether text is an unambiguous record-income command.
func IsAddIncome(text string) bool { return addIncomeRE.MatchString(text) }

// UserTransaction attempts pre-call extraction from the user's latest
// message alone. It fires only on unambiguous add-income/add-expense
// phrasing with a recoverable amount; everything else is NoMatch.
func UserTransaction(text string) (*Transaction, bool) {
	kind := ""
	switch {
	case addExpenseRE.MatchString(text):
		kind = KindExpense
	case addIncomeRE.MatchString(text):
		kind = KindIncome
	default:
		return nil, false
	}

	amount, ok := ResolveAmount(text, "")
	if !ok {
		return nil, false
	}

	cat := resolveCategory(text)
	if (kind == KindExpense || kind == KindTransfer) && cat.Class == category.ClassIncome {
		return nil, false
	}

	return &Transaction{
		Kind:        kind,
		Amount:      amount,
		Category:    cat,
		Description: Describe(text, cat.Name),
	}, true
}

// ReplyTransaction attempts post-call extraction from the model's reply.
// Primary match is an explicit confirmation phrase; fallback is a success
// marker plus a monetary amount plus a category-like phrase. A reply that
// independently reads as a target or limit confirmation is excluded so the
// extractors never both fire for one turn.
func ReplyTransaction(messages []llm.Message, reply string) (*Transaction, bool) {
	if IsTargetConfirmation(reply) || IsLimitConfirmation(reply) {
		return nil, false
	}

	userText := lastUserText(messages)

	primary := txConfirmRE.MatchString(reply)
	fallback := successMarkerRE.MatchString(reply) &&
		numberRE.MatchString(reply) &&
		(resolveCategory(reply).Name != category.Other.Name || resolveCategory(userText).Name != category.Other.Name)
	if !primary && !fallback {
		return nil, false
	}

	amount, ok := ResolveAmount(userText, reply)
	if !ok {
		return nil, false
	}

	kind := inferKind(userText, reply)

	cat := resolveCategory(userText)
	if cat.Name == category.Other.Name {
		cat = resolveCategory(reply)
	}
	if (kind == KindExpense || kind == KindTransfer) && cat.Class == category.ClassIncome {
		return nil, false
	}

	return &Transaction{
		Kind:        kind,
		Amount:      amount,
		Category:    cat,
		Description: Describe(userText, cat.Name),
	}, true
}

// inferKind decides income vs expense vs transfer from the user's own
// vocabulary first, falling back to the reply. Default is expense: a
// confirmed transaction with no income wording is a purchase.
func inferKind(userText, reply string) string {
	for _, text := range []string{userText, reply} {
		if text == "" {
			continue
		}
		switch {
		case transferRE.MatchString(text):
			return KindTransfer
		case incomeWordsRE.MatchString(text) && !expenseWordsRE.MatchString(text):
			return KindIncome
		case expenseWordsRE.MatchString(text):
			return KindExpense
		}
	}
	return KindExpense
}

// resolveCategory maps message text to a taxonomy category:
// text after "on/for/at" first, then the final words of the message,
// then Other.
func resolveCategory(text string) category.Category {
	cleaned := forItPhraseRE.ReplaceAllString(text, " ")

	if ms := afterPrepRE.FindAllStringSubmatch(cleaned, -1); len(ms) > 0 {
		phrase := strings.TrimSpace(ms[len(ms)-1][1])
		phrase = numberRE.ReplaceAllString(phrase, " ")
		if c := category.Normalize(phrase); c.Name != category.Other.Name {
			return c
		}
	}

	words := strings.Fields(numberRE.ReplaceAllString(cleaned, " "))
	for n := 3; n >= 1; n-- {
		if len(words) < n {
			continue
		}
		tail := strings.Join(words[len(words)-n:], " ")
		if c := category.Normalize(tail); c.Name != category.Other.Name {
			return c
		}
	}
	return category.Other
}
