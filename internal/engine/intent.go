package engine

import (
	"regexp"
	"strings"

	"github.com/pocketfin/pocketfin/internal/category"
	"github.com/pocketfin/pocketfin/internal/extract"
	"github.com/pocketfin/pocketfin/internal/llm"
)

// Intent is one of the six fixed conversation patterns. It is derived fresh
// each turn from the full message history and never cached across turns.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentAddIncome
	IntentAddExpense
	IntentSetTarget
	IntentAnalyzeBudget
	IntentExplainIdentity
	IntentExplainSpending
)

func (i Intent) String() string {
	switch i {
	case IntentAddIncome:
		return "add_income"
	case IntentAddExpense:
		return "add_expense"
	case IntentSetTarget:
		return "set_target"
	case IntentAnalyzeBudget:
		return "analyze_budget"
	case IntentExplainIdentity:
		return "explain_identity"
	case IntentExplainSpending:
		return "explain_spending"
	default:
		return "unknown"
	}
}

// Intent vocabulary. These are ordered rule tables, not a keyword switch:
// classification runs over the whole history and short turns inherit their
// meaning from the assistant's preceding message.
var (
	identityRE = regexp.MustCompile(
		`(?i)\bwhat\s+is\s+this\s+app\b|\bwho\s+are\s+you\b|\bwhat\s+can\s+you\s+do\b|\bhow\s+do(?:es)?\s+(?:this|it)\s+work\b` +
			`|\bqu[eé]\s+es\s+esta\s+app\b|\bqui[eé]n\s+eres\b`)

	greetingRE = regexp.MustCompile(`(?i)^\s*(?:hi|hey|hello|good\s+(?:morning|afternoon|evening)|hola|buenas)\b[\s!.,]*$`)

	incomeIntentRE = regexp.MustCompile(
		`(?i)\badd\s+(?:an?\s+)?income\b|\b(?:received|earned|got\s+paid)\b|\bsalary\s+(?:came|arrived)\b` +
			`|\ba(?:ñ|n)ade\s+(?:un\s+)?ingreso\b|\brecib[ií]\b`)

	expenseIntentRE = regexp.MustCompile(
		`(?i)\badd\s+(?:an?\s+)?expense\b|\b(?:i|we)\s+(?:spent|paid|bought)\b|\brecord\s+(?:an?\s+)?(?:expense|purchase)\b` +
			`|\ba(?:ñ|n)ade\s+(?:un\s+)?gasto\b|\bgast[eé]\b|\bpagu[eé]\b|\bcompr[eé]\b`)

	targetIntentRE = regexp.MustCompile(
		`(?i)\b(?:set|create|start)\s+(?:up\s+)?a\s+(?:savings\s+)?(?:goal|target)\b|\bsav(?:e|ing)\b(?:\s+up)?[\s\d.,$€£¥]*\bfor\b|\bsavings\s+goal\b` +
			`|\b(?:set|put)\s+a\s+(?:spending\s+)?limit\b|\blimit\s+for\b|\bspending\s+limit\b` +
			`|\bquiero\s+ahorrar\b|\bmeta\s+de\s+ahorro\b|\bl[ií]mite\s+de\s+gasto\b|\bpon\s+un\s+l[ií]mite\b`)

	explainSpendingRE = regexp.MustCompile(
		`(?i)\bwhat\s+did\s+i\s+spend\b|\bwhere\s+(?:did|does)\s+my\s+money\s+go\b|\b(?:top|biggest)\s+(?:spending\s+)?categor(?:y|ies)\b` +
			`|\bbiggest\s+expenses?\b|\ben\s+qu[eé]\s+gast[oé]\b`)

	analyzeIntentRE = regexp.MustCompile(
		`(?i)\banaly[sz]e\b|\banalysis\b|\bbudget\b|\bhow\s+(?:am\s+i\s+doing|much\s+(?:can|should)\s+i)\b|\bcan\s+i\s+afford\b` +
			`|\bcut\s+back\b|\breduce\s+(?:my\s+)?spending\b|\banaliza\b|\bpresupuesto\b`)

	// assistantTargetContextRE / assistantAnalysisContextRE give a short
	// follow-up turn its meaning from the assistant's previous message.
	assistantTargetContextRE = regexp.MustCompile(
		`(?i)\b(?:goal|target|limit)\b|\bsave\s+for\b|\bl[ií]mite\b|\bmeta\b`)
	assistantRecordContextRE = regexp.MustCompile(
		`(?i)\b(?:expense|income|transaction|purchase)\b|\bgasto\b|\bingreso\b`)
	assistantAnalysisContextRE = regexp.MustCompile(
		`(?i)\b(?:breakdown|analysis|overspending|spending\s+categor)\w*\b`)
)

// Classify derives the turn's intent from the full message history, not the
// last message alone. A bare "yes" or a bare category name is interpreted
// against the assistant's preceding message.
func Classify(messages []llm.Message) Intent {
	lastUser := ""
	lastAssistant := ""
	for i := len(messages) - 1; i >= 0; i-- {
		switch messages[i].Role {
		case llm.RoleUser:
			if lastUser == "" {
				lastUser = messages[i].Content
			}
		case llm.RoleAssistant:
			if lastAssistant == "" && lastUser != "" {
				lastAssistant = messages[i].Content
			}
		}
		if lastUser != "" && lastAssistant != "" {
			break
		}
	}
	if strings.TrimSpace(lastUser) == "" {
		return IntentUnknown
	}

	// Short follow-ups carry no intent of their own; resolve them against
	// the assistant's preceding message first.
	if isShortFollowUp(lastUser) && lastAssistant != "" {
		switch {
		case assistantTargetContextRE.MatchString(lastAssistant):
			return IntentSetTarget
		case assistantAnalysisContextRE.MatchString(lastAssistant):
			return IntentAnalyzeBudget
		case assistantRecordContextRE.MatchString(lastAssistant):
			if incomeIntentRE.MatchString(lastAssistant) && !expenseIntentRE.MatchString(lastAssistant) {
				return IntentAddIncome
			}
			return IntentAddExpense
		}
	}

	switch {
	case identityRE.MatchString(lastUser) || greetingRE.MatchString(lastUser):
		return IntentExplainIdentity
	case targetIntentRE.MatchString(lastUser):
		return IntentSetTarget
	case incomeIntentRE.MatchString(lastUser) && !expenseIntentRE.MatchString(lastUser):
		return IntentAddIncome
	case expenseIntentRE.MatchString(lastUser):
		return IntentAddExpense
	case explainSpendingRE.MatchString(lastUser):
		return IntentExplainSpending
	case analyzeIntentRE.MatchString(lastUser):
		return IntentAnalyzeBudget
	default:
		return IntentUnknown
	}
}

// isShortFollowUp reports whether a user turn is too thin to classify on
// its own: a bare affirmative or a one-or-two-word phrase naming a
// taxonomy category.
func isShortFollowUp(text string) bool {
	if extract.IsAffirmative(text) {
		return true
	}
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	phrase := strings.Join(words, " ")
	if _, ok := category.ByName(phrase); ok {
		return true
	}
	return category.Normalize(phrase).Name != category.Other.Name && len(words) <= 2
}
