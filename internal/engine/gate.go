package engine

import (
	"context"
	"regexp"
	"strings"

	"github.com/pocketfin/pocketfin/internal/extract"
	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/pocketfin/pocketfin/internal/store"
)

// Entitlement hints a client may assert alongside a turn. A "free" hint is
// trusted as-is (under-granting is safe); a "premium" hint is always
// re-verified against the subscription record.
const (
	HintFree    = "free"
	HintPremium = "premium"
)

var (
	// alwaysFreeRE carves out turns that never hit the paywall regardless
	// of phrasing overlap with paid vocabulary: greetings, identity
	// questions, unambiguous record commands.
	alwaysFreeRE = regexp.MustCompile(
		`(?i)^\s*(?:hi|hey|hello|hola|buenas)\b|\bwhat\s+is\s+this\s+app\b|\bwho\s+are\s+you\b|\bwhat\s+can\s+you\s+do\b`)

	// paidPhrasingRE matches explicit requests for premium capabilities:
	// savings goals, spending limits, and budget analysis.
	paidPhrasingRE = regexp.MustCompile(
		`(?i)\b(?:set|create|start|put)\s+(?:up\s+)?a\s+(?:savings\s+)?(?:goal|target|limit)\b|\bsav(?:e|ing)\b(?:\s+up)?[\s\d.,$€£¥]*\bfor\b` +
			`|\bspending\s+limit\b|\blimit\s+(?:for|on)\b|\bsavings\s+goal\b` +
			`|\banaly[sz]e\b|\bbudget\s+analysis\b|\bspending\s+breakdown\b|\bwhere\s+(?:did|does)\s+my\s+money\s+go\b` +
			`|\b(?:top|biggest)\s+(?:spending\s+)?categor(?:y|ies)\b|\breduce\s+(?:my\s+)?spending\b|\bcut\s+back\b` +
			`|\bquiero\s+ahorrar\b|\bmeta\s+de\s+ahorro\b|\bl[ií]mite\s+de\s+gasto\b|\banaliza\b|\bpresupuesto\b`)

	// assistantPaidFlowRE recognizes that the assistant's previous message
	// was already premium content, so a short continuation ("yes", "do it",
	// a bare category name) stays behind the gate too.
	assistantPaidFlowRE = regexp.MustCompile(
		`(?i)\b(?:goal|target|limit|budget)\b|\bspending\s+categor\w+\b|\*\*[\p{L} &'-]+\*\*\s*[—–:-]`)

	// replyPaidContentRE backstops the pre-call gate: a model reply that
	// contains analysis or ranked-suggestion content despite a free-tier
	// prompt is discarded.
	replyPaidContentRE = regexp.MustCompile(
		`(?i)\b(?:top|biggest)\s+(?:spending\s+)?categor(?:y|ies)\b|\bspending\s+breakdown\b|\bbudget\s+analysis\b` +
			`|\*\*[\p{L} &'-]+\*\*\s*[—–:-]+\s*(?:target|limit|cap)?\s*[$€£¥]?\d`)
)

// resolveEntitlement returns whether the user is currently premium. The
// check is performed twice per turn (once before gating, once immediately
// before the model call) so a mid-turn plan change in either direction is
// honored.
func (e *Engine) resolveEntitlement(ctx context.Context, userID, hint string) (bool, error) {
	if strings.EqualFold(hint, HintFree) {
		return false, nil
	}
	sub, err := e.store.GetSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	if sub == nil {
		return false, nil
	}
	return sub.Plan == store.PlanPremium && strings.EqualFold(sub.Status, "active"), nil
}

// requiresPremium decides whether this turn needs a premium entitlement.
// Carve-outs run first, explicit paid phrasing second, and paid-flow
// continuation from the assistant's previous message last.
func requiresPremium(intent Intent, messages []llm.Message) bool {
	lastUser := lastUserText(messages)
	if alwaysFreeRE.MatchString(lastUser) {
		return false
	}
	if extract.IsAddExpense(lastUser) || extract.IsAddIncome(lastUser) {
		return false
	}
	switch intent {
	case IntentSetTarget, IntentAnalyzeBudget, IntentExplainSpending:
		return true
	}
	if paidPhrasingRE.MatchString(lastUser) {
		return true
	}
	if isShortFollowUp(lastUser) {
		if prev := lastAssistantText(messages); prev != "" && assistantPaidFlowRE.MatchString(prev) {
			return true
		}
	}
	return false
}

// replyIndicatesPaidContent reports whether a model reply delivered premium
// content. Used to re-gate after the completion call.
func replyIndicatesPaidContent(reply string) bool {
	if extract.IsTargetConfirmation(reply) || extract.IsLimitConfirmation(reply) {
		return true
	}
	return replyPaidContentRE.MatchString(reply)
}

// paywallReply produces the upgrade message for a gated turn. The model is
// asked only to acknowledge and point at the subscription; it is never given
// the capability prompt. Completion failure falls back to fixed copy so the
// paywall itself can never error out.
func (e *Engine) paywallReply(ctx context.Context, messages []llm.Message) string {
	tail := messages
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	reply, err := e.llm.Complete(ctx, tail, llm.CompletionOpts{
		Model:       e.opts.Model,
		System:      paywallSystemPrompt,
		MaxTokens:   160,
		Temperature: 0.3,
		Timeout:     e.opts.CompletionTimeout,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		return paywallFallback
	}
	return reply
}

func lastUserText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func lastAssistantText(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleAssistant {
			return messages[i].Content
		}
	}
	return ""
}
