package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// summaryWindow bounds the spending totals injected into premium prompts.
const summaryWindow = 30 * 24 * time.Hour

// financialSummary renders the user's recent spending totals and active
// targets as prompt text. Failures degrade to an empty summary rather than
// failing the turn; analysis quality is not worth a 500.
func (e *Engine) financialSummary(ctx context.Context, userID string) string {
	var b strings.Builder

	totals, err := e.store.CategoryTotals(ctx, userID, time.Now().Add(-summaryWindow))
	if err != nil {
		e.log.Warn("summary totals unavailable", "user", userID, "error", err)
	}
	if len(totals) > 0 {
		b.WriteString("Spending over the last 30 days:\n")
		for _, t := range totals {
			fmt.Fprintf(&b, "- %s: %s\n", t.Category, t.Total.StringFixed(2))
		}
	}

	targets, err := e.store.ListTargets(ctx, userID)
	if err != nil {
		e.log.Warn("summary targets unavailable", "user", userID, "error", err)
	}
	if len(targets) > 0 {
		b.WriteString("Active targets:\n")
		for _, t := range targets {
			line := fmt.Sprintf("- %s: %s", t.Title, t.TargetAmount.StringFixed(2))
			if t.Category != "" {
				line += " (" + t.Category + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return "\n\nUser's financial summary:\n" + b.String()
}
