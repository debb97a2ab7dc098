package engine

import (
	"testing"

	"github.com/pocketfin/pocketfin/internal/llm"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		messages []llm.Message
		want     Intent
	}{
		{"identity question", []llm.Message{user("what is this app?")}, IntentExplainIdentity},
		{"greeting", []llm.Message{user("hola!")}, IntentExplainIdentity},
		{"add expense", []llm.Message{user("add expense 21 for a haircut")}, IntentAddExpense},
		{"spent phrasing", []llm.Message{user("I spent 40 on groceries")}, IntentAddExpense},
		{"spanish expense", []llm.Message{user("añade un gasto de 12 en el supermercado")}, IntentAddExpense},
		{"add income", []llm.Message{user("add income 2500 salary")}, IntentAddIncome},
		{"received phrasing", []llm.Message{user("I received 300 from freelance work")}, IntentAddIncome},
		{"savings goal", []llm.Message{user("I want to save 900 for a new phone")}, IntentSetTarget},
		{"spending limit", []llm.Message{user("set a limit for dining out")}, IntentSetTarget},
		{"spanish goal", []llm.Message{user("quiero ahorrar para un coche")}, IntentSetTarget},
		{"analysis", []llm.Message{user("analyze my budget")}, IntentAnalyzeBudget},
		{"explain spending", []llm.Message{user("where does my money go?")}, IntentExplainSpending},
		{"unknown", []llm.Message{user("tell me a joke")}, IntentUnknown},
		{"empty history", nil, IntentUnknown},
		{
			"affirmative inherits target context",
			[]llm.Message{
				user("where can I cut back?"),
				assistant("You could cap eating out. **Dining Out** — target $59.22"),
				user("do it"),
			},
			IntentSetTarget,
		},
		{
			"bare category inherits target context",
			[]llm.Message{
				user("help me spend less"),
				assistant("Which category should I set a limit for?"),
				user("groceries"),
			},
			IntentSetTarget,
		},
		{
			"affirmative inherits analysis context",
			[]llm.Message{
				user("how am I doing?"),
				assistant("Want a full breakdown of your spending categories?"),
				user("yes please"),
			},
			IntentAnalyzeBudget,
		},
		{
			"long follow-up is classified on its own",
			[]llm.Message{
				user("hi"),
				assistant("Hello! I can record expenses and income."),
				user("add expense 15 for lunch"),
			},
			IntentAddExpense,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.messages); got != tc.want {
				t.Fatalf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestIntentString(t *testing.T) {
	if IntentSetTarget.String() != "set_target" {
		t.Fatalf("got %q", IntentSetTarget.String())
	}
	if Intent(99).String() != "unknown" {
		t.Fatalf("got %q", Intent(99).String())
	}
}
