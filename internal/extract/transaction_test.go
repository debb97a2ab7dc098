package extract

import (
	"testing"

	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/shopspring/decimal"
)

func user(text string) llm.Message      { return llm.Message{Role: llm.RoleUser, Content: text} }
func assistant(text string) llm.Message { return llm.Message{Role: llm.RoleAssistant, Content: text} }

func TestUserTransaction_AddExpense(t *testing.T) {
	tx, ok := UserTransaction("add expense 21 for a haircut")
	if !ok {
		t.Fatal("expected a match")
	}
	if tx.Kind != KindExpense {
		t.Errorf("kind = %q", tx.Kind)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("21")) {
		t.Errorf("amount = %s, want 21", tx.Amount)
	}
	if tx.Category.Name != "Personal Care" {
		t.Errorf("category = %q, want Personal Care", tx.Category.Name)
	}
	if tx.Description != "Haircut" {
		t.Errorf("description = %q, want Haircut", tx.Description)
	}
}

func TestUserTransaction_AddIncome(t *testing.T) {
	tx, ok := UserTransaction("add income 2500 salary")
	if !ok {
		t.Fatal("expected a match")
	}
	if tx.Kind != KindIncome {
		t.Errorf("kind = %q", tx.Kind)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("2500")) {
		t.Errorf("amount = %s", tx.Amount)
	}
	if tx.Category.Name != "Salary" {
		t.Errorf("category = %q", tx.Category.Name)
	}
}

func TestUserTransaction_AmbiguousPhrasingIsNoMatch(t *testing.T) {
	// Pre-call extraction only fires on unambiguous add-record phrasing.
	cases := []string{
		"I think I spent too much yesterday",
		"how much did I spend on groceries?",
		"set a limit for dining out",
		"hello there",
		"add expense", // no amount
	}
	for _, in := range cases {
		if tx, ok := UserTransaction(in); ok {
			t.Errorf("UserTransaction(%q) matched: %+v", in, tx)
		}
	}
}

func TestUserTransaction_IncomeCategoryOnExpenseRejected(t *testing.T) {
	// Hard invariant: an expense candidate never carries an income-only
	// category, even when the user phrases it that way.
	cases := []string{
		"add expense 100 for salary",
		"add expense 55 on my paycheck",
		"record expense 20 for dividends",
	}
	for _, in := range cases {
		if tx, ok := UserTransaction(in); ok {
			t.Errorf("UserTransaction(%q) matched with category %q", in, tx.Category.Name)
		}
	}
}

func TestResolveAmount_Disambiguation(t *testing.T) {
	// The recurrence count must not win over the actual amount.
	amt, ok := ResolveAmount("I pay radio tax every 3 months, paid 55.08 for it", "")
	if !ok {
		t.Fatal("expected an amount")
	}
	if !amt.Equal(decimal.RequireFromString("55.08")) {
		t.Errorf("amount = %s, want 55.08", amt)
	}
}

func TestResolveAmount_PrefersUserDecimalOverReplyInteger(t *testing.T) {
	amt, ok := ResolveAmount("radio tax 55.08 every 3 months", "Got it, every 3 months!")
	if !ok {
		t.Fatal("expected an amount")
	}
	if !amt.Equal(decimal.RequireFromString("55.08")) {
		t.Errorf("amount = %s, want 55.08", amt)
	}
}

func TestResolveAmount_ForIt(t *testing.T) {
	amt, ok := ResolveAmount("the new keyboard, 89 for it", "")
	if !ok {
		t.Fatal("expected an amount")
	}
	if !amt.Equal(decimal.RequireFromString("89")) {
		t.Errorf("amount = %s, want 89", amt)
	}
}

func TestResolveAmount_CommaDecimal(t *testing.T) {
	amt, ok := ResolveAmount("paid 55,08 for it", "")
	if !ok {
		t.Fatal("expected an amount")
	}
	if !amt.Equal(decimal.RequireFromString("55.08")) {
		t.Errorf("amount = %s, want 55.08", amt)
	}
}

func TestResolveAmount_NoNumbers(t *testing.T) {
	if _, ok := ResolveAmount("spent some money somewhere", ""); ok {
		t.Error("expected no match without numbers")
	}
}

func TestReplyTransaction_ExplicitConfirmation(t *testing.T) {
	messages := []llm.Message{user("I spent 40 on groceries today")}
	reply := "I've recorded an expense of $40 for Groceries. Anything else?"

	tx, ok := ReplyTransaction(messages, reply)
	if !ok {
		t.Fatal("expected a match")
	}
	if tx.Kind != KindExpense || !tx.Amount.Equal(decimal.RequireFromString("40")) {
		t.Errorf("tx = %+v", tx)
	}
	if tx.Category.Name != "Groceries" {
		t.Errorf("category = %q", tx.Category.Name)
	}
}

func TestReplyTransaction_SuccessMarkerFallback(t *testing.T) {
	messages := []llm.Message{user("coffee at starbucks, 6.50")}
	reply := "✅ Saved! 6.50 at Starbucks."

	tx, ok := ReplyTransaction(messages, reply)
	if !ok {
		t.Fatal("expected a match")
	}
	if tx.Category.Name != "Dining Out" {
		t.Errorf("category = %q, want Dining Out (merchant override)", tx.Category.Name)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("6.50")) {
		t.Errorf("amount = %s", tx.Amount)
	}
}

func TestReplyTransaction_Income(t *testing.T) {
	messages := []llm.Message{user("I received 300 from a freelance client")}
	reply := "I've recorded an income of 300."

	tx, ok := ReplyTransaction(messages, reply)
	if !ok {
		t.Fatal("expected a match")
	}
	if tx.Kind != KindIncome {
		t.Errorf("kind = %q, want income", tx.Kind)
	}
}

func TestReplyTransaction_ExcludedWhenTargetConfirmation(t *testing.T) {
	// Disjoint detection: a target confirmation never doubles as a
	// transaction, even though it has an amount and a success marker.
	messages := []llm.Message{user("I want to save 900 for a new phone")}
	reply := "✅ I've set up a savings goal \"New Phone\" with a target of 900."

	if tx, ok := ReplyTransaction(messages, reply); ok {
		t.Errorf("transaction extractor fired on a target confirmation: %+v", tx)
	}
}

func TestReplyTransaction_ExcludedWhenLimitConfirmation(t *testing.T) {
	messages := []llm.Message{user("do it")}
	reply := "I've set a limit for Dining Out at target $59.22."

	if tx, ok := ReplyTransaction(messages, reply); ok {
		t.Errorf("transaction extractor fired on a limit confirmation: %+v", tx)
	}
}

func TestReplyTransaction_PlainReplyIsNoMatch(t *testing.T) {
	messages := []llm.Message{user("how are you?")}
	reply := "I'm doing great! How can I help with your finances today?"

	if _, ok := ReplyTransaction(messages, reply); ok {
		t.Error("no-confirmation reply should not match")
	}
}
