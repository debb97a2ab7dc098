package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numberRE matches a monetary-looking number: optional thousands separators
// are not supported on purpose; users type "1200" or "1,200.50" rarely and
// the ambiguity with European comma decimals is not worth guessing over.
var numberRE = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// paymentAdjacentRE matches a number next to payment vocabulary
// ("paid 55.08", "cost 21", "total of 99.90", "spent 40 on").
var paymentAdjacentRE = regexp.MustCompile(
	`(?i)\b(?:paid|pay|pays|spent|spend|cost|costs|costed|total(?:ing|ed)?|price[d]?|charged)\b\D{0,16}?(\d+(?:[.,]\d+)?)`)

// forItRE matches a number immediately followed by "for it"
// ("55.08 for it", "paid 21 for it").
var forItRE = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:\w+\s+)?for it\b`)

// amountRule is one step of the amount-resolution cascade.
type amountRule struct {
	name    string
	resolve func(userText, replyText string) (decimal.Decimal, bool)
}

// amountRules is the ordered cascade. The user's text always outranks the
// reply: the completion service routinely echoes unrelated numbers from its
// own context (a recurrence count, a percentage), so a decimal-bearing
// number typed by the user beats a smaller integer in the reply.
var amountRules = []amountRule{
	{
		name: "payment-adjacent",
		resolve: func(userText, _ string) (decimal.Decimal, bool) {
			m := paymentAdjacentRE.FindStringSubmatch(userText)
			if m == nil {
				return decimal.Zero, false
			}
			return parseAmount(m[1])
		},
	},
	{
		name: "followed-by-for-it",
		resolve: func(userText, _ string) (decimal.Decimal, bool) {
			m := forItRE.FindStringSubmatch(userText)
			if m == nil {
				return decimal.Zero, false
			}
			return parseAmount(m[1])
		},
	},
	{
		name: "largest-user-decimal",
		resolve: func(userText, _ string) (decimal.Decimal, bool) {
			return largestNumber(userText, true)
		},
	},
	{
		name: "largest-user-number",
		resolve: func(userText, _ string) (decimal.Decimal, bool) {
			return largestNumber(userText, false)
		},
	},
	{
		name: "largest-reply-number",
		resolve: func(_, replyText string) (decimal.Decimal, bool) {
			return largestNumber(replyText, false)
		},
	},
}

// ResolveAmount runs the cascade and returns the first match.
func ResolveAmount(userText, replyText string) (decimal.Decimal, bool) {
	for _, rule := range amountRules {
		if amt, ok := rule.resolve(userText, replyText); ok && amt.IsPositive() {
			return amt, true
		}
	}
	return decimal.Zero, false
}

// parseAmount converts a matched number token to a decimal. A single comma
// followed by exactly two digits is treated as a European decimal comma.
func parseAmount(token string) (decimal.Decimal, bool) {
	t := token
	if i := strings.IndexByte(t, ','); i >= 0 && !strings.Contains(t, ".") && len(t)-i-1 == 2 {
		t = t[:i] + "." + t[i+1:]
	}
	t = strings.ReplaceAll(t, ",", "")
	d, err := decimal.NewFromString(t)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// largestNumber returns the largest number in text. With decimalOnly set,
// only numbers carrying a fractional part are considered.
func largestNumber(text string, decimalOnly bool) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false
	for _, token := range numberRE.FindAllString(text, -1) {
		if decimalOnly && !strings.ContainsAny(token, ".,") {
			continue
		}
		d, ok := parseAmount(token)
		if !ok {
			continue
		}
		if !found || d.GreaterThan(best) {
			best, found = d, true
		}
	}
	return best, found
}

// currencySymbols and currencyWordREs map markers to ISO codes, in order.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"}, {"€", "EUR"}, {"£", "GBP"}, {"¥", "JPY"},
}

var currencyWordREs = []struct {
	re   *regexp.Regexp
	code string
}{
	{regexp.MustCompile(`(?i)\b(?:usd|dollars?)\b`), "USD"},
	{regexp.MustCompile(`(?i)\b(?:eur|euros?)\b`), "EUR"},
	{regexp.MustCompile(`(?i)\b(?:gbp|pounds?)\b`), "GBP"},
	{regexp.MustCompile(`(?i)\b(?:jpy|yen)\b`), "JPY"},
}

// InferCurrency detects a currency from symbol or word co-occurrence in the
// given texts, earliest text wins. Returns "" when nothing matches.
func InferCurrency(texts ...string) string {
	for _, text := range texts {
		for _, cs := range currencySymbols {
			if strings.Contains(text, cs.symbol) {
				return cs.code
			}
		}
		for _, cw := range currencyWordREs {
			if cw.re.MatchString(text) {
				return cw.code
			}
		}
	}
	return ""
}

// RoundMinorUnit rounds an amount to currency-minor-unit precision
// (two decimal places for every currency this system handles).
func RoundMinorUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
