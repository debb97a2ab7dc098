// Package category defines the fixed spending taxonomy and the normalizer
// that maps free-text phrases onto it.
//
// The taxonomy is closed and partitioned into fixed-cost, variable-cost and
// income-only subsets. Other components rely on the partition: spending
// limits may only target variable-cost categories, and income-only
// categories may never attach to expense or transfer records.
package category

import "strings"

// Class is the cost class of a category.
type Class int

const (
	ClassFixed Class = iota
	ClassVariable
	ClassIncome
)

func (c Class) String() string {
	switch c {
	case ClassFixed:
		return "fixed-cost"
	case ClassVariable:
		return "variable-cost"
	case ClassIncome:
		return "income-only"
	default:
		return "unknown"
	}
}

// Category is one member of the fixed taxonomy.
type Category struct {
	Name  string
	Class Class

	// keywords and examples drive Normalize scoring. Keywords are single
	// terms or short phrases; examples are whole phrases users actually say.
	keywords []string
	examples []string
}

// Canonical categories. Names are proper-case canonical strings; the set is
// closed; there is no way to create a category outside this table.
var (
	// Income-only
	Salary      = Category{Name: "Salary", Class: ClassIncome, keywords: []string{"salary", "wage", "wages", "paycheck", "payroll", "sueldo", "salario"}, examples: []string{"got my salary", "monthly pay"}}
	Freelance   = Category{Name: "Freelance", Class: ClassIncome, keywords: []string{"freelance", "freelancing", "gig", "contract work", "client payment", "invoice"}, examples: []string{"paid by a client", "side gig money"}}
	Investments = Category{Name: "Investments", Class: ClassIncome, keywords: []string{"dividend", "dividends", "interest", "investment", "stocks", "crypto"}, examples: []string{"dividend payout", "sold some stocks"}}
	Gifts       = Category{Name: "Gifts", Class: ClassIncome, keywords: []string{"gift", "gifted", "birthday money", "regalo"}, examples: []string{"got money as a gift"}}
	OtherIncome = Category{Name: "Other Income", Class: ClassIncome, keywords: []string{"refund", "cashback", "bonus", "rebate", "reimbursement"}, examples: []string{"tax refund came in"}}

	// Fixed-cost
	Housing      = Category{Name: "Housing", Class: ClassFixed, keywords: []string{"rent", "mortgage", "housing", "landlord", "alquiler", "renta"}, examples: []string{"paid the rent", "mortgage payment"}}
	Utilities    = Category{Name: "Utilities", Class: ClassFixed, keywords: []string{"electricity", "electric", "water", "gas bill", "heating", "internet", "phone bill", "utility", "utilities", "radio tax", "tv license"}, examples: []string{"paid the electricity bill"}}
	Insurance    = Category{Name: "Insurance", Class: ClassFixed, keywords: []string{"insurance", "premium", "seguro"}, examples: []string{"car insurance payment"}}
	Subscription = Category{Name: "Subscriptions", Class: ClassFixed, keywords: []string{"subscription", "netflix", "spotify", "membership", "suscripción", "suscripcion"}, examples: []string{"renewed my subscription"}}
	DebtPayments = Category{Name: "Debt Payments", Class: ClassFixed, keywords: []string{"loan", "debt", "credit card payment", "installment", "repayment"}, examples: []string{"paid off the loan installment"}}

	// Variable-cost
	Groceries     = Category{Name: "Groceries", Class: ClassVariable, keywords: []string{"groceries", "grocery", "supermarket", "food shopping", "comida", "supermercado"}, examples: []string{"did the weekly shop", "bought groceries"}}
	DiningOut     = Category{Name: "Dining Out", Class: ClassVariable, keywords: []string{"restaurant", "dining", "dinner", "lunch", "breakfast", "cafe", "coffee", "takeout", "takeaway", "pizza", "burger", "restaurante"}, examples: []string{"ate out", "ordered food"}}
	Transport     = Category{Name: "Transport", Class: ClassVariable, keywords: []string{"taxi", "uber", "bus", "train", "metro", "fuel", "petrol", "gasoline", "parking", "transporte"}, examples: []string{"took a taxi", "filled up the car"}}
	Entertainment = Category{Name: "Entertainment", Class: ClassVariable, keywords: []string{"cinema", "movie", "concert", "game", "games", "tickets", "entertainment", "entretenimiento"}, examples: []string{"went to the movies"}}
	Shopping      = Category{Name: "Shopping", Class: ClassVariable, keywords: []string{"clothes", "clothing", "shoes", "electronics", "shopping", "amazon", "compras"}, examples: []string{"bought new shoes"}}
	PersonalCare  = Category{Name: "Personal Care", Class: ClassVariable, keywords: []string{"haircut", "barber", "salon", "cosmetics", "spa", "hygiene", "peluquería", "peluqueria"}, examples: []string{"got a haircut"}}
	Health        = Category{Name: "Health", Class: ClassVariable, keywords: []string{"doctor", "dentist", "pharmacy", "medicine", "medication", "hospital", "gym", "salud"}, examples: []string{"picked up a prescription"}}
	Travel        = Category{Name: "Travel", Class: ClassVariable, keywords: []string{"flight", "hotel", "trip", "vacation", "holiday", "airbnb", "viaje"}, examples: []string{"booked a flight"}}
	Education     = Category{Name: "Education", Class: ClassVariable, keywords: []string{"course", "tuition", "books", "school", "university", "class", "educación", "educacion"}, examples: []string{"paid for an online course"}}
	Other         = Category{Name: "Other", Class: ClassVariable}
)

// all is ordered: income first so income vocabulary wins ties against the
// generic expense buckets, Other last as the zero-score fallback.
var all = []Category{
	Salary, Freelance, Investments, Gifts, OtherIncome,
	Housing, Utilities, Insurance, Subscription, DebtPayments,
	Groceries, DiningOut, Transport, Entertainment, Shopping,
	PersonalCare, Health, Travel, Education, Other,
}

// merchantOverrides maps well-known brand names straight to Dining Out.
// A merchant name is an unambiguous signal and outranks keyword scoring.
var merchantOverrides = []string{
	"mcdonald", "mc donald", "starbucks", "kfc", "burger king", "subway",
	"domino", "wendy", "taco bell", "dunkin", "chipotle", "nando",
}

// All returns the full taxonomy in canonical order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// VariableCost returns the variable-cost subset, the only categories a
// spending limit may target.
func VariableCost() []Category {
	var out []Category
	for _, c := range all {
		if c.Class == ClassVariable {
			out = append(out, c)
		}
	}
	return out
}

// ByName resolves an exact canonical name, case-insensitively.
func ByName(name string) (Category, bool) {
	n := strings.TrimSpace(name)
	for _, c := range all {
		if strings.EqualFold(c.Name, n) {
			return c, true
		}
	}
	return Category{}, false
}

// IsIncomeOnly reports whether a canonical name belongs to the income-only
// subset. Unknown names are not income-only.
func IsIncomeOnly(name string) bool {
	c, ok := ByName(name)
	return ok && c.Class == ClassIncome
}
