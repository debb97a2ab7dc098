package category

import "testing"

func TestNormalize_ExactName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dining Out", "Dining Out"},
		{"dining out", "Dining Out"},
		{"SALARY", "Salary"},
		{"  Personal Care  ", "Personal Care"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got.Name != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestNormalize_Keywords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a haircut", "Personal Care"},
		{"weekly groceries at the supermarket", "Groceries"},
		{"uber to the airport", "Transport"},
		{"netflix", "Subscriptions"},
		{"monthly salary came in", "Salary"},
		{"the rent", "Housing"},
		{"radio tax", "Utilities"},
		{"dentist appointment", "Health"},
		{"flight to madrid", "Travel"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got.Name != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestNormalize_MerchantOverride(t *testing.T) {
	// Brand names outrank keyword scoring entirely.
	for _, in := range []string{"McDonald's", "starbucks run", "lunch at KFC"} {
		if got := Normalize(in); got.Name != "Dining Out" {
			t.Errorf("Normalize(%q) = %q, want Dining Out", in, got.Name)
		}
	}
}

func TestNormalize_Spanish(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"el supermercado", "Groceries"},
		{"mi sueldo", "Salary"},
		{"alquiler", "Housing"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got.Name != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got.Name, tt.want)
		}
	}
}

func TestNormalize_TotalAndDefaultsToOther(t *testing.T) {
	for _, in := range []string{"", "   ", "qwertyuiop", "%%%###", "12345"} {
		got := Normalize(in)
		if got.Name != "Other" {
			t.Errorf("Normalize(%q) = %q, want Other", in, got.Name)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"a haircut", "uber ride", "garbage input", "McDonald's", "dividends",
		"", "paid the rent", "netflix and spotify",
	}
	for _, in := range inputs {
		first := Normalize(in)
		second := Normalize(first.Name)
		if first.Name != second.Name {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, first.Name, second.Name)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	for _, in := range []string{"coffee and a movie", "gas bill", "trip to the spa"} {
		a, b := Normalize(in), Normalize(in)
		if a.Name != b.Name {
			t.Errorf("Normalize(%q) unstable: %q vs %q", in, a.Name, b.Name)
		}
	}
}

func TestPartition(t *testing.T) {
	if !IsIncomeOnly("Salary") {
		t.Error("Salary should be income-only")
	}
	if IsIncomeOnly("Groceries") {
		t.Error("Groceries should not be income-only")
	}
	if IsIncomeOnly("not a category") {
		t.Error("unknown names are never income-only")
	}
	for _, c := range VariableCost() {
		if c.Class != ClassVariable {
			t.Errorf("VariableCost() returned %s with class %s", c.Name, c.Class)
		}
	}
}

func TestByName_Closed(t *testing.T) {
	if _, ok := ByName("Miscellaneous"); ok {
		t.Error("taxonomy should be closed: Miscellaneous is not a member")
	}
	if c, ok := ByName("other income"); !ok || c.Class != ClassIncome {
		t.Errorf("ByName(other income) = %+v, %v", c, ok)
	}
}
