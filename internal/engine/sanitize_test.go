package engine

import "testing"

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"clean text untouched", "Recorded $21 for Personal Care.", "Recorded $21 for Personal Care."},
		{"marker line removed", "Recorded $21.\n[SAVED transaction]\nAnything else?", "Recorded $21.\nAnything else?"},
		{"trailing fragment removed", "Recorded $21. [INTERNAL ok]", "Recorded $21."},
		{"stacked fragments removed", "Done. [DEBUG a] [SYSTEM b]", "Done."},
		{"chat control token removed", "All set.\n<|endofturn|>", "All set."},
		{"midline brackets kept", "Your [Groceries] total is $120.", "Your [Groceries] total is $120."},
		{"marker-only reply survives", "[INTERNAL only]", "[INTERNAL only]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
