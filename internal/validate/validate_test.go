package validate

import "testing"

func TestDescription(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Lunch at cafeteria", true},
		{"Mom's groceries, weekly", true},
		{"Check-in fee", true},
		{"  spaced   out  ", true}, // normalized before checking
		{"", false},
		{"   ", false},
		{"Lunch 2day", false},  // digit
		{"the the lunch", false}, // repeated word
		{"The THE lunch", false}, // repeated word, case-insensitive
		{"coffee & cake", false}, // disallowed punctuation
	}
	for _, tc := range cases {
		if got := Description(tc.in); got.OK != tc.ok {
			t.Errorf("Description(%q).OK = %v, want %v (message %q)", tc.in, got.OK, tc.ok, got.Message)
		}
	}
	if r := Description(""); r.OK || r.Message == "" {
		t.Fatalf("rejection must carry a message, got %+v", r)
	}
}

func TestAmount(t *testing.T) {
	accepts := []string{"0", "5", "12.5", "12.55", "199.99", "1000"}
	rejects := []string{"", "-1", "01", "12.555", "1,5", ".5", "12.", "abc", "+3"}
	for _, in := range accepts {
		if got := Amount(in); !got.OK {
			t.Errorf("Amount(%q) rejected: %s", in, got.Message)
		}
	}
	for _, in := range rejects {
		if got := Amount(in); got.OK {
			t.Errorf("Amount(%q) accepted, want rejection", in)
		}
	}
}

func TestDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-02-28", true},
		{"2024-02-29", true}, // leap year
		{"2025-12-31", true},
		{"2025-02-30", false}, // passes the pattern, fails the calendar
		{"2025-02-29", false}, // not a leap year
		{"2025-13-01", false},
		{"2025-00-10", false},
		{"2025-1-1", false}, // not zero-padded
		{"25-01-01", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Date(tc.in); got.OK != tc.ok {
			t.Errorf("Date(%q).OK = %v, want %v", tc.in, got.OK, tc.ok)
		}
	}
}

func TestCategory(t *testing.T) {
	accepts := []string{"Food", "Eating Out", "Self-Care", "a"}
	rejects := []string{"", "  ", "Food2", "Food  Fun", "Food--Fun", "-Food", "Food-"}
	for _, in := range accepts {
		if got := Category(in); !got.OK {
			t.Errorf("Category(%q) rejected: %s", in, got.Message)
		}
	}
	for _, in := range rejects {
		if got := Category(in); got.OK {
			t.Errorf("Category(%q) accepted, want rejection", in)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  too   many\tspaces  "); got != "too many spaces" {
		t.Fatalf("Normalize: got %q", got)
	}
}

func TestHasRepeatedWord(t *testing.T) {
	if !HasRepeatedWord("paid the the bill") {
		t.Error("expected repeated word to be detected")
	}
	if HasRepeatedWord("paid the bill the same day") {
		t.Error("non-adjacent repeats are fine")
	}
}

func TestCompilePattern(t *testing.T) {
	if got := CompilePattern("   "); got != nil {
		t.Fatal("blank input should compile to nil")
	}

	re := CompilePattern("lun.h")
	if re == nil || !re.MatchString("Lunch") {
		t.Fatal("valid pattern should compile case-insensitively")
	}

	// Broken pattern falls back to a literal match instead of erroring.
	literal := CompilePattern("(")
	if literal == nil {
		t.Fatal("broken pattern should fall back, not return nil")
	}
	if !literal.MatchString("a (b") {
		t.Error("fallback should match the literal text")
	}
	if literal.MatchString("ab") {
		t.Error("fallback must not behave like a group")
	}
}
