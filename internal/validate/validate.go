// Package validate implements the field validation rules that gate every
// record mutation. All functions are pure: they classify a candidate
// value and, on rejection, say why in terms a user can act on.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Result classifies a candidate field value. Message is set only on
// rejection and is suitable for direct display next to the input.
type Result struct {
	OK      bool
	Message string
}

var (
	descPattern     = regexp.MustCompile(`^[A-Za-z\s.,'’-]+$`)
	digitPattern    = regexp.MustCompile(`\d`)
	amountPattern   = regexp.MustCompile(`^(0|[1-9]\d*)(\.\d{1,2})?$`)
	datePattern     = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	categoryPattern = regexp.MustCompile(`^[A-Za-z]+(?:[ -][A-Za-z]+)*$`)
	wordPattern     = regexp.MustCompile(`[A-Za-z0-9_']+`)
	spaceRuns       = regexp.MustCompile(`\s+`)
)

func accepted() Result {
	return Result{OK: true}
}

func rejected(message string) Result {
	return Result{Message: message}
}

// Normalize trims the value and collapses runs of whitespace to a single
// space. Every description is normalized before checking and storing.
func Normalize(s string) string {
	return spaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
}

// HasRepeatedWord reports an immediately repeated whole word, like
// "the the", which is almost always a typing mistake. Case-insensitive.
func HasRepeatedWord(s string) bool {
	words := wordPattern.FindAllString(strings.ToLower(s), -1)
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			return true
		}
	}
	return false
}

// Description accepts letters, spaces, and the punctuation marks comma,
// period, apostrophe, and hyphen. Digits, empty input, and repeated
// words are rejected.
func Description(s string) Result {
	norm := Normalize(s)
	if norm == "" {
		return rejected("description is required")
	}
	if digitPattern.MatchString(norm) {
		return rejected("description cannot contain numbers")
	}
	if !descPattern.MatchString(norm) {
		return rejected("description may only contain letters, spaces, and , . ' -")
	}
	if HasRepeatedWord(norm) {
		return rejected("description repeats a word")
	}
	return accepted()
}

// Amount accepts 0 or a positive integer without leading zeros,
// optionally followed by one or two decimal digits.
func Amount(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return rejected("amount is required")
	}
	if !amountPattern.MatchString(s) {
		return rejected("amount must be a non-negative number with at most two decimals")
	}
	return accepted()
}

// Date accepts a strict YYYY-MM-DD string that also denotes a real
// calendar day: the parts must reconstruct identically through calendar
// construction, so 2025-02-30 fails even though it matches the pattern.
func Date(s string) Result {
	s = strings.TrimSpace(s)
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return rejected("date must be in YYYY-MM-DD form")
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return rejected("date is not a real calendar day")
	}
	return accepted()
}

// Category accepts one or more letter runs separated by single spaces
// or hyphens.
func Category(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return rejected("category is required")
	}
	if !categoryPattern.MatchString(s) {
		return rejected("category may only contain letters, spaces, and hyphens")
	}
	return accepted()
}

// CompilePattern builds a case-insensitive matcher from user input.
// Input that is not a valid pattern falls back to a literal-text match
// instead of surfacing an error; empty input yields nil (match all).
// Every search feature goes through this one path.
func CompilePattern(s string) *regexp.Regexp {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if re, err := regexp.Compile("(?i)" + s); err == nil {
		return re
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(s))
}
