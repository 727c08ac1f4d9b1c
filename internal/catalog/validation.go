package catalog

// validation.go checks a candidate Product against the field invariants
// before it is allowed anywhere near storage.
//
// Every rule is independent and all rules run: an invalid candidate is
// reported with the complete list of violations, not just the first.
// Invalid input is a normal outcome here, never an error.

import (
	"strings"
	"time"
)

// Result accumulates violation messages from validating a candidate.
type Result struct {
	violations []string
}

// Valid reports whether the candidate passed every rule.
func (r Result) Valid() bool { return len(r.violations) == 0 }

// Violations returns the ordered list of violation messages.
func (r Result) Violations() []string { return r.violations }

func (r *Result) add(msg string) { r.violations = append(r.violations, msg) }

func (r Result) String() string {
	if r.Valid() {
		return "ok"
	}
	return strings.Join(r.violations, "; ")
}

// rule is a single field invariant: a predicate plus the message reported
// when the predicate fails.
type rule struct {
	ok  func(Product) bool
	msg string
}

var rules = []rule{
	{func(p Product) bool { return ValidID(p.ID) },
		"ID must be an integer between 1 and 9999."},
	{func(p Product) bool { return validText(p.Description) },
		"Description required; max 30 chars."},
	{func(p Product) bool { return validText(p.Brand) },
		"Brand required; max 30 chars."},
	{func(p Product) bool { return validText(p.Content) },
		"Content required; max 30 chars."},
	{func(p Product) bool { return ValidCategory(p.Category) },
		"Category must be one of the allowed categories."},
	{func(p Product) bool { return p.Price > 0 },
		"Price must be greater than 0."},
	{func(p Product) bool { return validDates(p) },
		"DateMade is required and must precede ExpirationDate (or ExpirationDate empty)."},
}

// Validate runs every rule against the candidate and returns the
// accumulated violations.
func Validate(p Product) Result {
	var r Result
	for _, rl := range rules {
		if !rl.ok(p) {
			r.add(rl.msg)
		}
	}
	return r
}

// ValidID reports whether id lies in the caller-supplied range [1, 9999].
func ValidID(id int) bool {
	return id >= MinID && id <= MaxID
}

func validText(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len([]rune(s)) <= MaxFieldLen
}

// validDates enforces: DateMade set; ExpirationDate nil or strictly
// after DateMade (by calendar day).
func validDates(p Product) bool {
	if p.DateMade.IsZero() {
		return false
	}
	if p.ExpirationDate == nil {
		return true
	}
	made := truncateToDay(p.DateMade)
	exp := truncateToDay(*p.ExpirationDate)
	return made.Before(exp)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
