// Package catalog provides the business core of the shop catalog:
// the Product model, field validation, the repository contract,
// statistics aggregation, and the application service that ties
// the pieces together for callers (HTTP handlers, CLI commands).
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// ID bounds for caller-supplied product identifiers.
const (
	MinID = 1
	MaxID = 9999
)

// MaxFieldLen is the maximum length for description, brand and content.
const MaxFieldLen = 30

// Status tokens as persisted and rendered. Matching is case-insensitive
// on input; these are the canonical spellings on output.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Categories is the fixed set of allowed product categories.
var Categories = []string{
	"Groceries",
	"Personal Hygiene",
	"Fruits & Vegetables",
	"Wines & Liquors",
}

// Product is the sole domain entity: a catalog record as entered in a
// form, parsed from a CSV row, or read back from storage.
type Product struct {
	ID             int        `json:"id"`
	Description    string     `json:"description"`
	Brand          string     `json:"brand"`
	Content        string     `json:"content"`
	Category       string     `json:"category"`
	Price          float64    `json:"price"`
	Active         bool       `json:"active"`
	DateMade       time.Time  `json:"dateMade"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// Status returns the canonical status token for the record.
func (p Product) Status() string {
	if p.Active {
		return StatusActive
	}
	return StatusInactive
}

func (p Product) String() string {
	return fmt.Sprintf("Product{id=%d, desc=%q, brand=%q, price=%v, active=%v}",
		p.ID, p.Description, p.Brand, p.Price, p.Active)
}

// ValidCategory reports whether s matches one of the allowed categories,
// ignoring case and surrounding whitespace.
func ValidCategory(s string) bool {
	return CanonicalCategory(s) != ""
}

// CanonicalCategory returns the canonical spelling for a category value,
// or "" if the value is not in the allowed set.
func CanonicalCategory(s string) string {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(c, s) {
			return c
		}
	}
	return ""
}

// ParseStatus maps a status token to its active flag. The second return
// is false when the token is neither "Active" nor "Inactive".
func ParseStatus(s string) (active, ok bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), StatusActive):
		return true, true
	case strings.EqualFold(strings.TrimSpace(s), StatusInactive):
		return false, true
	default:
		return false, false
	}
}
