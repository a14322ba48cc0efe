// Package profile holds the single user profile record and the legacy
// budget value kept next to it.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalid is returned when a profile fails validation.
var ErrInvalid = errors.New("invalid profile")

// Currency is one of the supported ISO codes.
type Currency string

const (
	BRL Currency = "BRL"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

var symbols = map[Currency]string{
	BRL: "R$",
	USD: "$",
	EUR: "€",
}

// Symbol returns the display symbol, falling back to the code itself.
func (c Currency) Symbol() string {
	if s, ok := symbols[c]; ok {
		return s
	}
	return string(c)
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	_, ok := symbols[c]
	return ok
}

// DefaultEmoji is used until the user picks one.
const DefaultEmoji = "🛒"

// DefaultCategories is offered during setup.
var DefaultCategories = []string{
	"Frutas e Verduras",
	"Laticínios",
	"Carnes e Peixes",
	"Padaria",
	"Bebidas",
	"Limpeza",
	"Higiene",
	"Mercearia",
	"Congelados",
	"Outros",
}

// Profile is the user configuration record.
type Profile struct {
	Name              string   `json:"name"`
	Emoji             string   `json:"emoji"`
	Currency          Currency `json:"currency"`
	BudgetGoal        float64  `json:"budgetGoal"`
	DefaultCategories []string `json:"defaultCategories"`
	SetupCompleted    bool     `json:"setupCompleted"`
}

// Default returns a fresh default profile.
func Default() Profile {
	return Profile{
		Emoji:             DefaultEmoji,
		Currency:          BRL,
		DefaultCategories: append([]string(nil), DefaultCategories...),
	}
}

// Merge decodes raw over the defaults, so fields missing from an older
// record keep their default value. Undecodable input yields the defaults.
func Merge(raw []byte) Profile {
	p := Default()
	if len(raw) == 0 {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Default()
	}
	if p.DefaultCategories == nil {
		p.DefaultCategories = append([]string(nil), DefaultCategories...)
	}
	return p
}

// Normalize trims text fields and removes blank or repeated categories,
// keeping the first occurrence.
func (p Profile) Normalize() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Emoji = strings.TrimSpace(p.Emoji)
	if p.Emoji == "" {
		p.Emoji = DefaultEmoji
	}
	p.Currency = Currency(strings.ToUpper(strings.TrimSpace(string(p.Currency))))

	seen := make(map[string]struct{}, len(p.DefaultCategories))
	cats := make([]string, 0, len(p.DefaultCategories))
	for _, c := range p.DefaultCategories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}
	p.DefaultCategories = cats
	return p
}

// Validate checks currency and budget.
func (p Profile) Validate() error {
	if !p.Currency.Valid() {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalid, p.Currency)
	}
	if p.BudgetGoal < 0 || math.IsNaN(p.BudgetGoal) || math.IsInf(p.BudgetGoal, 0) {
		return fmt.Errorf("%w: budget goal must be a non-negative number", ErrInvalid)
	}
	return nil
}

// ParseBudget reads the legacy bare numeric budget string. Anything that is
// not a non-negative number reads as 0, which means unset.
func ParseBudget(raw string) float64 {
	raw = strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	var v float64
	if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
		return 0
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatBudget renders a budget for the legacy key.
func FormatBudget(v float64) string {
	return fmt.Sprintf("%g", v)
}
