package shopping

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is the purchase state of a shopping item.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// DefaultOtherCategory is the bucket used when an item has no category.
const DefaultOtherCategory = "Outros"

// SuggestionCategories is the fixed category enumeration offered to the
// suggestion model.
var SuggestionCategories = []string{
	"Frutas e Legumes",
	"Laticínios e Ovos",
	"Carne e Peixe",
	"Pães e Biscoitos",
	"Despensa",
	"Congelados",
	"Bebidas",
	"Outros",
}

var (
	// ErrInvalidItem is returned when user input cannot become an item.
	ErrInvalidItem = errors.New("invalid item")
	// ErrNotFound is returned when no item matches the given id.
	ErrNotFound = errors.New("item not found")
)

// Item is one line of the shopping list.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity string  `json:"quantity,omitempty"`
	Price    float64 `json:"price"`
	Status   Status  `json:"status"`
	// CreatedAt is zero when the record predates timestamps.
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Completed reports whether the item has been purchased.
func (i Item) Completed() bool {
	return i.Status == StatusCompleted
}

// CategoryOr returns the item category, or other when it is blank.
func (i Item) CategoryOr(other string) string {
	if strings.TrimSpace(i.Category) == "" {
		return other
	}
	return i.Category
}

// CreatedOr returns the creation time, or now when it is absent.
func (i Item) CreatedOr(now time.Time) time.Time {
	if i.CreatedAt.IsZero() {
		return now
	}
	return i.CreatedAt
}

// Patch holds the fields of an update. Nil fields are left untouched.
type Patch struct {
	Name     *string  `json:"name,omitempty"`
	Category *string  `json:"category,omitempty"`
	Quantity *string  `json:"quantity,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Status   *Status  `json:"status,omitempty"`
}

// Validate rejects patches that would produce an invalid item.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidItem)
	}
	if p.Price != nil && (*p.Price < 0 || math.IsNaN(*p.Price) || math.IsInf(*p.Price, 0)) {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidItem)
	}
	if p.Status != nil && *p.Status != StatusPending && *p.Status != StatusCompleted {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidItem, *p.Status)
	}
	return nil
}

func (p Patch) apply(item Item) Item {
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		item.Category = strings.TrimSpace(*p.Category)
	}
	if p.Quantity != nil {
		item.Quantity = strings.TrimSpace(*p.Quantity)
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	return item
}

// Summary holds the derived counters of a list.
type Summary struct {
	TotalCount      int     `json:"totalCount"`
	CompletedCount  int     `json:"completedCount"`
	PendingCount    int     `json:"pendingCount"`
	ProgressPercent float64 `json:"progressPercent"`
	TotalPrice      float64 `json:"totalPrice"`
	CompletedPrice  float64 `json:"completedPrice"`
}
