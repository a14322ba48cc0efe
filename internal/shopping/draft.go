package shopping

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Aggregations and timestamps go through it
// so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Draft is raw user input for a new item, as typed into a form.
type Draft struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// Build validates the draft and turns it into a pending item. An empty
// category falls back to other.
func (d Draft) Build(clock Clock, other string) (Item, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Item{}, fmt.Errorf("%w: name must not be empty", ErrInvalidItem)
	}

	var price float64
	if strings.TrimSpace(d.Price) != "" {
		p, err := ParseAmount(d.Price)
		if err != nil {
			return Item{}, fmt.Errorf("%w: price %q: %v", ErrInvalidItem, d.Price, err)
		}
		if p < 0 {
			return Item{}, fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
		}
		price = p
	}

	category := strings.TrimSpace(d.Category)
	if category == "" {
		category = other
	}

	return Item{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Quantity:  strings.TrimSpace(d.Quantity),
		Price:     price,
		Status:    StatusPending,
		CreatedAt: clock.Now(),
	}, nil
}

// ParseAmount parses a decimal typed by a user. A comma decimal separator
// ("4,50") is accepted. Non-finite values are rejected.
func ParseAmount(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}
