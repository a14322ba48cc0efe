package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"smart-grocer/internal/shopping"
)

// Unit is a measurement unit accepted by the price comparison.
type Unit string

const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milliliter Unit = "ml"
	Liter      Unit = "L"
)

// Dimension is the physical quantity a unit measures. Entries of different
// dimensions are never compared with each other.
type Dimension string

const (
	Mass   Dimension = "mass"
	Volume Dimension = "volume"
)

type unitMeta struct {
	dimension Dimension
	toBase    float64
}

var units = map[Unit]unitMeta{
	Gram:       {Mass, 0.001},
	Kilogram:   {Mass, 1},
	Milliliter: {Volume, 0.001},
	Liter:      {Volume, 1},
}

var baseUnits = map[Dimension]Unit{
	Mass:   Kilogram,
	Volume: Liter,
}

const (
	MinCompareEntries = 2
	MaxCompareEntries = 4
)

var (
	ErrEntryCount  = errors.New("price comparison takes 2 to 4 entries")
	ErrUnknownUnit = errors.New("unknown unit")
)

// ParseUnit accepts a unit case-insensitively ("l" and "L" are both liters).
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g":
		return Gram, nil
	case "kg":
		return Kilogram, nil
	case "ml":
		return Milliliter, nil
	case "l":
		return Liter, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownUnit, s)
}

// Product is one entry of the comparison as typed by the user.
type Product struct {
	Label    string `json:"label"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	Unit     Unit   `json:"unit"`
}

// UnitPrice is the normalized result for one entry. PerBaseUnit is +Inf
// for invalid entries.
type UnitPrice struct {
	Label       string    `json:"label"`
	Dimension   Dimension `json:"dimension"`
	BaseUnit    Unit      `json:"baseUnit"`
	PerBaseUnit float64   `json:"-"`
	Valid       bool      `json:"valid"`
	Best        bool      `json:"best"`
}

// CompareUnitPrices normalizes each entry to price per kg or per L and flags
// the cheapest entry of every dimension that has at least two valid entries.
// The first minimum wins on ties.
func CompareUnitPrices(products []Product) ([]UnitPrice, error) {
	if len(products) < MinCompareEntries || len(products) > MaxCompareEntries {
		return nil, ErrEntryCount
	}

	out := make([]UnitPrice, len(products))
	for i, p := range products {
		unit, err := ParseUnit(string(p.Unit))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		meta := units[unit]
		r := UnitPrice{
			Label:       p.Label,
			Dimension:   meta.dimension,
			BaseUnit:    baseUnits[meta.dimension],
			PerBaseUnit: math.Inf(1),
		}
		price, perr := shopping.ParseAmount(p.Price)
		qty, qerr := shopping.ParseAmount(p.Quantity)
		if perr == nil && qerr == nil && price >= 0 && qty > 0 {
			r.PerBaseUnit = price / (qty * meta.toBase)
			r.Valid = true
		}
		out[i] = r
	}

	for _, dim := range []Dimension{Mass, Volume} {
		best, valid := -1, 0
		for i, r := range out {
			if r.Dimension != dim || !r.Valid {
				continue
			}
			valid++
			if best < 0 || r.PerBaseUnit < out[best].PerBaseUnit {
				best = i
			}
		}
		if valid >= 2 {
			out[best].Best = true
		}
	}
	return out, nil
}

// PricePerBaseUnit returns the normalized price, nil for invalid entries.
func (u UnitPrice) PricePerBaseUnit() *float64 {
	if !u.Valid {
		return nil
	}
	v := u.PerBaseUnit
	return &v
}

// MarshalJSON renders invalid entries with a null unit price.
func (u UnitPrice) MarshalJSON() ([]byte, error) {
	type plain UnitPrice
	return json.Marshal(struct {
		plain
		PricePerBaseUnit *float64 `json:"pricePerBaseUnit"`
	}{plain(u), u.PricePerBaseUnit()})
}
