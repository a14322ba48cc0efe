package analytics

import (
	"fmt"
	"sort"
	"strings"

	"smart-grocer/internal/shopping"
)

// TopByPrice returns the n most expensive items. Equal prices keep their
// list order.
func TopByPrice(items []shopping.Item, n int) []shopping.Item {
	sorted := append([]shopping.Item(nil), items...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Price > sorted[b].Price })
	if n < 0 {
		n = 0
	}
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// SortKey selects a column of the item table.
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByCategory SortKey = "category"
	SortByQuantity SortKey = "quantity"
	SortByPrice    SortKey = "price"
	SortByStatus   SortKey = "status"
)

// SortDir is the direction of a table sort.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// ParseSort validates user-supplied sort parameters. Empty values default
// to name ascending.
func ParseSort(key, dir string) (SortKey, SortDir, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(key)))
	if k == "" {
		k = SortByName
	}
	switch k {
	case SortByName, SortByCategory, SortByQuantity, SortByPrice, SortByStatus:
	default:
		return "", "", fmt.Errorf("unknown sort key %q", key)
	}

	d := SortDir(strings.ToLower(strings.TrimSpace(dir)))
	if d == "" {
		d = Asc
	}
	if d != Asc && d != Desc {
		return "", "", fmt.Errorf("unknown sort direction %q", dir)
	}
	return k, d, nil
}

// SortItems returns a copy of items ordered by key. Text columns compare
// case-insensitively; equal rows keep their list order.
func SortItems(items []shopping.Item, key SortKey, dir SortDir) []shopping.Item {
	sorted := append([]shopping.Item(nil), items...)
	less := func(a, b shopping.Item) bool {
		switch key {
		case SortByCategory:
			return strings.ToLower(a.Category) < strings.ToLower(b.Category)
		case SortByQuantity:
			return a.Quantity < b.Quantity
		case SortByPrice:
			return a.Price < b.Price
		case SortByStatus:
			return a.Status < b.Status
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if dir == Desc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}
