// Package analytics derives the grouped list, spending metrics, time
// series and unit-price comparisons from a list of items. Every function is
// pure: items in, value out.
package analytics

import (
	"sort"
	"strings"

	"smart-grocer/internal/shopping"
)

// CategoryGroup is one category section of the grouped list.
type CategoryGroup struct {
	Category string          `json:"category"`
	Items    []shopping.Item `json:"items"`
	Total    float64         `json:"total"`
}

// GroupByCategory partitions items by category, blank categories falling
// into other. Groups are ordered by name; within a group pending items come
// before completed ones, then by name.
func GroupByCategory(items []shopping.Item, other string) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, it := range items {
		cat := it.CategoryOr(other)
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Items = append(groups[i].Items, it)
		groups[i].Total += it.Price
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Category < groups[b].Category
	})
	for _, g := range groups {
		sort.SliceStable(g.Items, func(a, b int) bool {
			ia, ib := g.Items[a], g.Items[b]
			if ia.Completed() != ib.Completed() {
				return !ia.Completed()
			}
			return strings.ToLower(ia.Name) < strings.ToLower(ib.Name)
		})
	}
	return groups
}

// Categories returns the distinct categories of items in ascending order.
func Categories(items []shopping.Item, other string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range items {
		cat := it.CategoryOr(other)
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
