package analytics

import (
	"sort"
	"time"

	"smart-grocer/internal/shopping"
)

// DateRange is an inclusive range of whole calendar days.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsZero reports whether no range is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls between the start of From's day and the
// end of To's day.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(startOfDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && !t.Before(startOfDay(r.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// Filter keeps the items created within r. Items without a timestamp are
// treated as created now. A zero range keeps everything.
func Filter(items []shopping.Item, r DateRange, now time.Time) []shopping.Item {
	out := make([]shopping.Item, 0, len(items))
	for _, it := range items {
		if r.IsZero() || r.Contains(it.CreatedOr(now)) {
			out = append(out, it)
		}
	}
	return out
}

// Metrics holds the scalar indicators of a list.
type Metrics struct {
	TotalItems     int     `json:"totalItems"`
	CompletedItems int     `json:"completedItems"`
	PendingItems   int     `json:"pendingItems"`
	TotalSpent     float64 `json:"totalSpent"`
	TotalPlanned   float64 `json:"totalPlanned"`
	AveragePrice   float64 `json:"averagePrice"`
}

// Compute derives the scalar metrics of items.
func Compute(items []shopping.Item) Metrics {
	m := Metrics{TotalItems: len(items)}
	for _, it := range items {
		m.TotalPlanned += it.Price
		if it.Completed() {
			m.CompletedItems++
			m.TotalSpent += it.Price
		}
	}
	m.PendingItems = m.TotalItems - m.CompletedItems
	if m.TotalItems > 0 {
		m.AveragePrice = m.TotalPlanned / float64(m.TotalItems)
	}
	return m
}

// CategoryStat aggregates one category.
type CategoryStat struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Planned  float64 `json:"planned"`
	Spent    float64 `json:"spent"`
}

// CategoryStats aggregates items per category, largest planned total first.
func CategoryStats(items []shopping.Item, other string) []CategoryStat {
	index := make(map[string]int)
	var stats []CategoryStat
	for _, it := range items {
		cat := it.CategoryOr(other)
		i, ok := index[cat]
		if !ok {
			i = len(stats)
			index[cat] = i
			stats = append(stats, CategoryStat{Category: cat})
		}
		stats[i].Count++
		stats[i].Planned += it.Price
		if it.Completed() {
			stats[i].Spent += it.Price
		}
	}
	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].Planned > stats[b].Planned
	})
	return stats
}

// BudgetWarnRatio is the share of the goal from which spending is flagged.
const BudgetWarnRatio = 0.8

// BudgetStatus compares spending against a goal.
type BudgetStatus struct {
	Goal     float64 `json:"goal"`
	Spent    float64 `json:"spent"`
	Percent  float64 `json:"percent"`
	Warning  bool    `json:"warning"`
	Exceeded bool    `json:"exceeded"`
}

// Budget evaluates spent against goal. A goal of 0 means unset and never
// warns. Percent is capped at 100.
func Budget(goal, spent float64) BudgetStatus {
	b := BudgetStatus{Goal: goal, Spent: spent}
	if goal <= 0 {
		return b
	}
	b.Percent = min(spent/goal*100, 100)
	b.Exceeded = spent >= goal
	b.Warning = !b.Exceeded && spent >= goal*BudgetWarnRatio
	return b
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
