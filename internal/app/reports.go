package app

import (
	"io"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/archive"
	"smart-grocer/internal/export"
	"smart-grocer/internal/shopping"
)

// TopItemsCount is the size of the most expensive items ranking.
const TopItemsCount = 5

// DashboardQuery selects what the dashboard aggregates.
type DashboardQuery struct {
	Range    analytics.DateRange
	Category string
	SortKey  analytics.SortKey
	SortDir  analytics.SortDir
	// IncludeArchived adds the items of every snapshot to the live list.
	IncludeArchived bool
}

// Dashboard is the full set of derived views of the list.
type Dashboard struct {
	Metrics         analytics.Metrics        `json:"metrics"`
	Categories      []analytics.CategoryStat `json:"categories"`
	Monthly         []analytics.MonthBucket  `json:"monthly"`
	AllCategories   []string                 `json:"allCategories"`
	CategorySeries  analytics.CategorySeries `json:"categorySeries"`
	Top             []shopping.Item          `json:"top"`
	Heatmap         analytics.Heatmap        `json:"heatmap"`
	Budget          analytics.BudgetStatus   `json:"budget"`
	CumulativeSpend []analytics.SpendPoint   `json:"cumulativeSpend"`
	Table           []shopping.Item          `json:"table"`
}

// Dashboard computes every analytics view over the selected items. The
// category series ignores the date range.
func (a *App) Dashboard(q DashboardQuery) Dashboard {
	a.mu.Lock()
	items := shopping.ReplaceAll(a.items)
	if q.IncludeArchived {
		items = append(items, archive.AllItems(a.history)...)
	}
	goal := a.budgetGoal()
	a.mu.Unlock()

	now := a.clock.Now()
	filtered := analytics.Filter(items, q.Range, now)
	m := analytics.Compute(filtered)

	all := analytics.Categories(items, a.other)
	category := q.Category
	if category == "" && len(all) > 0 {
		category = all[0]
	}
	if q.SortKey == "" {
		q.SortKey = analytics.SortByName
	}
	if q.SortDir == "" {
		q.SortDir = analytics.Asc
	}

	return Dashboard{
		Metrics:         m,
		Categories:      analytics.CategoryStats(filtered, a.other),
		Monthly:         analytics.Monthly(filtered, now),
		AllCategories:   all,
		CategorySeries:  analytics.CategoryMonthly(items, category, a.other, now),
		Top:             analytics.TopByPrice(filtered, TopItemsCount),
		Heatmap:         analytics.Activity(filtered, q.Range, now),
		Budget:          analytics.Budget(goal, m.TotalSpent),
		CumulativeSpend: analytics.CumulativeSpend(filtered),
		Table:           analytics.SortItems(filtered, q.SortKey, q.SortDir),
	}
}

// ShareText renders the live list as a chat message.
func (a *App) ShareText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return export.ShareText(a.items, a.prof.Currency, a.other)
}

// ExportCSV writes the live list, filtered by r, as CSV.
func (a *App) ExportCSV(w io.Writer, r analytics.DateRange) error {
	now := a.clock.Now()
	items := analytics.Filter(a.Items(), r, now)
	return export.WriteCSV(w, items, export.CSVOptions{Other: a.other, Now: now})
}

// ExportSnapshotCSV writes one snapshot as CSV with its month column and
// returns the suggested file name.
func (a *App) ExportSnapshotCSV(w io.Writer, id string) (string, error) {
	s, err := a.Snapshot(id)
	if err != nil {
		return "", err
	}
	opts := export.CSVOptions{Other: a.other, IncludeMonth: true, Now: s.ArchivedAt}
	return export.FileName(s.Label), export.WriteCSV(w, s.Items, opts)
}
