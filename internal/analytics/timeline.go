package analytics

import (
	"fmt"
	"sort"
	"time"

	"smart-grocer/internal/shopping"
)

var monthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthKey returns the "2006-01" bucket of t in t's own location.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DayKey returns the "2006-01-02" bucket of t in t's own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthLabel renders a month key as "Mar/25". Malformed keys are
// returned unchanged.
func MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s/%02d", monthNames[t.Month()-1], t.Year()%100)
}

// MonthBucket holds the totals of one calendar month. Deltas are relative
// to the previous bucket and nil for the first one.
type MonthBucket struct {
	Key            string   `json:"key"`
	Label          string   `json:"label"`
	Planned        float64  `json:"planned"`
	Spent          float64  `json:"spent"`
	Count          int      `json:"count"`
	CompletedCount int      `json:"completedCount"`
	DeltaPlanned   *float64 `json:"deltaPlanned"`
	DeltaSpent     *float64 `json:"deltaSpent"`
}

// Monthly buckets items by creation month, in chronological order.
func Monthly(items []shopping.Item, now time.Time) []MonthBucket {
	index := make(map[string]int)
	var buckets []MonthBucket
	for _, it := range items {
		key := MonthKey(it.CreatedOr(now))
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, MonthBucket{Key: key, Label: MonthLabel(key)})
		}
		b := &buckets[i]
		b.Planned += it.Price
		b.Count++
		if it.Completed() {
			b.Spent += it.Price
			b.CompletedCount++
		}
	}

	sort.Slice(buckets, func(a, b int) bool { return buckets[a].Key < buckets[b].Key })
	for i := 1; i < len(buckets); i++ {
		dp := buckets[i].Planned - buckets[i-1].Planned
		ds := buckets[i].Spent - buckets[i-1].Spent
		buckets[i].DeltaPlanned = &dp
		buckets[i].DeltaSpent = &ds
	}
	return buckets
}

// CategorySeries holds parallel monthly series for one category.
type CategorySeries struct {
	Category string    `json:"category"`
	Labels   []string  `json:"labels"`
	Planned  []float64 `json:"planned"`
	Spent    []float64 `json:"spent"`
}

// CategoryMonthly runs the monthly roll-up over the items of one category.
func CategoryMonthly(items []shopping.Item, category, other string, now time.Time) CategorySeries {
	var selected []shopping.Item
	for _, it := range items {
		if it.CategoryOr(other) == category {
			selected = append(selected, it)
		}
	}

	s := CategorySeries{
		Category: category,
		Labels:   []string{},
		Planned:  []float64{},
		Spent:    []float64{},
	}
	for _, b := range Monthly(selected, now) {
		s.Labels = append(s.Labels, b.Label)
		s.Planned = append(s.Planned, b.Planned)
		s.Spent = append(s.Spent, b.Spent)
	}
	return s
}

// DefaultActivityWindow is the trailing window used without a date filter.
const DefaultActivityWindow = 90 * 24 * time.Hour

// MaxActivityWindow bounds the heat map. Longer windows keep their most
// recent part.
const MaxActivityWindow = 366 * 24 * time.Hour

// DayCount is one cell of the activity heat map.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Heatmap is a day-by-day item count over a window. Max is at least 1.
type Heatmap struct {
	Start string     `json:"start"`
	End   string     `json:"end"`
	Days  []DayCount `json:"days"`
	Max   int        `json:"max"`
}

// Activity counts items per creation day over window. A missing end means
// today and a missing start means 90 days before the end.
func Activity(items []shopping.Item, window DateRange, now time.Time) Heatmap {
	start, end := window.From, window.To
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = end.Add(-DefaultActivityWindow)
	}
	if end.Sub(start) > MaxActivityWindow {
		start = end.Add(-MaxActivityWindow)
	}

	counts := make(map[string]int)
	for _, it := range items {
		counts[DayKey(it.CreatedOr(now))]++
	}

	h := Heatmap{Start: DayKey(start), End: DayKey(end), Days: []DayCount{}, Max: 1}
	last := startOfDay(end)
	for day := startOfDay(start); !day.After(last); day = day.AddDate(0, 0, 1) {
		key := DayKey(day)
		c := counts[key]
		h.Days = append(h.Days, DayCount{Date: key, Count: c})
		h.Max = max(h.Max, c)
	}
	return h
}

// SpendPoint is one step of the cumulative spend line.
type SpendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CumulativeSpend is the running total over completed items with a price,
// in list order.
func CumulativeSpend(items []shopping.Item) []SpendPoint {
	points := []SpendPoint{}
	var acc float64
	for _, it := range items {
		if !it.Completed() || it.Price <= 0 {
			continue
		}
		acc += it.Price
		points = append(points, SpendPoint{Label: fmt.Sprintf("Item %d", len(points)+1), Value: acc})
	}
	return points
}
