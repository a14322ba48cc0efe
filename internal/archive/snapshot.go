// Package archive turns the live list into immutable labeled snapshots and
// manages the snapshot history.
package archive

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"smart-grocer/internal/shopping"
)

var (
	// ErrEmptyList is returned when archiving a list with no items.
	ErrEmptyList = errors.New("cannot archive an empty list")
	// ErrNotFound is returned when no snapshot matches the given id.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidLabel is returned when a rename label is blank.
	ErrInvalidLabel = errors.New("label must not be empty")
)

var shortMonths = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Snapshot is an archived copy of the list. Only Label may change after
// creation.
type Snapshot struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	ArchivedAt   time.Time       `json:"archivedAt"`
	Items        []shopping.Item `json:"items"`
	TotalPlanned float64         `json:"totalPlanned"`
	TotalSpent   float64         `json:"totalSpent"`
}

// DefaultLabel names a snapshot after its archive date, e.g.
// "Lista de 25/fev/25".
func DefaultLabel(t time.Time) string {
	return fmt.Sprintf("Lista de %02d/%s/%02d", t.Day(), shortMonths[t.Month()-1], t.Year()%100)
}

// NewSnapshot copies items into a new snapshot. A blank label defaults to
// the archive date.
func NewSnapshot(items []shopping.Item, label string, now time.Time) (Snapshot, error) {
	if len(items) == 0 {
		return Snapshot{}, ErrEmptyList
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultLabel(now)
	}

	s := Snapshot{
		ID:         uuid.NewString(),
		Label:      label,
		ArchivedAt: now,
		Items:      shopping.ReplaceAll(items),
	}
	for _, it := range items {
		s.TotalPlanned += it.Price
		if it.Completed() {
			s.TotalSpent += it.Price
		}
	}
	return s, nil
}

// RestoreItems returns a copy of the snapshot items for the live list.
func (s Snapshot) RestoreItems() []shopping.Item {
	return shopping.ReplaceAll(s.Items)
}

// Append adds s to the end of history.
func Append(history []Snapshot, s Snapshot) []Snapshot {
	next := make([]Snapshot, 0, len(history)+1)
	next = append(next, history...)
	return append(next, s)
}

// Delete removes the snapshot with the given id.
func Delete(history []Snapshot, id string) ([]Snapshot, bool) {
	next := make([]Snapshot, 0, len(history))
	found := false
	for _, s := range history {
		if s.ID == id {
			found = true
			continue
		}
		next = append(next, s)
	}
	return next, found
}

// Rename replaces the label of the snapshot with the given id. A blank
// label is rejected.
func Rename(history []Snapshot, id, label string) ([]Snapshot, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return history, ErrInvalidLabel
	}
	next := make([]Snapshot, len(history))
	copy(next, history)
	for i := range next {
		if next[i].ID == id {
			next[i].Label = label
			return next, nil
		}
	}
	return history, ErrNotFound
}

// Find returns the snapshot with the given id.
func Find(history []Snapshot, id string) (Snapshot, bool) {
	for _, s := range history {
		if s.ID == id {
			return s, true
		}
	}
	return Snapshot{}, false
}

// Newest returns history in display order, most recently archived first.
func Newest(history []Snapshot) []Snapshot {
	out := make([]Snapshot, len(history))
	copy(out, history)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].ArchivedAt.After(out[b].ArchivedAt)
	})
	return out
}

// AllItems flattens the items of every snapshot, for reports across
// archived lists.
func AllItems(history []Snapshot) []shopping.Item {
	var out []shopping.Item
	for _, s := range history {
		out = append(out, s.Items...)
	}
	return out
}
