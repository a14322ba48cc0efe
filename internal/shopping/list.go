package shopping

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Add appends item to the list. Items with an empty name are never stored.
func Add(items []Item, item Item) []Item {
	if strings.TrimSpace(item.Name) == "" {
		return clone(items)
	}
	return append(clone(items), item)
}

// AddMany appends the candidates whose name does not already appear in the
// list, compared case-insensitively. Missing timestamps are stamped with now
// and missing or clashing ids are replaced. It returns the next list and the
// accepted candidates in insertion order.
func AddMany(items, candidates []Item, now time.Time) ([]Item, []Item) {
	names := make(map[string]struct{}, len(items))
	ids := make(map[string]struct{}, len(items))
	for _, it := range items {
		names[strings.ToLower(it.Name)] = struct{}{}
		ids[it.ID] = struct{}{}
	}

	next := clone(items)
	accepted := make([]Item, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		if _, dup := names[strings.ToLower(c.Name)]; dup {
			continue
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if _, clash := ids[c.ID]; c.ID == "" || clash {
			c.ID = uuid.NewString()
		}
		if c.Status == "" {
			c.Status = StatusPending
		}
		ids[c.ID] = struct{}{}
		next = append(next, c)
		accepted = append(accepted, c)
	}
	return next, accepted
}

// Update merges patch into the item with the given id. The second return
// value is false when no item matched, in which case the list is unchanged.
func Update(items []Item, id string, patch Patch) ([]Item, bool) {
	next := clone(items)
	for i := range next {
		if next[i].ID == id {
			next[i] = patch.apply(next[i])
			return next, true
		}
	}
	return next, false
}

// ToggleStatus flips the item between pending and completed.
func ToggleStatus(items []Item, id string) ([]Item, bool) {
	next := clone(items)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if next[i].Status == StatusCompleted {
			next[i].Status = StatusPending
		} else {
			next[i].Status = StatusCompleted
		}
		return next, true
	}
	return next, false
}

// Remove deletes the item with the given id.
func Remove(items []Item, id string) ([]Item, bool) {
	found := false
	next := RemoveWhere(items, func(it Item) bool {
		if it.ID == id {
			found = true
			return true
		}
		return false
	})
	return next, found
}

// RemoveWhere deletes every item matching pred.
func RemoveWhere(items []Item, pred func(Item) bool) []Item {
	next := make([]Item, 0, len(items))
	for _, it := range items {
		if !pred(it) {
			next = append(next, it)
		}
	}
	return next
}

// ReplaceAll returns a fresh copy of replacement.
func ReplaceAll(replacement []Item) []Item {
	return clone(replacement)
}

// IsCompleted matches purchased items.
func IsCompleted(it Item) bool { return it.Completed() }

// All matches every item.
func All(Item) bool { return true }

// Find returns the item with the given id.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Summarize computes the derived counters of a list.
func Summarize(items []Item) Summary {
	var s Summary
	s.TotalCount = len(items)
	for _, it := range items {
		s.TotalPrice += it.Price
		if it.Completed() {
			s.CompletedCount++
			s.CompletedPrice += it.Price
		}
	}
	s.PendingCount = s.TotalCount - s.CompletedCount
	if s.TotalCount > 0 {
		s.ProgressPercent = float64(s.CompletedCount) / float64(s.TotalCount) * 100
	}
	return s
}

// Item holds no reference fields, so a slice copy is a deep copy.
func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
