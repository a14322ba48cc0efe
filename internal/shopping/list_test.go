package shopping

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"smart-grocer/internal/storage"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func sample() []Item {
	return []Item{
		{ID: "1", Name: "Leite", Category: "Laticínios", Price: 4.5, Status: StatusCompleted, CreatedAt: testNow},
		{ID: "2", Name: "Pão", Category: "Padaria", Price: 7, Status: StatusPending, CreatedAt: testNow},
		{ID: "3", Name: "Maçã", Category: "", Price: 0, Status: StatusPending},
	}
}

func TestAdd(t *testing.T) {
	items := sample()

	t.Run("Appends", func(t *testing.T) {
		next := Add(items, Item{ID: "4", Name: "Café"})
		if len(next) != 4 || next[3].Name != "Café" {
			t.Errorf("Expected Café appended, got %+v", next)
		}
		if len(items) != 3 {
			t.Error("Add must not modify its input")
		}
	})

	t.Run("EmptyNameIgnored", func(t *testing.T) {
		next := Add(items, Item{ID: "4", Name: "   "})
		if len(next) != 3 {
			t.Errorf("Expected empty-name item to be ignored, got %d items", len(next))
		}
	})
}

func TestAddMany(t *testing.T) {
	candidates := []Item{
		{Name: "LEITE"},
		{Name: "Ovos", Quantity: "12"},
		{Name: "Farinha", CreatedAt: testNow.Add(-time.Hour)},
		{Name: ""},
	}

	next, accepted := AddMany(sample(), candidates, testNow)

	if len(accepted) != 2 {
		t.Fatalf("Expected 2 accepted candidates, got %d", len(accepted))
	}
	if accepted[0].Name != "Ovos" || accepted[1].Name != "Farinha" {
		t.Errorf("Unexpected accepted order: %+v", accepted)
	}
	if !accepted[0].CreatedAt.Equal(testNow) {
		t.Errorf("Expected missing createdAt stamped with now, got %v", accepted[0].CreatedAt)
	}
	if !accepted[1].CreatedAt.Equal(testNow.Add(-time.Hour)) {
		t.Error("Existing createdAt must be preserved")
	}
	if accepted[0].ID == "" || accepted[0].Status != StatusPending {
		t.Errorf("Expected id and pending status assigned, got %+v", accepted[0])
	}
	if len(next) != 5 {
		t.Errorf("Expected 5 items after merge, got %d", len(next))
	}

	t.Run("Idempotent", func(t *testing.T) {
		again, acceptedAgain := AddMany(next, candidates, testNow)
		if len(acceptedAgain) != 0 || len(again) != len(next) {
			t.Errorf("Second merge should add nothing, added %d", len(acceptedAgain))
		}
	})

	t.Run("ClashingIDReplaced", func(t *testing.T) {
		merged, acc := AddMany(sample(), []Item{{ID: "1", Name: "Queijo"}}, testNow)
		if acc[0].ID == "1" {
			t.Error("Expected clashing id to be replaced")
		}
		seen := map[string]bool{}
		for _, it := range merged {
			if seen[it.ID] {
				t.Errorf("Duplicate id %s", it.ID)
			}
			seen[it.ID] = true
		}
	})
}

func TestUpdate(t *testing.T) {
	price := 9.9
	qty := "2"
	next, ok := Update(sample(), "2", Patch{Price: &price, Quantity: &qty})
	if !ok {
		t.Fatal("Expected item 2 to be found")
	}
	if next[1].Price != 9.9 || next[1].Quantity != "2" || next[1].Name != "Pão" {
		t.Errorf("Unexpected merge result: %+v", next[1])
	}

	t.Run("NotFound", func(t *testing.T) {
		items := sample()
		next, ok := Update(items, "missing", Patch{Price: &price})
		if ok {
			t.Error("Expected not found")
		}
		for i := range items {
			if next[i] != items[i] {
				t.Errorf("List must be unchanged, item %d differs", i)
			}
		}
	})
}

func TestPatchValidate(t *testing.T) {
	empty := "  "
	negative := -1.0
	bogus := Status("LOST")
	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{"empty name", Patch{Name: &empty}, true},
		{"negative price", Patch{Price: &negative}, true},
		{"unknown status", Patch{Status: &bogus}, true},
		{"no fields", Patch{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.patch.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToggleStatus(t *testing.T) {
	next, ok := ToggleStatus(sample(), "1")
	if !ok || next[0].Status != StatusPending {
		t.Errorf("Expected item 1 pending, got %s", next[0].Status)
	}
	next, _ = ToggleStatus(next, "1")
	if next[0].Status != StatusCompleted {
		t.Errorf("Expected item 1 completed again, got %s", next[0].Status)
	}
	if _, ok := ToggleStatus(sample(), "missing"); ok {
		t.Error("Expected not found")
	}
}

func TestRemove(t *testing.T) {
	next, ok := Remove(sample(), "2")
	if !ok || len(next) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(next))
	}
	if _, found := Find(next, "2"); found {
		t.Error("Item 2 should be gone")
	}

	t.Run("RemoveWhere completed", func(t *testing.T) {
		next := RemoveWhere(sample(), IsCompleted)
		if len(next) != 2 {
			t.Errorf("Expected 2 pending items, got %d", len(next))
		}
	})

	t.Run("RemoveWhere all", func(t *testing.T) {
		if next := RemoveWhere(sample(), All); len(next) != 0 {
			t.Errorf("Expected empty list, got %d", len(next))
		}
	})
}

func TestReplaceAll_BreaksAliasing(t *testing.T) {
	source := sample()
	next := ReplaceAll(source)
	next[0].Name = "changed"
	if source[0].Name != "Leite" {
		t.Error("Mutating the replacement must not affect the source")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	if s.TotalCount != 3 || s.CompletedCount != 1 || s.PendingCount != 2 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.CompletedCount+s.PendingCount != s.TotalCount {
		t.Error("completed + pending must equal total")
	}
	if math.Abs(s.TotalPrice-11.5) > 0.001 || math.Abs(s.CompletedPrice-4.5) > 0.001 {
		t.Errorf("Unexpected prices: %+v", s)
	}
	if math.Abs(s.ProgressPercent-100.0/3) > 0.001 {
		t.Errorf("Unexpected progress: %v", s.ProgressPercent)
	}

	if empty := Summarize(nil); empty.ProgressPercent != 0 || empty.TotalCount != 0 {
		t.Errorf("Expected zero summary, got %+v", empty)
	}
}

func TestDraftBuild(t *testing.T) {
	clock := ClockFunc(func() time.Time { return testNow })

	t.Run("Valid", func(t *testing.T) {
		item, err := Draft{Name: "  Arroz ", Price: "12,90", Quantity: "5kg"}.Build(clock, DefaultOtherCategory)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if item.Name != "Arroz" || item.Category != DefaultOtherCategory {
			t.Errorf("Unexpected item: %+v", item)
		}
		if math.Abs(item.Price-12.9) > 0.0001 {
			t.Errorf("Expected price 12.9, got %v", item.Price)
		}
		if item.Status != StatusPending || !item.CreatedAt.Equal(testNow) || item.ID == "" {
			t.Errorf("Unexpected defaults: %+v", item)
		}
	})

	invalid := []Draft{
		{Name: ""},
		{Name: "Arroz", Price: "-1"},
		{Name: "Arroz", Price: "abc"},
		{Name: "Arroz", Price: "NaN"},
	}
	for _, d := range invalid {
		t.Run("Invalid "+d.Name+d.Price, func(t *testing.T) {
			_, err := d.Build(clock, DefaultOtherCategory)
			if err == nil || !strings.Contains(err.Error(), ErrInvalidItem.Error()) {
				t.Errorf("Expected invalid item error, got %v", err)
			}
		})
	}
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewGateway(storage.NewMemoryBackend()))

	if got := repo.Load(ctx); got == nil || len(got) != 0 {
		t.Errorf("Expected empty list, got %+v", got)
	}
	if err := repo.Save(ctx, sample()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got := repo.Load(ctx)
	if len(got) != 3 || got[0] != sample()[0] {
		t.Errorf("Round trip mismatch: %+v", got)
	}
	if !got[2].CreatedAt.IsZero() {
		t.Error("Absent createdAt must stay absent")
	}
}
