package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/archive"
	"smart-grocer/internal/profile"
	"smart-grocer/internal/shopping"
	"smart-grocer/internal/storage"
	"smart-grocer/internal/suggest"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *testClock {
	return &testClock{now: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)}
}

type stubGenerator struct {
	items  []shopping.Item
	err    error
	before func(ctx context.Context)
}

func (s *stubGenerator) result(ctx context.Context) (suggest.Result, error) {
	if s.before != nil {
		s.before(ctx)
	}
	return suggest.Result{Items: s.items}, s.err
}

func (s *stubGenerator) FromRecipe(ctx context.Context, _ string) (suggest.Result, error) {
	return s.result(ctx)
}

func (s *stubGenerator) FromFreeText(ctx context.Context, _ string) (suggest.Result, error) {
	return s.result(ctx)
}

type flakyBackend struct {
	*storage.MemoryBackend
	fail bool
}

func (f *flakyBackend) Put(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Put(ctx, key, value)
}

func newTestApp(t *testing.T, gw *storage.Gateway, clock *testClock, gen suggest.Generator) *App {
	t.Helper()
	a, err := New(context.Background(), Deps{Gateway: gw, Generator: gen, Clock: clock})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func addItems(t *testing.T, a *App, drafts ...shopping.Draft) []shopping.Item {
	t.Helper()
	var out []shopping.Item
	for _, d := range drafts {
		it, err := a.AddItem(context.Background(), d)
		if err != nil {
			t.Fatalf("AddItem(%+v) failed: %v", d, err)
		}
		out = append(out, it)
	}
	return out
}

func TestItemLifecycle_WriteThrough(t *testing.T) {
	ctx := context.Background()
	gw := storage.NewGateway(storage.NewMemoryBackend())
	clock := newClock()
	a := newTestApp(t, gw, clock, &stubGenerator{})

	items := addItems(t, a,
		shopping.Draft{Name: "Leite", Category: "Laticínios", Price: "4,50"},
		shopping.Draft{Name: "Pão", Price: "7"},
	)
	if items[1].Category != shopping.DefaultOtherCategory {
		t.Errorf("Expected default category, got %q", items[1].Category)
	}

	if _, err := a.ToggleItem(ctx, items[0].ID); err != nil {
		t.Fatalf("ToggleItem failed: %v", err)
	}
	qty := "2"
	if _, err := a.UpdateItem(ctx, items[1].ID, shopping.Patch{Quantity: &qty}); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	reloaded := newTestApp(t, gw, clock, &stubGenerator{})
	got := reloaded.Items()
	if len(got) != 2 || got[0].Status != shopping.StatusCompleted || got[1].Quantity != "2" {
		t.Errorf("Expected mutations to be persisted, got %+v", got)
	}

	if err := a.RemoveItem(ctx, items[1].ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if err := a.RemoveItem(ctx, "missing"); !errors.Is(err, shopping.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if s := a.Summary(); s.TotalCount != 1 || s.CompletedCount != 1 {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestAddItem_RejectsInvalidInput(t *testing.T) {
	a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), newClock(), &stubGenerator{})
	for _, d := range []shopping.Draft{{Name: " "}, {Name: "Arroz", Price: "-2"}} {
		if _, err := a.AddItem(context.Background(), d); !errors.Is(err, shopping.ErrInvalidItem) {
			t.Errorf("Expected ErrInvalidItem for %+v, got %v", d, err)
		}
	}
	if len(a.Items()) != 0 {
		t.Error("Invalid drafts must never reach the list")
	}
}

func TestPersistenceFailure_KeepsMemoryState(t *testing.T) {
	backend := &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
	a := newTestApp(t, storage.NewGateway(backend), newClock(), &stubGenerator{})

	backend.fail = true
	addItems(t, a, shopping.Draft{Name: "Café"})
	if len(a.Items()) != 1 {
		t.Error("In-memory state must move forward when the write fails")
	}
	if err := a.PersistenceIssue(); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected persistence issue, got %v", err)
	}

	backend.fail = false
	addItems(t, a, shopping.Draft{Name: "Açúcar"})
	if err := a.PersistenceIssue(); err != nil {
		t.Errorf("Expected healthy storage after a successful write, got %v", err)
	}
}

func TestArchiveAndRestore(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), clock, &stubGenerator{})

	if _, err := a.Archive(ctx, ""); !errors.Is(err, archive.ErrEmptyList) {
		t.Fatalf("Expected ErrEmptyList, got %v", err)
	}
	if len(a.History()) != 0 {
		t.Fatal("Archiving an empty list must not change history")
	}

	addItems(t, a, shopping.Draft{Name: "Leite", Price: "4.5"}, shopping.Draft{Name: "Pão", Price: "7"})
	before := a.Items()
	snap, err := a.Archive(ctx, "")
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if snap.Label != "Lista de 10/mar/25" || snap.TotalPlanned != 11.5 {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	addItems(t, a, shopping.Draft{Name: "Queijo"})

	conf, err := a.RequestConfirmation(ActionRestoreSnapshot, snap.ID)
	if err != nil {
		t.Fatalf("RequestConfirmation failed: %v", err)
	}
	if !strings.Contains(conf.Message, "2 itens") {
		t.Errorf("Confirmation must describe the action, got %q", conf.Message)
	}
	if len(a.Items()) != 3 {
		t.Fatal("Requesting a confirmation must not change anything")
	}

	if _, err := a.Confirm(ctx, conf.ID); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	after := a.Items()
	if len(after) != len(before) {
		t.Fatalf("Expected %d items after restore, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("Item %d differs after restore: %+v vs %+v", i, after[i], before[i])
		}
	}

	t.Run("RestoreDoesNotAliasSnapshot", func(t *testing.T) {
		if _, err := a.ToggleItem(ctx, after[0].ID); err != nil {
			t.Fatal(err)
		}
		s, _ := a.Snapshot(snap.ID)
		if s.Items[0].Status != shopping.StatusPending {
			t.Error("Mutating restored items must not affect the snapshot")
		}
	})

	t.Run("Rename", func(t *testing.T) {
		renamed, err := a.RenameSnapshot(ctx, snap.ID, "Semana 1")
		if err != nil || renamed.Label != "Semana 1" || renamed.TotalPlanned != snap.TotalPlanned {
			t.Errorf("Unexpected rename result %+v %v", renamed, err)
		}
	})
}

func TestConfirmations(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), clock, &stubGenerator{})

	if _, err := a.RequestConfirmation(ActionClearAll, ""); !errors.Is(err, ErrNothingToConfirm) {
		t.Errorf("Expected ErrNothingToConfirm on empty list, got %v", err)
	}

	items := addItems(t, a, shopping.Draft{Name: "A"}, shopping.Draft{Name: "B"}, shopping.Draft{Name: "C"})
	a.ToggleItem(ctx, items[0].ID)

	t.Run("ClearCompleted", func(t *testing.T) {
		conf, err := a.RequestConfirmation(ActionClearCompleted, "")
		if err != nil {
			t.Fatalf("RequestConfirmation failed: %v", err)
		}
		out, err := a.Confirm(ctx, conf.ID)
		if err != nil || out.Removed != 1 {
			t.Fatalf("Expected 1 removed, got %+v %v", out, err)
		}
		if _, err := a.Confirm(ctx, conf.ID); !errors.Is(err, ErrUnknownConfirmation) {
			t.Errorf("Confirmations must be single-use, got %v", err)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		conf, _ := a.RequestConfirmation(ActionClearAll, "")
		clock.advance(ConfirmationTTL)
		if _, err := a.Confirm(ctx, conf.ID); !errors.Is(err, ErrUnknownConfirmation) {
			t.Errorf("Expected expired confirmation, got %v", err)
		}
		if len(a.Items()) != 2 {
			t.Error("An expired confirmation must not apply")
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		conf, _ := a.RequestConfirmation(ActionClearAll, "")
		if err := a.CancelConfirmation(conf.ID); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}
		if _, err := a.Confirm(ctx, conf.ID); !errors.Is(err, ErrUnknownConfirmation) {
			t.Errorf("Expected cancelled confirmation to be unknown, got %v", err)
		}
	})

	t.Run("DeleteSnapshot", func(t *testing.T) {
		s1, _ := a.Archive(ctx, "one")
		s2, _ := a.Archive(ctx, "two")
		live := a.Items()

		conf, err := a.RequestConfirmation(ActionDeleteSnapshot, s1.ID)
		if err != nil {
			t.Fatalf("RequestConfirmation failed: %v", err)
		}
		if _, err := a.Confirm(ctx, conf.ID); err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
		h := a.History()
		if len(h) != 1 || h[0].ID != s2.ID {
			t.Errorf("Expected only snapshot two left, got %+v", h)
		}
		if len(a.Items()) != len(live) {
			t.Error("Deleting a snapshot must not touch the live list")
		}
		if _, err := a.RequestConfirmation(ActionDeleteSnapshot, s1.ID); !errors.Is(err, archive.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UnknownAction", func(t *testing.T) {
		if _, err := ParseAction("drop_tables"); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("Expected ErrUnknownAction, got %v", err)
		}
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("MergesWithoutDuplicates", func(t *testing.T) {
		gen := &stubGenerator{items: []shopping.Item{
			{ID: "x1", Name: "LEITE", Status: shopping.StatusPending},
			{ID: "x2", Name: "Ovos", Quantity: "12", Status: shopping.StatusPending},
		}}
		a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), newClock(), gen)
		addItems(t, a, shopping.Draft{Name: "leite"})

		res, err := a.GenerateFromRecipe(ctx, "Omelete")
		if err != nil {
			t.Fatalf("GenerateFromRecipe failed: %v", err)
		}
		if len(res.Accepted) != 1 || res.Accepted[0].Name != "Ovos" || res.Suggested != 2 {
			t.Errorf("Unexpected merge result %+v", res)
		}

		res, _ = a.GenerateFromText(ctx, "ovos e leite")
		if len(res.Accepted) != 0 || len(a.Items()) != 2 {
			t.Errorf("Second merge must add nothing, got %+v", res)
		}
	})

	t.Run("UnavailableNoticeOnce", func(t *testing.T) {
		a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), newClock(), nil)
		for i := 0; i < 3; i++ {
			if _, err := a.GenerateFromRecipe(ctx, "Bolo"); !errors.Is(err, suggest.ErrUnavailable) {
				t.Fatalf("Expected ErrUnavailable, got %v", err)
			}
		}
		if n := a.Notices(); len(n) != 1 || n[0].Level != LevelInfo {
			t.Errorf("Expected exactly one informational notice, got %+v", n)
		}
		if _, err := a.GenerateFromURL(ctx, "https://example.test"); !errors.Is(err, suggest.ErrUnavailable) {
			t.Errorf("Expected ErrUnavailable without a clipper, got %v", err)
		}
		if !a.DismissNotice(noticeSuggestionsID) || len(a.Notices()) != 0 {
			t.Error("Expected notice to be dismissed")
		}
		a.GenerateFromRecipe(ctx, "Bolo")
		if len(a.Notices()) != 0 {
			t.Error("A dismissed notice must not come back")
		}
	})

	t.Run("RemoteFailureKeepsState", func(t *testing.T) {
		gen := &stubGenerator{err: &suggest.Error{Op: suggest.OpRecipe, Err: errors.New("timeout")}}
		a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), newClock(), gen)
		addItems(t, a, shopping.Draft{Name: "Arroz"})
		if _, err := a.GenerateFromRecipe(ctx, "Feijoada"); err == nil {
			t.Fatal("Expected an error")
		}
		if len(a.Items()) != 1 {
			t.Error("A failed suggestion must leave the list unchanged")
		}
	})

	t.Run("LateResultDiscarded", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		gen := &stubGenerator{
			items:  []shopping.Item{{Name: "Farinha"}},
			before: func(context.Context) { cancel() },
		}
		a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), newClock(), gen)
		if _, err := a.GenerateFromRecipe(ctx, "Pão"); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if len(a.Items()) != 0 {
			t.Error("Results for a finished request must be discarded")
		}
	})
}

func TestProfileAndBudget(t *testing.T) {
	ctx := context.Background()
	gw := storage.NewGateway(storage.NewMemoryBackend())
	a := newTestApp(t, gw, newClock(), &stubGenerator{})

	p, err := a.CompleteSetup(ctx, profile.Profile{Name: " Ana ", BudgetGoal: 300})
	if err != nil {
		t.Fatalf("CompleteSetup failed: %v", err)
	}
	if !p.SetupCompleted || p.Name != "Ana" || p.Currency != profile.BRL || len(p.DefaultCategories) == 0 {
		t.Errorf("Unexpected profile %+v", p)
	}
	if _, err := a.UpdateProfile(ctx, profile.Profile{Currency: "JPY"}); !errors.Is(err, profile.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}

	if got := a.Budget(); got != 300 {
		t.Errorf("Expected profile goal while the budget key is unset, got %v", got)
	}
	if _, err := a.SetBudget(ctx, 500); err != nil {
		t.Fatalf("SetBudget failed: %v", err)
	}
	reloaded := newTestApp(t, gw, newClock(), &stubGenerator{})
	if reloaded.Budget() != 500 || !reloaded.Profile().SetupCompleted {
		t.Errorf("Expected persisted budget and profile, got %v %+v", reloaded.Budget(), reloaded.Profile())
	}
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, storage.NewGateway(storage.NewMemoryBackend()), newClock(), &stubGenerator{})
	items := addItems(t, a,
		shopping.Draft{Name: "Leite", Category: "Laticínios", Quantity: "2", Price: "4.50"},
		shopping.Draft{Name: "Carne", Category: "Carnes", Price: "40"},
	)
	a.ToggleItem(ctx, items[0].ID)
	a.SetBudget(ctx, 5)

	d := a.Dashboard(DashboardQuery{})
	if d.Metrics.TotalItems != 2 || d.Categories[0].Category != "Carnes" {
		t.Errorf("Unexpected dashboard metrics %+v", d.Metrics)
	}
	if !d.Budget.Warning || d.Budget.Exceeded {
		t.Errorf("Expected budget warning at 90%%, got %+v", d.Budget)
	}
	if d.CategorySeries.Category != "Carnes" || len(d.Monthly) != 1 || len(d.Top) != 2 {
		t.Errorf("Unexpected dashboard %+v", d)
	}

	var buf bytes.Buffer
	if err := a.ExportCSV(&buf, analytics.DateRange{}); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"Leite","Laticínios","2","4.50","Comprado"`) {
		t.Errorf("Unexpected CSV:\n%s", buf.String())
	}

	if !strings.Contains(a.ShareText(), "💰 *Total: R$44,50*") {
		t.Errorf("Unexpected share text:\n%s", a.ShareText())
	}
}
