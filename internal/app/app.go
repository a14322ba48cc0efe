package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/archive"
	"smart-grocer/internal/metrics"
	"smart-grocer/internal/profile"
	"smart-grocer/internal/shopping"
	"smart-grocer/internal/storage"
	"smart-grocer/internal/suggest"
)

// URLClipper turns a recipe page into candidate items.
type URLClipper interface {
	FromURL(ctx context.Context, url string) (suggest.Result, error)
}

// Deps are the collaborators of an App. Only Gateway is required.
type Deps struct {
	Gateway    *storage.Gateway
	Generator  suggest.Generator
	Clipper    URLClipper
	Clock      shopping.Clock
	Collectors *metrics.Collectors
	// OtherCategory labels items without a category.
	OtherCategory string
}

// App owns the live list, the profile, the archive history and the legacy
// budget. Every mutation runs under one lock: the next state is computed,
// written through to storage, then published.
type App struct {
	mu      sync.Mutex
	items   []shopping.Item
	prof    profile.Profile
	history []archive.Snapshot
	budget  float64

	itemsRepo   *shopping.Repository
	profileRepo *profile.Repository
	historyRepo *archive.Repository

	generator  suggest.Generator
	clipper    URLClipper
	clock      shopping.Clock
	collectors *metrics.Collectors
	other      string

	confirmations *confirmations
	notices       *noticeBoard
	persistErrs   map[string]error
}

// New loads the persisted state and returns a ready App.
func New(ctx context.Context, deps Deps) (*App, error) {
	if deps.Gateway == nil {
		return nil, errors.New("app: a storage gateway is required")
	}
	if deps.Clock == nil {
		deps.Clock = shopping.SystemClock
	}
	if deps.OtherCategory == "" {
		deps.OtherCategory = shopping.DefaultOtherCategory
	}

	a := &App{
		itemsRepo:     shopping.NewRepository(deps.Gateway),
		profileRepo:   profile.NewRepository(deps.Gateway),
		historyRepo:   archive.NewRepository(deps.Gateway),
		generator:     deps.Generator,
		clipper:       deps.Clipper,
		clock:         deps.Clock,
		collectors:    deps.Collectors,
		other:         deps.OtherCategory,
		confirmations: newConfirmations(deps.Clock),
		notices:       &noticeBoard{},
		persistErrs:   make(map[string]error),
	}
	if a.generator == nil {
		a.generator = suggest.Unavailable{}
	}
	if _, ok := a.generator.(suggest.Unavailable); ok {
		a.notices.add(noticeSuggestionsUnavailable())
	}

	a.items = a.itemsRepo.Load(ctx)
	a.prof = a.profileRepo.Load(ctx)
	a.history = a.historyRepo.Load(ctx)
	a.budget = a.profileRepo.LoadBudget(ctx)
	a.publishItemGauges()

	slog.Info("State loaded",
		"items", len(a.items),
		"snapshots", len(a.history),
		"setup_completed", a.prof.SetupCompleted,
	)
	return a, nil
}

// OtherCategory returns the label used for items without a category.
func (a *App) OtherCategory() string { return a.other }

// Items returns a copy of the live list.
func (a *App) Items() []shopping.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return shopping.ReplaceAll(a.items)
}

// Summary returns the derived counters of the live list.
func (a *App) Summary() shopping.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return shopping.Summarize(a.items)
}

// Grouped returns the live list grouped by category.
func (a *App) Grouped() []analytics.CategoryGroup {
	a.mu.Lock()
	defer a.mu.Unlock()
	return analytics.GroupByCategory(a.items, a.other)
}

// AddItem validates a draft and appends it.
func (a *App) AddItem(ctx context.Context, d shopping.Draft) (shopping.Item, error) {
	item, err := d.Build(a.clock, a.other)
	if err != nil {
		return shopping.Item{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.commitItems(ctx, shopping.Add(a.items, item))
	slog.Debug("Item added", "item_id", item.ID)
	return item, nil
}

// UpdateItem merges patch into the item with the given id.
func (a *App) UpdateItem(ctx context.Context, id string, patch shopping.Patch) (shopping.Item, error) {
	if err := patch.Validate(); err != nil {
		return shopping.Item{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	next, ok := shopping.Update(a.items, id, patch)
	if !ok {
		return shopping.Item{}, fmt.Errorf("%w: %s", shopping.ErrNotFound, id)
	}
	a.commitItems(ctx, next)
	item, _ := shopping.Find(next, id)
	return item, nil
}

// ToggleItem flips the purchase status of an item.
func (a *App) ToggleItem(ctx context.Context, id string) (shopping.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next, ok := shopping.ToggleStatus(a.items, id)
	if !ok {
		return shopping.Item{}, fmt.Errorf("%w: %s", shopping.ErrNotFound, id)
	}
	a.commitItems(ctx, next)
	item, _ := shopping.Find(next, id)
	return item, nil
}

// RemoveItem deletes one item.
func (a *App) RemoveItem(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	next, ok := shopping.Remove(a.items, id)
	if !ok {
		return fmt.Errorf("%w: %s", shopping.ErrNotFound, id)
	}
	a.commitItems(ctx, next)
	return nil
}

// Archive stores a snapshot of the live list. The live list is kept.
func (a *App) Archive(ctx context.Context, label string) (archive.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := archive.NewSnapshot(a.items, label, a.clock.Now())
	if err != nil {
		return archive.Snapshot{}, err
	}
	a.commitHistory(ctx, archive.Append(a.history, s))
	slog.Info("List archived", "snapshot_id", s.ID, "items", len(s.Items))
	return s, nil
}

// History returns the snapshots, most recent first.
func (a *App) History() []archive.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return archive.Newest(a.history)
}

// Snapshot returns one snapshot by id.
func (a *App) Snapshot(id string) (archive.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := archive.Find(a.history, id)
	if !ok {
		return archive.Snapshot{}, fmt.Errorf("%w: %s", archive.ErrNotFound, id)
	}
	return s, nil
}

// RenameSnapshot changes a snapshot label.
func (a *App) RenameSnapshot(ctx context.Context, id, label string) (archive.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next, err := archive.Rename(a.history, id, label)
	if err != nil {
		return archive.Snapshot{}, err
	}
	a.commitHistory(ctx, next)
	s, _ := archive.Find(next, id)
	return s, nil
}

// Profile returns the user profile.
func (a *App) Profile() profile.Profile {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prof
}

// UpdateProfile replaces the profile after normalizing and validating it.
func (a *App) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.commitProfile(ctx, p)
	return p, nil
}

// CompleteSetup stores the onboarding answers over the defaults and marks
// setup as done.
func (a *App) CompleteSetup(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	p = p.Normalize()
	if p.Currency == "" {
		p.Currency = profile.BRL
	}
	if len(p.DefaultCategories) == 0 {
		p.DefaultCategories = profile.Default().DefaultCategories
	}
	p.SetupCompleted = true
	return a.UpdateProfile(ctx, p)
}

// Budget returns the spending goal of the dashboard. The legacy budget key
// wins; the profile goal is used while it is unset.
func (a *App) Budget() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.budgetGoal()
}

// SetBudget writes the legacy budget key. Negative values are rejected.
func (a *App) SetBudget(ctx context.Context, v float64) (float64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: budget goal must be a non-negative number", profile.ErrInvalid)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.budget = v
	a.persisted(storage.KeyBudget, a.profileRepo.SaveBudget(ctx, v))
	return v, nil
}

// PersistenceIssue reports the last failed write per key, or nil when
// storage is healthy.
func (a *App) PersistenceIssue() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var errs []error
	for _, key := range []string{storage.KeyItems, storage.KeyProfile, storage.KeyHistory, storage.KeyBudget} {
		if err := a.persistErrs[key]; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) budgetGoal() float64 {
	if a.budget > 0 {
		return a.budget
	}
	return a.prof.BudgetGoal
}

// The commit helpers must be called with a.mu held. In-memory state moves
// forward even when the write fails.
func (a *App) commitItems(ctx context.Context, next []shopping.Item) {
	a.persisted(storage.KeyItems, a.itemsRepo.Save(ctx, next))
	a.items = next
	a.publishItemGauges()
}

func (a *App) commitHistory(ctx context.Context, next []archive.Snapshot) {
	a.persisted(storage.KeyHistory, a.historyRepo.Save(ctx, next))
	a.history = next
}

func (a *App) commitProfile(ctx context.Context, p profile.Profile) {
	a.persisted(storage.KeyProfile, a.profileRepo.Save(ctx, p))
	a.prof = p
}

func (a *App) persisted(key string, err error) {
	if err == nil {
		delete(a.persistErrs, key)
		return
	}
	a.persistErrs[key] = err
	a.collectors.PersistenceFailed()
}

func (a *App) publishItemGauges() {
	s := shopping.Summarize(a.items)
	a.collectors.SetItems(s.PendingCount, s.CompletedCount)
}
