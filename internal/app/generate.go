package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smart-grocer/internal/metrics"
	"smart-grocer/internal/shopping"
	"smart-grocer/internal/suggest"
)

// Suggestion kinds, as reported in metrics.
const (
	KindRecipe   = "recipe"
	KindFreeText = "freetext"
	KindURL      = "url"
)

// MergeResult reports a suggestion merged into the live list.
type MergeResult struct {
	Accepted  []shopping.Item `json:"accepted"`
	Suggested int             `json:"suggested"`
	Message   string          `json:"message"`
}

// GenerateFromRecipe asks for the ingredients of a recipe and merges them.
func (a *App) GenerateFromRecipe(ctx context.Context, name string) (MergeResult, error) {
	return a.generate(ctx, KindRecipe, func(ctx context.Context) (suggest.Result, error) {
		return a.generator.FromRecipe(ctx, name)
	})
}

// GenerateFromText structures a free-form note and merges the items.
func (a *App) GenerateFromText(ctx context.Context, text string) (MergeResult, error) {
	return a.generate(ctx, KindFreeText, func(ctx context.Context) (suggest.Result, error) {
		return a.generator.FromFreeText(ctx, text)
	})
}

// GenerateFromURL clips a recipe page and merges its ingredients.
func (a *App) GenerateFromURL(ctx context.Context, url string) (MergeResult, error) {
	return a.generate(ctx, KindURL, func(ctx context.Context) (suggest.Result, error) {
		if a.clipper == nil {
			return suggest.Result{}, &suggest.Error{Op: KindURL, Err: suggest.ErrUnavailable}
		}
		return a.clipper.FromURL(ctx, url)
	})
}

// generate runs the remote call without holding the lock. Results that
// arrive after ctx is done are discarded.
func (a *App) generate(ctx context.Context, kind string, call func(context.Context) (suggest.Result, error)) (MergeResult, error) {
	res, err := call(ctx)
	if err != nil {
		if errors.Is(err, suggest.ErrUnavailable) {
			a.notices.add(noticeSuggestionsUnavailable())
			a.collectors.ObserveSuggestion(kind, metrics.OutcomeUnavailable)
		} else {
			a.collectors.ObserveSuggestion(kind, metrics.OutcomeFailed)
		}
		return MergeResult{}, err
	}
	if ctx.Err() != nil {
		slog.Info("Discarding suggestion result for a finished request", "action", kind)
		a.collectors.ObserveSuggestion(kind, metrics.OutcomeDiscarded)
		return MergeResult{}, ctx.Err()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	next, accepted := shopping.AddMany(a.items, res.Items, a.clock.Now())
	if len(accepted) > 0 {
		a.commitItems(ctx, next)
	}
	a.collectors.ObserveSuggestion(kind, metrics.OutcomeOK)

	out := MergeResult{Accepted: accepted, Suggested: len(res.Items)}
	switch {
	case len(accepted) == 0 && len(res.Items) == 0:
		out.Message = "Nenhum item sugerido."
	case len(accepted) == 0:
		out.Message = "Todos os itens sugeridos já estão na lista."
	default:
		out.Message = fmt.Sprintf("%d item adicionado com sucesso!", len(accepted))
	}
	return out, nil
}
