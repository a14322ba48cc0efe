package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"smart-grocer/internal/archive"
	"smart-grocer/internal/shopping"
)

// ConfirmationTTL is how long a pending confirmation stays valid.
const ConfirmationTTL = 5 * time.Minute

// Action names a destructive operation.
type Action string

const (
	ActionClearCompleted  Action = "clear_completed"
	ActionClearAll        Action = "clear_all"
	ActionDeleteSnapshot  Action = "delete_snapshot"
	ActionRestoreSnapshot Action = "restore_snapshot"
)

var (
	// ErrUnknownConfirmation is returned for ids that never existed, were
	// already used, cancelled or expired.
	ErrUnknownConfirmation = errors.New("unknown or expired confirmation")
	// ErrNothingToConfirm is returned when the action would not change
	// anything.
	ErrNothingToConfirm = errors.New("nothing to confirm")
	// ErrUnknownAction is returned for unsupported action names.
	ErrUnknownAction = errors.New("unknown action")
)

// Confirmation is a pending destructive action. It names the action and
// its consequence so the user can accept or decline it.
type Confirmation struct {
	ID           string    `json:"id"`
	Action       Action    `json:"action"`
	Target       string    `json:"target,omitempty"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ConfirmLabel string    `json:"confirmLabel"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Outcome describes an applied confirmation.
type Outcome struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
	Removed int    `json:"removed"`
}

type confirmations struct {
	mu      sync.Mutex
	clock   shopping.Clock
	pending map[string]Confirmation
}

func newConfirmations(clock shopping.Clock) *confirmations {
	return &confirmations{clock: clock, pending: make(map[string]Confirmation)}
}

func (c *confirmations) put(conf Confirmation) Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	for id, p := range c.pending {
		if !now.Before(p.ExpiresAt) {
			delete(c.pending, id)
		}
	}
	conf.ID = uuid.NewString()
	conf.ExpiresAt = now.Add(ConfirmationTTL)
	c.pending[conf.ID] = conf
	return conf
}

// take removes and returns the confirmation, so each id is usable once.
func (c *confirmations) take(id string) (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conf, ok := c.pending[id]
	if !ok {
		return Confirmation{}, ErrUnknownConfirmation
	}
	delete(c.pending, id)
	if !c.clock.Now().Before(conf.ExpiresAt) {
		return Confirmation{}, ErrUnknownConfirmation
	}
	return conf, nil
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionClearCompleted, ActionClearAll, ActionDeleteSnapshot, ActionRestoreSnapshot:
		return a, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAction, s)
}

// RequestConfirmation registers a pending destructive action. Nothing is
// changed until Confirm is called with the returned id.
func (a *App) RequestConfirmation(action Action, target string) (Confirmation, error) {
	a.mu.Lock()
	conf, err := a.describe(action, target)
	a.mu.Unlock()
	if err != nil {
		return Confirmation{}, err
	}
	conf = a.confirmations.put(conf)
	slog.Debug("Confirmation requested", "action", action, "target", target)
	return conf, nil
}

// CancelConfirmation drops a pending confirmation.
func (a *App) CancelConfirmation(id string) error {
	_, err := a.confirmations.take(id)
	return err
}

// Confirm applies a pending destructive action.
func (a *App) Confirm(ctx context.Context, id string) (Outcome, error) {
	conf, err := a.confirmations.take(id)
	if err != nil {
		return Outcome{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	out := Outcome{Action: conf.Action}
	switch conf.Action {
	case ActionClearCompleted:
		next := shopping.RemoveWhere(a.items, shopping.IsCompleted)
		out.Removed = len(a.items) - len(next)
		out.Message = fmt.Sprintf("%d itens comprados removidos.", out.Removed)
		a.commitItems(ctx, next)

	case ActionClearAll:
		out.Removed = len(a.items)
		out.Message = "Lista limpa."
		a.commitItems(ctx, shopping.RemoveWhere(a.items, shopping.All))

	case ActionDeleteSnapshot:
		next, ok := archive.Delete(a.history, conf.Target)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: %s", archive.ErrNotFound, conf.Target)
		}
		out.Removed = 1
		out.Message = "Lista arquivada excluída."
		a.commitHistory(ctx, next)

	case ActionRestoreSnapshot:
		s, ok := archive.Find(a.history, conf.Target)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: %s", archive.ErrNotFound, conf.Target)
		}
		out.Removed = len(a.items)
		out.Message = fmt.Sprintf("Lista %q restaurada!", s.Label)
		a.commitItems(ctx, s.RestoreItems())
	}

	slog.Info("Confirmed action applied", "action", conf.Action, "target", conf.Target, "removed", out.Removed)
	return out, nil
}

// describe must be called with a.mu held.
func (a *App) describe(action Action, target string) (Confirmation, error) {
	conf := Confirmation{Action: action, Target: target}
	switch action {
	case ActionClearCompleted:
		if shopping.Summarize(a.items).CompletedCount == 0 {
			return Confirmation{}, fmt.Errorf("%w: no completed items", ErrNothingToConfirm)
		}
		conf.Target = ""
		conf.Title = "Limpar comprados"
		conf.Message = "Remover todos os itens já marcados como comprados? Essa ação não pode ser desfeita."
		conf.ConfirmLabel = "Limpar comprados"

	case ActionClearAll:
		if len(a.items) == 0 {
			return Confirmation{}, fmt.Errorf("%w: the list is empty", ErrNothingToConfirm)
		}
		conf.Target = ""
		conf.Title = "Limpar toda a lista"
		conf.Message = "Todos os itens da lista serão removidos permanentemente. Tem certeza?"
		conf.ConfirmLabel = "Limpar tudo"

	case ActionDeleteSnapshot:
		if _, ok := archive.Find(a.history, target); !ok {
			return Confirmation{}, fmt.Errorf("%w: %s", archive.ErrNotFound, target)
		}
		conf.Title = "Excluir snapshot"
		conf.Message = "Tem certeza? Esta lista arquivada será excluída permanentemente."
		conf.ConfirmLabel = "Excluir"

	case ActionRestoreSnapshot:
		s, ok := archive.Find(a.history, target)
		if !ok {
			return Confirmation{}, fmt.Errorf("%w: %s", archive.ErrNotFound, target)
		}
		conf.Title = "Restaurar lista"
		conf.Message = fmt.Sprintf("Deseja substituir a lista atual pelos %d itens de %q?", len(s.Items), s.Label)
		conf.ConfirmLabel = "Restaurar"

	default:
		return Confirmation{}, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
	return conf, nil
}
