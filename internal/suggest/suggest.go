// Package suggest turns a recipe name or a free-form note into candidate
// shopping items using a text-generation model.
package suggest

import (
	"context"
	"errors"

	"smart-grocer/internal/shared"
	"smart-grocer/internal/shopping"
)

var (
	// ErrUnavailable means no model credential is configured. It is
	// permanent for the lifetime of the process.
	ErrUnavailable = errors.New("suggestions are unavailable: no model API key configured")
	// ErrMalformedResponse means the model answered with something that is
	// not the expected JSON document.
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrEmptyInput is returned for blank requests.
	ErrEmptyInput = errors.New("input must not be empty")
)

// Error reports a failed suggestion request.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "suggest " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Result holds the candidate items of one request.
type Result struct {
	Items []shopping.Item
	Meta  shared.AgentMeta
}

// Generator produces candidate items.
type Generator interface {
	FromRecipe(ctx context.Context, name string) (Result, error)
	FromFreeText(ctx context.Context, text string) (Result, error)
}

// Recorder receives the execution metadata of every model call.
type Recorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Unavailable is the Generator used when no model is configured.
type Unavailable struct{}

// FromRecipe implements Generator.
func (Unavailable) FromRecipe(context.Context, string) (Result, error) {
	return Result{}, &Error{Op: OpRecipe, Err: ErrUnavailable}
}

// FromFreeText implements Generator.
func (Unavailable) FromFreeText(context.Context, string) (Result, error) {
	return Result{}, &Error{Op: OpFreeText, Err: ErrUnavailable}
}

// Operation names, also used as agent names in execution metrics.
const (
	OpRecipe   = "recipe"
	OpFreeText = "freetext"
	OpURL      = "url"
)

// IsValidation reports whether err was caused by the request rather than
// by the model.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}
