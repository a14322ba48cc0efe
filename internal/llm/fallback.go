package llm

import (
	"context"
	"log/slog"
)

// FallbackGenerator asks Primary first and Fallback when Primary fails.
type FallbackGenerator struct {
	Primary  TextGenerator
	Fallback TextGenerator
}

// GenerateContent implements TextGenerator.
func (f FallbackGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := f.Primary.GenerateContent(ctx, prompt)
	if err == nil || f.Fallback == nil || ctx.Err() != nil {
		return resp, err
	}
	slog.Warn("Primary model failed, trying fallback", "error", err)
	return f.Fallback.GenerateContent(ctx, prompt)
}
