package suggest

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"

	"smart-grocer/internal/llm"
	"smart-grocer/internal/shared"
	"smart-grocer/internal/shopping"
)

//go:embed recipe_prompt.md
var recipePrompt string

//go:embed freetext_prompt.md
var freeTextPrompt string

var (
	recipeTmpl   = template.Must(template.New("recipe").Parse(recipePrompt))
	freeTextTmpl = template.Must(template.New("freetext").Parse(freeTextPrompt))
)

// DefaultQuantity is used when the model leaves the quantity out.
const DefaultQuantity = "1"

type promptData struct {
	Input      string
	Categories []string
}

// response is the JSON document the model must answer with.
type response struct {
	Items []struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
		Category string `json:"category"`
	} `json:"items"`
}

// ResponseSchema describes response for models that accept a JSON schema.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"items": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     {Type: genai.TypeString, Description: "Nome do produto de mercearia"},
						"quantity": {Type: genai.TypeString, Description: "Quantidade do item (e.g., '2', '1 maço', '500g')"},
						"category": {Type: genai.TypeString, Enum: shopping.SuggestionCategories},
					},
					Required: []string{"name", "category"},
				},
			},
		},
		Required: []string{"items"},
	}
}

// LLMGenerator implements Generator over a TextGenerator.
type LLMGenerator struct {
	textGen  llm.TextGenerator
	recorder Recorder
	clock    shopping.Clock
	other    string
}

// NewLLMGenerator creates a generator. recorder may be nil.
func NewLLMGenerator(textGen llm.TextGenerator, recorder Recorder, clock shopping.Clock) *LLMGenerator {
	return &LLMGenerator{
		textGen:  textGen,
		recorder: recorder,
		clock:    clock,
		other:    shopping.DefaultOtherCategory,
	}
}

// FromRecipe lists the ingredients of a named recipe.
func (g *LLMGenerator) FromRecipe(ctx context.Context, name string) (Result, error) {
	return g.run(ctx, OpRecipe, recipeTmpl, name)
}

// FromFreeText structures an unstructured note into items.
func (g *LLMGenerator) FromFreeText(ctx context.Context, text string) (Result, error) {
	return g.run(ctx, OpFreeText, freeTextTmpl, text)
}

func (g *LLMGenerator) run(ctx context.Context, op string, tmpl *template.Template, input string) (Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, &Error{Op: op, Err: ErrEmptyInput}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Input: input, Categories: shopping.SuggestionCategories}); err != nil {
		return Result{}, &Error{Op: op, Err: fmt.Errorf("failed to render prompt: %w", err)}
	}

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, buf.String())
	meta := shared.AgentMeta{
		AgentName: op,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}

	// Silence from the model is an empty answer, not a remote failure.
	if errors.Is(err, llm.ErrNoContent) {
		err = nil
		resp.Content = ""
	}

	var items []shopping.Item
	if err == nil {
		items, err = g.decode(resp.Content)
	}
	if err != nil {
		meta.Failed = true
	}
	g.record(ctx, meta)

	if err != nil {
		slog.Warn("Suggestion request failed", "action", op, "error", err)
		return Result{Meta: meta}, wrap(op, err)
	}
	slog.Info("Suggestion request completed", "action", op, "items", len(items), "duration_ms", meta.Latency.Milliseconds())
	return Result{Items: items, Meta: meta}, nil
}

// decode validates the model answer and converts it to pending items. An
// empty answer is an empty result.
func (g *LLMGenerator) decode(content string) ([]shopping.Item, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return []shopping.Item{}, nil
	}

	var r response
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	now := g.clock.Now()
	seen := make(map[string]struct{}, len(r.Items))
	items := make([]shopping.Item, 0, len(r.Items))
	for _, raw := range r.Items {
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		quantity := strings.TrimSpace(raw.Quantity)
		if quantity == "" {
			quantity = DefaultQuantity
		}
		items = append(items, shopping.Item{
			ID:        uuid.NewString(),
			Name:      name,
			Category:  g.category(raw.Category),
			Quantity:  quantity,
			Price:     0,
			Status:    shopping.StatusPending,
			CreatedAt: now,
		})
	}
	return items, nil
}

func (g *LLMGenerator) category(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, c := range shopping.SuggestionCategories {
		if strings.EqualFold(c, raw) {
			return c
		}
	}
	return g.other
}

func (g *LLMGenerator) record(ctx context.Context, meta shared.AgentMeta) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.RecordMeta(context.WithoutCancel(ctx), meta); err != nil {
		slog.Warn("Failed to record execution metrics", "action", meta.AgentName, "error", err)
	}
}
