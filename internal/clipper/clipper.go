package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"smart-grocer/internal/suggest"
)

// MaxTextRunes bounds the page text forwarded to the model.
const MaxTextRunes = 8000

// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid recipe URL")

// FreeTextGenerator is the part of suggest.Generator the clipper needs.
type FreeTextGenerator interface {
	FromFreeText(ctx context.Context, text string) (suggest.Result, error)
}

// Clipper turns a recipe page into candidate shopping items.
type Clipper struct {
	generator  FreeTextGenerator
	httpClient *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper(generator FreeTextGenerator) *Clipper {
	return &Clipper{
		generator:  generator,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// FromURL fetches the page, strips it down to its text and asks the
// generator for the ingredients it mentions.
func (c *Clipper) FromURL(ctx context.Context, rawURL string) (suggest.Result, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return suggest.Result{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	title, text, err := c.fetchAndCleanHTML(ctx, u.String())
	if err != nil {
		return suggest.Result{}, &suggest.Error{Op: suggest.OpURL, Err: fmt.Errorf("failed to fetch content: %w", err)}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString("Receita: " + title + "\n\n")
	}
	sb.WriteString(text)

	return c.generator.FromFreeText(ctx, sb.String())
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, pageURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", "smart-grocer/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, header, iframe, noscript, form, aside, .ads, #ads, .comments").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	title := collapse(doc.Find("h1").First().Text())
	if title == "" {
		title = collapse(doc.Find("title").First().Text())
	}
	return title, truncate(collapse(doc.Find("body").Text()), MaxTextRunes), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
