package clipper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart-grocer/internal/shopping"
	"smart-grocer/internal/suggest"
)

// --- Mocks ---
type MockGenerator struct {
	Text        string
	ShouldError bool
}

func (m *MockGenerator) FromFreeText(ctx context.Context, text string) (suggest.Result, error) {
	m.Text = text
	if m.ShouldError {
		return suggest.Result{}, errors.New("mock ai error")
	}
	return suggest.Result{Items: []shopping.Item{{ID: "1", Name: "Farinha"}}}, nil
}

// --- Tests ---

func recipePage() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
			<head><title>Site | Bolo</title><script>alert('bad');</script></head>
			<body>
				<nav>Home Receitas</nav>
				<h1>Bolo   de cenoura</h1>
				<div class="ads">Buy stuff!</div>
				<p>3 cenouras, 2 xícaras de farinha.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`
		w.Write([]byte(html))
	}))
}

func TestFetchAndCleanHTML(t *testing.T) {
	ts := recipePage()
	defer ts.Close()

	c := NewClipper(&MockGenerator{})
	title, cleanText, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if title != "Bolo de cenoura" {
		t.Errorf("Expected title from h1, got %q", title)
	}
	for _, noise := range []string{"alert('bad')", "Buy stuff!", "Copyright 2024", "Home Receitas"} {
		if strings.Contains(cleanText, noise) {
			t.Errorf("Failed to remove %q", noise)
		}
	}
	if !strings.Contains(cleanText, "3 cenouras, 2 xícaras de farinha.") {
		t.Error("Expected to find body content")
	}
}

func TestFromURL(t *testing.T) {
	ts := recipePage()
	defer ts.Close()

	t.Run("Success", func(t *testing.T) {
		gen := &MockGenerator{}
		res, err := NewClipper(gen).FromURL(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(res.Items) != 1 {
			t.Errorf("Expected generator result, got %+v", res)
		}
		if !strings.HasPrefix(gen.Text, "Receita: Bolo de cenoura\n\n") {
			t.Errorf("Unexpected forwarded text %q", gen.Text)
		}
	})

	t.Run("InvalidURL", func(t *testing.T) {
		for _, u := range []string{"", "ftp://x.test/a", "not a url", "/relative"} {
			if _, err := NewClipper(&MockGenerator{}).FromURL(context.Background(), u); !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Expected ErrInvalidURL for %q, got %v", u, err)
			}
		}
	})

	t.Run("HTTPError", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer bad.Close()

		gen := &MockGenerator{}
		_, err := NewClipper(gen).FromURL(context.Background(), bad.URL)
		if err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("Expected status error, got %v", err)
		}
		var se *suggest.Error
		if !errors.As(err, &se) || se.Op != suggest.OpURL || suggest.IsValidation(err) {
			t.Errorf("Expected a remote *suggest.Error, got %#v", err)
		}
		if gen.Text != "" {
			t.Error("Generator must not be called when the fetch fails")
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := truncate("ação", 2); got != "aç" {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
}
