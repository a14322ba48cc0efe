package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"smart-grocer/internal/app"
	"smart-grocer/internal/shopping"
	"smart-grocer/internal/storage"
)

func newTestCLI(t *testing.T, input string) (*cli, *bytes.Buffer) {
	t.Helper()
	a, err := app.New(context.Background(), app.Deps{Gateway: storage.NewGateway(storage.NewMemoryBackend())})
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	out := &bytes.Buffer{}
	return &cli{app: a, in: strings.NewReader(input), out: out}, out
}

func TestAddWithTrailingFlags(t *testing.T) {
	c, out := newTestCLI(t, "")
	if err := c.run(context.Background(), "add", []string{"Leite", "integral", "-qty", "2", "-price", "4,50"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	items := c.app.Items()
	if len(items) != 1 || items[0].Name != "Leite integral" || items[0].Quantity != "2" || items[0].Price != 4.5 {
		t.Errorf("Unexpected items %+v", items)
	}
	if !strings.Contains(out.String(), "Added Leite integral to Outros.") {
		t.Errorf("Unexpected output %q", out.String())
	}

	if err := c.run(context.Background(), "add", []string{"-price", "abc", "Pão"}); !errors.Is(err, shopping.ErrInvalidItem) {
		t.Errorf("Expected ErrInvalidItem, got %v", err)
	}
}

func TestToggleByPosition(t *testing.T) {
	c, _ := newTestCLI(t, "")
	ctx := context.Background()
	c.run(ctx, "add", []string{"Arroz"})
	c.run(ctx, "add", []string{"Feijão"})

	if err := c.run(ctx, "toggle", []string{"2"}); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !c.app.Items()[1].Completed() {
		t.Error("Expected the second item to be completed")
	}
	if err := c.run(ctx, "toggle", []string{"3"}); !errors.Is(err, shopping.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClearNeedsYes(t *testing.T) {
	ctx := context.Background()

	t.Run("Declined", func(t *testing.T) {
		c, out := newTestCLI(t, "no\n")
		c.run(ctx, "add", []string{"Arroz"})
		if err := c.run(ctx, "clear", []string{"-all"}); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if len(c.app.Items()) != 1 || !strings.Contains(out.String(), "Cancelled.") {
			t.Errorf("Expected the clear to be cancelled, output %q", out.String())
		}
	})

	t.Run("Typed", func(t *testing.T) {
		c, _ := newTestCLI(t, "yes\n")
		c.run(ctx, "add", []string{"Arroz"})
		if err := c.run(ctx, "clear", []string{"-all"}); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if len(c.app.Items()) != 0 {
			t.Error("Expected the list to be cleared")
		}
	})

	t.Run("Flag", func(t *testing.T) {
		c, _ := newTestCLI(t, "")
		c.run(ctx, "add", []string{"Arroz"})
		c.run(ctx, "archive", []string{"Semana", "1"})
		if err := c.run(ctx, "delete-snapshot", []string{"1", "-yes"}); err != nil {
			t.Fatalf("delete-snapshot failed: %v", err)
		}
		if len(c.app.History()) != 0 {
			t.Error("Expected the snapshot to be deleted")
		}
	})
}

func TestCompare(t *testing.T) {
	c, out := newTestCLI(t, "")
	err := c.run(context.Background(), "compare", []string{"A,10,500,g", "B,18,1,kg", "C,5,1,L"})
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header and 3 rows, got:\n%s", out.String())
	}
	if !strings.Contains(lines[2], "R$18,00/kg") || !strings.HasSuffix(strings.TrimSpace(lines[2]), "best") {
		t.Errorf("Expected B to be the best mass entry, got %q", lines[2])
	}
	if strings.Contains(lines[3], "best") {
		t.Errorf("A single volume entry is never best, got %q", lines[3])
	}

	if err := c.run(context.Background(), "compare", []string{"A,10,1,lb", "B,1,1,kg"}); err == nil {
		t.Error("Expected an unknown unit error")
	}
}

func TestUnknownCommand(t *testing.T) {
	c, _ := newTestCLI(t, "")
	if err := c.run(context.Background(), "frobnicate", nil); !errors.Is(err, errUsage) {
		t.Errorf("Expected errUsage, got %v", err)
	}
}
