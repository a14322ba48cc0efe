// Package export renders the item list as CSV and as shareable text.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/shopping"
)

const (
	labelCompleted = "Comprado"
	labelPending   = "Pendente"
)

// CSVOptions controls the CSV layout.
type CSVOptions struct {
	// Other replaces blank categories.
	Other string
	// IncludeMonth appends the creation month column used by archive reports.
	IncludeMonth bool
	// Now stands in for missing creation timestamps.
	Now time.Time
}

// WriteCSV writes one quoted row per item under a Portuguese header.
func WriteCSV(w io.Writer, items []shopping.Item, opts CSVOptions) error {
	bw := bufio.NewWriter(w)

	header := "Produto,Categoria,Quantidade,Preço,Status"
	if opts.IncludeMonth {
		header += ",Mês"
	}
	if _, err := bw.WriteString(header + "\n"); err != nil {
		return err
	}

	for _, it := range items {
		fields := []string{
			it.Name,
			it.CategoryOr(opts.Other),
			it.Quantity,
			fmt.Sprintf("%.2f", it.Price),
			statusLabel(it),
		}
		if opts.IncludeMonth {
			fields = append(fields, analytics.MonthLabel(analytics.MonthKey(it.CreatedOr(opts.Now))))
		}
		if _, err := bw.WriteString(quoteRow(fields) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func statusLabel(it shopping.Item) string {
	if it.Completed() {
		return labelCompleted
	}
	return labelPending
}

// encoding/csv only quotes fields that need it; every field is quoted here.
func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// FileName derives a download name from a snapshot label.
func FileName(label string) string {
	name := strings.ReplaceAll(strings.Join(strings.Fields(label), "-"), "/", "-")
	if name == "" {
		name = "smartgrocer-relatorio"
	}
	return name + ".csv"
}
