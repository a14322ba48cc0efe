package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/app"
	"smart-grocer/internal/archive"
	"smart-grocer/internal/export"
	"smart-grocer/internal/metrics"
	"smart-grocer/internal/profile"
	"smart-grocer/internal/shopping"
)

var errUsage = errors.New("usage")

type cli struct {
	app     *app.App
	metrics *metrics.Store
	in      io.Reader
	out     io.Writer
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "add":
		return c.add(ctx, args)
	case "list":
		return c.list()
	case "toggle":
		return c.toggle(ctx, args)
	case "remove":
		return c.remove(ctx, args)
	case "recipe", "smart", "clip":
		return c.suggest(ctx, cmd, args)
	case "share":
		fmt.Fprintln(c.out, c.app.ShareText())
		return nil
	case "export":
		return c.export(args)
	case "archive":
		return c.archive(ctx, args)
	case "history":
		return c.history()
	case "rename":
		return c.rename(ctx, args)
	case "restore":
		return c.snapshotAction(ctx, "restore", app.ActionRestoreSnapshot, args)
	case "delete-snapshot":
		return c.snapshotAction(ctx, "delete-snapshot", app.ActionDeleteSnapshot, args)
	case "clear":
		return c.clear(ctx, args)
	case "stats":
		return c.stats(args)
	case "compare":
		return c.compare(args)
	case "budget":
		return c.budget(ctx, args)
	case "metrics-cleanup":
		return c.metricsCleanup(ctx, args)
	}
	fmt.Fprintf(c.out, "Unknown command: %s\n", cmd)
	return errUsage
}

// parseInterspersed lets flags follow positional arguments, so
// "add Leite -qty 2" works like "add -qty 2 Leite".
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	var d shopping.Draft
	fs.StringVar(&d.Quantity, "qty", "", "quantity, e.g. \"2 kg\"")
	fs.StringVar(&d.Price, "price", "", "unit price, e.g. 4,50")
	fs.StringVar(&d.Category, "category", "", "category")
	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	d.Name = strings.Join(rest, " ")

	item, err := c.app.AddItem(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added %s to %s.\n", item.Name, item.Category)
	return c.app.PersistenceIssue()
}

func (c *cli) list() error {
	items := c.app.Items()
	if len(items) == 0 {
		fmt.Fprintln(c.out, "The list is empty.")
		return nil
	}
	currency := c.app.Profile().Currency
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.ID] = i + 1
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, g := range c.app.Grouped() {
		fmt.Fprintf(tw, "%s\t\t\t%s\n", strings.ToUpper(g.Category), export.FormatMoney(g.Total, currency))
		for _, it := range g.Items {
			mark := "[ ]"
			if it.Completed() {
				mark = "[x]"
			}
			fmt.Fprintf(tw, "  %d. %s %s\t%s\t%s\t\n", index[it.ID], mark, it.Name, it.Quantity, export.FormatMoney(it.Price, currency))
		}
	}
	tw.Flush()

	s := c.app.Summary()
	fmt.Fprintf(c.out, "\n%d/%d bought (%.0f%%), %s of %s\n", s.CompletedCount, s.TotalCount, s.ProgressPercent,
		export.FormatMoney(s.CompletedPrice, currency), export.FormatMoney(s.TotalPrice, currency))
	return nil
}

// resolveItem accepts a 1-based list position or an item id.
func resolveItem(items []shopping.Item, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return "", fmt.Errorf("%w: position %d (list has %d items)", shopping.ErrNotFound, n, len(items))
		}
		return items[n-1].ID, nil
	}
	return ref, nil
}

// resolveSnapshot accepts a 1-based history position (newest first) or an id.
func resolveSnapshot(history []archive.Snapshot, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(history) {
			return "", fmt.Errorf("%w: position %d (history has %d lists)", archive.ErrNotFound, n, len(history))
		}
		return history[n-1].ID, nil
	}
	return ref, nil
}

func (c *cli) toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := resolveItem(c.app.Items(), args[0])
	if err != nil {
		return err
	}
	item, err := c.app.ToggleItem(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s is now %s.\n", item.Name, strings.ToLower(string(item.Status)))
	return c.app.PersistenceIssue()
}

func (c *cli) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	id, err := resolveItem(c.app.Items(), args[0])
	if err != nil {
		return err
	}
	if err := c.app.RemoveItem(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Removed.")
	return c.app.PersistenceIssue()
}

// suggestTimeout bounds one model round trip.
const suggestTimeout = 90 * time.Second

func (c *cli) suggest(ctx context.Context, cmd string, args []string) error {
	input := strings.Join(args, " ")
	if strings.TrimSpace(input) == "" {
		return errUsage
	}
	ctx, cancel := context.WithTimeout(ctx, suggestTimeout)
	defer cancel()

	var res app.MergeResult
	var err error
	switch cmd {
	case "recipe":
		res, err = c.app.GenerateFromRecipe(ctx, input)
	case "smart":
		res, err = c.app.GenerateFromText(ctx, input)
	default:
		res, err = c.app.GenerateFromURL(ctx, input)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	for _, it := range res.Accepted {
		fmt.Fprintf(c.out, "  + %s (%s) [%s]\n", it.Name, it.Quantity, it.Category)
	}
	return c.app.PersistenceIssue()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func rangeFlags(fs *flag.FlagSet) func() (analytics.DateRange, error) {
	from := fs.String("from", "", "first day, YYYY-MM-DD")
	to := fs.String("to", "", "last day, YYYY-MM-DD")
	return func() (analytics.DateRange, error) {
		var r analytics.DateRange
		var err error
		if r.From, err = parseDate(*from); err != nil {
			return r, err
		}
		r.To, err = parseDate(*to)
		return r, err
	}
}

func (c *cli) export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output file (default derived from the label)")
	snapshot := fs.String("snapshot", "", "archived list position or id")
	dateRange := rangeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var buf strings.Builder
	name := export.FileName("")
	if *snapshot != "" {
		id, err := resolveSnapshot(c.app.History(), *snapshot)
		if err != nil {
			return err
		}
		if name, err = c.app.ExportSnapshotCSV(&buf, id); err != nil {
			return err
		}
	} else {
		r, err := dateRange()
		if err != nil {
			return err
		}
		if err := c.app.ExportCSV(&buf, r); err != nil {
			return err
		}
	}
	if *out == "" {
		*out = name
	}
	if *out == "-" {
		_, err := io.WriteString(c.out, buf.String())
		return err
	}
	if err := os.WriteFile(*out, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	fmt.Fprintf(c.out, "Wrote %s.\n", *out)
	return nil
}

func (c *cli) archive(ctx context.Context, args []string) error {
	s, err := c.app.Archive(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Archived %d items as %q.\n", len(s.Items), s.Label)
	return c.app.PersistenceIssue()
}

func (c *cli) history() error {
	history := c.app.History()
	if len(history) == 0 {
		fmt.Fprintln(c.out, "No archived lists.")
		return nil
	}
	currency := c.app.Profile().Currency
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLABEL\tDATE\tITEMS\tPLANNED\tSPENT\tID")
	for i, s := range history {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n", i+1, s.Label, s.ArchivedAt.Local().Format("2006-01-02 15:04"),
			len(s.Items), export.FormatMoney(s.TotalPlanned, currency), export.FormatMoney(s.TotalSpent, currency), s.ID)
	}
	return tw.Flush()
}

func (c *cli) rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	id, err := resolveSnapshot(c.app.History(), args[0])
	if err != nil {
		return err
	}
	s, err := c.app.RenameSnapshot(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Renamed to %q.\n", s.Label)
	return c.app.PersistenceIssue()
}

func (c *cli) snapshotAction(ctx context.Context, name string, action app.Action, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	rest, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errUsage
	}
	id, err := resolveSnapshot(c.app.History(), rest[0])
	if err != nil {
		return err
	}
	return c.confirmAndApply(ctx, action, id, *yes)
}

func (c *cli) clear(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	all := fs.Bool("all", false, "remove every item, not only bought ones")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	action := app.ActionClearCompleted
	if *all {
		action = app.ActionClearAll
	}
	return c.confirmAndApply(ctx, action, "", *yes)
}

// confirmAndApply runs a destructive action through the confirmation gate.
// Without -yes the user must type "yes".
func (c *cli) confirmAndApply(ctx context.Context, action app.Action, target string, yes bool) error {
	conf, err := c.app.RequestConfirmation(action, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n%s\n", conf.Title, conf.Message)

	if !yes {
		fmt.Fprintf(c.out, "Type 'yes' to %s: ", strings.ToLower(conf.ConfirmLabel))
		answer, _ := bufio.NewReader(c.in).ReadString('\n')
		if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
			_ = c.app.CancelConfirmation(conf.ID)
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	out, err := c.app.Confirm(ctx, conf.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, out.Message)
	return c.app.PersistenceIssue()
}

func (c *cli) stats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	category := fs.String("category", "", "category for the monthly series")
	archived := fs.Bool("archived", false, "include archived lists")
	dateRange := rangeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := dateRange()
	if err != nil {
		return err
	}

	d := c.app.Dashboard(app.DashboardQuery{Range: r, Category: *category, IncludeArchived: *archived})
	currency := c.app.Profile().Currency
	money := func(v float64) string { return export.FormatMoney(v, currency) }

	m := d.Metrics
	fmt.Fprintf(c.out, "Items: %d (%d bought, %d pending)\n", m.TotalItems, m.CompletedItems, m.PendingItems)
	fmt.Fprintf(c.out, "Planned: %s  Spent: %s  Average price: %s\n", money(m.TotalPlanned), money(m.TotalSpent), money(m.AveragePrice))
	if d.Budget.Goal > 0 {
		state := "ok"
		switch {
		case d.Budget.Exceeded:
			state = "exceeded"
		case d.Budget.Warning:
			state = "warning"
		}
		fmt.Fprintf(c.out, "Budget: %s of %s (%.0f%%, %s)\n", money(d.Budget.Spent), money(d.Budget.Goal), d.Budget.Percent, state)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nCATEGORY\tITEMS\tPLANNED\tSPENT")
	for _, s := range d.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Category, s.Count, money(s.Planned), money(s.Spent))
	}
	fmt.Fprintln(tw, "\nMONTH\tITEMS\tPLANNED\tSPENT\tΔ PLANNED")
	for _, b := range d.Monthly {
		delta := "-"
		if b.DeltaPlanned != nil {
			delta = fmt.Sprintf("%+.0f%%", *b.DeltaPlanned)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", b.Label, b.Count, money(b.Planned), money(b.Spent), delta)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(d.Top) > 0 {
		fmt.Fprintln(c.out, "\nMost expensive:")
		for i, it := range d.Top {
			fmt.Fprintf(c.out, "  %d. %s %s\n", i+1, it.Name, money(it.Price))
		}
	}
	return nil
}

// parseProduct reads "label,price,quantity,unit".
func parseProduct(s string) (analytics.Product, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return analytics.Product{}, fmt.Errorf("invalid entry %q, want label,price,quantity,unit", s)
	}
	unit, err := analytics.ParseUnit(parts[3])
	if err != nil {
		return analytics.Product{}, err
	}
	return analytics.Product{
		Label:    strings.TrimSpace(parts[0]),
		Price:    strings.TrimSpace(parts[1]),
		Quantity: strings.TrimSpace(parts[2]),
		Unit:     unit,
	}, nil
}

func (c *cli) compare(args []string) error {
	products := make([]analytics.Product, 0, len(args))
	for _, a := range args {
		p, err := parseProduct(a)
		if err != nil {
			return err
		}
		products = append(products, p)
	}
	results, err := analytics.CompareUnitPrices(products)
	if err != nil {
		return err
	}

	currency := c.app.Profile().Currency
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tPRICE PER UNIT\t")
	for _, r := range results {
		price := "invalid"
		if r.Valid {
			price = export.FormatMoney(r.PerBaseUnit, currency) + "/" + string(r.BaseUnit)
		}
		best := ""
		if r.Best {
			best = "best"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Label, price, best)
	}
	return tw.Flush()
}

func (c *cli) budget(ctx context.Context, args []string) error {
	currency := c.app.Profile().Currency
	if len(args) == 0 {
		fmt.Fprintf(c.out, "Budget goal: %s\n", export.FormatMoney(c.app.Budget(), currency))
		return nil
	}
	v, err := shopping.ParseAmount(args[0])
	if err != nil {
		return fmt.Errorf("%w: budget goal: %v", profile.ErrInvalid, err)
	}
	if _, err := c.app.SetBudget(ctx, v); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Budget goal set to %s.\n", export.FormatMoney(v, currency))
	return c.app.PersistenceIssue()
}

func (c *cli) metricsCleanup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ContinueOnError)
	days := fs.Int("days", 30, "Keep records for the last N days")
	if err := fs.Parse(args); err != nil {
		return err
	}
	affected, err := c.metrics.Cleanup(ctx, *days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	fmt.Fprintf(c.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}
