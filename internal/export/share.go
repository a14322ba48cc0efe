package export

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"smart-grocer/internal/analytics"
	"smart-grocer/internal/profile"
	"smart-grocer/internal/shopping"
)

// EmptyListText is shared when there is nothing on the list.
const EmptyListText = "Lista vazia!"

var locales = map[profile.Currency]language.Tag{
	profile.BRL: language.BrazilianPortuguese,
	profile.USD: language.AmericanEnglish,
	profile.EUR: language.EuropeanPortuguese,
}

// FormatMoney renders v with two decimals in the locale of currency,
// prefixed by its symbol.
func FormatMoney(v float64, currency profile.Currency) string {
	tag, ok := locales[currency]
	if !ok {
		tag = language.BrazilianPortuguese
	}
	return currency.Symbol() + message.NewPrinter(tag).Sprintf("%.2f", v)
}

// ShareText renders the list grouped by category for a chat message.
func ShareText(items []shopping.Item, currency profile.Currency, other string) string {
	if len(items) == 0 {
		return EmptyListText
	}

	var b strings.Builder
	b.WriteString("🛒 *SmartGrocer List*\n\n")

	var total float64
	for _, g := range groupInListOrder(items, other) {
		fmt.Fprintf(&b, "*%s*\n", g.Category)
		for _, it := range g.Items {
			mark := "⬜"
			if it.Completed() {
				mark = "✅"
			}
			b.WriteString(mark + " " + it.Name)
			if it.Quantity != "" {
				fmt.Fprintf(&b, " (%s)", it.Quantity)
			}
			if it.Price > 0 {
				b.WriteString(" - " + FormatMoney(it.Price, currency))
			}
			b.WriteString("\n")
			total += it.Price
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "💰 *Total: %s*", FormatMoney(total, currency))
	return b.String()
}

// Categories are alphabetical but items keep the order they were added in.
func groupInListOrder(items []shopping.Item, other string) []analytics.CategoryGroup {
	var groups []analytics.CategoryGroup
	index := make(map[string]int)
	for _, cat := range analytics.Categories(items, other) {
		index[cat] = len(groups)
		groups = append(groups, analytics.CategoryGroup{Category: cat})
	}
	for _, it := range items {
		i := index[it.CategoryOr(other)]
		groups[i].Items = append(groups[i].Items, it)
		groups[i].Total += it.Price
	}
	return groups
}
