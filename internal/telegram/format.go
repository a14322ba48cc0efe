package telegram

import (
	"errors"
	"fmt"
	"strings"

	"smart-grocer/internal/app"
	"smart-grocer/internal/archive"
	"smart-grocer/internal/export"
	"smart-grocer/internal/metrics"
	"smart-grocer/internal/profile"
	"smart-grocer/internal/shopping"
	"smart-grocer/internal/suggest"
)

const helpText = `🛒 *SmartGrocer*

/list - sua lista
/add nome;qtd;preço - adiciona um item
/done n - marca o item n
/recipe nome - ingredientes de uma receita
/smart texto - organiza uma lista escrita à mão
/share - texto para compartilhar
/archive [nome] - arquiva a lista
/history - listas arquivadas
/clear - remove os comprados
/clearall - limpa a lista
/metrics - uso e saúde

Envie um link de receita para importar os ingredientes.`

func statusIcon(it shopping.Item) string {
	if it.Completed() {
		return "✅"
	}
	return "⬜"
}

// formatList numbers the items in list order so /done can address them.
func formatList(items []shopping.Item, s shopping.Summary, currency profile.Currency) string {
	if len(items) == 0 {
		return "🛒 Sua lista está vazia. Use /add ou /recipe."
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Sua lista*\n\n")
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s %s", i+1, statusIcon(it), it.Name)
		if it.Quantity != "" {
			fmt.Fprintf(&sb, " (%s)", it.Quantity)
		}
		if it.Price > 0 {
			fmt.Fprintf(&sb, " - %s", export.FormatMoney(it.Price, currency))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n📊 %d/%d comprados (%.0f%%)\n", s.CompletedCount, s.TotalCount, s.ProgressPercent)
	fmt.Fprintf(&sb, "💰 %s de %s", export.FormatMoney(s.CompletedPrice, currency), export.FormatMoney(s.TotalPrice, currency))
	return sb.String()
}

func formatMerge(res app.MergeResult) string {
	if len(res.Accepted) == 0 {
		return "ℹ️ " + res.Message
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ %s\n\n", res.Message)
	for _, it := range res.Accepted {
		fmt.Fprintf(&sb, "• %s", it.Name)
		if it.Quantity != "" {
			fmt.Fprintf(&sb, " (%s)", it.Quantity)
		}
		fmt.Fprintf(&sb, " _%s_\n", it.Category)
	}
	return sb.String()
}

func formatHistory(history []archive.Snapshot, currency profile.Currency) string {
	if len(history) == 0 {
		return "📦 Nenhuma lista arquivada."
	}
	var sb strings.Builder
	sb.WriteString("📦 *Listas arquivadas*\n\n")
	for _, s := range history {
		fmt.Fprintf(&sb, "• *%s* - %d itens, %s\n", s.Label, len(s.Items), export.FormatMoney(s.TotalPlanned, currency))
	}
	return sb.String()
}

func formatConfirmation(conf app.Confirmation) string {
	return fmt.Sprintf("⚠️ *%s*\n\n%s", conf.Title, conf.Message)
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth, storageErr error) string {
	var sb strings.Builder
	sb.WriteString("📊 *Uso e saúde*\n\n")

	sb.WriteString("🗓 *Atividade recente de IA*\n")
	if len(usage) == 0 {
		sb.WriteString("_Sem dados ainda_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execuções", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
		if d.Failures > 0 {
			fmt.Fprintf(&sb, ", %d falhas", d.Failures)
		}
		sb.WriteString(")\n")
	}

	sb.WriteString("\n🧠 *Sistema*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Dados: %s\n", health.DataDiskSize)
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	if storageErr != nil {
		sb.WriteString("• ⚠️ Falha ao salvar: " + safe(storageErr.Error()) + "\n")
	}
	return sb.String()
}

func formatError(prefix string, err error) string {
	if errors.Is(err, suggest.ErrUnavailable) {
		return "ℹ️ Sugestões por IA indisponíveis neste servidor."
	}
	return fmt.Sprintf("❌ *%s:*\n```\n%s\n```", prefix, safe(err.Error()))
}

func safe(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
