package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"smart-grocer/internal/app"
	"smart-grocer/internal/config"
	"smart-grocer/internal/metrics"
	"smart-grocer/internal/shopping"
)

// processTimeout bounds the work done for one update. The webhook answers
// Telegram before processing starts.
const processTimeout = time.Minute

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// UsageReporter supplies the LLM usage shown by /metrics.
type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot is the chat front-end over the shopping list.
type Bot struct {
	api      Sender
	app      *app.App
	usage    UsageReporter
	allowed  map[int64]bool
	dataPath string
}

// Options configure a Bot.
type Options struct {
	// AllowUserIDs restricts the bot to these Telegram users. Empty allows
	// nobody.
	AllowUserIDs []int64
	Usage        UsageReporter
	DataPath     string
}

// Connect authorizes against the Telegram API and registers the webhook.
func Connect(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	endpoint := cfg.TelegramAPIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.TelegramBotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	slog.Info("Telegram authorized", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	slog.Info("Telegram webhook set", "description", resp.Description)
	return api, nil
}

// NewBot returns a Bot that answers through api.
func NewBot(api Sender, a *app.App, opts Options) *Bot {
	allowed := make(map[int64]bool, len(opts.AllowUserIDs))
	for _, id := range opts.AllowUserIDs {
		allowed[id] = true
	}
	return &Bot{api: api, app: a, usage: opts.Usage, allowed: allowed, dataPath: opts.DataPath}
}

// HandleWebhook decodes one update and processes it in the background.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Warn("Error parsing telegram update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		b.HandleUpdate(ctx, update)
	}()
}

// HandleUpdate dispatches an update from an allowed user.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if b.isAllowed(update.CallbackQuery.From) {
			b.handleCallbackQuery(ctx, update.CallbackQuery)
		}
	case update.Message != nil:
		if b.isAllowed(update.Message.From) {
			b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) isAllowed(u *tgbotapi.User) bool {
	if u == nil {
		return false
	}
	if !b.allowed[u.ID] {
		slog.Warn("Unauthorized telegram access attempt", "user_id", u.ID, "username", u.UserName)
		return false
	}
	return true
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleSuggestion(ctx, chatID, "✂️ *Lendo a receita...*", func(ctx context.Context) (app.MergeResult, error) {
			return b.app.GenerateFromURL(ctx, text)
		})
		return
	}

	cmd, args := parseCommand(text)
	switch cmd {
	case "":
		if text != "" {
			b.handleSuggestion(ctx, chatID, "🧠 *Organizando sua lista...*", func(ctx context.Context) (app.MergeResult, error) {
				return b.app.GenerateFromText(ctx, text)
			})
		}
	case "start", "help":
		b.reply(chatID, helpText)
	case "list":
		b.reply(chatID, formatList(b.app.Items(), b.app.Summary(), b.app.Profile().Currency))
	case "add":
		b.handleAdd(ctx, chatID, args)
	case "done":
		b.handleDone(ctx, chatID, args)
	case "recipe":
		b.handleSuggestion(ctx, chatID, "🧑‍🍳 *Buscando ingredientes...*", func(ctx context.Context) (app.MergeResult, error) {
			return b.app.GenerateFromRecipe(ctx, args)
		})
	case "smart":
		b.handleSuggestion(ctx, chatID, "🧠 *Organizando sua lista...*", func(ctx context.Context) (app.MergeResult, error) {
			return b.app.GenerateFromText(ctx, args)
		})
	case "share":
		b.replyPlain(chatID, b.app.ShareText())
	case "archive":
		b.handleArchive(ctx, chatID, args)
	case "history":
		b.handleHistory(chatID)
	case "clear":
		b.askConfirmation(chatID, app.ActionClearCompleted, "")
	case "clearall":
		b.askConfirmation(chatID, app.ActionClearAll, "")
	case "metrics":
		b.handleMetricsCommand(ctx, chatID)
	default:
		b.reply(chatID, "🤔 Comando desconhecido. Use /help.")
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	d, ok := parseDraft(args)
	if !ok {
		b.reply(chatID, "Uso: `/add nome;quantidade;preço`")
		return
	}
	item, err := b.app.AddItem(ctx, d)
	if err != nil {
		b.replyError(chatID, "Não foi possível adicionar", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ *%s* adicionado em _%s_.", item.Name, item.Category))
}

func (b *Bot) handleDone(ctx context.Context, chatID int64, args string) {
	items := b.app.Items()
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 || n > len(items) {
		b.reply(chatID, fmt.Sprintf("Informe um número entre 1 e %d. Veja /list.", len(items)))
		return
	}
	item, err := b.app.ToggleItem(ctx, items[n-1].ID)
	if err != nil {
		b.replyError(chatID, "Não foi possível atualizar", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("%s %s", statusIcon(item), item.Name))
}

func (b *Bot) handleSuggestion(ctx context.Context, chatID int64, status string, generate func(context.Context) (app.MergeResult, error)) {
	sent, err := b.api.Send(markdown(tgbotapi.NewMessage(chatID, status)))
	if err != nil {
		slog.Error("Failed to send initial reply", "error", err)
		return
	}

	res, err := generate(ctx)
	var finalText string
	if err != nil {
		slog.Warn("Suggestion failed", "error", err)
		finalText = formatError("Não foi possível gerar sugestões", err)
	} else {
		finalText = formatMerge(res)
	}
	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, finalText)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.send(edit)
}

func (b *Bot) handleArchive(ctx context.Context, chatID int64, label string) {
	s, err := b.app.Archive(ctx, strings.TrimSpace(label))
	if err != nil {
		b.replyError(chatID, "Não foi possível arquivar", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("📦 Lista arquivada como *%s* (%d itens).", s.Label, len(s.Items)))
}

// historyButtons caps the snapshots offered with inline actions.
const historyButtons = 5

func (b *Bot) handleHistory(chatID int64) {
	history := b.app.History()
	msg := markdown(tgbotapi.NewMessage(chatID, formatHistory(history, b.app.Profile().Currency)))

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, s := range history {
		if i == historyButtons {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ "+s.Label, requestData(app.ActionRestoreSnapshot, s.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", requestData(app.ActionDeleteSnapshot, s.ID)),
		))
	}
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	b.send(msg)
}

func (b *Bot) askConfirmation(chatID int64, action app.Action, target string) {
	conf, err := b.app.RequestConfirmation(action, target)
	if err != nil {
		b.replyError(chatID, "Nada a fazer", err)
		return
	}
	msg := markdown(tgbotapi.NewMessage(chatID, formatConfirmation(conf)))
	msg.ReplyMarkup = confirmationKeyboard(conf)
	b.send(msg)
}

// Callback data formats, kept under Telegram's 64 byte limit:
//
//	req|<action>|<target>  request a confirmation
//	ok|<confirmation id>   confirm
//	no|<confirmation id>   cancel
func requestData(action app.Action, target string) string {
	return "req|" + string(action) + "|" + target
}

func confirmationKeyboard(conf app.Confirmation) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ "+conf.ConfirmLabel, "ok|"+conf.ID),
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancelar", "no|"+conf.ID),
	))
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		slog.Warn("Failed to answer callback", "error", err)
	}
	if query.Message == nil {
		return
	}
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	parts := strings.SplitN(query.Data, "|", 3)
	var text string
	var keyboard *tgbotapi.InlineKeyboardMarkup
	switch {
	case parts[0] == "req" && len(parts) == 3:
		action, err := app.ParseAction(parts[1])
		if err == nil {
			var conf app.Confirmation
			conf, err = b.app.RequestConfirmation(action, parts[2])
			if err == nil {
				text = formatConfirmation(conf)
				k := confirmationKeyboard(conf)
				keyboard = &k
			}
		}
		if err != nil {
			text = formatError("Nada a fazer", err)
		}
	case parts[0] == "ok" && len(parts) == 2:
		out, err := b.app.Confirm(ctx, parts[1])
		if err != nil {
			text = formatError("Ação não aplicada", err)
		} else {
			text = "✅ " + out.Message
		}
	case parts[0] == "no" && len(parts) == 2:
		_ = b.app.CancelConfirmation(parts[1])
		text = "Cancelado."
	default:
		slog.Warn("Unknown callback data", "data", query.Data)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = keyboard
	b.send(edit)
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	var usage []metrics.DailyUsage
	if b.usage != nil {
		var err error
		usage, err = b.usage.GetDailyUsage(ctx, 7)
		if err != nil {
			b.reply(chatID, "❌ Erro ao buscar métricas.")
			return
		}
	}
	b.reply(chatID, formatMetrics(usage, metrics.GetSysHealth(b.dataPath), b.app.PersistenceIssue()))
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(markdown(tgbotapi.NewMessage(chatID, text)))
}

// replyPlain skips Markdown parsing for text that carries its own markup.
func (b *Bot) replyPlain(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyError(chatID int64, prefix string, err error) {
	b.reply(chatID, formatError(prefix, err))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		slog.Error("Failed to send telegram message", "error", err)
	}
}

func markdown(msg tgbotapi.MessageConfig) tgbotapi.MessageConfig {
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

// parseCommand splits "/cmd@bot args" into its command and arguments. Text
// that is not a command yields an empty command.
func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ := strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// parseDraft reads "name;quantity;price".
func parseDraft(args string) (shopping.Draft, bool) {
	parts := strings.Split(args, ";")
	d := shopping.Draft{Name: strings.TrimSpace(parts[0])}
	if d.Name == "" || len(parts) > 3 {
		return shopping.Draft{}, false
	}
	if len(parts) > 1 {
		d.Quantity = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		d.Price = strings.TrimSpace(parts[2])
	}
	return d, true
}
