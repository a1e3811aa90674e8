package bot

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/belanjabot/belanjabot/pkg/api"
	"github.com/belanjabot/belanjabot/pkg/report"
)

// Callback payloads carried by the report keyboard buttons.
const (
	callbackDaily   = "report_daily"
	callbackWeekly  = "report_weekly"
	callbackMonthly = "report_monthly"
	callbackAll     = "report_all"
)

// ReportBot is the read-only reporting bot. It renders per-chat spending
// summaries on demand and pushes scheduled ones via Broadcast.
type ReportBot struct {
	tg     Client
	store  api.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewReportBot creates the reporting bot.
func NewReportBot(tg Client, store api.Store, loc *time.Location, logger *slog.Logger) *ReportBot {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &ReportBot{
		tg:     tg,
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().In(loc) },
	}
}

// HandleUpdate processes one inbound Telegram update for the report bot.
func (b *ReportBot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		b.handleCallback(ctx, upd.CallbackQuery)
		return
	}

	msg := upd.Message
	if msg == nil {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "laporan":
			b.sendMenu(msg.Chat.ID)
		case "status":
			b.reply(msg.Chat.ID, msgOnline)
		default:
			b.sendMenu(msg.Chat.ID)
		}
		return
	}

	b.sendMenu(msg.Chat.ID)
}

func (b *ReportBot) sendMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, msgReportWelcome)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = reportKeyboard()
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error("sending report menu failed", "chat_id", chatID, "error", err)
	}
}

func reportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Harian", callbackDaily),
			tgbotapi.NewInlineKeyboardButtonData("📆 Mingguan", callbackWeekly),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Bulanan", callbackMonthly),
			tgbotapi.NewInlineKeyboardButtonData("📊 Semua", callbackAll),
		),
	)
}

func (b *ReportBot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Acknowledge first so the button stops spinning.
	if _, err := b.tg.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Error("answering callback failed", "error", err)
	}

	// Telegram omits the message on callbacks from messages too old to
	// reference; there is no chat to reply to then.
	if cq.Message == nil {
		b.logger.Warn("callback without a message, ignoring", "data", cq.Data)
		return
	}

	var kind report.Kind
	switch cq.Data {
	case callbackDaily:
		kind = report.Daily
	case callbackWeekly:
		kind = report.Weekly
	case callbackMonthly:
		kind = report.Monthly
	case callbackAll:
		kind = report.All
	default:
		return
	}

	chatID := cq.Message.Chat.ID

	summary, err := b.summarize(ctx, chatID, kind)
	if err != nil {
		b.logger.Error("building report failed", "chat_id", chatID, "error", err)
		b.reply(chatID, msgReadFailed)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, summary.Format())
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.tg.Send(edit); err != nil {
		b.logger.Error("editing report message failed", "chat_id", chatID, "error", err)
	}
}

func (b *ReportBot) summarize(ctx context.Context, chatID int64, kind report.Kind) (report.Summary, error) {
	now := b.now()

	records, err := b.store.ListFor(ctx, chatID)
	if err != nil {
		return report.Summary{}, err
	}

	return report.Aggregate(records, report.Window{Kind: kind}, now, b.logger), nil
}

// Broadcast sends the report of the given kind to every chat that has ever
// recorded an expense. Chats with an empty window are skipped. Per-chat
// failures are logged and do not stop the rest of the broadcast.
func (b *ReportBot) Broadcast(ctx context.Context, kind report.Kind) error {
	owners, err := b.store.Owners(ctx)
	if err != nil {
		return err
	}

	for _, owner := range owners {
		summary, err := b.summarize(ctx, owner, kind)
		if err != nil {
			b.logger.Error("broadcast report failed", "chat_id", owner, "error", err)
			continue
		}
		if summary.Count == 0 {
			continue
		}

		msg := tgbotapi.NewMessage(owner, summary.Format())
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.tg.Send(msg); err != nil {
			b.logger.Error("broadcast send failed", "chat_id", owner, "error", err)
		}
	}
	return nil
}

func (b *ReportBot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error("sending reply failed", "chat_id", chatID, "error", err)
	}
}
