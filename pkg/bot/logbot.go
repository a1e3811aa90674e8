// Package bot implements the two Telegram bots: LogBot records expenses,
// ReportBot renders spending reports.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/belanjabot/belanjabot/pkg/api"
	"github.com/belanjabot/belanjabot/pkg/parser"
)

// maxPhotoSize caps receipt photo downloads.
const maxPhotoSize = 20 << 20

// Client is the slice of the Telegram bot API the handlers use.
// *tgbotapi.BotAPI satisfies it; tests substitute a fake.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// LogBot is the expense-logging bot. It parses typed entries and receipt
// photos, asks the follow-up questions, and appends records to the store.
type LogBot struct {
	tg         Client
	store      api.Store
	recognizer api.Recognizer
	sessions   *sessions
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewLogBot creates the logging bot. recognizer may be nil when no OCR
// backend is configured; photo receipts then get a manual-entry reply.
func NewLogBot(tg Client, store api.Store, recognizer api.Recognizer, loc *time.Location, logger *slog.Logger) *LogBot {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &LogBot{
		tg:         tg,
		store:      store,
		recognizer: recognizer,
		sessions:   newSessions(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

// HandleUpdate processes one inbound Telegram update. Parsing failures are
// always recovered locally with a re-prompt; only store failures surface to
// the user as an explicit error message.
func (b *LogBot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(chatID, msg.Command())
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, chatID, msg.Photo)
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		b.reply(chatID, msgUnknown)
		return
	}

	b.handleText(ctx, chatID, msg.Text)
}

func (b *LogBot) handleCommand(chatID int64, command string) {
	switch command {
	case "start":
		b.sessions.reset(chatID)
		b.reply(chatID, msgWelcome)
	case "status":
		b.reply(chatID, msgOnline)
	case "cancel":
		b.sessions.reset(chatID)
		b.reply(chatID, msgCancelled)
	default:
		b.reply(chatID, msgUnknown)
	}
}

func (b *LogBot) handleText(ctx context.Context, chatID int64, text string) {
	sess := b.sessions.get(chatID)

	switch sess.state {
	case stateAwaitLocation:
		b.setLocation(sess, text)
		sess.state = stateAwaitMore
		b.reply(chatID, "📍 Lokasi diterima! "+msgAskMore)

	case stateAwaitMore:
		if isDone(text) {
			sess.state = stateAwaitReceipt
			b.reply(chatID, msgAskReceipt)
			return
		}
		b.addExpense(sess, chatID, text)

	case stateAwaitReceipt:
		if isSkip(text) {
			b.save(ctx, chatID, sess)
			return
		}
		b.reply(chatID, msgAwaitReceipt)

	default:
		b.startEntry(sess, chatID, text)
	}
}

// startEntry begins a new entry from the first typed line.
func (b *LogBot) startEntry(sess *session, chatID int64, text string) {
	exp, err := parser.ParseLine(text, b.now())
	if err != nil {
		b.logger.Info("unparseable expense text", "chat_id", chatID, "error", err)
		b.reply(chatID, msgFormatHelp)
		return
	}

	sess.pending = []api.Expense{exp}

	if exp.Location == api.LocationPlaceholder {
		sess.state = stateAwaitLocation
		b.reply(chatID, fmt.Sprintf("💰 Rekod: %s - RM%s\n\n%s",
			exp.Item, exp.Amount.StringFixed(2), msgAskLocation))
		return
	}

	sess.state = stateAwaitMore
	b.reply(chatID, fmt.Sprintf("💰 Rekod: %s - RM%s\n📍 Lokasi: %s\n\n%s",
		exp.Item, exp.Amount.StringFixed(2), exp.Location, msgAskMore))
}

// addExpense parses an additional typed item during the more-items loop.
func (b *LogBot) addExpense(sess *session, chatID int64, text string) {
	exp, err := parser.ParseLine(text, b.now())
	if err != nil {
		b.reply(chatID, msgFormatHelp)
		return
	}

	// Follow-up items without their own location share the first one's.
	if exp.Location == api.LocationPlaceholder && len(sess.pending) > 0 {
		exp.Location = sess.pending[0].Location
	}

	sess.pending = append(sess.pending, exp)
	b.reply(chatID, fmt.Sprintf("✅ Ditambah: %s - RM%s\n\n%s",
		exp.Item, exp.Amount.StringFixed(2), msgAskMore))
}

// setLocation applies the answered location to every pending candidate that
// still carries the placeholder.
func (b *LogBot) setLocation(sess *session, text string) {
	location := locationOrPlaceholder(text)
	for i := range sess.pending {
		if sess.pending[i].Location == api.LocationPlaceholder {
			sess.pending[i].Location = location
		}
	}
}

func (b *LogBot) handlePhoto(ctx context.Context, chatID int64, photos []tgbotapi.PhotoSize) {
	sess := b.sessions.get(chatID)

	// Mid-entry the photo is just the offered receipt attachment.
	if sess.state == stateAwaitReceipt {
		b.reply(chatID, msgReceiptAttached)
		b.save(ctx, chatID, sess)
		return
	}

	if b.recognizer == nil {
		b.reply(chatID, msgOCRUnavailable)
		return
	}

	// Telegram orders sizes small to large; take the largest.
	image, err := b.downloadPhoto(ctx, photos[len(photos)-1].FileID)
	if err != nil {
		b.logger.Error("downloading photo failed", "chat_id", chatID, "error", err)
		b.reply(chatID, msgOCRFailed)
		return
	}

	text, err := b.recognizer.Recognize(ctx, image)
	if err != nil {
		b.logger.Error("OCR failed", "chat_id", chatID, "error", err)
		b.reply(chatID, msgOCRFailed)
		return
	}
	if strings.TrimSpace(text) == "" {
		b.reply(chatID, msgOCRFailed)
		return
	}

	exp := parser.ParseReceipt(text, b.now())
	if exp.Amount.IsZero() {
		// A candidate without an amount is never persisted.
		b.reply(chatID, msgReceiptNoTotal)
		return
	}

	// Mid-conversation the typed candidates are still pending; the receipt
	// joins them rather than replacing them.
	sess.pending = append(sess.pending, exp)
	b.save(ctx, chatID, sess)
}

func (b *LogBot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.tg.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoSize))
	if err != nil {
		return nil, fmt.Errorf("reading file body: %w", err)
	}
	return data, nil
}

// save appends every pending candidate as a record. On a store failure the
// session is kept so the user can retry; the input is never silently
// discarded.
func (b *LogBot) save(ctx context.Context, chatID int64, sess *session) {
	now := b.now()
	for i, exp := range sess.pending {
		rec := api.Record{Expense: exp, OwnerID: chatID, Timestamp: now}
		if err := b.store.Append(ctx, rec); err != nil {
			b.logger.Error("appending record failed", "chat_id", chatID, "error", err)
			sess.pending = sess.pending[i:]
			b.reply(chatID, msgSaveFailed)
			return
		}
	}

	var lines []string
	lines = append(lines, "✅ Disimpan!")
	for _, exp := range sess.pending {
		lines = append(lines, fmt.Sprintf("🍽 %s\n📍 %s\n💸 RM%s",
			exp.Item, exp.Location, exp.Amount.StringFixed(2)))
	}
	lines = append(lines, "\nNak rekod belanja lain?")

	b.sessions.reset(chatID)
	b.reply(chatID, strings.Join(lines, "\n"))
}

func (b *LogBot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error("sending reply failed", "chat_id", chatID, "error", err)
	}
}

func isDone(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "tidak", "selesai", "siap", "no", "done":
		return true
	}
	return false
}

func isSkip(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "skip", "tiada", "takde":
		return true
	}
	return false
}

func locationOrPlaceholder(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || text == api.LocationPlaceholder {
		return api.LocationPlaceholder
	}
	return text
}
