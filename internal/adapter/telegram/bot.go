package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relaybot/internal/domain"
	"relaybot/internal/storage"
)

const helpText = `🎬 Video relay bot

Send me a direct download link (http/https) and I will fetch the file
and post it to the group as a streamable video.

Commands:
/queue - show pending downloads
/cancel - cancel all downloads
/del_storage - delete leftover files in the download folder
/status - system status report
/help - this message`

// Kicker starts queue processing after a submission.
type Kicker interface {
	Kick(ctx context.Context)
}

// StatusReporter renders the /status system report.
type StatusReporter interface {
	Report(ctx context.Context) string
}

// Bot is the driving adapter: it consumes the update stream and turns
// messages into queue operations.
type Bot struct {
	api    API
	queue  *domain.Queue
	store  *storage.Store
	worker Kicker
	status StatusReporter
}

// NewBot wires the command surface over an established API client.
func NewBot(api API, queue *domain.Queue, store *storage.Store, worker Kicker, status StatusReporter) *Bot {
	return &Bot{api: api, queue: queue, store: store, worker: worker, status: status}
}

// Run consumes updates until ctx is cancelled or the stream closes.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleSubmission(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg, helpText)
	case "queue":
		b.reply(msg, b.queueReport())
	case "cancel":
		count := b.queue.CancelAll()
		if count == 0 {
			b.reply(msg, "Queue is already empty.")
			return
		}
		b.reply(msg, fmt.Sprintf("🚫 Cancelling %d job(s).", count))
	case "del_storage":
		res, err := b.store.Purge()
		if err != nil {
			b.reply(msg, "❌ Storage cleanup failed: "+err.Error())
			return
		}
		b.reply(msg, fmt.Sprintf("🗑 Deleted %d file(s), freed %s.",
			res.FilesDeleted, humanize.Bytes(uint64(res.BytesFreed))))
	case "status":
		if b.status == nil {
			b.reply(msg, "Status reporting is not enabled.")
			return
		}
		b.reply(msg, b.status.Report(ctx))
	default:
		b.reply(msg, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleSubmission(ctx context.Context, msg *tgbotapi.Message) {
	url := strings.TrimSpace(msg.Text)
	if err := ValidateURL(url); err != nil {
		b.reply(msg, "⚠️ Send a single direct http(s) download link.")
		return
	}

	sub := domain.Submitter{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	if msg.From != nil {
		sub.UserID = msg.From.ID
	}
	pos := b.queue.Enqueue(domain.NewJob(url, sub))
	b.reply(msg, fmt.Sprintf("✅ Added to queue at position %d.", pos))
	b.worker.Kick(ctx)
}

func (b *Bot) queueReport() string {
	snap := b.queue.Snapshot()
	if snap.Current == nil && len(snap.Pending) == 0 {
		return "Queue is empty."
	}

	var sb strings.Builder
	if snap.Current != nil {
		fmt.Fprintf(&sb, "▶️ %s: %s\n", snap.Current.Status, snap.Current.URL)
	}
	// Chat messages list at most 10 entries; the full snapshot is on the
	// HTTP /queue endpoint.
	for i, v := range snap.Pending {
		if i == 10 {
			fmt.Fprintf(&sb, "... and %d more\n", len(snap.Pending)-i)
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, v.URL)
	}
	fmt.Fprintf(&sb, "\n%d pending", len(snap.Pending))
	return sb.String()
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		log.Printf("telegram: reply failed: %v", err)
	}
}

// ValidateURL accepts only plausible direct-download links: an http(s)
// scheme, a minimum length, and no embedded whitespace.
func ValidateURL(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return domain.ErrInvalidURL
	}
	if len(url) < 10 {
		return domain.ErrInvalidURL
	}
	if strings.ContainsAny(url, " \t\n") {
		return domain.ErrInvalidURL
	}
	return nil
}
