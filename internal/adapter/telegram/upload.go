package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relaybot/internal/progress"
	"relaybot/internal/relay"
)

// Uploader implements relay.Uploader: it streams artifacts to the fixed
// destination group as inline-playable video. The Bot API client is
// created on Connect so a bad token surfaces as a job failure, not a
// crash at startup.
type Uploader struct {
	token  string
	chatID int64
	bot    *tgbotapi.BotAPI
}

// NewUploader creates an uploader for the destination group.
func NewUploader(token string, chatID int64) *Uploader {
	return &Uploader{token: token, chatID: chatID}
}

// Connect establishes the Bot API session.
func (u *Uploader) Connect(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(u.token)
	if err != nil {
		return fmt.Errorf("bot api login: %w", err)
	}
	u.bot = bot
	log.Printf("telegram: upload session ready as @%s", bot.Self.UserName)
	return nil
}

// Upload streams one artifact as video. The Bot API has no width/height
// fields on video sends; duration plus supports_streaming is enough for
// inline playback, so meta dimensions are not forwarded.
func (u *Uploader) Upload(ctx context.Context, path string, meta relay.Meta, sink progress.Sink) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	cr := &countingReader{ctx: ctx, r: f, total: meta.Size, sink: sink, started: time.Now()}

	video := tgbotapi.NewVideo(u.chatID, tgbotapi.FileReader{Name: meta.FileName, Reader: cr})
	video.Duration = meta.Duration
	video.SupportsStreaming = true
	video.Caption = fmt.Sprintf("📹 %s (%s)", meta.FileName, humanize.Bytes(uint64(meta.Size)))

	if _, err := u.bot.Send(video); err != nil {
		return fmt.Errorf("send video: %w", err)
	}
	sink.Report(progress.Update{Percent: 100, Done: meta.Size, Total: meta.Size})
	return nil
}

// countingReader reports upload progress as the multipart body is read.
// Percent is capped below 100 until the API call returns; the caller
// reports the final update.
type countingReader struct {
	ctx     context.Context
	r       io.Reader
	total   int64
	sink    progress.Sink
	started time.Time
	done    atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.r.Read(p)
	if n > 0 {
		done := c.done.Add(int64(n))
		u := progress.Update{Done: done, Total: c.total}
		if c.total > 0 {
			u.Percent = float64(done) / float64(c.total) * 100
			if u.Percent > 99.9 {
				u.Percent = 99.9
			}
		}
		if elapsed := time.Since(c.started).Seconds(); elapsed > 0 {
			u.Speed = float64(done) / elapsed
		}
		c.sink.Report(u)
	}
	return n, err
}
