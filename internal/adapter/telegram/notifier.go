// Package telegram is the Telegram-facing adapter: the bot command
// surface that feeds the queue, the Notifier for status messages, and
// the Uploader that relays artifacts to the destination group.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"relaybot/internal/domain"
)

// API is the slice of the Bot API client used by this package, kept as
// an interface so tests run without the network.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Notifier implements domain.Notifier on the Bot API.
type Notifier struct {
	api API
}

// NewNotifier creates a notifier over an established API client.
func NewNotifier(api API) *Notifier {
	return &Notifier{api: api}
}

// Send posts a new message as a reply to the submitter's message and
// returns the ref used for later progress edits.
func (n *Notifier) Send(sub domain.Submitter, text string) (domain.MessageRef, error) {
	msg := tgbotapi.NewMessage(sub.ChatID, text)
	msg.ReplyToMessageID = sub.MessageID
	sent, err := n.api.Send(msg)
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return domain.MessageRef{ChatID: sub.ChatID, MessageID: sent.MessageID}, nil
}

// Edit rewrites a previously sent message in place.
func (n *Notifier) Edit(ref domain.MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	if _, err := n.api.Request(edit); err != nil {
		return fmt.Errorf("edit message %d: %w", ref.MessageID, err)
	}
	return nil
}
