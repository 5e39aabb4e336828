package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

const startGreeting = "Hi! Send shift reports here and I will log them to the sheet."

// Handler receives each inbound non-command text message.
type Handler func(ctx context.Context, message domain.RawMessage)

// Poller drives the getUpdates long-poll loop and dispatches text messages.
type Poller struct {
	client      *Client
	handler     Handler
	logger      zerolog.Logger
	pollTimeout int
}

func NewPoller(client *Client, handler Handler, pollTimeout int, logger zerolog.Logger) *Poller {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Poller{
		client:      client,
		handler:     handler,
		logger:      logger,
		pollTimeout: pollTimeout,
	}
}

// Run polls until ctx is done. Transport errors back off and retry so one
// flaky poll never stops the bot.
func (p *Poller) Run(ctx context.Context) {
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error().Err(err).Msg("getUpdates failed")
			timer := time.NewTimer(2 * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.dispatch(ctx, update)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	text := update.Message.Text

	if strings.HasPrefix(text, "/") {
		if strings.HasPrefix(text, "/start") {
			if err := p.client.SendMessage(ctx, update.Message.Chat.ID, startGreeting); err != nil {
				p.logger.Error().Err(err).Msg("greeting send failed")
			}
		}
		return
	}

	p.handler(ctx, domain.RawMessage{
		ChatID:    update.Message.Chat.ID,
		MessageID: update.Message.MessageID,
		Text:      text,
	})
}
