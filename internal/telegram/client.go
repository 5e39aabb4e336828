// Package telegram is a minimal Bot API client covering what the report bot
// needs: long-polled updates, replies, and message reactions.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var ErrBotTokenMissing = errors.New("telegram bot token is required")

type ClientConfig struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// SendRateRPS/SendRateBurst throttle outbound sends below the Bot API
	// global limit. Long polling is not throttled.
	SendRateRPS   float64
	SendRateBurst int
}

type Client struct {
	token      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	sendLimit  *rate.Limiter
}

// Update mirrors the subset of the Bot API update payload the bot consumes.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

func NewClient(cfg ClientConfig) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.SendRateRPS <= 0 {
		cfg.SendRateRPS = 20
	}
	if cfg.SendRateBurst <= 0 {
		cfg.SendRateBurst = 30
	}

	return &Client{
		token:      strings.TrimSpace(cfg.Token),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		sendLimit:  rate.NewLimiter(rate.Limit(cfg.SendRateRPS), cfg.SendRateBurst),
	}
}

func (c *Client) Available() bool {
	return c.token != ""
}

// SendMessage posts a plain text reply into a conversation.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.sendLimit.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// SetMessageReaction attaches an emoji reaction to a specific message.
func (c *Client) SetMessageReaction(ctx context.Context, chatID, messageID int64, emoji string) error {
	if err := c.sendLimit.Wait(ctx); err != nil {
		return err
	}
	return c.call(ctx, "setMessageReaction", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"reaction": []map[string]string{
			{"type": "emoji", "emoji": emoji},
		},
	}, nil)
}

// GetUpdates long-polls for new updates starting at offset. The HTTP timeout
// stretches past the poll window so the server side controls the wait.
func (c *Client) GetUpdates(ctx context.Context, offset int64, pollTimeout int) ([]Update, error) {
	var updates []Update
	err := c.callWithTimeout(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         pollTimeout,
		"allowed_updates": []string{"message"},
	}, &updates, time.Duration(pollTimeout+10)*time.Second)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any, result any) error {
	return c.callWithTimeout(ctx, method, payload, result, c.timeout)
}

func (c *Client) callWithTimeout(
	ctx context.Context,
	method string,
	payload map[string]any,
	result any,
	timeout time.Duration,
) error {
	if !c.Available() {
		return ErrBotTokenMissing
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := c.baseURL + "/bot" + c.token + "/" + method
	request, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s transport error: %w", method, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read %s body: %w", method, err)
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s failed: %s", method, envelope.Description)
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
