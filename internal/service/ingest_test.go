package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
	"github.com/renzyndrome/tasty-telegram-bot/internal/queue"
)

const wellFormedReport = `Summary of Tips and VIPs for Jane
March 3, 2024 8AM-4PM PST
Shift (8 hours)
Creator: @jane
$50 TIP from @bob
TOTAL GROSS SALE: $500
TOTAL NET SALE: $450`

type recordingTransport struct {
	mu          sync.Mutex
	replies     []string
	reactions   []int64
	sendErr     error
	reactionErr error
}

func (t *recordingTransport) SendMessage(_ context.Context, _ int64, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.replies = append(t.replies, text)
	return nil
}

func (t *recordingTransport) SetMessageReaction(_ context.Context, _ int64, messageID int64, _ string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reactionErr != nil {
		return t.reactionErr
	}
	t.reactions = append(t.reactions, messageID)
	return nil
}

func TestHandleMessageAcceptsWellFormedReport(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	transport := &recordingTransport{}
	ingestor := NewIngestor(q, transport, nil, zerolog.Nop())

	ingestor.HandleMessage(ctx, domain.RawMessage{ChatID: -100200, MessageID: 7, Text: wellFormedReport})

	drained, _ := q.DrainAll(ctx)
	if len(drained) != 1 {
		t.Fatalf("expected 1 enqueued report, got %d", len(drained))
	}
	envelope := drained[0]
	if envelope.ID == "" {
		t.Errorf("envelope should carry a generated id")
	}
	if envelope.ChatID != -100200 || envelope.MessageID != 7 {
		t.Errorf("envelope should keep message identity, got chat=%d message=%d", envelope.ChatID, envelope.MessageID)
	}
	if got := envelope.Fields[domain.FieldSourceLink]; got != "https://t.me/c/-100200/7" {
		t.Errorf("unexpected source link %q", got)
	}
	if got := envelope.Fields[domain.FieldPPVs]; got != domain.ZeroAmount {
		t.Errorf("optional money field should be zero-filled, got %q", got)
	}

	if len(transport.reactions) != 1 || transport.reactions[0] != 7 {
		t.Errorf("expected success reaction on message 7, got %v", transport.reactions)
	}
	if len(transport.replies) != 0 {
		t.Errorf("accepted reports must not get a text reply, got %v", transport.replies)
	}
}

func TestHandleMessageIgnoresTextWithoutTrigger(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	transport := &recordingTransport{}
	ingestor := NewIngestor(q, transport, nil, zerolog.Nop())

	ingestor.HandleMessage(ctx, domain.RawMessage{ChatID: 1, MessageID: 2, Text: "lunch anyone?"})

	if drained, _ := q.DrainAll(ctx); len(drained) != 0 {
		t.Fatalf("nothing should be enqueued, got %d", len(drained))
	}
	if len(transport.replies) != 0 || len(transport.reactions) != 0 {
		t.Fatalf("no acknowledgement expected, got replies=%v reactions=%v", transport.replies, transport.reactions)
	}
}

func TestHandleMessageRepliesOnRejection(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	transport := &recordingTransport{}
	ingestor := NewIngestor(q, transport, nil, zerolog.Nop())

	ingestor.HandleMessage(ctx, domain.RawMessage{
		ChatID:    1,
		MessageID: 2,
		Text:      "Summary of Tips and VIPs for Jane",
	})

	if drained, _ := q.DrainAll(ctx); len(drained) != 0 {
		t.Fatalf("rejected report must not be enqueued, got %d", len(drained))
	}
	if len(transport.replies) != 1 {
		t.Fatalf("expected 1 rejection reply, got %d", len(transport.replies))
	}
	reply := transport.replies[0]
	if !strings.Contains(reply, "missing required fields") || !strings.Contains(reply, "Expected format") {
		t.Errorf("reply should explain the rejection and the format, got %q", reply)
	}
	if len(transport.reactions) != 0 {
		t.Errorf("rejected reports get no success reaction, got %v", transport.reactions)
	}
}

func TestHandleMessageKeepsReportWhenAcknowledgementFails(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	transport := &recordingTransport{reactionErr: errors.New("transport down")}
	ingestor := NewIngestor(q, transport, nil, zerolog.Nop())

	ingestor.HandleMessage(ctx, domain.RawMessage{ChatID: 1, MessageID: 2, Text: wellFormedReport})

	drained, _ := q.DrainAll(ctx)
	if len(drained) != 1 {
		t.Fatalf("enqueue happens before acknowledgement, expected 1 entry, got %d", len(drained))
	}
}

func TestHandleMessageHonorsRequiredFieldOverride(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemoryQueue()
	transport := &recordingTransport{}
	ingestor := NewIngestor(q, transport, []domain.Field{domain.FieldName}, zerolog.Nop())

	ingestor.HandleMessage(ctx, domain.RawMessage{
		ChatID:    1,
		MessageID: 2,
		Text:      "Summary of Tips and VIPs for Jane",
	})

	if drained, _ := q.DrainAll(ctx); len(drained) != 1 {
		t.Fatalf("name-only required set should accept, got %d entries", len(drained))
	}
}
