package queue

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// newTestRedisQueue connects to the Redis named by TEST_REDIS_ADDR, skipping
// the test when none is available.
func newTestRedisQueue(t *testing.T) *RedisQueue {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis queue integration test")
	}

	q, err := NewRedisQueue(context.Background(), RedisConfig{
		Addr: addr,
		Key:  "shift_reports_test",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_, _ = q.DrainAll(context.Background())
		_ = q.Close()
	})
	return q
}

func TestRedisQueueDrainPreservesFIFO(t *testing.T) {
	q := newTestRedisQueue(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, envelope(id)); err != nil {
			t.Fatalf("enqueue %s failed: %v", id, err)
		}
	}

	drained, err := q.DrainAll(ctx)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(drained) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(drained))
	}
	for index, id := range []string{"a", "b", "c"} {
		if drained[index].ID != id {
			t.Errorf("position %d: expected %s, got %s", index, id, drained[index].ID)
		}
	}

	second, err := q.DrainAll(ctx)
	if err != nil {
		t.Fatalf("second drain failed: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second drain should be empty, got %d entries", len(second))
	}
}

func TestRedisQueueEnqueueAfterDrainLandsInNextDrain(t *testing.T) {
	q := newTestRedisQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, envelope("before")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	first, err := q.DrainAll(ctx)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if err := q.Enqueue(ctx, envelope("after")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if len(first) != 1 || first[0].ID != "before" {
		t.Fatalf("first drain should hold only the pre-drain entry, got %v", first)
	}
	second, err := q.DrainAll(ctx)
	if err != nil {
		t.Fatalf("second drain failed: %v", err)
	}
	if len(second) != 1 || second[0].ID != "after" {
		t.Fatalf("post-drain entry must appear in the next drain, got %v", second)
	}
}

func TestRedisQueueSkipsUndecodableEntries(t *testing.T) {
	q := newTestRedisQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, envelope("good")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := q.client.RPush(ctx, q.key, "not json at all").Err(); err != nil {
		t.Fatalf("rpush raw entry failed: %v", err)
	}
	if err := q.Enqueue(ctx, envelope("also-good")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	drained, err := q.DrainAll(ctx)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(drained) != 2 || drained[0].ID != "good" || drained[1].ID != "also-good" {
		t.Fatalf("expected the two decodable entries in order, got %v", drained)
	}
}
