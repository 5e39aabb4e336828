package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisQueue keeps the report buffer on a Redis list so pending reports
// survive process restarts. Envelopes travel as JSON.
type RedisQueue struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

// drainScript reads and deletes the whole list in one atomic step, which
// gives DrainAll the same snapshot semantics as the in-memory queue.
var drainScript = redis.NewScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
redis.call('DEL', KEYS[1])
return items
`)

func NewRedisQueue(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisQueue, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if cfg.Key == "" {
		cfg.Key = "shift_reports"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisQueue{client: client, key: cfg.Key, logger: logger}, nil
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func (q *RedisQueue) Enqueue(ctx context.Context, envelope domain.ReportEnvelope) error {
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, encoded).Err(); err != nil {
		return fmt.Errorf("rpush envelope: %w", err)
	}
	return nil
}

func (q *RedisQueue) DrainAll(ctx context.Context) ([]domain.ReportEnvelope, error) {
	raw, err := drainScript.Run(ctx, q.client, []string{q.key}).StringSlice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("drain list: %w", err)
	}

	envelopes := make([]domain.ReportEnvelope, 0, len(raw))
	for _, item := range raw {
		var envelope domain.ReportEnvelope
		if err := json.Unmarshal([]byte(item), &envelope); err != nil {
			q.logger.Error().Err(err).Str("payload", item).Msg("dropping undecodable queue entry")
			continue
		}
		envelopes = append(envelopes, envelope)
	}
	return envelopes, nil
}
