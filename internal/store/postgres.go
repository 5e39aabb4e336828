package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
)

// PostgresStore appends report rows to a shift_reports table for self-hosted
// deployments that prefer a database over a spreadsheet.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) AppendRow(ctx context.Context, cells []string) error {
	if len(cells) != len(domain.ColumnOrder) {
		return fmt.Errorf("expected %d cells, got %d", len(domain.ColumnOrder), len(cells))
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO shift_reports (
			id,
			name,
			report_date,
			shift_label,
			shift_duration_hours,
			creator_handle,
			vip_tip_amounts,
			ppv_amounts,
			gross_sale_amount,
			net_sale_amount,
			bonus_amount,
			source_link,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		uuid.NewString(),
		cells[0],
		cells[1],
		cells[2],
		cells[3],
		cells[4],
		cells[5],
		cells[6],
		cells[7],
		cells[8],
		cells[9],
		cells[10],
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert shift report: %w", err)
	}
	return nil
}
