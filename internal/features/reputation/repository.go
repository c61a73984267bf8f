package reputation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AddEvent дописывает отзыв в ленту событий.
func (r *Repository) AddEvent(ctx context.Context, sellerID, raterID int64, kind string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reputation_events (seller_id, rater_id, kind) VALUES ($1, $2, $3)`,
		sellerID, raterID, kind)
	if err != nil {
		return fmt.Errorf("не удалось записать отзыв: %w", err)
	}
	return nil
}

// ScoreFor агрегирует репутацию продавца по ленте событий.
// Продавец без отзывов получает нулевой агрегат, не ошибку.
func (r *Repository) ScoreFor(ctx context.Context, sellerID int64) (*Score, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = $2),
			COUNT(*) FILTER (WHERE kind = $3),
			COUNT(*)
		FROM reputation_events
		WHERE seller_id = $1`

	score := &Score{SellerID: sellerID}
	err := r.pool.QueryRow(ctx, query, sellerID, KindPositive, KindNegative).
		Scan(&score.Positive, &score.Negative, &score.Total)
	if err != nil {
		return nil, fmt.Errorf("не удалось посчитать репутацию: %w", err)
	}
	return score, nil
}
