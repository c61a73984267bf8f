package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"serotonyl.ru/kamasbot/internal/common"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const escrowColumns = `id, buyer_id, seller_id, middleman_id, amount, fee, status,
	dispute_by, dispute_reason, disputed_at,
	created_at, updated_at, expires_at`

// Create сохраняет новую сделку в статусе pending.
func (r *Repository) Create(ctx context.Context, e *Escrow) error {
	e.ID = ulid.Make().String()
	e.Status = StatusPending

	query := `
		INSERT INTO escrows (id, buyer_id, seller_id, middleman_id, amount, fee, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		e.ID, e.BuyerID, e.SellerID, e.MiddlemanID, e.Amount, e.Fee, e.ExpiresAt,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("не удалось сохранить сделку: %w", err)
	}
	return nil
}

// GetByID возвращает сделку по идентификатору.
func (r *Repository) GetByID(ctx context.Context, id string) (*Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1`

	e, err := scanEscrow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("не удалось получить сделку: %w", err)
	}
	return e, nil
}

// Transition переводит сделку из pending в конечный статус.
// Условие в WHERE делает переход атомарным: конкурирующий переход
// увидит ноль затронутых строк и получит ErrInvalidState.
func (r *Repository) Transition(ctx context.Context, id, to string) error {
	if !CanTransition(StatusPending, to) {
		return common.ErrInvalidState
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE escrows SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, to, StatusPending)
	if err != nil {
		return fmt.Errorf("не удалось перевести сделку в %s: %w", to, err)
	}
	if tag.RowsAffected() == 0 {
		// Либо сделки нет, либо она уже закрыта.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return common.ErrInvalidState
	}
	return nil
}

// Dispute переводит сделку в disputed и фиксирует, кто и почему
// открыл спор. Та же атомарная защита, что и в Transition.
func (r *Repository) Dispute(ctx context.Context, id string, filer int64, reason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE escrows
		SET status = $2, dispute_by = $3, dispute_reason = $4,
			disputed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $5`,
		id, StatusDisputed, filer, reason, StatusPending)
	if err != nil {
		return fmt.Errorf("не удалось открыть спор по сделке: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return common.ErrInvalidState
	}
	return nil
}

// ListExpiredPending возвращает просроченные сделки в статусе pending.
func (r *Repository) ListExpiredPending(ctx context.Context, now time.Time) ([]*Escrow, error) {
	query := `SELECT ` + escrowColumns + `
		FROM escrows
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at`

	rows, err := r.pool.Query(ctx, query, StatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("не удалось выбрать просроченные сделки: %w", err)
	}
	defer rows.Close()

	var result []*Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки сделки: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// StatsFor собирает статистику гаранта по закрытым сделкам.
// Висящие pending в статистику не входят.
func (r *Repository) StatsFor(ctx context.Context, middlemanID int64) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status <> $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM escrows
		WHERE middleman_id = $1`

	stats := &Stats{MiddlemanID: middlemanID}
	err := r.pool.QueryRow(ctx, query, middlemanID, StatusPending, StatusCompleted).
		Scan(&stats.Total, &stats.Completed)
	if err != nil {
		return nil, fmt.Errorf("не удалось посчитать статистику гаранта: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEscrow(row rowScanner) (*Escrow, error) {
	var e Escrow
	err := row.Scan(
		&e.ID, &e.BuyerID, &e.SellerID, &e.MiddlemanID, &e.Amount, &e.Fee, &e.Status,
		&e.DisputedBy, &e.DisputeReason, &e.DisputedAt,
		&e.CreatedAt, &e.UpdatedAt, &e.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
