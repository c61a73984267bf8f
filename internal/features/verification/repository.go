package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/kamasbot/internal/common"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const applicationColumns = `id, user_id, phone_hash, social_platform, social_handle,
	experience, status, reason, created_at, reviewed_at, reviewed_by`

// Create сохраняет новую заявку в статусе pending.
func (r *Repository) Create(ctx context.Context, a *Application) error {
	a.Status = StatusPending

	query := `
		INSERT INTO verifications (user_id, phone_hash, social_platform, social_handle, experience)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		a.UserID, a.PhoneHash, a.SocialPlatform, a.SocialHandle, a.Experience,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("не удалось сохранить заявку: %w", err)
	}
	return nil
}

// GetPendingByUser возвращает открытую заявку пользователя.
func (r *Repository) GetPendingByUser(ctx context.Context, userID int64) (*Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM verifications
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`

	a, err := scanApplication(r.pool.QueryRow(ctx, query, userID, StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("не удалось получить заявку: %w", err)
	}
	return a, nil
}

// GetByID возвращает заявку по идентификатору.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM verifications WHERE id = $1`

	a, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("не удалось получить заявку: %w", err)
	}
	return a, nil
}

// Review закрывает открытую заявку решением модератора.
// Условие по статусу в WHERE защищает от двойного решения.
func (r *Repository) Review(ctx context.Context, id int64, status, reason string, reviewerID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE verifications
		SET status = $2, reason = $3, reviewed_at = NOW(), reviewed_by = $4
		WHERE id = $1 AND status = $5`,
		id, status, reason, reviewerID, StatusPending)
	if err != nil {
		return fmt.Errorf("не удалось закрыть заявку: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return common.ErrInvalidState
	}
	return nil
}

// ListPending возвращает открытые заявки, старые первыми.
func (r *Repository) ListPending(ctx context.Context) ([]*Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM verifications
		WHERE status = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("не удалось выбрать открытые заявки: %w", err)
	}
	defer rows.Close()

	var result []*Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки заявки: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*Application, error) {
	var a Application
	err := row.Scan(
		&a.ID, &a.UserID, &a.PhoneHash, &a.SocialPlatform, &a.SocialHandle,
		&a.Experience, &a.Status, &a.Reason, &a.CreatedAt, &a.ReviewedAt, &a.ReviewedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
