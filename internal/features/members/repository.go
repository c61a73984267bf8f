// Package members — repository.go отвечает за все операции с таблицей members в БД.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package members

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/kamasbot/internal/common"
)

const memberColumns = `id, user_id, username, first_name, last_name,
	badge_role, middleman_badge, is_verified, is_middleman, is_banned,
	joined_at, created_at, updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет нового участника.
// На конфликте по user_id обновляет только имя/username — флаги и бейджи не трогает.
func (r *Repository) Create(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		m.UserID, m.Username, m.FirstName, m.LastName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("ошибка создания/обновления участника: %w", err)
	}
	return nil
}

// GetByUserID возвращает участника; common.ErrNotFound, если его нет.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE user_id = $1`
	m, err := r.scanMember(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("участник user_id=%d: %w", userID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения участника (user_id=%d): %w", userID, err)
	}
	return m, nil
}

// GetByUsername возвращает участника по @username (без @).
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE LOWER(username) = LOWER($1)`
	m, err := r.scanMember(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("участник username=%s: %w", username, common.ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения участника (username=%s): %w", username, err)
	}
	return m, nil
}

func (r *Repository) Exists(ctx context.Context, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки существования: %w", err)
	}
	return exists, nil
}

func (r *Repository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	query := `
		UPDATE members
		SET username = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	if _, err := r.db.Exec(ctx, query, userID, info.Username, info.FirstName, info.LastName); err != nil {
		return fmt.Errorf("ошибка обновления данных участника: %w", err)
	}
	return nil
}

// SetBadgeRole заменяет бейдж продавца. nil снимает бейдж.
func (r *Repository) SetBadgeRole(ctx context.Context, userID int64, badge *string) error {
	query := `UPDATE members SET badge_role = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, badge); err != nil {
		return fmt.Errorf("ошибка обновления бейджа: %w", err)
	}
	return nil
}

// SetMiddlemanBadge заменяет бейдж посредника. nil снимает бейдж.
func (r *Repository) SetMiddlemanBadge(ctx context.Context, userID int64, badge *string) error {
	query := `UPDATE members SET middleman_badge = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, badge); err != nil {
		return fmt.Errorf("ошибка обновления бейджа посредника: %w", err)
	}
	return nil
}

// SetVerified помечает участника верифицированным продавцом.
func (r *Repository) SetVerified(ctx context.Context, userID int64, verified bool) error {
	query := `UPDATE members SET is_verified = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, verified); err != nil {
		return fmt.Errorf("ошибка обновления верификации: %w", err)
	}
	return nil
}

// SetMiddleman помечает участника утверждённым посредником.
func (r *Repository) SetMiddleman(ctx context.Context, userID int64, middleman bool) error {
	query := `UPDATE members SET is_middleman = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, middleman); err != nil {
		return fmt.Errorf("ошибка обновления статуса посредника: %w", err)
	}
	return nil
}

// GetMiddlemen возвращает всех утверждённых посредников (для напоминаний).
func (r *Repository) GetMiddlemen(ctx context.Context) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE is_middleman = TRUE AND is_banned = FALSE ORDER BY first_name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса посредников: %w", err)
	}
	defer rows.Close()

	var out []*Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanMember(row rowScanner) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.BadgeRole, &m.MiddlemanBadge, &m.IsVerified, &m.IsMiddleman, &m.IsBanned,
		&m.JoinedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
