package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/kamas"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listingColumns = `id, listing_type, owner_id, owner_name, amount, price_per_m,
	payment, contact, notes, currency, split_first, split_second,
	message_id, archived, created_at, updated_at`

// Create сохраняет объявление и проставляет ему идентификатор.
func (r *Repository) Create(ctx context.Context, l *Listing) error {
	l.ID = ulid.Make().String()

	var first, second *float64
	if l.Split != nil {
		first, second = &l.Split.FirstHalf, &l.Split.SecondHalf
	}

	query := `
		INSERT INTO listings (id, listing_type, owner_id, owner_name, amount, price_per_m,
			payment, contact, notes, currency, split_first, split_second)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		l.ID, l.Type, l.OwnerID, l.OwnerName, l.Amount, l.PricePerM,
		l.Payment, l.Contact, l.Notes, l.Currency, first, second,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("не удалось сохранить объявление: %w", err)
	}
	return nil
}

// GetByID возвращает объявление по идентификатору.
func (r *Repository) GetByID(ctx context.Context, id string) (*Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("не удалось получить объявление: %w", err)
	}
	return l, nil
}

// SetMessageID привязывает объявление к опубликованному сообщению.
func (r *Repository) SetMessageID(ctx context.Context, id string, messageID int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET message_id = $2, updated_at = NOW() WHERE id = $1`,
		id, messageID)
	if err != nil {
		return fmt.Errorf("не удалось привязать сообщение: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Archive помечает объявление архивным.
func (r *Repository) Archive(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE listings SET archived = TRUE, updated_at = NOW() WHERE id = $1 AND NOT archived`,
		id)
	if err != nil {
		return fmt.Errorf("не удалось архивировать объявление: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ListActiveOlderThan возвращает активные объявления старше cutoff —
// кандидатов на архивацию.
func (r *Repository) ListActiveOlderThan(ctx context.Context, cutoff time.Time) ([]*Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE NOT archived AND created_at < $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("не удалось выбрать устаревшие объявления: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

// ListActive возвращает все активные объявления (для восстановления).
func (r *Repository) ListActive(ctx context.Context) ([]*Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE NOT archived ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("не удалось выбрать активные объявления: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

// ListArchivedSince возвращает архивные объявления за отчётный период.
func (r *Repository) ListArchivedSince(ctx context.Context, since time.Time) ([]*Listing, error) {
	query := `SELECT ` + listingColumns + `
		FROM listings
		WHERE archived AND created_at >= $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("не удалось выбрать архив за период: %w", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

// CountByOwnerBefore считает объявления продавца, созданные до отметки.
// Ноль означает, что в отчётном окне продавец новый.
func (r *Repository) CountByOwnerBefore(ctx context.Context, ownerID int64, before time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listings WHERE owner_id = $1 AND created_at < $2`,
		ownerID, before).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("не удалось посчитать объявления продавца: %w", err)
	}
	return count, nil
}

func collectListings(rows pgx.Rows) ([]*Listing, error) {
	var result []*Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки объявления: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var (
		l             Listing
		first, second *float64
		messageID     *int
	)
	err := row.Scan(
		&l.ID, &l.Type, &l.OwnerID, &l.OwnerName, &l.Amount, &l.PricePerM,
		&l.Payment, &l.Contact, &l.Notes, &l.Currency, &first, &second,
		&messageID, &l.Archived, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if first != nil && second != nil {
		l.Split = &kamas.PaymentSplit{FirstHalf: *first, SecondHalf: *second}
	}
	if messageID != nil {
		l.MessageID = *messageID
	}
	return &l, nil
}
