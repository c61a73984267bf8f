// Package store реализует универсальное хранилище записей маркетплейса.
// Исторически такие записи жили файлами-вложениями в служебных каналах
// и искались перебором последних N сообщений; здесь тот же контракт
// (append/find/update/delete по ключу) положен на индексированную
// таблицу Postgres, поэтому потолка «видим только недавнее» больше нет.
//
// Идентичность записи полностью восстанавливается из пары (kind, key):
// ключи — ULID либо составные теги вида "thread:<seller>:<buyer>".
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/kamasbot/internal/common"
)

// Виды записей.
const (
	KindThreadLink = "thread_link" // ветка обсуждения (seller, buyer) → topic id
	KindLanguage   = "language"    // языковые настройки пользователя
	KindPanel      = "panel"       // ID сообщения торговой панели
)

// Record — одна запись хранилища.
type Record struct {
	Kind    string
	Key     string
	Payload []byte
}

// Store работает с таблицей records.
type Store struct {
	db *pgxpool.Pool
}

// New создаёт хранилище записей.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Append добавляет новую запись. Существующий ключ — ошибка:
// append никогда не перезаписывает.
func (s *Store) Append(ctx context.Context, kind, key string, payload []byte) error {
	query := `
		INSERT INTO records (kind, record_key, payload)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.Exec(ctx, query, kind, key, payload); err != nil {
		return fmt.Errorf("append %s/%s: %w", kind, key, err)
	}
	return nil
}

// Put создаёт запись или перезаписывает существующую.
// Для записей «не больше одной на ключ»: языковые настройки, панель.
func (s *Store) Put(ctx context.Context, kind, key string, payload []byte) error {
	query := `
		INSERT INTO records (kind, record_key, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, record_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, kind, key, payload); err != nil {
		return fmt.Errorf("put %s/%s: %w", kind, key, err)
	}
	return nil
}

// Get возвращает запись по точному ключу.
func (s *Store) Get(ctx context.Context, kind, key string) (*Record, error) {
	query := `SELECT payload FROM records WHERE kind = $1 AND record_key = $2`
	r := Record{Kind: kind, Key: key}
	err := s.db.QueryRow(ctx, query, kind, key).Scan(&r.Payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", kind, key, err)
	}
	return &r, nil
}

// Find возвращает самую свежую запись, ключ которой начинается с prefix.
func (s *Store) Find(ctx context.Context, kind, prefix string) (*Record, error) {
	query := `
		SELECT record_key, payload FROM records
		WHERE kind = $1 AND record_key LIKE $2 || '%'
		ORDER BY created_at DESC
		LIMIT 1
	`
	r := Record{Kind: kind}
	err := s.db.QueryRow(ctx, query, kind, prefix).Scan(&r.Key, &r.Payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s/%s*: %w", kind, prefix, err)
	}
	return &r, nil
}

// List возвращает до limit записей вида kind с данным префиксом ключа,
// от новых к старым. limit <= 0 — без ограничения.
func (s *Store) List(ctx context.Context, kind, prefix string, limit int) ([]*Record, error) {
	query := `
		SELECT record_key, payload FROM records
		WHERE kind = $1 AND record_key LIKE $2 || '%'
		ORDER BY created_at DESC
	`
	args := []interface{}{kind, prefix}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s/%s*: %w", kind, prefix, err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r := Record{Kind: kind}
		if err := rows.Scan(&r.Key, &r.Payload); err != nil {
			return nil, fmt.Errorf("scan записи: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Update заменяет payload существующей записи.
func (s *Store) Update(ctx context.Context, kind, key string, payload []byte) error {
	query := `
		UPDATE records SET payload = $3, updated_at = NOW()
		WHERE kind = $1 AND record_key = $2
	`
	tag, err := s.db.Exec(ctx, query, kind, key, payload)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", kind, key, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete удаляет запись.
func (s *Store) Delete(ctx context.Context, kind, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM records WHERE kind = $1 AND record_key = $2`, kind, key)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, key, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
