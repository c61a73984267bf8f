package language

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/store"
)

// Service хранит языковые предпочтения пользователей в общем
// хранилище записей (kind=language, ключ — user id).
type Service struct {
	records   *store.Store
	supported []string
	fallback  string
}

func NewService(records *store.Store, supported []string, fallback string) *Service {
	return &Service{records: records, supported: supported, fallback: fallback}
}

func key(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// Get возвращает язык пользователя, либо язык по умолчанию.
func (s *Service) Get(ctx context.Context, userID int64) string {
	rec, err := s.records.Get(ctx, store.KindLanguage, key(userID))
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.Errorf("language: не удалось прочитать предпочтение пользователя %d: %v", userID, err)
		}
		return s.fallback
	}
	code := string(rec.Payload)
	if !s.IsSupported(code) {
		return s.fallback
	}
	return code
}

// Set сохраняет предпочтение. Код нормализуется к нижнему регистру.
func (s *Service) Set(ctx context.Context, userID int64, code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	if !s.IsSupported(code) {
		return fmt.Errorf("язык %q: %w", code, common.ErrUnsupportedLanguage)
	}
	if err := s.records.Put(ctx, store.KindLanguage, key(userID), []byte(code)); err != nil {
		return fmt.Errorf("сохранение языка: %w", err)
	}
	return nil
}

func (s *Service) IsSupported(code string) bool {
	for _, c := range s.supported {
		if c == code {
			return true
		}
	}
	return false
}

func (s *Service) Supported() []string {
	return s.supported
}
