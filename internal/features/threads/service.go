// Package threads управляет приватными обсуждениями сделок:
// по кнопке под объявлением покупатель получает отдельную тему
// с продавцом. Привязки живут в таблице записей и переживают рестарт.
package threads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/platform"
	"serotonyl.ru/kamasbot/internal/store"
)

type Service struct {
	records     *store.Store
	client      platform.Client
	panelChatID int64
}

func NewService(records *store.Store, client platform.Client, panelChatID int64) *Service {
	return &Service{records: records, client: client, panelChatID: panelChatID}
}

func pairKey(sellerID, buyerID int64) string {
	return fmt.Sprintf("%d:%d", sellerID, buyerID)
}

// Open выдаёт покупателю приватное обсуждение с продавцом объявления.
// Живая привязка переиспользуется; протухшая заменяется новой темой.
func (s *Service) Open(ctx context.Context, listingID string, sellerID, buyerID int64) (*Link, bool, error) {
	if sellerID == buyerID {
		return nil, false, common.ErrInvalidState
	}

	key := pairKey(sellerID, buyerID)
	if rec, err := s.records.Get(ctx, store.KindThreadLink, key); err == nil {
		var link Link
		if err := json.Unmarshal(rec.Payload, &link); err == nil {
			if s.client.ThreadExists(s.panelChatID, link.ThreadID) {
				return &link, true, nil
			}
			// Тема удалена руками — привязка мёртвая, снимаем её.
			if err := s.records.Delete(ctx, store.KindThreadLink, key); err != nil &&
				!errors.Is(err, common.ErrNotFound) {
				log.Warnf("threads: не удалось снять мёртвую привязку %s: %v", key, err)
			}
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, false, fmt.Errorf("чтение привязки обсуждения: %w", err)
	}

	name := threadName()
	threadID, err := s.client.CreateThread(s.panelChatID, name)
	if err != nil {
		return nil, false, fmt.Errorf("создание обсуждения: %w", err)
	}

	link := &Link{
		ThreadID:  threadID,
		ListingID: listingID,
		SellerID:  sellerID,
		BuyerID:   buyerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(link)
	if err != nil {
		return nil, false, fmt.Errorf("сериализация привязки: %w", err)
	}
	// Живой привязки на ключе нет (проверено выше), поэтому строго append.
	if err := s.records.Append(ctx, store.KindThreadLink, key, payload); err != nil {
		return nil, false, fmt.Errorf("сохранение привязки: %w", err)
	}

	log.Infof("threads: открыто обсуждение %s (продавец %d, покупатель %d)", name, sellerID, buyerID)
	return link, false, nil
}

// Close закрывает обсуждение пары, снимает привязку и возвращает её,
// чтобы вызывающий знал, кто в паре продавец. Закрытие уже закрытой
// темы не считается ошибкой.
func (s *Service) Close(ctx context.Context, sellerID, buyerID int64) (*Link, error) {
	key := pairKey(sellerID, buyerID)
	rec, err := s.records.Get(ctx, store.KindThreadLink, key)
	if err != nil {
		return nil, err
	}
	var link Link
	if err := json.Unmarshal(rec.Payload, &link); err != nil {
		return nil, fmt.Errorf("разбор привязки %s: %w", key, err)
	}

	if err := s.client.CloseThread(s.panelChatID, link.ThreadID); err != nil &&
		!errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("закрытие обсуждения %d: %w", link.ThreadID, err)
	}
	if err := s.records.Delete(ctx, store.KindThreadLink, key); err != nil &&
		!errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return &link, nil
}

// Links возвращает все сохранённые привязки (для восстановления).
func (s *Service) Links(ctx context.Context) ([]*Link, error) {
	recs, err := s.records.List(ctx, store.KindThreadLink, "", 0)
	if err != nil {
		return nil, err
	}
	links := make([]*Link, 0, len(recs))
	for _, rec := range recs {
		var link Link
		if err := json.Unmarshal(rec.Payload, &link); err != nil {
			log.Warnf("threads: пропущена нечитаемая привязка %s: %v", rec.Key, err)
			continue
		}
		links = append(links, &link)
	}
	return links, nil
}

// Greet отправляет в свежую тему приветствие участникам сделки.
func (s *Service) Greet(link *Link, text string) {
	if _, err := s.client.SendToThread(s.panelChatID, link.ThreadID, text); err != nil {
		log.Warnf("threads: приветствие в тему %d не доставлено: %v", link.ThreadID, err)
	}
}

// LatestLinkAsSeller возвращает самую свежую привязку, где пользователь
// выступает продавцом. Позволяет закрыть обсуждение без явного
// указания второй стороны.
func (s *Service) LatestLinkAsSeller(ctx context.Context, sellerID int64) (*Link, error) {
	rec, err := s.records.Find(ctx, store.KindThreadLink, fmt.Sprintf("%d:", sellerID))
	if err != nil {
		return nil, err
	}
	var link Link
	if err := json.Unmarshal(rec.Payload, &link); err != nil {
		return nil, fmt.Errorf("разбор привязки %s: %w", rec.Key, err)
	}
	return &link, nil
}

// DropLink снимает привязку без закрытия темы (для восстановления,
// когда тема уже исчезла).
func (s *Service) DropLink(ctx context.Context, link *Link) error {
	return s.records.Delete(ctx, store.KindThreadLink, pairKey(link.SellerID, link.BuyerID))
}

// ThreadAlive проверяет, существует ли тема привязки.
func (s *Service) ThreadAlive(link *Link) bool {
	return s.client.ThreadExists(s.panelChatID, link.ThreadID)
}

func threadName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "Transaction-" + id
}
