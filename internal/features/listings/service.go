package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/kamas"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Service struct {
	repo           *Repository
	client         platform.Client
	listingsChatID int64
}

func NewService(repo *Repository, client platform.Client, listingsChatID int64) *Service {
	return &Service{repo: repo, client: client, listingsChatID: listingsChatID}
}

// Publish валидирует черновик, сохраняет объявление и публикует его
// в канале объявлений с кнопкой открытия приватного обсуждения.
func (s *Service) Publish(ctx context.Context, draft *Draft) (*Listing, error) {
	l, err := ValidateDraft(draft)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	messageID, err := s.client.SendMessageWithButtons(s.listingsChatID, Render(l), ThreadButton(l))
	if err != nil {
		// Объявление уже в базе; восстановление перепубликует его.
		log.Errorf("listings: объявление %s сохранено, но не опубликовано: %v", l.ID, err)
		return l, nil
	}

	if err := s.repo.SetMessageID(ctx, l.ID, messageID); err != nil {
		log.Errorf("listings: не удалось привязать сообщение к объявлению %s: %v", l.ID, err)
	}
	l.MessageID = messageID

	log.Infof("listings: опубликовано объявление %s (%s, %s)", l.ID, l.Type, kamas.Format(l.Amount))
	return l, nil
}

// Get возвращает объявление по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// Repost заново публикует объявление, у которого пропало сообщение.
func (s *Service) Repost(ctx context.Context, l *Listing) error {
	messageID, err := s.client.SendMessageWithButtons(s.listingsChatID, Render(l), ThreadButton(l))
	if err != nil {
		return fmt.Errorf("перепубликация объявления %s: %w", l.ID, err)
	}
	return s.repo.SetMessageID(ctx, l.ID, messageID)
}

// ListActive возвращает все активные объявления.
func (s *Service) ListActive(ctx context.Context) ([]*Listing, error) {
	return s.repo.ListActive(ctx)
}

// ProbeMessage проверяет, живо ли сообщение объявления в канале.
// Возвращает common.ErrNotFound, если сообщение удалено.
func (s *Service) ProbeMessage(l *Listing) error {
	if l.MessageID == 0 {
		return common.ErrNotFound
	}
	return s.client.EditMessageButtons(s.listingsChatID, l.MessageID, ThreadButton(l))
}

// ArchiveStale архивирует объявления старше maxAge и убирает их
// сообщения из канала. Ошибка одного объявления не прерывает проход.
func (s *Service) ArchiveStale(ctx context.Context, maxAge time.Duration) (int, error) {
	stale, err := s.repo.ListActiveOlderThan(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, l := range stale {
		if err := s.repo.Archive(ctx, l.ID); err != nil {
			log.Errorf("listings: не удалось архивировать %s: %v", l.ID, err)
			continue
		}
		if l.MessageID != 0 {
			if err := s.client.DeleteMessage(s.listingsChatID, l.MessageID); err != nil &&
				!errors.Is(err, common.ErrNotFound) {
				log.Warnf("listings: сообщение объявления %s не удалено: %v", l.ID, err)
			}
		}
		archived++
	}
	if archived > 0 {
		log.Infof("listings: архивировано объявлений: %d", archived)
	}
	return archived, nil
}

// ThreadButton — кнопка «связаться» под сообщением объявления.
func ThreadButton(l *Listing) [][]platform.Button {
	return [][]platform.Button{{{Label: "💬 Contact", Data: "thread:" + l.ID}}}
}

// Render собирает текст сообщения объявления.
func Render(l *Listing) string {
	var b strings.Builder

	header := "🟢 SELLING"
	if l.Type == TypeBuy {
		header = "🔵 BUYING"
	}
	fmt.Fprintf(&b, "%s %s kamas\n\n", header, kamas.Format(l.Amount))
	fmt.Fprintf(&b, "💰 Price: %.2f %s / M\n", l.PricePerM, l.Currency)
	fmt.Fprintf(&b, "💳 Payment: %s\n", l.Payment)
	fmt.Fprintf(&b, "📞 Contact: %s\n", l.Contact)
	if l.Notes != "" {
		fmt.Fprintf(&b, "📝 Notes: %s\n", l.Notes)
	}
	if l.Split != nil {
		fmt.Fprintf(&b, "\n⚠️ Large amount — payment in two parts: %s + %s\n",
			kamas.Format(l.Split.FirstHalf), kamas.Format(l.Split.SecondHalf))
	}
	fmt.Fprintf(&b, "\n👤 Seller: %s", l.OwnerName)
	return b.String()
}
