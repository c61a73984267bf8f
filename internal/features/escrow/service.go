// Package escrow реализует сделки через гаранта: открытие с комиссией,
// единственный переход из pending в конечный статус и бейджи гарантов
// по статистике закрытых сделок.
package escrow

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/members"
	"serotonyl.ru/kamasbot/internal/kamas"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Config struct {
	FeePercent float64
	Timeout    time.Duration
	MinAmount  float64
}

type Service struct {
	repo    *Repository
	members *members.Repository
	client  platform.Client
	cfg     Config
}

func NewService(repo *Repository, membersRepo *members.Repository, client platform.Client, cfg Config) *Service {
	return &Service{repo: repo, members: membersRepo, client: client, cfg: cfg}
}

// Open открывает сделку: считает комиссию, назначает срок и пишет в базу.
func (s *Service) Open(ctx context.Context, buyerID, sellerID, middlemanID int64, amount float64) (*Escrow, error) {
	if amount < s.cfg.MinAmount {
		return nil, fmt.Errorf("сумма %s ниже минимума: %w", kamas.Format(amount), common.ErrBelowMinimum)
	}

	e := &Escrow{
		BuyerID:     buyerID,
		SellerID:    sellerID,
		MiddlemanID: middlemanID,
		Amount:      amount,
		Fee:         Fee(amount, s.cfg.FeePercent),
		ExpiresAt:   time.Now().UTC().Add(s.cfg.Timeout),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	log.Infof("escrow: открыта сделка %s на %s (комиссия %s, гарант %d)",
		e.ID, kamas.Format(e.Amount), kamas.Format(e.Fee), middlemanID)
	return e, nil
}

// Get возвращает сделку по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (*Escrow, error) {
	return s.repo.GetByID(ctx, id)
}

// Complete закрывает сделку успехом и пересчитывает бейдж гаранта.
func (s *Service) Complete(ctx context.Context, id string) (*Escrow, error) {
	e, err := s.finish(ctx, id, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.SyncMiddlemanBadge(ctx, e.MiddlemanID); err != nil {
		log.Errorf("escrow: пересчёт бейджа гаранта %d: %v", e.MiddlemanID, err)
	}
	return e, nil
}

// Dispute переводит сделку в спор и фиксирует, кто и почему его
// открыл. Спор открывается только из pending.
func (s *Service) Dispute(ctx context.Context, id string, filer int64, reason string) (*Escrow, error) {
	if err := s.repo.Dispute(ctx, id, filer, reason); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Infof("escrow: по сделке %s открыт спор (инициатор %d)", id, filer)
	return e, nil
}

// Cancel отменяет сделку. Отмена допустима только из pending.
func (s *Service) Cancel(ctx context.Context, id string) (*Escrow, error) {
	return s.finish(ctx, id, StatusCancelled)
}

func (s *Service) finish(ctx context.Context, id, status string) (*Escrow, error) {
	if err := s.repo.Transition(ctx, id, status); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Infof("escrow: сделка %s -> %s", id, status)
	return e, nil
}

// ExpireStale закрывает просроченные pending-сделки и извещает стороны.
// Ошибка одной сделки не прерывает проход.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.repo.ListExpiredPending(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, e := range stale {
		if err := s.repo.Transition(ctx, e.ID, StatusExpired); err != nil {
			log.Errorf("escrow: просроченная сделка %s не закрыта: %v", e.ID, err)
			continue
		}
		expired++
		for _, userID := range []int64{e.BuyerID, e.SellerID, e.MiddlemanID} {
			if err := s.client.SendDM(userID, fmt.Sprintf(
				"⌛ Escrow %s expired after %s without completion.", e.ID, s.cfg.Timeout)); err != nil {
				log.Warnf("escrow: уведомление о просрочке %s для %d не доставлено: %v", e.ID, userID, err)
			}
		}
	}
	if expired > 0 {
		log.Infof("escrow: закрыто просроченных сделок: %d", expired)
	}
	return expired, nil
}

// StatsFor возвращает статистику гаранта.
func (s *Service) StatsFor(ctx context.Context, middlemanID int64) (*Stats, error) {
	return s.repo.StatsFor(ctx, middlemanID)
}

// SyncMiddlemanBadge пересчитывает ступень бейджа гаранта и объявляет
// о повышении.
func (s *Service) SyncMiddlemanBadge(ctx context.Context, middlemanID int64) error {
	stats, err := s.repo.StatsFor(ctx, middlemanID)
	if err != nil {
		return err
	}
	tier := TierFor(*stats)

	member, err := s.members.GetByUserID(ctx, middlemanID)
	if err != nil {
		return fmt.Errorf("гарант %d: %w", middlemanID, err)
	}
	current := ""
	if member.MiddlemanBadge != nil {
		current = *member.MiddlemanBadge
	}
	if tier == current {
		return nil
	}

	var badge *string
	if tier != "" {
		badge = &tier
	}
	if err := s.members.SetMiddlemanBadge(ctx, middlemanID, badge); err != nil {
		return err
	}
	if tier != "" {
		if err := s.client.AssignRole(middlemanID, tier); err != nil {
			log.Warnf("escrow: объявление бейджа %s для гаранта %d не доставлено: %v", tier, middlemanID, err)
		}
	}
	log.Infof("escrow: бейдж гаранта %d: %q -> %q", middlemanID, current, tier)
	return nil
}
