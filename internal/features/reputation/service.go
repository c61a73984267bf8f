// Package reputation ведёт отзывы о продавцах и их бейджи.
// Бейдж пересчитывается из полной ленты событий после каждого отзыва,
// поэтому расхождений между счётом и бейджем не бывает.
package reputation

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/members"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Service struct {
	repo       *Repository
	members    *members.Repository
	client     platform.Client
	thresholds Thresholds
}

func NewService(repo *Repository, membersRepo *members.Repository, client platform.Client, thresholds Thresholds) *Service {
	return &Service{repo: repo, members: membersRepo, client: client, thresholds: thresholds}
}

// Record записывает отзыв и пересинхронизирует бейдж продавца.
// Самооценка запрещена.
func (s *Service) Record(ctx context.Context, sellerID, raterID int64, kind string) (*Score, error) {
	if sellerID == raterID {
		return nil, common.ErrInvalidState
	}
	if err := s.repo.AddEvent(ctx, sellerID, raterID, kind); err != nil {
		return nil, err
	}
	score, err := s.SyncBadge(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	log.Infof("reputation: отзыв %s продавцу %d от %d (итог %d)", kind, sellerID, raterID, score.Value())
	return score, nil
}

// ScoreFor возвращает агрегат репутации продавца.
func (s *Service) ScoreFor(ctx context.Context, sellerID int64) (*Score, error) {
	return s.repo.ScoreFor(ctx, sellerID)
}

// SyncBadge пересчитывает бейдж продавца из ленты событий и,
// если бейдж изменился, объявляет о новом.
func (s *Service) SyncBadge(ctx context.Context, sellerID int64) (*Score, error) {
	score, err := s.repo.ScoreFor(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	badge := BadgeFor(s.thresholds, score.Positive)

	member, err := s.members.GetByUserID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("продавец %d: %w", sellerID, err)
	}

	current := ""
	if member.BadgeRole != nil {
		current = *member.BadgeRole
	}
	if badge == current {
		return score, nil
	}

	var newRole *string
	if badge != "" {
		newRole = &badge
	}
	if err := s.members.SetBadgeRole(ctx, sellerID, newRole); err != nil {
		return nil, err
	}
	if badge != "" {
		if err := s.client.AssignRole(sellerID, badge); err != nil {
			log.Warnf("reputation: объявление бейджа %s для %d не доставлено: %v", badge, sellerID, err)
		}
	}
	log.Infof("reputation: бейдж продавца %d: %q -> %q", sellerID, current, badge)
	return score, nil
}

// CurrentBadge возвращает бейдж продавца из профиля.
func (s *Service) CurrentBadge(ctx context.Context, sellerID int64) (string, error) {
	member, err := s.members.GetByUserID(ctx, sellerID)
	if err != nil {
		return "", err
	}
	if member.BadgeRole == nil {
		return "", nil
	}
	return *member.BadgeRole, nil
}
