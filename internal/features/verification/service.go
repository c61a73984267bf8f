// Package verification — заявки на статус проверенного продавца
// и заявки на роль гаранта. Телефон заявителя хранится только
// Argon2id-хешем, решение по заявке выносит администратор.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/escrow"
	"serotonyl.ru/kamasbot/internal/features/members"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Config struct {
	MiddlemanMinEscrows int
	MiddlemanMinSuccess float64
	AdminChatID         int64
}

type Service struct {
	repo    *Repository
	members *members.Repository
	escrows *escrow.Service
	client  platform.Client
	cfg     Config
}

func NewService(repo *Repository, membersRepo *members.Repository, escrows *escrow.Service, client platform.Client, cfg Config) *Service {
	return &Service{repo: repo, members: membersRepo, escrows: escrows, client: client, cfg: cfg}
}

// Apply принимает заявку на верификацию: хеширует телефон, проверяет
// платформу и извещает администраторов.
func (s *Service) Apply(ctx context.Context, userID int64, phone, socialPlatform, socialHandle, experience string) (*Application, error) {
	member, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if member.IsVerified {
		return nil, common.ErrAlreadyVerified
	}

	socialPlatform = strings.ToLower(strings.TrimSpace(socialPlatform))
	if !SupportedPlatforms[socialPlatform] {
		return nil, fmt.Errorf("платформа %q: %w", socialPlatform, common.ErrUnknownPlatform)
	}

	if existing, err := s.repo.GetPendingByUser(ctx, userID); err == nil {
		return existing, common.ErrInvalidState
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	phoneHash, err := HashPhone(phone)
	if err != nil {
		return nil, err
	}

	a := &Application{
		UserID:         userID,
		PhoneHash:      phoneHash,
		SocialPlatform: socialPlatform,
		SocialHandle:   strings.TrimSpace(socialHandle),
		Experience:     strings.TrimSpace(experience),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.notifyAdmins(fmt.Sprintf(
		"📋 New verification application #%d\nUser: %s\nSocial: %s @ %s\nExperience: %s\nApprove: !approve %d\nReject: !reject %d <reason>",
		a.ID, member.DisplayName(), a.SocialHandle, a.SocialPlatform, a.Experience, a.ID, a.ID))
	log.Infof("verification: заявка #%d от %d (%s)", a.ID, userID, a.SocialPlatform)
	return a, nil
}

// Approve одобряет заявку, выдаёт статус проверенного продавца
// и извещает заявителя.
func (s *Service) Approve(ctx context.Context, applicationID, reviewerID int64) error {
	if err := s.repo.Review(ctx, applicationID, StatusApproved, "", reviewerID); err != nil {
		return err
	}
	a, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if err := s.members.SetVerified(ctx, a.UserID, true); err != nil {
		return err
	}
	if err := s.client.AssignRole(a.UserID, "Verified Seller"); err != nil {
		log.Warnf("verification: объявление статуса для %d не доставлено: %v", a.UserID, err)
	}
	s.dm(a.UserID, "🎉 Congratulations! You are now a Verified Seller.")
	log.Infof("verification: заявка #%d одобрена модератором %d", applicationID, reviewerID)
	return nil
}

// Reject отклоняет заявку с указанием причины.
func (s *Service) Reject(ctx context.Context, applicationID, reviewerID int64, reason string) error {
	if err := s.repo.Review(ctx, applicationID, StatusRejected, reason, reviewerID); err != nil {
		return err
	}
	a, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	s.dm(a.UserID, fmt.Sprintf("❌ Your verification application was rejected.\nReason: %s", reason))
	log.Infof("verification: заявка #%d отклонена модератором %d", applicationID, reviewerID)
	return nil
}

// ListPending возвращает очередь открытых заявок.
func (s *Service) ListPending(ctx context.Context) ([]*Application, error) {
	return s.repo.ListPending(ctx)
}

// ApplyMiddleman принимает заявку на роль гаранта. Планки по числу
// сделок и успешности обязательны обе; недобор — ErrBelowThreshold
// со статистикой в тексте.
func (s *Service) ApplyMiddleman(ctx context.Context, userID int64) (*escrow.Stats, error) {
	member, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if member.IsMiddleman {
		return nil, common.ErrInvalidState
	}

	stats, err := s.escrows.StatsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats.Completed < s.cfg.MiddlemanMinEscrows || stats.SuccessPct() < s.cfg.MiddlemanMinSuccess {
		return stats, common.ErrBelowThreshold
	}

	s.notifyAdmins(fmt.Sprintf(
		"🛡 Middleman application\nUser: %s\nCompleted escrows: %d, success rate: %.1f%%\nGrant: !grantmm %d",
		member.DisplayName(), stats.Completed, stats.SuccessPct(), userID))
	log.Infof("verification: заявка на гаранта от %d (%d сделок, %.1f%%)",
		userID, stats.Completed, stats.SuccessPct())
	return stats, nil
}

// GrantMiddleman выдаёт роль гаранта решением администратора.
func (s *Service) GrantMiddleman(ctx context.Context, userID int64) error {
	if err := s.members.SetMiddleman(ctx, userID, true); err != nil {
		return err
	}
	if err := s.client.AssignRole(userID, "Middleman"); err != nil {
		log.Warnf("verification: объявление роли гаранта для %d не доставлено: %v", userID, err)
	}
	s.dm(userID, "🛡 You have been granted the Middleman role. Read the guidelines before your first escrow.")
	return nil
}

func (s *Service) notifyAdmins(text string) {
	if s.cfg.AdminChatID == 0 {
		return
	}
	if _, err := s.client.SendMessage(s.cfg.AdminChatID, text); err != nil {
		log.Errorf("verification: извещение администраторов не доставлено: %v", err)
	}
}

func (s *Service) dm(userID int64, text string) {
	if err := s.client.SendDM(userID, text); err != nil {
		log.Warnf("verification: личное сообщение для %d не доставлено: %v", userID, err)
	}
}
