// Package jobs управляет фоновыми задачами (cron): просрочка эскроу,
// архивация объявлений, сводки рынка и напоминания посредникам.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/config"
	"serotonyl.ru/kamasbot/internal/features/escrow"
	"serotonyl.ru/kamasbot/internal/features/listings"
	"serotonyl.ru/kamasbot/internal/features/members"
	"serotonyl.ru/kamasbot/internal/features/reports"
	"serotonyl.ru/kamasbot/internal/platform"
)

// Scheduler управляет фоновыми задачами. Сбой одной задачи логируется
// и не трогает ни расписание, ни остальные задачи.
type Scheduler struct {
	cron *cron.Cron
	cfg  *config.Config

	escrowService  *escrow.Service
	listingService *listings.Service
	reportService  *reports.Service
	membersRepo    *members.Repository
	client         platform.Client
}

// NewScheduler создаёт планировщик задач в UTC.
func NewScheduler(
	cfg *config.Config,
	escrowService *escrow.Service,
	listingService *listings.Service,
	reportService *reports.Service,
	membersRepo *members.Repository,
	client platform.Client,
) *Scheduler {
	return &Scheduler{
		cron:           cron.New(cron.WithLocation(time.UTC)),
		cfg:            cfg,
		escrowService:  escrowService,
		listingService: listingService,
		reportService:  reportService,
		membersRepo:    membersRepo,
		client:         client,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Каждый час закрываем просроченные эскроу
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Проверка просроченных эскроу")
		if _, err := s.escrowService.ExpireStale(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка просрочки эскроу")
		}
	})

	// Ежедневно в 03:00 архивируем устаревшие объявления
	s.cron.AddFunc("0 3 * * *", func() {
		log.Info("[CRON] Архивация устаревших объявлений")
		maxAge := time.Duration(s.cfg.ArchiveAfterDays) * 24 * time.Hour
		if _, err := s.listingService.ArchiveStale(ctx, maxAge); err != nil {
			log.WithError(err).Error("[CRON] Ошибка архивации")
		}
	})

	// Ежедневно в 04:00 публикуем сводку рынка
	if s.cfg.ReportsChatID != 0 {
		s.cron.AddFunc("0 4 * * *", func() {
			log.Info("[CRON] Публикация сводки рынка")
			if err := s.reportService.Publish(ctx); err != nil {
				log.WithError(err).Error("[CRON] Ошибка сводки")
			}
		})
	}

	// Периодически напоминаем посредникам о регламенте.
	// Период задаётся конфигом (REMINDER_FREQUENCY_DAYS).
	if s.cfg.RemindersChatID != 0 {
		s.cron.AddFunc(fmt.Sprintf("@every %dh", s.cfg.ReminderFrequencyDays*24), func() {
			log.Info("[CRON] Напоминание посредникам")
			if err := s.remindMiddlemen(ctx); err != nil {
				log.WithError(err).Error("[CRON] Ошибка напоминания")
			}
		})
	}

	s.cron.Start()
	log.Info("Планировщик задач запущен (UTC)")
}

// Stop останавливает планировщик, дождавшись текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// remindMiddlemen публикует регламент посредников в чате напоминаний
// и дублирует его каждому посреднику в личные сообщения.
func (s *Scheduler) remindMiddlemen(ctx context.Context) error {
	middlemen, err := s.membersRepo.GetMiddlemen(ctx)
	if err != nil {
		return err
	}
	if len(middlemen) == 0 {
		return nil
	}

	text := "🛡 Weekly middleman reminder\n\n" +
		"1. Confirm both sides before moving kamas.\n" +
		"2. Always mark the escrow completed or disputed — never leave it hanging.\n" +
		"3. Report suspicious behaviour to the admins."

	if _, err := s.client.SendMessage(s.cfg.RemindersChatID, text); err != nil {
		return fmt.Errorf("напоминание в чат: %w", err)
	}
	for _, m := range middlemen {
		if err := s.client.SendDM(m.UserID, text); err != nil {
			log.WithError(err).WithField("user_id", m.UserID).Debug("напоминание в личку не доставлено")
		}
	}
	log.Infof("[CRON] Напоминание отправлено %d посредникам", len(middlemen))
	return nil
}
