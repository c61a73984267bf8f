// Package reports собирает сводки рынка по архивным объявлениям.
// Сбор fail-closed: любая ошибка чтения отменяет сводку целиком,
// частичные отчёты не публикуются.
package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/listings"
	"serotonyl.ru/kamasbot/internal/kamas"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Config struct {
	WindowDays        int
	NewSellerLookback int
	ReportsChatID     int64
}

type Service struct {
	listings *listings.Repository
	client   platform.Client
	cfg      Config
}

func NewService(listingsRepo *listings.Repository, client platform.Client, cfg Config) *Service {
	return &Service{listings: listingsRepo, client: client, cfg: cfg}
}

// Collect строит сводку за отчётное окно.
func (s *Service) Collect(ctx context.Context) (*Report, error) {
	until := time.Now().UTC()
	since := until.AddDate(0, 0, -s.cfg.WindowDays)
	lookback := until.AddDate(0, 0, -s.cfg.NewSellerLookback)

	archived, err := s.listings.ListArchivedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("сбор сводки: %w", err)
	}

	// Продавец новый, если до окна ретроспективы у него не было объявлений.
	newSellers := make(map[int64]bool)
	for _, l := range archived {
		if _, seen := newSellers[l.OwnerID]; seen {
			continue
		}
		count, err := s.listings.CountByOwnerBefore(ctx, l.OwnerID, lookback)
		if err != nil {
			return nil, fmt.Errorf("сбор сводки: %w", err)
		}
		newSellers[l.OwnerID] = count == 0
	}

	return Summarize(archived, newSellers, since, until), nil
}

// Publish собирает сводку и публикует её в канале отчётов.
func (s *Service) Publish(ctx context.Context) error {
	report, err := s.Collect(ctx)
	if err != nil {
		return err
	}
	if _, err := s.client.SendMessage(s.cfg.ReportsChatID, Render(report)); err != nil {
		return fmt.Errorf("публикация сводки: %w", err)
	}
	log.Infof("reports: опубликована сводка за %d дней (%d объявлений)", s.cfg.WindowDays, report.Count)
	return nil
}

// Render собирает текст сводки.
func Render(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Market report %s — %s\n\n",
		r.Since.Format("02.01.2006"), r.Until.Format("02.01.2006"))
	fmt.Fprintf(&b, "Transactions: %s\n", common.FormatNumber(int64(r.Count)))
	fmt.Fprintf(&b, "Volume: %s kamas\n", kamas.Format(r.Volume))
	if r.Count > 0 {
		fmt.Fprintf(&b, "Average: %s kamas\n", kamas.Format(r.AverageAmount))
		fmt.Fprintf(&b, "Busiest hour: %02d:00 UTC\n", r.BusiestHour)
	}
	fmt.Fprintf(&b, "New sellers: %d\n", r.NewSellers)

	if len(r.TopPayments) > 0 {
		b.WriteString("\n💳 Top payment methods:\n")
		for i, p := range r.TopPayments {
			fmt.Fprintf(&b, "%d. %s — %d\n", i+1, p.Method, p.Count)
		}
	}
	if len(r.TopSellers) > 0 {
		b.WriteString("\n👤 Top sellers:\n")
		for i, sv := range r.TopSellers {
			fmt.Fprintf(&b, "%d. %s — %s kamas (%d listings)\n", i+1, sv.SellerName, kamas.Format(sv.Volume), sv.Count)
		}
	}
	if len(r.TopBuckets) > 0 {
		b.WriteString("\n📈 Top price ranges:\n")
		for i, bc := range r.TopBuckets {
			fmt.Fprintf(&b, "%d. %s+ — %d\n", i+1, kamas.Format(bc.Bucket), bc.Count)
		}
	}
	if len(r.DayVolume) > 0 {
		b.WriteString("\n📅 Daily volume:\n")
		days := make([]string, 0, len(r.DayVolume))
		for day := range r.DayVolume {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			fmt.Fprintf(&b, "%s — %s kamas\n", day, kamas.Format(r.DayVolume[day]))
		}
	}
	return b.String()
}
