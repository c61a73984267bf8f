// Package restore приводит живой чат в соответствие с базой после
// рестарта: перепубликовывает объявления без сообщений, снимает
// привязки исчезнувших обсуждений и возвращает панель сервиса.
// Прогон идемпотентен — повторный запуск ничего не дублирует.
package restore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/listings"
	"serotonyl.ru/kamasbot/internal/features/threads"
	"serotonyl.ru/kamasbot/internal/platform"
	"serotonyl.ru/kamasbot/internal/store"
)

// ListingSource — операции объявлений, нужные восстановлению.
type ListingSource interface {
	ListActive(ctx context.Context) ([]*listings.Listing, error)
	ProbeMessage(l *listings.Listing) error
	Repost(ctx context.Context, l *listings.Listing) error
}

// ThreadSource — операции обсуждений, нужные восстановлению.
type ThreadSource interface {
	Links(ctx context.Context) ([]*threads.Link, error)
	ThreadAlive(link *threads.Link) bool
	DropLink(ctx context.Context, link *threads.Link) error
}

// PanelStore — подмножество хранилища записей для панели сервиса.
type PanelStore interface {
	Get(ctx context.Context, kind, key string) (*store.Record, error)
	Append(ctx context.Context, kind, key string, payload []byte) error
	Update(ctx context.Context, kind, key string, payload []byte) error
}

const panelKey = "main"

type panelRecord struct {
	MessageID int `json:"message_id"`
}

type Restorer struct {
	listings    ListingSource
	threads     ThreadSource
	records     PanelStore
	client      platform.Client
	panelChatID int64
}

func New(listingSrc ListingSource, threadSrc ThreadSource, records PanelStore, client platform.Client, panelChatID int64) *Restorer {
	return &Restorer{
		listings:    listingSrc,
		threads:     threadSrc,
		records:     records,
		client:      client,
		panelChatID: panelChatID,
	}
}

// Run выполняет полный прогон восстановления. Сбой на одной записи
// не прерывает остальных; ошибка возвращается только если не удалось
// прочитать сами списки.
func (r *Restorer) Run(ctx context.Context) error {
	if err := r.restoreListings(ctx); err != nil {
		return fmt.Errorf("восстановление объявлений: %w", err)
	}
	if err := r.restoreThreads(ctx); err != nil {
		return fmt.Errorf("восстановление обсуждений: %w", err)
	}
	if err := r.restorePanel(ctx); err != nil {
		return fmt.Errorf("восстановление панели: %w", err)
	}
	return nil
}

// restoreListings перепубликовывает активные объявления, сообщения
// которых пропали из канала.
func (r *Restorer) restoreListings(ctx context.Context) error {
	active, err := r.listings.ListActive(ctx)
	if err != nil {
		return err
	}

	reposted := 0
	for _, l := range active {
		err := r.listings.ProbeMessage(l)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			log.Warnf("restore: проба сообщения объявления %s: %v", l.ID, err)
			continue
		}
		if err := r.listings.Repost(ctx, l); err != nil {
			log.Errorf("restore: объявление %s не перепубликовано: %v", l.ID, err)
			continue
		}
		reposted++
	}
	log.Infof("restore: активных объявлений %d, перепубликовано %d", len(active), reposted)
	return nil
}

// restoreThreads снимает привязки обсуждений, темы которых удалены.
func (r *Restorer) restoreThreads(ctx context.Context) error {
	links, err := r.threads.Links(ctx)
	if err != nil {
		return err
	}

	dropped := 0
	for _, link := range links {
		if r.threads.ThreadAlive(link) {
			continue
		}
		if err := r.threads.DropLink(ctx, link); err != nil && !errors.Is(err, common.ErrNotFound) {
			log.Errorf("restore: мёртвая привязка %s не снята: %v", link.Name, err)
			continue
		}
		dropped++
	}
	log.Infof("restore: привязок обсуждений %d, снято мёртвых %d", len(links), dropped)
	return nil
}

// restorePanel возвращает панель сервиса, если её сообщение пропало.
func (r *Restorer) restorePanel(ctx context.Context) error {
	if r.panelChatID == 0 {
		return nil
	}

	alive := false
	hadRecord := false
	if rec, err := r.records.Get(ctx, store.KindPanel, panelKey); err == nil {
		hadRecord = true
		var panel panelRecord
		if err := json.Unmarshal(rec.Payload, &panel); err == nil && panel.MessageID != 0 {
			probeErr := r.client.EditMessageButtons(r.panelChatID, panel.MessageID, panelButtons())
			alive = probeErr == nil
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	if alive {
		return nil
	}
	return r.publishPanel(ctx, hadRecord)
}

// ResetPanel перепубликует панель по команде администратора: живое
// сообщение перерисовывается на месте, пропавшее публикуется заново.
func (r *Restorer) ResetPanel(ctx context.Context) error {
	if r.panelChatID == 0 {
		return nil
	}

	hadRecord := false
	if rec, err := r.records.Get(ctx, store.KindPanel, panelKey); err == nil {
		hadRecord = true
		var panel panelRecord
		if err := json.Unmarshal(rec.Payload, &panel); err == nil && panel.MessageID != 0 {
			if r.client.EditMessageText(r.panelChatID, panel.MessageID, panelText()) == nil &&
				r.client.EditMessageButtons(r.panelChatID, panel.MessageID, panelButtons()) == nil {
				log.Infof("restore: панель сервиса перерисована (сообщение %d)", panel.MessageID)
				return nil
			}
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return r.publishPanel(ctx, hadRecord)
}

// publishPanel отправляет панель заново и фиксирует её сообщение.
// Запись панели одна: новая добавляется append-ом, существующая обновляется.
func (r *Restorer) publishPanel(ctx context.Context, hadRecord bool) error {
	messageID, err := r.client.SendMessageWithButtons(r.panelChatID, panelText(), panelButtons())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(panelRecord{MessageID: messageID})
	if err != nil {
		return err
	}
	if hadRecord {
		err = r.records.Update(ctx, store.KindPanel, panelKey, payload)
	} else {
		err = r.records.Append(ctx, store.KindPanel, panelKey, payload)
	}
	if err != nil {
		return err
	}
	log.Infof("restore: панель сервиса опубликована заново (сообщение %s)", strconv.Itoa(messageID))
	return nil
}

func panelText() string {
	return "🛠 Marketplace services\n\n" +
		"!sell / !buy — post a listing\n" +
		"!escrow open — trade with a middleman\n" +
		"!verify — become a Verified Seller\n" +
		"!myrep — check your reputation"
}

func panelButtons() [][]platform.Button {
	return [][]platform.Button{{
		{Label: "📜 Rules", Data: "panel:rules"},
		{Label: "🛡 Middlemen", Data: "panel:middlemen"},
	}}
}
