package reputation

import (
	"context"
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Handlers struct {
	service *Service
	lang    *language.Service
	client  platform.Client
}

func NewHandlers(service *Service, lang *language.Service, client platform.Client) *Handlers {
	return &Handlers{service: service, lang: lang, client: client}
}

// HandleRateCallback обрабатывает кнопки 👍/👎 под сообщением сделки.
func (h *Handlers) HandleRateCallback(ctx context.Context, callbackID string, sellerID, raterID int64, positive bool) {
	lang := h.lang.Get(ctx, raterID)

	kind := KindNegative
	if positive {
		kind = KindPositive
	}
	if _, err := h.service.Record(ctx, sellerID, raterID, kind); err != nil {
		if errors.Is(err, common.ErrInvalidState) {
			h.answer(callbackID, language.T(lang, language.MsgRepSelf))
			return
		}
		log.Errorf("reputation: отзыв для %d не записан: %v", sellerID, err)
		h.answer(callbackID, language.T(lang, language.MsgGenericError))
		return
	}
	h.answer(callbackID, language.T(lang, language.MsgRepRecorded))
}

// HandleRate обрабатывает !rep +|- ответом на сообщение продавца.
func (h *Handlers) HandleRate(ctx context.Context, chatID, sellerID, raterID int64, positive bool) {
	lang := h.lang.Get(ctx, raterID)

	kind := KindNegative
	if positive {
		kind = KindPositive
	}
	if _, err := h.service.Record(ctx, sellerID, raterID, kind); err != nil {
		if errors.Is(err, common.ErrInvalidState) {
			h.reply(chatID, language.T(lang, language.MsgRepSelf))
			return
		}
		log.Errorf("reputation: отзыв для %d не записан: %v", sellerID, err)
		h.reply(chatID, language.T(lang, language.MsgGenericError))
		return
	}
	h.reply(chatID, language.T(lang, language.MsgRepRecorded))
}

// HandleMyRep показывает пользователю его репутацию.
func (h *Handlers) HandleMyRep(ctx context.Context, userID, chatID int64) {
	lang := h.lang.Get(ctx, userID)

	score, err := h.service.ScoreFor(ctx, userID)
	if err != nil {
		log.Errorf("reputation: репутация %d не прочитана: %v", userID, err)
		h.reply(chatID, language.T(lang, language.MsgGenericError))
		return
	}
	h.reply(chatID, language.T(lang, language.MsgMyRep,
		score.Value(), score.Positive, score.Negative, score.Total))
}

// HandleBadge показывает пользователю его текущий бейдж.
func (h *Handlers) HandleBadge(ctx context.Context, userID, chatID int64) {
	lang := h.lang.Get(ctx, userID)

	badge, err := h.service.CurrentBadge(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		log.Errorf("reputation: бейдж %d не прочитан: %v", userID, err)
		h.reply(chatID, language.T(lang, language.MsgGenericError))
		return
	}
	if badge == "" {
		h.reply(chatID, language.T(lang, language.MsgBadgeNone))
		return
	}
	h.reply(chatID, language.T(lang, language.MsgBadgeCurrent, badge))
}

// RateButtons — кнопки отзывов, добавляемые под сообщение закрытой сделки.
func RateButtons(sellerID int64) [][]platform.Button {
	id := strconv.FormatInt(sellerID, 10)
	return [][]platform.Button{{
		{Label: "👍", Data: "rep+:" + id},
		{Label: "👎", Data: "rep-:" + id},
	}}
}

func (h *Handlers) answer(callbackID, text string) {
	if err := h.client.AnswerCallback(callbackID, text); err != nil {
		log.Warnf("reputation: ответ на callback не доставлен: %v", err)
	}
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.client.SendMessage(chatID, text); err != nil {
		log.Errorf("reputation: не удалось отправить ответ в чат %d: %v", chatID, err)
	}
}
