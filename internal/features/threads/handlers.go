package threads

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/features/listings"
	"serotonyl.ru/kamasbot/internal/features/reputation"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Handlers struct {
	service  *Service
	listings *listings.Service
	lang     *language.Service
	client   platform.Client
}

func NewHandlers(service *Service, listingSvc *listings.Service, lang *language.Service, client platform.Client) *Handlers {
	return &Handlers{service: service, listings: listingSvc, lang: lang, client: client}
}

// HandleOpenCallback обрабатывает кнопку «связаться» под объявлением.
func (h *Handlers) HandleOpenCallback(ctx context.Context, callbackID string, listingID string, buyerID int64) {
	lang := h.lang.Get(ctx, buyerID)

	l, err := h.listings.Get(ctx, listingID)
	if err != nil {
		log.Errorf("threads: объявление %s не найдено для кнопки: %v", listingID, err)
		h.answer(callbackID, language.T(lang, language.MsgGenericError))
		return
	}

	link, existed, err := h.service.Open(ctx, l.ID, l.OwnerID, buyerID)
	if err != nil {
		if errors.Is(err, common.ErrInvalidState) {
			h.answer(callbackID, language.T(lang, language.MsgThreadDenied))
			return
		}
		log.Errorf("threads: не удалось открыть обсуждение объявления %s: %v", listingID, err)
		h.answer(callbackID, language.T(lang, language.MsgGenericError))
		return
	}

	if existed {
		h.answer(callbackID, language.T(lang, language.MsgThreadExists, link.Name))
		return
	}

	h.service.Greet(link, fmt.Sprintf(
		"👋 %s — private discussion for listing %s.\nSeller and buyer only. Use the escrow service for large trades.",
		link.Name, l.ID))
	h.answer(callbackID, language.T(lang, language.MsgThreadCreated, link.Name))
}

// HandleClose обрабатывает !closethread [user_id]: участник закрывает
// обсуждение со второй стороной. Без аргумента продавец закрывает
// своё последнее обсуждение. Порядок пары неизвестен вызывающему,
// поэтому пробуются оба.
func (h *Handlers) HandleClose(ctx context.Context, chatID, requesterID int64, args []string) {
	lang := h.lang.Get(ctx, requesterID)
	if len(args) < 1 {
		link, err := h.service.LatestLinkAsSeller(ctx, requesterID)
		if err != nil {
			h.reply(chatID, "Usage: !closethread <user_id>")
			return
		}
		closed, err := h.service.Close(ctx, link.SellerID, link.BuyerID)
		if err != nil {
			log.Errorf("threads: закрытие обсуждения %s: %v", link.Name, err)
			h.reply(chatID, language.T(lang, language.MsgGenericError))
			return
		}
		h.closedReply(chatID, lang, closed)
		return
	}
	otherID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.reply(chatID, language.T(lang, language.MsgGenericError))
		return
	}

	link, err := h.service.Close(ctx, requesterID, otherID)
	if errors.Is(err, common.ErrNotFound) {
		link, err = h.service.Close(ctx, otherID, requesterID)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			h.reply(chatID, language.T(lang, language.MsgGenericError))
			return
		}
		log.Errorf("threads: закрытие обсуждения пары %d/%d: %v", requesterID, otherID, err)
		h.reply(chatID, language.T(lang, language.MsgGenericError))
		return
	}
	h.closedReply(chatID, lang, link)
}

// closedReply подтверждает закрытие и вешает кнопки отзыва о продавце.
// Самооценку отсечёт сервис репутации, поэтому кнопки показываются всегда.
func (h *Handlers) closedReply(chatID int64, lang string, link *Link) {
	text := language.T(lang, language.MsgThreadClosed) + "\n" +
		language.T(lang, language.MsgRatePrompt)
	if _, err := h.client.SendMessageWithButtons(chatID, text, reputation.RateButtons(link.SellerID)); err != nil {
		log.Errorf("threads: не удалось отправить подтверждение закрытия в чат %d: %v", chatID, err)
	}
}

func (h *Handlers) answer(callbackID, text string) {
	if err := h.client.AnswerCallback(callbackID, text); err != nil {
		log.Warnf("threads: ответ на callback не доставлен: %v", err)
	}
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.client.SendMessage(chatID, text); err != nil {
		log.Errorf("threads: не удалось отправить ответ в чат %d: %v", chatID, err)
	}
}
