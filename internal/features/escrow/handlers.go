package escrow

import (
	"context"
	"errors"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/features/reputation"
	"serotonyl.ru/kamasbot/internal/kamas"
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

// HandleOpen обрабатывает !escrow open <amount> <seller_id> <middleman_id>.
func (h *Handlers) HandleOpen(ctx context.Context, buyerID, chatID int64, args []string) {
	lang := h.lang.Get(ctx, buyerID)
	if len(args) < 3 {
		h.reply(chatID, "Usage: !escrow open <amount> <seller_id> <middleman_id>")
		return
	}

	amount, err := kamas.Parse(args[0])
	if err != nil {
		h.reply(chatID, language.T(lang, language.MsgAmountInvalid))
		return
	}
	sellerID, err1 := strconv.ParseInt(args[1], 10, 64)
	middlemanID, err2 := strconv.ParseInt(args[2], 10, 64)
	if err1 != nil || err2 != nil {
		h.reply(chatID, language.T(lang, language.MsgGenericError))
		return
	}

	e, err := h.service.Open(ctx, buyerID, sellerID, middlemanID, amount)
	if err != nil {
		if errors.Is(err, common.ErrBelowMinimum) {
			h.reply(chatID, language.T(lang, language.MsgEscrowBelowMin, kamas.Format(h.service.cfg.MinAmount)))
			return
		}
		log.Errorf("escrow: сделка не открыта: %v", err)
		h.reply(chatID, language.T(lang, language.MsgGenericError))
		return
	}
	h.reply(chatID, language.T(lang, language.MsgEscrowCreated,
		e.ID, kamas.Format(e.Amount), kamas.Format(e.Fee), strconv.FormatInt(e.MiddlemanID, 10)))
}

// HandleStatus обрабатывает !escrow status <id>.
func (h *Handlers) HandleStatus(ctx context.Context, userID, chatID int64, args []string) {
	lang := h.lang.Get(ctx, userID)
	if len(args) < 1 {
		h.reply(chatID, "Usage: !escrow status <id>")
		return
	}

	e, err := h.service.Get(ctx, strings.ToUpper(args[0]))
	if err != nil {
		h.replyErr(chatID, lang, err)
		return
	}
	h.reply(chatID, language.T(lang, language.MsgEscrowStatus,
		e.ID, e.Status, kamas.Format(e.Amount), kamas.Format(e.Fee)))
}

// HandleComplete обрабатывает !escrow complete <id>. Закрыть сделку
// может только её гарант.
func (h *Handlers) HandleComplete(ctx context.Context, userID, chatID int64, args []string) {
	h.transition(ctx, userID, chatID, args, StatusCompleted)
}

// HandleDispute обрабатывает !escrow dispute <id> [причина] от любой
// из сторон.
func (h *Handlers) HandleDispute(ctx context.Context, userID, chatID int64, args []string) {
	h.transition(ctx, userID, chatID, args, StatusDisputed)
}

// HandleCancel обрабатывает !escrow cancel <id> от любой из сторон.
func (h *Handlers) HandleCancel(ctx context.Context, userID, chatID int64, args []string) {
	h.transition(ctx, userID, chatID, args, StatusCancelled)
}

func (h *Handlers) transition(ctx context.Context, userID, chatID int64, args []string, to string) {
	lang := h.lang.Get(ctx, userID)
	if len(args) < 1 {
		h.reply(chatID, "Usage: !escrow <complete|dispute|cancel> <id>")
		return
	}
	id := strings.ToUpper(args[0])

	e, err := h.service.Get(ctx, id)
	if err != nil {
		h.replyErr(chatID, lang, err)
		return
	}
	if !h.allowed(e, userID, to) {
		h.reply(chatID, language.T(lang, language.MsgThreadDenied))
		return
	}

	switch to {
	case StatusCompleted:
		e, err = h.service.Complete(ctx, id)
	case StatusDisputed:
		e, err = h.service.Dispute(ctx, id, userID, strings.Join(args[1:], " "))
	case StatusCancelled:
		e, err = h.service.Cancel(ctx, id)
	}
	if err != nil {
		h.replyErr(chatID, lang, err)
		return
	}

	switch to {
	case StatusCompleted:
		// Покупатель оценивает продавца прямо из подтверждения.
		text := language.T(lang, language.MsgEscrowCompleted, e.ID) + "\n" +
			language.T(lang, language.MsgRatePrompt)
		if _, err := h.client.SendMessageWithButtons(chatID, text, reputation.RateButtons(e.SellerID)); err != nil {
			log.Errorf("escrow: не удалось отправить подтверждение в чат %d: %v", chatID, err)
		}
	case StatusDisputed:
		h.reply(chatID, language.T(lang, language.MsgEscrowDisputed, e.ID))
	case StatusCancelled:
		h.reply(chatID, language.T(lang, language.MsgEscrowCancelled, e.ID))
	}
}

// allowed проверяет право пользователя на переход: завершает только
// гарант, спор и отмена доступны всем трём сторонам.
func (h *Handlers) allowed(e *Escrow, userID int64, to string) bool {
	if to == StatusCompleted {
		return userID == e.MiddlemanID
	}
	return userID == e.BuyerID || userID == e.SellerID || userID == e.MiddlemanID
}

func (h *Handlers) replyErr(chatID int64, lang string, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		h.reply(chatID, language.T(lang, language.MsgEscrowNotFound))
	case errors.Is(err, common.ErrInvalidState):
		h.reply(chatID, language.T(lang, language.MsgEscrowBadState))
	default:
		log.Errorf("escrow: ошибка обработки команды: %v", err)
		h.reply(chatID, language.T(lang, language.MsgGenericError))
	}
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.client.SendMessage(chatID, text); err != nil {
		log.Errorf("escrow: не удалось отправить ответ в чат %d: %v", chatID, err)
	}
}
