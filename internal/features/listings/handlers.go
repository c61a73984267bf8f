package listings

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/kamas"
	"serotonyl.ru/kamasbot/internal/platform"
)

// Handlers связывает команды бота с анкетой и сервисом объявлений.
type Handlers struct {
	dialogs *DialogManager
	service *Service
	lang    *language.Service
	client  platform.Client
}

func NewHandlers(dialogs *DialogManager, service *Service, lang *language.Service, client platform.Client) *Handlers {
	return &Handlers{dialogs: dialogs, service: service, lang: lang, client: client}
}

// HandleSell начинает анкету продажи.
func (h *Handlers) HandleSell(ctx context.Context, userID int64, chatID int64, userName string) {
	h.startDialog(ctx, userID, chatID, userName, TypeSell)
}

// HandleBuy начинает анкету покупки.
func (h *Handlers) HandleBuy(ctx context.Context, userID int64, chatID int64, userName string) {
	h.startDialog(ctx, userID, chatID, userName, TypeBuy)
}

func (h *Handlers) startDialog(ctx context.Context, userID, chatID int64, userName, listingType string) {
	lang := h.lang.Get(ctx, userID)
	prompt := h.dialogs.Start(userID, userName, listingType)
	h.reply(chatID, language.T(lang, prompt))
}

// InDialog сообщает, ждёт ли анкета ввода от пользователя.
func (h *Handlers) InDialog(userID int64) bool {
	return h.dialogs.Active(userID)
}

// HandleCancel снимает незаконченную анкету пользователя.
func (h *Handlers) HandleCancel(ctx context.Context, userID, chatID int64) {
	lang := h.lang.Get(ctx, userID)
	h.dialogs.Cancel(userID)
	h.reply(chatID, language.T(lang, language.MsgDialogCancelled))
}

// HandleInput подставляет ответ пользователя в анкету. На последнем
// шаге публикует объявление.
func (h *Handlers) HandleInput(ctx context.Context, userID, chatID int64, text string) {
	lang := h.lang.Get(ctx, userID)

	prompt, draft, expired := h.dialogs.Advance(userID, text)
	if expired {
		h.reply(chatID, language.T(lang, language.MsgDialogExpired))
		return
	}
	if draft == nil {
		h.reply(chatID, language.T(lang, prompt))
		return
	}

	l, err := h.service.Publish(ctx, draft)
	if err != nil {
		h.reply(chatID, language.T(lang, publishErrorKey(err)))
		return
	}
	h.reply(chatID, language.T(lang, language.MsgListingCreated, l.Type, kamas.Format(l.Amount)))
}

// publishErrorKey подбирает пользовательское сообщение под ошибку валидации.
func publishErrorKey(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidFormat):
		return language.MsgAmountInvalid
	case errors.Is(err, common.ErrInvalidPrice):
		return language.MsgPriceInvalid
	case errors.Is(err, common.ErrEmptyField):
		return language.MsgFieldRequired
	case errors.Is(err, common.ErrUnknownCurrency):
		return language.MsgCurrencyInvalid
	default:
		return language.MsgListingInvalid
	}
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.client.SendMessage(chatID, text); err != nil {
		log.Errorf("listings: не удалось отправить ответ в чат %d: %v", chatID, err)
	}
}
