package verification

import (
	"context"
	"errors"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/platform"
)

type Handlers struct {
	service *Service
	lang    *language.Service
	client  platform.Client
	isAdmin func(int64) bool
}

func NewHandlers(service *Service, lang *language.Service, client platform.Client, isAdmin func(int64) bool) *Handlers {
	return &Handlers{service: service, lang: lang, client: client, isAdmin: isAdmin}
}

// HandleVerify обрабатывает !verify <phone> <platform> <handle> [опыт].
// Команда принимается только в личных сообщениях, чтобы телефон
// не светился в общем чате.
func (h *Handlers) HandleVerify(ctx context.Context, userID, chatID int64, args []string) {
	lang := h.lang.Get(ctx, userID)
	if len(args) < 3 {
		h.reply(chatID, "Usage (in DM): !verify <phone> <platform> <handle> [experience]")
		return
	}

	_, err := h.service.Apply(ctx, userID, args[0], args[1], args[2], strings.Join(args[3:], " "))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyVerified):
			h.reply(chatID, language.T(lang, language.MsgVerifyApproved))
		case errors.Is(err, common.ErrUnknownPlatform):
			h.reply(chatID, language.T(lang, language.MsgVerifyBadPlatform))
		case errors.Is(err, common.ErrInvalidState):
			h.reply(chatID, language.T(lang, language.MsgVerifySubmitted))
		default:
			log.Errorf("verification: заявка пользователя %d не принята: %v", userID, err)
			h.reply(chatID, language.T(lang, language.MsgGenericError))
		}
		return
	}
	h.reply(chatID, language.T(lang, language.MsgVerifySubmitted))
}

// HandleApprove обрабатывает админскую !approve <id>.
func (h *Handlers) HandleApprove(ctx context.Context, adminID, chatID int64, args []string) {
	if !h.requireAdmin(ctx, adminID, chatID) {
		return
	}
	id, ok := h.parseID(chatID, args)
	if !ok {
		return
	}
	if err := h.service.Approve(ctx, id, adminID); err != nil {
		h.adminErr(chatID, err)
		return
	}
	h.reply(chatID, "✅ Application approved.")
}

// HandleReject обрабатывает админскую !reject <id> <reason>.
func (h *Handlers) HandleReject(ctx context.Context, adminID, chatID int64, args []string) {
	if !h.requireAdmin(ctx, adminID, chatID) {
		return
	}
	if len(args) < 2 {
		h.reply(chatID, "Usage: !reject <id> <reason>")
		return
	}
	id, ok := h.parseID(chatID, args)
	if !ok {
		return
	}
	if err := h.service.Reject(ctx, id, adminID, strings.Join(args[1:], " ")); err != nil {
		h.adminErr(chatID, err)
		return
	}
	h.reply(chatID, "✅ Application rejected.")
}

// HandleApplyMM обрабатывает !applymm — заявку на роль гаранта.
func (h *Handlers) HandleApplyMM(ctx context.Context, userID, chatID int64) {
	lang := h.lang.Get(ctx, userID)

	stats, err := h.service.ApplyMiddleman(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrBelowThreshold):
			h.reply(chatID, language.T(lang, language.MsgMMBelowThreshold,
				h.service.cfg.MiddlemanMinEscrows, h.service.cfg.MiddlemanMinSuccess,
				stats.Completed, stats.SuccessPct()))
		case errors.Is(err, common.ErrInvalidState):
			h.reply(chatID, language.T(lang, language.MsgMMSubmitted))
		default:
			log.Errorf("verification: заявка на гаранта от %d не принята: %v", userID, err)
			h.reply(chatID, language.T(lang, language.MsgGenericError))
		}
		return
	}
	h.reply(chatID, language.T(lang, language.MsgMMSubmitted))
}

// HandleGrantMM обрабатывает админскую !grantmm <user_id>.
func (h *Handlers) HandleGrantMM(ctx context.Context, adminID, chatID int64, args []string) {
	if !h.requireAdmin(ctx, adminID, chatID) {
		return
	}
	if len(args) < 1 {
		h.reply(chatID, "Usage: !grantmm <user_id>")
		return
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.reply(chatID, "❌ Invalid user id.")
		return
	}
	if err := h.service.GrantMiddleman(ctx, userID); err != nil {
		h.adminErr(chatID, err)
		return
	}
	h.reply(chatID, "✅ Middleman role granted.")
}

func (h *Handlers) requireAdmin(ctx context.Context, userID, chatID int64) bool {
	if h.isAdmin(userID) {
		return true
	}
	lang := h.lang.Get(ctx, userID)
	h.reply(chatID, language.T(lang, language.MsgAdminsOnly))
	return false
}

func (h *Handlers) parseID(chatID int64, args []string) (int64, bool) {
	if len(args) < 1 {
		h.reply(chatID, "❌ Application id required.")
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.reply(chatID, "❌ Invalid application id.")
		return 0, false
	}
	return id, true
}

func (h *Handlers) adminErr(chatID int64, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		h.reply(chatID, "❌ Application not found.")
	case errors.Is(err, common.ErrInvalidState):
		h.reply(chatID, "❌ Application is already reviewed.")
	default:
		log.Errorf("verification: админская команда не выполнена: %v", err)
		h.reply(chatID, "❌ Something went wrong.")
	}
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.client.SendMessage(chatID, text); err != nil {
		log.Errorf("verification: не удалось отправить ответ в чат %d: %v", chatID, err)
	}
}
