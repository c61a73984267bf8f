// Package platform — telegram.go реализует Client поверх Telegram Bot API.
package platform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/common"
)

// Telegram — адаптер Client для Telegram.
// Ветки обсуждений реализованы как forum topics супергруппы объявлений;
// методы топиков вызываются через MakeRequest, т.к. в клиентской
// библиотеке их нет.
type Telegram struct {
	api          *tgbotapi.BotAPI
	badgesChatID int64 // куда анонсируются роли/бейджи (0 = не анонсировать)
}

// NewTelegram создаёт адаптер платформы.
func NewTelegram(api *tgbotapi.BotAPI, badgesChatID int64) *Telegram {
	return &Telegram{api: api, badgesChatID: badgesChatID}
}

// SendMessage отправляет текст в чат.
func (t *Telegram) SendMessage(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, wrapAPIError(err)
	}
	return sent.MessageID, nil
}

// SendMessageWithButtons отправляет текст с инлайн-клавиатурой.
func (t *Telegram) SendMessageWithButtons(chatID int64, text string, buttons [][]Button) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = toKeyboard(buttons)
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, wrapAPIError(err)
	}
	return sent.MessageID, nil
}

// EditMessageText заменяет текст сообщения.
func (t *Telegram) EditMessageText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := t.api.Send(edit); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// EditMessageButtons заменяет клавиатуру сообщения.
// «message is not modified» считается успехом: клавиатура уже на месте,
// чего и добивается восстановление.
func (t *Telegram) EditMessageButtons(chatID int64, messageID int, buttons [][]Button) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, toKeyboard(buttons))
	if _, err := t.api.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return wrapAPIError(err)
	}
	return nil
}

// DeleteMessage удаляет сообщение.
func (t *Telegram) DeleteMessage(chatID int64, messageID int) error {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := t.api.Request(del); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// CreateThread создаёт forum topic в супергруппе.
func (t *Telegram) CreateThread(chatID int64, name string) (int64, error) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonEmpty("name", name)

	resp, err := t.api.MakeRequest("createForumTopic", params)
	if err != nil {
		return 0, wrapAPIError(err)
	}

	// Из ответа нужен только message_thread_id
	var topic struct {
		MessageThreadID int64 `json:"message_thread_id"`
	}
	if err := json.Unmarshal(resp.Result, &topic); err != nil {
		return 0, fmt.Errorf("createForumTopic: некорректный ответ: %w", err)
	}
	if topic.MessageThreadID == 0 {
		return 0, fmt.Errorf("createForumTopic: пустой message_thread_id")
	}
	return topic.MessageThreadID, nil
}

// SendToThread отправляет сообщение в ветку.
func (t *Telegram) SendToThread(chatID int64, threadID int64, text string) (int, error) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero64("message_thread_id", threadID)
	params.AddNonEmpty("text", text)

	resp, err := t.api.MakeRequest("sendMessage", params)
	if err != nil {
		return 0, wrapAPIError(err)
	}
	var sent struct {
		MessageID int `json:"message_id"`
	}
	if err := json.Unmarshal(resp.Result, &sent); err != nil {
		return 0, fmt.Errorf("sendMessage в ветку: некорректный ответ: %w", err)
	}
	return sent.MessageID, nil
}

// CloseThread закрывает ветку.
func (t *Telegram) CloseThread(chatID int64, threadID int64) error {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero64("message_thread_id", threadID)

	if _, err := t.api.MakeRequest("closeForumTopic", params); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// ThreadExists проверяет «живость» ветки без видимых сообщений:
// sendChatAction с message_thread_id падает, если топик удалён.
func (t *Telegram) ThreadExists(chatID int64, threadID int64) bool {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero64("message_thread_id", threadID)
	params.AddNonEmpty("action", "typing")

	_, err := t.api.MakeRequest("sendChatAction", params)
	if err != nil {
		log.WithError(err).WithField("thread_id", threadID).Debug("ветка недоступна")
		return false
	}
	return true
}

// AssignRole анонсирует назначение роли в чате бейджей.
// Telegram не имеет ролей; авторитетное состояние роли хранит БД.
func (t *Telegram) AssignRole(userID int64, role string) error {
	if t.badgesChatID == 0 {
		return nil
	}
	text := fmt.Sprintf("🏅 Роль «%s» назначена пользователю %s", role, mention(userID))
	_, err := t.SendMessage(t.badgesChatID, text)
	return err
}

// SendDM отправляет личное сообщение.
// Ошибка превращается в ErrUpstream (пользователь мог закрыть личку).
func (t *Telegram) SendDM(userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := t.api.Send(msg); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

// AnswerCallback подтверждает нажатие инлайн-кнопки.
func (t *Telegram) AnswerCallback(callbackID string, text string) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := t.api.Request(cb); err != nil {
		return wrapAPIError(err)
	}
	return nil
}

func toKeyboard(buttons [][]Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// wrapAPIError переводит ошибки Telegram в таксономию common.
func wrapAPIError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "not found") || strings.Contains(msg, "chat not found") {
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	}
	return fmt.Errorf("%w: %s", common.ErrUpstream, msg)
}

func mention(userID int64) string {
	return "tg://user?id=" + strconv.FormatInt(userID, 10)
}
