// Package platform изолирует ядро бота от конкретного чат-API.
// Сервисы и процедура восстановления получают узкий интерфейс Client
// через конструкторы — никакого глобального объекта бота.
package platform

// Button — одна кнопка под сообщением.
type Button struct {
	Label string // Текст на кнопке
	Data  string // Callback-данные ("thread:<id>", "rep+:<seller>", ...)
}

// Client — узкий интерфейс чат-платформы.
// Реализация для Telegram — в telegram.go; тесты используют фейк.
type Client interface {
	// SendMessage отправляет текст в чат, возвращает ID сообщения.
	SendMessage(chatID int64, text string) (int, error)
	// SendMessageWithButtons отправляет текст с инлайн-кнопками.
	SendMessageWithButtons(chatID int64, text string, buttons [][]Button) (int, error)
	// EditMessageText заменяет текст существующего сообщения.
	EditMessageText(chatID int64, messageID int, text string) error
	// EditMessageButtons заменяет клавиатуру сообщения.
	// Возвращает common.ErrNotFound, если сообщения больше нет —
	// восстановление использует это как проверку «живости» записи.
	EditMessageButtons(chatID int64, messageID int, buttons [][]Button) error
	// DeleteMessage удаляет сообщение.
	DeleteMessage(chatID int64, messageID int) error

	// CreateThread создаёт приватную ветку обсуждения (forum topic),
	// возвращает её ID.
	CreateThread(chatID int64, name string) (int64, error)
	// SendToThread отправляет сообщение в ветку.
	SendToThread(chatID int64, threadID int64, text string) (int, error)
	// CloseThread закрывает ветку.
	CloseThread(chatID int64, threadID int64) error
	// ThreadExists проверяет, жива ли ветка.
	ThreadExists(chatID int64, threadID int64) bool

	// AssignRole публично назначает пользователю роль
	// (бейдж продавца/посредника). Авторитетное состояние — в БД,
	// платформа отвечает только за анонс.
	AssignRole(userID int64, role string) error

	// SendDM отправляет личное сообщение пользователю.
	SendDM(userID int64, text string) error

	// AnswerCallback подтверждает нажатие инлайн-кнопки.
	AnswerCallback(callbackID string, text string) error
}
