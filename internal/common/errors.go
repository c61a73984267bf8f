// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Базовая таксономия ошибок маркетплейса.
var (
	// ErrInvalidFormat — не удалось разобрать сумму/цену ("10M", "500K", ...)
	ErrInvalidFormat = errors.New("некорректный формат суммы")
	// ErrNotFound — запись/чат/пользователь не найдены
	ErrNotFound = errors.New("запись не найдена")
	// ErrInvalidState — недопустимый переход состояния (например, завершение уже завершённого эскроу)
	ErrInvalidState = errors.New("недопустимое состояние записи")
	// ErrBelowMinimum — сумма ниже минимально допустимой
	ErrBelowMinimum = errors.New("сумма ниже минимальной")
	// ErrBelowThreshold — не выполнены пороговые требования (заявка посредника)
	ErrBelowThreshold = errors.New("пороговые требования не выполнены")
	// ErrUpstream — временная ошибка платформы (Telegram API)
	ErrUpstream = errors.New("ошибка платформы")
)

// Ошибки объявлений
var (
	// ErrInvalidPrice — цена за миллион должна быть > 0
	ErrInvalidPrice = errors.New("цена должна быть положительной")
	// ErrEmptyField — обязательное поле формы не заполнено
	ErrEmptyField = errors.New("обязательное поле не заполнено")
	// ErrUnknownCurrency — валюта не EUR и не USD
	ErrUnknownCurrency = errors.New("неизвестная валюта")
)

// Ошибки верификации
var (
	// ErrUnknownPlatform — соцсеть не из списка допустимых
	ErrUnknownPlatform = errors.New("неизвестная социальная сеть")
	// ErrAlreadyVerified — продавец уже верифицирован
	ErrAlreadyVerified = errors.New("продавец уже верифицирован")
)

// Ошибки языковых настроек
var (
	// ErrUnsupportedLanguage — язык не из SUPPORTED_LANGUAGES
	ErrUnsupportedLanguage = errors.New("язык не поддерживается")
)
