// Package kamas реализует кодек сумм камас: разбор человекочитаемых
// строк ("10M", "500K", "1,5M") в числа и обратное форматирование.
package kamas

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"serotonyl.ru/kamasbot/internal/common"
)

// Суммы больше SplitThreshold разбиваются на два платежа.
const SplitThreshold = 50_000_000

// Строгий шаблон всей строки: цифры, опциональная точка, опциональный суффикс M/K.
// Хотя бы одна цифра обязательна ("M" и "." сами по себе не сумма).
var amountPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]*)?|\.[0-9]+)([MK]?)$`)

// Parse разбирает строку суммы в число камас.
//
// Правила:
//   - пробелы игнорируются, регистр не важен
//   - десятичный разделитель — точка или запятая
//   - суффикс M = ×1 000 000, K = ×1 000
//
// Примеры:
//
//	Parse("10M")  → 10 000 000
//	Parse("500k") → 500 000
//	Parse("1,5M") → 1 500 000
//
// Любой другой символ или пустая строка → common.ErrInvalidFormat.
func Parse(text string) (float64, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(text, " ", ""))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	m := amountPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidFormat, text)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidFormat, text)
	}

	switch m[2] {
	case "M":
		value *= 1_000_000
	case "K":
		value *= 1_000
	}
	return value, nil
}

// Format форматирует сумму камас в строку с крупнейшей подходящей единицей.
// Целые значения единицы пишутся без дробной части, остальные — с двумя знаками.
//
// Примеры:
//
//	Format(10_000_000) → "10M"
//	Format(1_500_000)  → "1.50M"
//	Format(500_000)    → "500K"
//	Format(750)        → "750"
func Format(amount float64) string {
	switch {
	case amount >= 1_000_000:
		if math.Mod(amount, 1_000_000) == 0 {
			return fmt.Sprintf("%dM", int64(amount/1_000_000))
		}
		return fmt.Sprintf("%.2fM", amount/1_000_000)
	case amount >= 1_000:
		if math.Mod(amount, 1_000) == 0 {
			return fmt.Sprintf("%dK", int64(amount/1_000))
		}
		return fmt.Sprintf("%.2fK", amount/1_000)
	default:
		if amount == math.Trunc(amount) {
			return strconv.FormatInt(int64(amount), 10)
		}
		return strconv.FormatFloat(amount, 'f', -1, 64)
	}
}

// ParsePrice разбирает цену за миллион камас. Запятая допускается
// как десятичный разделитель. Цена должна быть строго положительной.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidPrice, text)
	}
	if price <= 0 {
		return 0, common.ErrInvalidPrice
	}
	return price, nil
}

// PaymentSplit — разбивка крупной сделки на два платежа.
type PaymentSplit struct {
	FirstHalf  float64 `json:"first_half"`
	SecondHalf float64 `json:"second_half"`
}

// Split делит сумму на две половины для поэтапной оплаты.
// Первая половина округляется вниз, вторая = остаток, поэтому
// сумма половин всегда точно равна исходной (и для нечётных сумм).
func Split(total float64) PaymentSplit {
	first := math.Floor(total / 2)
	return PaymentSplit{
		FirstHalf:  first,
		SecondHalf: total - first,
	}
}

// NeedsSplit сообщает, требует ли сумма разбивки платежа.
func NeedsSplit(total float64) bool {
	return total > SplitThreshold
}
