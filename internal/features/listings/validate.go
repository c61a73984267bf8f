package listings

import (
	"fmt"
	"strings"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/kamas"
)

// ValidateDraft проверяет заполненную анкету и собирает из неё
// объявление. Идентификатор и отметки времени проставляет репозиторий.
func ValidateDraft(d *Draft) (*Listing, error) {
	amount, err := kamas.Parse(d.AmountRaw)
	if err != nil {
		return nil, err
	}

	price, err := kamas.ParsePrice(d.PriceRaw)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(d.Payment) == "" {
		return nil, fmt.Errorf("способ оплаты: %w", common.ErrEmptyField)
	}
	if strings.TrimSpace(d.Contact) == "" {
		return nil, fmt.Errorf("контакт: %w", common.ErrEmptyField)
	}

	currency := strings.ToUpper(strings.TrimSpace(d.Currency))
	if currency != CurrencyEUR && currency != CurrencyUSD {
		return nil, fmt.Errorf("валюта %q: %w", d.Currency, common.ErrUnknownCurrency)
	}

	l := &Listing{
		Type:      d.Type,
		OwnerID:   d.OwnerID,
		OwnerName: d.OwnerName,
		Amount:    amount,
		PricePerM: price,
		Payment:   strings.TrimSpace(d.Payment),
		Contact:   strings.TrimSpace(d.Contact),
		Notes:     strings.TrimSpace(d.Notes),
		Currency:  currency,
	}
	if kamas.NeedsSplit(amount) {
		split := kamas.Split(amount)
		l.Split = &split
	}
	return l, nil
}
