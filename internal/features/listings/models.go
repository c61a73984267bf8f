package listings

import (
	"time"

	"serotonyl.ru/kamasbot/internal/kamas"
)

// Типы объявлений.
const (
	TypeSell = "SELL"
	TypeBuy  = "BUY"
)

// Валюты расчёта.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
)

// Listing — объявление о покупке или продаже камасов.
type Listing struct {
	ID        string
	Type      string
	OwnerID   int64
	OwnerName string
	Amount    float64
	PricePerM float64
	Payment   string
	Contact   string
	Notes     string
	Currency  string
	Split     *kamas.PaymentSplit
	MessageID int
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Draft — заполняемая анкета объявления до валидации и сохранения.
type Draft struct {
	Type      string
	OwnerID   int64
	OwnerName string
	AmountRaw string
	PriceRaw  string
	Payment   string
	Contact   string
	Notes     string
	Currency  string
}
