package listings

import (
	"strings"
	"sync"
	"time"

	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/kamas"
)

// Шаги анкеты объявления.
const (
	stepAmount = iota
	stepPrice
	stepPayment
	stepContact
	stepNotes
	stepCurrency
	stepDone
)

// dialogTTL — время жизни незаконченной анкеты.
const dialogTTL = 5 * time.Minute

type dialog struct {
	draft     Draft
	step      int
	startedAt time.Time
}

// DialogManager ведёт пошаговые анкеты в памяти.
// Незавершённая анкета протухает через dialogTTL.
type DialogManager struct {
	mu      sync.Mutex
	active  map[int64]*dialog
	nowFunc func() time.Time
}

func NewDialogManager() *DialogManager {
	return &DialogManager{
		active:  make(map[int64]*dialog),
		nowFunc: time.Now,
	}
}

// Start открывает новую анкету, перекрывая незаконченную старую.
// Возвращает ключ сообщения с первым вопросом.
func (m *DialogManager) Start(userID int64, userName, listingType string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active[userID] = &dialog{
		draft:     Draft{Type: listingType, OwnerID: userID, OwnerName: userName},
		step:      stepAmount,
		startedAt: m.nowFunc(),
	}
	return language.MsgAskAmount
}

// Active сообщает, ждёт ли бот ввода от пользователя.
func (m *DialogManager) Active(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.active[userID]
	if !ok {
		return false
	}
	if m.nowFunc().Sub(d.startedAt) > dialogTTL {
		delete(m.active, userID)
		return false
	}
	return true
}

// Advance записывает ответ текущего шага и возвращает ключ следующего
// вопроса. Кривой ответ не двигает анкету: возвращается ключ ошибки,
// и бот ждёт тот же шаг заново. Когда анкета заполнена, возвращает
// готовый черновик. expired=true означает, что анкета протухла и удалена.
func (m *DialogManager) Advance(userID int64, input string) (prompt string, done *Draft, expired bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.active[userID]
	if !ok {
		return "", nil, true
	}
	if m.nowFunc().Sub(d.startedAt) > dialogTTL {
		delete(m.active, userID)
		return "", nil, true
	}

	input = strings.TrimSpace(input)
	switch d.step {
	case stepAmount:
		if _, err := kamas.Parse(input); err != nil {
			return language.MsgAmountInvalid, nil, false
		}
		d.draft.AmountRaw = input
		d.step = stepPrice
		return language.MsgAskPrice, nil, false
	case stepPrice:
		if _, err := kamas.ParsePrice(input); err != nil {
			return language.MsgPriceInvalid, nil, false
		}
		d.draft.PriceRaw = input
		d.step = stepPayment
		return language.MsgAskPayment, nil, false
	case stepPayment:
		d.draft.Payment = input
		d.step = stepContact
		return language.MsgAskContact, nil, false
	case stepContact:
		d.draft.Contact = input
		d.step = stepNotes
		return language.MsgAskNotes, nil, false
	case stepNotes:
		if input != "-" {
			d.draft.Notes = input
		}
		d.step = stepCurrency
		return language.MsgAskCurrency, nil, false
	case stepCurrency:
		currency := strings.ToUpper(input)
		if currency != CurrencyEUR && currency != CurrencyUSD {
			return language.MsgCurrencyInvalid, nil, false
		}
		d.draft.Currency = currency
		d.step = stepDone
		draft := d.draft
		delete(m.active, userID)
		return "", &draft, false
	}
	return "", nil, true
}

// Cancel снимает анкету, если она есть.
func (m *DialogManager) Cancel(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, userID)
}
