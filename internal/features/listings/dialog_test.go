package listings

import (
	"errors"
	"testing"
	"time"

	"serotonyl.ru/kamasbot/internal/common"
	"serotonyl.ru/kamasbot/internal/features/language"
)

func TestDialogFullFlow(t *testing.T) {
	m := NewDialogManager()

	prompt := m.Start(42, "seller", TypeSell)
	if prompt != language.MsgAskAmount {
		t.Fatalf("первый вопрос = %q, ожидали %q", prompt, language.MsgAskAmount)
	}
	if !m.Active(42) {
		t.Fatal("анкета должна быть активной после старта")
	}

	steps := []struct {
		input string
		want  string
	}{
		{"10M", language.MsgAskPrice},
		{"5", language.MsgAskPayment},
		{"PayPal", language.MsgAskContact},
		{"@seller", language.MsgAskNotes},
		{"-", language.MsgAskCurrency},
	}
	for _, s := range steps {
		prompt, draft, expired := m.Advance(42, s.input)
		if expired {
			t.Fatalf("анкета неожиданно протухла на вводе %q", s.input)
		}
		if draft != nil {
			t.Fatalf("анкета завершилась раньше времени на вводе %q", s.input)
		}
		if prompt != s.want {
			t.Errorf("после %q вопрос = %q, ожидали %q", s.input, prompt, s.want)
		}
	}

	_, draft, expired := m.Advance(42, "eur")
	if expired || draft == nil {
		t.Fatal("последний шаг должен вернуть готовый черновик")
	}
	if draft.AmountRaw != "10M" || draft.PriceRaw != "5" || draft.Payment != "PayPal" {
		t.Errorf("черновик собран неверно: %+v", draft)
	}
	if draft.Currency != "EUR" {
		t.Errorf("валюта = %q, ожидали EUR", draft.Currency)
	}
	if draft.Notes != "" {
		t.Errorf("прочерк должен оставить заметки пустыми, получили %q", draft.Notes)
	}
	if m.Active(42) {
		t.Error("после завершения анкета должна быть снята")
	}
}

func TestDialogRejectsBadInputInPlace(t *testing.T) {
	m := NewDialogManager()
	m.Start(9, "seller", TypeSell)

	// Кривая сумма не двигает анкету: тот же шаг ждёт повторного ввода.
	prompt, draft, expired := m.Advance(9, "не сумма")
	if expired || draft != nil {
		t.Fatal("кривая сумма не должна ни протухать анкету, ни завершать её")
	}
	if prompt != language.MsgAmountInvalid {
		t.Errorf("после кривой суммы ключ = %q, ожидали %q", prompt, language.MsgAmountInvalid)
	}
	if prompt, _, _ := m.Advance(9, "10M"); prompt != language.MsgAskPrice {
		t.Fatalf("после исправления суммы вопрос = %q, ожидали %q", prompt, language.MsgAskPrice)
	}

	// Нулевая цена отбрасывается на своём шаге.
	if prompt, _, _ := m.Advance(9, "0"); prompt != language.MsgPriceInvalid {
		t.Errorf("после нулевой цены ключ = %q, ожидали %q", prompt, language.MsgPriceInvalid)
	}
	m.Advance(9, "5")
	m.Advance(9, "PayPal")
	m.Advance(9, "@seller")
	m.Advance(9, "-")

	// Чужая валюта не теряет уже собранные ответы.
	if prompt, draft, _ := m.Advance(9, "GBP"); draft != nil || prompt != language.MsgCurrencyInvalid {
		t.Errorf("после GBP ключ = %q, draft = %v", prompt, draft)
	}
	_, draft, _ = m.Advance(9, "usd")
	if draft == nil || draft.Currency != "USD" || draft.AmountRaw != "10M" {
		t.Fatalf("после исправления валюты черновик = %+v", draft)
	}
}

func TestDialogCancel(t *testing.T) {
	m := NewDialogManager()
	m.Start(3, "user", TypeSell)
	m.Cancel(3)

	if m.Active(3) {
		t.Error("после отмены анкета не должна быть активной")
	}
	if _, _, expired := m.Advance(3, "10M"); !expired {
		t.Error("ввод в отменённую анкету должен вернуть expired")
	}
}

func TestDialogExpiry(t *testing.T) {
	m := NewDialogManager()
	now := time.Now()
	m.nowFunc = func() time.Time { return now }

	m.Start(1, "user", TypeBuy)
	now = now.Add(dialogTTL + time.Second)

	if m.Active(1) {
		t.Error("протухшая анкета не должна считаться активной")
	}
	if _, _, expired := m.Advance(1, "10M"); !expired {
		t.Error("ввод в протухшую анкету должен вернуть expired")
	}
}

func TestDialogRestartOverwrites(t *testing.T) {
	m := NewDialogManager()

	m.Start(7, "user", TypeSell)
	m.Advance(7, "10M")
	m.Start(7, "user", TypeBuy)

	// Новая анкета снова начинается с суммы.
	prompt, draft, expired := m.Advance(7, "5M")
	if expired || draft != nil {
		t.Fatal("после перезапуска анкета должна принимать сумму")
	}
	if prompt != language.MsgAskPrice {
		t.Errorf("после суммы вопрос = %q, ожидали %q", prompt, language.MsgAskPrice)
	}
}

func TestValidateDraft(t *testing.T) {
	base := Draft{
		Type: TypeSell, OwnerID: 1, OwnerName: "seller",
		AmountRaw: "70M", PriceRaw: "4,5", Payment: "PayPal",
		Contact: "@seller", Currency: "eur",
	}

	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
	}{
		{name: "корректный черновик"},
		{name: "кривая сумма", mutate: func(d *Draft) { d.AmountRaw = "abc" }, wantErr: common.ErrInvalidFormat},
		{name: "нулевая цена", mutate: func(d *Draft) { d.PriceRaw = "0" }, wantErr: common.ErrInvalidPrice},
		{name: "нет оплаты", mutate: func(d *Draft) { d.Payment = "  " }, wantErr: common.ErrEmptyField},
		{name: "нет контакта", mutate: func(d *Draft) { d.Contact = "" }, wantErr: common.ErrEmptyField},
		{name: "чужая валюта", mutate: func(d *Draft) { d.Currency = "GBP" }, wantErr: common.ErrUnknownCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			if tt.mutate != nil {
				tt.mutate(&d)
			}
			l, err := ValidateDraft(&d)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, ожидали %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
			if l.Amount != 70_000_000 {
				t.Errorf("сумма = %v, ожидали 70000000", l.Amount)
			}
			if l.PricePerM != 4.5 {
				t.Errorf("цена = %v, ожидали 4.5", l.PricePerM)
			}
			if l.Currency != CurrencyEUR {
				t.Errorf("валюта = %q, ожидали EUR", l.Currency)
			}
			if l.Split == nil {
				t.Fatal("сумма выше порога должна получить разбивку платежа")
			}
			if l.Split.FirstHalf != 35_000_000 || l.Split.SecondHalf != 35_000_000 {
				t.Errorf("разбивка = %+v", l.Split)
			}
		})
	}
}

func TestValidateDraftNoSplitBelowThreshold(t *testing.T) {
	d := Draft{
		Type: TypeBuy, AmountRaw: "10M", PriceRaw: "5",
		Payment: "PayPal", Contact: "@buyer", Currency: "USD",
	}
	l, err := ValidateDraft(&d)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if l.Split != nil {
		t.Errorf("10M не должно получать разбивку, получили %+v", l.Split)
	}
}
