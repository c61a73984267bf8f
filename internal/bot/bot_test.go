package bot

import (
	"strconv"
	"strings"
	"testing"

	"serotonyl.ru/kamasbot/internal/features/reputation"
)

// Кнопки отзывов разбираются маршрутизатором callback-ов тем же
// strings.Cut, что и в handleCallback: действие rep+/rep-, аргумент —
// идентификатор продавца.
func TestRateButtonsRouteToRepCallback(t *testing.T) {
	rows := reputation.RateButtons(42)
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Fatalf("кнопок отзыва = %v, ожидали одну строку из двух", rows)
	}

	wantActions := []string{"rep+", "rep-"}
	for i, btn := range rows[0] {
		action, arg, ok := strings.Cut(btn.Data, ":")
		if !ok || action != wantActions[i] {
			t.Errorf("кнопка %q: действие = %q, ожидали %q", btn.Data, action, wantActions[i])
			continue
		}
		sellerID, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || sellerID != 42 {
			t.Errorf("кнопка %q: продавец = %q, ожидали 42", btn.Data, arg)
		}
	}
}

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		name     string
		text     string
		wantCmd  string
		wantArgs []string
		wantOK   bool
	}{
		{"восклицательный префикс", "!sell", "sell", nil, true},
		{"слэш", "/help", "help", nil, true},
		{"точка", ".myrep", "myrep", nil, true},
		{"аргументы", "!escrow open 10M 111 222", "escrow", []string{"open", "10M", "111", "222"}, true},
		{"регистр команды", "!SELL", "sell", nil, true},
		{"пробелы вокруг", "  !badge  ", "badge", nil, true},
		{"без префикса", "sell 10M", "", nil, false},
		{"только префикс", "!", "", nil, false},
		{"пустая строка", "", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			if ok != tt.wantOK || cmd != tt.wantCmd {
				t.Fatalf("ParseCommand(%q) = %q, %v, %v; ожидали %q, %v", tt.text, cmd, args, ok, tt.wantCmd, tt.wantOK)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, ожидали %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, ожидали %q", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}
