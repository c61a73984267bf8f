package escrow

import "testing"

func TestFee(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		percent float64
		want    float64
	}{
		{"один процент от 10M", 10_000_000, 1, 100_000},
		{"один процент от минимума", 10_000, 1, 100},
		{"дробная комиссия округляется вниз", 12_345, 1, 123},
		{"20K под один процент", 20_000, 1, 200},
		{"половина процента", 10_000_000, 0.5, 50_000},
		{"круглая сумма без хвостов", 70_000_000, 1, 700_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fee(tt.amount, tt.percent); got != tt.want {
				t.Errorf("Fee(%v, %v) = %v, ожидали %v", tt.amount, tt.percent, got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	finals := []string{StatusCompleted, StatusExpired, StatusDisputed, StatusCancelled}

	for _, to := range finals {
		if !CanTransition(StatusPending, to) {
			t.Errorf("переход pending -> %s должен быть разрешён", to)
		}
	}
	for _, from := range finals {
		for _, to := range append(finals, StatusPending) {
			if CanTransition(from, to) {
				t.Errorf("переход %s -> %s должен быть запрещён", from, to)
			}
		}
	}
	if CanTransition(StatusPending, StatusPending) {
		t.Error("переход pending -> pending должен быть запрещён")
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  string
	}{
		{"нет сделок", Stats{}, ""},
		{"мало сделок", Stats{Total: 4, Completed: 4}, ""},
		{"младшая ступень", Stats{Total: 5, Completed: 5}, "Middleman"},
		{"счёт есть, успешность низкая", Stats{Total: 10, Completed: 7}, ""},
		{"средняя ступень", Stats{Total: 27, Completed: 25}, "Trusted Middleman"},
		{"счёт на старшую, успешность на среднюю", Stats{Total: 110, Completed: 100}, "Trusted Middleman"},
		{"старшая ступень", Stats{Total: 104, Completed: 100}, "Elite Middleman"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierFor(tt.stats); got != tt.want {
				t.Errorf("TierFor(%+v) = %q, ожидали %q", tt.stats, got, tt.want)
			}
		})
	}
}

func TestSuccessPct(t *testing.T) {
	if got := (Stats{}).SuccessPct(); got != 0 {
		t.Errorf("без сделок успешность = %v, ожидали 0", got)
	}
	if got := (Stats{Total: 10, Completed: 8}).SuccessPct(); got != 80 {
		t.Errorf("8/10 = %v%%, ожидали 80", got)
	}
}
