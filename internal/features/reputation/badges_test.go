package reputation

import "testing"

func TestBadgeFor(t *testing.T) {
	def := Thresholds{Bronze: 10, Silver: 30, Gold: 50}
	alt := Thresholds{Bronze: 10, Silver: 50, Gold: 100}

	tests := []struct {
		name       string
		thresholds Thresholds
		positive   int
		want       string
	}{
		{"ноль отзывов", def, 0, ""},
		{"под порогом бронзы", def, 9, ""},
		{"ровно бронза", def, 10, BadgeBronze},
		{"между бронзой и серебром", def, 29, BadgeBronze},
		{"ровно серебро", def, 30, BadgeSilver},
		{"ровно золото", def, 50, BadgeGold},
		{"выше золота", def, 500, BadgeGold},
		{"альтернативные пороги серебро", alt, 50, BadgeSilver},
		{"альтернативные пороги золото", alt, 100, BadgeGold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BadgeFor(tt.thresholds, tt.positive); got != tt.want {
				t.Errorf("BadgeFor(%+v, %d) = %q, ожидали %q", tt.thresholds, tt.positive, got, tt.want)
			}
		})
	}
}

func TestScoreValue(t *testing.T) {
	s := Score{Positive: 12, Negative: 3, Total: 15}
	if s.Value() != 9 {
		t.Errorf("Value() = %d, ожидали 9", s.Value())
	}
}
