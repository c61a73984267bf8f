package reputation

// Названия бейджей продавца.
const (
	BadgeBronze = "Bronze"
	BadgeSilver = "Silver"
	BadgeGold   = "Gold"
)

// Thresholds — пороги положительных отзывов для бейджей.
// Пороги строго возрастают (проверяется конфигурацией).
type Thresholds struct {
	Bronze int
	Silver int
	Gold   int
}

// BadgeFor возвращает бейдж по числу положительных отзывов.
// Пороги включительные: ровно Bronze отзывов уже дают бронзу.
// Пустая строка — бейджа нет.
func BadgeFor(t Thresholds, positive int) string {
	switch {
	case positive >= t.Gold:
		return BadgeGold
	case positive >= t.Silver:
		return BadgeSilver
	case positive >= t.Bronze:
		return BadgeBronze
	default:
		return ""
	}
}
