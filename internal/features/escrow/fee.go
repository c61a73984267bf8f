package escrow

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Fee считает комиссию гаранта: процент от суммы, округлённый вниз
// до целого камаса. Счёт через decimal, чтобы 1% от круглых сумм
// не плавал на двоичной арифметике.
func Fee(amount, percent float64) float64 {
	fee := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100))
	f, _ := fee.Float64()
	return math.Floor(f)
}

// CanTransition отвечает, допустим ли переход между статусами.
// Все переходы начинаются в pending; закрытые сделки финальны.
func CanTransition(from, to string) bool {
	if from != StatusPending {
		return false
	}
	switch to {
	case StatusCompleted, StatusExpired, StatusDisputed, StatusCancelled:
		return true
	}
	return false
}

// MiddlemanTier — ступень бейджа гаранта. Обе планки обязательны.
type MiddlemanTier struct {
	Name          string
	MinCount      int
	MinSuccessPct float64
}

// Ступени бейджей гаранта, от младшей к старшей.
var MiddlemanTiers = []MiddlemanTier{
	{Name: "Middleman", MinCount: 5, MinSuccessPct: 80},
	{Name: "Trusted Middleman", MinCount: 25, MinSuccessPct: 90},
	{Name: "Elite Middleman", MinCount: 100, MinSuccessPct: 95},
}

// TierFor возвращает старшую ступень, у которой выполнены обе планки.
// Пустая строка — ступени нет.
func TierFor(stats Stats) string {
	tiers := make([]MiddlemanTier, len(MiddlemanTiers))
	copy(tiers, MiddlemanTiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinCount > tiers[j].MinCount })

	pct := stats.SuccessPct()
	for _, tier := range tiers {
		if stats.Completed >= tier.MinCount && pct >= tier.MinSuccessPct {
			return tier.Name
		}
	}
	return ""
}
