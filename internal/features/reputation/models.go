package reputation

import "time"

// Направления отзывов.
const (
	KindPositive = "positive"
	KindNegative = "negative"
)

// Event — один отзыв о продавце. Лента событий только дописывается;
// повторный отзыв того же покупателя записывается отдельным событием.
type Event struct {
	ID        int64
	SellerID  int64
	RaterID   int64
	Kind      string
	CreatedAt time.Time
}

// Score — агрегат репутации продавца.
type Score struct {
	SellerID int64
	Positive int
	Negative int
	Total    int
}

// Value — итоговый балл: положительные минус отрицательные.
func (s Score) Value() int {
	return s.Positive - s.Negative
}
