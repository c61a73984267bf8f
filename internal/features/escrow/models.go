package escrow

import "time"

// Статусы сделки через гаранта.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
	StatusDisputed  = "disputed"
	StatusCancelled = "cancelled"
)

// Escrow — сделка под присмотром гаранта. Из pending сделка уходит
// ровно один раз: в completed, expired, disputed или cancelled.
type Escrow struct {
	ID          string
	BuyerID     int64
	SellerID    int64
	MiddlemanID int64
	Amount      float64
	Fee         float64
	Status      string

	// Заполняются только при споре
	DisputedBy    *int64
	DisputeReason string
	DisputedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Stats — статистика гаранта для бейджей и заявок.
type Stats struct {
	MiddlemanID int64
	Total       int
	Completed   int
}

// SuccessPct — доля успешно закрытых сделок, в процентах.
func (s Stats) SuccessPct() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}
