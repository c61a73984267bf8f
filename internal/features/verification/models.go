package verification

import "time"

// Статусы заявки на верификацию.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Поддерживаемые социальные платформы.
var SupportedPlatforms = map[string]bool{
	"twitter":   true,
	"instagram": true,
	"facebook":  true,
}

// Application — заявка на статус проверенного продавца.
// Телефон хранится только в виде хеша.
type Application struct {
	ID             int64
	UserID         int64
	PhoneHash      string
	SocialPlatform string
	SocialHandle   string
	Experience     string
	Status         string
	Reason         string
	CreatedAt      time.Time
	ReviewedAt     *time.Time
	ReviewedBy     *int64
}
