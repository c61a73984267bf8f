// Package members управляет участниками маркетплейса: регистрацией,
// бейджами и флагами верификации. models.go описывает структуры
// для работы с таблицей members.
package members

import "time"

// Member представляет участника маркетплейса в базе данных.
// Запись создаётся при первом взаимодействии пользователя с ботом.
type Member struct {
	ID             int64     `db:"id"`              // Автоинкрементный ID записи в БД
	UserID         int64     `db:"user_id"`         // Telegram user ID (уникальный)
	Username       string    `db:"username"`        // @username (может быть пустым)
	FirstName      string    `db:"first_name"`      // Имя пользователя
	LastName       string    `db:"last_name"`       // Фамилия (может быть пустой)
	BadgeRole      *string   `db:"badge_role"`      // Текущий бейдж продавца (Bronze/Silver/Gold, nil = нет)
	MiddlemanBadge *string   `db:"middleman_badge"` // Текущий бейдж посредника (nil = нет)
	IsVerified     bool      `db:"is_verified"`     // Верифицированный продавец
	IsMiddleman    bool      `db:"is_middleman"`    // Утверждённый посредник
	IsBanned       bool      `db:"is_banned"`       // Флаг бана
	JoinedAt       time.Time `db:"joined_at"`       // Когда впервые появился
	CreatedAt      time.Time `db:"created_at"`      // Когда запись создана в БД
	UpdatedAt      time.Time `db:"updated_at"`      // Последнее обновление записи
}

// UpdateInfo содержит данные для обновления информации о пользователе.
// Используется, когда имя/username пользователя могли измениться.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	return name
}
