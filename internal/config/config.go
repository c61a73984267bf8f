// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID админов через запятую
	AdminIDsRaw string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную

	// --- Чаты маркетплейса ---
	// Панель с описанием площадки и инструкцией
	PanelChatID int64 `envconfig:"PANEL_CHAT_ID" required:"true"`
	// Чат, куда публикуются объявления
	ListingsChatID int64 `envconfig:"LISTINGS_CHAT_ID" required:"true"`
	// Чат с анонсами бейджей
	BadgesChatID int64 `envconfig:"BADGES_CHAT_ID" default:"0"`
	// Чат для ежедневных отчётов по рынку
	ReportsChatID int64 `envconfig:"REPORTS_CHAT_ID" default:"0"`
	// Чат с напоминаниями для посредников
	RemindersChatID int64 `envconfig:"REMINDERS_CHAT_ID" default:"0"`
	// Чат, куда падают заявки на верификацию и на роль посредника
	AdminChatID int64 `envconfig:"ADMIN_CHAT_ID" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"kamas_market"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Бейджи продавцов ---
	// Пороги по количеству положительных отзывов, включительно (>=).
	// В разных деплоях используются 10/30/50 либо 10/50/100.
	BadgeBronze int `envconfig:"BADGE_BRONZE" default:"10"`
	BadgeSilver int `envconfig:"BADGE_SILVER" default:"30"`
	BadgeGold   int `envconfig:"BADGE_GOLD" default:"50"`

	// --- Эскроу ---
	EscrowFeePercent   float64 `envconfig:"ESCROW_FEE_PERCENT" default:"1.0"`
	EscrowTimeoutHours int     `envconfig:"ESCROW_TIMEOUT_HOURS" default:"72"`
	EscrowMinAmount    int64   `envconfig:"ESCROW_MIN_AMOUNT" default:"10000"`

	// --- Бейджи посредников ---
	MiddlemanMinEscrows    int     `envconfig:"MIDDLEMAN_MIN_ESCROWS" default:"5"`
	MiddlemanMinSuccessPct float64 `envconfig:"MIDDLEMAN_MIN_SUCCESS_PCT" default:"80"`

	// --- Архив и отчёты ---
	ArchiveAfterDays      int `envconfig:"ARCHIVE_AFTER_DAYS" default:"7"`
	ReportWindowDays      int `envconfig:"REPORT_WINDOW_DAYS" default:"7"`
	NewSellerLookbackDays int `envconfig:"NEW_SELLER_LOOKBACK_DAYS" default:"7"`

	// --- Напоминания ---
	ReminderFrequencyDays int `envconfig:"REMINDER_FREQUENCY_DAYS" default:"7"`

	// --- Языки ---
	SupportedLanguagesRaw string   `envconfig:"SUPPORTED_LANGUAGES" default:"en,fr,es"`
	SupportedLanguages    []string `envconfig:"-"`
	DefaultLanguage       string   `envconfig:"DEFAULT_LANGUAGE" default:"en"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"5"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureEscrowEnabled       bool `envconfig:"FEATURE_ESCROW_ENABLED" default:"true"`
	FeatureReputationEnabled   bool `envconfig:"FEATURE_REPUTATION_ENABLED" default:"true"`
	FeatureVerificationEnabled bool `envconfig:"FEATURE_VERIFICATION_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.PanelChatID == 0 || c.ListingsChatID == 0 {
		return fmt.Errorf("PANEL_CHAT_ID и LISTINGS_CHAT_ID обязательны")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	// Пороги строго возрастают, иначе выбор бейджа неоднозначен
	if !(c.BadgeBronze < c.BadgeSilver && c.BadgeSilver < c.BadgeGold) {
		return fmt.Errorf("пороги бейджей должны строго возрастать: %d/%d/%d",
			c.BadgeBronze, c.BadgeSilver, c.BadgeGold)
	}
	if c.EscrowFeePercent < 0 || c.EscrowFeePercent > 100 {
		return fmt.Errorf("ESCROW_FEE_PERCENT вне диапазона [0,100]")
	}
	if c.EscrowMinAmount <= 0 {
		return fmt.Errorf("ESCROW_MIN_AMOUNT должен быть > 0")
	}
	if c.EscrowTimeoutHours <= 0 {
		return fmt.Errorf("ESCROW_TIMEOUT_HOURS должен быть > 0")
	}
	if c.ReminderFrequencyDays <= 0 {
		return fmt.Errorf("REMINDER_FREQUENCY_DAYS должен быть > 0")
	}
	if len(c.SupportedLanguages) == 0 {
		return fmt.Errorf("SUPPORTED_LANGUAGES пуст")
	}
	if !containsString(c.SupportedLanguages, c.DefaultLanguage) {
		return fmt.Errorf("DEFAULT_LANGUAGE %q нет в SUPPORTED_LANGUAGES", c.DefaultLanguage)
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	cfg.SupportedLanguages = parseCSV(cfg.SupportedLanguagesRaw)
	cfg.DefaultLanguage = strings.ToLower(strings.TrimSpace(cfg.DefaultLanguage))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsAdmin проверяет, входит ли пользователь в список админов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func parseCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
