// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы,
// обработчики и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/bot"
	"serotonyl.ru/kamasbot/internal/config"
	"serotonyl.ru/kamasbot/internal/db/postgres"
	"serotonyl.ru/kamasbot/internal/features/escrow"
	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/features/listings"
	"serotonyl.ru/kamasbot/internal/features/members"
	"serotonyl.ru/kamasbot/internal/features/reports"
	"serotonyl.ru/kamasbot/internal/features/reputation"
	"serotonyl.ru/kamasbot/internal/features/threads"
	"serotonyl.ru/kamasbot/internal/features/verification"
	"serotonyl.ru/kamasbot/internal/jobs"
	"serotonyl.ru/kamasbot/internal/platform"
	"serotonyl.ru/kamasbot/internal/restore"
	"serotonyl.ru/kamasbot/internal/store"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Restorer  *restore.Restorer
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	client := platform.NewTelegram(botAPI, cfg.BadgesChatID)

	// === 3. Репозитории и хранилище записей ===
	records := store.New(pool)
	memberRepo := members.NewRepository(pool)
	listingRepo := listings.NewRepository(pool)
	reputationRepo := reputation.NewRepository(pool)
	escrowRepo := escrow.NewRepository(pool)
	verificationRepo := verification.NewRepository(pool)

	// === 4. Сервисы ===
	memberService := members.NewService(memberRepo)
	languageService := language.NewService(records, cfg.SupportedLanguages, cfg.DefaultLanguage)
	listingService := listings.NewService(listingRepo, client, cfg.ListingsChatID)
	threadService := threads.NewService(records, client, cfg.PanelChatID)
	reputationService := reputation.NewService(reputationRepo, memberRepo, client, reputation.Thresholds{
		Bronze: cfg.BadgeBronze,
		Silver: cfg.BadgeSilver,
		Gold:   cfg.BadgeGold,
	})
	escrowService := escrow.NewService(escrowRepo, memberRepo, client, escrow.Config{
		FeePercent: cfg.EscrowFeePercent,
		Timeout:    time.Duration(cfg.EscrowTimeoutHours) * time.Hour,
		MinAmount:  float64(cfg.EscrowMinAmount),
	})
	verificationService := verification.NewService(verificationRepo, memberRepo, escrowService, client, verification.Config{
		MiddlemanMinEscrows: cfg.MiddlemanMinEscrows,
		MiddlemanMinSuccess: cfg.MiddlemanMinSuccessPct,
		AdminChatID:         cfg.AdminChatID,
	})
	reportService := reports.NewService(listingRepo, client, reports.Config{
		WindowDays:        cfg.ReportWindowDays,
		NewSellerLookback: cfg.NewSellerLookbackDays,
		ReportsChatID:     cfg.ReportsChatID,
	})

	// === 5. Обработчики ===
	listingHandlers := listings.NewHandlers(listings.NewDialogManager(), listingService, languageService, client)
	threadHandlers := threads.NewHandlers(threadService, listingService, languageService, client)
	reputationHandlers := reputation.NewHandlers(reputationService, languageService, client)
	escrowHandlers := escrow.NewHandlers(escrowService, languageService, client)
	verificationHandlers := verification.NewHandlers(verificationService, languageService, client, cfg.IsAdmin)

	// === 6. Восстановление ===
	restorer := restore.New(listingService, threadService, records, client, cfg.PanelChatID)

	// === 7. Собираем бота и планировщик ===
	b := bot.New(
		botAPI, cfg,
		memberService, memberRepo,
		languageService, reportService, restorer,
		listingHandlers, threadHandlers,
		reputationHandlers, escrowHandlers, verificationHandlers,
	)
	scheduler := jobs.NewScheduler(cfg, escrowService, listingService, reportService, memberRepo, client)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		Restorer:  restorer,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Members},
		{2, migration002Records},
		{3, migration003Listings},
		{4, migration004Reputation},
		{5, migration005Escrows},
		{6, migration006Verifications},
	}

	for _, m := range migrations {
		if err := postgres.ApplyMigration(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    badge_role VARCHAR(64),
    middleman_badge VARCHAR(64),
    is_verified BOOLEAN DEFAULT FALSE,
    is_middleman BOOLEAN DEFAULT FALSE,
    is_banned BOOLEAN DEFAULT FALSE,
    joined_at TIMESTAMP DEFAULT NOW(),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);
CREATE INDEX IF NOT EXISTS idx_members_middleman ON members(is_middleman) WHERE is_middleman;
`

var migration002Records = `
CREATE TABLE IF NOT EXISTS records (
    id BIGSERIAL PRIMARY KEY,
    kind VARCHAR(50) NOT NULL,
    record_key VARCHAR(255) NOT NULL,
    payload BYTEA,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (kind, record_key)
);
CREATE INDEX IF NOT EXISTS idx_records_kind_key ON records(kind, record_key text_pattern_ops);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at DESC);
`

var migration003Listings = `
CREATE TABLE IF NOT EXISTS listings (
    id CHAR(26) PRIMARY KEY,
    listing_type VARCHAR(10) NOT NULL,
    owner_id BIGINT NOT NULL REFERENCES members(user_id),
    owner_name VARCHAR(255) NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    price_per_m DOUBLE PRECISION NOT NULL,
    payment VARCHAR(255) NOT NULL,
    contact VARCHAR(255) NOT NULL,
    notes TEXT DEFAULT '',
    currency VARCHAR(3) NOT NULL,
    split_first DOUBLE PRECISION,
    split_second DOUBLE PRECISION,
    message_id INTEGER,
    archived BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_listings_owner ON listings(owner_id);
CREATE INDEX IF NOT EXISTS idx_listings_archived_created ON listings(archived, created_at);
`

var migration004Reputation = `
CREATE TABLE IF NOT EXISTS reputation_events (
    id BIGSERIAL PRIMARY KEY,
    seller_id BIGINT NOT NULL REFERENCES members(user_id),
    rater_id BIGINT NOT NULL REFERENCES members(user_id),
    kind VARCHAR(10) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reputation_events_seller ON reputation_events(seller_id);
CREATE INDEX IF NOT EXISTS idx_reputation_events_created_at ON reputation_events(created_at DESC);
`

var migration005Escrows = `
CREATE TABLE IF NOT EXISTS escrows (
    id CHAR(26) PRIMARY KEY,
    buyer_id BIGINT NOT NULL REFERENCES members(user_id),
    seller_id BIGINT NOT NULL REFERENCES members(user_id),
    middleman_id BIGINT NOT NULL REFERENCES members(user_id),
    amount DOUBLE PRECISION NOT NULL,
    fee DOUBLE PRECISION NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    dispute_by BIGINT,
    dispute_reason TEXT NOT NULL DEFAULT '',
    disputed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_escrows_status_expires ON escrows(status, expires_at);
CREATE INDEX IF NOT EXISTS idx_escrows_middleman ON escrows(middleman_id);
`

var migration006Verifications = `
CREATE TABLE IF NOT EXISTS verifications (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    phone_hash VARCHAR(255) NOT NULL,
    social_platform VARCHAR(20) NOT NULL,
    social_handle VARCHAR(255) NOT NULL,
    experience TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    reason TEXT DEFAULT '',
    created_at TIMESTAMP DEFAULT NOW(),
    reviewed_at TIMESTAMP,
    reviewed_by BIGINT
);
CREATE INDEX IF NOT EXISTS idx_verifications_user_status ON verifications(user_id, status);
`
