// Package bot содержит главный модуль бота — polling, маршрутизацию
// команд и нажатий кнопок к обработчикам фич.
package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/kamasbot/internal/bot/middleware"
	"serotonyl.ru/kamasbot/internal/config"
	"serotonyl.ru/kamasbot/internal/features/escrow"
	"serotonyl.ru/kamasbot/internal/features/language"
	"serotonyl.ru/kamasbot/internal/features/listings"
	"serotonyl.ru/kamasbot/internal/features/members"
	"serotonyl.ru/kamasbot/internal/features/reports"
	"serotonyl.ru/kamasbot/internal/features/reputation"
	"serotonyl.ru/kamasbot/internal/features/threads"
	"serotonyl.ru/kamasbot/internal/features/verification"
)

// PanelService перепубликует панель сервиса по команде администратора.
type PanelService interface {
	ResetPanel(ctx context.Context) error
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	rateLimiter *middleware.RateLimiter

	memberService   *members.Service
	languageService *language.Service
	reportService   *reports.Service
	panelService    PanelService

	listingHandlers      *listings.Handlers
	threadHandlers       *threads.Handlers
	reputationHandlers   *reputation.Handlers
	escrowHandlers       *escrow.Handlers
	verificationHandlers *verification.Handlers

	membersRepo *members.Repository

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	membersRepo *members.Repository,
	languageService *language.Service,
	reportService *reports.Service,
	panelService PanelService,
	listingHandlers *listings.Handlers,
	threadHandlers *threads.Handlers,
	reputationHandlers *reputation.Handlers,
	escrowHandlers *escrow.Handlers,
	verificationHandlers *verification.Handlers,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:                  api,
		cfg:                  cfg,
		rateLimiter:          middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService:        memberService,
		membersRepo:          membersRepo,
		languageService:      languageService,
		reportService:        reportService,
		panelService:         panelService,
		listingHandlers:      listingHandlers,
		threadHandlers:       threadHandlers,
		reputationHandlers:   reputationHandlers,
		escrowHandlers:       escrowHandlers,
		verificationHandlers: verificationHandlers,
		parser:               NewCommandParser(),
		inflight:             make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		return
	}
	message := update.Message

	middleware.LogMessage(message)

	// Доступ: чат объявлений, панель либо личные сообщения
	if !b.allowedChat(message) {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// EnsureMember — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		b.routeCommand(ctx, message, chatID, userID, cmd, args)
		return
	}

	// Не команда: возможно, пользователь отвечает на вопрос анкеты
	if b.listingHandlers.InDialog(userID) {
		b.listingHandlers.HandleInput(ctx, userID, chatID, message.Text)
	}
}

// handleCallback маршрутизирует нажатие инлайн-кнопки.
// Формат данных: "<действие>:<аргумент>".
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	middleware.LogCallback(callback)

	if callback.From == nil || callback.Data == "" {
		return
	}
	userID := callback.From.ID

	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited (callback)")
		return
	}

	action, arg, _ := strings.Cut(callback.Data, ":")
	switch action {
	case "thread":
		b.threadHandlers.HandleOpenCallback(ctx, callback.ID, arg, userID)

	case "rep+", "rep-":
		if !b.cfg.FeatureReputationEnabled {
			return
		}
		sellerID, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			log.WithField("data", callback.Data).Warn("кривой seller_id в callback")
			return
		}
		b.reputationHandlers.HandleRateCallback(ctx, callback.ID, sellerID, userID, action == "rep+")

	case "panel":
		b.handlePanelCallback(ctx, callback.ID, arg)
	}
}

// handlePanelCallback отвечает на кнопки панели сервиса.
func (b *Bot) handlePanelCallback(ctx context.Context, callbackID, section string) {
	switch section {
	case "rules":
		b.answerCallback(callbackID,
			"Trade only via listings, use escrow above 50M, never pay outside a thread.")
	case "middlemen":
		middlemen, err := b.membersRepo.GetMiddlemen(ctx)
		if err != nil {
			log.WithError(err).Error("список посредников не прочитан")
			b.answerCallback(callbackID, "Try again later.")
			return
		}
		if len(middlemen) == 0 {
			b.answerCallback(callbackID, "No active middlemen yet.")
			return
		}
		names := make([]string, 0, len(middlemen))
		for _, m := range middlemen {
			names = append(names, m.DisplayName())
		}
		b.answerCallback(callbackID, "Middlemen: "+strings.Join(names, ", "))
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, chatID, userID int64, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help":
		lang := b.languageService.Get(ctx, userID)
		b.sendMessage(chatID, language.T(lang, language.MsgHelp))

	case "sell":
		b.listingHandlers.HandleSell(ctx, userID, chatID, displayName(message.From))

	case "buy":
		b.listingHandlers.HandleBuy(ctx, userID, chatID, displayName(message.From))

	case "cancel":
		b.listingHandlers.HandleCancel(ctx, userID, chatID)

	case "closethread":
		b.threadHandlers.HandleClose(ctx, chatID, userID, args)

	case "rep":
		if !b.cfg.FeatureReputationEnabled {
			return
		}
		// Отзыв ответом на сообщение продавца: !rep + либо !rep -
		if len(args) == 0 || (args[0] != "+" && args[0] != "-") ||
			message.ReplyToMessage == nil || message.ReplyToMessage.From == nil {
			b.sendMessage(chatID, "Usage: reply to the seller's message with !rep + or !rep -")
			return
		}
		b.reputationHandlers.HandleRate(ctx, chatID, message.ReplyToMessage.From.ID, userID, args[0] == "+")

	case "myrep":
		if b.cfg.FeatureReputationEnabled {
			b.reputationHandlers.HandleMyRep(ctx, userID, chatID)
		}

	case "badge":
		if b.cfg.FeatureReputationEnabled {
			b.reputationHandlers.HandleBadge(ctx, userID, chatID)
		}

	case "escrow":
		if !b.cfg.FeatureEscrowEnabled {
			b.sendMessage(chatID, "🤝 Escrow service is temporarily disabled")
			return
		}
		b.routeEscrow(ctx, chatID, userID, args)

	case "verify":
		if !b.cfg.FeatureVerificationEnabled {
			return
		}
		// Телефон не должен светиться в общем чате
		if !message.Chat.IsPrivate() {
			b.sendMessage(chatID, "🔒 Send !verify in a direct message.")
			return
		}
		b.verificationHandlers.HandleVerify(ctx, userID, chatID, args)

	case "approve":
		b.verificationHandlers.HandleApprove(ctx, userID, chatID, args)

	case "reject":
		b.verificationHandlers.HandleReject(ctx, userID, chatID, args)

	case "applymm":
		b.verificationHandlers.HandleApplyMM(ctx, userID, chatID)

	case "grantmm":
		b.verificationHandlers.HandleGrantMM(ctx, userID, chatID, args)

	case "language":
		b.handleLanguage(ctx, chatID, userID, args)

	case "report":
		if !b.cfg.IsAdmin(userID) {
			lang := b.languageService.Get(ctx, userID)
			b.sendMessage(chatID, language.T(lang, language.MsgAdminsOnly))
			return
		}
		if err := b.reportService.Publish(ctx); err != nil {
			log.WithError(err).Error("сводка по команде не опубликована")
			b.sendMessage(chatID, "❌ Report failed, see logs.")
		}

	case "panel":
		if !b.cfg.IsAdmin(userID) {
			lang := b.languageService.Get(ctx, userID)
			b.sendMessage(chatID, language.T(lang, language.MsgAdminsOnly))
			return
		}
		if err := b.panelService.ResetPanel(ctx); err != nil {
			log.WithError(err).Error("панель по команде не перепубликована")
			b.sendMessage(chatID, "❌ Panel reset failed, see logs.")
		}
	}
}

// routeEscrow разбирает подкоманды !escrow.
func (b *Bot) routeEscrow(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		b.sendMessage(chatID, "Usage: !escrow <open|status|complete|dispute|cancel> ...")
		return
	}
	sub, rest := strings.ToLower(args[0]), args[1:]
	switch sub {
	case "open":
		b.escrowHandlers.HandleOpen(ctx, userID, chatID, rest)
	case "status":
		b.escrowHandlers.HandleStatus(ctx, userID, chatID, rest)
	case "complete":
		b.escrowHandlers.HandleComplete(ctx, userID, chatID, rest)
	case "dispute":
		b.escrowHandlers.HandleDispute(ctx, userID, chatID, rest)
	case "cancel":
		b.escrowHandlers.HandleCancel(ctx, userID, chatID, rest)
	default:
		b.sendMessage(chatID, "Usage: !escrow <open|status|complete|dispute|cancel> ...")
	}
}

// handleLanguage обрабатывает !language [код].
func (b *Bot) handleLanguage(ctx context.Context, chatID, userID int64, args []string) {
	lang := b.languageService.Get(ctx, userID)
	if len(args) == 0 {
		b.sendMessage(chatID, language.T(lang, language.MsgLanguageInvalid,
			strings.Join(b.languageService.Supported(), ", ")))
		return
	}

	if err := b.languageService.Set(ctx, userID, args[0]); err != nil {
		b.sendMessage(chatID, language.T(lang, language.MsgLanguageInvalid,
			strings.Join(b.languageService.Supported(), ", ")))
		return
	}
	newLang := strings.ToLower(args[0])
	b.sendMessage(chatID, language.T(newLang, language.MsgLanguageSet, newLang))
}

// allowedChat пропускает сообщения из чатов площадки и личных диалогов.
func (b *Bot) allowedChat(message *tgbotapi.Message) bool {
	if message.Chat == nil {
		return false
	}
	if message.Chat.IsPrivate() {
		return true
	}
	chatID := message.Chat.ID
	return chatID == b.cfg.ListingsChatID || chatID == b.cfg.PanelChatID
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// answerCallback показывает пользователю всплывающий ответ на кнопку.
func (b *Bot) answerCallback(callbackID, text string) {
	cb := tgbotapi.NewCallbackWithAlert(callbackID, text)
	if _, err := b.api.Request(cb); err != nil {
		log.WithError(err).Debug("Не удалось ответить на callback")
	}
}

func displayName(user *tgbotapi.User) string {
	if user == nil {
		return "unknown"
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

// CommandParser парсит команды с префиксами !, . и /.
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
