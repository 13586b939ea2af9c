package handler

import (
	"context"
	"strings"

	"attendance-bot/internal/config"
	"attendance-bot/internal/service"
	"attendance-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	yearCallbackPrefix  = "year_"
	monthCallbackPrefix = "month_"
)

type Handler struct {
	sender               telegram.Sender
	sessionService       *service.SessionService
	attendanceService    *service.AttendanceService
	nonWorkingDayService *service.NonWorkingDayService
	config               *config.BotConfig
	logger               *logrus.Logger
}

func NewHandler(
	sender telegram.Sender,
	sessionService *service.SessionService,
	attendanceService *service.AttendanceService,
	nonWorkingDayService *service.NonWorkingDayService,
	cfg *config.BotConfig,
) *Handler {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	return &Handler{
		sender:               sender,
		sessionService:       sessionService,
		attendanceService:    attendanceService,
		nonWorkingDayService: nonWorkingDayService,
		config:               cfg,
		logger:               logger,
	}
}

// HandleUpdates обрабатывает обновления до закрытия канала или отмены контекста
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Обработка callback query (для inline кнопок)
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(ctx, update.Message)
}

// handleCallbackQuery обрабатывает inline кнопки выбора года и месяца
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Отвечаем на callback (убираем "часики" у кнопки)
	defer h.request(tgbotapi.NewCallback(callback.ID, ""))

	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	if !h.config.IsOwner(chatID) {
		h.logger.WithField("chat_id", chatID).Warn("Callback from foreign chat ignored")
		return
	}

	data := callback.Data
	switch {
	case strings.HasPrefix(data, yearCallbackPrefix):
		h.showYear(ctx, chatID, strings.TrimPrefix(data, yearCallbackPrefix))
	case strings.HasPrefix(data, monthCallbackPrefix):
		h.showMonth(ctx, chatID, strings.TrimPrefix(data, monthCallbackPrefix))
	default:
		h.logger.WithField("data", data).Warn("Unknown callback data")
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	chatID := message.Chat.ID

	userName := ""
	if message.From != nil {
		userName = message.From.UserName
	}

	// Текст с токеном не пишем в лог
	if message.IsCommand() && message.Command() == "token" {
		h.logger.Infof("[%s] /token ***", userName)
	} else {
		h.logger.Infof("[%s] %s", userName, message.Text)
	}

	if !h.config.IsOwner(chatID) {
		h.logger.WithField("chat_id", chatID).Warn("Message from foreign chat rejected")
		h.sendText(chatID, "⛔ Этот бот приватный.")
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.sendText(chatID, "ℹ️ Я понимаю только команды. Используйте /help для списка команд.")
}

// sendHTML отправляет сообщение в режиме HTML
func (h *Handler) sendHTML(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := h.sender.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.sender.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.sender.Request(c); err != nil {
		h.logger.WithError(err).Warn("Telegram request failed")
	}
}
