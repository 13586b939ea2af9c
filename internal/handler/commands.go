package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"attendance-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := strings.TrimSpace(message.CommandArguments())
	chatID := message.Chat.ID

	switch command {
	case "start":
		h.sendStartMessage(chatID)
	case "help":
		h.sendHelpMessage(chatID)

	// Токен сессии
	case "token":
		h.setToken(ctx, message, args)
	case "logout":
		h.logout(chatID)
	case "session":
		h.showSession(chatID)

	// Посещаемость
	case "years":
		h.showYears(ctx, chatID)
	case "year":
		h.showYear(ctx, chatID, args)
	case "month":
		h.showMonth(ctx, chatID, args)
	case "day":
		h.showDay(ctx, chatID, args)
	case "today":
		h.showDay(ctx, chatID, "")
	case "refresh":
		h.refresh(ctx, chatID)

	// Праздничные дни
	case "holidays":
		h.showNonWorkingDays(chatID, args)
	case "holiday_add":
		h.addNonWorkingDay(chatID, args)
	case "holiday_del":
		h.removeNonWorkingDay(chatID, args)

	default:
		h.sendUnknownCommand(chatID)
	}
}

func (h *Handler) sendUnknownCommand(chatID int64) {
	h.sendText(chatID, "❌ Неизвестная команда. Используйте /help для списка команд.")
}

func (h *Handler) sendStartMessage(chatID int64) {
	text := `👋 Привет! Я считаю часы присутствия в кампусе.

Чтобы начать, отправьте значение cookie session с dashboard:
/token <значение>

Сообщение с токеном будет удалено сразу после сохранения.
Список команд: /help`

	h.sendText(chatID, text)
}

func (h *Handler) sendHelpMessage(chatID int64) {
	text := `📋 Доступные команды:

🔑 Сессия:
/token <значение> - Сохранить токен сессии
/session - Показать сохраненную сессию
/logout - Удалить токен

📊 Посещаемость:
/years - Итоги по годам
/year [ГГГГ] - Год по месяцам (по умолчанию последний)
/month [ГГГГ ММ | ММ] - Месяц по дням (по умолчанию текущий)
/day [ГГГГ-ММ-ДД] - Записи за день (по умолчанию сегодня)
/today - Записи за сегодня
/refresh - Загрузить данные заново

🏖 Праздники:
/holidays [ГГГГ ММ | ММ] - Нерабочие дни месяца
/holiday_add ГГГГ-ММ-ДД - Отметить нерабочий день
/holiday_del ГГГГ-ММ-ДД - Снять отметку

ℹ️ Слитые часы не учитывают пересечения записей из разных источников.`

	h.sendText(chatID, text)
}

// setToken сохраняет токен и удаляет сообщение, в котором он пришел
func (h *Handler) setToken(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	if args != "" {
		h.request(tgbotapi.NewDeleteMessage(chatID, message.MessageID))
	}

	if err := h.sessionService.SetToken(chatID, args); err != nil {
		if errors.Is(err, service.ErrEmptyToken) {
			h.sendText(chatID, "❌ Укажите токен: /token <значение cookie session>")
			return
		}
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to store session token")
		h.sendText(chatID, "❌ Не удалось сохранить токен: "+err.Error())
		return
	}

	report, err := h.attendanceService.Report(ctx, args)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Stored token failed verification")
		h.sendHTML(chatID, "💾 Токен сохранен, но проверить его не удалось.\n"+describeError(err), nil)
		return
	}

	h.sessionService.RememberLogin(chatID, report.Login)

	text := "✅ Токен сохранен."
	if report.Login != "" {
		text = fmt.Sprintf("✅ Токен сохранен. Аккаунт: <b>%s</b>", html.EscapeString(report.Login))
	}
	h.sendHTML(chatID, text+"\nПосмотреть итоги: /years", nil)
}

func (h *Handler) logout(chatID int64) {
	if token, err := h.sessionService.Token(chatID); err == nil {
		h.attendanceService.Refresh(token)
	}

	err := h.sessionService.Logout(chatID)
	if errors.Is(err, service.ErrNoSession) {
		h.sendText(chatID, "ℹ️ Токен не был сохранен.")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to remove session")
		h.sendText(chatID, "❌ Не удалось удалить токен: "+err.Error())
		return
	}

	h.sendText(chatID, "👋 Токен удален.")
}

func (h *Handler) showSession(chatID int64) {
	session, err := h.sessionService.Session(chatID)
	if err != nil {
		h.sendHTML(chatID, describeError(err), nil)
		return
	}

	login := session.Login
	if login == "" {
		login = "неизвестен"
	}

	text := fmt.Sprintf("🔑 <b>Сессия</b>\nАккаунт: %s\nТокен: <code>%s</code>\nОбновлен: %s",
		html.EscapeString(login),
		html.EscapeString(session.MaskedToken()),
		session.UpdatedAt.In(h.attendanceService.Location()).Format("02.01.2006 15:04"),
	)
	h.sendHTML(chatID, text, nil)
}

func (h *Handler) refresh(ctx context.Context, chatID int64) {
	token, err := h.sessionService.Token(chatID)
	if err != nil {
		h.sendHTML(chatID, describeError(err), nil)
		return
	}

	h.attendanceService.Refresh(token)
	h.showYears(ctx, chatID)
}
