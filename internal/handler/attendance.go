package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"attendance-bot/internal/service"
	"attendance-bot/internal/upstream"
	"attendance-bot/pkg/attendance"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const monthsPerRow = 3

var errBadArgs = errors.New("bad arguments")

// loadSummary загружает и агрегирует отчет; при ошибке сам отвечает пользователю
func (h *Handler) loadSummary(ctx context.Context, chatID int64) (*service.Summary, bool) {
	token, err := h.sessionService.Token(chatID)
	if err != nil {
		if !errors.Is(err, service.ErrNoSession) {
			h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to load session")
		}
		h.sendHTML(chatID, describeError(err), nil)
		return nil, false
	}

	summary, err := h.attendanceService.Summary(ctx, token)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to load attendance")
		h.sendHTML(chatID, describeError(err), nil)
		return nil, false
	}

	h.sessionService.RememberLogin(chatID, summary.Login)
	return summary, true
}

// showYears показывает итоги по годам с кнопками выбора года
func (h *Handler) showYears(ctx context.Context, chatID int64) {
	summary, ok := h.loadSummary(ctx, chatID)
	if !ok {
		return
	}

	var markup interface{}
	if !summary.IsEmpty() {
		markup = yearsKeyboard(summary.Years)
	}
	h.sendHTML(chatID, h.attendanceService.FormatYears(summary), markup)
}

// showYear показывает год по месяцам; без аргумента - последний год с данными
func (h *Handler) showYear(ctx context.Context, chatID int64, args string) {
	yearNumber := 0
	if args != "" {
		y, err := strconv.Atoi(args)
		if err != nil || y < 2000 || y > 2100 {
			h.sendText(chatID, "❌ Неверный год. Используйте: /year [ГГГГ]")
			return
		}
		yearNumber = y
	}

	summary, ok := h.loadSummary(ctx, chatID)
	if !ok {
		return
	}

	year := summary.Latest()
	if yearNumber != 0 {
		year = attendance.FindYear(summary.Years, yearNumber)
	}
	if year == nil {
		h.sendText(chatID, noDataText(args))
		return
	}

	h.sendHTML(chatID, h.attendanceService.FormatYear(year), monthsKeyboard(year))
}

// showMonth показывает месяц по дням
func (h *Handler) showMonth(ctx context.Context, chatID int64, args string) {
	monthKey, err := parseMonthArgs(args, h.attendanceService.Now())
	if err != nil {
		h.sendText(chatID, "❌ Неверный формат. Используйте: /month [ГГГГ ММ] или /month [ММ]")
		return
	}

	summary, ok := h.loadSummary(ctx, chatID)
	if !ok {
		return
	}

	var month *attendance.Month
	if year := attendance.FindYear(summary.Years, yearOfKey(monthKey)); year != nil {
		month = year.FindMonth(monthKey)
	}
	if month == nil {
		h.sendText(chatID, fmt.Sprintf("📭 Нет данных за %s.", service.MonthTitle(monthKey)))
		return
	}

	h.sendHTML(chatID, h.attendanceService.FormatMonth(month), nil)
}

// showDay показывает слитые интервалы и сырые записи дня
func (h *Handler) showDay(ctx context.Context, chatID int64, args string) {
	date, err := parseDayArgs(args, h.attendanceService.Now())
	if err != nil {
		h.sendText(chatID, "❌ Неверная дата. Используйте: /day [ГГГГ-ММ-ДД]")
		return
	}

	summary, ok := h.loadSummary(ctx, chatID)
	if !ok {
		return
	}

	day := attendance.FindDay(summary.Years, date)
	if day == nil {
		h.sendText(chatID, fmt.Sprintf("📭 Нет записей за %s.", date.Format("02.01.2006")))
		return
	}

	h.sendHTML(chatID, h.attendanceService.FormatDay(day), nil)
}

// parseMonthArgs принимает "", "ММ", "ГГГГ ММ" и "ГГГГ-ММ"
func parseMonthArgs(args string, now time.Time) (string, error) {
	year, month := now.Year(), int(now.Month())

	parts := strings.Fields(strings.ReplaceAll(args, "-", " "))
	switch len(parts) {
	case 0:
	case 1:
		m, err := strconv.Atoi(parts[0])
		if err != nil {
			return "", errBadArgs
		}
		month = m
	case 2:
		y, err := strconv.Atoi(parts[0])
		if err != nil || y < 2000 || y > 2100 {
			return "", errBadArgs
		}
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", errBadArgs
		}
		year, month = y, m
	default:
		return "", errBadArgs
	}

	if month < 1 || month > 12 {
		return "", errBadArgs
	}
	return fmt.Sprintf("%04d-%02d", year, month), nil
}

// parseDayArgs принимает "" (сегодня) или дату "ГГГГ-ММ-ДД" в зоне now
func parseDayArgs(args string, now time.Time) (time.Time, error) {
	if args == "" {
		return now, nil
	}

	date, err := time.ParseInLocation(attendance.DateKeyFormat, args, now.Location())
	if err != nil {
		return time.Time{}, errBadArgs
	}
	return date, nil
}

func yearOfKey(monthKey string) int {
	y, _ := strconv.Atoi(monthKey[:4])
	return y
}

func noDataText(yearArg string) string {
	if yearArg == "" {
		return "📭 Нет данных о посещаемости."
	}
	return fmt.Sprintf("📭 Нет данных за %s год.", yearArg)
}

func yearsKeyboard(years []*attendance.Year) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(years))
	for _, y := range years {
		label := strconv.Itoa(y.Year)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, yearCallbackPrefix+label))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func monthsKeyboard(year *attendance.Year) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, m := range year.Months {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(service.MonthTitle(m.MonthKey), monthCallbackPrefix+m.MonthKey))
		if len(row) == monthsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// describeError переводит ошибку загрузки в сообщение для пользователя (HTML)
func describeError(err error) string {
	var malformed *attendance.MalformedEntryError
	var status *upstream.StatusError

	switch {
	case errors.Is(err, service.ErrNoSession):
		return "🔑 Токен сессии не найден.\nОтправьте /token &lt;значение cookie session&gt;"
	case errors.Is(err, upstream.ErrUnauthorized):
		return "🔒 Токен недействителен или истек. Обновите его через /token."
	case errors.As(err, &malformed):
		return "⚠️ API вернуло некорректную запись:\n<code>" + html.EscapeString(malformed.Error()) + "</code>"
	case errors.As(err, &status):
		return "❌ API посещаемости недоступно: " + html.EscapeString(status.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "⌛ API посещаемости не ответило вовремя. Попробуйте позже."
	default:
		return "❌ Ошибка загрузки посещаемости: " + html.EscapeString(err.Error())
	}
}
