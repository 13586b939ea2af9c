package handler

import (
	"errors"
	"fmt"
	"strconv"

	"attendance-bot/internal/service"
)

// showNonWorkingDays показывает праздничные дни месяца
func (h *Handler) showNonWorkingDays(chatID int64, args string) {
	monthKey, err := parseMonthArgs(args, h.attendanceService.Now())
	if err != nil {
		h.sendText(chatID, "❌ Неверный формат. Используйте: /holidays [ГГГГ ММ] или /holidays [ММ]")
		return
	}

	year := yearOfKey(monthKey)
	month, _ := strconv.Atoi(monthKey[5:])

	days, err := h.nonWorkingDayService.ForMonth(year, month)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get non-working days")
		h.sendText(chatID, "❌ Ошибка получения нерабочих дней: "+err.Error())
		return
	}

	h.sendText(chatID, service.FormatNonWorkingDays(monthKey, days))
}

func (h *Handler) addNonWorkingDay(chatID int64, args string) {
	if args == "" {
		h.sendText(chatID, "❌ Укажите дату: /holiday_add ГГГГ-ММ-ДД")
		return
	}
	date, err := parseDayArgs(args, h.attendanceService.Now())
	if err != nil {
		h.sendText(chatID, "❌ Неверная дата. Используйте формат ГГГГ-ММ-ДД")
		return
	}

	if err := h.nonWorkingDayService.Add(date); err != nil {
		h.logger.WithError(err).Error("Failed to add non-working day")
		h.sendText(chatID, "❌ Не удалось сохранить день: "+err.Error())
		return
	}

	h.sendText(chatID, fmt.Sprintf("✅ %s отмечен как нерабочий.", date.Format("02.01.2006")))
}

func (h *Handler) removeNonWorkingDay(chatID int64, args string) {
	if args == "" {
		h.sendText(chatID, "❌ Укажите дату: /holiday_del ГГГГ-ММ-ДД")
		return
	}
	date, err := parseDayArgs(args, h.attendanceService.Now())
	if err != nil {
		h.sendText(chatID, "❌ Неверная дата. Используйте формат ГГГГ-ММ-ДД")
		return
	}

	err = h.nonWorkingDayService.Remove(date)
	if errors.Is(err, service.ErrNotNonWorkingDay) {
		h.sendText(chatID, fmt.Sprintf("ℹ️ %s не отмечен как нерабочий.", date.Format("02.01.2006")))
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to remove non-working day")
		h.sendText(chatID, "❌ Не удалось удалить день: "+err.Error())
		return
	}

	h.sendText(chatID, fmt.Sprintf("✅ Отметка с %s снята.", date.Format("02.01.2006")))
}
