package service

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"attendance-bot/pkg/attendance"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var monthNamesGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var weekdayNames = [...]string{
	"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота",
}

// FormatHours форматирует часы как "5ч 30м"
func FormatHours(hours float64) string {
	sign := ""
	if hours < 0 {
		sign = "-"
		hours = -hours
	}

	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m == 60 {
		h++
		m = 0
	}

	if m == 0 {
		return fmt.Sprintf("%s%dч", sign, int(h))
	}
	return fmt.Sprintf("%s%dч %dм", sign, int(h), int(m))
}

// MonthTitle возвращает "Март 2024" по ключу "2024-03"
func MonthTitle(monthKey string) string {
	t, err := time.Parse(attendance.MonthKeyFormat, monthKey)
	if err != nil {
		return monthKey
	}
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

// FormatYears форматирует список лет с итогами
func (s *AttendanceService) FormatYears(summary *Summary) string {
	if summary.IsEmpty() {
		return "📭 Нет данных о посещаемости."
	}

	var sb strings.Builder
	if summary.Login != "" {
		sb.WriteString(fmt.Sprintf("👤 <b>%s</b>\n\n", html.EscapeString(summary.Login)))
	}
	sb.WriteString("📅 <b>Посещаемость по годам</b>\n\n")

	for _, year := range summary.Years {
		goal := s.goals.ForYear(year)
		sb.WriteString(fmt.Sprintf("<b>%d</b>: %s (без учета пересечений: %s), %d мес., %.0f%% нормы\n",
			year.Year,
			FormatHours(year.TotalMergedHours),
			FormatHours(year.TotalRawHours),
			len(year.Months),
			goal.Percent,
		))
	}

	if summary.Clamped > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ Записей с концом раньше начала: %d (учтены как 0ч)\n", summary.Clamped))
	}

	return sb.String()
}

// FormatYear форматирует годовой обзор по месяцам
func (s *AttendanceService) FormatYear(year *attendance.Year) string {
	goal := s.goals.ForYear(year)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📆 <b>%d год</b>\n", year.Year))
	sb.WriteString(fmt.Sprintf("Всего: %s из %s (%s)\n",
		FormatHours(goal.Actual), FormatHours(goal.Required), formatDifference(goal.Difference)))

	monthGoal := s.goals.MonthlyHours()
	data := make([][]string, 0, len(year.Months))
	for _, point := range attendance.YearChartData(year) {
		data = append(data, []string{
			MonthTitle(point.MonthKey),
			FormatHours(point.Hours),
			FormatHours(point.RawHours),
			formatDifference(point.Hours - monthGoal),
		})
	}
	sb.WriteString(renderTable([]string{"Месяц", "Часы", "Сырые", "Норма"}, data))

	if goal.Percent >= 100 {
		sb.WriteString("🎉 Годовая норма выполнена!")
	} else {
		sb.WriteString(fmt.Sprintf("%.0f%% годовой нормы", goal.Percent))
	}
	return sb.String()
}

// FormatMonth форматирует месяц по дням
func (s *AttendanceService) FormatMonth(month *attendance.Month) string {
	goal := s.goals.ForMonth(month)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 <b>%s</b>\n", MonthTitle(month.MonthKey)))
	sb.WriteString(fmt.Sprintf("Всего: %s (без учета пересечений: %s)\n",
		FormatHours(month.TotalMergedHours), FormatHours(month.TotalRawHours)))
	sb.WriteString(fmt.Sprintf("Норма: %s (%gч/день, 5 дней, 4 недели) - %.0f%%\n",
		FormatHours(goal.Required), s.goals.Daily(), goal.Percent))

	data := make([][]string, 0, len(month.Days))
	for _, day := range month.SortedDays() {
		dayGoal := s.goals.ForDay(day)
		mark := "✓"
		switch {
		case dayGoal.NonWorking:
			mark = "-"
		case !dayGoal.Reached:
			mark = "✗"
		}

		data = append(data, []string{
			day.Date[len("2006-01-"):],
			FormatHours(day.TotalMergedHours),
			FormatHours(day.TotalRawHours),
			mark,
		})
	}
	sb.WriteString(renderTable([]string{"День", "Часы", "Сырые", "Норма"}, data))

	return sb.String()
}

// FormatDay форматирует записи за день: слитые интервалы и сырые записи
func (s *AttendanceService) FormatDay(day *attendance.Day) string {
	date := day.Time()
	goal := s.goals.ForDay(day)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 <b>%s, %d %s %d</b>\n",
		weekdayNames[date.Weekday()], date.Day(), monthNamesGenitive[date.Month()-1], date.Year()))
	sb.WriteString(fmt.Sprintf("⏱ Всего: %s\n", FormatHours(day.TotalMergedHours)))

	switch {
	case goal.NonWorking:
		sb.WriteString("🏖 Выходной - норма не учитывается\n")
	case goal.Reached:
		sb.WriteString("✅ Норма выполнена\n")
	default:
		sb.WriteString(fmt.Sprintf("⏳ До нормы %gч осталось %s\n", goal.Required, FormatHours(goal.Missing)))
	}

	merged := make([][]string, 0, len(day.MergedEntries))
	for i, m := range day.MergedEntries {
		merged = append(merged, []string{
			m.Begin.Format(attendance.ClockFormat),
			m.End.Format(attendance.ClockFormat),
			strings.Join(attendance.MergedSources(day, i), ", "),
			FormatHours(m.DurationHours),
		})
	}
	sb.WriteString("\n<b>Слитые интервалы</b>\n")
	sb.WriteString(renderTable([]string{"Начало", "Конец", "Источники", "Длит."}, merged))

	raw := make([][]string, 0, len(day.RawEntries))
	for _, e := range day.SortedRawEntries() {
		end := e.End.Format(attendance.ClockFormat)
		if e.Clamped {
			end += "!"
		}
		raw = append(raw, []string{
			e.Begin.Format(attendance.ClockFormat),
			end,
			e.Source,
			FormatHours(e.DurationHours),
		})
	}
	sb.WriteString("<b>Сырые записи</b>\n")
	sb.WriteString(renderTable([]string{"Начало", "Конец", "Источник", "Длит."}, raw))

	return sb.String()
}

func formatDifference(diff float64) string {
	if diff >= 0 {
		return "+" + FormatHours(diff)
	}
	return FormatHours(diff)
}

// renderTable рендерит таблицу в блок <pre>; при ошибке возвращает строки через табуляцию
func renderTable(headers []string, data [][]string) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if err := table.Bulk(data); err == nil {
		if err := table.Render(); err == nil {
			return "<pre>" + html.EscapeString(buf.String()) + "</pre>\n"
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(headers, "\t") + "\n")
	for _, row := range data {
		sb.WriteString(strings.Join(row, "\t") + "\n")
	}
	return "<pre>" + html.EscapeString(sb.String()) + "</pre>\n"
}
