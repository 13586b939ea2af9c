package weekends

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON - структура производственного календаря
type CalendarJSON struct {
	Year   int             `json:"year"`
	Months []MonthWeekends `json:"months"`
}

type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

// NonWorkingDay - нерабочий день из календаря
type NonWorkingDay struct {
	Date  time.Time `json:"date"`
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Day   int       `json:"day"`
}

// Calendar - набор нерабочих дней с быстрым поиском по дате
type Calendar struct {
	days  []NonWorkingDay
	index map[string]struct{}
}

// ParseCalendar разбирает JSON календаря.
// Дни перечисляются через запятую, суффиксы "+" и "*" игнорируются.
func ParseCalendar(data []byte) ([]NonWorkingDay, error) {
	var calendar CalendarJSON
	if err := json.Unmarshal(data, &calendar); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calendar JSON: %w", err)
	}

	if calendar.Year <= 0 {
		return nil, fmt.Errorf("calendar year is missing")
	}

	nonWorkingDays := []NonWorkingDay{}
	for _, monthData := range calendar.Months {
		if monthData.Month < 1 || monthData.Month > 12 {
			return nil, fmt.Errorf("invalid month %d in calendar", monthData.Month)
		}

		for _, dayStr := range strings.Split(monthData.Days, ",") {
			dayStr = strings.TrimSpace(dayStr)
			dayStr = strings.TrimSuffix(dayStr, "+")
			dayStr = strings.TrimSuffix(dayStr, "*")

			if dayStr == "" {
				continue
			}

			day, err := strconv.Atoi(dayStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w",
					dayStr, monthData.Month, err)
			}

			date := time.Date(calendar.Year, time.Month(monthData.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Month() != time.Month(monthData.Month) {
				return nil, fmt.Errorf("day %d does not exist in month %d", day, monthData.Month)
			}

			nonWorkingDays = append(nonWorkingDays, NonWorkingDay{
				Date:  date,
				Year:  calendar.Year,
				Month: monthData.Month,
				Day:   day,
			})
		}
	}

	return nonWorkingDays, nil
}

// LoadCalendar читает один или несколько файлов календаря
func LoadCalendar(paths ...string) (*Calendar, error) {
	var all []NonWorkingDay
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read calendar file: %w", err)
		}

		days, err := ParseCalendar(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, days...)
	}

	return NewCalendar(all), nil
}

func NewCalendar(days []NonWorkingDay) *Calendar {
	c := &Calendar{
		days:  days,
		index: make(map[string]struct{}, len(days)),
	}
	for _, day := range days {
		c.index[dateKey(day.Year, day.Month, day.Day)] = struct{}{}
	}
	return c
}

// IsNonWorkingDay проверяет дату по календарю в ее собственной зоне
func (c *Calendar) IsNonWorkingDay(date time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[dateKey(date.Year(), int(date.Month()), date.Day())]
	return ok
}

// Days возвращает копию всех нерабочих дней календаря
func (c *Calendar) Days() []NonWorkingDay {
	if c == nil {
		return nil
	}
	days := make([]NonWorkingDay, len(c.days))
	copy(days, c.days)
	return days
}

// Len возвращает число нерабочих дней в календаре
func (c *Calendar) Len() int {
	if c == nil {
		return 0
	}
	return len(c.days)
}

func dateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
