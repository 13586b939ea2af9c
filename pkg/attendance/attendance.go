// Package attendance turns the flat list of check-in/check-out periods reported
// by the campus API into a year/month/day tree with raw and merged presence totals.
package attendance

import (
	"fmt"
	"sort"
	"time"
)

const (
	DateKeyFormat  = "2006-01-02"
	MonthKeyFormat = "2006-01"
	MonthLabel     = "January 2006"
	ClockFormat    = "15:04"
)

// RawEntry - одна запись присутствия от одного источника
type RawEntry struct {
	Begin         time.Time `json:"begin"`
	End           time.Time `json:"end"`
	Source        string    `json:"source"`
	CampusID      int       `json:"campus_id"`
	DurationHours float64   `json:"duration_hours"`

	// Clamped отмечает запись, у которой конец был раньше начала
	Clamped bool `json:"clamped,omitempty"`
}

// MergedInterval - интервал присутствия без двойного учета
type MergedInterval struct {
	Begin         time.Time `json:"begin"`
	End           time.Time `json:"end"`
	DurationHours float64   `json:"duration_hours"`
}

// Span возвращает интервал в виде "09:00 - 13:00"
func (m MergedInterval) Span() string {
	return fmt.Sprintf("%s - %s", m.Begin.Format(ClockFormat), m.End.Format(ClockFormat))
}

// Day - посещаемость за календарный день
type Day struct {
	Date             string           `json:"date"`
	RawEntries       []RawEntry       `json:"raw_entries"`
	MergedEntries    []MergedInterval `json:"merged_entries"`
	TotalRawHours    float64          `json:"total_raw_hours"`
	TotalMergedHours float64          `json:"total_merged_hours"`
}

// Time возвращает полночь дня в зоне первой записи
func (d *Day) Time() time.Time {
	if len(d.RawEntries) > 0 {
		b := d.RawEntries[0].Begin
		return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	}
	t, _ := time.Parse(DateKeyFormat, d.Date)
	return t
}

// SortedRawEntries возвращает копию сырых записей, упорядоченную по началу
func (d *Day) SortedRawEntries() []RawEntry {
	entries := make([]RawEntry, len(d.RawEntries))
	copy(entries, d.RawEntries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Begin.Before(entries[j].Begin)
	})
	return entries
}

// Month - посещаемость за месяц
type Month struct {
	MonthKey         string          `json:"month_key"`
	Label            string          `json:"label"`
	Days             map[string]*Day `json:"days"`
	TotalRawHours    float64         `json:"total_raw_hours"`
	TotalMergedHours float64         `json:"total_merged_hours"`
}

// SortedDays возвращает дни месяца по возрастанию даты
func (m *Month) SortedDays() []*Day {
	days := make([]*Day, 0, len(m.Days))
	for _, day := range m.Days {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// Day возвращает день по ключу "2006-01-02" или nil
func (m *Month) Day(date string) *Day {
	return m.Days[date]
}

// Year - посещаемость за год
type Year struct {
	Year             int      `json:"year"`
	Months           []*Month `json:"months"`
	TotalRawHours    float64  `json:"total_raw_hours"`
	TotalMergedHours float64  `json:"total_merged_hours"`
}

// FindMonth возвращает месяц по ключу "2006-01" или nil
func (y *Year) FindMonth(monthKey string) *Month {
	for _, month := range y.Months {
		if month.MonthKey == monthKey {
			return month
		}
	}
	return nil
}

// FindYear возвращает год из результата агрегации или nil
func FindYear(years []*Year, year int) *Year {
	for _, y := range years {
		if y.Year == year {
			return y
		}
	}
	return nil
}

// FindDay ищет день во всем дереве
func FindDay(years []*Year, date time.Time) *Day {
	y := FindYear(years, date.Year())
	if y == nil {
		return nil
	}
	month := y.FindMonth(date.Format(MonthKeyFormat))
	if month == nil {
		return nil
	}
	return month.Day(date.Format(DateKeyFormat))
}

// CountClamped возвращает число записей с исправленным перевернутым интервалом
func CountClamped(entries []RawEntry) int {
	count := 0
	for _, entry := range entries {
		if entry.Clamped {
			count++
		}
	}
	return count
}

// durationHours переводит интервал в часы без промежуточного округления
func durationHours(begin, end time.Time) float64 {
	return hours(end.Sub(begin))
}

// hours делит целое число наносекунд один раз, поэтому больший интервал
// никогда не дает меньше часов
func hours(d time.Duration) float64 {
	return float64(d) / float64(time.Hour)
}
