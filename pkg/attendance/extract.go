package attendance

import (
	"fmt"
	"time"
)

// Форматы времени, которые принимает API; зона из строки имеет приоритет
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// MalformedEntryError - время записи не удалось разобрать
type MalformedEntryError struct {
	Report int
	Entry  int
	Field  string
	Value  string
	Err    error
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed entry %d in report %d: cannot parse %s %q: %v",
		e.Entry, e.Report, e.Field, e.Value, e.Err)
}

func (e *MalformedEntryError) Unwrap() error {
	return e.Err
}

// ParseTimestamp разбирает ISO 8601 время; время без зоны читается в loc
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t.In(loc), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Extract разворачивает отчет в плоский список записей.
// Отсутствующие коллекции считаются пустыми, порядок источника сохраняется.
// Первая неразборчивая метка времени прерывает извлечение целиком.
func Extract(report *Report, loc *time.Location) ([]RawEntry, error) {
	if report == nil {
		return nil, nil
	}

	entries := make([]RawEntry, 0, report.EntryCount())
	for ri, r := range report.Attendance {
		for ei, e := range r.Entries {
			begin, err := ParseTimestamp(e.TimePeriod.BeginAt, loc)
			if err != nil {
				return nil, &MalformedEntryError{Report: ri, Entry: ei, Field: "begin_at", Value: e.TimePeriod.BeginAt, Err: err}
			}
			end, err := ParseTimestamp(e.TimePeriod.EndAt, loc)
			if err != nil {
				return nil, &MalformedEntryError{Report: ri, Entry: ei, Field: "end_at", Value: e.TimePeriod.EndAt, Err: err}
			}

			entries = append(entries, NewRawEntry(begin, end, e.Source, e.CampusID))
		}
	}

	return entries, nil
}

// NewRawEntry создает запись, отбрасывая секунды у начала и конца,
// так что длительность всегда равна целому числу минут.
// Перевернутый интервал сжимается до нулевой длины в точке начала.
func NewRawEntry(begin, end time.Time, source string, campusID int) RawEntry {
	entry := RawEntry{
		Begin:    begin.Truncate(time.Minute),
		End:      end.Truncate(time.Minute),
		Source:   source,
		CampusID: campusID,
	}
	if end.Before(begin) {
		entry.End = entry.Begin
		entry.Clamped = true
	}
	entry.DurationHours = durationHours(entry.Begin, entry.End)
	return entry
}
