package attendance

import (
	"sort"
	"time"
)

// Aggregate раскладывает записи по годам, месяцам и дням.
// Запись относится к дню своего начала, даже если заканчивается после полуночи.
// Годы идут по убыванию, месяцы внутри года по возрастанию.
// Итоги копятся в time.Duration и переводятся в часы один раз на узел.
func Aggregate(entries []RawEntry) []*Year {
	if len(entries) == 0 {
		return []*Year{}
	}

	years := make(map[int]*Year)
	rawDays := make(map[*Day]time.Duration)
	rawMonths := make(map[*Month]time.Duration)
	rawYears := make(map[*Year]time.Duration)

	for _, entry := range entries {
		year := getOrCreateYear(years, entry.Begin.Year())
		month := getOrCreateMonth(year, entry.Begin)
		day := getOrCreateDay(month, entry.Begin.Format(DateKeyFormat))

		day.RawEntries = append(day.RawEntries, entry)

		d := entry.End.Sub(entry.Begin)
		rawDays[day] += d
		rawMonths[month] += d
		rawYears[year] += d
	}

	result := make([]*Year, 0, len(years))
	for _, year := range years {
		var yearMerged time.Duration
		for _, month := range year.Months {
			var monthMerged time.Duration
			for _, day := range month.SortedDays() {
				day.MergedEntries = Merge(day.RawEntries)

				var dayMerged time.Duration
				for _, merged := range day.MergedEntries {
					dayMerged += merged.End.Sub(merged.Begin)
				}

				day.TotalRawHours = hours(rawDays[day])
				day.TotalMergedHours = hours(dayMerged)
				monthMerged += dayMerged
			}

			month.TotalRawHours = hours(rawMonths[month])
			month.TotalMergedHours = hours(monthMerged)
			yearMerged += monthMerged
		}

		year.TotalRawHours = hours(rawYears[year])
		year.TotalMergedHours = hours(yearMerged)

		sort.Slice(year.Months, func(i, j int) bool {
			return year.Months[i].MonthKey < year.Months[j].MonthKey
		})
		result = append(result, year)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Year > result[j].Year
	})

	return result
}

// Process извлекает записи из отчета и агрегирует их
func Process(report *Report, loc *time.Location) ([]*Year, error) {
	entries, err := Extract(report, loc)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries), nil
}

func getOrCreateYear(years map[int]*Year, y int) *Year {
	year, ok := years[y]
	if !ok {
		year = &Year{Year: y, Months: []*Month{}}
		years[y] = year
	}
	return year
}

func getOrCreateMonth(year *Year, begin time.Time) *Month {
	key := begin.Format(MonthKeyFormat)
	if month := year.FindMonth(key); month != nil {
		return month
	}

	month := &Month{
		MonthKey: key,
		Label:    begin.Format(MonthLabel),
		Days:     make(map[string]*Day),
	}
	year.Months = append(year.Months, month)
	return month
}

func getOrCreateDay(month *Month, date string) *Day {
	day, ok := month.Days[date]
	if !ok {
		day = &Day{
			Date:          date,
			RawEntries:    []RawEntry{},
			MergedEntries: []MergedInterval{},
		}
		month.Days[date] = day
	}
	return day
}
