package attendance

import (
	"fmt"
	"math"
	"time"
)

const chartDateLabel = "Jan 02"

// DayPoint - точка дневного графика
type DayPoint struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
	Label string  `json:"label"`
}

// MonthPoint - точка годового графика
type MonthPoint struct {
	Month    string  `json:"month"`
	MonthKey string  `json:"month_key"`
	Hours    float64 `json:"hours"`
	RawHours float64 `json:"raw_hours"`
}

// DayChartData превращает дни месяца в упорядоченный ряд (дата, часы)
func DayChartData(month *Month, useRaw bool) []DayPoint {
	if month == nil {
		return []DayPoint{}
	}

	days := month.SortedDays()
	points := make([]DayPoint, 0, len(days))
	for _, day := range days {
		hours := day.TotalMergedHours
		if useRaw {
			hours = day.TotalRawHours
		}

		label := day.Date
		if t, err := time.Parse(DateKeyFormat, day.Date); err == nil {
			label = t.Format(chartDateLabel)
		}

		points = append(points, DayPoint{Date: day.Date, Hours: hours, Label: label})
	}
	return points
}

// YearChartData превращает месяцы года в ряд (месяц, часы)
func YearChartData(year *Year) []MonthPoint {
	if year == nil {
		return []MonthPoint{}
	}

	points := make([]MonthPoint, 0, len(year.Months))
	for _, month := range year.Months {
		points = append(points, MonthPoint{
			Month:    month.Label,
			MonthKey: month.MonthKey,
			Hours:    month.TotalMergedHours,
			RawHours: month.TotalRawHours,
		})
	}
	return points
}

// FormatDuration форматирует часы как "5h 30m"
func FormatDuration(hours float64) string {
	negative := hours < 0
	hours = math.Abs(hours)

	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m == 60 {
		h++
		m = 0
	}

	if negative {
		return fmt.Sprintf("-%dh %dm", int(h), int(m))
	}
	return fmt.Sprintf("%dh %dm", int(h), int(m))
}
