package attendance

// TimePeriod - интервал присутствия в формате API
type TimePeriod struct {
	BeginAt string `json:"begin_at"`
	EndAt   string `json:"end_at"`
}

// ReportEntry - одна запись о присутствии из отчета
type ReportEntry struct {
	CampusID   int        `json:"campus_id"`
	Source     string     `json:"source"`
	TimePeriod TimePeriod `json:"time_period"`
}

type DetailedAttendance struct {
	CampusID int    `json:"campus_id"`
	Duration string `json:"duration"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

type DailyAttendance struct {
	Date                   string `json:"date"`
	Day                    string `json:"day"`
	TotalAttendance        string `json:"total_attendance"`
	TotalOffSiteAttendance string `json:"total_off_site_attendance"`
	TotalOnSiteAttendance  string `json:"total_on_site_attendance"`
}

// AttendanceReport - отчет за период; любая коллекция может быть null
type AttendanceReport struct {
	AllowOverflow          bool                 `json:"allow_overflow"`
	DailyAttendances       []DailyAttendance    `json:"daily_attendances"`
	DetailedAttendance     []DetailedAttendance `json:"detailed_attendance"`
	Entries                []ReportEntry        `json:"entries"`
	FromDate               string               `json:"from_date"`
	FromSourceType         []string             `json:"from_source_type"`
	FromSources            []string             `json:"from_sources"`
	FromTime               *string              `json:"from_time"`
	PrioritizeSources      bool                 `json:"prioritize_sources"`
	ToDate                 string               `json:"to_date"`
	ToTime                 *string              `json:"to_time"`
	TotalAttendance        string               `json:"total_attendance"`
	TotalOffSiteAttendance string               `json:"total_off_site_attendance"`
	TotalOnSiteAttendance  string               `json:"total_on_site_attendance"`
	Weekdays               []string             `json:"weekdays"`
}

// Report - корневой ответ API посещаемости
type Report struct {
	Attendance []AttendanceReport `json:"attendance"`
	ImageURL   string             `json:"image_url"`
	Login      string             `json:"login"`
}

// EntryCount возвращает количество записей во всех отчетах
func (r *Report) EntryCount() int {
	if r == nil {
		return 0
	}

	count := 0
	for _, report := range r.Attendance {
		count += len(report.Entries)
	}
	return count
}
