package models

import (
	"time"
)

// NonWorkingDay - праздничный день, в который дневная норма не действует
type NonWorkingDay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"uniqueIndex;size:10;not null" json:"date"`
	Year      int       `gorm:"index" json:"year"`
	Month     int       `gorm:"index" json:"month"`
	Day       int       `json:"day"`
	Source    string    `gorm:"size:32" json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func (NonWorkingDay) TableName() string {
	return "non_working_days"
}

// NewNonWorkingDay строит запись по календарной дате
func NewNonWorkingDay(date time.Time, source string) NonWorkingDay {
	return NonWorkingDay{
		Date:   date.Format("2006-01-02"),
		Year:   date.Year(),
		Month:  int(date.Month()),
		Day:    date.Day(),
		Source: source,
	}
}
