package attendance

import "time"

const (
	DefaultDailyGoalHours = 7
	WorkdaysPerWeek       = 5
	WeeksPerMonth         = 4
)

// Calendar сообщает о праздничных днях; выходные учитываются отдельно
type Calendar interface {
	IsNonWorkingDay(date time.Time) bool
}

// Goals задает норму часов присутствия
type Goals struct {
	DailyHours float64
	Calendar   Calendar
}

// DayGoal - выполнение нормы за день
type DayGoal struct {
	Required   float64
	Actual     float64
	Missing    float64
	Reached    bool
	NonWorking bool
}

// PeriodGoal - выполнение нормы за месяц или год
type PeriodGoal struct {
	Required   float64
	Actual     float64
	Difference float64
	Percent    float64
}

// Daily возвращает дневную норму, по умолчанию 7 часов
func (g Goals) Daily() float64 {
	if g.DailyHours <= 0 {
		return DefaultDailyGoalHours
	}
	return g.DailyHours
}

// MonthlyHours - норма на месяц: дневная норма, пять дней, четыре недели
func (g Goals) MonthlyHours() float64 {
	return g.Daily() * WorkdaysPerWeek * WeeksPerMonth
}

// IsWorkday - будний день, не отмеченный в календаре как нерабочий
func (g Goals) IsWorkday(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if g.Calendar != nil && g.Calendar.IsNonWorkingDay(date) {
		return false
	}
	return true
}

// ForDay считает выполнение дневной нормы по слитым часам
func (g Goals) ForDay(day *Day) DayGoal {
	goal := DayGoal{Actual: day.TotalMergedHours}
	if !g.IsWorkday(day.Time()) {
		goal.NonWorking = true
		goal.Reached = true
		return goal
	}

	goal.Required = g.Daily()
	goal.Reached = goal.Actual >= goal.Required
	if !goal.Reached {
		goal.Missing = goal.Required - goal.Actual
	}
	return goal
}

// ForMonth считает выполнение месячной нормы
func (g Goals) ForMonth(month *Month) PeriodGoal {
	return newPeriodGoal(g.MonthlyHours(), month.TotalMergedHours)
}

// ForYear считает норму как месячную, умноженную на число месяцев с данными
func (g Goals) ForYear(year *Year) PeriodGoal {
	return newPeriodGoal(g.MonthlyHours()*float64(len(year.Months)), year.TotalMergedHours)
}

func newPeriodGoal(required, actual float64) PeriodGoal {
	goal := PeriodGoal{
		Required:   required,
		Actual:     actual,
		Difference: actual - required,
	}
	if required > 0 {
		goal.Percent = actual / required * 100
		if goal.Percent > 100 {
			goal.Percent = 100
		}
	}
	return goal
}
