package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"
	"attendance-bot/pkg/attendance"
	"attendance-bot/pkg/weekends"

	"github.com/sirupsen/logrus"
)

const (
	SourceCalendar = "calendar"
	SourceManual   = "manual"
)

var ErrNotNonWorkingDay = errors.New("date is not marked as non-working")

// NonWorkingDayService хранит праздничные дни в базе и держит их копию в памяти,
// чтобы проверка нормы не ходила в базу на каждый день
type NonWorkingDayService struct {
	repo   repository.NonWorkingDayRepository
	mu     sync.RWMutex
	dates  map[string]struct{}
	logger *logrus.Logger
}

func NewNonWorkingDayService(repo repository.NonWorkingDayRepository) (*NonWorkingDayService, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	s := &NonWorkingDayService{
		repo:   repo,
		dates:  make(map[string]struct{}),
		logger: logger,
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// ImportCalendar сохраняет дни производственного календаря; возвращает число новых дней
func (s *NonWorkingDayService) ImportCalendar(days []weekends.NonWorkingDay) (int64, error) {
	records := make([]models.NonWorkingDay, 0, len(days))
	for _, d := range days {
		records = append(records, models.NewNonWorkingDay(d.Date, SourceCalendar))
	}

	added, err := s.repo.BulkUpsert(records)
	if err != nil {
		return 0, fmt.Errorf("failed to import calendar: %w", err)
	}
	if err := s.reload(); err != nil {
		return added, err
	}

	s.logger.WithFields(logrus.Fields{
		"days":  len(days),
		"added": added,
	}).Info("Non-working days calendar imported")
	return added, nil
}

// Add отмечает дату как нерабочую
func (s *NonWorkingDayService) Add(date time.Time) error {
	if _, err := s.repo.BulkUpsert([]models.NonWorkingDay{models.NewNonWorkingDay(date, SourceManual)}); err != nil {
		return fmt.Errorf("failed to add non-working day: %w", err)
	}
	return s.reload()
}

// Remove снимает отметку нерабочего дня
func (s *NonWorkingDayService) Remove(date time.Time) error {
	err := s.repo.Delete(date.Format(attendance.DateKeyFormat))
	if errors.Is(err, repository.ErrNonWorkingDayNotFound) {
		return ErrNotNonWorkingDay
	}
	if err != nil {
		return fmt.Errorf("failed to remove non-working day: %w", err)
	}
	return s.reload()
}

// ForMonth возвращает нерабочие дни месяца по возрастанию
func (s *NonWorkingDayService) ForMonth(year, month int) ([]models.NonWorkingDay, error) {
	return s.repo.GetByYearMonth(year, month)
}

// IsNonWorkingDay проверяет дату в ее собственной зоне
func (s *NonWorkingDayService) IsNonWorkingDay(date time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dates[date.Format(attendance.DateKeyFormat)]
	return ok
}

func (s *NonWorkingDayService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dates)
}

func (s *NonWorkingDayService) reload() error {
	days, err := s.repo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load non-working days: %w", err)
	}

	dates := make(map[string]struct{}, len(days))
	for _, d := range days {
		dates[d.Date] = struct{}{}
	}

	s.mu.Lock()
	s.dates = dates
	s.mu.Unlock()
	return nil
}

// FormatNonWorkingDays форматирует список нерабочих дней месяца
func FormatNonWorkingDays(monthKey string, days []models.NonWorkingDay) string {
	if len(days) == 0 {
		return fmt.Sprintf("📭 Нерабочих дней за %s нет (кроме выходных).", MonthTitle(monthKey))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏖 Нерабочие дни, %s:\n", MonthTitle(monthKey)))
	for _, d := range days {
		mark := ""
		if d.Source == SourceManual {
			mark = " (вручную)"
		}
		sb.WriteString(fmt.Sprintf("• %s%s\n", d.Date, mark))
	}
	return sb.String()
}
