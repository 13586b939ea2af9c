package service

import (
	"context"
	"fmt"
	"time"

	"attendance-bot/pkg/attendance"

	"github.com/sirupsen/logrus"
)

// AttendanceFetcher - источник отчетов посещаемости
type AttendanceFetcher interface {
	FetchAttendance(ctx context.Context, token string) (*attendance.Report, error)
	Invalidate(token string)
}

// Summary - результат агрегации для одного аккаунта
type Summary struct {
	Login    string             `json:"login"`
	ImageURL string             `json:"image_url"`
	Years    []*attendance.Year `json:"years"`
	Clamped  int                `json:"clamped_entries"`
}

// IsEmpty - данных посещаемости нет, это не ошибка загрузки
func (s *Summary) IsEmpty() bool {
	return len(s.Years) == 0
}

// Latest возвращает самый свежий год или nil
func (s *Summary) Latest() *attendance.Year {
	if s.IsEmpty() {
		return nil
	}
	return s.Years[0]
}

type AttendanceService struct {
	fetcher  AttendanceFetcher
	location *time.Location
	goals    attendance.Goals
	logger   *logrus.Logger
}

func NewAttendanceService(fetcher AttendanceFetcher, location *time.Location, goals attendance.Goals) *AttendanceService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if location == nil {
		location = time.Local
	}

	return &AttendanceService{
		fetcher:  fetcher,
		location: location,
		goals:    goals,
		logger:   logger,
	}
}

func (s *AttendanceService) Location() *time.Location {
	return s.location
}

func (s *AttendanceService) Goals() attendance.Goals {
	return s.goals
}

// Now возвращает текущее время в зоне отчетов
func (s *AttendanceService) Now() time.Time {
	return time.Now().In(s.location)
}

// Report возвращает исходный отчет API без агрегации
func (s *AttendanceService) Report(ctx context.Context, token string) (*attendance.Report, error) {
	return s.fetcher.FetchAttendance(ctx, token)
}

// Summary загружает отчет и заново строит дерево год/месяц/день
func (s *AttendanceService) Summary(ctx context.Context, token string) (*Summary, error) {
	report, err := s.fetcher.FetchAttendance(ctx, token)
	if err != nil {
		return nil, err
	}

	entries, err := attendance.Extract(report, s.location)
	if err != nil {
		s.logger.WithError(err).WithField("login", report.Login).Error("Malformed attendance report")
		return nil, fmt.Errorf("failed to process attendance report: %w", err)
	}

	summary := &Summary{
		Login:    report.Login,
		ImageURL: report.ImageURL,
		Years:    attendance.Aggregate(entries),
		Clamped:  attendance.CountClamped(entries),
	}

	fields := logrus.Fields{
		"login":   summary.Login,
		"entries": len(entries),
		"years":   len(summary.Years),
	}
	if summary.Clamped > 0 {
		fields["clamped"] = summary.Clamped
		s.logger.WithFields(fields).Warn("Attendance report contains inverted intervals")
	} else {
		s.logger.WithFields(fields).Debug("Attendance report aggregated")
	}

	return summary, nil
}

// Refresh сбрасывает кэш отчета для токена
func (s *AttendanceService) Refresh(token string) {
	s.fetcher.Invalidate(token)
	s.logger.Debug("Attendance cache invalidated")
}
