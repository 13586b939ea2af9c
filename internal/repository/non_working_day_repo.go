package repository

import (
	"errors"

	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNonWorkingDayNotFound = errors.New("non-working day not found")

type NonWorkingDayRepository interface {
	// BulkUpsert добавляет дни, уже существующие даты пропускаются
	BulkUpsert(days []models.NonWorkingDay) (int64, error)
	Delete(date string) error
	GetByYearMonth(year, month int) ([]models.NonWorkingDay, error)
	GetAll() ([]models.NonWorkingDay, error)
}

type GormNonWorkingDayRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormNonWorkingDayRepository(db *gorm.DB) (*GormNonWorkingDayRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// Автомиграция для таблицы non_working_days
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate non_working_days table")
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db, logger: logger}, nil
}

func (r *GormNonWorkingDayRepository) BulkUpsert(days []models.NonWorkingDay) (int64, error) {
	if len(days) == 0 {
		return 0, nil
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(&days)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to store non-working days")
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (r *GormNonWorkingDayRepository) Delete(date string) error {
	result := r.db.Where("date = ?", date).Delete(&models.NonWorkingDay{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNonWorkingDayNotFound
	}
	return nil
}

func (r *GormNonWorkingDayRepository) GetByYearMonth(year, month int) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Where("year = ? AND month = ?", year, month).Order("date").Find(&days).Error
	return days, err
}

func (r *GormNonWorkingDayRepository) GetAll() ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.Order("date").Find(&days).Error
	return days, err
}
