package repository

import (
	"errors"

	"attendance-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Save(session *models.Session) error
	GetByChatID(chatID int64) (*models.Session, error)
	UpdateLogin(chatID int64, login string) error
	Delete(chatID int64) error
}

type GormSessionRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormSessionRepository(db *gorm.DB) (*GormSessionRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// Автомиграция
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate sessions table")
		return nil, err
	}

	logger.Info("Session repository initialized")

	return &GormSessionRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Save создает сессию или заменяет токен существующей
func (r *GormSessionRepository) Save(session *models.Session) error {
	if !session.IsValid() {
		r.logger.WithField("chat_id", session.ChatID).Warn("Invalid session data")
		return errors.New("invalid session data")
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "login", "updated_at"}),
	}).Create(session)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to save session")
		return result.Error
	}

	r.logger.WithField("chat_id", session.ChatID).Info("Session saved")
	return nil
}

func (r *GormSessionRepository) GetByChatID(chatID int64) (*models.Session, error) {
	var session models.Session
	result := r.db.Where("chat_id = ?", chatID).First(&session)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get session")
		return nil, result.Error
	}

	return &session, nil
}

func (r *GormSessionRepository) UpdateLogin(chatID int64, login string) error {
	result := r.db.Model(&models.Session{}).
		Where("chat_id = ?", chatID).
		Update("login", login)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *GormSessionRepository) Delete(chatID int64) error {
	result := r.db.Where("chat_id = ?", chatID).Delete(&models.Session{})

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete session")
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	r.logger.WithField("chat_id", chatID).Info("Session deleted")
	return nil
}
