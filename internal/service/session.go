package service

import (
	"errors"
	"fmt"
	"strings"

	"attendance-bot/internal/models"
	"attendance-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyToken = errors.New("session token is required")
	ErrNoSession  = errors.New("no session token found")
)

type SessionService struct {
	repo   repository.SessionRepository
	logger *logrus.Logger
}

func NewSessionService(repo repository.SessionRepository) *SessionService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return &SessionService{
		repo:   repo,
		logger: logger,
	}
}

// SetToken сохраняет токен сессии для чата
func (s *SessionService) SetToken(chatID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.repo.Save(&models.Session{ChatID: chatID, Token: token}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.WithField("chat_id", chatID).Info("Session token stored")
	return nil
}

// Session возвращает сохраненную сессию чата
func (s *SessionService) Session(chatID int64) (*models.Session, error) {
	session, err := s.repo.GetByChatID(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}

// Token возвращает токен чата или ErrNoSession
func (s *SessionService) Token(chatID int64) (string, error) {
	session, err := s.Session(chatID)
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// RememberLogin сохраняет логин, полученный из API
func (s *SessionService) RememberLogin(chatID int64, login string) {
	if login == "" {
		return
	}
	if err := s.repo.UpdateLogin(chatID, login); err != nil {
		s.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to remember login")
	}
}

// Logout удаляет токен чата
func (s *SessionService) Logout(chatID int64) error {
	err := s.repo.Delete(chatID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return ErrNoSession
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.WithField("chat_id", chatID).Info("Session token removed")
	return nil
}
