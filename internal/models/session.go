package models

import "time"

// Session - токен сессии дашборда, привязанный к чату
type Session struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ChatID    int64     `gorm:"uniqueIndex;not null" json:"chat_id"`
	Token     string    `gorm:"not null" json:"-"`
	Login     string    `json:"login"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName задает имя таблицы в БД
func (Session) TableName() string {
	return "sessions"
}

// IsValid проверяет валидность данных
func (s *Session) IsValid() bool {
	return s.ChatID != 0 && s.Token != ""
}

// MaskedToken возвращает токен, пригодный для показа в чате
func (s *Session) MaskedToken() string {
	if len(s.Token) <= 8 {
		return "********"
	}
	return s.Token[:4] + "…" + s.Token[len(s.Token)-4:]
}
