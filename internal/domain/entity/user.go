package entity

import (
	"time"
)

// User — узкая проекция пользователя, которой достаточно игровому ядру:
// баланс очков для экономики подсказок и роль для админских операций.
// Регистрация, сессии и профиль живут в отдельном identity-сервисе.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}
