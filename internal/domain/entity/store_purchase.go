package entity

import (
	"time"
)

// Типы бонусных покупок, которые читает игровое ядро.
// Сам магазин (каталог, оплата) — внешняя подсистема.
const (
	PurchaseExtraMatches     = "extra_matches"
	PurchaseExtraTournaments = "extra_tournaments"
	PurchaseMentorMode       = "mentor_mode"
)

// StorePurchase представляет активную покупку пользователя в магазине.
// Ядро использует её только для чтения: бонусные лимиты и режим ментора.
type StorePurchase struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ItemType  string    `gorm:"size:30;not null" json:"item_type"`
	Amount    int       `gorm:"not null;default:0" json:"amount"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (StorePurchase) TableName() string {
	return "store_purchases"
}

// IsActive проверяет, действует ли ещё покупка
func (p *StorePurchase) IsActive(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

// ActiveBonuses — агрегат активных бонусов пользователя
type ActiveBonuses struct {
	MatchesBonus     int  `json:"matches_bonus"`
	TournamentsBonus int  `json:"tournaments_bonus"`
	MentorMode       bool `json:"mentor_mode"`
}
