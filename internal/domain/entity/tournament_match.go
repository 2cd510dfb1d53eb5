package entity

import (
	"time"
)

// Раунды турнирной сетки
const (
	RoundSemifinal1 = "semi1"
	RoundSemifinal2 = "semi2"
	RoundFinal      = "final"
)

// TournamentMatch представляет слот турнирной сетки.
// MatchID остаётся nil, пока оба игрока слота не известны и раунд не запущен.
// Игроки финала заполняются только после того, как у обоих полуфиналов
// проставлен WinnerID.
type TournamentMatch struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TournamentID uint      `gorm:"not null;index;uniqueIndex:idx_tournament_round" json:"tournament_id"`
	Round        string    `gorm:"size:10;not null;uniqueIndex:idx_tournament_round" json:"round"`
	Player1ID    *uint     `json:"player1_id,omitempty"`
	Player2ID    *uint     `json:"player2_id,omitempty"`
	MatchID      *uint     `gorm:"index" json:"match_id,omitempty"`
	WinnerID     *uint     `json:"winner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (TournamentMatch) TableName() string {
	return "tournament_matches"
}

// IsStarted проверяет, создан ли матч для слота
func (tm *TournamentMatch) IsStarted() bool {
	return tm.MatchID != nil
}

// IsDecided проверяет, определён ли победитель слота
func (tm *TournamentMatch) IsDecided() bool {
	return tm.WinnerID != nil
}

// IsSemifinal проверяет, является ли слот полуфиналом
func (tm *TournamentMatch) IsSemifinal() bool {
	return tm.Round == RoundSemifinal1 || tm.Round == RoundSemifinal2
}
