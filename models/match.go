package models

import "time"

// MatchStatus представляет статусы матча, соответствующие ENUM в БД.
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchPlayed    MatchStatus = "played"
	MatchWalkover  MatchStatus = "walkover"
	MatchCancelled MatchStatus = "cancelled"
)

// Terminal сообщает, допускает ли статус дальнейшие переходы.
// Played, walkover и cancelled — конечные состояния.
func (s MatchStatus) Terminal() bool {
	return s != MatchPending
}

type Match struct {
	ID          int         `json:"id" db:"id"`
	SeasonID    int         `json:"season_id" db:"season_id"`
	BoxID       *int        `json:"box_id,omitempty" db:"box_id"`
	PlayerAID   int         `json:"player_a_id" db:"player_a_id"`
	PlayerBID   int         `json:"player_b_id" db:"player_b_id"`
	Status      MatchStatus `json:"status" db:"status"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	PlayerA *Player `json:"player_a,omitempty" db:"-"`
	PlayerB *Player `json:"player_b,omitempty" db:"-"`
	Season  *Season `json:"season,omitempty" db:"-"`
	Result  *Result `json:"result,omitempty" db:"-"`
}

// HasPlayer проверяет, что id — один из двух участников матча.
func (m *Match) HasPlayer(playerID int) bool {
	return m.PlayerAID == playerID || m.PlayerBID == playerID
}

// OpponentOf возвращает идентификатор второго участника.
func (m *Match) OpponentOf(playerID int) int {
	if m.PlayerAID == playerID {
		return m.PlayerBID
	}
	return m.PlayerAID
}
