package models

type Ladder struct {
	ID        int    `json:"id" db:"id"`
	SeasonID  int    `json:"season_id" db:"season_id"`
	Algorithm string `json:"algorithm" db:"algorithm"`
}

// LadderMembership хранит сезонный рейтинг игрока. Обновляется строго вместе
// с Player.Rating в одной транзакции, иначе копии разъезжаются.
type LadderMembership struct {
	ID       int     `json:"id" db:"id"`
	LadderID int     `json:"ladder_id" db:"ladder_id"`
	PlayerID int     `json:"player_id" db:"player_id"`
	Rating   float64 `json:"rating" db:"rating"`
}
