package models

import "time"

// DefaultRating назначается новым игрокам без импортированного рейтинга.
const DefaultRating = 1200.0

// Player принадлежит одному клубу. GamesPlayed считает только завершённые
// матчи и используется исключительно для выбора K-фактора.
type Player struct {
	ID          int       `json:"id" db:"id"`
	ClubID      int       `json:"club_id" db:"club_id"`
	Name        string    `json:"name" db:"name"`
	Email       *string   `json:"email,omitempty" db:"email"`
	Rating      float64   `json:"rating" db:"rating"`
	GamesPlayed int       `json:"games_played" db:"games_played"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
