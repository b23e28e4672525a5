package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	MinSets     = 1
	MaxSets     = 5
	MaxSetScore = 20
)

var (
	ErrNoSets          = errors.New("result must contain at least one set")
	ErrTooManySets     = fmt.Errorf("result must contain at most %d sets", MaxSets)
	ErrSetScoreOutside = fmt.Errorf("set score must be between 0 and %d", MaxSetScore)
)

// SetScore — счёт одного сета.
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// SetScores сериализуется в колонку jsonb. Исходная система хранила счёт
// непрозрачной строкой; типизированное представление даёт проверку границ
// до записи.
type SetScores []SetScore

func (s SetScores) Validate() error {
	if len(s) < MinSets {
		return ErrNoSets
	}
	if len(s) > MaxSets {
		return ErrTooManySets
	}
	for _, set := range s {
		if set.A < 0 || set.A > MaxSetScore || set.B < 0 || set.B > MaxSetScore {
			return fmt.Errorf("%w: got %d-%d", ErrSetScoreOutside, set.A, set.B)
		}
	}
	return nil
}

// Summary возвращает счёт в виде "6-4, 6-3" для уведомлений.
func (s SetScores) Summary() string {
	out := ""
	for i, set := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d-%d", set.A, set.B)
	}
	return out
}

func (s SetScores) Value() (driver.Value, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (s *SetScores) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into SetScores", src)
	}
}

// Result неизменяем после создания: на матч существует не более одной записи,
// уникальность match_id обеспечивает БД.
type Result struct {
	ID                 int       `json:"id" db:"id"`
	MatchID            int       `json:"match_id" db:"match_id"`
	WinnerID           int       `json:"winner_id" db:"winner_id"`
	Sets               SetScores `json:"sets" db:"sets"`
	ReportedByPlayerID int       `json:"reported_by_player_id" db:"reported_by_player_id"`
	ReportedAt         time.Time `json:"reported_at" db:"reported_at"`
}

// RatingChange описывает применённое изменение рейтинга одного игрока.
type RatingChange struct {
	PlayerID  int     `json:"player_id"`
	OldRating float64 `json:"old_rating"`
	NewRating float64 `json:"new_rating"`
	Delta     int     `json:"delta"`
}
