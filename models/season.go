package models

import "time"

// SeasonType представляет типы сезонов, соответствующие ENUM в БД.
type SeasonType string

const (
	SeasonLadder SeasonType = "ladder"
	SeasonBox    SeasonType = "box"
)

// Season — один розыгрыш внутри клуба: либо общая лестница, либо набор боксов.
type Season struct {
	ID        int        `json:"id" db:"id"`
	ClubID    int        `json:"club_id" db:"club_id"`
	Name      string     `json:"name" db:"name"`
	Type      SeasonType `json:"type" db:"type"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   time.Time  `json:"end_date" db:"end_date"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Ladder        *Ladder        `json:"ladder,omitempty" db:"-"`
	Boxes         []Box          `json:"boxes,omitempty" db:"-"`
	PromotionRule *PromotionRule `json:"promotion_rule,omitempty" db:"-"`
}

// PromotionRule задаёт, сколько игроков двигается между соседними боксами
// при закрытии цикла.
type PromotionRule struct {
	ID        int `json:"id" db:"id"`
	SeasonID  int `json:"season_id" db:"season_id"`
	UpCount   int `json:"up_count" db:"up_count"`
	DownCount int `json:"down_count" db:"down_count"`
}
