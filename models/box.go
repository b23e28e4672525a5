package models

// Box — упорядоченный уровень внутри box-сезона. Position 0 — верхний бокс.
type Box struct {
	ID       int    `json:"id" db:"id"`
	SeasonID int    `json:"season_id" db:"season_id"`
	Name     string `json:"name" db:"name"`
	Position int    `json:"position" db:"position"`

	Memberships []BoxMembership `json:"memberships,omitempty" db:"-"`
}

// BoxMembership привязывает игрока к боксу. Seed — только исходный порядок
// и тай-брейк, не результат ранжирования.
type BoxMembership struct {
	ID       int `json:"id" db:"id"`
	BoxID    int `json:"box_id" db:"box_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	Seed     int `json:"seed" db:"seed"`
}
