package models

// LadderStandingEntry — строка таблицы лестницы. Порядок: рейтинг по
// убыванию, затем player_id по возрастанию для строгого тотального порядка.
type LadderStandingEntry struct {
	Rank     int     `json:"rank"`
	PlayerID int     `json:"player_id"`
	Rating   float64 `json:"rating"`

	Player *Player `json:"player,omitempty"`
}

// BoxStandingEntry — строка таблицы бокса. Порядок: wins по убыванию,
// win_percentage по убыванию, seed по возрастанию, player_id по возрастанию.
type BoxStandingEntry struct {
	Rank          int     `json:"rank"`
	PlayerID      int     `json:"player_id"`
	Wins          int     `json:"wins"`
	Played        int     `json:"played"`
	WinPercentage float64 `json:"win_percentage"`
	Seed          int     `json:"seed"`

	Player *Player `json:"player,omitempty"`
}

// BoxStandings — таблица одного бокса внутри сезонного снимка.
type BoxStandings struct {
	BoxID    int                `json:"box_id"`
	BoxName  string             `json:"box_name"`
	Position int                `json:"position"`
	Entries  []BoxStandingEntry `json:"entries"`
}

// MovementDirection — направление перемещения при закрытии цикла.
type MovementDirection string

const (
	MovementUp   MovementDirection = "up"
	MovementDown MovementDirection = "down"
)

// Movement — директива перемещения игрока между соседними боксами.
// Чисто описательная: применение к членству выполняет вызывающая сторона.
type Movement struct {
	PlayerID  int               `json:"player_id"`
	FromBoxID int               `json:"from_box_id"`
	ToBoxID   int               `json:"to_box_id"`
	Direction MovementDirection `json:"direction"`
}
