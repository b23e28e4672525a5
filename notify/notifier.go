// Package notify — исходящий канал фактов ядра. Доставка всегда best-effort:
// ошибка уведомления логируется и никогда не превращает записанный результат
// в ошибку операции.
package notify

import (
	"context"

	"github.com/Dosada05/club-ranking/models"
)

// ResultFact — факт "результат записан", публикуемый после коммита
// транзакции. Рейтинговые поля пустые для box-сезонов.
type ResultFact struct {
	EventID           string   `json:"event_id"`
	SeasonID          int      `json:"season_id"`
	MatchID           int      `json:"match_id"`
	WinnerID          int      `json:"winner_id"`
	LoserID           int      `json:"loser_id"`
	ScoreSummary      string   `json:"score_summary"`
	RatingDeltaWinner *int     `json:"rating_delta_winner,omitempty"`
	RatingDeltaLoser  *int     `json:"rating_delta_loser,omitempty"`
	NewRatingWinner   *float64 `json:"new_rating_winner,omitempty"`
	NewRatingLoser    *float64 `json:"new_rating_loser,omitempty"`
}

// RolloverFact публикуется после применения перемещений цикла.
type RolloverFact struct {
	EventID     string            `json:"event_id"`
	SeasonID    int               `json:"season_id"`
	Movements   []models.Movement `json:"movements"`
	SnapshotURL string            `json:"snapshot_url,omitempty"`
}

type Notifier interface {
	ResultRecorded(ctx context.Context, fact ResultFact) error
	SeasonRolledOver(ctx context.Context, fact RolloverFact) error
}
