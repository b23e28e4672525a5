// Package rating реализует Elo-расчёты рейтинга. Чистые функции без
// побочных эффектов: персистентность и транзакции живут в services.
package rating

import (
	"errors"
	"fmt"
	"math"
)

const (
	// KProvisional применяется к игрокам, не набравшим ProvisionalGames
	// завершённых матчей: их рейтинг должен сходиться быстрее.
	KProvisional = 40
	// KStandard — базовый K-фактор для устоявшихся игроков.
	KStandard = 32
	// KMaster стабилизирует рейтинг сильных игроков от MasterRating и выше.
	KMaster = 16

	ProvisionalGames = 30
	MasterRating     = 2400.0
)

// ErrInvalidScore возвращается, когда счёт матча не сводится к одному
// бинарному исходу (сумма очков не равна 1).
var ErrInvalidScore = errors.New("scores must sum to 1")

const scoreSumTolerance = 1e-9

// PlayerRating — входные данные для выбора K-фактора одного игрока.
type PlayerRating struct {
	Rating      float64
	GamesPlayed int
}

// ExpectedScore возвращает ожидаемую вероятность победы self над opponent
// по стандартной логистической кривой. Симметрична:
// ExpectedScore(a, b) + ExpectedScore(b, a) == 1 с точностью до float64.
func ExpectedScore(self, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-self)/400.0))
}

// KFactor возвращает K-фактор игрока по ступенчатой политике:
// провизионный (< 30 игр) — 40, мастер (рейтинг >= 2400) — 16, иначе 32.
func KFactor(rating float64, gamesPlayed int) int {
	switch {
	case gamesPlayed < ProvisionalGames:
		return KProvisional
	case rating >= MasterRating:
		return KMaster
	default:
		return KStandard
	}
}

// MatchKFactor — K-фактор, применяемый к обоим участникам одного матча:
// минимум из их индивидуальных K. Провизионный соперник не двигает рейтинг
// устоявшегося игрока быстрее, чем позволяет ступень самого игрока.
// Единственная точка этой политики: и запись результата, и предпросмотр
// обязаны проходить через неё.
func MatchKFactor(a, b PlayerRating) int {
	ka := KFactor(a.Rating, a.GamesPlayed)
	kb := KFactor(b.Rating, b.GamesPlayed)
	if kb < ka {
		return kb
	}
	return ka
}

// ComputeDeltas вычисляет изменения рейтинга обоих участников.
// scoreA+scoreB должна равняться 1 (победа 1/0, ничья 0.5/0.5).
// Округление — к ближайшему целому, половина от нуля (math.Round).
// Дельты строго антисимметричны: deltaB == -deltaA.
func ComputeDeltas(ratingA, ratingB, scoreA, scoreB float64, kFactor int) (deltaA, deltaB int, err error) {
	if math.Abs(scoreA+scoreB-1.0) > scoreSumTolerance {
		return 0, 0, fmt.Errorf("%w: got %g + %g", ErrInvalidScore, scoreA, scoreB)
	}
	expectedA := ExpectedScore(ratingA, ratingB)
	deltaA = int(math.Round(float64(kFactor) * (scoreA - expectedA)))
	return deltaA, -deltaA, nil
}
