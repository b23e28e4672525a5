package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/notify"
	"github.com/Dosada05/club-ranking/rating"
	"github.com/Dosada05/club-ranking/repositories"
	"github.com/google/uuid"
)

type SubmitResultInput struct {
	WinnerID           int
	Sets               models.SetScores
	ReportedByPlayerID int
	PlayedAt           *time.Time
}

type SubmitResultOutput struct {
	Result *models.Result `json:"result"`
	// RatingChanges пуст для box-сезонов и для игроков без рейтинга в лестнице.
	RatingChanges []models.RatingChange `json:"rating_changes,omitempty"`
}

type ResultService interface {
	// SubmitResult принимает заявленный исход матча и применяет его атомарно:
	// результат, переход матча в played, рейтинги обоих игроков и их
	// ladder-членства коммитятся вместе или не коммитятся вовсе.
	SubmitResult(ctx context.Context, matchID int, in SubmitResultInput) (*SubmitResultOutput, error)
	// PreviewRatingChange считает дельты без записи, той же политикой
	// минимального K, что и SubmitResult.
	PreviewRatingChange(ctx context.Context, matchID, winnerID int) ([]models.RatingChange, error)
}

type resultService struct {
	tx         repositories.TxRunner
	matchRepo  repositories.MatchRepository
	resultRepo repositories.ResultRepository
	playerRepo repositories.PlayerRepository
	seasonRepo repositories.SeasonRepository
	ladderRepo repositories.LadderRepository
	notifier   notify.Notifier
	logger     *slog.Logger
}

func NewResultService(
	tx repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.ResultRepository,
	playerRepo repositories.PlayerRepository,
	seasonRepo repositories.SeasonRepository,
	ladderRepo repositories.LadderRepository,
	notifier notify.Notifier,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		tx:         tx,
		matchRepo:  matchRepo,
		resultRepo: resultRepo,
		playerRepo: playerRepo,
		seasonRepo: seasonRepo,
		ladderRepo: ladderRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// ladderContext — предвычисленные рейтинговые изменения ladder-сезона.
type ladderContext struct {
	ladder  *models.Ladder
	changeA models.RatingChange
	changeB models.RatingChange
}

func (s *resultService) SubmitResult(ctx context.Context, matchID int, in SubmitResultInput) (*SubmitResultOutput, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	switch match.Status {
	case models.MatchPending:
		// ok
	case models.MatchPlayed:
		return nil, ErrDuplicateResult
	default:
		return nil, fmt.Errorf("%w: status %s", ErrMatchNotPending, match.Status)
	}

	if !match.HasPlayer(in.WinnerID) {
		return nil, ErrInvalidWinner
	}
	if err := in.Sets.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScoreFormat, err)
	}

	season, err := s.seasonRepo.GetByID(ctx, match.SeasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load season %d: %w", match.SeasonID, err)
	}

	playerA, playerB, err := s.loadPlayers(ctx, match)
	if err != nil {
		return nil, err
	}

	var lctx *ladderContext
	if season.Type == models.SeasonLadder {
		lctx, err = s.computeRatingChanges(ctx, season, match, playerA, playerB, in.WinnerID)
		if err != nil {
			return nil, err
		}
	}

	reportedAt := time.Now().UTC()
	if in.PlayedAt != nil {
		reportedAt = in.PlayedAt.UTC()
	}
	result := &models.Result{
		MatchID:            match.ID,
		WinnerID:           in.WinnerID,
		Sets:               in.Sets,
		ReportedByPlayerID: in.ReportedByPlayerID,
		ReportedAt:         reportedAt,
	}

	// Атомарная часть: результат, статус матча, счётчики игр и — для
	// ladder-сезона — все четыре рейтинговые записи. Частичное состояние
	// снаружи не наблюдаемо: при любой ошибке транзакция откатывается.
	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.resultRepo.Create(ctx, exec, result); txErr != nil {
			return txErr
		}
		if txErr := s.matchRepo.UpdateStatus(ctx, exec, match.ID, models.MatchPending, models.MatchPlayed); txErr != nil {
			return txErr
		}
		if txErr := s.playerRepo.IncrementGamesPlayed(ctx, exec, match.PlayerAID); txErr != nil {
			return txErr
		}
		if txErr := s.playerRepo.IncrementGamesPlayed(ctx, exec, match.PlayerBID); txErr != nil {
			return txErr
		}
		if lctx != nil {
			if txErr := s.applyRatings(ctx, exec, lctx); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		// Уникальность results.match_id закрывает гонку двух конкурентных
		// заявок: проигравший видит ErrDuplicateResult, не порчу рейтингов.
		if errors.Is(err, repositories.ErrResultConflict) {
			return nil, ErrDuplicateResult
		}
		if errors.Is(err, repositories.ErrMatchNotFound) {
			// Статус успел смениться между загрузкой и транзакцией.
			return nil, ErrDuplicateResult
		}
		return nil, fmt.Errorf("failed to submit result for match %d: %w", matchID, err)
	}

	out := &SubmitResultOutput{Result: result}
	if lctx != nil {
		out.RatingChanges = []models.RatingChange{lctx.changeA, lctx.changeB}
	}

	s.emitResultFact(ctx, season, match, result, out.RatingChanges)

	return out, nil
}

func (s *resultService) PreviewRatingChange(ctx context.Context, matchID, winnerID int) ([]models.RatingChange, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(winnerID) {
		return nil, ErrInvalidWinner
	}

	season, err := s.seasonRepo.GetByID(ctx, match.SeasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load season %d: %w", match.SeasonID, err)
	}
	if season.Type != models.SeasonLadder {
		return nil, ErrSeasonNotLadder
	}

	playerA, playerB, err := s.loadPlayers(ctx, match)
	if err != nil {
		return nil, err
	}

	lctx, err := s.computeRatingChanges(ctx, season, match, playerA, playerB, winnerID)
	if err != nil {
		return nil, err
	}
	if lctx == nil {
		return nil, nil
	}
	return []models.RatingChange{lctx.changeA, lctx.changeB}, nil
}

func (s *resultService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return match, nil
}

func (s *resultService) loadPlayers(ctx context.Context, match *models.Match) (*models.Player, *models.Player, error) {
	playerA, err := s.playerRepo.GetByID(ctx, match.PlayerAID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil, ErrPlayerNotFound
		}
		return nil, nil, fmt.Errorf("failed to load player %d: %w", match.PlayerAID, err)
	}
	playerB, err := s.playerRepo.GetByID(ctx, match.PlayerBID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, nil, ErrPlayerNotFound
		}
		return nil, nil, fmt.Errorf("failed to load player %d: %w", match.PlayerBID, err)
	}
	return playerA, playerB, nil
}

// computeRatingChanges возвращает nil без ошибки, если у кого-то из игроков
// нет членства в лестнице сезона: матч записывается без изменения рейтинга.
func (s *resultService) computeRatingChanges(ctx context.Context, season *models.Season, match *models.Match, playerA, playerB *models.Player, winnerID int) (*ladderContext, error) {
	ladder, err := s.ladderRepo.GetBySeasonID(ctx, season.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrLadderNotFound) {
			return nil, ErrLadderNotFound
		}
		return nil, fmt.Errorf("failed to load ladder for season %d: %w", season.ID, err)
	}

	for _, playerID := range []int{playerA.ID, playerB.ID} {
		if _, err := s.ladderRepo.GetMembership(ctx, ladder.ID, playerID); err != nil {
			if errors.Is(err, repositories.ErrLadderMembershipNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to load ladder membership for player %d: %w", playerID, err)
		}
	}

	scoreA, scoreB := 0.0, 1.0
	if winnerID == playerA.ID {
		scoreA, scoreB = 1.0, 0.0
	}

	k := rating.MatchKFactor(
		rating.PlayerRating{Rating: playerA.Rating, GamesPlayed: playerA.GamesPlayed},
		rating.PlayerRating{Rating: playerB.Rating, GamesPlayed: playerB.GamesPlayed},
	)
	deltaA, deltaB, err := rating.ComputeDeltas(playerA.Rating, playerB.Rating, scoreA, scoreB, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScoreFormat, err)
	}

	return &ladderContext{
		ladder: ladder,
		changeA: models.RatingChange{
			PlayerID:  playerA.ID,
			OldRating: playerA.Rating,
			NewRating: playerA.Rating + float64(deltaA),
			Delta:     deltaA,
		},
		changeB: models.RatingChange{
			PlayerID:  playerB.ID,
			OldRating: playerB.Rating,
			NewRating: playerB.Rating + float64(deltaB),
			Delta:     deltaB,
		},
	}, nil
}

// applyRatings пишет новый рейтинг в запись игрока и в ladder-членство.
// Клампинг к [0, 3000] после применения дельты намеренно не выполняется:
// диапазон проверяется на входных данных импорта, не здесь.
func (s *resultService) applyRatings(ctx context.Context, exec repositories.SQLExecutor, lctx *ladderContext) error {
	for _, change := range []models.RatingChange{lctx.changeA, lctx.changeB} {
		if err := s.playerRepo.UpdateRating(ctx, exec, change.PlayerID, change.NewRating); err != nil {
			return err
		}
		if err := s.ladderRepo.UpdateMembershipRating(ctx, exec, lctx.ladder.ID, change.PlayerID, change.NewRating); err != nil {
			return err
		}
	}
	return nil
}

// emitResultFact публикует факт "результат записан". Строго best-effort:
// сбой доставки логируется и не влияет на закоммиченную операцию.
func (s *resultService) emitResultFact(ctx context.Context, season *models.Season, match *models.Match, result *models.Result, changes []models.RatingChange) {
	if s.notifier == nil {
		return
	}

	fact := notify.ResultFact{
		EventID:      uuid.NewString(),
		SeasonID:     season.ID,
		MatchID:      match.ID,
		WinnerID:     result.WinnerID,
		LoserID:      match.OpponentOf(result.WinnerID),
		ScoreSummary: result.Sets.Summary(),
	}
	for i := range changes {
		change := changes[i]
		if change.PlayerID == result.WinnerID {
			fact.RatingDeltaWinner = &change.Delta
			fact.NewRatingWinner = &change.NewRating
		} else {
			fact.RatingDeltaLoser = &change.Delta
			fact.NewRatingLoser = &change.NewRating
		}
	}

	if err := s.notifier.ResultRecorded(ctx, fact); err != nil {
		s.logger.Error("failed to emit result fact",
			slog.Int("match_id", match.ID),
			slog.Any("error", err))
	}
}
