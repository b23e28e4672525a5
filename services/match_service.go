package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
)

type CreateMatchInput struct {
	SeasonID    int        `json:"season_id"`
	BoxID       *int       `json:"box_id,omitempty"`
	PlayerAID   int        `json:"player_a_id"`
	PlayerBID   int        `json:"player_b_id"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, in CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListSeasonMatches(ctx context.Context, seasonID int, filter repositories.MatchFilter) ([]*models.Match, error)
	// RecordWalkover фиксирует техническую победу без счёта: матч уходит
	// из pending в walkover, рейтинги не трогаются.
	RecordWalkover(ctx context.Context, matchID, winnerID int) (*models.Match, error)
	CancelMatch(ctx context.Context, matchID int) (*models.Match, error)
	// GenerateBoxFixtures создаёт pending-матчи кругового розыгрыша бокса:
	// каждая пара участников встречается один раз. Все матчи создаются
	// одной транзакцией.
	GenerateBoxFixtures(ctx context.Context, boxID int) ([]*models.Match, error)
}

type matchService struct {
	tx         repositories.TxRunner
	matchRepo  repositories.MatchRepository
	seasonRepo repositories.SeasonRepository
	boxRepo    repositories.BoxRepository
	logger     *slog.Logger
}

func NewMatchService(
	tx repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	seasonRepo repositories.SeasonRepository,
	boxRepo repositories.BoxRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:         tx,
		matchRepo:  matchRepo,
		seasonRepo: seasonRepo,
		boxRepo:    boxRepo,
		logger:     logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, in CreateMatchInput) (*models.Match, error) {
	if in.PlayerAID == in.PlayerBID {
		return nil, ErrSamePlayer
	}

	season, err := s.seasonRepo.GetByID(ctx, in.SeasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load season %d: %w", in.SeasonID, err)
	}
	// Матч box-сезона обязан принадлежать конкретному боксу, матч
	// лестницы — нет.
	if season.Type == models.SeasonBox && in.BoxID == nil {
		return nil, fmt.Errorf("%w: box season match requires box_id", ErrSeasonValidationFailed)
	}
	if season.Type == models.SeasonLadder && in.BoxID != nil {
		return nil, fmt.Errorf("%w: ladder season match cannot reference a box", ErrSeasonValidationFailed)
	}

	match := &models.Match{
		SeasonID:    in.SeasonID,
		BoxID:       in.BoxID,
		PlayerAID:   in.PlayerAID,
		PlayerBID:   in.PlayerBID,
		Status:      models.MatchPending,
		ScheduledAt: in.ScheduledAt,
	}
	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchSamePlayer):
			return nil, ErrSamePlayer
		case errors.Is(err, repositories.ErrMatchPlayerInvalid):
			return nil, ErrPlayerNotFound
		case errors.Is(err, repositories.ErrMatchSeasonInvalid):
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListSeasonMatches(ctx context.Context, seasonID int, filter repositories.MatchFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListBySeason(ctx, seasonID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for season %d: %w", seasonID, err)
	}
	return matches, nil
}

func (s *matchService) RecordWalkover(ctx context.Context, matchID, winnerID int) (*models.Match, error) {
	match, err := s.loadPendingMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(winnerID) {
		return nil, ErrInvalidWinner
	}
	return s.transition(ctx, match, models.MatchWalkover)
}

func (s *matchService) CancelMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.loadPendingMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, match, models.MatchCancelled)
}

func (s *matchService) GenerateBoxFixtures(ctx context.Context, boxID int) ([]*models.Match, error) {
	box, err := s.boxRepo.GetByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, repositories.ErrBoxNotFound) {
			return nil, ErrBoxNotFound
		}
		return nil, fmt.Errorf("failed to load box %d: %w", boxID, err)
	}

	members, err := s.boxRepo.ListMemberships(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to list box memberships: %w", err)
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: box %q has %d players, need at least 2", ErrSeasonValidationFailed, box.Name, len(members))
	}

	existing, err := s.matchRepo.ListBySeason(ctx, box.SeasonID, repositories.MatchFilter{BoxID: &box.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for box %d: %w", boxID, err)
	}
	paired := make(map[[2]int]bool, len(existing))
	for _, m := range existing {
		if m.Status == models.MatchCancelled {
			continue
		}
		paired[pairKey(m.PlayerAID, m.PlayerBID)] = true
	}

	// Круговой розыгрыш: каждая пара встречается один раз, уже сведённые
	// пары пропускаются, чтобы повторный вызов досоздавал только недостающее.
	matches := make([]*models.Match, 0)
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if paired[pairKey(members[i].PlayerID, members[j].PlayerID)] {
				continue
			}
			matches = append(matches, &models.Match{
				SeasonID:  box.SeasonID,
				BoxID:     &box.ID,
				PlayerAID: members[i].PlayerID,
				PlayerBID: members[j].PlayerID,
				Status:    models.MatchPending,
			})
		}
	}
	if len(matches) == 0 {
		return matches, nil
	}

	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, m := range matches {
			if txErr := s.matchRepo.Create(ctx, exec, m); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate fixtures for box %d: %w", boxID, err)
	}

	s.logger.Info("box fixtures generated",
		slog.Int("box_id", boxID), slog.Int("matches", len(matches)))
	return matches, nil
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (s *matchService) loadPendingMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.Status.Terminal() {
		return nil, ErrMatchNotPending
	}
	return match, nil
}

func (s *matchService) transition(ctx context.Context, match *models.Match, to models.MatchStatus) (*models.Match, error) {
	err := s.matchRepo.UpdateStatus(ctx, nil, match.ID, models.MatchPending, to)
	if err != nil {
		// Условный UPDATE: 0 затронутых строк значит, что статус уже
		// сменили параллельно.
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotPending
		}
		return nil, fmt.Errorf("failed to move match %d to %s: %w", match.ID, to, err)
	}
	match.Status = to
	s.logger.Info("match status changed",
		slog.Int("match_id", match.ID), slog.String("status", string(to)))
	return match, nil
}
