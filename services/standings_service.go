package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
	"golang.org/x/sync/errgroup"
)

type StandingsService interface {
	// ComputeLadderStandings строит таблицу лестницы сезона: рейтинг по
	// убыванию, тай-брейк по player_id. Порядок всегда строгий тотальный.
	ComputeLadderStandings(ctx context.Context, seasonID int) ([]models.LadderStandingEntry, error)
	// ComputeBoxStandings строит таблицу одного бокса: wins desc,
	// win% desc, seed asc, player_id asc.
	ComputeBoxStandings(ctx context.Context, boxID int) (*models.BoxStandings, error)
	// ComputeSeasonStandings строит таблицы всех боксов сезона в порядке
	// position. Чтение и расчёт, никаких блокировок: за отсутствие гонок с
	// мутацией членств во время ролловера отвечает вызывающая сторона.
	ComputeSeasonStandings(ctx context.Context, seasonID int) ([]models.BoxStandings, error)
}

type standingsService struct {
	seasonRepo repositories.SeasonRepository
	ladderRepo repositories.LadderRepository
	boxRepo    repositories.BoxRepository
	matchRepo  repositories.MatchRepository
}

func NewStandingsService(
	seasonRepo repositories.SeasonRepository,
	ladderRepo repositories.LadderRepository,
	boxRepo repositories.BoxRepository,
	matchRepo repositories.MatchRepository,
) StandingsService {
	return &standingsService{
		seasonRepo: seasonRepo,
		ladderRepo: ladderRepo,
		boxRepo:    boxRepo,
		matchRepo:  matchRepo,
	}
}

func (s *standingsService) ComputeLadderStandings(ctx context.Context, seasonID int) ([]models.LadderStandingEntry, error) {
	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load season %d: %w", seasonID, err)
	}
	if season.Type != models.SeasonLadder {
		return nil, ErrSeasonNotLadder
	}

	ladder, err := s.ladderRepo.GetBySeasonID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrLadderNotFound) {
			return nil, ErrLadderNotFound
		}
		return nil, fmt.Errorf("failed to load ladder for season %d: %w", seasonID, err)
	}

	memberships, players, err := s.ladderRepo.ListMemberships(ctx, ladder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ladder memberships: %w", err)
	}

	entries := make([]models.LadderStandingEntry, 0, len(memberships))
	for i, m := range memberships {
		entries = append(entries, models.LadderStandingEntry{
			PlayerID: m.PlayerID,
			Rating:   m.Rating,
			Player:   players[i],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *standingsService) ComputeBoxStandings(ctx context.Context, boxID int) (*models.BoxStandings, error) {
	box, err := s.boxRepo.GetByID(ctx, boxID)
	if err != nil {
		if errors.Is(err, repositories.ErrBoxNotFound) {
			return nil, ErrBoxNotFound
		}
		return nil, fmt.Errorf("failed to load box %d: %w", boxID, err)
	}

	memberships, err := s.boxRepo.ListMemberships(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to list box memberships: %w", err)
	}
	played, err := s.matchRepo.ListPlayedByBox(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to list played matches for box %d: %w", boxID, err)
	}

	return buildBoxStandings(box, memberships, played), nil
}

func (s *standingsService) ComputeSeasonStandings(ctx context.Context, seasonID int) ([]models.BoxStandings, error) {
	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load season %d: %w", seasonID, err)
	}
	if season.Type != models.SeasonBox {
		return nil, ErrSeasonNotBox
	}

	boxes, err := s.boxRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boxes for season %d: %w", seasonID, err)
	}

	// Таблицы боксов независимы: считаем параллельно, порядок сохраняется
	// по индексу.
	standings := make([]models.BoxStandings, len(boxes))
	g, gCtx := errgroup.WithContext(ctx)
	for i, box := range boxes {
		i, box := i, box
		g.Go(func() error {
			st, err := s.ComputeBoxStandings(gCtx, box.ID)
			if err != nil {
				return err
			}
			standings[i] = *st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return standings, nil
}

// buildBoxStandings — чистая свёртка результатов в таблицу бокса.
// win% нулевой при нуле сыгранных матчей, не NaN.
func buildBoxStandings(box *models.Box, memberships []*models.BoxMembership, played []*models.Match) *models.BoxStandings {
	type tally struct {
		wins   int
		played int
	}
	tallies := make(map[int]*tally, len(memberships))
	for _, m := range memberships {
		tallies[m.PlayerID] = &tally{}
	}

	for _, match := range played {
		if match.Result == nil {
			continue
		}
		for _, playerID := range []int{match.PlayerAID, match.PlayerBID} {
			t, ok := tallies[playerID]
			if !ok {
				// Результат игрока, уже перемещённого из бокса: в таблицу
				// текущего состава не входит.
				continue
			}
			t.played++
			if match.Result.WinnerID == playerID {
				t.wins++
			}
		}
	}

	entries := make([]models.BoxStandingEntry, 0, len(memberships))
	for _, m := range memberships {
		t := tallies[m.PlayerID]
		entry := models.BoxStandingEntry{
			PlayerID: m.PlayerID,
			Wins:     t.wins,
			Played:   t.played,
			Seed:     m.Seed,
		}
		if t.played > 0 {
			entry.WinPercentage = float64(t.wins) / float64(t.played)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinPercentage != b.WinPercentage {
			return a.WinPercentage > b.WinPercentage
		}
		if a.Seed != b.Seed {
			return a.Seed < b.Seed
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &models.BoxStandings{
		BoxID:    box.ID,
		BoxName:  box.Name,
		Position: box.Position,
		Entries:  entries,
	}
}
