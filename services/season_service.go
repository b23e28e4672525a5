package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/notify"
	"github.com/Dosada05/club-ranking/repositories"
	"github.com/Dosada05/club-ranking/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CreateSeasonInput struct {
	ClubID    int               `json:"club_id"`
	Name      string            `json:"name"`
	Type      models.SeasonType `json:"type"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	// Boxes создаются в порядке перечисления: первый — верхний уровень.
	Boxes []string `json:"boxes,omitempty"`
	// PromotionRule обязателен для box-сезонов.
	UpCount   int `json:"up_count"`
	DownCount int `json:"down_count"`
}

// RolloverOutput — итог закрытия цикла box-сезона.
type RolloverOutput struct {
	SeasonID    int                   `json:"season_id"`
	Standings   []models.BoxStandings `json:"standings"`
	Movements   []models.Movement     `json:"movements"`
	SnapshotURL string                `json:"snapshot_url,omitempty"`
}

type SeasonService interface {
	CreateSeason(ctx context.Context, in CreateSeasonInput) (*models.Season, error)
	GetSeason(ctx context.Context, id int) (*models.Season, error)
	ListClubSeasons(ctx context.Context, clubID int) ([]*models.Season, error)
	// RolloverSeason закрывает цикл box-сезона: считает таблицы, получает
	// директивы перемещений, применяет их к членствам одной транзакцией,
	// архивирует снимок таблиц и публикует факт ролловера. Вызывающая
	// сторона обязана приостановить приём результатов сезона на время
	// ролловера; само ядро этим не управляет.
	RolloverSeason(ctx context.Context, seasonID int) (*RolloverOutput, error)
}

type seasonService struct {
	tx         repositories.TxRunner
	seasonRepo repositories.SeasonRepository
	ladderRepo repositories.LadderRepository
	boxRepo    repositories.BoxRepository
	standings  StandingsService
	promotions PromotionService
	uploader   storage.FileUploader
	notifier   notify.Notifier
	logger     *slog.Logger
}

func NewSeasonService(
	tx repositories.TxRunner,
	seasonRepo repositories.SeasonRepository,
	ladderRepo repositories.LadderRepository,
	boxRepo repositories.BoxRepository,
	standings StandingsService,
	promotions PromotionService,
	uploader storage.FileUploader,
	notifier notify.Notifier,
	logger *slog.Logger,
) SeasonService {
	return &seasonService{
		tx:         tx,
		seasonRepo: seasonRepo,
		ladderRepo: ladderRepo,
		boxRepo:    boxRepo,
		standings:  standings,
		promotions: promotions,
		uploader:   uploader,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *seasonService) CreateSeason(ctx context.Context, in CreateSeasonInput) (*models.Season, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrSeasonValidationFailed)
	}
	if in.Type != models.SeasonLadder && in.Type != models.SeasonBox {
		return nil, fmt.Errorf("%w: unknown season type %q", ErrSeasonValidationFailed, in.Type)
	}
	if !in.StartDate.Before(in.EndDate) {
		return nil, fmt.Errorf("%w: start date must be before end date", ErrSeasonValidationFailed)
	}
	if in.Type == models.SeasonBox {
		if len(in.Boxes) == 0 {
			return nil, fmt.Errorf("%w: box season requires at least one box", ErrSeasonValidationFailed)
		}
		if in.UpCount < 0 || in.DownCount < 0 {
			return nil, fmt.Errorf("%w: up=%d down=%d", ErrInvalidPromotionRule, in.UpCount, in.DownCount)
		}
	}

	season := &models.Season{
		ClubID:    in.ClubID,
		Name:      in.Name,
		Type:      in.Type,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		IsActive:  true,
	}

	// Сезон, его лестница либо боксы и правило перемещений создаются одним
	// коммитом: полусозданный сезон не наблюдаем.
	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if txErr := s.seasonRepo.Create(ctx, exec, season); txErr != nil {
			return txErr
		}
		switch in.Type {
		case models.SeasonLadder:
			ladder := &models.Ladder{SeasonID: season.ID, Algorithm: "elo"}
			if txErr := s.ladderRepo.Create(ctx, exec, ladder); txErr != nil {
				return txErr
			}
			season.Ladder = ladder
		case models.SeasonBox:
			for i, name := range in.Boxes {
				box := &models.Box{SeasonID: season.ID, Name: name, Position: i}
				if txErr := s.boxRepo.Create(ctx, exec, box); txErr != nil {
					return txErr
				}
				season.Boxes = append(season.Boxes, *box)
			}
			rule := &models.PromotionRule{SeasonID: season.ID, UpCount: in.UpCount, DownCount: in.DownCount}
			if txErr := s.seasonRepo.CreatePromotionRule(ctx, exec, rule); txErr != nil {
				return txErr
			}
			season.PromotionRule = rule
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonClubInvalid) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return season, nil
}

func (s *seasonService) GetSeason(ctx context.Context, id int) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load season %d: %w", id, err)
	}

	// Связанные сущности независимы — грузим параллельно.
	g, gCtx := errgroup.WithContext(ctx)
	switch season.Type {
	case models.SeasonLadder:
		g.Go(func() error {
			ladder, err := s.ladderRepo.GetBySeasonID(gCtx, id)
			if err != nil && !errors.Is(err, repositories.ErrLadderNotFound) {
				return err
			}
			season.Ladder = ladder
			return nil
		})
	case models.SeasonBox:
		g.Go(func() error {
			boxes, err := s.boxRepo.ListBySeason(gCtx, id)
			if err != nil {
				return err
			}
			season.Boxes = make([]models.Box, len(boxes))
			for i, b := range boxes {
				season.Boxes[i] = *b
			}
			return nil
		})
		g.Go(func() error {
			rule, err := s.seasonRepo.GetPromotionRule(gCtx, id)
			if err != nil && !errors.Is(err, repositories.ErrPromotionRuleNotFound) {
				return err
			}
			season.PromotionRule = rule
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load season %d details: %w", id, err)
	}
	return season, nil
}

func (s *seasonService) ListClubSeasons(ctx context.Context, clubID int) ([]*models.Season, error) {
	seasons, err := s.seasonRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons for club %d: %w", clubID, err)
	}
	return seasons, nil
}

func (s *seasonService) RolloverSeason(ctx context.Context, seasonID int) (*RolloverOutput, error) {
	standings, err := s.standings.ComputeSeasonStandings(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	movements, err := s.promotions.ComputePromotions(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, mv := range movements {
			if txErr := s.boxRepo.MovePlayer(ctx, exec, mv.FromBoxID, mv.PlayerID, mv.ToBoxID); txErr != nil {
				return txErr
			}
		}
		return s.seasonRepo.SetActive(ctx, exec, seasonID, false)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply rollover for season %d: %w", seasonID, err)
	}

	out := &RolloverOutput{
		SeasonID:  seasonID,
		Standings: standings,
		Movements: movements,
	}
	out.SnapshotURL = s.archiveSnapshot(ctx, out)

	s.emitRolloverFact(ctx, out)

	return out, nil
}

// archiveSnapshot выгружает снимок итоговых таблиц в объектное хранилище.
// Best-effort: без хранилища или при ошибке ролловер остаётся успешным.
func (s *seasonService) archiveSnapshot(ctx context.Context, out *RolloverOutput) string {
	if s.uploader == nil {
		return ""
	}

	payload, err := json.Marshal(struct {
		SeasonID    int                   `json:"season_id"`
		GeneratedAt time.Time             `json:"generated_at"`
		Standings   []models.BoxStandings `json:"standings"`
		Movements   []models.Movement     `json:"movements"`
	}{
		SeasonID:    out.SeasonID,
		GeneratedAt: time.Now().UTC(),
		Standings:   out.Standings,
		Movements:   out.Movements,
	})
	if err != nil {
		s.logger.Error("failed to marshal rollover snapshot",
			slog.Int("season_id", out.SeasonID), slog.Any("error", err))
		return ""
	}

	key := fmt.Sprintf("snapshots/season_%d_%s.json", out.SeasonID, time.Now().UTC().Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		s.logger.Error("failed to archive rollover snapshot",
			slog.Int("season_id", out.SeasonID), slog.Any("error", err))
		return ""
	}
	return result.Location
}

func (s *seasonService) emitRolloverFact(ctx context.Context, out *RolloverOutput) {
	if s.notifier == nil {
		return
	}
	fact := notify.RolloverFact{
		EventID:     uuid.NewString(),
		SeasonID:    out.SeasonID,
		Movements:   out.Movements,
		SnapshotURL: out.SnapshotURL,
	}
	if err := s.notifier.SeasonRolledOver(ctx, fact); err != nil {
		s.logger.Error("failed to emit rollover fact",
			slog.Int("season_id", out.SeasonID), slog.Any("error", err))
	}
}
