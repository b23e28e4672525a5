package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
)

type PromotionService interface {
	// ComputePromotions выдаёт директивы перемещений для закрытия цикла
	// box-сезона. Директивы чисто описательные: применение к членствам —
	// забота вызывающей стороны (см. SeasonService.RolloverSeason).
	ComputePromotions(ctx context.Context, seasonID int) ([]models.Movement, error)
}

type promotionService struct {
	seasonRepo repositories.SeasonRepository
	boxRepo    repositories.BoxRepository
	standings  StandingsService
}

func NewPromotionService(
	seasonRepo repositories.SeasonRepository,
	boxRepo repositories.BoxRepository,
	standings StandingsService,
) PromotionService {
	return &promotionService{
		seasonRepo: seasonRepo,
		boxRepo:    boxRepo,
		standings:  standings,
	}
}

func (s *promotionService) ComputePromotions(ctx context.Context, seasonID int) ([]models.Movement, error) {
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

	rule, err := s.seasonRepo.GetPromotionRule(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrPromotionRuleNotFound) {
			return nil, ErrPromotionRuleNotSet
		}
		return nil, fmt.Errorf("failed to load promotion rule for season %d: %w", seasonID, err)
	}
	if rule.UpCount < 0 || rule.DownCount < 0 {
		return nil, fmt.Errorf("%w: up=%d down=%d", ErrInvalidPromotionRule, rule.UpCount, rule.DownCount)
	}

	boxes, err := s.boxRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boxes for season %d: %w", seasonID, err)
	}

	standings, err := s.standings.ComputeSeasonStandings(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	return computeMovements(boxes, standings, rule)
}

// computeMovements — чистый алгоритм ролловера. Боксы упорядочены по
// position: индекс 0 — верхний уровень, из него нет движения вверх; из
// нижнего нет движения вниз. Правило, не оставляющее в боксе ни одного
// "неподвижного" игрока, отклоняется, а не порождает пересекающиеся наборы.
func computeMovements(boxes []*models.Box, standings []models.BoxStandings, rule *models.PromotionRule) ([]models.Movement, error) {
	movements := make([]models.Movement, 0)

	for i, box := range boxes {
		entries := standings[i].Entries

		hasUpper := i > 0
		hasLower := i < len(boxes)-1

		if hasUpper && rule.UpCount >= len(entries) {
			return nil, fmt.Errorf("%w: up=%d for box %q of size %d", ErrInvalidPromotionRule, rule.UpCount, box.Name, len(entries))
		}
		if hasLower && rule.DownCount >= len(entries) {
			return nil, fmt.Errorf("%w: down=%d for box %q of size %d", ErrInvalidPromotionRule, rule.DownCount, box.Name, len(entries))
		}

		if hasUpper {
			for _, entry := range entries[:rule.UpCount] {
				movements = append(movements, models.Movement{
					PlayerID:  entry.PlayerID,
					FromBoxID: box.ID,
					ToBoxID:   boxes[i-1].ID,
					Direction: models.MovementUp,
				})
			}
		}
		if hasLower {
			for _, entry := range entries[len(entries)-rule.DownCount:] {
				movements = append(movements, models.Movement{
					PlayerID:  entry.PlayerID,
					FromBoxID: box.ID,
					ToBoxID:   boxes[i+1].ID,
					Direction: models.MovementDown,
				})
			}
		}
	}
	return movements, nil
}
