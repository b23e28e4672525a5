package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
)

type CreatePlayerInput struct {
	ClubID int     `json:"club_id"`
	Name   string  `json:"name"`
	Email  *string `json:"email,omitempty"`
	// Rating позволяет завести игрока с перенесённым рейтингом.
	// nil — DefaultRating.
	Rating *float64 `json:"rating,omitempty"`
}

type EnrollBoxInput struct {
	BoxID    int `json:"box_id"`
	PlayerID int `json:"player_id"`
	Seed     int `json:"seed"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, in CreatePlayerInput) (*models.Player, error)
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListClubPlayers(ctx context.Context, clubID int) ([]*models.Player, error)
	// EnrollInLadder создаёт сезонное членство. Стартовый сезонный рейтинг
	// равен текущему глобальному рейтингу игрока.
	EnrollInLadder(ctx context.Context, seasonID, playerID int) (*models.LadderMembership, error)
	EnrollInBox(ctx context.Context, in EnrollBoxInput) (*models.BoxMembership, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	ladderRepo repositories.LadderRepository
	boxRepo    repositories.BoxRepository
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	ladderRepo repositories.LadderRepository,
	boxRepo repositories.BoxRepository,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		ladderRepo: ladderRepo,
		boxRepo:    boxRepo,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, in CreatePlayerInput) (*models.Player, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrSeasonValidationFailed)
	}
	rating := models.DefaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}
	player := &models.Player{
		ClubID: in.ClubID,
		Name:   in.Name,
		Email:  in.Email,
		Rating: rating,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerClubInvalid):
			return nil, ErrClubNotFound
		case errors.Is(err, repositories.ErrPlayerEmailTaken):
			return nil, ErrPlayerEmailTaken
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) ListClubPlayers(ctx context.Context, clubID int) ([]*models.Player, error) {
	players, err := s.playerRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for club %d: %w", clubID, err)
	}
	return players, nil
}

func (s *playerService) EnrollInLadder(ctx context.Context, seasonID, playerID int) (*models.LadderMembership, error) {
	ladder, err := s.ladderRepo.GetBySeasonID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrLadderNotFound) {
			return nil, ErrSeasonNotLadder
		}
		return nil, fmt.Errorf("failed to load ladder for season %d: %w", seasonID, err)
	}

	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	membership := &models.LadderMembership{
		LadderID: ladder.ID,
		PlayerID: player.ID,
		Rating:   player.Rating,
	}
	if err := s.ladderRepo.CreateMembership(ctx, nil, membership); err != nil {
		return nil, fmt.Errorf("failed to enroll player %d in ladder %d: %w", playerID, ladder.ID, err)
	}
	return membership, nil
}

func (s *playerService) EnrollInBox(ctx context.Context, in EnrollBoxInput) (*models.BoxMembership, error) {
	box, err := s.boxRepo.GetByID(ctx, in.BoxID)
	if err != nil {
		if errors.Is(err, repositories.ErrBoxNotFound) {
			return nil, ErrBoxNotFound
		}
		return nil, fmt.Errorf("failed to load box %d: %w", in.BoxID, err)
	}

	player, err := s.GetPlayer(ctx, in.PlayerID)
	if err != nil {
		return nil, err
	}

	membership := &models.BoxMembership{
		BoxID:    box.ID,
		PlayerID: player.ID,
		Seed:     in.Seed,
	}
	if err := s.boxRepo.CreateMembership(ctx, nil, membership); err != nil {
		return nil, fmt.Errorf("failed to enroll player %d in box %d: %w", in.PlayerID, in.BoxID, err)
	}
	return membership, nil
}
