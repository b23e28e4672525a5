package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ranking/models"
	"github.com/Dosada05/club-ranking/repositories"
)

type CreateClubInput struct {
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	Country *string `json:"country,omitempty"`
}

type ClubService interface {
	CreateClub(ctx context.Context, in CreateClubInput) (*models.Club, error)
	GetClub(ctx context.Context, id int) (*models.Club, error)
	ListClubs(ctx context.Context) ([]*models.Club, error)
}

type clubService struct {
	clubRepo repositories.ClubRepository
}

func NewClubService(clubRepo repositories.ClubRepository) ClubService {
	return &clubService{clubRepo: clubRepo}
}

func (s *clubService) CreateClub(ctx context.Context, in CreateClubInput) (*models.Club, error) {
	if in.Name == "" || in.Slug == "" {
		return nil, fmt.Errorf("%w: name and slug are required", ErrSeasonValidationFailed)
	}
	club := &models.Club{
		Name:    in.Name,
		Slug:    in.Slug,
		Country: in.Country,
	}
	if err := s.clubRepo.Create(ctx, nil, club); err != nil {
		if errors.Is(err, repositories.ErrClubSlugConflict) {
			return nil, ErrClubSlugConflict
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetClub(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to load club %d: %w", id, err)
	}
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	return clubs, nil
}
