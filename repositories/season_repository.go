package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ranking/models"
	"github.com/lib/pq"
)

var (
	ErrSeasonNotFound        = errors.New("season not found")
	ErrSeasonClubInvalid     = errors.New("season club conflict or invalid")
	ErrPromotionRuleNotFound = errors.New("promotion rule not found")
)

type SeasonRepository interface {
	Create(ctx context.Context, exec SQLExecutor, season *models.Season) error
	GetByID(ctx context.Context, id int) (*models.Season, error)
	ListByClub(ctx context.Context, clubID int) ([]*models.Season, error)
	SetActive(ctx context.Context, exec SQLExecutor, id int, active bool) error
	CreatePromotionRule(ctx context.Context, exec SQLExecutor, rule *models.PromotionRule) error
	GetPromotionRule(ctx context.Context, seasonID int) (*models.PromotionRule, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) Create(ctx context.Context, exec SQLExecutor, season *models.Season) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO seasons (club_id, name, type, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		season.ClubID,
		season.Name,
		season.Type,
		season.StartDate,
		season.EndDate,
		season.IsActive,
	).Scan(&season.ID, &season.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "seasons_club_id_fkey" {
			return ErrSeasonClubInvalid
		}
		return err
	}
	return nil
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	query := `
		SELECT id, club_id, name, type, start_date, end_date, is_active, created_at
		FROM seasons
		WHERE id = $1`

	season := &models.Season{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&season.ID,
		&season.ClubID,
		&season.Name,
		&season.Type,
		&season.StartDate,
		&season.EndDate,
		&season.IsActive,
		&season.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan season by id %d: %w", id, err)
	}
	return season, nil
}

func (r *postgresSeasonRepository) ListByClub(ctx context.Context, clubID int) ([]*models.Season, error) {
	query := `
		SELECT id, club_id, name, type, start_date, end_date, is_active, created_at
		FROM seasons
		WHERE club_id = $1
		ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons for club %d: %w", clubID, err)
	}
	defer rows.Close()

	seasons := make([]*models.Season, 0)
	for rows.Next() {
		var s models.Season
		if scanErr := rows.Scan(
			&s.ID,
			&s.ClubID,
			&s.Name,
			&s.Type,
			&s.StartDate,
			&s.EndDate,
			&s.IsActive,
			&s.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan season row: %w", scanErr)
		}
		seasons = append(seasons, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during season rows iteration: %w", err)
	}
	return seasons, nil
}

func (r *postgresSeasonRepository) SetActive(ctx context.Context, exec SQLExecutor, id int, active bool) error {
	executor := r.getExecutor(exec)
	query := `UPDATE seasons SET is_active = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("SetActive: failed to execute query for season %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}

func (r *postgresSeasonRepository) CreatePromotionRule(ctx context.Context, exec SQLExecutor, rule *models.PromotionRule) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO promotion_rules (season_id, up_count, down_count)
		VALUES ($1, $2, $3)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		rule.SeasonID,
		rule.UpCount,
		rule.DownCount,
	).Scan(&rule.ID)
}

func (r *postgresSeasonRepository) GetPromotionRule(ctx context.Context, seasonID int) (*models.PromotionRule, error) {
	query := `
		SELECT id, season_id, up_count, down_count
		FROM promotion_rules
		WHERE season_id = $1`

	rule := &models.PromotionRule{}
	err := r.db.QueryRowContext(ctx, query, seasonID).Scan(
		&rule.ID,
		&rule.SeasonID,
		&rule.UpCount,
		&rule.DownCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromotionRuleNotFound
		}
		return nil, fmt.Errorf("failed to scan promotion rule for season %d: %w", seasonID, err)
	}
	return rule, nil
}

func (r *postgresSeasonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}
