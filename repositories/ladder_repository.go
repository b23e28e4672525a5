package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ranking/models"
)

var (
	ErrLadderNotFound           = errors.New("ladder not found")
	ErrLadderMembershipNotFound = errors.New("ladder membership not found")
)

type LadderRepository interface {
	Create(ctx context.Context, exec SQLExecutor, ladder *models.Ladder) error
	GetBySeasonID(ctx context.Context, seasonID int) (*models.Ladder, error)
	CreateMembership(ctx context.Context, exec SQLExecutor, membership *models.LadderMembership) error
	GetMembership(ctx context.Context, ladderID, playerID int) (*models.LadderMembership, error)
	// ListMemberships подгружает игроков: таблица лестницы строится по
	// рейтингу членства, но показывает имена.
	ListMemberships(ctx context.Context, ladderID int) ([]*models.LadderMembership, []*models.Player, error)
	// UpdateMembershipRating пишет сезонную копию рейтинга. Всегда в одной
	// транзакции с players.rating — см. ResultService.
	UpdateMembershipRating(ctx context.Context, exec SQLExecutor, ladderID, playerID int, rating float64) error
}

type postgresLadderRepository struct {
	db *sql.DB
}

func NewPostgresLadderRepository(db *sql.DB) LadderRepository {
	return &postgresLadderRepository{db: db}
}

func (r *postgresLadderRepository) Create(ctx context.Context, exec SQLExecutor, ladder *models.Ladder) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO ladders (season_id, algorithm)
		VALUES ($1, $2)
		RETURNING id`
	return executor.QueryRowContext(ctx, query, ladder.SeasonID, ladder.Algorithm).Scan(&ladder.ID)
}

func (r *postgresLadderRepository) GetBySeasonID(ctx context.Context, seasonID int) (*models.Ladder, error) {
	query := `SELECT id, season_id, algorithm FROM ladders WHERE season_id = $1`

	ladder := &models.Ladder{}
	err := r.db.QueryRowContext(ctx, query, seasonID).Scan(&ladder.ID, &ladder.SeasonID, &ladder.Algorithm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLadderNotFound
		}
		return nil, fmt.Errorf("failed to scan ladder for season %d: %w", seasonID, err)
	}
	return ladder, nil
}

func (r *postgresLadderRepository) CreateMembership(ctx context.Context, exec SQLExecutor, membership *models.LadderMembership) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO ladder_memberships (ladder_id, player_id, rating)
		VALUES ($1, $2, $3)
		RETURNING id`
	return executor.QueryRowContext(ctx, query,
		membership.LadderID,
		membership.PlayerID,
		membership.Rating,
	).Scan(&membership.ID)
}

func (r *postgresLadderRepository) GetMembership(ctx context.Context, ladderID, playerID int) (*models.LadderMembership, error) {
	query := `
		SELECT id, ladder_id, player_id, rating
		FROM ladder_memberships
		WHERE ladder_id = $1 AND player_id = $2`

	m := &models.LadderMembership{}
	err := r.db.QueryRowContext(ctx, query, ladderID, playerID).Scan(&m.ID, &m.LadderID, &m.PlayerID, &m.Rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLadderMembershipNotFound
		}
		return nil, fmt.Errorf("failed to scan ladder membership l:%d p:%d: %w", ladderID, playerID, err)
	}
	return m, nil
}

func (r *postgresLadderRepository) ListMemberships(ctx context.Context, ladderID int) ([]*models.LadderMembership, []*models.Player, error) {
	query := `
		SELECT lm.id, lm.ladder_id, lm.player_id, lm.rating,
		       p.id, p.club_id, p.name, p.email, p.rating, p.games_played, p.created_at
		FROM ladder_memberships lm
		JOIN players p ON p.id = lm.player_id
		WHERE lm.ladder_id = $1
		ORDER BY lm.rating DESC, lm.player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, ladderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ladder memberships for ladder %d: %w", ladderID, err)
	}
	defer rows.Close()

	memberships := make([]*models.LadderMembership, 0)
	players := make([]*models.Player, 0)
	for rows.Next() {
		var m models.LadderMembership
		var p models.Player
		if scanErr := rows.Scan(
			&m.ID, &m.LadderID, &m.PlayerID, &m.Rating,
			&p.ID, &p.ClubID, &p.Name, &p.Email, &p.Rating, &p.GamesPlayed, &p.CreatedAt,
		); scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan ladder membership row: %w", scanErr)
		}
		memberships = append(memberships, &m)
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error during ladder membership rows iteration: %w", err)
	}
	return memberships, players, nil
}

func (r *postgresLadderRepository) UpdateMembershipRating(ctx context.Context, exec SQLExecutor, ladderID, playerID int, rating float64) error {
	executor := r.getExecutor(exec)
	query := `UPDATE ladder_memberships SET rating = $1 WHERE ladder_id = $2 AND player_id = $3`
	result, err := executor.ExecContext(ctx, query, rating, ladderID, playerID)
	if err != nil {
		return fmt.Errorf("UpdateMembershipRating: failed to execute query for ladder %d player %d: %w", ladderID, playerID, err)
	}
	return checkAffectedRows(result, ErrLadderMembershipNotFound)
}

func (r *postgresLadderRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}
