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
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerClubInvalid = errors.New("player club conflict or invalid")
	ErrPlayerEmailTaken  = errors.New("player email is already in use")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByClub(ctx context.Context, clubID int) ([]*models.Player, error)
	// UpdateRating пишет новый глобальный рейтинг игрока. Вызывается только
	// внутри транзакции записи результата, вместе с обновлением
	// ladder-членства.
	UpdateRating(ctx context.Context, exec SQLExecutor, id int, rating float64) error
	// IncrementGamesPlayed увеличивает счётчик завершённых матчей на единицу.
	IncrementGamesPlayed(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (club_id, name, email, rating, games_played)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		player.ClubID,
		player.Name,
		player.Email,
		player.Rating,
		player.GamesPlayed,
	).Scan(&player.ID, &player.CreatedAt)

	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, club_id, name, email, rating, games_played, created_at
		FROM players
		WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.ClubID,
		&player.Name,
		&player.Email,
		&player.Rating,
		&player.GamesPlayed,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) ListByClub(ctx context.Context, clubID int) ([]*models.Player, error) {
	query := `
		SELECT id, club_id, name, email, rating, games_played, created_at
		FROM players
		WHERE club_id = $1
		ORDER BY rating DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for club %d: %w", clubID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(
			&p.ID,
			&p.ClubID,
			&p.Name,
			&p.Email,
			&p.Rating,
			&p.GamesPlayed,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) UpdateRating(ctx context.Context, exec SQLExecutor, id int, rating float64) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET rating = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, rating, id)
	if err != nil {
		return fmt.Errorf("UpdateRating: failed to execute query for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) IncrementGamesPlayed(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET games_played = games_played + 1 WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("IncrementGamesPlayed: failed to execute query for player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "players_club_id_fkey":
			return ErrPlayerClubInvalid
		case "players_email_key":
			return ErrPlayerEmailTaken
		}
	}
	return err
}
