package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ranking/models"
)

var (
	ErrBoxNotFound           = errors.New("box not found")
	ErrBoxMembershipNotFound = errors.New("box membership not found")
)

type BoxRepository interface {
	Create(ctx context.Context, exec SQLExecutor, box *models.Box) error
	GetByID(ctx context.Context, id int) (*models.Box, error)
	// ListBySeason возвращает боксы в порядке position: индекс 0 — верхний
	// уровень. На этом порядке держится PromotionEngine.
	ListBySeason(ctx context.Context, seasonID int) ([]*models.Box, error)
	CreateMembership(ctx context.Context, exec SQLExecutor, membership *models.BoxMembership) error
	// ListMemberships возвращает членства бокса по seed asc, player_id asc.
	ListMemberships(ctx context.Context, boxID int) ([]*models.BoxMembership, error)
	// MovePlayer переносит членство игрока в другой бокс при закрытии цикла.
	MovePlayer(ctx context.Context, exec SQLExecutor, fromBoxID, playerID, toBoxID int) error
}

type postgresBoxRepository struct {
	db *sql.DB
}

func NewPostgresBoxRepository(db *sql.DB) BoxRepository {
	return &postgresBoxRepository{db: db}
}

func (r *postgresBoxRepository) Create(ctx context.Context, exec SQLExecutor, box *models.Box) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO boxes (season_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING id`
	return executor.QueryRowContext(ctx, query, box.SeasonID, box.Name, box.Position).Scan(&box.ID)
}

func (r *postgresBoxRepository) GetByID(ctx context.Context, id int) (*models.Box, error) {
	query := `SELECT id, season_id, name, position FROM boxes WHERE id = $1`

	box := &models.Box{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&box.ID, &box.SeasonID, &box.Name, &box.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBoxNotFound
		}
		return nil, fmt.Errorf("failed to scan box by id %d: %w", id, err)
	}
	return box, nil
}

func (r *postgresBoxRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.Box, error) {
	query := `
		SELECT id, season_id, name, position
		FROM boxes
		WHERE season_id = $1
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query boxes for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	boxes := make([]*models.Box, 0)
	for rows.Next() {
		var b models.Box
		if scanErr := rows.Scan(&b.ID, &b.SeasonID, &b.Name, &b.Position); scanErr != nil {
			return nil, fmt.Errorf("failed to scan box row: %w", scanErr)
		}
		boxes = append(boxes, &b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during box rows iteration: %w", err)
	}
	return boxes, nil
}

func (r *postgresBoxRepository) CreateMembership(ctx context.Context, exec SQLExecutor, membership *models.BoxMembership) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO box_memberships (box_id, player_id, seed)
		VALUES ($1, $2, $3)
		RETURNING id`
	return executor.QueryRowContext(ctx, query,
		membership.BoxID,
		membership.PlayerID,
		membership.Seed,
	).Scan(&membership.ID)
}

func (r *postgresBoxRepository) ListMemberships(ctx context.Context, boxID int) ([]*models.BoxMembership, error) {
	query := `
		SELECT id, box_id, player_id, seed
		FROM box_memberships
		WHERE box_id = $1
		ORDER BY seed ASC, player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to query box memberships for box %d: %w", boxID, err)
	}
	defer rows.Close()

	memberships := make([]*models.BoxMembership, 0)
	for rows.Next() {
		var m models.BoxMembership
		if scanErr := rows.Scan(&m.ID, &m.BoxID, &m.PlayerID, &m.Seed); scanErr != nil {
			return nil, fmt.Errorf("failed to scan box membership row: %w", scanErr)
		}
		memberships = append(memberships, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during box membership rows iteration: %w", err)
	}
	return memberships, nil
}

func (r *postgresBoxRepository) MovePlayer(ctx context.Context, exec SQLExecutor, fromBoxID, playerID, toBoxID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE box_memberships SET box_id = $1 WHERE box_id = $2 AND player_id = $3`
	result, err := executor.ExecContext(ctx, query, toBoxID, fromBoxID, playerID)
	if err != nil {
		return fmt.Errorf("MovePlayer: failed to execute query for box %d player %d: %w", fromBoxID, playerID, err)
	}
	return checkAffectedRows(result, ErrBoxMembershipNotFound)
}

func (r *postgresBoxRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}
