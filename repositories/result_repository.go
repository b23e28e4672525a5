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
	ErrResultNotFound     = errors.New("result not found")
	ErrResultConflict     = errors.New("result already exists for this match")
	ErrResultMatchInvalid = errors.New("result match conflict or invalid")
)

type ResultRepository interface {
	// Create пишет результат. Уникальный индекс results_match_id_key держит
	// инвариант "не более одного результата на матч" и под конкурентной
	// записью: проигравший конкурент получает ErrResultConflict.
	Create(ctx context.Context, exec SQLExecutor, result *models.Result) error
	GetByMatchID(ctx context.Context, matchID int) (*models.Result, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.Result) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO results (match_id, winner_id, sets, reported_by_player_id, reported_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		result.MatchID,
		result.WinnerID,
		result.Sets,
		result.ReportedByPlayerID,
		result.ReportedAt,
	).Scan(&result.ID)

	return r.handleResultError(err)
}

func (r *postgresResultRepository) GetByMatchID(ctx context.Context, matchID int) (*models.Result, error) {
	query := `
		SELECT id, match_id, winner_id, sets, reported_by_player_id, reported_at
		FROM results
		WHERE match_id = $1`

	result := &models.Result{}
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(
		&result.ID,
		&result.MatchID,
		&result.WinnerID,
		&result.Sets,
		&result.ReportedByPlayerID,
		&result.ReportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to scan result for match %d: %w", matchID, err)
	}
	return result, nil
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) handleResultError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23505": unique_violation, "23503": foreign_key_violation
		switch pqErr.Constraint {
		case "results_match_id_key":
			return ErrResultConflict
		case "results_match_id_fkey":
			return ErrResultMatchInvalid
		case "results_winner_id_fkey", "results_reported_by_player_id_fkey":
			return ErrResultMatchInvalid
		}
	}
	return err
}
