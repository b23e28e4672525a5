package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/club-ranking/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchSeasonInvalid = errors.New("match season conflict or invalid")
	ErrMatchPlayerInvalid = errors.New("match player conflict or invalid")
	ErrMatchSamePlayer    = errors.New("match players must be distinct")
)

// MatchFilter — опциональные фильтры листинга, по образцу фильтров раунда
// и статуса в листинге матчей.
type MatchFilter struct {
	PlayerID *int
	BoxID    *int
	Status   *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListBySeason(ctx context.Context, seasonID int, filter MatchFilter) ([]*models.Match, error)
	// ListPlayedByBox возвращает сыгранные матчи бокса вместе с результатами;
	// вход StandingsCalculator.
	ListPlayedByBox(ctx context.Context, boxID int) ([]*models.Match, error)
	// UpdateStatus переводит матч в новый статус. Условие на текущий статус
	// задаётся параметром from: перевод выполняется только из него, иначе
	// ErrMatchNotFound через affected rows.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (season_id, box_id, player_a_id, player_b_id, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.SeasonID,
		match.BoxID,
		match.PlayerAID,
		match.PlayerBID,
		match.Status,
		match.ScheduledAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, season_id, box_id, player_a_id, player_b_id, status, scheduled_at, created_at
		FROM matches
		WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.SeasonID,
		&match.BoxID,
		&match.PlayerAID,
		&match.PlayerBID,
		&match.Status,
		&match.ScheduledAt,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListBySeason(ctx context.Context, seasonID int, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, season_id, box_id, player_a_id, player_b_id, status, scheduled_at, created_at
		FROM matches
		WHERE season_id = $1`)

	args := []interface{}{seasonID}
	placeholderIndex := 2

	if filter.PlayerID != nil {
		queryBuilder.WriteString(" AND (player_a_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		queryBuilder.WriteString(" OR player_b_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		queryBuilder.WriteString(")")
		args = append(args, *filter.PlayerID)
		placeholderIndex++
	}
	if filter.BoxID != nil {
		queryBuilder.WriteString(" AND box_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.BoxID)
		placeholderIndex++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
	}

	queryBuilder.WriteString(" ORDER BY created_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

func (r *postgresMatchRepository) ListPlayedByBox(ctx context.Context, boxID int) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.season_id, m.box_id, m.player_a_id, m.player_b_id, m.status, m.scheduled_at, m.created_at,
		       res.id, res.match_id, res.winner_id, res.sets, res.reported_by_player_id, res.reported_at
		FROM matches m
		JOIN results res ON res.match_id = m.id
		WHERE m.box_id = $1 AND m.status = $2
		ORDER BY m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, boxID, models.MatchPlayed)
	if err != nil {
		return nil, fmt.Errorf("failed to query played matches for box %d: %w", boxID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		var res models.Result
		if scanErr := rows.Scan(
			&m.ID, &m.SeasonID, &m.BoxID, &m.PlayerAID, &m.PlayerBID, &m.Status, &m.ScheduledAt, &m.CreatedAt,
			&res.ID, &res.MatchID, &res.WinnerID, &res.Sets, &res.ReportedByPlayerID, &res.ReportedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan played match row: %w", scanErr)
		}
		m.Result = &res
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during played match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.MatchStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET status = $1 WHERE id = $2 AND status = $3`
	result, err := executor.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("UpdateStatus: failed to execute query for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func scanMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID,
			&m.SeasonID,
			&m.BoxID,
			&m.PlayerAID,
			&m.PlayerBID,
			&m.Status,
			&m.ScheduledAt,
			&m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation, "23514": check_violation
		switch pqErr.Constraint {
		case "matches_season_id_fkey", "matches_box_id_fkey":
			return ErrMatchSeasonInvalid
		case "matches_player_a_id_fkey", "matches_player_b_id_fkey":
			return ErrMatchPlayerInvalid
		case "matches_distinct_players_check":
			return ErrMatchSamePlayer
		}
	}
	return err
}
