package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchInvalidTeam = errors.New("match references unknown team registration")
	ErrMatchInvalidTournament = errors.New("match references unknown tournament")
)

type ListMatchesFilter struct {
	TournamentID *string
	Status       *models.MatchStatus
	Limit        int
}

type MatchRepository interface {
	Create(ctx context.Context, m *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Match, error)
	UpdateScore(ctx context.Context, id string, score1, score2 int) error
	UpdateStatus(ctx context.Context, id string, status models.MatchStatus) error
	Count(ctx context.Context, status *models.MatchStatus) (int, error)
	Delete(ctx context.Context, id string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, team1_id, team2_id, score1, score2, status,
	start_time, stream_url, created_at, updated_at`

func scanMatch(scanner interface{ Scan(dest ...interface{}) error }, m *models.Match) error {
	return scanner.Scan(
		&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.Score1, &m.Score2,
		&m.Status, &m.StartTime, &m.StreamURL, &m.CreatedAt, &m.UpdatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	m.ID = uuid.NewString()
	query := `
		INSERT INTO matches (
			id, tournament_id, team1_id, team2_id, score1, score2, status,
			start_time, stream_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.TournamentID, m.Team1ID, m.Team2ID, m.Score1, m.Score2,
		m.Status, m.StartTime, m.StreamURL,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return r.handleMatchError(err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	err := scanMatch(r.db.QueryRowContext(ctx, query, id), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.TournamentID != nil {
		query += fmt.Sprintf(" AND tournament_id = $%d", argID)
		args = append(args, *filter.TournamentID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_time ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
	}

	return r.queryMatches(ctx, query, args...)
}

func (r *postgresMatchRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE created_at >= $1 ORDER BY created_at DESC`
	return r.queryMatches(ctx, query, since)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows, &m); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id string, score1, score2 int) error {
	query := `UPDATE matches SET score1 = $1, score2 = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, score1, score2, id)
	if err != nil {
		return fmt.Errorf("failed to update match score: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id string, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	query := `SELECT COUNT(*) FROM matches`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchInvalidTournament
		case "matches_team1_id_fkey", "matches_team2_id_fkey":
			return ErrMatchInvalidTeam
		}
	}
	return err
}
