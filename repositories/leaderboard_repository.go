package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrLeaderboardEntryNotFound = errors.New("leaderboard entry not found")
	ErrLeaderboardInvalidTeam   = errors.New("leaderboard entry references unknown team registration")
	ErrLeaderboardTeamConflict  = errors.New("leaderboard entry for this team already exists")
)

type LeaderboardRepository interface {
	// Upsert создаёт или обновляет запись команды. total_points всегда
	// приходит пересчитанным от сервиса — хранимое значение не может
	// разойтись с производным.
	Upsert(ctx context.Context, entry *models.LeaderboardEntry) error
	GetByTeam(ctx context.Context, teamID string) (*models.LeaderboardEntry, error)
	// List отдаёт записи с именем и логотипом команды, по убыванию
	// total_points.
	List(ctx context.Context) ([]models.LeaderboardEntry, error)
	Delete(ctx context.Context, id string) error
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	// team_id уникален: одна запись на команду — инвариант уровня БД,
	// а не договорённость в коде.
	query := `
		INSERT INTO leaderboard (
			id, team_id, survival_points, kill_points, total_points,
			matches_played, wins
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id) DO UPDATE SET
			survival_points = EXCLUDED.survival_points,
			kill_points = EXCLUDED.kill_points,
			total_points = EXCLUDED.total_points,
			matches_played = EXCLUDED.matches_played,
			wins = EXCLUDED.wins,
			updated_at = NOW()
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.TeamID, entry.SurvivalPoints, entry.KillPoints,
		entry.TotalPoints, entry.MatchesPlayed, entry.Wins,
	).Scan(&entry.ID, &entry.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrLeaderboardInvalidTeam
		}
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}
	return nil
}

func (r *postgresLeaderboardRepository) GetByTeam(ctx context.Context, teamID string) (*models.LeaderboardEntry, error) {
	query := `
		SELECT id, team_id, survival_points, kill_points, total_points,
		       matches_played, wins, updated_at
		FROM leaderboard WHERE team_id = $1`

	entry := &models.LeaderboardEntry{}
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(
		&entry.ID, &entry.TeamID, &entry.SurvivalPoints, &entry.KillPoints,
		&entry.TotalPoints, &entry.MatchesPlayed, &entry.Wins, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaderboardEntryNotFound
		}
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}
	return entry, nil
}

func (r *postgresLeaderboardRepository) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT l.id, l.team_id, l.survival_points, l.kill_points,
		       l.total_points, l.matches_played, l.wins, l.updated_at,
		       r.team_name, r.logo_key
		FROM leaderboard l
		JOIN registrations r ON l.team_id = r.id
		ORDER BY l.total_points DESC, r.team_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var entry models.LeaderboardEntry
		var logoKey sql.NullString
		if scanErr := rows.Scan(
			&entry.ID, &entry.TeamID, &entry.SurvivalPoints, &entry.KillPoints,
			&entry.TotalPoints, &entry.MatchesPlayed, &entry.Wins,
			&entry.UpdatedAt, &entry.TeamName, &logoKey,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", scanErr)
		}
		if logoKey.Valid {
			entry.LogoKey = &logoKey.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *postgresLeaderboardRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM leaderboard WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leaderboard entry: %w", err)
	}
	return checkAffectedRows(result, ErrLeaderboardEntryNotFound)
}
