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
	ErrRegistrationNotFound          = errors.New("registration not found")
	ErrRegistrationTournamentInvalid = errors.New("registration references unknown tournament")
	ErrRegistrationInUse             = errors.New("registration is referenced by matches or leaderboard")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id string) (*models.Registration, error)
	List(ctx context.Context, withTournament bool) ([]models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID string, statusFilter *models.RegistrationStatus) ([]models.Registration, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Registration, error)
	ListApprovedTeams(ctx context.Context) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.RegistrationStatus) error
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error
	CountByTournamentAndStatus(ctx context.Context, exec SQLExecutor, tournamentID string, status models.RegistrationStatus) (int, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `
	id, tournament_id, team_name, status, team_members, contact_info,
	game_details, tournament_preferences, logo_key, created_at`

func scanRegistration(scanner interface{ Scan(dest ...interface{}) error }, reg *models.Registration) error {
	return scanner.Scan(
		&reg.ID, &reg.TournamentID, &reg.TeamName, &reg.Status,
		&reg.TeamMembers, &reg.ContactInfo, &reg.GameDetails,
		&reg.Preferences, &reg.LogoKey, &reg.CreatedAt,
	)
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	reg.ID = uuid.NewString()
	query := `
		INSERT INTO registrations (
			id, tournament_id, team_name, status, team_members, contact_info,
			game_details, tournament_preferences, logo_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.ID, reg.TournamentID, reg.TeamName, reg.Status, reg.TeamMembers,
		reg.ContactInfo, reg.GameDetails, reg.Preferences, reg.LogoKey,
	).Scan(&reg.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRegistrationTournamentInvalid
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE id = $1`

	reg := &models.Registration{}
	err := scanRegistration(r.db.QueryRowContext(ctx, query, id), reg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return reg, nil
}

// List возвращает все заявки, новые сверху. withTournament дополнительно
// подтягивает заголовок и игру турнира для админского списка.
func (r *postgresRegistrationRepository) List(ctx context.Context, withTournament bool) ([]models.Registration, error) {
	query := `
		SELECT r.id, r.tournament_id, r.team_name, r.status, r.team_members,
		       r.contact_info, r.game_details, r.tournament_preferences,
		       r.logo_key, r.created_at`
	if withTournament {
		query += `, t.title, t.game`
	}
	query += ` FROM registrations r`
	if withTournament {
		query += ` LEFT JOIN tournaments t ON r.tournament_id = t.id`
	}
	query += ` ORDER BY r.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		dest := []interface{}{
			&reg.ID, &reg.TournamentID, &reg.TeamName, &reg.Status,
			&reg.TeamMembers, &reg.ContactInfo, &reg.GameDetails,
			&reg.Preferences, &reg.LogoKey, &reg.CreatedAt,
		}
		var title, game sql.NullString
		if withTournament {
			dest = append(dest, &title, &game)
		}
		if scanErr := rows.Scan(dest...); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		if withTournament && title.Valid {
			reg.Tournament = &models.Tournament{
				ID:    reg.TournamentID,
				Title: title.String,
				Game:  game.String,
			}
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID string, statusFilter *models.RegistrationStatus) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if statusFilter != nil {
		query += ` AND status = $2`
		args = append(args, *statusFilter)
	}
	query += ` ORDER BY created_at ASC`

	return r.queryRegistrations(ctx, query, args...)
}

func (r *postgresRegistrationRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE created_at >= $1 ORDER BY created_at DESC`
	return r.queryRegistrations(ctx, query, since)
}

// ListApprovedTeams — одобренные команды для выбора в матчи и
// лидерборд, по имени команды.
func (r *postgresRegistrationRepository) ListApprovedTeams(ctx context.Context) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE status = $1 ORDER BY team_name ASC`
	return r.queryRegistrations(ctx, query, models.RegistrationApproved)
}

func (r *postgresRegistrationRepository) queryRegistrations(ctx context.Context, query string, args ...interface{}) ([]models.Registration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if scanErr := scanRegistration(rows, &reg); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.RegistrationStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE registrations SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update registration logo key: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) CountByTournamentAndStatus(ctx context.Context, exec SQLExecutor, tournamentID string, status models.RegistrationStatus) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1 AND status = $2`
	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRegistrationInUse
		}
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
