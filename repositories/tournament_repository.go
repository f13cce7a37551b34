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
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentTitleConflict = errors.New("tournament title conflict")
	// ErrTournamentInUse — на турнир ссылаются заявки или матчи,
	// удаление запрещено, чтобы не осиротить их.
	ErrTournamentInUse = errors.New("tournament is in use (registrations/matches exist)")
)

type ListTournamentsFilter struct {
	Status   *models.TournamentStatus
	PastOnly bool
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error
	UpdateRegistrationOpen(ctx context.Context, exec SQLExecutor, id string, open bool) error
	UpdateParticipantCount(ctx context.Context, exec SQLExecutor, id string, count int) error
	UpdateImageKey(ctx context.Context, id string, imageKey *string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, status *models.TournamentStatus) (int, error)
	GetForAutoStatusUpdate(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, title, description, game, start_date, end_date, registration_deadline,
	prize_pool, max_participants, current_participants, format, status,
	registration_open, image_key, created_at, updated_at`

func scanTournament(scanner interface{ Scan(dest ...interface{}) error }, t *models.Tournament) error {
	return scanner.Scan(
		&t.ID, &t.Title, &t.Description, &t.Game, &t.StartDate, &t.EndDate,
		&t.RegistrationDeadline, &t.PrizePool, &t.MaxParticipants,
		&t.CurrentParticipants, &t.Format, &t.Status, &t.RegistrationOpen,
		&t.ImageKey, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = uuid.NewString()
	// current_participants при создании всегда 0 — производное значение
	// пересчитывается от одобренных заявок.
	query := `
		INSERT INTO tournaments (
			id, title, description, game, start_date, end_date, registration_deadline,
			prize_pool, max_participants, current_participants, format, status,
			registration_open, image_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Title, t.Description, t.Game, t.StartDate, t.EndDate,
		t.RegistrationDeadline, t.PrizePool, t.MaxParticipants, t.Format,
		t.Status, t.RegistrationOpen, t.ImageKey,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return r.handleTournamentError(err)
	}
	t.CurrentParticipants = 0
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Game, &t.StartDate, &t.EndDate,
		&t.RegistrationDeadline, &t.PrizePool, &t.MaxParticipants,
		&t.CurrentParticipants, &t.Format, &t.Status, &t.RegistrationOpen,
		&t.ImageKey, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.PastOnly {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, models.TournamentCompleted)
		argID++
	} else if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY end_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE created_at >= $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			title = $1, description = $2, game = $3, start_date = $4, end_date = $5,
			registration_deadline = $6, prize_pool = $7, max_participants = $8,
			format = $9, status = $10, registration_open = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Description, t.Game, t.StartDate, t.EndDate,
		t.RegistrationDeadline, t.PrizePool, t.MaxParticipants,
		t.Format, t.Status, t.RegistrationOpen, t.ID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTournamentNotFound
		}
		return r.handleTournamentError(err)
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateRegistrationOpen(ctx context.Context, exec SQLExecutor, id string, open bool) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET registration_open = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, open, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateParticipantCount(ctx context.Context, exec SQLExecutor, id string, count int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET current_participants = $1, updated_at = NOW() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, count, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateImageKey(ctx context.Context, id string, imageKey *string) error {
	query := `UPDATE tournaments SET image_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, imageKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament image key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Count(ctx context.Context, status *models.TournamentStatus) (int, error) {
	query := `SELECT COUNT(*) FROM tournaments`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

// GetForAutoStatusUpdate выбирает турниры, которым планировщик должен
// поменять статус или закрыть регистрацию по датам.
func (r *postgresTournamentRepository) GetForAutoStatusUpdate(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE (status = $1 AND start_date <= $3)
		   OR (status = $2 AND end_date <= $3)
		   OR (registration_open = TRUE AND registration_deadline <= $3)`

	rows, err := r.db.QueryContext(ctx, query, models.TournamentUpcoming, models.TournamentOngoing, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for auto status update: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament for auto status update: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_title_key" {
				return ErrTournamentTitleConflict
			}
		case "23503":
			// FK из registrations/matches/leaderboard на турнир:
			// удалить турнир, пока на него ссылаются, нельзя.
			return ErrTournamentInUse
		}
	}
	return err
}
