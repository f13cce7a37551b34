package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
	"github.com/google/uuid"
)

const tournamentsTable = "tournaments"

type CreateTournamentInput struct {
	Title                string                  `json:"title"`
	Description          *string                 `json:"description"`
	Game                 string                  `json:"game"`
	StartDate            time.Time               `json:"start_date"`
	EndDate              time.Time               `json:"end_date"`
	RegistrationDeadline time.Time               `json:"registration_deadline"`
	PrizePool            string                  `json:"prize_pool"`
	MaxParticipants      int                     `json:"max_participants"`
	Format               models.TournamentFormat `json:"format"`
	RegistrationOpen     bool                    `json:"registration_open"`
}

type UpdateTournamentInput struct {
	Title                *string                  `json:"title"`
	Description          *string                  `json:"description"`
	Game                 *string                  `json:"game"`
	StartDate            *time.Time               `json:"start_date"`
	EndDate              *time.Time               `json:"end_date"`
	RegistrationDeadline *time.Time               `json:"registration_deadline"`
	PrizePool            *string                  `json:"prize_pool"`
	MaxParticipants      *int                     `json:"max_participants"`
	Format               *models.TournamentFormat `json:"format"`
	Status               *models.TournamentStatus `json:"status"`
	RegistrationOpen     *bool                    `json:"registration_open"`
}

type ListTournamentsInput struct {
	Status   *models.TournamentStatus
	PastOnly bool
	Limit    int
	Offset   int
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id string) error
	UploadTournamentImage(ctx context.Context, id string, contentType string, body io.Reader) (*models.Tournament, error)
	// RecalculateParticipantCount пересчитывает current_participants от
	// числа одобренных заявок и сохраняет результат, чтобы хранимое и
	// производное значения не расходились.
	RecalculateParticipantCount(ctx context.Context, tournamentID string) error
	// AutoUpdateStatusesByDates — проход планировщика: upcoming→ongoing,
	// ongoing→completed, закрытие регистрации после дедлайна.
	AutoUpdateStatusesByDates(ctx context.Context) error
}

type tournamentService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	uploader         storage.FileUploader
	bus              *realtime.Bus
	logger           *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	uploader storage.FileUploader,
	bus *realtime.Bus,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		uploader:         uploader,
		bus:              bus,
		logger:           logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Title == "" {
		return nil, ErrTournamentTitleRequired
	}
	if err := validateTournamentDates(input.StartDate, input.EndDate, input.RegistrationDeadline); err != nil {
		return nil, err
	}
	if input.MaxParticipants <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}
	if !isValidTournamentFormat(input.Format) {
		return nil, ErrTournamentInvalidFormat
	}

	tournament := &models.Tournament{
		Title:                input.Title,
		Description:          input.Description,
		Game:                 input.Game,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		RegistrationDeadline: input.RegistrationDeadline,
		PrizePool:            input.PrizePool,
		MaxParticipants:      input.MaxParticipants,
		Format:               input.Format,
		Status:               models.TournamentUpcoming,
		RegistrationOpen:     input.RegistrationOpen,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.bus.Publish(realtime.Event{Table: tournamentsTable, Action: realtime.ActionInsert, EntityID: tournament.ID})
	populateTournamentImageURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	populateTournamentImageURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error) {
	if input.Status != nil && !isValidTournamentStatus(*input.Status) {
		return nil, ErrTournamentInvalidStatus
	}
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status:   input.Status,
		PastOnly: input.PastOnly,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		populateTournamentImageURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTournamentTitleRequired
		}
		tournament.Title = *input.Title
	}
	if input.Description != nil {
		tournament.Description = input.Description
	}
	if input.Game != nil {
		tournament.Game = *input.Game
	}
	if input.StartDate != nil {
		tournament.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = *input.EndDate
	}
	if input.RegistrationDeadline != nil {
		tournament.RegistrationDeadline = *input.RegistrationDeadline
	}
	if err := validateTournamentDates(tournament.StartDate, tournament.EndDate, tournament.RegistrationDeadline); err != nil {
		return nil, err
	}
	if input.PrizePool != nil {
		tournament.PrizePool = *input.PrizePool
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		tournament.MaxParticipants = *input.MaxParticipants
	}
	if input.Format != nil {
		if !isValidTournamentFormat(*input.Format) {
			return nil, ErrTournamentInvalidFormat
		}
		tournament.Format = *input.Format
	}
	if input.Status != nil {
		if !isValidTournamentStatus(*input.Status) {
			return nil, ErrTournamentInvalidStatus
		}
		tournament.Status = *input.Status
	}
	// registration_open не зависит от status: турнир может идти при
	// закрытой регистрации, и наоборот.
	if input.RegistrationOpen != nil {
		tournament.RegistrationOpen = *input.RegistrationOpen
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.bus.Publish(realtime.Event{Table: tournamentsTable, Action: realtime.ActionUpdate, EntityID: tournament.ID})
	populateTournamentImageURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id string) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err)
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}

	if tournament.ImageKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *tournament.ImageKey); delErr != nil {
			s.logger.Warn("failed to delete tournament image",
				slog.String("tournament_id", id), slog.Any("error", delErr))
		}
	}

	s.bus.Publish(realtime.Event{Table: tournamentsTable, Action: realtime.ActionDelete, EntityID: id})
	return nil
}

func (s *tournamentService) UploadTournamentImage(ctx context.Context, id string, contentType string, body io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("tournaments/%s/%s%s", id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload tournament image: %w", err)
	}

	oldKey := tournament.ImageKey
	if err := s.tournamentRepo.UpdateImageKey(ctx, id, &key); err != nil {
		return nil, s.mapRepoError(err)
	}
	tournament.ImageKey = &key

	if oldKey != nil && *oldKey != key {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous tournament image",
				slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	s.bus.Publish(realtime.Event{Table: tournamentsTable, Action: realtime.ActionUpdate, EntityID: id})
	populateTournamentImageURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) RecalculateParticipantCount(ctx context.Context, tournamentID string) error {
	count, err := s.registrationRepo.CountByTournamentAndStatus(ctx, nil, tournamentID, models.RegistrationApproved)
	if err != nil {
		return err
	}
	if err := s.tournamentRepo.UpdateParticipantCount(ctx, nil, tournamentID, count); err != nil {
		return s.mapRepoError(err)
	}
	s.bus.Publish(realtime.Event{Table: tournamentsTable, Action: realtime.ActionUpdate, EntityID: tournamentID})
	return nil
}

func (s *tournamentService) AutoUpdateStatusesByDates(ctx context.Context) error {
	now := time.Now()
	tournaments, err := s.tournamentRepo.GetForAutoStatusUpdate(ctx, now)
	if err != nil {
		return err
	}

	for _, t := range tournaments {
		changed := false

		if t.RegistrationOpen && !t.RegistrationDeadline.After(now) {
			if err := s.tournamentRepo.UpdateRegistrationOpen(ctx, nil, t.ID, false); err != nil {
				s.logger.Error("scheduler: failed to close registration",
					slog.String("tournament_id", t.ID), slog.Any("error", err))
			} else {
				s.logger.Info("scheduler: registration closed past deadline",
					slog.String("tournament_id", t.ID))
				changed = true
			}
		}

		var next models.TournamentStatus
		switch {
		case t.Status == models.TournamentUpcoming && !t.StartDate.After(now):
			next = models.TournamentOngoing
		case t.Status == models.TournamentOngoing && !t.EndDate.After(now):
			next = models.TournamentCompleted
		}
		if next != "" {
			if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
				s.logger.Error("scheduler: failed to update tournament status",
					slog.String("tournament_id", t.ID), slog.Any("error", err))
			} else {
				s.logger.Info("scheduler: tournament status updated",
					slog.String("tournament_id", t.ID),
					slog.String("from", string(t.Status)),
					slog.String("to", string(next)))
				changed = true
			}
		}

		if changed {
			s.bus.Publish(realtime.Event{Table: tournamentsTable, Action: realtime.ActionUpdate, EntityID: t.ID})
		}
	}
	return nil
}

func (s *tournamentService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentTitleConflict):
		return ErrTournamentTitleConflict
	case errors.Is(err, repositories.ErrTournamentInUse):
		return ErrTournamentInUse
	default:
		return err
	}
}
