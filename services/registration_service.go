package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
	"github.com/google/uuid"
)

const registrationsTable = "registrations"

// minTeamMembers — минимальный состав по правилам турнира.
const minTeamMembers = 4

type SubmitRegistrationInput struct {
	TeamName    string                       `json:"team_name"`
	TeamMembers models.TeamMembers           `json:"team_members"`
	ContactInfo models.ContactInfo           `json:"contact_info"`
	GameDetails models.GameDetails           `json:"game_details"`
	Preferences models.TournamentPreferences `json:"tournament_preferences"`
}

type RegistrationService interface {
	// SubmitRegistration создаёт заявку со статусом pending и отправляет
	// письмо-подтверждение (fire-and-forget).
	SubmitRegistration(ctx context.Context, tournamentID string, input SubmitRegistrationInput) (*models.Registration, error)
	GetRegistrationByID(ctx context.Context, id string) (*models.Registration, error)
	ListRegistrations(ctx context.Context) ([]models.Registration, error)
	ListApprovedTeams(ctx context.Context) ([]models.Registration, error)
	// UpdateStatus — approve/reject. Пересчитывает current_participants
	// турнира, шлёт письмо о статусе; у отклонённой заявки удаляется
	// загруженный логотип.
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error)
	UploadTeamLogo(ctx context.Context, id string, contentType string, body io.Reader) (*models.Registration, error)
}

type registrationService struct {
	registrationRepo  repositories.RegistrationRepository
	tournamentRepo    repositories.TournamentRepository
	tournamentService TournamentService
	uploader          storage.FileUploader
	notifier          Notifier
	bus               *realtime.Bus
	logger            *slog.Logger
}

func NewRegistrationService(
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	tournamentService TournamentService,
	uploader storage.FileUploader,
	notifier Notifier,
	bus *realtime.Bus,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		registrationRepo:  registrationRepo,
		tournamentRepo:    tournamentRepo,
		tournamentService: tournamentService,
		uploader:          uploader,
		notifier:          notifier,
		bus:               bus,
		logger:            logger,
	}
}

func (s *registrationService) SubmitRegistration(ctx context.Context, tournamentID string, input SubmitRegistrationInput) (*models.Registration, error) {
	if err := validateRegistrationInput(input); err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if !tournament.RegistrationOpen || time.Now().After(tournament.RegistrationDeadline) {
		return nil, ErrRegistrationClosed
	}
	if tournament.CurrentParticipants >= tournament.MaxParticipants {
		return nil, ErrTournamentFull
	}

	reg := &models.Registration{
		TournamentID: tournamentID,
		TeamName:     input.TeamName,
		Status:       models.RegistrationPending,
		TeamMembers:  input.TeamMembers,
		ContactInfo:  input.ContactInfo,
		GameDetails:  input.GameDetails,
		Preferences:  input.Preferences,
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	s.bus.Publish(realtime.Event{
		Table:     registrationsTable,
		Action:    realtime.ActionInsert,
		FilterKey: tournamentID,
		EntityID:  reg.ID,
	})

	// Письмо — best effort: заявка уже записана, и её судьба от письма
	// не зависит.
	s.notifier.SendRegistrationConfirmation(ctx, reg, tournament.Title)

	return reg, nil
}

func (s *registrationService) GetRegistrationByID(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	populateRegistrationLogoURL(reg, s.uploader)
	return reg, nil
}

func (s *registrationService) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	registrations, err := s.registrationRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	for i := range registrations {
		populateRegistrationLogoURL(&registrations[i], s.uploader)
	}
	return registrations, nil
}

func (s *registrationService) ListApprovedTeams(ctx context.Context) ([]models.Registration, error) {
	teams, err := s.registrationRepo.ListApprovedTeams(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		populateRegistrationLogoURL(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *registrationService) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error) {
	if status != models.RegistrationApproved && status != models.RegistrationRejected {
		return nil, ErrRegistrationInvalidStatus
	}

	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if err := s.registrationRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, s.mapRepoError(err)
	}
	reg.Status = status

	// Производный счётчик участников пересчитывается от одобренных
	// заявок при каждом переходе статуса.
	if err := s.tournamentService.RecalculateParticipantCount(ctx, reg.TournamentID); err != nil {
		s.logger.Error("failed to recalculate participant count",
			slog.String("tournament_id", reg.TournamentID), slog.Any("error", err))
	}

	// Побочный эффект отклонения: логотип команды больше не нужен.
	if status == models.RegistrationRejected && reg.LogoKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *reg.LogoKey); delErr != nil {
			s.logger.Warn("failed to delete rejected registration logo",
				slog.String("registration_id", id), slog.Any("error", delErr))
		}
	}

	s.bus.Publish(realtime.Event{
		Table:     registrationsTable,
		Action:    realtime.ActionUpdate,
		FilterKey: reg.TournamentID,
		EntityID:  id,
	})

	s.notifier.SendStatusUpdate(ctx, reg, status)

	populateRegistrationLogoURL(reg, s.uploader)
	return reg, nil
}

func (s *registrationService) UploadTeamLogo(ctx context.Context, id string, contentType string, body io.Reader) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, id)
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

	key := fmt.Sprintf("teams/%s/%s%s", id, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	// Ключ хранится в заявке; отдельного update-метода у репозитория
	// нет, логотип — единственное мутабельное поле после создания,
	// кроме статуса.
	if err := s.registrationRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, s.mapRepoError(err)
	}
	reg.LogoKey = &key

	s.bus.Publish(realtime.Event{
		Table:     registrationsTable,
		Action:    realtime.ActionUpdate,
		FilterKey: reg.TournamentID,
		EntityID:  id,
	})

	populateRegistrationLogoURL(reg, s.uploader)
	return reg, nil
}

func validateRegistrationInput(input SubmitRegistrationInput) error {
	if input.TeamName == "" {
		return fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}
	if len(input.TeamMembers) < minTeamMembers {
		return ErrTeamMembersRequired
	}
	for _, m := range input.TeamMembers {
		if m.Name == "" || m.Username == "" {
			return fmt.Errorf("%w: team member name and username are required", ErrValidationFailed)
		}
	}
	if _, err := mail.ParseAddress(input.ContactInfo.Email); err != nil {
		return fmt.Errorf("%w: invalid contact email", ErrValidationFailed)
	}
	if input.ContactInfo.FullName == "" || input.ContactInfo.Phone == "" {
		return fmt.Errorf("%w: contact full name and phone are required", ErrValidationFailed)
	}
	if input.GameDetails.UID == "" {
		return fmt.Errorf("%w: game uid is required", ErrValidationFailed)
	}
	return nil
}

func (s *registrationService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	default:
		return err
	}
}
