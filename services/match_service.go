package services

import (
	"context"
	"errors"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
)

const matchesTable = "matches"

type CreateMatchInput struct {
	TournamentID string    `json:"tournament_id"`
	Team1ID      string    `json:"team1_id"`
	Team2ID      string    `json:"team2_id"`
	StartTime    time.Time `json:"start_time"`
	StreamURL    *string   `json:"stream_url"`
}

type ListMatchesInput struct {
	TournamentID *string
	Status       *models.MatchStatus
	Limit        int
}

type MatchService interface {
	// CreateMatch создаёт матч из двух одобренных команд одного турнира.
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatchByID(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, input ListMatchesInput) ([]models.Match, error)
	// UpdateScore меняет счёт. Допустимо только пока матч live.
	UpdateScore(ctx context.Context, id string, score1, score2 int) (*models.Match, error)
	UpdateStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error)
	DeleteMatch(ctx context.Context, id string) error
}

type matchService struct {
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	bus              *realtime.Bus
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	bus *realtime.Bus,
) MatchService {
	return &matchService{
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		bus:              bus,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.Team1ID == input.Team2ID {
		return nil, ErrMatchTeamsIdentical
	}
	if _, err := s.tournamentRepo.GetByID(ctx, input.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	for _, teamID := range []string{input.Team1ID, input.Team2ID} {
		reg, err := s.registrationRepo.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return nil, ErrRegistrationNotFound
			}
			return nil, err
		}
		if reg.Status != models.RegistrationApproved {
			return nil, ErrMatchTeamsNotApproved
		}
		if reg.TournamentID != input.TournamentID {
			return nil, ErrMatchTeamsDifferentTournaments
		}
	}

	match := &models.Match{
		TournamentID: input.TournamentID,
		Team1ID:      input.Team1ID,
		Team2ID:      input.Team2ID,
		Status:       models.MatchScheduled,
		StartTime:    input.StartTime,
		StreamURL:    input.StreamURL,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.bus.Publish(realtime.Event{
		Table:     matchesTable,
		Action:    realtime.ActionInsert,
		FilterKey: match.TournamentID,
		EntityID:  match.ID,
	})
	return match, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, input ListMatchesInput) ([]models.Match, error) {
	return s.matchRepo.List(ctx, repositories.ListMatchesFilter{
		TournamentID: input.TournamentID,
		Status:       input.Status,
		Limit:        input.Limit,
	})
}

func (s *matchService) UpdateScore(ctx context.Context, id string, score1, score2 int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	// Счёт осмысленно мутирует только в live: до начала матча счёта
	// нет, после завершения запись историческая.
	if match.Status != models.MatchLive {
		return nil, ErrMatchScoreNotEditable
	}

	if err := s.matchRepo.UpdateScore(ctx, id, score1, score2); err != nil {
		return nil, s.mapRepoError(err)
	}
	match.Score1 = score1
	match.Score2 = score2

	s.bus.Publish(realtime.Event{
		Table:     matchesTable,
		Action:    realtime.ActionUpdate,
		FilterKey: match.TournamentID,
		EntityID:  id,
	})
	return match, nil
}

func (s *matchService) UpdateStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if !isValidMatchStatusTransition(match.Status, status) {
		return nil, ErrMatchInvalidStatusTransition
	}
	if match.Status == status {
		return match, nil
	}

	if err := s.matchRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, s.mapRepoError(err)
	}
	match.Status = status

	s.bus.Publish(realtime.Event{
		Table:     matchesTable,
		Action:    realtime.ActionUpdate,
		FilterKey: match.TournamentID,
		EntityID:  id,
	})
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id string) error {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err)
	}
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}

	s.bus.Publish(realtime.Event{
		Table:     matchesTable,
		Action:    realtime.ActionDelete,
		FilterKey: match.TournamentID,
		EntityID:  id,
	})
	return nil
}

func (s *matchService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchInvalidTeam):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrMatchInvalidTournament):
		return ErrTournamentNotFound
	default:
		return err
	}
}
