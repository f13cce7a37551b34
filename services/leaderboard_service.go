package services

import (
	"context"
	"errors"
	"math"

	"github.com/esports-arena/tournament-hub/livequery"
	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
)

const leaderboardTable = "leaderboard"

type UpsertLeaderboardInput struct {
	TeamID         string `json:"team_id"`
	SurvivalPoints int    `json:"survival_points"`
	KillPoints     int    `json:"kill_points"`
	MatchesPlayed  int    `json:"matches_played"`
	Wins           int    `json:"wins"`
}

type LeaderboardService interface {
	// UpsertEntry записывает очки команды. total_points не принимается
	// с клиента, он всегда пересчитывается из survival + kill.
	UpsertEntry(ctx context.Context, input UpsertLeaderboardInput) (*models.LeaderboardEntry, error)
	ListEntries(ctx context.Context) ([]models.LeaderboardEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

type leaderboardService struct {
	leaderboardRepo  repositories.LeaderboardRepository
	registrationRepo repositories.RegistrationRepository
	uploader         storage.FileUploader
	bus              *realtime.Bus
}

func NewLeaderboardService(
	leaderboardRepo repositories.LeaderboardRepository,
	registrationRepo repositories.RegistrationRepository,
	uploader storage.FileUploader,
	bus *realtime.Bus,
) LeaderboardService {
	return &leaderboardService{
		leaderboardRepo:  leaderboardRepo,
		registrationRepo: registrationRepo,
		uploader:         uploader,
		bus:              bus,
	}
}

func (s *leaderboardService) UpsertEntry(ctx context.Context, input UpsertLeaderboardInput) (*models.LeaderboardEntry, error) {
	if input.SurvivalPoints < 0 || input.KillPoints < 0 || input.MatchesPlayed < 0 || input.Wins < 0 {
		return nil, ErrLeaderboardNegativePoints
	}
	if input.Wins > input.MatchesPlayed {
		return nil, ErrLeaderboardWinsExceedMatches
	}

	reg, err := s.registrationRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	if reg.Status != models.RegistrationApproved {
		return nil, ErrMatchTeamsNotApproved
	}

	entry := &models.LeaderboardEntry{
		TeamID:         input.TeamID,
		SurvivalPoints: input.SurvivalPoints,
		KillPoints:     input.KillPoints,
		TotalPoints:    livequery.TotalPoints(input.SurvivalPoints, input.KillPoints),
		MatchesPlayed:  input.MatchesPlayed,
		Wins:           input.Wins,
	}
	if existing, getErr := s.leaderboardRepo.GetByTeam(ctx, input.TeamID); getErr == nil {
		entry.ID = existing.ID
	}

	if err := s.leaderboardRepo.Upsert(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardInvalidTeam) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	entry.TeamName = reg.TeamName
	entry.LogoKey = reg.LogoKey
	entry.WinRate = roundWinRate(livequery.WinRate(entry.Wins, entry.MatchesPlayed))
	s.populateLogoURL(entry)

	s.bus.Publish(realtime.Event{
		Table:    leaderboardTable,
		Action:   realtime.ActionUpdate,
		EntityID: entry.ID,
	})
	return entry, nil
}

func (s *leaderboardService) ListEntries(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, err := s.leaderboardRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].WinRate = roundWinRate(livequery.WinRate(entries[i].Wins, entries[i].MatchesPlayed))
		s.populateLogoURL(&entries[i])
	}
	return entries, nil
}

func (s *leaderboardService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.leaderboardRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEntryNotFound) {
			return ErrLeaderboardNotFound
		}
		return err
	}

	s.bus.Publish(realtime.Event{
		Table:    leaderboardTable,
		Action:   realtime.ActionDelete,
		EntityID: id,
	})
	return nil
}

func (s *leaderboardService) populateLogoURL(entry *models.LeaderboardEntry) {
	if entry.LogoKey != nil && *entry.LogoKey != "" && s.uploader != nil {
		url := s.uploader.GetPublicURL(*entry.LogoKey)
		if url != "" {
			entry.LogoURL = &url
		}
	}
}

// roundWinRate округляет до одного знака для отображения.
func roundWinRate(rate float64) float64 {
	return math.Round(rate*10) / 10
}
