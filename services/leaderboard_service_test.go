package services

import (
	"context"
	"errors"
	"testing"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
)

func TestUpsertLeaderboardEntry(t *testing.T) {
	regRepo := &MockRegistrationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Registration, error) {
			return &models.Registration{ID: id, TeamName: "Night Owls", Status: models.RegistrationApproved}, nil
		},
	}
	var saved *models.LeaderboardEntry
	lbRepo := &MockLeaderboardRepository{
		UpsertFunc: func(ctx context.Context, entry *models.LeaderboardEntry) error {
			entry.ID = "e1"
			saved = entry
			return nil
		},
	}
	svc := NewLeaderboardService(lbRepo, regRepo, nil, realtime.NewBus())

	entry, err := svc.UpsertEntry(context.Background(), UpsertLeaderboardInput{
		TeamID:         "r1",
		SurvivalPoints: 120,
		KillPoints:     45,
		MatchesPlayed:  10,
		Wins:           4,
	})
	if err != nil {
		t.Fatalf("UpsertEntry returned %v", err)
	}

	// total_points не принимается с клиента: всегда survival + kill.
	if saved.TotalPoints != 165 {
		t.Errorf("stored total_points = %d, want 165", saved.TotalPoints)
	}
	if entry.WinRate != 40.0 {
		t.Errorf("win rate = %v, want 40.0", entry.WinRate)
	}
	if entry.TeamName != "Night Owls" {
		t.Errorf("team name = %q", entry.TeamName)
	}
}

func TestUpsertLeaderboardEntryValidation(t *testing.T) {
	tests := []struct {
		name  string
		input UpsertLeaderboardInput
		want  error
	}{
		{
			name:  "NegativeSurvival",
			input: UpsertLeaderboardInput{TeamID: "r1", SurvivalPoints: -1},
			want:  ErrLeaderboardNegativePoints,
		},
		{
			name:  "NegativeWins",
			input: UpsertLeaderboardInput{TeamID: "r1", Wins: -2},
			want:  ErrLeaderboardNegativePoints,
		},
		{
			name:  "WinsExceedMatches",
			input: UpsertLeaderboardInput{TeamID: "r1", MatchesPlayed: 3, Wins: 4},
			want:  ErrLeaderboardWinsExceedMatches,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewLeaderboardService(&MockLeaderboardRepository{}, &MockRegistrationRepository{}, nil, realtime.NewBus())

			_, err := svc.UpsertEntry(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpsertLeaderboardEntryUnapprovedTeam(t *testing.T) {
	regRepo := &MockRegistrationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Registration, error) {
			return &models.Registration{ID: id, Status: models.RegistrationPending}, nil
		},
	}
	svc := NewLeaderboardService(&MockLeaderboardRepository{}, regRepo, nil, realtime.NewBus())

	_, err := svc.UpsertEntry(context.Background(), UpsertLeaderboardInput{TeamID: "r1"})
	if !errors.Is(err, ErrMatchTeamsNotApproved) {
		t.Errorf("err = %v, want %v", err, ErrMatchTeamsNotApproved)
	}
}

func TestListLeaderboardComputesWinRate(t *testing.T) {
	lbRepo := &MockLeaderboardRepository{
		ListFunc: func(ctx context.Context) ([]models.LeaderboardEntry, error) {
			return []models.LeaderboardEntry{
				{ID: "e1", Wins: 1, MatchesPlayed: 3},
				{ID: "e2", Wins: 0, MatchesPlayed: 0},
			}, nil
		},
	}
	svc := NewLeaderboardService(lbRepo, &MockRegistrationRepository{}, nil, realtime.NewBus())

	entries, err := svc.ListEntries(context.Background())
	if err != nil {
		t.Fatalf("ListEntries returned %v", err)
	}
	// 1/3 = 33.333..., один знак после запятой.
	if entries[0].WinRate != 33.3 {
		t.Errorf("win rate = %v, want 33.3", entries[0].WinRate)
	}
	// Деление на ноль матчей даёт 0, а не NaN.
	if entries[1].WinRate != 0 {
		t.Errorf("win rate = %v, want 0", entries[1].WinRate)
	}
}
