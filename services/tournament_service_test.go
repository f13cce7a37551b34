package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/repositories"
)

func validCreateInput() CreateTournamentInput {
	start := time.Now().Add(7 * 24 * time.Hour)
	return CreateTournamentInput{
		Title:                "Spring Cup",
		Game:                 "PUBG Mobile",
		StartDate:            start,
		EndDate:              start.Add(48 * time.Hour),
		RegistrationDeadline: start.Add(-24 * time.Hour),
		PrizePool:            "$5,000",
		MaxParticipants:      32,
		Format:               models.FormatSquad,
		RegistrationOpen:     true,
	}
}

func TestCreateTournament(t *testing.T) {
	bus := realtime.NewBus()
	sub := bus.Subscribe("tournaments", "")
	defer sub.Close()

	svc := NewTournamentService(nil, &MockTournamentRepository{}, &MockRegistrationRepository{}, nil, bus, testLogger())

	tournament, err := svc.CreateTournament(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("CreateTournament returned %v", err)
	}
	if tournament.Status != models.TournamentUpcoming {
		t.Errorf("status = %q, want upcoming", tournament.Status)
	}

	select {
	case e := <-sub.Events():
		if e.Action != realtime.ActionInsert {
			t.Errorf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Error("no bus event published after create")
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateTournamentInput)
		want   error
	}{
		{
			name:   "EmptyTitle",
			mutate: func(in *CreateTournamentInput) { in.Title = "" },
			want:   ErrTournamentTitleRequired,
		},
		{
			name:   "EndBeforeStart",
			mutate: func(in *CreateTournamentInput) { in.EndDate = in.StartDate.Add(-time.Hour) },
			want:   ErrTournamentInvalidDateRange,
		},
		{
			name:   "DeadlineAfterStart",
			mutate: func(in *CreateTournamentInput) { in.RegistrationDeadline = in.StartDate.Add(time.Hour) },
			want:   ErrTournamentInvalidDeadline,
		},
		{
			name:   "ZeroCapacity",
			mutate: func(in *CreateTournamentInput) { in.MaxParticipants = 0 },
			want:   ErrTournamentInvalidCapacity,
		},
		{
			name:   "UnknownFormat",
			mutate: func(in *CreateTournamentInput) { in.Format = "battle-royale-100" },
			want:   ErrTournamentInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTournamentService(nil, &MockTournamentRepository{}, &MockRegistrationRepository{}, nil, realtime.NewBus(), testLogger())

			input := validCreateInput()
			tt.mutate(&input)
			_, err := svc.CreateTournament(context.Background(), input)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateTournamentRegistrationOpenIndependentOfStatus(t *testing.T) {
	// Регистрацию можно открыть у идущего турнира: поля независимы.
	stored := &models.Tournament{
		ID:                   "t1",
		Title:                "Spring Cup",
		Status:               models.TournamentOngoing,
		RegistrationOpen:     false,
		StartDate:            time.Now().Add(-time.Hour),
		EndDate:              time.Now().Add(24 * time.Hour),
		RegistrationDeadline: time.Now().Add(-2 * time.Hour),
		MaxParticipants:      32,
		Format:               models.FormatSquad,
	}
	repo := &MockTournamentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Tournament, error) { return stored, nil },
	}
	svc := NewTournamentService(nil, repo, &MockRegistrationRepository{}, nil, realtime.NewBus(), testLogger())

	open := true
	tournament, err := svc.UpdateTournament(context.Background(), "t1", UpdateTournamentInput{RegistrationOpen: &open})
	if err != nil {
		t.Fatalf("UpdateTournament returned %v", err)
	}
	if !tournament.RegistrationOpen {
		t.Error("registration_open = false, want true")
	}
	if tournament.Status != models.TournamentOngoing {
		t.Errorf("status changed to %q", tournament.Status)
	}
}

func TestDeleteTournamentInUse(t *testing.T) {
	repo := &MockTournamentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Tournament, error) {
			return &models.Tournament{ID: id}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return repositories.ErrTournamentInUse
		},
	}
	svc := NewTournamentService(nil, repo, &MockRegistrationRepository{}, nil, realtime.NewBus(), testLogger())

	if err := svc.DeleteTournament(context.Background(), "t1"); !errors.Is(err, ErrTournamentInUse) {
		t.Errorf("err = %v, want %v", err, ErrTournamentInUse)
	}
}

func TestAutoUpdateStatusesByDates(t *testing.T) {
	now := time.Now()
	started := &models.Tournament{
		ID:                   "t1",
		Status:               models.TournamentUpcoming,
		StartDate:            now.Add(-time.Hour),
		EndDate:              now.Add(24 * time.Hour),
		RegistrationDeadline: now.Add(-2 * time.Hour),
		RegistrationOpen:     true,
	}
	finished := &models.Tournament{
		ID:        "t2",
		Status:    models.TournamentOngoing,
		StartDate: now.Add(-48 * time.Hour),
		EndDate:   now.Add(-time.Hour),
	}

	statusUpdates := map[string]models.TournamentStatus{}
	var registrationClosed []string
	repo := &MockTournamentRepository{
		GetForAutoStatusUpdateFunc: func(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
			return []*models.Tournament{started, finished}, nil
		},
		UpdateStatusFunc: func(ctx context.Context, exec repositories.SQLExecutor, id string, status models.TournamentStatus) error {
			statusUpdates[id] = status
			return nil
		},
		UpdateRegistrationOpenFunc: func(ctx context.Context, exec repositories.SQLExecutor, id string, open bool) error {
			if !open {
				registrationClosed = append(registrationClosed, id)
			}
			return nil
		},
	}
	svc := NewTournamentService(nil, repo, &MockRegistrationRepository{}, nil, realtime.NewBus(), testLogger())

	if err := svc.AutoUpdateStatusesByDates(context.Background()); err != nil {
		t.Fatalf("AutoUpdateStatusesByDates returned %v", err)
	}

	if statusUpdates["t1"] != models.TournamentOngoing {
		t.Errorf("t1 status = %q, want ongoing", statusUpdates["t1"])
	}
	if statusUpdates["t2"] != models.TournamentCompleted {
		t.Errorf("t2 status = %q, want completed", statusUpdates["t2"])
	}
	if len(registrationClosed) != 1 || registrationClosed[0] != "t1" {
		t.Errorf("registration closed for %v, want [t1]", registrationClosed)
	}
}

func TestRecalculateParticipantCount(t *testing.T) {
	var gotCount int
	repo := &MockTournamentRepository{
		UpdateParticipantCountFunc: func(ctx context.Context, exec repositories.SQLExecutor, id string, count int) error {
			gotCount = count
			return nil
		},
	}
	regRepo := &MockRegistrationRepository{
		CountByTournamentAndStatusFunc: func(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, status models.RegistrationStatus) (int, error) {
			if status != models.RegistrationApproved {
				t.Errorf("counted status %q, want approved", status)
			}
			return 7, nil
		},
	}
	svc := NewTournamentService(nil, repo, regRepo, nil, realtime.NewBus(), testLogger())

	if err := svc.RecalculateParticipantCount(context.Background(), "t1"); err != nil {
		t.Fatalf("RecalculateParticipantCount returned %v", err)
	}
	if gotCount != 7 {
		t.Errorf("stored count = %d, want 7", gotCount)
	}
}
