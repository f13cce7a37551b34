package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/esports-arena/tournament-hub/livequery"
	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/realtime"
	"github.com/esports-arena/tournament-hub/services"
)

type MockLeaderboardService struct {
	UpsertEntryFunc func(ctx context.Context, input services.UpsertLeaderboardInput) (*models.LeaderboardEntry, error)
	ListEntriesFunc func(ctx context.Context) ([]models.LeaderboardEntry, error)
	DeleteEntryFunc func(ctx context.Context, id string) error
}

func (m *MockLeaderboardService) UpsertEntry(ctx context.Context, input services.UpsertLeaderboardInput) (*models.LeaderboardEntry, error) {
	if m.UpsertEntryFunc != nil {
		return m.UpsertEntryFunc(ctx, input)
	}
	return &models.LeaderboardEntry{ID: "e1"}, nil
}

func (m *MockLeaderboardService) ListEntries(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if m.ListEntriesFunc != nil {
		return m.ListEntriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockLeaderboardService) DeleteEntry(ctx context.Context, id string) error {
	if m.DeleteEntryFunc != nil {
		return m.DeleteEntryFunc(ctx, id)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListLeaderboardServesLiveSnapshot(t *testing.T) {
	var fetches atomic.Int32
	bus := realtime.NewBus()
	live := livequery.Bind(context.Background(), bus, "leaderboard", "",
		func(ctx context.Context) ([]models.LeaderboardEntry, error) {
			fetches.Add(1)
			return []models.LeaderboardEntry{{ID: "e1", TeamName: "Night Owls", TotalPoints: 165}}, nil
		}, discardLogger())
	defer live.Close()

	// Сервис не должен быть вызван: снимок уже готов после Bind.
	svc := &MockLeaderboardService{
		ListEntriesFunc: func(ctx context.Context) ([]models.LeaderboardEntry, error) {
			t.Error("service ListEntries called, want live snapshot")
			return nil, nil
		},
	}
	h := NewLeaderboardHandler(svc, live)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rec := httptest.NewRecorder()
	h.ListHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Leaderboard) != 1 || resp.Leaderboard[0].TeamName != "Night Owls" {
		t.Errorf("leaderboard = %+v", resp.Leaderboard)
	}

	before := fetches.Load()
	bus.Publish(realtime.Event{Table: "leaderboard", Action: realtime.ActionUpdate, EntityID: "e1"})
	deadline := time.After(time.Second)
	for fetches.Load() == before {
		select {
		case <-deadline:
			t.Fatal("binding did not refetch after bus event")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestListLeaderboardFallsBackWithoutBinding(t *testing.T) {
	svc := &MockLeaderboardService{
		ListEntriesFunc: func(ctx context.Context) ([]models.LeaderboardEntry, error) {
			return []models.LeaderboardEntry{{ID: "e1"}}, nil
		},
	}
	h := NewLeaderboardHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rec := httptest.NewRecorder()
	h.ListHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestListLeaderboardFallbackError(t *testing.T) {
	svc := &MockLeaderboardService{
		ListEntriesFunc: func(ctx context.Context) ([]models.LeaderboardEntry, error) {
			return nil, errors.New("db unavailable")
		},
	}
	h := NewLeaderboardHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rec := httptest.NewRecorder()
	h.ListHandler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
