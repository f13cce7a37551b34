package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/services"
	"github.com/go-chi/chi/v5"
)

type MockTournamentService struct {
	CreateTournamentFunc            func(ctx context.Context, input services.CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByIDFunc           func(ctx context.Context, id string) (*models.Tournament, error)
	ListTournamentsFunc             func(ctx context.Context, input services.ListTournamentsInput) ([]models.Tournament, error)
	UpdateTournamentFunc            func(ctx context.Context, id string, input services.UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournamentFunc            func(ctx context.Context, id string) error
	UploadTournamentImageFunc       func(ctx context.Context, id string, contentType string, body io.Reader) (*models.Tournament, error)
	RecalculateParticipantCountFunc func(ctx context.Context, tournamentID string) error
	AutoUpdateStatusesByDatesFunc   func(ctx context.Context) error
}

func (m *MockTournamentService) CreateTournament(ctx context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	if m.CreateTournamentFunc != nil {
		return m.CreateTournamentFunc(ctx, input)
	}
	return &models.Tournament{ID: "t1", Title: input.Title}, nil
}

func (m *MockTournamentService) GetTournamentByID(ctx context.Context, id string) (*models.Tournament, error) {
	if m.GetTournamentByIDFunc != nil {
		return m.GetTournamentByIDFunc(ctx, id)
	}
	return nil, services.ErrTournamentNotFound
}

func (m *MockTournamentService) ListTournaments(ctx context.Context, input services.ListTournamentsInput) ([]models.Tournament, error) {
	if m.ListTournamentsFunc != nil {
		return m.ListTournamentsFunc(ctx, input)
	}
	return nil, nil
}

func (m *MockTournamentService) UpdateTournament(ctx context.Context, id string, input services.UpdateTournamentInput) (*models.Tournament, error) {
	if m.UpdateTournamentFunc != nil {
		return m.UpdateTournamentFunc(ctx, id, input)
	}
	return &models.Tournament{ID: id}, nil
}

func (m *MockTournamentService) DeleteTournament(ctx context.Context, id string) error {
	if m.DeleteTournamentFunc != nil {
		return m.DeleteTournamentFunc(ctx, id)
	}
	return nil
}

func (m *MockTournamentService) UploadTournamentImage(ctx context.Context, id string, contentType string, body io.Reader) (*models.Tournament, error) {
	if m.UploadTournamentImageFunc != nil {
		return m.UploadTournamentImageFunc(ctx, id, contentType, body)
	}
	return &models.Tournament{ID: id}, nil
}

func (m *MockTournamentService) RecalculateParticipantCount(ctx context.Context, tournamentID string) error {
	if m.RecalculateParticipantCountFunc != nil {
		return m.RecalculateParticipantCountFunc(ctx, tournamentID)
	}
	return nil
}

func (m *MockTournamentService) AutoUpdateStatusesByDates(ctx context.Context) error {
	if m.AutoUpdateStatusesByDatesFunc != nil {
		return m.AutoUpdateStatusesByDatesFunc(ctx)
	}
	return nil
}

func tournamentRouter(svc services.TournamentService) *chi.Mux {
	h := NewTournamentHandler(svc)
	router := chi.NewRouter()
	router.Get("/tournaments", h.ListHandler)
	router.Get("/tournaments/{tournamentID}", h.GetByIDHandler)
	router.Post("/tournaments", h.CreateHandler)
	router.Delete("/tournaments/{tournamentID}", h.DeleteHandler)
	return router
}

func TestCreateTournamentHandler(t *testing.T) {
	router := tournamentRouter(&MockTournamentService{})

	body := `{"title": "Spring Cup", "game": "PUBG Mobile"}`
	req := httptest.NewRequest(http.MethodPost, "/tournaments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp struct {
		Tournament models.Tournament `json:"tournament"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Tournament.Title != "Spring Cup" {
		t.Errorf("title = %q, want Spring Cup", resp.Tournament.Title)
	}
}

func TestCreateTournamentHandlerBadJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Malformed", `{"title":`},
		{"Empty", ``},
		{"UnknownField", `{"nonexistent_field": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := tournamentRouter(&MockTournamentService{})

			req := httptest.NewRequest(http.MethodPost, "/tournaments", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGetTournamentHandlerNotFound(t *testing.T) {
	router := tournamentRouter(&MockTournamentService{})

	req := httptest.NewRequest(http.MethodGet, "/tournaments/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if _, ok := resp["error"]; !ok {
		t.Errorf("response has no error field: %v", resp)
	}
}

func TestListTournamentsHandlerQueryParams(t *testing.T) {
	var got services.ListTournamentsInput
	svc := &MockTournamentService{
		ListTournamentsFunc: func(ctx context.Context, input services.ListTournamentsInput) ([]models.Tournament, error) {
			got = input
			return []models.Tournament{}, nil
		},
	}
	router := tournamentRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/tournaments?status=ongoing&past=true&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.Status == nil || *got.Status != models.TournamentOngoing {
		t.Errorf("status filter = %v", got.Status)
	}
	if !got.PastOnly || got.Limit != 5 || got.Offset != 10 {
		t.Errorf("input = %+v", got)
	}
}

func TestListTournamentsHandlerDefaultLimit(t *testing.T) {
	var got services.ListTournamentsInput
	svc := &MockTournamentService{
		ListTournamentsFunc: func(ctx context.Context, input services.ListTournamentsInput) ([]models.Tournament, error) {
			got = input
			return nil, nil
		},
	}
	router := tournamentRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/tournaments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got.Limit != 20 {
		t.Errorf("default limit = %d, want 20", got.Limit)
	}
}

func TestListTournamentsHandlerInvalidLimit(t *testing.T) {
	router := tournamentRouter(&MockTournamentService{})

	req := httptest.NewRequest(http.MethodGet, "/tournaments?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDeleteTournamentHandler(t *testing.T) {
	svc := &MockTournamentService{
		DeleteTournamentFunc: func(ctx context.Context, id string) error {
			if id != "t1" {
				t.Errorf("id = %q, want t1", id)
			}
			return nil
		},
	}
	router := tournamentRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/tournaments/t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestDeleteTournamentHandlerInUse(t *testing.T) {
	svc := &MockTournamentService{
		DeleteTournamentFunc: func(ctx context.Context, id string) error {
			return services.ErrTournamentInUse
		},
	}
	router := tournamentRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/tournaments/t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}
