package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
)

// Моки в стиле "поле-функция": незаданное поле отдаёт поведение по
// умолчанию, тест переопределяет только то, что проверяет.

type MockTournamentRepository struct {
	CreateFunc                 func(ctx context.Context, t *models.Tournament) error
	GetByIDFunc                func(ctx context.Context, id string) (*models.Tournament, error)
	ListFunc                   func(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	ListCreatedSinceFunc       func(ctx context.Context, since time.Time) ([]models.Tournament, error)
	UpdateFunc                 func(ctx context.Context, t *models.Tournament) error
	UpdateStatusFunc           func(ctx context.Context, exec repositories.SQLExecutor, id string, status models.TournamentStatus) error
	UpdateRegistrationOpenFunc func(ctx context.Context, exec repositories.SQLExecutor, id string, open bool) error
	UpdateParticipantCountFunc func(ctx context.Context, exec repositories.SQLExecutor, id string, count int) error
	UpdateImageKeyFunc         func(ctx context.Context, id string, imageKey *string) error
	DeleteFunc                 func(ctx context.Context, id string) error
	CountFunc                  func(ctx context.Context, status *models.TournamentStatus) (int, error)
	GetForAutoStatusUpdateFunc func(ctx context.Context, now time.Time) ([]*models.Tournament, error)
}

func (m *MockTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	t.ID = "tournament-id"
	return nil
}

func (m *MockTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTournamentNotFound
}

func (m *MockTournamentRepository) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockTournamentRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Tournament, error) {
	if m.ListCreatedSinceFunc != nil {
		return m.ListCreatedSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	return nil
}

func (m *MockTournamentRepository) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, exec, id, status)
	}
	return nil
}

func (m *MockTournamentRepository) UpdateRegistrationOpen(ctx context.Context, exec repositories.SQLExecutor, id string, open bool) error {
	if m.UpdateRegistrationOpenFunc != nil {
		return m.UpdateRegistrationOpenFunc(ctx, exec, id, open)
	}
	return nil
}

func (m *MockTournamentRepository) UpdateParticipantCount(ctx context.Context, exec repositories.SQLExecutor, id string, count int) error {
	if m.UpdateParticipantCountFunc != nil {
		return m.UpdateParticipantCountFunc(ctx, exec, id, count)
	}
	return nil
}

func (m *MockTournamentRepository) UpdateImageKey(ctx context.Context, id string, imageKey *string) error {
	if m.UpdateImageKeyFunc != nil {
		return m.UpdateImageKeyFunc(ctx, id, imageKey)
	}
	return nil
}

func (m *MockTournamentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTournamentRepository) Count(ctx context.Context, status *models.TournamentStatus) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, status)
	}
	return 0, nil
}

func (m *MockTournamentRepository) GetForAutoStatusUpdate(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	if m.GetForAutoStatusUpdateFunc != nil {
		return m.GetForAutoStatusUpdateFunc(ctx, now)
	}
	return nil, nil
}

type MockRegistrationRepository struct {
	CreateFunc                     func(ctx context.Context, reg *models.Registration) error
	GetByIDFunc                    func(ctx context.Context, id string) (*models.Registration, error)
	ListFunc                       func(ctx context.Context, withTournament bool) ([]models.Registration, error)
	ListByTournamentFunc           func(ctx context.Context, tournamentID string, statusFilter *models.RegistrationStatus) ([]models.Registration, error)
	ListCreatedSinceFunc           func(ctx context.Context, since time.Time) ([]models.Registration, error)
	ListApprovedTeamsFunc          func(ctx context.Context) ([]models.Registration, error)
	UpdateStatusFunc               func(ctx context.Context, exec repositories.SQLExecutor, id string, status models.RegistrationStatus) error
	UpdateLogoKeyFunc              func(ctx context.Context, id string, logoKey *string) error
	CountByTournamentAndStatusFunc func(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, status models.RegistrationStatus) (int, error)
	CountFunc                      func(ctx context.Context) (int, error)
	DeleteFunc                     func(ctx context.Context, id string) error
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reg)
	}
	reg.ID = "registration-id"
	return nil
}

func (m *MockRegistrationRepository) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (m *MockRegistrationRepository) List(ctx context.Context, withTournament bool) ([]models.Registration, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, withTournament)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) ListByTournament(ctx context.Context, tournamentID string, statusFilter *models.RegistrationStatus) ([]models.Registration, error) {
	if m.ListByTournamentFunc != nil {
		return m.ListByTournamentFunc(ctx, tournamentID, statusFilter)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Registration, error) {
	if m.ListCreatedSinceFunc != nil {
		return m.ListCreatedSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) ListApprovedTeams(ctx context.Context) ([]models.Registration, error) {
	if m.ListApprovedTeamsFunc != nil {
		return m.ListApprovedTeamsFunc(ctx)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id string, status models.RegistrationStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, exec, id, status)
	}
	return nil
}

func (m *MockRegistrationRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	if m.UpdateLogoKeyFunc != nil {
		return m.UpdateLogoKeyFunc(ctx, id, logoKey)
	}
	return nil
}

func (m *MockRegistrationRepository) CountByTournamentAndStatus(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, status models.RegistrationStatus) (int, error) {
	if m.CountByTournamentAndStatusFunc != nil {
		return m.CountByTournamentAndStatusFunc(ctx, exec, tournamentID, status)
	}
	return 0, nil
}

func (m *MockRegistrationRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockRegistrationRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockMatchRepository struct {
	CreateFunc           func(ctx context.Context, match *models.Match) error
	GetByIDFunc          func(ctx context.Context, id string) (*models.Match, error)
	ListFunc             func(ctx context.Context, filter repositories.ListMatchesFilter) ([]models.Match, error)
	ListCreatedSinceFunc func(ctx context.Context, since time.Time) ([]models.Match, error)
	UpdateScoreFunc      func(ctx context.Context, id string, score1, score2 int) error
	UpdateStatusFunc     func(ctx context.Context, id string, status models.MatchStatus) error
	CountFunc            func(ctx context.Context, status *models.MatchStatus) (int, error)
	DeleteFunc           func(ctx context.Context, id string) error
}

func (m *MockMatchRepository) Create(ctx context.Context, match *models.Match) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, match)
	}
	match.ID = "match-id"
	return nil
}

func (m *MockMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrMatchNotFound
}

func (m *MockMatchRepository) List(ctx context.Context, filter repositories.ListMatchesFilter) ([]models.Match, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *MockMatchRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Match, error) {
	if m.ListCreatedSinceFunc != nil {
		return m.ListCreatedSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockMatchRepository) UpdateScore(ctx context.Context, id string, score1, score2 int) error {
	if m.UpdateScoreFunc != nil {
		return m.UpdateScoreFunc(ctx, id, score1, score2)
	}
	return nil
}

func (m *MockMatchRepository) UpdateStatus(ctx context.Context, id string, status models.MatchStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockMatchRepository) Count(ctx context.Context, status *models.MatchStatus) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, status)
	}
	return 0, nil
}

func (m *MockMatchRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockLeaderboardRepository struct {
	UpsertFunc    func(ctx context.Context, entry *models.LeaderboardEntry) error
	GetByTeamFunc func(ctx context.Context, teamID string) (*models.LeaderboardEntry, error)
	ListFunc      func(ctx context.Context) ([]models.LeaderboardEntry, error)
	DeleteFunc    func(ctx context.Context, id string) error
}

func (m *MockLeaderboardRepository) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, entry)
	}
	if entry.ID == "" {
		entry.ID = "entry-id"
	}
	return nil
}

func (m *MockLeaderboardRepository) GetByTeam(ctx context.Context, teamID string) (*models.LeaderboardEntry, error) {
	if m.GetByTeamFunc != nil {
		return m.GetByTeamFunc(ctx, teamID)
	}
	return nil, repositories.ErrLeaderboardEntryNotFound
}

func (m *MockLeaderboardRepository) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockLeaderboardRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockFeaturedGameRepository struct {
	CreateFunc        func(ctx context.Context, game *models.FeaturedGame) error
	GetByIDFunc       func(ctx context.Context, id string) (*models.FeaturedGame, error)
	ListFunc          func(ctx context.Context) ([]models.FeaturedGame, error)
	UpdateFunc        func(ctx context.Context, game *models.FeaturedGame) error
	SwapOrderFunc     func(ctx context.Context, firstID string, firstOrder int, secondID string, secondOrder int) error
	NextSortOrderFunc func(ctx context.Context) (int, error)
	DeleteFunc        func(ctx context.Context, id string) error
}

func (m *MockFeaturedGameRepository) Create(ctx context.Context, game *models.FeaturedGame) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, game)
	}
	game.ID = "game-id"
	return nil
}

func (m *MockFeaturedGameRepository) GetByID(ctx context.Context, id string) (*models.FeaturedGame, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrFeaturedGameNotFound
}

func (m *MockFeaturedGameRepository) List(ctx context.Context) ([]models.FeaturedGame, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockFeaturedGameRepository) Update(ctx context.Context, game *models.FeaturedGame) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, game)
	}
	return nil
}

func (m *MockFeaturedGameRepository) SwapOrder(ctx context.Context, firstID string, firstOrder int, secondID string, secondOrder int) error {
	if m.SwapOrderFunc != nil {
		return m.SwapOrderFunc(ctx, firstID, firstOrder, secondID, secondOrder)
	}
	return nil
}

func (m *MockFeaturedGameRepository) NextSortOrder(ctx context.Context) (int, error) {
	if m.NextSortOrderFunc != nil {
		return m.NextSortOrderFunc(ctx)
	}
	return 0, nil
}

func (m *MockFeaturedGameRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockUserRepository struct {
	CreateFunc          func(ctx context.Context, user *models.User) error
	GetByIDFunc         func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	ListFunc            func(ctx context.Context) ([]models.User, error)
	UpdateAdminFlagFunc func(ctx context.Context, id string, isAdmin bool) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = "user-id"
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, repositories.ErrUserNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserRepository) UpdateAdminFlag(ctx context.Context, id string, isAdmin bool) error {
	if m.UpdateAdminFlagFunc != nil {
		return m.UpdateAdminFlagFunc(ctx, id, isAdmin)
	}
	return nil
}

// MockNotifier записывает вызовы, чтобы тест мог проверить факт отправки.
type MockNotifier struct {
	mu            sync.Mutex
	Confirmations []string
	StatusUpdates []models.RegistrationStatus
}

func (m *MockNotifier) SendRegistrationConfirmation(ctx context.Context, reg *models.Registration, tournamentTitle string) {
	m.mu.Lock()
	m.Confirmations = append(m.Confirmations, tournamentTitle)
	m.mu.Unlock()
}

func (m *MockNotifier) SendStatusUpdate(ctx context.Context, reg *models.Registration, status models.RegistrationStatus) {
	m.mu.Lock()
	m.StatusUpdates = append(m.StatusUpdates, status)
	m.mu.Unlock()
}

type MockUploader struct {
	UploadFunc func(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error)
	DeleteFunc func(ctx context.Context, key string) error
	Deleted    []string
	mu         sync.Mutex
}

func (m *MockUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, contentType, reader)
	}
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (m *MockUploader) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, key)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}
