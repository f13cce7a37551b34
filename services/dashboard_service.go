package services

import (
	"context"
	"time"

	"github.com/esports-arena/tournament-hub/livequery"
	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/repositories"
	"github.com/esports-arena/tournament-hub/storage"
	"golang.org/x/sync/errgroup"
)

// activityMonths — окно графика активности, включая текущий месяц.
const activityMonths = 3

const recentItemsLimit = 5

type DashboardService interface {
	// GetDashboard собирает счётчики, график активности и последние
	// записи. Источники опрашиваются параллельно.
	GetDashboard(ctx context.Context) (*models.DashboardView, error)
}

type dashboardService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	matchRepo        repositories.MatchRepository
	uploader         storage.FileUploader
	now              func() time.Time
}

func NewDashboardService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) DashboardService {
	return &dashboardService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		matchRepo:        matchRepo,
		uploader:         uploader,
		now:              time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*models.DashboardView, error) {
	now := s.now()
	// Начало самого раннего месяца окна, в локальной зоне сервера.
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(activityMonths - 1), 0)

	var (
		activeTournaments  int
		totalRegistrations int
		matchesCompleted   int
		tournaments        []models.Tournament
		registrations      []models.Registration
		matches            []models.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status := models.TournamentOngoing
		var err error
		activeTournaments, err = s.tournamentRepo.Count(gctx, &status)
		return err
	})
	g.Go(func() error {
		var err error
		totalRegistrations, err = s.registrationRepo.Count(gctx)
		return err
	})
	g.Go(func() error {
		status := models.MatchCompleted
		var err error
		matchesCompleted, err = s.matchRepo.Count(gctx, &status)
		return err
	})
	g.Go(func() error {
		var err error
		tournaments, err = s.tournamentRepo.ListCreatedSince(gctx, windowStart)
		return err
	})
	g.Go(func() error {
		var err error
		registrations, err = s.registrationRepo.ListCreatedSince(gctx, windowStart)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListCreatedSince(gctx, windowStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &models.DashboardView{
		Stats: models.DashboardStats{
			ActiveTournaments:  activeTournaments,
			TotalRegistrations: totalRegistrations,
			MatchesCompleted:   matchesCompleted,
		},
		Activity:            buildActivity(tournaments, registrations, matches, now),
		RecentTournaments:   firstN(tournaments, recentItemsLimit),
		RecentRegistrations: firstN(registrations, recentItemsLimit),
	}
	for i := range view.RecentTournaments {
		populateTournamentImageURL(&view.RecentTournaments[i], s.uploader)
	}
	for i := range view.RecentRegistrations {
		populateRegistrationLogoURL(&view.RecentRegistrations[i], s.uploader)
	}
	return view, nil
}

// buildActivity склеивает три помесячных среза в колонки графика.
// Месяцы без активности остаются в окне с нулями.
func buildActivity(
	tournaments []models.Tournament,
	registrations []models.Registration,
	matches []models.Match,
	now time.Time,
) []models.ActivityBucket {
	tb := livequery.BucketByMonth(tournaments, func(t models.Tournament) time.Time { return t.CreatedAt }, now, activityMonths)
	rb := livequery.BucketByMonth(registrations, func(r models.Registration) time.Time { return r.CreatedAt }, now, activityMonths)
	mb := livequery.BucketByMonth(matches, func(m models.Match) time.Time { return m.CreatedAt }, now, activityMonths)

	buckets := make([]models.ActivityBucket, len(tb))
	for i := range tb {
		buckets[i] = models.ActivityBucket{
			Label:         tb[i].Label,
			Tournaments:   tb[i].Count,
			Registrations: rb[i].Count,
			Matches:       mb[i].Count,
		}
	}
	return buckets
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
