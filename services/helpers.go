package services

import (
	"time"

	"github.com/esports-arena/tournament-hub/models"
	"github.com/esports-arena/tournament-hub/storage"
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func validateTournamentDates(start, end, deadline time.Time) error {
	if start.IsZero() || end.IsZero() || deadline.IsZero() {
		return ErrTournamentDatesRequired
	}
	if !start.Before(end) {
		return ErrTournamentInvalidDateRange
	}
	if deadline.After(start) {
		return ErrTournamentInvalidDeadline
	}
	return nil
}

func isValidTournamentFormat(f models.TournamentFormat) bool {
	switch f {
	case models.FormatSolo, models.FormatDuo, models.FormatSquad, models.FormatTeam:
		return true
	}
	return false
}

func isValidTournamentStatus(s models.TournamentStatus) bool {
	switch s {
	case models.TournamentUpcoming, models.TournamentOngoing, models.TournamentCompleted:
		return true
	}
	return false
}

// isValidMatchStatusTransition: scheduled → live → completed, без
// возвратов. Совпадающий статус допустим (идемпотентный PATCH).
func isValidMatchStatusTransition(current, next models.MatchStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.MatchStatus][]models.MatchStatus{
		models.MatchScheduled: {models.MatchLive},
		models.MatchLive:      {models.MatchCompleted},
		models.MatchCompleted: {},
	}
	for _, s := range allowed[current] {
		if next == s {
			return true
		}
	}
	return false
}

func populateTournamentImageURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil && t.ImageKey != nil && *t.ImageKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*t.ImageKey)
		if url != "" {
			t.ImageURL = &url
		}
	}
}

func populateRegistrationLogoURL(reg *models.Registration, uploader storage.FileUploader) {
	if reg != nil && reg.LogoKey != nil && *reg.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*reg.LogoKey)
		if url != "" {
			reg.LogoURL = &url
		}
	}
}

func populateFeaturedGameImageURL(game *models.FeaturedGame, uploader storage.FileUploader) {
	if game != nil && game.ImageKey != nil && *game.ImageKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*game.ImageKey)
		if url != "" {
			game.ImageURL = &url
		}
	}
}
