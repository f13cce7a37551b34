package models

import "time"

// LeaderboardEntry — накопительный счёт команды. TotalPoints хранится
// в БД и пересчитывается при каждой записи, чтобы хранимое и производное
// значения не расходились. Одна запись на команду (team_id уникален).
type LeaderboardEntry struct {
	ID             string    `json:"id" db:"id"`
	TeamID         string    `json:"team_id" db:"team_id"`
	SurvivalPoints int       `json:"survival_points" db:"survival_points"`
	KillPoints     int       `json:"kill_points" db:"kill_points"`
	TotalPoints    int       `json:"total_points" db:"total_points"`
	MatchesPlayed  int       `json:"matches_played" db:"matches_played"`
	Wins           int       `json:"wins" db:"wins"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	// Данные команды из registrations, заполняются при выборке.
	TeamName string  `json:"team_name" db:"-"`
	LogoKey  *string `json:"-" db:"-"`
	LogoURL  *string `json:"logo_url,omitempty" db:"-"`

	// WinRate не хранится: wins/matches_played*100, считается на чтении.
	WinRate float64 `json:"win_rate" db:"-"`
}
