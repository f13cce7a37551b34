package models

import "time"

// TournamentStatus соответствует ENUM в БД.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
)

// TournamentFormat задаёт размер команды.
type TournamentFormat string

const (
	FormatSolo  TournamentFormat = "solo"
	FormatDuo   TournamentFormat = "duo"
	FormatSquad TournamentFormat = "squad"
	FormatTeam  TournamentFormat = "team"
)

// Tournament представляет турнир. Status и RegistrationOpen — независимые
// флаги: турнир может быть "ongoing" при закрытой регистрации.
type Tournament struct {
	ID                   string           `json:"id" db:"id"`
	Title                string           `json:"title" db:"title"`
	Description          *string          `json:"description,omitempty" db:"description"`
	Game                 string           `json:"game" db:"game"`
	StartDate            time.Time        `json:"start_date" db:"start_date"`
	EndDate              time.Time        `json:"end_date" db:"end_date"`
	RegistrationDeadline time.Time        `json:"registration_deadline" db:"registration_deadline"`
	PrizePool            string           `json:"prize_pool" db:"prize_pool"`
	MaxParticipants      int              `json:"max_participants" db:"max_participants"`
	CurrentParticipants  int              `json:"current_participants" db:"current_participants"`
	Format               TournamentFormat `json:"format" db:"format"`
	Status               TournamentStatus `json:"status" db:"status"`
	RegistrationOpen     bool             `json:"registration_open" db:"registration_open"`
	ImageKey             *string          `json:"-" db:"image_key"`
	ImageURL             *string          `json:"image_url,omitempty" db:"-"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}
