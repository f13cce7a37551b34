package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

// Match — матч между двумя одобренными командами одного турнира.
// Счёт осмысленно меняется только пока статус live; после completed
// запись историческая.
type Match struct {
	ID           string      `json:"id" db:"id"`
	TournamentID string      `json:"tournament_id" db:"tournament_id"`
	Team1ID      string      `json:"team1_id" db:"team1_id"`
	Team2ID      string      `json:"team2_id" db:"team2_id"`
	Score1       int         `json:"score1" db:"score1"`
	Score2       int         `json:"score2" db:"score2"`
	Status       MatchStatus `json:"status" db:"status"`
	StartTime    time.Time   `json:"start_time" db:"start_time"`
	StreamURL    *string     `json:"stream_url,omitempty" db:"stream_url"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`

	// Опциональные связанные сущности.
	Team1      *Registration `json:"team1,omitempty" db:"-"`
	Team2      *Registration `json:"team2,omitempty" db:"-"`
	Tournament *Tournament   `json:"tournament,omitempty" db:"-"`
}
