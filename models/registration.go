package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// TeamMember — одна запись в составе команды.
type TeamMember struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// TeamMembers хранится в БД как JSONB.
type TeamMembers []TeamMember

type ContactInfo struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	InGameName  string `json:"in_game_name"`
	DateOfBirth string `json:"date_of_birth"`
}

type GameDetails struct {
	Platform    string `json:"platform"`
	UID         string `json:"uid"`
	DeviceModel string `json:"device_model"`
	Region      string `json:"region"`
}

type TournamentPreferences struct {
	Format              string `json:"format"`
	Mode                string `json:"mode"`
	Experience          bool   `json:"experience"`
	PreviousTournaments string `json:"previous_tournaments,omitempty"`
}

// Registration — заявка команды на участие в турнире.
type Registration struct {
	ID          string                `json:"id" db:"id"`
	TournamentID string               `json:"tournament_id" db:"tournament_id"`
	TeamName    string                `json:"team_name" db:"team_name"`
	Status      RegistrationStatus    `json:"status" db:"status"`
	TeamMembers TeamMembers           `json:"team_members" db:"team_members"`
	ContactInfo ContactInfo           `json:"contact_info" db:"contact_info"`
	GameDetails GameDetails           `json:"game_details" db:"game_details"`
	Preferences TournamentPreferences `json:"tournament_preferences" db:"tournament_preferences"`
	LogoKey     *string               `json:"-" db:"logo_key"`
	LogoURL     *string               `json:"logo_url,omitempty" db:"-"`
	CreatedAt   time.Time             `json:"created_at" db:"created_at"`

	// Заполняется сервисом для админских списков.
	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
}

func (m TeamMembers) Value() (driver.Value, error) { return jsonValue(m) }

func (m *TeamMembers) Scan(src interface{}) error { return jsonScan(src, m) }

func (c ContactInfo) Value() (driver.Value, error) { return jsonValue(c) }

func (c *ContactInfo) Scan(src interface{}) error { return jsonScan(src, c) }

func (g GameDetails) Value() (driver.Value, error) { return jsonValue(g) }

func (g *GameDetails) Scan(src interface{}) error { return jsonScan(src, g) }

func (p TournamentPreferences) Value() (driver.Value, error) { return jsonValue(p) }

func (p *TournamentPreferences) Scan(src interface{}) error { return jsonScan(src, p) }

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jsonb column: %w", err)
	}
	return b, nil
}

func jsonScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return errors.New("unsupported source type for jsonb column")
	}
}
