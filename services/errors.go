package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Валидация и бизнес-правила
	ErrValidationFailed               = errors.New("validation failed")
	ErrInvalidCredentials             = errors.New("invalid email or password")
	ErrPasswordTooShort               = errors.New("password is too short")
	ErrTournamentTitleRequired        = errors.New("tournament title is required")
	ErrTournamentDatesRequired        = errors.New("tournament dates are required")
	ErrTournamentInvalidDeadline      = errors.New("registration deadline cannot be after tournament start date")
	ErrTournamentInvalidDateRange     = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity      = errors.New("tournament max participants must be positive")
	ErrTournamentInvalidFormat        = errors.New("invalid tournament format")
	ErrTournamentInvalidStatus        = errors.New("invalid tournament status")
	ErrRegistrationClosed             = errors.New("tournament registration is closed")
	ErrTournamentFull                 = errors.New("tournament registration is full")
	ErrRegistrationInvalidStatus      = errors.New("registration status must be approved or rejected")
	ErrTeamMembersRequired            = errors.New("at least 4 team members are required")
	ErrMatchTeamsIdentical            = errors.New("a match requires two different teams")
	ErrMatchTeamsNotApproved          = errors.New("both teams must be approved registrations")
	ErrMatchTeamsDifferentTournaments = errors.New("both teams must belong to the match tournament")
	ErrMatchScoreNotEditable          = errors.New("match score can only be changed while the match is live")
	ErrMatchInvalidStatusTransition   = errors.New("invalid match status transition")
	ErrLeaderboardNegativePoints      = errors.New("leaderboard points cannot be negative")
	ErrLeaderboardWinsExceedMatches   = errors.New("wins cannot exceed matches played")
	ErrFeaturedGameAtEdge             = errors.New("featured game is already at the edge of the list")

	// Конфликты
	ErrTournamentTitleConflict = errors.New("tournament title already exists")
	ErrTournamentInUse         = errors.New("tournament still has registrations or matches")
	ErrUserEmailConflict       = errors.New("email address is already in use")

	// Аутентификация и доступ
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Специфичные "не найдено"
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrLeaderboardNotFound  = errors.New("leaderboard entry not found")
	ErrFeaturedGameNotFound = errors.New("featured game not found")
	ErrUserNotFound         = errors.New("user not found")
)
