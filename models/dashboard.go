package models

type DashboardStats struct {
	ActiveTournaments  int `json:"active_tournaments"`
	TotalRegistrations int `json:"total_registrations"`
	MatchesCompleted   int `json:"matches_completed"`
}

// ActivityBucket — одна колонка графика активности за календарный месяц.
type ActivityBucket struct {
	Label         string `json:"name"`
	Tournaments   int    `json:"tournaments"`
	Registrations int    `json:"registrations"`
	Matches       int    `json:"matches"`
}

type DashboardView struct {
	Stats               DashboardStats   `json:"stats"`
	Activity            []ActivityBucket `json:"activity"`
	RecentTournaments   []Tournament     `json:"recent_tournaments"`
	RecentRegistrations []Registration   `json:"recent_registrations"`
}
