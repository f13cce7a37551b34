package models

import "time"

// FeaturedGame — игра на витрине главной страницы. SortOrder — плотный
// индекс для ручной сортировки; перестановка соседей меняет пары значений.
type FeaturedGame struct {
	ID               string    `json:"id" db:"id"`
	Title            string    `json:"title" db:"title"`
	Category         string    `json:"category" db:"category"`
	ImageKey         *string   `json:"-" db:"image_key"`
	ImageURL         *string   `json:"image_url,omitempty" db:"-"`
	TournamentsCount int       `json:"tournaments_count" db:"tournaments_count"`
	PlayersCount     string    `json:"players_count" db:"players_count"`
	SortOrder        int       `json:"sort_order" db:"sort_order"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
