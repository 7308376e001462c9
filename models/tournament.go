package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

// Tournament is one league event: a set of teams playing a fixed number of rounds.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Location  *string          `json:"location,omitempty" db:"location"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Schedule *Schedule `json:"schedule,omitempty" db:"-"`
	Teams    []Team    `json:"teams,omitempty" db:"-"`
}

// Schedule holds the per-tournament round configuration.
type Schedule struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Rounds       int       `json:"rounds" db:"rounds"`
	Tables       int       `json:"tables" db:"tables"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
