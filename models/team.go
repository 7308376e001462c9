package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamNumber   int       `json:"team_number" db:"team_number"`
	Name         string    `json:"name" db:"name"`
	ContactEmail *string   `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone *string   `json:"contact_phone,omitempty" db:"contact_phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	AccessCodeHash string `json:"-" db:"access_code_hash"`
}
