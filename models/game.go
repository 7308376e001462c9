package models

import "time"

type GameStatus string

const (
	GameStatusScheduled GameStatus = "scheduled"
	GameStatusCompleted GameStatus = "completed"
)

// Game is one table of one round. Scores and sub-fields stay nil until the
// game is played.
type Game struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Round        int        `json:"round" db:"round"`
	TableNumber  int        `json:"table_number" db:"table_number"`
	Team1ID      int        `json:"team1_id" db:"team1_id"`
	Team2ID      int        `json:"team2_id" db:"team2_id"`
	Score1       *int       `json:"score1,omitempty" db:"score1"`
	Score2       *int       `json:"score2,omitempty" db:"score2"`
	Hands1       *int       `json:"hands1,omitempty" db:"hands1"`
	Hands2       *int       `json:"hands2,omitempty" db:"hands2"`
	Bostons1     *int       `json:"bostons1,omitempty" db:"bostons1"`
	Bostons2     *int       `json:"bostons2,omitempty" db:"bostons2"`
	Status       GameStatus `json:"status" db:"status"`

	Team1Confirmed bool      `json:"team1_confirmed" db:"team1_confirmed"`
	Team2Confirmed bool      `json:"team2_confirmed" db:"team2_confirmed"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Played reports whether both scores have been entered.
func (g Game) Played() bool {
	return g.Score1 != nil && g.Score2 != nil
}

// Involves reports whether the team plays in this game.
func (g Game) Involves(teamID int) bool {
	return g.Team1ID == teamID || g.Team2ID == teamID
}

// Opponent returns the other team of the game, or 0 if teamID does not play in it.
func (g Game) Opponent(teamID int) int {
	switch teamID {
	case g.Team1ID:
		return g.Team2ID
	case g.Team2ID:
		return g.Team1ID
	default:
		return 0
	}
}
