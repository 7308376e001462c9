package standings

import (
	"encoding/json"
	"strconv"

	"github.com/Dosada05/card-league/models"
)

// RoundResult is one team's outcome in one round.
type RoundResult struct {
	WL     string `json:"wl"`
	Points int    `json:"points"`
	Hands  int    `json:"hands"`
	Boston int    `json:"boston"`
}

// Totals aggregates a team's post-override round results.
type Totals struct {
	Wins   int `json:"wins"`
	Points int `json:"points"`
	Hands  int `json:"hands"`
	Boston int `json:"boston"`
}

// TeamResults holds every round 1..N for a team plus its totals.
type TeamResults struct {
	Rounds map[int]RoundResult
	Total  Totals
}

// MarshalJSON flattens rounds next to the reserved "totalPoints" entry so the
// document reads team -> {"1": {...}, "2": {...}, "totalPoints": {...}}.
func (tr TeamResults) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(tr.Rounds)+1)
	for round, res := range tr.Rounds {
		out[strconv.Itoa(round)] = res
	}
	out["totalPoints"] = tr.Total
	return json.Marshal(out)
}

// Matrix maps team id to that team's results.
type Matrix map[int]*TeamResults

// Cell returns the result of team in round, or the zero placeholder when the
// team or round is outside the matrix.
func (m Matrix) Cell(teamID, round int) RoundResult {
	tr, ok := m[teamID]
	if !ok {
		return RoundResult{}
	}
	return tr.Rounds[round]
}

// Totals returns the aggregate for a team.
func (m Matrix) Totals(teamID int) Totals {
	tr, ok := m[teamID]
	if !ok {
		return Totals{}
	}
	return tr.Total
}

// Result is the output of one engine invocation.
type Result struct {
	NumRounds int           `json:"num_rounds"`
	Teams     []models.Team `json:"teams"`
	Matrix    Matrix        `json:"results"`
}

// Empty reports whether there is anything to display or export.
func (r *Result) Empty() bool {
	return r == nil || len(r.Teams) == 0
}
