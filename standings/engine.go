// Package standings computes per-round results, totals and the ranking of a
// tournament from its teams, games and operator overrides. The computation is
// pure: the same input always yields the same Result and inputs are never
// modified, so the display and export paths can share it freely.
package standings

import (
	"sort"

	"github.com/Dosada05/card-league/models"
)

// Input is everything one computation needs. Games must already be filtered
// to the tournament being evaluated.
type Input struct {
	Teams     []models.Team
	Games     []models.Game
	Overrides models.Overrides
	NumRounds int
}

type Engine struct {
	rules  ScoringRules
	scorer GameScorer
}

// New returns an engine using the default RulesScorer.
func New(rules ScoringRules) *Engine {
	rules = rules.withDefaults()
	return &Engine{rules: rules, scorer: NewRulesScorer(rules)}
}

// NewWithScorer returns an engine with a custom per-game scorer. rules still
// decides which W/L marks count as wins.
func NewWithScorer(rules ScoringRules, scorer GameScorer) *Engine {
	if scorer == nil {
		return New(rules)
	}
	return &Engine{rules: rules.withDefaults(), scorer: scorer}
}

// RoundsFor returns the schedule's round count, or DefaultRounds and
// defaulted=true when there is no usable schedule.
func RoundsFor(schedule *models.Schedule) (rounds int, defaulted bool) {
	if schedule == nil || schedule.Rounds < 1 {
		return DefaultRounds, true
	}
	return schedule.Rounds, false
}

// Compute derives the results matrix and the sorted team list.
func (e *Engine) Compute(in Input) (*Result, error) {
	if in.NumRounds < 1 {
		return nil, invalid("num_rounds", "must be positive, got %d", in.NumRounds)
	}

	matrix := make(Matrix, len(in.Teams))
	for _, team := range in.Teams {
		if _, dup := matrix[team.ID]; dup {
			return nil, invalid("teams", "duplicate team id %d", team.ID)
		}
		rounds := make(map[int]RoundResult, in.NumRounds)
		for r := 1; r <= in.NumRounds; r++ {
			rounds[r] = RoundResult{}
		}
		matrix[team.ID] = &TeamResults{Rounds: rounds}
	}

	if err := e.applyGames(matrix, in.Games, in.NumRounds); err != nil {
		return nil, err
	}
	applyOverrides(matrix, in.Overrides, in.NumRounds)

	for _, tr := range matrix {
		tr.Total = e.total(tr, in.NumRounds)
	}

	return &Result{
		NumRounds: in.NumRounds,
		Teams:     sortTeams(in.Teams, matrix),
		Matrix:    matrix,
	}, nil
}

func (e *Engine) applyGames(matrix Matrix, games []models.Game, numRounds int) error {
	type slot struct{ team, round int }
	seen := make(map[slot]int, len(games)*2)

	for _, game := range games {
		if game.Round < 1 {
			return invalid("games", "game %d has round %d", game.ID, game.Round)
		}
		if game.Team1ID == game.Team2ID {
			return invalid("games", "game %d pairs team %d with itself", game.ID, game.Team1ID)
		}
		for _, teamID := range []int{game.Team1ID, game.Team2ID} {
			key := slot{teamID, game.Round}
			if other, ok := seen[key]; ok {
				return invalid("games", "team %d plays games %d and %d in round %d", teamID, other, game.ID, game.Round)
			}
			seen[key] = game.ID
		}

		if game.Round > numRounds {
			continue
		}
		r1, r2, played := e.scorer.Score(game)
		if !played {
			continue
		}
		if tr, ok := matrix[game.Team1ID]; ok {
			tr.Rounds[game.Round] = r1
		}
		if tr, ok := matrix[game.Team2ID]; ok {
			tr.Rounds[game.Round] = r2
		}
	}
	return nil
}

func applyOverrides(matrix Matrix, overrides models.Overrides, numRounds int) {
	if len(overrides) == 0 {
		return
	}
	for teamID, tr := range matrix {
		for r := 1; r <= numRounds; r++ {
			cell := tr.Rounds[r]
			changed := false
			for _, field := range models.OverrideFields {
				value, ok := overrides[models.OverrideKey(teamID, r, field)]
				if !ok {
					continue
				}
				changed = true
				switch field {
				case models.FieldWL:
					cell.WL = value.String()
				case models.FieldPoints:
					cell.Points = value.Int()
				case models.FieldHands:
					cell.Hands = value.Int()
				case models.FieldBoston:
					cell.Boston = value.Int()
				}
			}
			if changed {
				tr.Rounds[r] = cell
			}
		}
	}
}

func (e *Engine) total(tr *TeamResults, numRounds int) Totals {
	var t Totals
	for r := 1; r <= numRounds; r++ {
		cell := tr.Rounds[r]
		if e.rules.IsWin(cell.WL) {
			t.Wins++
		}
		t.Points += cell.Points
		t.Hands += cell.Hands
		t.Boston += cell.Boston
	}
	return t
}

// sortTeams orders by wins, points, hands (all descending); equal teams keep
// their input order.
func sortTeams(teams []models.Team, matrix Matrix) []models.Team {
	sorted := make([]models.Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := matrix[sorted[i].ID].Total, matrix[sorted[j].ID].Total
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.Hands > b.Hands
	})
	return sorted
}
