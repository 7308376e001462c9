package standings

import "github.com/Dosada05/card-league/models"

// GameScorer derives both teams' round results from a single game record.
// played is false when the game has no result yet; the engine then leaves
// both teams on the zero placeholder.
type GameScorer interface {
	Score(game models.Game) (team1, team2 RoundResult, played bool)
}

// RulesScorer is the default GameScorer.
type RulesScorer struct {
	Rules ScoringRules
}

func NewRulesScorer(rules ScoringRules) *RulesScorer {
	return &RulesScorer{Rules: rules.withDefaults()}
}

func (s *RulesScorer) Score(game models.Game) (RoundResult, RoundResult, bool) {
	if !game.Played() {
		return RoundResult{}, RoundResult{}, false
	}
	score1, score2 := *game.Score1, *game.Score2

	r1 := RoundResult{
		Points: score1,
		Hands:  deref(game.Hands1),
		Boston: s.boston(game.Bostons1, score1, score2),
	}
	r2 := RoundResult{
		Points: score2,
		Hands:  deref(game.Hands2),
		Boston: s.boston(game.Bostons2, score2, score1),
	}

	switch {
	case score1 > score2:
		r1.WL, r2.WL = s.Rules.WinMark, s.Rules.LossMark
		r1.Points += s.Rules.WinBonus
	case score2 > score1:
		r1.WL, r2.WL = s.Rules.LossMark, s.Rules.WinMark
		r2.Points += s.Rules.WinBonus
	default:
		r1.WL, r2.WL = s.Rules.TieMark, s.Rules.TieMark
	}
	return r1, r2, true
}

func (s *RulesScorer) boston(recorded *int, own, opponent int) int {
	if recorded != nil {
		return *recorded
	}
	if s.Rules.ShutoutIsBoston && own > 0 && opponent == 0 {
		return 1
	}
	return 0
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
