package standings

import (
	"fmt"
	"strings"
)

// DefaultRounds is the round count used when a tournament has no schedule.
const DefaultRounds = 5

// ScoringRules configures the default per-game scorer.
type ScoringRules struct {
	WinMark         string `yaml:"win_mark" json:"win_mark"`
	LossMark        string `yaml:"loss_mark" json:"loss_mark"`
	TieMark         string `yaml:"tie_mark" json:"tie_mark"`
	WinBonus        int    `yaml:"win_bonus" json:"win_bonus"`
	ShutoutIsBoston bool   `yaml:"shutout_is_boston" json:"shutout_is_boston"`
}

// DefaultRules returns W/L marks, no bonus, ties recorded without a winner.
func DefaultRules() ScoringRules {
	return ScoringRules{
		WinMark:  "W",
		LossMark: "L",
	}
}

func (r ScoringRules) withDefaults() ScoringRules {
	def := DefaultRules()
	r.WinMark = strings.TrimSpace(r.WinMark)
	r.LossMark = strings.TrimSpace(r.LossMark)
	r.TieMark = strings.TrimSpace(r.TieMark)
	if r.WinMark == "" {
		r.WinMark = def.WinMark
	}
	if r.LossMark == "" {
		r.LossMark = def.LossMark
	}
	return r
}

// Normalize fills in default marks and rejects rule sets in which a loss or
// a tie would be read back as a win. Marks compare the same way IsWin does.
func (r ScoringRules) Normalize() (ScoringRules, error) {
	r = r.withDefaults()
	if strings.EqualFold(r.WinMark, r.LossMark) {
		return ScoringRules{}, fmt.Errorf("win_mark and loss_mark must differ (%q, %q)", r.WinMark, r.LossMark)
	}
	if r.TieMark != "" && (strings.EqualFold(r.TieMark, r.WinMark) || strings.EqualFold(r.TieMark, r.LossMark)) {
		return ScoringRules{}, fmt.Errorf("tie_mark %q collides with win/loss mark", r.TieMark)
	}
	if r.WinBonus < 0 {
		return ScoringRules{}, fmt.Errorf("win_bonus must not be negative")
	}
	return r, nil
}

// IsWin reports whether a W/L cell counts as a win. Operator overrides are
// free text, so case and surrounding space are ignored.
func (r ScoringRules) IsWin(wl string) bool {
	return strings.EqualFold(strings.TrimSpace(wl), r.WinMark)
}
