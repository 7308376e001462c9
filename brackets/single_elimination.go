package brackets

import (
	"errors"
	"fmt"
)

// BracketMatch is one first-round slot of a playoff bracket.
type BracketMatch struct {
	UID          string `json:"uid"`
	Round        int    `json:"round"`
	OrderInRound int    `json:"order_in_round"`

	Seed1          int  `json:"seed1"`
	Seed2          int  `json:"seed2,omitempty"`
	Participant1ID *int `json:"team1_id,omitempty"`
	Participant2ID *int `json:"team2_id,omitempty"`

	IsBye bool `json:"is_bye"`
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() *SingleEliminationGenerator {
	return &SingleEliminationGenerator{}
}

// GenerateBracket seeds the first playoff round from teams already in
// standings order. The bracket is padded to a power of two; missing seeds
// become byes for the top seeds. Seeds meet 1 vs N, 2 vs N-1 and so on, laid
// out so that 1 and 2 can only meet in the final.
func (g *SingleEliminationGenerator) GenerateBracket(seededTeamIDs []int) ([]*BracketMatch, error) {
	n := len(seededTeamIDs)
	if n < 2 {
		return nil, errors.New("not enough teams to generate a single elimination bracket (minimum 2)")
	}

	size := 1
	for size < n {
		size <<= 1
	}

	order := seedOrder(size)
	matches := make([]*BracketMatch, 0, size/2)
	for i := 0; i < size; i += 2 {
		s1, s2 := order[i], order[i+1]
		m := &BracketMatch{
			UID:          fmt.Sprintf("R1M%d", i/2+1),
			Round:        1,
			OrderInRound: i/2 + 1,
			Seed1:        s1,
		}
		if s1 <= n {
			id := seededTeamIDs[s1-1]
			m.Participant1ID = &id
		}
		if s2 <= n {
			id := seededTeamIDs[s2-1]
			m.Participant2ID = &id
			m.Seed2 = s2
		} else {
			m.IsBye = true
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// seedOrder returns seed numbers in bracket slot order for a power-of-two size,
// e.g. size 8 gives 1 8 4 5 2 7 3 6.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		total := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, total-s)
		}
		order = next
	}
	return order
}
