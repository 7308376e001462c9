package brackets

import (
	"errors"
	"fmt"
)

var (
	ErrNotEnoughTeams  = errors.New("at least two teams are required")
	ErrNotEnoughTables = errors.New("not enough tables for one round")
	ErrInvalidRounds   = errors.New("round count must be positive")
)

// Pairing is one scheduled game of a round.
type Pairing struct {
	Round       int `json:"round"`
	TableNumber int `json:"table_number"`
	Team1ID     int `json:"team1_id"`
	Team2ID     int `json:"team2_id"`
}

// RoundRobin is a generated schedule. Byes lists the team sitting out each
// round when the team count is odd.
type RoundRobin struct {
	Rounds   int         `json:"rounds"`
	Pairings []Pairing   `json:"pairings"`
	Byes     map[int]int `json:"byes,omitempty"`
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() *RoundRobinGenerator {
	return &RoundRobinGenerator{}
}

// Generate pairs teams with the circle method: the first team stays put and
// the rest rotate one seat per round. Every team plays at most once per round
// and no pairing repeats until all n-1 rounds of a cycle are used; further
// rounds continue the rotation. tables == 0 means unlimited tables.
func (g *RoundRobinGenerator) Generate(teamIDs []int, rounds, tables int) (*RoundRobin, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: %w (found %d)", ErrNotEnoughTeams, len(teamIDs))
	}
	if rounds < 1 {
		return nil, fmt.Errorf("RoundRobinGenerator: %w (got %d)", ErrInvalidRounds, rounds)
	}

	const bye = 0
	seats := append([]int(nil), teamIDs...)
	if len(seats)%2 == 1 {
		seats = append(seats, bye)
	}
	n := len(seats)
	gamesPerRound := len(teamIDs) / 2
	if tables > 0 && gamesPerRound > tables {
		return nil, fmt.Errorf("RoundRobinGenerator: %w (%d games, %d tables)", ErrNotEnoughTables, gamesPerRound, tables)
	}

	out := &RoundRobin{
		Rounds:   rounds,
		Pairings: make([]Pairing, 0, rounds*gamesPerRound),
		Byes:     make(map[int]int),
	}

	for r := 1; r <= rounds; r++ {
		table := 0
		for i := 0; i < n/2; i++ {
			a, b := seats[i], seats[n-1-i]
			if a == bye || b == bye {
				if a == bye {
					out.Byes[r] = b
				} else {
					out.Byes[r] = a
				}
				continue
			}
			// The fixed seat alternates sides so it is not always team 1.
			if i == 0 && r%2 == 0 {
				a, b = b, a
			}
			table++
			out.Pairings = append(out.Pairings, Pairing{
				Round:       r,
				TableNumber: table,
				Team1ID:     a,
				Team2ID:     b,
			})
		}
		rotate(seats)
	}
	if len(out.Byes) == 0 {
		out.Byes = nil
	}
	return out, nil
}

// rotate moves every seat but the first one place clockwise.
func rotate(seats []int) {
	if len(seats) < 3 {
		return
	}
	last := seats[len(seats)-1]
	copy(seats[2:], seats[1:len(seats)-1])
	seats[1] = last
}
