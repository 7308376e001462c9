package brackets

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func TestRoundRobin_EvenTeams(t *testing.T) {
	teams := []int{10, 20, 30, 40, 50, 60}
	rr, err := NewRoundRobinGenerator().Generate(teams, 5, 3)
	require.NoError(t, err)

	require.Len(t, rr.Pairings, 15)
	assert.Nil(t, rr.Byes)

	seenPairs := make(map[[2]int]bool)
	for r := 1; r <= 5; r++ {
		inRound := make(map[int]bool)
		for _, p := range rr.Pairings {
			if p.Round != r {
				continue
			}
			assert.NotEqual(t, p.Team1ID, p.Team2ID)
			assert.False(t, inRound[p.Team1ID], "team %d twice in round %d", p.Team1ID, r)
			assert.False(t, inRound[p.Team2ID], "team %d twice in round %d", p.Team2ID, r)
			inRound[p.Team1ID], inRound[p.Team2ID] = true, true
			assert.GreaterOrEqual(t, p.TableNumber, 1)
			assert.LessOrEqual(t, p.TableNumber, 3)

			key := pairKey(p.Team1ID, p.Team2ID)
			assert.False(t, seenPairs[key], "pair %v repeated", key)
			seenPairs[key] = true
		}
		assert.Len(t, inRound, 6)
	}
}

func TestRoundRobin_OddTeamsGetByes(t *testing.T) {
	teams := []int{1, 2, 3, 4, 5}
	rr, err := NewRoundRobinGenerator().Generate(teams, 5, 0)
	require.NoError(t, err)

	require.Len(t, rr.Pairings, 10)
	require.Len(t, rr.Byes, 5)

	byeTeams := make(map[int]bool)
	for r, teamID := range rr.Byes {
		byeTeams[teamID] = true
		for _, p := range rr.Pairings {
			if p.Round == r {
				assert.NotEqual(t, teamID, p.Team1ID)
				assert.NotEqual(t, teamID, p.Team2ID)
			}
		}
	}
	assert.Len(t, byeTeams, 5, "every team sits out exactly once per cycle")
}

func TestRoundRobin_MoreRoundsThanCycle(t *testing.T) {
	rr, err := NewRoundRobinGenerator().Generate([]int{1, 2, 3, 4}, 6, 0)
	require.NoError(t, err)
	assert.Len(t, rr.Pairings, 12)
}

func TestRoundRobin_Errors(t *testing.T) {
	gen := NewRoundRobinGenerator()

	_, err := gen.Generate([]int{1}, 3, 0)
	assert.True(t, errors.Is(err, ErrNotEnoughTeams))

	_, err = gen.Generate([]int{1, 2}, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidRounds))

	_, err = gen.Generate([]int{1, 2, 3, 4, 5, 6}, 3, 2)
	assert.True(t, errors.Is(err, ErrNotEnoughTables))
}

func TestSeedOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2}, seedOrder(2))
	assert.Equal(t, []int{1, 4, 2, 3}, seedOrder(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, seedOrder(8))
}

func TestSingleElimination_Byes(t *testing.T) {
	seeded := []int{101, 102, 103, 104, 105, 106}
	matches, err := NewSingleEliminationGenerator().GenerateBracket(seeded)
	require.NoError(t, err)
	require.Len(t, matches, 4)

	first := matches[0]
	assert.Equal(t, 1, first.Seed1)
	require.NotNil(t, first.Participant1ID)
	assert.Equal(t, 101, *first.Participant1ID)
	assert.True(t, first.IsBye)
	assert.Nil(t, first.Participant2ID)

	second := matches[1]
	assert.Equal(t, 4, second.Seed1)
	assert.Equal(t, 5, second.Seed2)
	assert.False(t, second.IsBye)

	byes := 0
	for _, m := range matches {
		if m.IsBye {
			byes++
		}
	}
	assert.Equal(t, 2, byes)
}

func TestSingleElimination_TooFew(t *testing.T) {
	_, err := NewSingleEliminationGenerator().GenerateBracket([]int{1})
	assert.Error(t, err)
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := &Client{Hub: hub, Send: make(chan []byte, 1), Room: RoomForTournament(3)}
	hub.Register <- client
	require.Eventually(t, func() bool { return hub.ClientCount(client.Room) == 1 }, time.Second, 5*time.Millisecond)

	hub.NotifyTournament(3, MessageStandingsUpdated, map[string]int{"tournament_id": 3})

	select {
	case raw := <-client.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageStandingsUpdated, msg.Type)
		assert.Equal(t, "tournament_3", msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	hub.NotifyTournament(4, MessageStandingsUpdated, nil)
	assert.Len(t, client.Send, 0)
}
