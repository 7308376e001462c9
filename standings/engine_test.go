package standings

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/card-league/models"
)

func intPtr(v int) *int { return &v }

func team(id int, name string) models.Team {
	return models.Team{ID: id, TeamNumber: id, Name: name}
}

func played(id, round, t1, t2, s1, s2 int) models.Game {
	return models.Game{ID: id, Round: round, Team1ID: t1, Team2ID: t2, Score1: intPtr(s1), Score2: intPtr(s2)}
}

func teamIDs(teams []models.Team) []int {
	ids := make([]int, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}

func fourTeamInput() Input {
	return Input{
		Teams: []models.Team{team(1, "Aces"), team(2, "Kings"), team(3, "Queens"), team(4, "Jacks")},
		Games: []models.Game{
			played(10, 1, 1, 2, 10, 5),
			played(11, 1, 3, 4, 8, 7),
			{ID: 12, Round: 2, Team1ID: 1, Team2ID: 3},
			{ID: 13, Round: 2, Team1ID: 2, Team2ID: 4},
		},
		NumRounds: 2,
	}
}

func TestCompute_FourTeamScenario(t *testing.T) {
	res, err := New(DefaultRules()).Compute(fourTeamInput())
	require.NoError(t, err)

	// T2 and T4 are tied on wins; T4 scored more points, so it ranks ahead.
	assert.Equal(t, []int{1, 3, 4, 2}, teamIDs(res.Teams))

	assert.Equal(t, RoundResult{WL: "W", Points: 10}, res.Matrix.Cell(1, 1))
	assert.Equal(t, RoundResult{WL: "L", Points: 5}, res.Matrix.Cell(2, 1))
	assert.Equal(t, RoundResult{}, res.Matrix.Cell(2, 2))
	assert.Equal(t, Totals{Wins: 1, Points: 8}, res.Matrix.Totals(3))
}

func TestCompute_Completeness(t *testing.T) {
	in := fourTeamInput()
	in.NumRounds = 5
	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)

	require.Len(t, res.Matrix, len(in.Teams))
	for _, tm := range in.Teams {
		tr, ok := res.Matrix[tm.ID]
		require.True(t, ok, "team %d missing", tm.ID)
		for r := 1; r <= in.NumRounds; r++ {
			_, ok := tr.Rounds[r]
			assert.True(t, ok, "team %d round %d missing", tm.ID, r)
		}
	}
	assert.Equal(t, RoundResult{WL: "", Points: 0, Hands: 0, Boston: 0}, res.Matrix.Cell(4, 5))
}

func TestCompute_Deterministic(t *testing.T) {
	in := fourTeamInput()
	in.Overrides = models.Overrides{"2_2_points": "4", "3_1_wl": "L"}
	engine := New(DefaultRules())

	first, err := engine.Compute(in)
	require.NoError(t, err)
	second, err := engine.Compute(in)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ between runs (-first +second):\n%s", diff)
	}
}

func TestCompute_ConcurrentCallers(t *testing.T) {
	in := fourTeamInput()
	in.Overrides = models.Overrides{"2_2_points": "4", "3_1_wl": "L"}
	engine := New(DefaultRules())

	want, err := engine.Compute(in)
	require.NoError(t, err)

	const callers = 16
	results := make([]*Result, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = engine.Compute(in)
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		if diff := cmp.Diff(want, results[i]); diff != "" {
			t.Fatalf("caller %d got a different result (-want +got):\n%s", i, diff)
		}
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	in := fourTeamInput()
	teamsBefore := append([]models.Team(nil), in.Teams...)

	_, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)
	assert.Equal(t, teamsBefore, in.Teams)
}

func TestCompute_OverridePrecedence(t *testing.T) {
	in := fourTeamInput()
	in.Overrides = models.Overrides{models.OverrideKey(1, 2, models.FieldPoints): "99"}

	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)

	assert.Equal(t, 99, res.Matrix.Cell(1, 2).Points)
	assert.Equal(t, 10+99, res.Matrix.Totals(1).Points)
}

func TestCompute_OverrideWinCountsTowardTotals(t *testing.T) {
	base, err := New(DefaultRules()).Compute(fourTeamInput())
	require.NoError(t, err)

	in := fourTeamInput()
	in.Overrides = models.Overrides{"4_1_wl": "W"}
	overridden, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)

	assert.Equal(t, base.Matrix.Totals(4).Wins+1, overridden.Matrix.Totals(4).Wins)
	assert.Equal(t, "W", overridden.Matrix.Cell(4, 1).WL)
	// T4 now has 1 win and 7 points: ahead of T2, behind T3.
	assert.Equal(t, []int{1, 3, 4, 2}, teamIDs(overridden.Teams))
}

func TestCompute_OverrideValuesVerbatim(t *testing.T) {
	in := fourTeamInput()
	in.Overrides = models.Overrides{
		"2_1_wl":     "forfeit",
		"2_1_hands":  "3.9",
		"2_1_boston": "n/a",
		"9_1_points": "50", // unknown team
		"1_7_points": "50", // round outside the grid
	}

	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)

	assert.Equal(t, RoundResult{WL: "forfeit", Points: 5, Hands: 3, Boston: 0}, res.Matrix.Cell(2, 1))
	assert.Equal(t, 10, res.Matrix.Totals(1).Points)
	_, ok := res.Matrix[9]
	assert.False(t, ok)
}

func TestCompute_SortStability(t *testing.T) {
	in := Input{
		Teams:     []models.Team{team(5, "E"), team(2, "B"), team(9, "I"), team(1, "A")},
		NumRounds: 3,
	}
	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 9, 1}, teamIDs(res.Teams))
}

func TestCompute_SortKeys(t *testing.T) {
	in := Input{
		Teams: []models.Team{team(1, "A"), team(2, "B"), team(3, "C"), team(4, "D")},
		Games: []models.Game{
			{ID: 1, Round: 1, Team1ID: 1, Team2ID: 2, Score1: intPtr(7), Score2: intPtr(3), Hands1: intPtr(2), Hands2: intPtr(5)},
			{ID: 2, Round: 1, Team1ID: 3, Team2ID: 4, Score1: intPtr(7), Score2: intPtr(3), Hands1: intPtr(4), Hands2: intPtr(1)},
		},
		NumRounds: 1,
	}
	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)
	// 1 and 3 tie on wins and points; 3 has more hands.
	// 2 and 4 tie on wins and points; 2 has more hands.
	assert.Equal(t, []int{3, 1, 2, 4}, teamIDs(res.Teams))
}

func TestCompute_TieRecordsNoWinner(t *testing.T) {
	in := Input{
		Teams:     []models.Team{team(1, "A"), team(2, "B")},
		Games:     []models.Game{played(1, 1, 1, 2, 6, 6)},
		NumRounds: 1,
	}
	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)

	assert.Equal(t, RoundResult{WL: "", Points: 6}, res.Matrix.Cell(1, 1))
	assert.Equal(t, RoundResult{WL: "", Points: 6}, res.Matrix.Cell(2, 1))
	assert.Zero(t, res.Matrix.Totals(1).Wins)
	assert.Zero(t, res.Matrix.Totals(2).Wins)
}

func TestCompute_HalfEnteredScoreIsUnplayed(t *testing.T) {
	in := Input{
		Teams:     []models.Team{team(1, "A"), team(2, "B")},
		Games:     []models.Game{{ID: 1, Round: 1, Team1ID: 1, Team2ID: 2, Score1: intPtr(4)}},
		NumRounds: 1,
	}
	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)
	assert.Equal(t, RoundResult{}, res.Matrix.Cell(1, 1))
}

func TestCompute_GamesOutsideGridIgnored(t *testing.T) {
	in := Input{
		Teams: []models.Team{team(1, "A"), team(2, "B")},
		Games: []models.Game{
			played(1, 3, 1, 2, 9, 1),
			played(2, 1, 1, 77, 9, 1),
		},
		NumRounds: 2,
	}
	res, err := New(DefaultRules()).Compute(in)
	require.NoError(t, err)
	assert.Equal(t, Totals{Wins: 1, Points: 9}, res.Matrix.Totals(1))
	assert.Equal(t, Totals{}, res.Matrix.Totals(2))
}

func TestCompute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{
			name:  "non-positive round count",
			in:    Input{Teams: []models.Team{team(1, "A")}, NumRounds: 0},
			field: "num_rounds",
		},
		{
			name:  "duplicate team",
			in:    Input{Teams: []models.Team{team(1, "A"), team(1, "A again")}, NumRounds: 1},
			field: "teams",
		},
		{
			name: "team plays itself",
			in: Input{
				Teams:     []models.Team{team(1, "A")},
				Games:     []models.Game{played(1, 1, 1, 1, 3, 2)},
				NumRounds: 1,
			},
			field: "games",
		},
		{
			name: "team twice in a round",
			in: Input{
				Teams:     []models.Team{team(1, "A"), team(2, "B"), team(3, "C")},
				Games:     []models.Game{played(1, 1, 1, 2, 3, 2), played(2, 1, 3, 1, 3, 2)},
				NumRounds: 1,
			},
			field: "games",
		},
		{
			name: "round zero",
			in: Input{
				Teams:     []models.Team{team(1, "A"), team(2, "B")},
				Games:     []models.Game{played(1, 0, 1, 2, 3, 2)},
				NumRounds: 1,
			},
			field: "games",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(DefaultRules()).Compute(tt.in)
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCompute_EmptyTeams(t *testing.T) {
	res, err := New(DefaultRules()).Compute(Input{NumRounds: 5})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Matrix)
}

type flatScorer struct{}

func (flatScorer) Score(g models.Game) (RoundResult, RoundResult, bool) {
	return RoundResult{WL: "win", Points: 1}, RoundResult{WL: "loss"}, true
}

func TestCompute_CustomScorer(t *testing.T) {
	rules := ScoringRules{WinMark: "win", LossMark: "loss"}
	in := Input{
		Teams:     []models.Team{team(1, "A"), team(2, "B")},
		Games:     []models.Game{{ID: 1, Round: 1, Team1ID: 2, Team2ID: 1}},
		NumRounds: 1,
	}
	res, err := NewWithScorer(rules, flatScorer{}).Compute(in)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, teamIDs(res.Teams))
	assert.Equal(t, 1, res.Matrix.Totals(2).Wins)
}

func TestRoundsFor(t *testing.T) {
	rounds, defaulted := RoundsFor(nil)
	assert.Equal(t, DefaultRounds, rounds)
	assert.True(t, defaulted)

	rounds, defaulted = RoundsFor(&models.Schedule{Rounds: 0})
	assert.Equal(t, 5, rounds)
	assert.True(t, defaulted)

	rounds, defaulted = RoundsFor(&models.Schedule{Rounds: 8})
	assert.Equal(t, 8, rounds)
	assert.False(t, defaulted)
}
