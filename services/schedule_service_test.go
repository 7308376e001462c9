package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/card-league/brackets"
	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
)

func seedTeams(f *fixture, n int, status models.TournamentStatus) *models.Tournament {
	tour := f.store.addTournament("League", status)
	for i := 1; i <= n; i++ {
		f.store.addTeam(tour.ID, i, string(rune('A'+i-1))+" team")
	}
	return tour
}

func TestScheduleService_Generate(t *testing.T) {
	f := newFixture(nil)
	tour := seedTeams(f, 4, models.StatusRegistration)

	out, err := f.schedule.Generate(t.Context(), tour.ID, GenerateScheduleInput{Rounds: intPtr(3), Tables: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Schedule.Rounds)
	assert.Len(t, out.Games, 6)
	assert.Empty(t, out.Byes)

	// Каждая пара встречается ровно один раз.
	pairs := map[[2]int]bool{}
	for _, g := range out.Games {
		a, b := min(g.Team1ID, g.Team2ID), max(g.Team1ID, g.Team2ID)
		assert.False(t, pairs[[2]int{a, b}], "pair %d-%d repeated", a, b)
		pairs[[2]int{a, b}] = true
		assert.LessOrEqual(t, g.TableNumber, 2)
	}

	stored, err := fakeGameRepo{f.store}.ListByTournament(t.Context(), tour.ID, repositories.ListGamesFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 6)
	assert.Equal(t, 3, f.store.schedules[tour.ID].Rounds)
	assert.Equal(t, []string{brackets.MessageGameUpdated}, f.hub.types())

	// Повторная генерация заменяет игры.
	out, err = f.schedule.Generate(t.Context(), tour.ID, GenerateScheduleInput{Rounds: intPtr(1)})
	require.NoError(t, err)
	assert.Len(t, out.Games, 2)
	stored, err = fakeGameRepo{f.store}.ListByTournament(t.Context(), tour.ID, repositories.ListGamesFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestScheduleService_GenerateOddTeamsGetsByes(t *testing.T) {
	f := newFixture(nil)
	tour := seedTeams(f, 5, models.StatusRegistration)

	out, err := f.schedule.Generate(t.Context(), tour.ID, GenerateScheduleInput{Rounds: intPtr(5)})
	require.NoError(t, err)
	assert.Len(t, out.Games, 10)
	assert.Len(t, out.Byes, 5)
}

func TestScheduleService_GenerateRejects(t *testing.T) {
	f := newFixture(nil)

	sc := f.seedScenario(true)
	_, err := f.schedule.Generate(t.Context(), sc.tournament.ID, GenerateScheduleInput{})
	assert.ErrorIs(t, err, ErrScheduleAlreadyPlayed)

	lonely := seedTeams(f, 1, models.StatusRegistration)
	_, err = f.schedule.Generate(t.Context(), lonely.ID, GenerateScheduleInput{})
	assert.ErrorIs(t, err, ErrScheduleNotEnoughTeams)

	crowded := seedTeams(f, 6, models.StatusRegistration)
	_, err = f.schedule.Generate(t.Context(), crowded.ID, GenerateScheduleInput{Tables: intPtr(2)})
	assert.ErrorIs(t, err, ErrScheduleInvalidTables)

	_, err = f.schedule.Generate(t.Context(), crowded.ID, GenerateScheduleInput{Rounds: intPtr(0)})
	assert.ErrorIs(t, err, ErrScheduleInvalidRounds)

	done := seedTeams(f, 4, models.StatusCompleted)
	_, err = f.schedule.Generate(t.Context(), done.ID, GenerateScheduleInput{})
	assert.ErrorIs(t, err, ErrTournamentClosed)

	_, err = f.schedule.Generate(t.Context(), 404, GenerateScheduleInput{})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestScheduleService_GenerateMapsStoreConflicts(t *testing.T) {
	tests := []struct {
		storeErr error
		want     error
	}{
		{repositories.ErrGameSlotConflict, ErrGameSlotConflict},
		{repositories.ErrGameTableConflict, ErrGameSlotConflict},
		{repositories.ErrGameTeamInvalid, ErrGameTeamInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.storeErr.Error(), func(t *testing.T) {
			f := newFixture(nil)
			tour := seedTeams(f, 4, models.StatusRegistration)
			f.store.gameCreateErr = tt.storeErr

			_, err := f.schedule.Generate(t.Context(), tour.ID, GenerateScheduleInput{Rounds: intPtr(3), Tables: intPtr(2)})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
