package services

import (
	"context"

	"github.com/Dosada05/card-league/export"
	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/standings"
)

type fakeSink struct {
	puts []int
	err  error
}

func (f *fakeSink) Put(ctx context.Context, tournamentID int, t export.Table) (*export.Artifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, tournamentID)
	return &export.Artifact{Key: "exports/key.xlsx", ContentType: export.ContentTypeXLSX, Size: len(t.Rows)}, nil
}

func newFixture(sink export.Sink) *fixture {
	st := newStore()
	f := &fixture{
		store: st,
		tx:    &fakeTx{},
		hub:   &fakeHub{},
		email: &fakeSender{channel: models.ChannelEmail},
		sms:   &fakeSender{channel: models.ChannelSMS},
	}
	logger := testLogger()
	m := metrics.New(nil)

	tournaments := fakeTournamentRepo{st}
	teams := fakeTeamRepo{st}
	games := fakeGameRepo{st}
	schedules := fakeScheduleRepo{st}
	overrides := fakeOverrideRepo{st}

	f.standings = NewStandingsService(standings.New(standings.DefaultRules()),
		tournaments, teams, games, schedules, overrides, f.hub, m, logger)
	notifier := NewNotificationService(logger, m, f.email, f.sms)

	gs := NewGameService(games, teams, tournaments, f.standings, notifier, f.hub, m, logger).(*gameService)
	gs.spawn = func(fn func()) { fn() }
	f.games = gs

	f.overrides = NewOverrideService(f.tx, overrides, tournaments, teams, schedules, f.standings, f.hub, m, logger)
	f.schedule = NewScheduleService(f.tx, tournaments, teams, games, schedules, f.hub, logger)
	f.teams = NewTeamService(teams, tournaments, "US", logger)
	f.tours = NewTournamentService(f.tx, tournaments, schedules, teams, logger)
	f.exports = NewExportService(f.standings, tournaments, sink, m, logger)
	f.portal = NewPortalService(teams, f.standings, f.games, fakeTokens{}, logger)
	return f
}

// scenario seeds four teams over two rounds: T1 beats T2 10-5 and T3 beats
// T4 8-7 in round 1, round 2 is unplayed.
type scenario struct {
	tournament     *models.Tournament
	t1, t2, t3, t4 *models.Team
	g1, g2         *models.Game
	r2a, r2b       *models.Game
}

func (f *fixture) seedScenario(withSchedule bool) scenario {
	var sc scenario
	sc.tournament = f.store.addTournament("Spring League", models.StatusActive)
	id := sc.tournament.ID
	sc.t1 = f.store.addTeam(id, 1, "Aces")
	sc.t2 = f.store.addTeam(id, 2, "Kings")
	sc.t3 = f.store.addTeam(id, 3, "Queens")
	sc.t4 = f.store.addTeam(id, 4, "Jacks")
	sc.g1 = f.store.addGame(id, 1, 1, sc.t1.ID, sc.t2.ID, intPtr(10), intPtr(5))
	sc.g2 = f.store.addGame(id, 1, 2, sc.t3.ID, sc.t4.ID, intPtr(8), intPtr(7))
	sc.r2a = f.store.addGame(id, 2, 1, sc.t1.ID, sc.t3.ID, nil, nil)
	sc.r2b = f.store.addGame(id, 2, 2, sc.t2.ID, sc.t4.ID, nil, nil)
	if withSchedule {
		f.store.schedules[id] = &models.Schedule{TournamentID: id, Rounds: 2}
	}
	return sc
}

func teamIDs(teams []models.Team) []int {
	ids := make([]int, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	return ids
}
