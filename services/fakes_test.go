package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// store is an in-memory database shared by the fake repositories.
type store struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]*models.Tournament
	schedules   map[int]*models.Schedule
	teams       map[int]*models.Team
	games       map[int]*models.Game
	overrides   map[string]*models.Override

	gameListErr   error
	gameCreateErr error
}

func newStore() *store {
	return &store{
		tournaments: map[int]*models.Tournament{},
		schedules:   map[int]*models.Schedule{},
		teams:       map[int]*models.Team{},
		games:       map[int]*models.Game{},
		overrides:   map[string]*models.Override{},
	}
}

func (s *store) id() int {
	s.nextID++
	return s.nextID
}

func (s *store) addTournament(name string, status models.TournamentStatus) *models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Tournament{ID: s.id(), Name: name, Status: status, CreatedAt: time.Now()}
	s.tournaments[t.ID] = t
	return t
}

func (s *store) addTeam(tournamentID, number int, name string) *models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Team{ID: s.id(), TournamentID: tournamentID, TeamNumber: number, Name: name}
	s.teams[t.ID] = t
	return t
}

func (s *store) addGame(tournamentID, round, table, team1, team2 int, score1, score2 *int) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &models.Game{
		ID: s.id(), TournamentID: tournamentID, Round: round, TableNumber: table,
		Team1ID: team1, Team2ID: team2, Score1: score1, Score2: score2,
		Status: models.GameStatusScheduled,
	}
	if g.Played() {
		g.Status = models.GameStatusCompleted
	}
	s.games[g.ID] = g
	return g
}

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// --- tournaments ---

type fakeTournamentRepo struct{ s *store }

func (r fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	cp := *t
	r.s.tournaments[t.ID] = &cp
	return nil
}

func (r fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Tournament{}
	for _, t := range r.s.tournaments {
		if filter.Status == nil || t.Status == *filter.Status {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, t := range r.s.teams {
		if t.TournamentID == id {
			return repositories.ErrTournamentInUse
		}
	}
	delete(r.s.tournaments, id)
	return nil
}

// --- schedules ---

type fakeScheduleRepo struct{ s *store }

func (r fakeScheduleRepo) Get(ctx context.Context, tournamentID int) (*models.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sch, ok := r.s.schedules[tournamentID]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	cp := *sch
	return &cp, nil
}

func (r fakeScheduleRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, sch *models.Schedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[sch.TournamentID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	sch.CreatedAt = time.Now()
	cp := *sch
	r.s.schedules[sch.TournamentID] = &cp
	return nil
}

// --- teams ---

type fakeTeamRepo struct{ s *store }

func (r fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if t.TournamentID != team.TournamentID {
			continue
		}
		if t.TeamNumber == team.TeamNumber {
			return repositories.ErrTeamNumberConflict
		}
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = r.s.id()
	cp := *team
	r.s.teams[team.ID] = &cp
	return nil
}

func (r fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTeamRepo) GetByNumber(ctx context.Context, tournamentID, teamNumber int) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.teams {
		if t.TournamentID == tournamentID && t.TeamNumber == teamNumber {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Team{}
	for _, t := range r.s.teams {
		if t.TournamentID == tournamentID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamNumber != out[j].TeamNumber {
			return out[i].TeamNumber < out[j].TeamNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r fakeTeamRepo) NextTeamNumber(ctx context.Context, tournamentID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	max := 0
	for _, t := range r.s.teams {
		if t.TournamentID == tournamentID && t.TeamNumber > max {
			max = t.TeamNumber
		}
	}
	return max + 1, nil
}

// --- games ---

type fakeGameRepo struct{ s *store }

func (r fakeGameRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, games []*models.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.gameCreateErr != nil {
		return r.s.gameCreateErr
	}
	for _, g := range games {
		g.ID = r.s.id()
		g.UpdatedAt = time.Now()
		cp := *g
		r.s.games[g.ID] = &cp
	}
	return nil
}

func (r fakeGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (r fakeGameRepo) ListByTournament(ctx context.Context, tournamentID int, filter repositories.ListGamesFilter) ([]models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.gameListErr != nil {
		return nil, r.s.gameListErr
	}
	out := []models.Game{}
	for _, g := range r.s.games {
		if g.TournamentID != tournamentID {
			continue
		}
		if filter.Round != nil && g.Round != *filter.Round {
			continue
		}
		if filter.TeamID != nil && !g.Involves(*filter.TeamID) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		if out[i].TableNumber != out[j].TableNumber {
			return out[i].TableNumber < out[j].TableNumber
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r fakeGameRepo) UpdateScore(ctx context.Context, id int, u repositories.ScoreUpdate) (*models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	g.Score1, g.Score2 = u.Score1, u.Score2
	g.Hands1, g.Hands2 = u.Hands1, u.Hands2
	g.Bostons1, g.Bostons2 = u.Bostons1, u.Bostons2
	g.Status = u.Status
	g.Team1Confirmed, g.Team2Confirmed = false, false
	cp := *g
	return &cp, nil
}

func (r fakeGameRepo) SetConfirmed(ctx context.Context, id int, slot int) (*models.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	switch slot {
	case 1:
		g.Team1Confirmed = true
	case 2:
		g.Team2Confirmed = true
	default:
		return nil, fmt.Errorf("invalid team slot %d", slot)
	}
	cp := *g
	return &cp, nil
}

func (r fakeGameRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, g := range r.s.games {
		if g.TournamentID == tournamentID {
			delete(r.s.games, id)
		}
	}
	return nil
}

// --- overrides ---

type fakeOverrideRepo struct{ s *store }

func overrideStoreKey(tournamentID int, key string) string {
	return fmt.Sprintf("%d/%s", tournamentID, key)
}

func (r fakeOverrideRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Override, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Override{}
	for _, o := range r.s.overrides {
		if o.TournamentID == tournamentID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (r fakeOverrideRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, o *models.Override) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.UpdatedAt = time.Now()
	cp := *o
	r.s.overrides[overrideStoreKey(o.TournamentID, o.Key())] = &cp
	return nil
}

func (r fakeOverrideRepo) Delete(ctx context.Context, tournamentID, teamID, round int, field models.OverrideField) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := overrideStoreKey(tournamentID, models.OverrideKey(teamID, round, field))
	if _, ok := r.s.overrides[key]; !ok {
		return repositories.ErrOverrideNotFound
	}
	delete(r.s.overrides, key)
	return nil
}

func (r fakeOverrideRepo) DeleteAll(ctx context.Context, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, o := range r.s.overrides {
		if o.TournamentID == tournamentID {
			delete(r.s.overrides, key)
		}
	}
	return nil
}

// --- collaborators ---

type broadcast struct {
	TournamentID int
	Type         string
	Payload      any
}

type fakeHub struct {
	mu       sync.Mutex
	messages []broadcast
}

func (h *fakeHub) NotifyTournament(tournamentID int, msgType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, broadcast{tournamentID, msgType, payload})
}

func (h *fakeHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	for i, m := range h.messages {
		out[i] = m.Type
	}
	return out
}

type sent struct {
	To  string
	Msg Message
}

type fakeSender struct {
	channel models.NotificationChannel
	fail    map[string]error
	mu      sync.Mutex
	sent    []sent
}

func (f *fakeSender) Channel() models.NotificationChannel { return f.channel }

func (f *fakeSender) Send(ctx context.Context, to string, msg Message) error {
	if err, ok := f.fail[to]; ok {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{To: to, Msg: msg})
	return nil
}

type fakeTokens struct{}

func (fakeTokens) IssueOperator() (string, time.Time, error) {
	return "operator-token", time.Unix(1700000000, 0), nil
}

func (fakeTokens) IssueTeam(teamID, tournamentID int) (string, time.Time, error) {
	return fmt.Sprintf("team-%d-%d", teamID, tournamentID), time.Unix(1700000000, 0), nil
}

// fixture wires every service against one in-memory store.
type fixture struct {
	store     *store
	tx        *fakeTx
	hub       *fakeHub
	email     *fakeSender
	sms       *fakeSender
	standings StandingsService
	games     GameService
	overrides OverrideService
	schedule  ScheduleService
	teams     TeamService
	tours     TournamentService
	exports   ExportService
	portal    PortalService
}
