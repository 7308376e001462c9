package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/card-league/brackets"
	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
	"github.com/Dosada05/card-league/standings"
)

// PlayoffBracket is the first playoff round seeded from the standings.
type PlayoffBracket struct {
	TournamentID int                      `json:"tournament_id"`
	Size         int                      `json:"size"`
	Seeds        []models.Team            `json:"seeds"`
	Matches      []*brackets.BracketMatch `json:"matches"`
}

// StandingsService is the single path from stored data to a standings
// result. The results screen, the portal and every export go through Compute.
type StandingsService interface {
	Compute(ctx context.Context, tournamentID int) (*standings.Result, error)
	// Publish recomputes the standings and pushes them to live viewers.
	// Failures are logged, never returned.
	Publish(ctx context.Context, tournamentID int)
	Playoffs(ctx context.Context, tournamentID int, size int) (*PlayoffBracket, error)
}

type standingsService struct {
	engine         *standings.Engine
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	gameRepo       repositories.GameRepository
	scheduleRepo   repositories.ScheduleRepository
	overrideRepo   repositories.OverrideRepository
	hub            Broadcaster
	metrics        *metrics.Metrics
	logger         *slog.Logger
	playoffs       *brackets.SingleEliminationGenerator
}

func NewStandingsService(
	engine *standings.Engine,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	scheduleRepo repositories.ScheduleRepository,
	overrideRepo repositories.OverrideRepository,
	hub Broadcaster,
	m *metrics.Metrics,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		engine:         engine,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		gameRepo:       gameRepo,
		scheduleRepo:   scheduleRepo,
		overrideRepo:   overrideRepo,
		hub:            orNopBroadcaster(hub),
		metrics:        m,
		logger:         orDefaultLogger(logger),
		playoffs:       brackets.NewSingleEliminationGenerator(),
	}
}

func (s *standingsService) Compute(ctx context.Context, tournamentID int) (res *standings.Result, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveStandings(start, err) }()

	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}

	var (
		teams     []models.Team
		games     []models.Game
		schedule  *models.Schedule
		overrides models.Overrides
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("load teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		games, err = s.gameRepo.ListByTournament(gctx, tournamentID, repositories.ListGamesFilter{})
		if err != nil {
			return fmt.Errorf("load games: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		schedule, err = s.scheduleRepo.Get(gctx, tournamentID)
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			schedule = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("load schedule: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		stored, err := s.overrideRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
		overrides = overridesToMap(stored)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("standings for tournament %d: %w", tournamentID, err)
	}

	numRounds, defaulted := standings.RoundsFor(schedule)
	if defaulted {
		s.metrics.ObserveMissingSchedule()
		s.logger.WarnContext(ctx, standings.ErrMissingSchedule.Error(),
			slog.Int("tournament_id", tournamentID),
			slog.Int("rounds", numRounds))
	}

	res, err = s.engine.Compute(standings.Input{
		Teams:     teams,
		Games:     games,
		Overrides: overrides,
		NumRounds: numRounds,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "standings computation rejected input", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return nil, err
	}
	return res, nil
}

func (s *standingsService) Publish(ctx context.Context, tournamentID int) {
	res, err := s.Compute(ctx, tournamentID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish standings", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	s.hub.NotifyTournament(tournamentID, brackets.MessageStandingsUpdated, res)
}

// Playoffs seeds the top size teams of the standings into a single
// elimination bracket. size 0 takes every team.
func (s *standingsService) Playoffs(ctx context.Context, tournamentID int, size int) (*PlayoffBracket, error) {
	res, err := s.Compute(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		size = len(res.Teams)
	}
	if size < 2 || size > len(res.Teams) {
		return nil, fmt.Errorf("%w (teams: %d, requested: %d)", ErrInvalidPlayoffSize, len(res.Teams), size)
	}

	seeds := res.Teams[:size]
	ids := make([]int, len(seeds))
	for i, team := range seeds {
		ids[i] = team.ID
	}
	matches, err := s.playoffs.GenerateBracket(ids)
	if err != nil {
		return nil, fmt.Errorf("generate playoff bracket: %w", err)
	}
	return &PlayoffBracket{
		TournamentID: tournamentID,
		Size:         size,
		Seeds:        seeds,
		Matches:      matches,
	}, nil
}

func overridesToMap(stored []models.Override) models.Overrides {
	out := make(models.Overrides, len(stored))
	for _, o := range stored {
		out[o.Key()] = o.Value
	}
	return out
}
