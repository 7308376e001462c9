package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/card-league/brackets"
	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
	"github.com/Dosada05/card-league/standings"
)

type GenerateScheduleInput struct {
	Rounds *int `json:"rounds,omitempty"`
	Tables *int `json:"tables,omitempty"`
}

type GeneratedSchedule struct {
	Schedule models.Schedule `json:"schedule"`
	Games    []models.Game   `json:"games"`
	Byes     map[int]int     `json:"byes,omitempty"`
}

type ScheduleService interface {
	// Generate replaces the tournament's games with a fresh round robin.
	// It refuses once any game has a score.
	Generate(ctx context.Context, tournamentID int, input GenerateScheduleInput) (*GeneratedSchedule, error)
}

type scheduleService struct {
	tx             Transactor
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	gameRepo       repositories.GameRepository
	scheduleRepo   repositories.ScheduleRepository
	generator      *brackets.RoundRobinGenerator
	hub            Broadcaster
	logger         *slog.Logger
}

func NewScheduleService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	gameRepo repositories.GameRepository,
	scheduleRepo repositories.ScheduleRepository,
	hub Broadcaster,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		gameRepo:       gameRepo,
		scheduleRepo:   scheduleRepo,
		generator:      brackets.NewRoundRobinGenerator(),
		hub:            orNopBroadcaster(hub),
		logger:         orDefaultLogger(logger),
	}
}

func (s *scheduleService) Generate(ctx context.Context, tournamentID int, input GenerateScheduleInput) (*GeneratedSchedule, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	if isClosed(tournament.Status) {
		return nil, ErrTournamentClosed
	}

	existing, err := s.scheduleRepo.Get(ctx, tournamentID)
	if err != nil && !errors.Is(err, repositories.ErrScheduleNotFound) {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	rounds, _ := standings.RoundsFor(existing)
	tables := 0
	if existing != nil {
		tables = existing.Tables
	}
	if input.Rounds != nil {
		rounds = *input.Rounds
	}
	if input.Tables != nil {
		tables = *input.Tables
	}
	if err := validateSchedule(rounds, tables); err != nil {
		return nil, err
	}

	games, err := s.gameRepo.ListByTournament(ctx, tournamentID, repositories.ListGamesFilter{})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	for _, g := range games {
		if g.Score1 != nil || g.Score2 != nil {
			return nil, ErrScheduleAlreadyPlayed
		}
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teamIDs := make([]int, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	plan, err := s.generator.Generate(teamIDs, rounds, tables)
	switch {
	case errors.Is(err, brackets.ErrNotEnoughTeams):
		return nil, ErrScheduleNotEnoughTeams
	case errors.Is(err, brackets.ErrNotEnoughTables):
		return nil, fmt.Errorf("%w: %v", ErrScheduleInvalidTables, err)
	case errors.Is(err, brackets.ErrInvalidRounds):
		return nil, ErrScheduleInvalidRounds
	case err != nil:
		return nil, fmt.Errorf("generate round robin: %w", err)
	}

	newGames := make([]*models.Game, len(plan.Pairings))
	for i, p := range plan.Pairings {
		newGames[i] = &models.Game{
			TournamentID: tournamentID,
			Round:        p.Round,
			TableNumber:  p.TableNumber,
			Team1ID:      p.Team1ID,
			Team2ID:      p.Team2ID,
			Status:       models.GameStatusScheduled,
		}
	}
	schedule := &models.Schedule{TournamentID: tournamentID, Rounds: rounds, Tables: tables}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.gameRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("delete old games: %w", err)
		}
		if err := s.scheduleRepo.Upsert(ctx, exec, schedule); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		if err := s.gameRepo.BatchCreate(ctx, exec, newGames); err != nil {
			return fmt.Errorf("create games: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	out := &GeneratedSchedule{
		Schedule: *schedule,
		Games:    make([]models.Game, len(newGames)),
		Byes:     plan.Byes,
	}
	for i, g := range newGames {
		out.Games[i] = *g
	}

	s.logger.InfoContext(ctx, "round robin generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("rounds", rounds),
		slog.Int("games", len(out.Games)))
	s.hub.NotifyTournament(tournamentID, brackets.MessageGameUpdated, out.Games)
	return out, nil
}
