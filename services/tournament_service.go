package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
)

type CreateTournamentInput struct {
	Name     string  `json:"name"`
	Location *string `json:"location,omitempty"`
	Rounds   *int    `json:"rounds,omitempty"`
	Tables   *int    `json:"tables,omitempty"`
}

type ListTournamentsInput struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	SetSchedule(ctx context.Context, id int, rounds, tables int) (*models.Schedule, error)
	Delete(ctx context.Context, id int) error
}

type tournamentService struct {
	tx             Transactor
	tournamentRepo repositories.TournamentRepository
	scheduleRepo   repositories.ScheduleRepository
	teamRepo       repositories.TeamRepository
	logger         *slog.Logger
}

func NewTournamentService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	scheduleRepo repositories.ScheduleRepository,
	teamRepo repositories.TeamRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		scheduleRepo:   scheduleRepo,
		teamRepo:       teamRepo,
		logger:         orDefaultLogger(logger),
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	var schedule *models.Schedule
	if input.Rounds != nil {
		tables := 0
		if input.Tables != nil {
			tables = *input.Tables
		}
		if err := validateSchedule(*input.Rounds, tables); err != nil {
			return nil, err
		}
		schedule = &models.Schedule{Rounds: *input.Rounds, Tables: tables}
	}

	tournament := &models.Tournament{
		Name:     name,
		Location: input.Location,
		Status:   models.StatusRegistration,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Create(ctx, exec, tournament); err != nil {
			return err
		}
		if schedule == nil {
			return nil
		}
		schedule.TournamentID = tournament.ID
		return s.scheduleRepo.Upsert(ctx, exec, schedule)
	})
	if err != nil {
		return nil, wrapRepositoryError("create tournament", err)
	}
	tournament.Schedule = schedule

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", tournament.ID), slog.String("name", tournament.Name))
	return tournament, nil
}

// GetByID returns the tournament with its schedule and teams attached.
func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}

	schedule, err := s.scheduleRepo.Get(ctx, id)
	switch {
	case err == nil:
		tournament.Schedule = schedule
	case errors.Is(err, repositories.ErrScheduleNotFound):
	default:
		return nil, fmt.Errorf("get schedule for tournament %d: %w", id, err)
	}

	teams, err := s.teamRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list teams for tournament %d: %w", id, err)
	}
	tournament.Teams = teams
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, input ListTournamentsInput) ([]models.Tournament, error) {
	if input.Status != nil && !isValidStatus(*input.Status) {
		return nil, ErrTournamentInvalidStatus
	}
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}
	if input.Offset < 0 {
		input.Offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !isValidStatus(status) {
		return nil, ErrTournamentInvalidStatus
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, status)
	}
	if tournament.Status == status {
		return tournament, nil
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, wrapRepositoryError("update tournament status", err)
	}
	s.logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", id),
		slog.String("from", string(tournament.Status)),
		slog.String("to", string(status)))

	tournament.Status = status
	return tournament, nil
}

// SetSchedule stores the round and table counts without touching games.
func (s *tournamentService) SetSchedule(ctx context.Context, id int, rounds, tables int) (*models.Schedule, error) {
	if err := validateSchedule(rounds, tables); err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	if isClosed(tournament.Status) {
		return nil, ErrTournamentClosed
	}

	schedule := &models.Schedule{TournamentID: id, Rounds: rounds, Tables: tables}
	if err := s.scheduleRepo.Upsert(ctx, nil, schedule); err != nil {
		return nil, wrapRepositoryError("save schedule", err)
	}
	s.logger.InfoContext(ctx, "schedule saved", slog.Int("tournament_id", id), slog.Int("rounds", rounds), slog.Int("tables", tables))
	return schedule, nil
}

// Delete removes a tournament that has no teams or games yet.
func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return wrapRepositoryError("delete tournament", err)
	}
	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", id))
	return nil
}

func validateSchedule(rounds, tables int) error {
	if rounds < 1 {
		return ErrScheduleInvalidRounds
	}
	if tables < 0 {
		return fmt.Errorf("%w: tables must not be negative", ErrValidationFailed)
	}
	return nil
}
