package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/card-league/brackets"
	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
	"github.com/Dosada05/card-league/standings"
)

type OverrideService interface {
	List(ctx context.Context, tournamentID int) (models.Overrides, error)
	// Set stores every value of the map and returns the tournament's full
	// override map afterwards. Values are stored as given.
	Set(ctx context.Context, tournamentID int, values models.Overrides) (models.Overrides, error)
	// Delete removes the given keys, or every override when keys is empty.
	Delete(ctx context.Context, tournamentID int, keys []string) error
}

type overrideService struct {
	tx             Transactor
	overrideRepo   repositories.OverrideRepository
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	scheduleRepo   repositories.ScheduleRepository
	standings      StandingsService
	hub            Broadcaster
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

func NewOverrideService(
	tx Transactor,
	overrideRepo repositories.OverrideRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	scheduleRepo repositories.ScheduleRepository,
	standingsService StandingsService,
	hub Broadcaster,
	m *metrics.Metrics,
	logger *slog.Logger,
) OverrideService {
	return &overrideService{
		tx:             tx,
		overrideRepo:   overrideRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		scheduleRepo:   scheduleRepo,
		standings:      standingsService,
		hub:            orNopBroadcaster(hub),
		metrics:        m,
		logger:         orDefaultLogger(logger),
	}
}

func (s *overrideService) List(ctx context.Context, tournamentID int) (models.Overrides, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	stored, err := s.overrideRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return overridesToMap(stored), nil
}

func (s *overrideService) Set(ctx context.Context, tournamentID int, values models.Overrides) (models.Overrides, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no overrides given", ErrValidationFailed)
	}
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}

	rows, err := s.validate(ctx, tournamentID, values)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, o := range rows {
			if err := s.overrideRepo.Upsert(ctx, exec, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapRepositoryError("save overrides", err)
	}

	for range rows {
		s.metrics.ObserveOverride("set")
	}
	s.logger.InfoContext(ctx, "overrides saved", slog.Int("tournament_id", tournamentID), slog.Int("count", len(rows)))
	s.changed(ctx, tournamentID)

	return s.List(ctx, tournamentID)
}

func (s *overrideService) Delete(ctx context.Context, tournamentID int, keys []string) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return wrapRepositoryError("get tournament", err)
	}

	if len(keys) == 0 {
		if err := s.overrideRepo.DeleteAll(ctx, tournamentID); err != nil {
			return fmt.Errorf("delete overrides: %w", err)
		}
		s.metrics.ObserveOverride("clear")
		s.logger.InfoContext(ctx, "all overrides cleared", slog.Int("tournament_id", tournamentID))
		s.changed(ctx, tournamentID)
		return nil
	}

	for _, key := range keys {
		teamID, round, field, err := models.ParseOverrideKey(key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOverrideInvalidKey, err)
		}
		if err := s.overrideRepo.Delete(ctx, tournamentID, teamID, round, field); err != nil {
			return wrapRepositoryError("delete override", err)
		}
		s.metrics.ObserveOverride("delete")
	}
	s.logger.InfoContext(ctx, "overrides deleted", slog.Int("tournament_id", tournamentID), slog.Int("count", len(keys)))
	s.changed(ctx, tournamentID)
	return nil
}

// validate checks keys against the tournament's teams and rounds. Values
// are not inspected: operators may store anything.
func (s *overrideService) validate(ctx context.Context, tournamentID int, values models.Overrides) ([]*models.Override, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	known := make(map[int]bool, len(teams))
	for _, t := range teams {
		known[t.ID] = true
	}

	schedule, err := s.scheduleRepo.Get(ctx, tournamentID)
	if err != nil && !errors.Is(err, repositories.ErrScheduleNotFound) {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	numRounds, _ := standings.RoundsFor(schedule)

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]*models.Override, 0, len(keys))
	for _, key := range keys {
		teamID, round, field, err := models.ParseOverrideKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOverrideInvalidKey, err)
		}
		if !known[teamID] {
			return nil, fmt.Errorf("%w: team %d", ErrOverrideUnknownTeam, teamID)
		}
		if round < 1 || round > numRounds {
			return nil, fmt.Errorf("%w: round %d of %d", ErrOverrideInvalidRound, round, numRounds)
		}
		rows = append(rows, &models.Override{
			TournamentID: tournamentID,
			TeamID:       teamID,
			Round:        round,
			Field:        field,
			Value:        values[key],
		})
	}
	return rows, nil
}

func (s *overrideService) changed(ctx context.Context, tournamentID int) {
	s.hub.NotifyTournament(tournamentID, brackets.MessageOverridesUpdated, nil)
	s.standings.Publish(ctx, tournamentID)
}
