package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
)

// Transactor runs fn inside one database transaction. Repositories called
// with the given executor take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewSQLTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return repositories.WithTx(ctx, t.db, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

// Broadcaster pushes live updates to clients watching a tournament.
type Broadcaster interface {
	NotifyTournament(tournamentID int, msgType string, payload any)
}

type nopBroadcaster struct{}

func (nopBroadcaster) NotifyTournament(int, string, any) {}

func orNopBroadcaster(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}

func orDefaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isValidStatus(status models.TournamentStatus) bool {
	switch status {
	case models.StatusRegistration, models.StatusActive, models.StatusCompleted, models.StatusCanceled:
		return true
	}
	return false
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusRegistration: {models.StatusActive, models.StatusCanceled},
		models.StatusActive:       {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted:    {},
		models.StatusCanceled:     {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

func isClosed(status models.TournamentStatus) bool {
	return status == models.StatusCompleted || status == models.StatusCanceled
}

// handleRepositoryError translates repository sentinels into service errors.
func handleRepositoryError(err error) error {
	if mapped := knownRepositoryError(err); mapped != nil {
		return mapped
	}
	return err
}

// wrapRepositoryError keeps the operation context on unexpected errors.
func wrapRepositoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	if mapped := knownRepositoryError(err); mapped != nil {
		return mapped
	}
	return fmt.Errorf("%s: %w", op, err)
}

func knownRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentInUse):
		return ErrTournamentInUse
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamNumberConflict):
		return ErrTeamNumberConflict
	case errors.Is(err, repositories.ErrTeamTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrGameScoreRejected):
		return ErrGameInvalidScore
	case errors.Is(err, repositories.ErrGameSlotConflict),
		errors.Is(err, repositories.ErrGameTableConflict):
		return ErrGameSlotConflict
	case errors.Is(err, repositories.ErrGameTeamInvalid):
		return ErrGameTeamInvalid
	case errors.Is(err, repositories.ErrOverrideNotFound):
		return ErrOverrideNotFound
	case errors.Is(err, repositories.ErrOverrideTeamInvalid):
		return ErrOverrideUnknownTeam
	default:
		return nil
	}
}
