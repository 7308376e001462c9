package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/card-league/models"
)

var ErrScheduleNotFound = errors.New("schedule not found")

type ScheduleRepository interface {
	Get(ctx context.Context, tournamentID int) (*models.Schedule, error)
	Upsert(ctx context.Context, exec SQLExecutor, schedule *models.Schedule) error
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

func (r *postgresScheduleRepository) Get(ctx context.Context, tournamentID int) (*models.Schedule, error) {
	query := `SELECT tournament_id, rounds, tables, created_at FROM schedules WHERE tournament_id = $1`

	var s models.Schedule
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&s.TournamentID, &s.Rounds, &s.Tables, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresScheduleRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.Schedule) error {
	executor := exec
	if executor == nil {
		executor = r.db
	}
	query := `
		INSERT INTO schedules (tournament_id, rounds, tables)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id) DO UPDATE SET rounds = EXCLUDED.rounds, tables = EXCLUDED.tables
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query, s.TournamentID, s.Rounds, s.Tables).Scan(&s.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}
