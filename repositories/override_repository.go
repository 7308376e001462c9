package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/card-league/models"
)

var (
	ErrOverrideNotFound    = errors.New("override not found")
	ErrOverrideTeamInvalid = errors.New("override references an invalid team or tournament")
)

type OverrideRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Override, error)
	Upsert(ctx context.Context, exec SQLExecutor, o *models.Override) error
	Delete(ctx context.Context, tournamentID, teamID, round int, field models.OverrideField) error
	DeleteAll(ctx context.Context, tournamentID int) error
}

type postgresOverrideRepository struct {
	db *sql.DB
}

func NewPostgresOverrideRepository(db *sql.DB) OverrideRepository {
	return &postgresOverrideRepository{db: db}
}

func (r *postgresOverrideRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Override, error) {
	query := `
		SELECT tournament_id, team_id, round, field, value, updated_at
		FROM result_overrides
		WHERE tournament_id = $1
		ORDER BY team_id, round, field`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make([]models.Override, 0)
	for rows.Next() {
		var o models.Override
		if err := rows.Scan(&o.TournamentID, &o.TeamID, &o.Round, &o.Field, &o.Value, &o.UpdatedAt); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *postgresOverrideRepository) Upsert(ctx context.Context, exec SQLExecutor, o *models.Override) error {
	executor := exec
	if executor == nil {
		executor = r.db
	}
	query := `
		INSERT INTO result_overrides (tournament_id, team_id, round, field, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tournament_id, team_id, round, field)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query, o.TournamentID, o.TeamID, o.Round, o.Field, o.Value).Scan(&o.UpdatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
			return ErrOverrideTeamInvalid
		}
		return err
	}
	return nil
}

func (r *postgresOverrideRepository) Delete(ctx context.Context, tournamentID, teamID, round int, field models.OverrideField) error {
	query := `DELETE FROM result_overrides WHERE tournament_id = $1 AND team_id = $2 AND round = $3 AND field = $4`
	result, err := r.db.ExecContext(ctx, query, tournamentID, teamID, round, field)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrOverrideNotFound)
}

func (r *postgresOverrideRepository) DeleteAll(ctx context.Context, tournamentID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM result_overrides WHERE tournament_id = $1`, tournamentID)
	return err
}
