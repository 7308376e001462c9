package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/card-league/models"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNumberConflict    = errors.New("team number already used in this tournament")
	ErrTeamNameConflict      = errors.New("team name already used in this tournament")
	ErrTeamTournamentInvalid = errors.New("team tournament conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByNumber(ctx context.Context, tournamentID, teamNumber int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
	NextTeamNumber(ctx context.Context, tournamentID int) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, tournament_id, team_number, name, contact_email, contact_phone, access_code_hash, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (tournament_id, team_number, name, contact_email, contact_phone, access_code_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.TournamentID,
		team.TeamNumber,
		team.Name,
		team.ContactEmail,
		team.ContactPhone,
		team.AccessCodeHash,
	).Scan(&team.ID, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresTeamRepository) GetByNumber(ctx context.Context, tournamentID, teamNumber int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 AND team_number = $2`
	return r.getOne(ctx, query, tournamentID, teamNumber)
}

func (r *postgresTeamRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Team, error) {
	team, err := scanTeam(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// ListByTournament returns teams in registration order, which is also the
// tie order of the standings.
func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 ORDER BY team_number ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, *team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) NextTeamNumber(ctx context.Context, tournamentID int) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(team_number), 0) + 1 FROM teams WHERE tournament_id = $1`,
		tournamentID,
	).Scan(&next)
	return next, err
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID,
		&t.TournamentID,
		&t.TeamNumber,
		&t.Name,
		&t.ContactEmail,
		&t.ContactPhone,
		&t.AccessCodeHash,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			switch pqErr.Constraint {
			case "teams_tournament_id_team_number_key":
				return ErrTeamNumberConflict
			case "teams_tournament_id_name_key":
				return ErrTeamNameConflict
			}
		case pqForeignKeyViolation:
			if pqErr.Constraint == "teams_tournament_id_fkey" {
				return ErrTeamTournamentInvalid
			}
		}
	}
	return err
}
