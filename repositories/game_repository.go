package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/card-league/models"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameSlotConflict  = errors.New("team already has a game in this round")
	ErrGameTableConflict = errors.New("table already used in this round")
	ErrGameTeamInvalid   = errors.New("game references an invalid team or tournament")
	ErrGameScoreRejected = errors.New("game score violates constraints")
)

type ListGamesFilter struct {
	Round  *int
	TeamID *int
}

// ScoreUpdate carries the values an operator enters for one game.
type ScoreUpdate struct {
	Score1   *int
	Score2   *int
	Hands1   *int
	Hands2   *int
	Bostons1 *int
	Bostons2 *int
	Status   models.GameStatus
}

type GameRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, games []*models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int, filter ListGamesFilter) ([]models.Game, error)
	UpdateScore(ctx context.Context, id int, update ScoreUpdate) (*models.Game, error)
	SetConfirmed(ctx context.Context, id int, slot int) (*models.Game, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, tournament_id, round, table_number, team1_id, team2_id,
	score1, score2, hands1, hands2, bostons1, bostons2, status,
	team1_confirmed, team2_confirmed, updated_at`

func (r *postgresGameRepository) BatchCreate(ctx context.Context, exec SQLExecutor, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	var sb strings.Builder
	sb.WriteString(`INSERT INTO games (tournament_id, round, table_number, team1_id, team2_id, status) VALUES `)
	args := make([]interface{}, 0, len(games)*6)
	for i, g := range games {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, g.TournamentID, g.Round, g.TableNumber, g.Team1ID, g.Team2ID, g.Status)
	}
	sb.WriteString(" RETURNING id, updated_at")

	rows, err := executor.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return r.handleGameError(err)
	}
	defer rows.Close()

	// Postgres returns rows of a multi-row VALUES insert in input order.
	i := 0
	for rows.Next() {
		if i >= len(games) {
			return fmt.Errorf("batch insert returned more rows than games")
		}
		if err := rows.Scan(&games[i].ID, &games[i].UpdatedAt); err != nil {
			return err
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return r.handleGameError(err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, tournamentID int, filter ListGamesFilter) ([]models.Game, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + gameColumns + ` FROM games WHERE tournament_id = $1`)
	args := []interface{}{tournamentID}
	argID := 2

	if filter.Round != nil {
		fmt.Fprintf(&sb, " AND round = $%d", argID)
		args = append(args, *filter.Round)
		argID++
	}
	if filter.TeamID != nil {
		fmt.Fprintf(&sb, " AND (team1_id = $%d OR team2_id = $%d)", argID, argID)
		args = append(args, *filter.TeamID)
	}
	sb.WriteString(" ORDER BY round ASC, table_number ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, scanErr := scanGame(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		games = append(games, *g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// UpdateScore stores new scores and clears both confirmations, since a
// changed result must be confirmed again.
func (r *postgresGameRepository) UpdateScore(ctx context.Context, id int, u ScoreUpdate) (*models.Game, error) {
	query := `
		UPDATE games SET
			score1 = $1, score2 = $2, hands1 = $3, hands2 = $4, bostons1 = $5, bostons2 = $6,
			status = $7, team1_confirmed = FALSE, team2_confirmed = FALSE, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + gameColumns

	g, err := scanGame(r.db.QueryRowContext(ctx, query,
		u.Score1, u.Score2, u.Hands1, u.Hands2, u.Bostons1, u.Bostons2, u.Status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, r.handleGameError(err)
	}
	return g, nil
}

// SetConfirmed marks the result confirmed by team slot 1 or 2.
func (r *postgresGameRepository) SetConfirmed(ctx context.Context, id int, slot int) (*models.Game, error) {
	var column string
	switch slot {
	case 1:
		column = "team1_confirmed"
	case 2:
		column = "team2_confirmed"
	default:
		return nil, fmt.Errorf("invalid team slot %d", slot)
	}
	query := `UPDATE games SET ` + column + ` = TRUE, updated_at = NOW() WHERE id = $1 RETURNING ` + gameColumns

	g, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGameRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM games WHERE tournament_id = $1`, tournamentID)
	return err
}

func scanGame(row rowScanner) (*models.Game, error) {
	var g models.Game
	var score1, score2, hands1, hands2, bostons1, bostons2 sql.NullInt64
	err := row.Scan(
		&g.ID, &g.TournamentID, &g.Round, &g.TableNumber, &g.Team1ID, &g.Team2ID,
		&score1, &score2, &hands1, &hands2, &bostons1, &bostons2, &g.Status,
		&g.Team1Confirmed, &g.Team2Confirmed, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Score1 = nullIntPtr(score1)
	g.Score2 = nullIntPtr(score2)
	g.Hands1 = nullIntPtr(hands1)
	g.Hands2 = nullIntPtr(hands2)
	g.Bostons1 = nullIntPtr(bostons1)
	g.Bostons2 = nullIntPtr(bostons2)
	return &g, nil
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			switch pqErr.Constraint {
			case "games_tournament_round_team1_key", "games_tournament_round_team2_key", "game_slots_pkey":
				return ErrGameSlotConflict
			case "games_tournament_id_round_table_number_key":
				return ErrGameTableConflict
			}
		case pqForeignKeyViolation:
			return ErrGameTeamInvalid
		case pqCheckViolation:
			return ErrGameScoreRejected
		}
	}
	return err
}
