package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
	"github.com/Dosada05/card-league/standings"
	"github.com/Dosada05/card-league/utils"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	IssueOperator() (string, time.Time, error)
	IssueTeam(teamID, tournamentID int) (string, time.Time, error)
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Team      *models.Team `json:"team,omitempty"`
}

// TeamStanding is the portal view: the full table plus the team's place in it.
type TeamStanding struct {
	TeamID   int                     `json:"team_id"`
	Rank     int                     `json:"rank"`
	Totals   standings.Totals        `json:"totals"`
	Rounds   []standings.RoundResult `json:"rounds"`
	Standing *standings.Result       `json:"standings"`
}

type PortalService interface {
	Login(ctx context.Context, tournamentID, teamNumber int, accessCode string) (*Session, error)
	Standings(ctx context.Context, tournamentID, teamID int) (*TeamStanding, error)
	Games(ctx context.Context, tournamentID, teamID int) ([]models.Game, error)
	Confirm(ctx context.Context, tournamentID, teamID, gameID int) (*models.Game, error)
}

type portalService struct {
	teamRepo  repositories.TeamRepository
	standings StandingsService
	games     GameService
	tokens    TokenIssuer
	logger    *slog.Logger
}

func NewPortalService(
	teamRepo repositories.TeamRepository,
	standingsService StandingsService,
	gameService GameService,
	tokens TokenIssuer,
	logger *slog.Logger,
) PortalService {
	return &portalService{
		teamRepo:  teamRepo,
		standings: standingsService,
		games:     gameService,
		tokens:    tokens,
		logger:    orDefaultLogger(logger),
	}
}

func (s *portalService) Login(ctx context.Context, tournamentID, teamNumber int, accessCode string) (*Session, error) {
	team, err := s.teamRepo.GetByNumber(ctx, tournamentID, teamNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, wrapRepositoryError("get team", err)
	}
	if !utils.CheckPasswordHash(utils.NormalizeAccessCode(accessCode), team.AccessCodeHash) {
		s.logger.WarnContext(ctx, "portal login rejected", slog.Int("tournament_id", tournamentID), slog.Int("team_number", teamNumber))
		return nil, ErrAuthenticationFailed
	}

	token, expiresAt, err := s.tokens.IssueTeam(team.ID, tournamentID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "portal login", slog.Int("tournament_id", tournamentID), slog.Int("team_id", team.ID))
	return &Session{Token: token, ExpiresAt: expiresAt, Team: team}, nil
}

func (s *portalService) Standings(ctx context.Context, tournamentID, teamID int) (*TeamStanding, error) {
	res, err := s.standings.Compute(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	rank := 0
	for i, t := range res.Teams {
		if t.ID == teamID {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		return nil, ErrTeamNotFound
	}

	rounds := make([]standings.RoundResult, res.NumRounds)
	for r := 1; r <= res.NumRounds; r++ {
		rounds[r-1] = res.Matrix.Cell(teamID, r)
	}
	return &TeamStanding{
		TeamID:   teamID,
		Rank:     rank,
		Totals:   res.Matrix.Totals(teamID),
		Rounds:   rounds,
		Standing: res,
	}, nil
}

func (s *portalService) Games(ctx context.Context, tournamentID, teamID int) ([]models.Game, error) {
	return s.games.ListForTeam(ctx, tournamentID, teamID)
}

func (s *portalService) Confirm(ctx context.Context, tournamentID, teamID, gameID int) (*models.Game, error) {
	return s.games.Confirm(ctx, tournamentID, teamID, gameID)
}
