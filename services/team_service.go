package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
	"github.com/Dosada05/card-league/utils"
)

type RegisterTeamInput struct {
	Name         string  `json:"name"`
	TeamNumber   *int    `json:"team_number,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

// RegisteredTeam carries the plaintext access code. It is shown once and
// only its hash is stored.
type RegisteredTeam struct {
	models.Team
	AccessCode string `json:"access_code"`
}

type TeamService interface {
	Register(ctx context.Context, tournamentID int, input RegisterTeamInput) (*RegisteredTeam, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	phoneRegion    string
	logger         *slog.Logger
	newAccessCode  func() (string, error)
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	phoneRegion string,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		phoneRegion:    phoneRegion,
		logger:         orDefaultLogger(logger),
		newAccessCode:  utils.GenerateAccessCode,
	}
}

func (s *teamService) Register(ctx context.Context, tournamentID int, input RegisterTeamInput) (*RegisteredTeam, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if input.TeamNumber != nil && *input.TeamNumber < 1 {
		return nil, fmt.Errorf("%w: team number must be positive", ErrValidationFailed)
	}

	email, err := normalizeEmail(input.ContactEmail)
	if err != nil {
		return nil, err
	}
	phone, err := s.normalizePhone(input.ContactPhone)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}

	teamNumber := 0
	if input.TeamNumber != nil {
		teamNumber = *input.TeamNumber
	} else {
		teamNumber, err = s.teamRepo.NextTeamNumber(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("allocate team number: %w", err)
		}
	}

	code, err := s.newAccessCode()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(code)
	if err != nil {
		return nil, fmt.Errorf("hash access code: %w", err)
	}

	team := &models.Team{
		TournamentID:   tournamentID,
		TeamNumber:     teamNumber,
		Name:           name,
		ContactEmail:   email,
		ContactPhone:   phone,
		AccessCodeHash: hash,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, wrapRepositoryError("create team", err)
	}

	s.logger.InfoContext(ctx, "team registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("team_id", team.ID),
		slog.Int("team_number", team.TeamNumber))

	return &RegisteredTeam{Team: *team, AccessCode: code}, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepositoryError("get team", err)
	}
	return team, nil
}

func normalizeEmail(raw *string) (*string, error) {
	value := strings.TrimSpace(derefString(raw))
	if value == "" {
		return nil, nil
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return nil, ErrInvalidEmail
	}
	return &value, nil
}

func (s *teamService) normalizePhone(raw *string) (*string, error) {
	value := strings.TrimSpace(derefString(raw))
	if value == "" {
		return nil, nil
	}
	e164, err := NormalizePhone(value, s.phoneRegion)
	if err != nil {
		return nil, err
	}
	return &e164, nil
}
