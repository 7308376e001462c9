package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/card-league/brackets"
	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/models"
	"github.com/Dosada05/card-league/repositories"
)

const notificationTimeout = 30 * time.Second

// ScoreInput is what an operator enters for one table. Both scores must be
// set together; leaving both nil clears the result.
type ScoreInput struct {
	Score1   *int `json:"score1"`
	Score2   *int `json:"score2"`
	Hands1   *int `json:"hands1,omitempty"`
	Hands2   *int `json:"hands2,omitempty"`
	Bostons1 *int `json:"bostons1,omitempty"`
	Bostons2 *int `json:"bostons2,omitempty"`
}

type GameService interface {
	ListByTournament(ctx context.Context, tournamentID int, round *int) ([]models.Game, error)
	ListForTeam(ctx context.Context, tournamentID, teamID int) ([]models.Game, error)
	EnterScore(ctx context.Context, gameID int, input ScoreInput) (*models.Game, error)
	// Confirm records that a team agrees with the entered result of its game.
	Confirm(ctx context.Context, tournamentID, teamID, gameID int) (*models.Game, error)
}

type gameService struct {
	gameRepo       repositories.GameRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	standings      StandingsService
	notifier       NotificationService
	hub            Broadcaster
	metrics        *metrics.Metrics
	logger         *slog.Logger

	// spawn runs background work; tests replace it to run inline.
	spawn func(func())
}

func NewGameService(
	gameRepo repositories.GameRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	standingsService StandingsService,
	notifier NotificationService,
	hub Broadcaster,
	m *metrics.Metrics,
	logger *slog.Logger,
) GameService {
	return &gameService{
		gameRepo:       gameRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		standings:      standingsService,
		notifier:       notifier,
		hub:            orNopBroadcaster(hub),
		metrics:        m,
		logger:         orDefaultLogger(logger),
		spawn:          func(f func()) { go f() },
	}
}

func (s *gameService) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]models.Game, error) {
	if round != nil && *round < 1 {
		return nil, fmt.Errorf("%w: round must be positive", ErrValidationFailed)
	}
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	games, err := s.gameRepo.ListByTournament(ctx, tournamentID, repositories.ListGamesFilter{Round: round})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *gameService) ListForTeam(ctx context.Context, tournamentID, teamID int) ([]models.Game, error) {
	games, err := s.gameRepo.ListByTournament(ctx, tournamentID, repositories.ListGamesFilter{TeamID: &teamID})
	if err != nil {
		return nil, fmt.Errorf("list games for team %d: %w", teamID, err)
	}
	return games, nil
}

func (s *gameService) EnterScore(ctx context.Context, gameID int, input ScoreInput) (*models.Game, error) {
	if err := validateScore(input); err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, wrapRepositoryError("get game", err)
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, game.TournamentID)
	if err != nil {
		return nil, wrapRepositoryError("get tournament", err)
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	status := models.GameStatusScheduled
	if input.Score1 != nil {
		status = models.GameStatusCompleted
	}
	updated, err := s.gameRepo.UpdateScore(ctx, gameID, repositories.ScoreUpdate{
		Score1:   input.Score1,
		Score2:   input.Score2,
		Hands1:   input.Hands1,
		Hands2:   input.Hands2,
		Bostons1: input.Bostons1,
		Bostons2: input.Bostons2,
		Status:   status,
	})
	if err != nil {
		return nil, wrapRepositoryError("update score", err)
	}

	s.metrics.ObserveScoreEntered()
	s.logger.InfoContext(ctx, "score entered",
		slog.Int("tournament_id", updated.TournamentID),
		slog.Int("game_id", updated.ID),
		slog.Int("round", updated.Round))

	s.hub.NotifyTournament(updated.TournamentID, brackets.MessageGameUpdated, updated)
	s.standings.Publish(ctx, updated.TournamentID)

	if loser, ok := losingTeam(*updated); ok {
		snapshot := *updated
		s.spawn(func() {
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
			defer cancel()
			s.notifyNextMatch(nctx, snapshot, loser)
		})
	}
	return updated, nil
}

func (s *gameService) Confirm(ctx context.Context, tournamentID, teamID, gameID int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, wrapRepositoryError("get game", err)
	}
	if game.TournamentID != tournamentID || !game.Involves(teamID) {
		return nil, ErrForbiddenOperation
	}
	if !game.Played() {
		return nil, ErrGameNotScored
	}

	slot := 1
	confirmed := game.Team1Confirmed
	if game.Team2ID == teamID {
		slot = 2
		confirmed = game.Team2Confirmed
	}
	if confirmed {
		return game, nil
	}

	updated, err := s.gameRepo.SetConfirmed(ctx, gameID, slot)
	if err != nil {
		return nil, wrapRepositoryError("confirm game", err)
	}
	s.logger.InfoContext(ctx, "result confirmed", slog.Int("game_id", gameID), slog.Int("team_id", teamID))
	s.hub.NotifyTournament(tournamentID, brackets.MessageGameUpdated, updated)
	return updated, nil
}

// notifyNextMatch tells the losing team of game where it plays next.
func (s *gameService) notifyNextMatch(ctx context.Context, game models.Game, loserID int) {
	team, err := s.teamRepo.GetByID(ctx, loserID)
	if err != nil {
		s.logger.WarnContext(ctx, "next match notification: team lookup failed", slog.Int("team_id", loserID), slog.Any("error", err))
		return
	}
	games, err := s.gameRepo.ListByTournament(ctx, game.TournamentID, repositories.ListGamesFilter{TeamID: &loserID})
	if err != nil {
		s.logger.WarnContext(ctx, "next match notification: games lookup failed", slog.Int("team_id", loserID), slog.Any("error", err))
		return
	}

	var next *models.Game
	for i := range games {
		if games[i].Round > game.Round && (next == nil || games[i].Round < next.Round) {
			next = &games[i]
		}
	}

	var opponent *models.Team
	if next != nil {
		if opp, err := s.teamRepo.GetByID(ctx, next.Opponent(loserID)); err == nil {
			opponent = opp
		}
	}

	results := s.notifier.NotifyNextMatch(ctx, *team, next, opponent)
	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}
	s.logger.InfoContext(ctx, "next match notification sent",
		slog.Int("team_id", loserID),
		slog.Int("recipients", len(results)),
		slog.Int("failed", failed))
}

func validateScore(in ScoreInput) error {
	if (in.Score1 == nil) != (in.Score2 == nil) {
		return ErrGameInvalidScore
	}
	for _, v := range []*int{in.Score1, in.Score2, in.Hands1, in.Hands2, in.Bostons1, in.Bostons2} {
		if v != nil && *v < 0 {
			return ErrGameInvalidScore
		}
	}
	return nil
}

// losingTeam returns the team with the lower score of a played game.
func losingTeam(g models.Game) (int, bool) {
	if !g.Played() || *g.Score1 == *g.Score2 {
		return 0, false
	}
	if *g.Score1 < *g.Score2 {
		return g.Team1ID, true
	}
	return g.Team2ID, true
}
