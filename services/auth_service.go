package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/card-league/utils"
)

// AuthService signs the league operator in.
type AuthService interface {
	Login(ctx context.Context, password string) (*Session, error)
}

type authService struct {
	passwordHash string
	tokens       TokenIssuer
	logger       *slog.Logger
}

func NewAuthService(passwordHash string, tokens TokenIssuer, logger *slog.Logger) AuthService {
	return &authService{passwordHash: passwordHash, tokens: tokens, logger: orDefaultLogger(logger)}
}

func (s *authService) Login(ctx context.Context, password string) (*Session, error) {
	if password == "" || !utils.CheckPasswordHash(password, s.passwordHash) {
		s.logger.WarnContext(ctx, "operator login rejected")
		return nil, ErrAuthenticationFailed
	}
	token, expiresAt, err := s.tokens.IssueOperator()
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}
