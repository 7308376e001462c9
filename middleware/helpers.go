package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// Определяем константы для имен JWT claims
const (
	jwtClaimRole         = "role"
	jwtClaimTeamID       = "team_id"
	jwtClaimTournamentID = "tournament_id"
)

var ErrNoClaims = errors.New("user claims not found in context or invalid type")

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}

func GetRoleFromContext(ctx context.Context) (Role, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}

	role := Role(roleStr)
	switch role {
	case RoleOperator, RoleTeam:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
}

// GetTeamFromContext returns the team and tournament a portal token is bound to.
func GetTeamFromContext(ctx context.Context) (teamID, tournamentID int, err error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	if teamID, err = intClaim(claims, jwtClaimTeamID); err != nil {
		return 0, 0, err
	}
	if tournamentID, err = intClaim(claims, jwtClaimTournamentID); err != nil {
		return 0, 0, err
	}
	return teamID, tournamentID, nil
}

// intClaim reads a positive integer claim. Decoded JSON numbers arrive as
// float64; freshly built claims hold ints.
func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", name)
	}

	var value int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		value = int(v)
	case int:
		value = v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim: %w", name, err)
		}
		value = n
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected number or string, got %T", name, raw)
	}

	if value <= 0 {
		return 0, fmt.Errorf("invalid value in '%s' claim: %d", name, value)
	}
	return value, nil
}
