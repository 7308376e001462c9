package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestHandleGameError(t *testing.T) {
	r := &postgresGameRepository{}
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"team1 slot", &pq.Error{Code: pqUniqueViolation, Constraint: "games_tournament_round_team1_key"}, ErrGameSlotConflict},
		// Команда в разных слотах двух игр одного раунда ловится через game_slots.
		{"cross slot", &pq.Error{Code: pqUniqueViolation, Constraint: "game_slots_pkey"}, ErrGameSlotConflict},
		{"wrapped cross slot", fmt.Errorf("create games: %w", &pq.Error{Code: pqUniqueViolation, Constraint: "game_slots_pkey"}), ErrGameSlotConflict},
		{"table", &pq.Error{Code: pqUniqueViolation, Constraint: "games_tournament_id_round_table_number_key"}, ErrGameTableConflict},
		{"foreign key", &pq.Error{Code: pqForeignKeyViolation, Constraint: "games_team1_id_fkey"}, ErrGameTeamInvalid},
		{"check", &pq.Error{Code: pqCheckViolation, Constraint: "games_score1_check"}, ErrGameScoreRejected},
		{"other", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.handleGameError(tt.err), tt.want)
		})
	}
	assert.NoError(t, r.handleGameError(nil))
}
