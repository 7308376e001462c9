package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OverrideField names a result cell an operator may correct.
type OverrideField string

const (
	FieldWL     OverrideField = "wl"
	FieldPoints OverrideField = "points"
	FieldHands  OverrideField = "hands"
	FieldBoston OverrideField = "boston"
)

// OverrideFields lists the correctable cells in column order.
var OverrideFields = []OverrideField{FieldWL, FieldPoints, FieldHands, FieldBoston}

func (f OverrideField) Valid() bool {
	switch f {
	case FieldWL, FieldPoints, FieldHands, FieldBoston:
		return true
	}
	return false
}

// OverrideValue is an operator-entered cell value. On the wire it may be a
// JSON string or a JSON number; it is kept as the literal text.
type OverrideValue string

func (v *OverrideValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("override value must not be null")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = OverrideValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("override value must be a string or a number: %w", err)
	}
	*v = OverrideValue(n.String())
	return nil
}

// Int reads the leading integer of the value the way a spreadsheet cell
// coerces text: "12", " 12 ", "12.7" and "12pts" give 12, anything without
// leading digits gives 0.
func (v OverrideValue) Int() int {
	s := strings.TrimSpace(string(v))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func (v OverrideValue) String() string {
	return string(v)
}

// Overrides maps composite keys "{teamId}_{round}_{field}" to values.
type Overrides map[string]OverrideValue

// OverrideKey builds the composite key for one cell.
func OverrideKey(teamID, round int, field OverrideField) string {
	return fmt.Sprintf("%d_%d_%s", teamID, round, field)
}

// ParseOverrideKey splits a composite key back into its parts.
func ParseOverrideKey(key string) (teamID, round int, field OverrideField, err error) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 {
		return 0, 0, "", fmt.Errorf("override key %q: expected teamId_round_field", key)
	}
	teamID, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, "", fmt.Errorf("override key %q: invalid team id: %w", key, err)
	}
	round, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, "", fmt.Errorf("override key %q: invalid round: %w", key, err)
	}
	field = OverrideField(parts[2])
	if !field.Valid() {
		return 0, 0, "", fmt.Errorf("override key %q: unknown field %q", key, parts[2])
	}
	return teamID, round, field, nil
}

// Override is one persisted correction.
type Override struct {
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	TeamID       int           `json:"team_id" db:"team_id"`
	Round        int           `json:"round" db:"round"`
	Field        OverrideField `json:"field" db:"field"`
	Value        OverrideValue `json:"value" db:"value"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

func (o Override) Key() string {
	return OverrideKey(o.TeamID, o.Round, o.Field)
}
