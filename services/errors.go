package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrRegistrationNotOpen = errors.New("tournament registration is not open")
	ErrTournamentNotActive = errors.New("tournament is not active")
	ErrTournamentClosed    = errors.New("tournament is completed or canceled")

	// Ошибки конфликтов
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentInUse        = errors.New("tournament still has teams or games")
	ErrTeamNameConflict       = errors.New("team name is already in use in this tournament")
	ErrTeamNumberConflict     = errors.New("team number is already in use in this tournament")
	ErrScheduleAlreadyPlayed  = errors.New("schedule cannot be regenerated after scores were entered")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrOverrideNotFound   = errors.New("override not found")

	// Турниры
	ErrTournamentNameRequired            = errors.New("tournament name is required")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Команды
	ErrTeamNameRequired = errors.New("team name is required")
	ErrInvalidEmail     = errors.New("invalid contact email")
	ErrInvalidPhone     = errors.New("invalid contact phone number")

	// Расписание и игры
	ErrScheduleInvalidRounds  = errors.New("schedule rounds must be at least 1")
	ErrScheduleInvalidTables  = errors.New("not enough tables for one round")
	ErrScheduleNotEnoughTeams = errors.New("at least two teams are required to generate a schedule")
	ErrGameInvalidScore       = errors.New("scores must be non-negative and entered for both teams")
	ErrGameNotScored          = errors.New("game has no result to confirm yet")
	ErrGameSlotConflict       = errors.New("team or table already has a game in this round")
	ErrGameTeamInvalid        = errors.New("game references a team outside this tournament")

	// Поправки
	ErrOverrideInvalidKey   = errors.New("override key must look like teamId_round_field")
	ErrOverrideInvalidRound = errors.New("override round is outside the schedule")
	ErrOverrideUnknownTeam  = errors.New("override names a team outside this tournament")

	// Экспорт и плей-офф
	ErrExportUnavailable  = errors.New("export storage is not configured")
	ErrInvalidPlayoffSize = errors.New("playoff size must be between 2 and the number of teams")
)
