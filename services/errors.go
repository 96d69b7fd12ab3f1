package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrJudgeNotFound      = errors.New("judge not found")
	ErrBallotNotFound     = errors.New("ballot not found")

	// Нарушения предусловий: состояние не записывается.
	ErrDrawAlreadyExists    = errors.New("draw already exists for this round")
	ErrDrawLocked           = errors.New("draw has recorded results and cannot be deleted")
	ErrInsufficientTeams    = errors.New("not enough confirmed teams for a draw")
	ErrTournamentNotActive  = errors.New("tournament is not active")
	ErrPrelimsIncomplete    = errors.New("preliminary rounds are not all completed")
	ErrBreakNotAnnounced    = errors.New("break has not been announced")
	ErrBreakAlreadyDone     = errors.New("break has already been announced")
	ErrPriorStageIncomplete = errors.New("prior bracket stage is not completed")
	ErrBracketStageExists   = errors.New("bracket stage already generated")
	ErrChampionUndecided    = errors.New("grand final has no recorded rank-1 result")

	// Нарушения валидации бюллетеня.
	ErrRoomNotAcceptingBallots = errors.New("room is not accepting ballots")
	ErrJudgeNotAssigned        = errors.New("judge is not assigned to this room")
	ErrBallotIncomplete        = errors.New("ballot is missing rankings or speaker scores")
	ErrDuplicateRanks          = errors.New("ballot contains duplicate ranks")
	ErrScoreOutOfRange         = errors.New("speaker score outside the format range")
	ErrBallotAlreadySubmitted  = errors.New("ballot has already been submitted")

	// Ошибки конфликтов
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrRoundNumberConflict    = errors.New("round number already exists for this tournament")

	// Ошибки аутентификации и авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки настройки турнира
	ErrInvalidFormat        = errors.New("unknown debate format")
	ErrInvalidBreakSize     = errors.New("breaking teams must be at least two")
	ErrInvalidPrelimRounds  = errors.New("at least one preliminary round is required")
	ErrTournamentNameNeeded = errors.New("tournament name is required")

	// Экспорт не настроен (нет учётных данных R2).
	ErrExportUnavailable = errors.New("standings export is not configured")
)
