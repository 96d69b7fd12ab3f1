package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	TournamentSetup     TournamentStatus = "setup"
	TournamentActive    TournamentStatus = "active"
	TournamentBreak     TournamentStatus = "break"
	TournamentCompleted TournamentStatus = "completed"
)

// Tournament представляет турнир.
type Tournament struct {
	ID             int              `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Format         DebateFormat     `json:"format" db:"format"`
	Status         TournamentStatus `json:"status" db:"status"`
	BreakingTeams  int              `json:"breaking_teams" db:"breaking_teams"`
	ChampionTeamID *int             `json:"champion_team_id,omitempty" db:"champion_team_id"`
	OrganizerID    int              `json:"organizer_id" db:"organizer_id"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Teams  []Team  `json:"teams,omitempty" db:"-"`
	Rounds []Round `json:"rounds,omitempty" db:"-"`
}
