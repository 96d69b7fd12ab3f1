package models

import "time"

// TeamStatus представляет статусы команды, соответствующие ENUM в БД.
type TeamStatus string

const (
	TeamStatusPending   TeamStatus = "pending"
	TeamStatusConfirmed TeamStatus = "confirmed"
	TeamStatusWithdrawn TeamStatus = "withdrawn"
)

// Team is a registered debate team. Teams are created externally at
// registration and are never deleted, only withdrawn. Cumulative totals are
// written exclusively through the results service.
type Team struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Name         string     `json:"name" db:"name"`
	Institution  string     `json:"institution" db:"institution"`
	Members      []string   `json:"members" db:"members"` // ordered, 2 or 3 depending on format
	TotalPoints  int        `json:"total_points" db:"total_points"`
	TotalSpeaks  float64    `json:"total_speaks" db:"total_speaks"`
	Breaking     bool       `json:"breaking" db:"breaking"`
	Status       TeamStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
