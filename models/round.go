package models

import "time"

type RoundType string

const (
	RoundPreliminary RoundType = "preliminary"
	RoundBreak       RoundType = "break"
	RoundSemi        RoundType = "semi"
	RoundFinal       RoundType = "final"
)

// RoundStatus представляет статусы раунда, соответствующие ENUM в БД.
type RoundStatus string

const (
	RoundScheduled  RoundStatus = "scheduled"
	RoundInProgress RoundStatus = "in_progress"
	RoundCompleted  RoundStatus = "completed"
	RoundCancelled  RoundStatus = "cancelled"
)

// Round owns the rooms of one tournament round. Debate counters are
// maintained by the engine; CompletedDebates never exceeds TotalDebates.
type Round struct {
	ID               int         `json:"id" db:"id"`
	TournamentID     int         `json:"tournament_id" db:"tournament_id"`
	Number           int         `json:"number" db:"number"` // 1-based, unique per tournament
	Type             RoundType   `json:"type" db:"type"`
	Status           RoundStatus `json:"status" db:"status"`
	MotionID         *int        `json:"motion_id,omitempty" db:"motion_id"` // external reference
	TotalDebates     int         `json:"total_debates" db:"total_debates"`
	CompletedDebates int         `json:"completed_debates" db:"completed_debates"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`

	Rooms []Room `json:"rooms,omitempty" db:"-"`
}

func (r *Round) IsElimination() bool {
	return r.Type == RoundBreak || r.Type == RoundSemi || r.Type == RoundFinal
}
