package models

import "time"

// BallotStatus представляет статусы бюллетеня, соответствующие ENUM в БД.
type BallotStatus string

const (
	BallotDraft     BallotStatus = "draft"
	BallotSubmitted BallotStatus = "submitted"
)

// Ballot is one judge's complete scoring for a room. At most one ballot
// exists per (room, judge) pair; a ballot is immutable once submitted.
type Ballot struct {
	ID      int `json:"id" db:"id"`
	RoomID  int `json:"room_id" db:"room_id"`
	JudgeID int `json:"judge_id" db:"judge_id"`

	// Rankings maps every seated team to a rank unique within the ballot.
	Rankings map[int]int `json:"rankings" db:"rankings"`
	// SpeakerScores maps a team to its speakers' scores in speaking order.
	SpeakerScores map[int][]float64 `json:"speaker_scores" db:"speaker_scores"`
	TeamFeedback  map[int]string    `json:"team_feedback,omitempty" db:"team_feedback"`
	Feedback      string            `json:"feedback,omitempty" db:"feedback"`

	Status      BallotStatus `json:"status" db:"status"`
	SubmittedAt *time.Time   `json:"submitted_at,omitempty" db:"submitted_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
