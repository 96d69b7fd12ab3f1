package models

import (
	"errors"
	"fmt"
	"time"
)

// RoomStatus представляет статусы комнаты, соответствующие ENUM в БД.
type RoomStatus string

const (
	RoomScheduled  RoomStatus = "scheduled"
	RoomPrep       RoomStatus = "prep"
	RoomInProgress RoomStatus = "in_progress"
	RoomSubmitted  RoomStatus = "submitted"
	RoomJudging    RoomStatus = "judging"
	RoomCompleted  RoomStatus = "completed"
	RoomCancelled  RoomStatus = "cancelled"
)

var (
	ErrRoomInvalidTransition = errors.New("invalid room status transition")
	ErrRoomCancelled         = errors.New("room is cancelled")
)

// Slot is one seat of a room: a team at a position, plus the judged result
// once the room is completed. IsBye marks a placeholder seat in degenerate
// elimination rooms; bye slots never receive a rank or scores.
type Slot struct {
	TeamID        int       `json:"team_id"`
	Position      string    `json:"position"`
	IsBye         bool      `json:"is_bye,omitempty"`
	Rank          *int      `json:"rank,omitempty"`
	Points        *int      `json:"points,omitempty"`
	TotalSpeaks   *float64  `json:"total_speaks,omitempty"`
	SpeakerScores []float64 `json:"speaker_scores,omitempty"`
}

// Speaker identifies who currently holds the floor.
type Speaker struct {
	TeamID       int `json:"team_id"`
	SlotIndex    int `json:"slot_index"`
	SpeakerIndex int `json:"speaker_index"`
}

// Room is a single debate instance. Timing transitions are driven by
// polling: callers re-invoke Tick at any cadence and the room advances at
// most once per elapsed deadline.
type Room struct {
	ID      int          `json:"id" db:"id"`
	RoundID int          `json:"round_id" db:"round_id"`
	Format  DebateFormat `json:"format" db:"format"`
	Slots   []Slot       `json:"slots" db:"slots"`

	JudgeIDs     []int `json:"judge_ids" db:"judge_ids"`
	ChairJudgeID *int  `json:"chair_judge_id,omitempty" db:"chair_judge_id"`

	Status              RoomStatus `json:"status" db:"status"`
	PrepStartTime       *time.Time `json:"prep_start_time,omitempty" db:"prep_start_time"`
	PrepDurationSec     int        `json:"prep_duration_sec" db:"prep_duration_sec"`
	DebateStartTime     *time.Time `json:"debate_start_time,omitempty" db:"debate_start_time"`
	SpeechDurationSec   int        `json:"speech_duration_sec" db:"speech_duration_sec"`
	CurrentSpeechNumber int        `json:"current_speech_number" db:"current_speech_number"`
	CurrentSpeaker      *Speaker   `json:"current_speaker,omitempty" db:"current_speaker"`
	SpeechDeadline      *time.Time `json:"speech_deadline,omitempty" db:"speech_deadline"`
	TotalSpeeches       int        `json:"total_speeches" db:"total_speeches"`

	HasResults bool      `json:"has_results" db:"has_results"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// TeamCount counts real (non-bye) seats.
func (r *Room) TeamCount() int {
	n := 0
	for i := range r.Slots {
		if !r.Slots[i].IsBye {
			n++
		}
	}
	return n
}

// TeamIDs returns the seated team IDs in slot order, byes excluded.
func (r *Room) TeamIDs() []int {
	ids := make([]int, 0, len(r.Slots))
	for i := range r.Slots {
		if !r.Slots[i].IsBye {
			ids = append(ids, r.Slots[i].TeamID)
		}
	}
	return ids
}

func (r *Room) SlotByTeam(teamID int) (*Slot, bool) {
	for i := range r.Slots {
		if !r.Slots[i].IsBye && r.Slots[i].TeamID == teamID {
			return &r.Slots[i], true
		}
	}
	return nil, false
}

// StartPrep moves the room from scheduled to prep and starts the prep clock.
func (r *Room) StartPrep(now time.Time) error {
	if r.Status != RoomScheduled {
		return fmt.Errorf("%w: cannot start prep from %q", ErrRoomInvalidTransition, r.Status)
	}
	r.Status = RoomPrep
	r.PrepStartTime = &now
	r.TotalSpeeches = r.Format.TotalSpeeches()
	return nil
}

// StartDebate moves the room from prep to in_progress: speech 1 begins and
// the first speaker (first member of the first-position team) gets the floor.
func (r *Room) StartDebate(now time.Time) error {
	if r.Status != RoomPrep {
		return fmt.Errorf("%w: cannot start debate from %q", ErrRoomInvalidTransition, r.Status)
	}
	if r.TotalSpeeches == 0 {
		r.TotalSpeeches = r.Format.TotalSpeeches()
	}
	r.Status = RoomInProgress
	r.DebateStartTime = &now
	r.CurrentSpeechNumber = 1
	r.CurrentSpeaker = r.speakerFor(1)
	deadline := now.Add(time.Duration(r.SpeechDurationSec) * time.Second)
	r.SpeechDeadline = &deadline
	return nil
}

// AdvanceSpeech moves the floor to the next speech. Past the last speech the
// room transitions to submitted and the speaker and deadline are cleared.
func (r *Room) AdvanceSpeech(now time.Time) error {
	if r.Status != RoomInProgress {
		return fmt.Errorf("%w: cannot advance speech from %q", ErrRoomInvalidTransition, r.Status)
	}
	r.CurrentSpeechNumber++
	if r.CurrentSpeechNumber > r.TotalSpeeches {
		r.Status = RoomSubmitted
		r.CurrentSpeaker = nil
		r.SpeechDeadline = nil
		return nil
	}
	r.CurrentSpeaker = r.speakerFor(r.CurrentSpeechNumber)
	deadline := now.Add(time.Duration(r.SpeechDurationSec) * time.Second)
	r.SpeechDeadline = &deadline
	return nil
}

// Tick advances the room clock if a deadline has passed. It is safe to call
// at any cadence: a tick with no elapsed deadline is a no-op. Returns whether
// the room changed.
func (r *Room) Tick(now time.Time) (bool, error) {
	switch r.Status {
	case RoomPrep:
		if r.PrepStartTime == nil {
			return false, nil
		}
		prepEnd := r.PrepStartTime.Add(time.Duration(r.PrepDurationSec) * time.Second)
		if now.Before(prepEnd) {
			return false, nil
		}
		return true, r.StartDebate(now)
	case RoomInProgress:
		if r.SpeechDeadline == nil || now.Before(*r.SpeechDeadline) {
			return false, nil
		}
		return true, r.AdvanceSpeech(now)
	default:
		return false, nil
	}
}

// MarkJudging hands the room over to the judges; an explicit operator
// action, independent of the timer.
func (r *Room) MarkJudging() error {
	if r.Status != RoomInProgress && r.Status != RoomSubmitted {
		return fmt.Errorf("%w: cannot mark judging from %q", ErrRoomInvalidTransition, r.Status)
	}
	r.Status = RoomJudging
	r.CurrentSpeaker = nil
	r.SpeechDeadline = nil
	return nil
}

// Complete finalizes the room once the aggregator has written results.
func (r *Room) Complete() error {
	if r.Status != RoomSubmitted && r.Status != RoomJudging {
		return fmt.Errorf("%w: cannot complete from %q", ErrRoomInvalidTransition, r.Status)
	}
	r.Status = RoomCompleted
	return nil
}

// Cancel is a side exit reachable from any pre-completion state.
func (r *Room) Cancel() error {
	if r.Status == RoomCompleted {
		return fmt.Errorf("%w: cannot cancel a completed room", ErrRoomInvalidTransition)
	}
	if r.Status == RoomCancelled {
		return ErrRoomCancelled
	}
	r.Status = RoomCancelled
	r.CurrentSpeaker = nil
	r.SpeechDeadline = nil
	return nil
}

func (r *Room) speakerFor(speechNumber int) *Speaker {
	order := r.Format.SpeechOrder()
	if speechNumber < 1 || speechNumber > len(order) {
		return nil
	}
	turn := order[speechNumber-1]
	if turn.SlotIndex >= len(r.Slots) {
		return nil
	}
	return &Speaker{
		TeamID:       r.Slots[turn.SlotIndex].TeamID,
		SlotIndex:    turn.SlotIndex,
		SpeakerIndex: turn.SpeakerIndex,
	}
}
