package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBPRoom() *Room {
	return &Room{
		ID:      1,
		RoundID: 1,
		Format:  FormatBP,
		Slots: []Slot{
			{TeamID: 10, Position: "OG"},
			{TeamID: 20, Position: "OO"},
			{TeamID: 30, Position: "CG"},
			{TeamID: 40, Position: "CO"},
		},
		Status:            RoomScheduled,
		PrepDurationSec:   900,
		SpeechDurationSec: 420,
	}
}

func TestRoom_StartPrep(t *testing.T) {
	room := newBPRoom()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, room.StartPrep(now))
	assert.Equal(t, RoomPrep, room.Status)
	assert.Equal(t, now, *room.PrepStartTime)
	assert.Equal(t, 8, room.TotalSpeeches)

	err := room.StartPrep(now)
	require.ErrorIs(t, err, ErrRoomInvalidTransition)
}

func TestRoom_StartDebate_FirstSpeaker(t *testing.T) {
	room := newBPRoom()
	now := time.Now()
	require.NoError(t, room.StartPrep(now))
	require.NoError(t, room.StartDebate(now))

	assert.Equal(t, RoomInProgress, room.Status)
	assert.Equal(t, 1, room.CurrentSpeechNumber)
	require.NotNil(t, room.CurrentSpeaker)
	assert.Equal(t, 10, room.CurrentSpeaker.TeamID) // first member of OG opens
	assert.Equal(t, 0, room.CurrentSpeaker.SpeakerIndex)
	require.NotNil(t, room.SpeechDeadline)
	assert.Equal(t, now.Add(420*time.Second), *room.SpeechDeadline)
}

func TestRoom_StartDebate_RequiresPrep(t *testing.T) {
	room := newBPRoom()
	err := room.StartDebate(time.Now())
	require.ErrorIs(t, err, ErrRoomInvalidTransition)
}

func TestRoom_SpeechOrderBP(t *testing.T) {
	room := newBPRoom()
	now := time.Now()
	require.NoError(t, room.StartPrep(now))
	require.NoError(t, room.StartDebate(now))

	// OG1, OO1, OG2, OO2, CG1, CO1, CG2, CO2
	wantTeams := []int{10, 20, 10, 20, 30, 40, 30, 40}
	wantSpeakers := []int{0, 0, 1, 1, 0, 0, 1, 1}

	for i := 0; i < 8; i++ {
		require.NotNil(t, room.CurrentSpeaker, "speech %d", i+1)
		assert.Equal(t, wantTeams[i], room.CurrentSpeaker.TeamID, "speech %d team", i+1)
		assert.Equal(t, wantSpeakers[i], room.CurrentSpeaker.SpeakerIndex, "speech %d speaker", i+1)
		require.NoError(t, room.AdvanceSpeech(now))
	}
	assert.Equal(t, RoomSubmitted, room.Status)
}

func TestRoom_SpeechOrderWSDC(t *testing.T) {
	room := &Room{
		Format: FormatWSDC,
		Slots: []Slot{
			{TeamID: 1, Position: "Proposition"},
			{TeamID: 2, Position: "Opposition"},
		},
		Status:            RoomScheduled,
		SpeechDurationSec: 480,
	}
	now := time.Now()
	require.NoError(t, room.StartPrep(now))
	require.NoError(t, room.StartDebate(now))
	require.Equal(t, 6, room.TotalSpeeches)

	wantTeams := []int{1, 2, 1, 2, 1, 2}
	wantSpeakers := []int{0, 0, 1, 1, 2, 2}
	for i := 0; i < 6; i++ {
		require.NotNil(t, room.CurrentSpeaker)
		assert.Equal(t, wantTeams[i], room.CurrentSpeaker.TeamID)
		assert.Equal(t, wantSpeakers[i], room.CurrentSpeaker.SpeakerIndex)
		require.NoError(t, room.AdvanceSpeech(now))
	}
	assert.Equal(t, RoomSubmitted, room.Status)
}

func TestRoom_LastSpeechAdvanceSubmits(t *testing.T) {
	room := newBPRoom()
	now := time.Now()
	require.NoError(t, room.StartPrep(now))
	require.NoError(t, room.StartDebate(now))

	room.CurrentSpeechNumber = room.TotalSpeeches

	require.NoError(t, room.AdvanceSpeech(now))
	assert.Equal(t, RoomSubmitted, room.Status)
	assert.Nil(t, room.CurrentSpeaker)
	assert.Nil(t, room.SpeechDeadline)
}

func TestRoom_Tick(t *testing.T) {
	room := newBPRoom()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, room.StartPrep(start))

	// Prep still running: tick is a no-op.
	changed, err := room.Tick(start.Add(5 * time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, RoomPrep, room.Status)

	// Prep elapsed: the debate starts.
	changed, err = room.Tick(start.Add(16 * time.Minute))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, RoomInProgress, room.Status)
	assert.Equal(t, 1, room.CurrentSpeechNumber)

	// Repeated ticks before the speech deadline do not double-advance.
	deadline := *room.SpeechDeadline
	for i := 0; i < 3; i++ {
		changed, err = room.Tick(deadline.Add(-time.Second))
		require.NoError(t, err)
		assert.False(t, changed)
	}
	assert.Equal(t, 1, room.CurrentSpeechNumber)

	changed, err = room.Tick(deadline)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, room.CurrentSpeechNumber)
}

func TestRoom_JudgingAndComplete(t *testing.T) {
	room := newBPRoom()
	now := time.Now()
	require.NoError(t, room.StartPrep(now))
	require.NoError(t, room.StartDebate(now))

	// Operator can send an in-progress room to judging directly.
	require.NoError(t, room.MarkJudging())
	assert.Equal(t, RoomJudging, room.Status)
	assert.Nil(t, room.CurrentSpeaker)

	require.NoError(t, room.Complete())
	assert.Equal(t, RoomCompleted, room.Status)

	err := room.Complete()
	require.ErrorIs(t, err, ErrRoomInvalidTransition)
	err = room.Cancel()
	require.ErrorIs(t, err, ErrRoomInvalidTransition)
}

func TestRoom_TeamHelpers(t *testing.T) {
	room := newBPRoom()
	room.Slots[3].IsBye = true
	room.Slots[3].TeamID = 0

	assert.Equal(t, 3, room.TeamCount())
	assert.Equal(t, []int{10, 20, 30}, room.TeamIDs())

	slot, ok := room.SlotByTeam(20)
	require.True(t, ok)
	assert.Equal(t, "OO", slot.Position)

	_, ok = room.SlotByTeam(0)
	assert.False(t, ok)
}
