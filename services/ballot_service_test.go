package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcore/debate-tab/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func judgingRoom(judgeIDs ...int) *models.Room {
	return &models.Room{
		ID:       1,
		RoundID:  1,
		Format:   models.FormatBP,
		Status:   models.RoomJudging,
		JudgeIDs: judgeIDs,
		Slots: []models.Slot{
			{TeamID: 10, Position: "OG"},
			{TeamID: 20, Position: "OO"},
			{TeamID: 30, Position: "CG"},
			{TeamID: 40, Position: "CO"},
		},
	}
}

func validBPInput() BallotInput {
	return BallotInput{
		Rankings: map[int]int{10: 1, 20: 2, 30: 3, 40: 4},
		SpeakerScores: map[int][]float64{
			10: {78, 77}, 20: {76, 75}, 30: {74, 73}, 40: {72, 71},
		},
	}
}

func TestSubmitBallotRejectsUnassignedJudge(t *testing.T) {
	svc := NewBallotService(newFakeRoomRepo(judgingRoom(5)), newFakeBallotRepo(), &fakeResults{}, testLogger())

	_, err := svc.SubmitBallot(context.Background(), 1, 99, validBPInput())
	assert.ErrorIs(t, err, ErrJudgeNotAssigned)
}

func TestSubmitBallotRejectsWrongRoomState(t *testing.T) {
	room := judgingRoom(5)
	room.Status = models.RoomInProgress
	svc := NewBallotService(newFakeRoomRepo(room), newFakeBallotRepo(), &fakeResults{}, testLogger())

	_, err := svc.SubmitBallot(context.Background(), 1, 5, validBPInput())
	assert.ErrorIs(t, err, ErrRoomNotAcceptingBallots)
}

func TestSubmitBallotValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BallotInput)
		wantErr error
	}{
		{
			name:    "duplicate ranks",
			mutate:  func(in *BallotInput) { in.Rankings[20] = 1 },
			wantErr: ErrDuplicateRanks,
		},
		{
			name:    "rank out of range",
			mutate:  func(in *BallotInput) { in.Rankings[20] = 5 },
			wantErr: ErrDuplicateRanks,
		},
		{
			name:    "missing team",
			mutate:  func(in *BallotInput) { delete(in.Rankings, 30) },
			wantErr: ErrBallotIncomplete,
		},
		{
			name:    "score above range",
			mutate:  func(in *BallotInput) { in.SpeakerScores[10] = []float64{101, 75} },
			wantErr: ErrScoreOutOfRange,
		},
		{
			name:    "score below range",
			mutate:  func(in *BallotInput) { in.SpeakerScores[10] = []float64{49.9, 75} },
			wantErr: ErrScoreOutOfRange,
		},
		{
			name:    "wrong speaker count",
			mutate:  func(in *BallotInput) { in.SpeakerScores[10] = []float64{75} },
			wantErr: ErrBallotIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBallotService(newFakeRoomRepo(judgingRoom(5)), newFakeBallotRepo(), &fakeResults{}, testLogger())
			input := validBPInput()
			tt.mutate(&input)

			_, err := svc.SubmitBallot(context.Background(), 1, 5, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubmitBallotTriggersAggregationWhenAllIn(t *testing.T) {
	results := &fakeResults{}
	svc := NewBallotService(newFakeRoomRepo(judgingRoom(5, 6)), newFakeBallotRepo(), results, testLogger())

	_, err := svc.SubmitBallot(context.Background(), 1, 5, validBPInput())
	require.NoError(t, err)
	assert.Empty(t, results.calls, "aggregation must wait for the last judge")

	second := BallotInput{
		Rankings: map[int]int{10: 2, 20: 1, 30: 4, 40: 3},
		SpeakerScores: map[int][]float64{
			10: {77, 76}, 20: {79, 78}, 30: {72, 71}, 40: {74, 73},
		},
	}
	ballot, err := svc.SubmitBallot(context.Background(), 1, 6, second)
	require.NoError(t, err)
	assert.Equal(t, models.BallotSubmitted, ballot.Status)
	assert.Equal(t, []int{1}, results.calls)
}

func TestSubmitBallotImmutableOnceSubmitted(t *testing.T) {
	svc := NewBallotService(newFakeRoomRepo(judgingRoom(5, 6)), newFakeBallotRepo(), &fakeResults{}, testLogger())

	_, err := svc.SubmitBallot(context.Background(), 1, 5, validBPInput())
	require.NoError(t, err)

	_, err = svc.SubmitBallot(context.Background(), 1, 5, validBPInput())
	assert.ErrorIs(t, err, ErrBallotAlreadySubmitted)
}

func TestGetBallotStatus(t *testing.T) {
	ballots := newFakeBallotRepo()
	svc := NewBallotService(newFakeRoomRepo(judgingRoom(5, 6)), ballots, &fakeResults{}, testLogger())

	status, err := svc.GetBallotStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, status.SubmittedCount)
	assert.Equal(t, 2, status.TotalJudges)
	assert.False(t, status.IsComplete)

	_, err = svc.SubmitBallot(context.Background(), 1, 5, validBPInput())
	require.NoError(t, err)

	status, err = svc.GetBallotStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, status.SubmittedCount)
	assert.False(t, status.IsComplete)
}
