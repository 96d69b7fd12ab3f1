package pairing

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcore/debate-tab/models"
)

func rankedTeams(n int) []*models.Team {
	teams := make([]*models.Team, 0, n)
	for i := 1; i <= n; i++ {
		teams = append(teams, &models.Team{ID: i, Name: fmt.Sprintf("Seed %d", i)})
	}
	return teams
}

func groupIDs(group []*models.Team) []int {
	ids := make([]int, 0, len(group))
	for _, team := range group {
		if team == nil {
			ids = append(ids, 0)
			continue
		}
		ids = append(ids, team.ID)
	}
	return ids
}

func TestSeedQuarterfinals_EightTeamCrossBracket(t *testing.T) {
	groups, err := SeedQuarterfinals(rankedTeams(8), models.FormatBP)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{1, 4, 5, 8}, groupIDs(groups[0]))
	assert.Equal(t, []int{2, 3, 6, 7}, groupIDs(groups[1]))
}

func TestSeedQuarterfinals_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		teams int
		want  [][]int
	}{
		{name: "two teams direct final", teams: 2, want: [][]int{{1, 2, 0, 0}}},
		{name: "three teams semifinal with bye", teams: 3, want: [][]int{{1, 2, 3, 0}}},
		{name: "five teams single combined room", teams: 5, want: [][]int{{1, 2, 3, 4}}},
		{name: "seven teams single combined room", teams: 7, want: [][]int{{1, 2, 3, 4}}},
		{name: "nine teams still two rooms of top eight", teams: 9, want: [][]int{{1, 4, 5, 8}, {2, 3, 6, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := SeedQuarterfinals(rankedTeams(tt.teams), models.FormatBP)
			require.NoError(t, err)
			require.Len(t, groups, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], groupIDs(groups[i]))
			}
		})
	}
}

func TestSeedQuarterfinals_TooFew(t *testing.T) {
	_, err := SeedQuarterfinals(rankedTeams(1), models.FormatBP)
	require.ErrorIs(t, err, ErrTooFewBreakingTeams)
}

func TestSeedQuarterfinals_TwoTeamFormatFolds(t *testing.T) {
	groups, err := SeedQuarterfinals(rankedTeams(8), models.FormatWSDC)
	require.NoError(t, err)
	require.Len(t, groups, 4)
	assert.Equal(t, []int{1, 8}, groupIDs(groups[0]))
	assert.Equal(t, []int{4, 5}, groupIDs(groups[1]))
	assert.Equal(t, []int{2, 7}, groupIDs(groups[2]))
	assert.Equal(t, []int{3, 6}, groupIDs(groups[3]))
}

func TestRoomsFromSeeds_ByeSlots(t *testing.T) {
	groups, err := SeedQuarterfinals(rankedTeams(3), models.FormatBP)
	require.NoError(t, err)

	rooms := RoomsFromSeeds(groups, models.FormatBP)
	require.Len(t, rooms, 1)
	require.Len(t, rooms[0].Slots, 4)
	assert.True(t, rooms[0].Slots[3].IsBye)
	assert.Equal(t, 3, rooms[0].TeamCount())
	assert.Equal(t, []int{1, 2, 3}, rooms[0].TeamIDs())
}

func TestTopFromRoom(t *testing.T) {
	rank := func(n int) *int { return &n }
	room := &models.Room{
		ID:     7,
		Format: models.FormatBP,
		Slots: []models.Slot{
			{TeamID: 11, Position: "OG", Rank: rank(3)},
			{TeamID: 12, Position: "OO", Rank: rank(1)},
			{TeamID: 13, Position: "CG", Rank: rank(4)},
			{TeamID: 14, Position: "CO", Rank: rank(2)},
		},
	}

	top, err := TopFromRoom(room, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{12, 14}, top)

	room.Slots[1].Rank = nil
	_, err = TopFromRoom(room, 2)
	require.ErrorIs(t, err, ErrRoomNotRanked)
}

func TestTopFromRoom_CapsAtRankedSeats(t *testing.T) {
	rank := func(n int) *int { return &n }
	room := &models.Room{
		ID:     8,
		Format: models.FormatBP,
		Slots: []models.Slot{
			{TeamID: 21, Position: "OG", Rank: rank(2)},
			{TeamID: 22, Position: "OO", Rank: rank(1)},
			{TeamID: 23, Position: "CG", Rank: rank(3)},
			{IsBye: true, Position: "CO"},
		},
	}

	// Запрос больше, чем занятых мест: отдаём всех по порядку результата.
	top, err := TopFromRoom(room, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{22, 21, 23}, top)

	empty := &models.Room{ID: 9, Format: models.FormatBP, Slots: []models.Slot{{IsBye: true}}}
	_, err = TopFromRoom(empty, 1)
	require.Error(t, err)
}
