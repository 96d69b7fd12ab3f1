package standings

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcore/debate-tab/models"
)

func rankPtr(n int) *int { return &n }

func completedRoom(id int, teamRanks map[int]int) *models.Room {
	room := &models.Room{ID: id, Format: models.FormatBP, HasResults: true, Status: models.RoomCompleted}
	positions := []string{"OG", "OO", "CG", "CO"}
	// Deterministic slot order: ascending team ID.
	ordered := make([]int, 0, len(teamRanks))
	for teamID := range teamRanks {
		ordered = append(ordered, teamID)
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j] < ordered[i] {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	for idx, teamID := range ordered {
		room.Slots = append(room.Slots, models.Slot{
			TeamID:   teamID,
			Position: positions[idx%len(positions)],
			Rank:     rankPtr(teamRanks[teamID]),
		})
	}
	return room
}

func TestResolve_PointsDominate(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Low", TotalPoints: 3, TotalSpeaks: 500},
		{ID: 2, Name: "High", TotalPoints: 9, TotalSpeaks: 400},
		{ID: 3, Name: "Mid", TotalPoints: 6, TotalSpeaks: 450},
	}

	result := Resolve(teams, nil, rand.New(rand.NewSource(1)))
	require.Len(t, result, 3)
	assert.Equal(t, "High", result[0].Team.Name)
	assert.Equal(t, "Mid", result[1].Team.Name)
	assert.Equal(t, "Low", result[2].Team.Name)
	for i, standing := range result {
		assert.Equal(t, i+1, standing.Rank)
		assert.Empty(t, standing.TieInfo, "singleton groups need no tie-break")
	}
}

func TestResolve_SpeaksTier(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Quiet", TotalPoints: 6, TotalSpeaks: 430.0},
		{ID: 2, Name: "Loud", TotalPoints: 6, TotalSpeaks: 431.5},
	}

	result := Resolve(teams, nil, rand.New(rand.NewSource(1)))
	assert.Equal(t, "Loud", result[0].Team.Name)
	assert.Contains(t, result[1].TieInfo, "speaker points")
}

func TestResolve_SpeaksWithinEpsilonIgnored(t *testing.T) {
	// 0.05 apart: not significant, so head-to-head decides. Team 1 lost
	// their shared room despite marginally higher speaks.
	teams := []*models.Team{
		{ID: 1, Name: "Alpha", TotalPoints: 6, TotalSpeaks: 430.05},
		{ID: 2, Name: "Beta", TotalPoints: 6, TotalSpeaks: 430.0},
	}
	rooms := []*models.Room{
		completedRoom(1, map[int]int{1: 3, 2: 1, 8: 2, 9: 4}),
	}

	result := Resolve(teams, rooms, rand.New(rand.NewSource(1)))
	assert.Equal(t, "Beta", result[0].Team.Name)
	assert.Contains(t, result[1].TieInfo, "head-to-head")
}

func TestResolve_NeverMetFallsToFirstPlaces(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Alpha", TotalPoints: 6, TotalSpeaks: 430},
		{ID: 2, Name: "Beta", TotalPoints: 6, TotalSpeaks: 430},
	}
	// The two teams never shared a room; Beta took two firsts, Alpha one.
	rooms := []*models.Room{
		completedRoom(1, map[int]int{1: 1, 5: 2, 6: 3, 7: 4}),
		completedRoom(2, map[int]int{2: 1, 8: 2, 9: 3, 10: 4}),
		completedRoom(3, map[int]int{2: 1, 5: 2, 6: 3, 7: 4}),
	}

	result := Resolve(teams, rooms, rand.New(rand.NewSource(1)))
	assert.Equal(t, "Beta", result[0].Team.Name)
	assert.Contains(t, result[1].TieInfo, "1st places")
}

func TestResolve_SecondPlacesTier(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Alpha", TotalPoints: 6, TotalSpeaks: 430},
		{ID: 2, Name: "Beta", TotalPoints: 6, TotalSpeaks: 430},
	}
	// Equal firsts (one each), Beta holds an extra second.
	rooms := []*models.Room{
		completedRoom(1, map[int]int{1: 1, 5: 2, 6: 3, 7: 4}),
		completedRoom(2, map[int]int{2: 1, 8: 2, 9: 3, 10: 4}),
		completedRoom(3, map[int]int{2: 2, 8: 1, 9: 3, 10: 4}),
		completedRoom(4, map[int]int{1: 3, 5: 2, 6: 1, 7: 4}),
	}

	result := Resolve(teams, rooms, rand.New(rand.NewSource(1)))
	assert.Equal(t, "Beta", result[0].Team.Name)
	assert.Contains(t, result[1].TieInfo, "2nd places")
}

func TestResolve_CoinTossReproducible(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "Alpha", TotalPoints: 6, TotalSpeaks: 430},
		{ID: 2, Name: "Beta", TotalPoints: 6, TotalSpeaks: 430},
	}

	first := Resolve(teams, nil, rand.New(rand.NewSource(42)))
	assert.Contains(t, first[1].TieInfo, "coin toss")

	for i := 0; i < 3; i++ {
		again := Resolve(teams, nil, rand.New(rand.NewSource(42)))
		assert.Equal(t, first[0].Team.ID, again[0].Team.ID, "same seed must reproduce the flip")
	}
}

func TestResolve_TotalOrder(t *testing.T) {
	var teams []*models.Team
	for i := 1; i <= 12; i++ {
		teams = append(teams, &models.Team{
			ID:          i,
			Name:        "T",
			TotalPoints: i % 3,
			TotalSpeaks: 400,
		})
	}

	result := Resolve(teams, nil, rand.New(rand.NewSource(9)))
	require.Len(t, result, 12)
	seen := make(map[int]bool)
	for i, standing := range result {
		assert.Equal(t, i+1, standing.Rank, "ranks must be contiguous")
		assert.False(t, seen[standing.Team.ID])
		seen[standing.Team.ID] = true
		if i > 0 {
			assert.GreaterOrEqual(t, result[i-1].Team.TotalPoints, standing.Team.TotalPoints)
		}
	}
}

func TestResolve_StableWithoutRandomTier(t *testing.T) {
	teams := []*models.Team{
		{ID: 1, Name: "A", TotalPoints: 6, TotalSpeaks: 440},
		{ID: 2, Name: "B", TotalPoints: 6, TotalSpeaks: 430},
		{ID: 3, Name: "C", TotalPoints: 6, TotalSpeaks: 420},
	}

	first := Resolve(teams, nil, rand.New(rand.NewSource(1)))
	second := Resolve(teams, nil, rand.New(rand.NewSource(999)))
	for i := range first {
		assert.Equal(t, first[i].Team.ID, second[i].Team.ID,
			"ordering decided above the random tier must not depend on the seed")
	}
}
