package pairing

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcore/debate-tab/models"
)

func standingsTeams(points []int, institutions []string) []*models.Team {
	teams := make([]*models.Team, 0, len(points))
	for i, p := range points {
		teams = append(teams, &models.Team{
			ID:          i + 1,
			Name:        fmt.Sprintf("Team %d", i+1),
			Institution: institutions[i],
			TotalPoints: p,
			TotalSpeaks: float64(100 + i),
			Status:      models.TeamStatusConfirmed,
		})
	}
	return teams
}

func TestPowerPairing_TopBracketSharesTopRoom(t *testing.T) {
	// Distinct points: every bracket is a singleton, so pool order is
	// exactly standings order and the draw is fully deterministic.
	points := []int{9, 8, 7, 6, 5, 4, 3, 2}
	institutions := make([]string, 8)
	for i := range institutions {
		institutions[i] = fmt.Sprintf("Uni %d", i+1)
	}
	gen := NewPowerPairingGenerator()

	draw, err := gen.GenerateDraw(context.Background(), GenerateDrawParams{
		RoundNumber: 2,
		Format:      models.FormatBP,
		Teams:       standingsTeams(points, institutions),
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	require.Len(t, draw.Rooms, 2)

	assert.Equal(t, []int{1, 2, 3, 4}, draw.Rooms[0].TeamIDs())
	assert.Equal(t, []int{5, 6, 7, 8}, draw.Rooms[1].TeamIDs())
	assert.Zero(t, draw.InstitutionClashes)
}

func TestPowerPairing_BracketIntegrity(t *testing.T) {
	// Two four-team brackets on 3 and 1 points. Whatever the intra-bracket
	// shuffle, the first room must hold the 3-point teams.
	points := []int{3, 3, 3, 3, 1, 1, 1, 1}
	institutions := make([]string, 8)
	for i := range institutions {
		institutions[i] = fmt.Sprintf("Uni %d", i+1)
	}
	gen := NewPowerPairingGenerator()

	for seed := int64(0); seed < 5; seed++ {
		draw, err := gen.GenerateDraw(context.Background(), GenerateDrawParams{
			RoundNumber: 3,
			Format:      models.FormatBP,
			Teams:       standingsTeams(points, institutions),
			Rand:        rand.New(rand.NewSource(seed)),
		})
		require.NoError(t, err)
		require.Len(t, draw.Rooms, 2)
		for _, id := range draw.Rooms[0].TeamIDs() {
			assert.LessOrEqual(t, id, 4, "seed %d: low-bracket team in top room", seed)
		}
	}
}

func TestPowerPairing_RepairRemovesClash(t *testing.T) {
	// Standing order seats the two Alpha teams together and the two Beta
	// teams together; a cross-room swap fixes both rooms.
	points := []int{4, 3, 2, 1}
	institutions := []string{"Alpha", "Alpha", "Beta", "Beta"}
	gen := NewPowerPairingGenerator()

	draw, err := gen.GenerateDraw(context.Background(), GenerateDrawParams{
		RoundNumber: 2,
		Format:      models.FormatWSDC,
		Teams:       standingsTeams(points, institutions),
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	require.Len(t, draw.Rooms, 2)
	assert.Zero(t, draw.InstitutionClashes)
}

func TestPowerPairing_LeftoverAndMinimum(t *testing.T) {
	points := []int{5, 4, 3, 2, 1}
	institutions := []string{"A", "B", "C", "D", "E"}
	gen := NewPowerPairingGenerator()

	draw, err := gen.GenerateDraw(context.Background(), GenerateDrawParams{
		RoundNumber: 2,
		Format:      models.FormatBP,
		Teams:       standingsTeams(points, institutions),
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	require.Len(t, draw.Rooms, 1)
	// The lowest-standing team sits out and is reported.
	assert.Equal(t, []int{5}, draw.LeftoverTeamIDs)

	_, err = gen.GenerateDraw(context.Background(), GenerateDrawParams{
		RoundNumber: 2,
		Format:      models.FormatBP,
		Teams:       standingsTeams(points[:3], institutions[:3]),
		Rand:        rand.New(rand.NewSource(1)),
	})
	require.ErrorIs(t, err, ErrNotEnoughTeams)
}
