package pairing

import (
	"context"
	"fmt"

	"github.com/tabcore/debate-tab/models"
)

const randomDrawMaxAttempts = 10

// RandomDrawGenerator builds the round 1 draw: a random shuffle of all
// eligible teams partitioned into fixed-size rooms. It retries the shuffle
// up to a fixed bound, scoring each attempt by same-institution co-seatings,
// and keeps the lowest-conflict attempt seen (first found wins ties).
type RandomDrawGenerator struct{}

func NewRandomDrawGenerator() DrawGenerator {
	return &RandomDrawGenerator{}
}

func (g *RandomDrawGenerator) GetName() string {
	return "RandomDraw"
}

func (g *RandomDrawGenerator) GenerateDraw(_ context.Context, params GenerateDrawParams) (*Draw, error) {
	arity := params.Format.TeamsPerRoom()
	if len(params.Teams) < arity {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrNotEnoughTeams, len(params.Teams), arity)
	}

	var bestGroups [][]*models.Team
	var bestLeftover []*models.Team
	bestScore := -1

	for attempt := 0; attempt < randomDrawMaxAttempts; attempt++ {
		shuffled := make([]*models.Team, len(params.Teams))
		copy(shuffled, params.Teams)
		params.Rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		groups, leftover := partition(shuffled, arity)
		score := countAllClashes(groups)
		if bestScore < 0 || score < bestScore {
			bestScore = score
			bestGroups = groups
			bestLeftover = leftover
		}
		if bestScore == 0 {
			break
		}
	}

	draw := &Draw{
		Rooms:              buildRooms(bestGroups, params.Format),
		InstitutionClashes: bestScore,
	}
	for _, t := range bestLeftover {
		draw.LeftoverTeamIDs = append(draw.LeftoverTeamIDs, t.ID)
	}
	return draw, nil
}

// partition splits teams into complete groups of the given size; the tail
// that cannot fill a room is returned separately.
func partition(teams []*models.Team, size int) ([][]*models.Team, []*models.Team) {
	full := (len(teams) / size) * size
	groups := make([][]*models.Team, 0, full/size)
	for i := 0; i < full; i += size {
		groups = append(groups, teams[i:i+size])
	}
	return groups, teams[full:]
}
