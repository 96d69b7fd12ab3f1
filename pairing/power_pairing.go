package pairing

import (
	"context"
	"fmt"
	"sort"

	"github.com/tabcore/debate-tab/models"
)

const repairAttemptsPerRoom = 5

// PowerPairingGenerator builds draws for round 2 onward: teams sorted by
// cumulative standing are drawn bracket-by-bracket (a bracket being the run
// of teams on identical points, internally shuffled) into a flat pool, then
// cut into rooms in pool order. A bounded local-repair pass swaps
// conflicting teams with other pool members to remove same-institution
// co-seating, keeping swaps inside a points bracket when avoidable.
type PowerPairingGenerator struct{}

func NewPowerPairingGenerator() DrawGenerator {
	return &PowerPairingGenerator{}
}

func (g *PowerPairingGenerator) GetName() string {
	return "PowerPairing"
}

func (g *PowerPairingGenerator) GenerateDraw(_ context.Context, params GenerateDrawParams) (*Draw, error) {
	arity := params.Format.TeamsPerRoom()
	if len(params.Teams) < arity {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrNotEnoughTeams, len(params.Teams), arity)
	}

	pool := make([]*models.Team, len(params.Teams))
	copy(pool, params.Teams)
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].TotalPoints != pool[j].TotalPoints {
			return pool[i].TotalPoints > pool[j].TotalPoints
		}
		return pool[i].TotalSpeaks > pool[j].TotalSpeaks
	})

	// Shuffle each points bracket in place.
	start := 0
	for start < len(pool) {
		end := start + 1
		for end < len(pool) && pool[end].TotalPoints == pool[start].TotalPoints {
			end++
		}
		bracket := pool[start:end]
		params.Rand.Shuffle(len(bracket), func(i, j int) {
			bracket[i], bracket[j] = bracket[j], bracket[i]
		})
		start = end
	}

	full := (len(pool) / arity) * arity
	leftover := pool[full:]
	pool = pool[:full]

	repairClashes(pool, arity)

	groups, _ := partition(pool, arity)
	draw := &Draw{
		Rooms:              buildRooms(groups, params.Format),
		InstitutionClashes: countAllClashes(groups),
	}
	for _, t := range leftover {
		draw.LeftoverTeamIDs = append(draw.LeftoverTeamIDs, t.ID)
	}
	return draw, nil
}

// repairClashes runs the bounded local-repair pass over the pool. For each
// room it tries up to repairAttemptsPerRoom swaps with members of other
// rooms; a swap is applied only when it lowers the clash count of the two
// rooms involved. Same-bracket partners are tried first so the pairing
// stays power-matched when a conflict-free same-bracket swap exists.
func repairClashes(pool []*models.Team, arity int) {
	numRooms := len(pool) / arity
	for room := 0; room < numRooms; room++ {
		lo, hi := room*arity, (room+1)*arity
		for attempt := 0; attempt < repairAttemptsPerRoom; attempt++ {
			idx := clashIndex(pool[lo:hi])
			if idx < 0 {
				break
			}
			if !trySwap(pool, arity, lo+idx, true) && !trySwap(pool, arity, lo+idx, false) {
				break
			}
		}
	}
}

// clashIndex returns the in-room index of a team seated with another team
// from the same institution, or -1.
func clashIndex(room []*models.Team) int {
	for i := 0; i < len(room); i++ {
		for j := i + 1; j < len(room); j++ {
			if room[i].Institution != "" && room[i].Institution == room[j].Institution {
				return j
			}
		}
	}
	return -1
}

// trySwap looks for a pool member outside the room at position i whose swap
// with pool[i] lowers the combined clash count of both affected rooms. With
// sameBracket set, only partners on identical points are considered.
func trySwap(pool []*models.Team, arity, i int, sameBracket bool) bool {
	roomOf := func(idx int) int { return idx / arity }
	roomSlice := func(r int) []*models.Team { return pool[r*arity : (r+1)*arity] }

	ri := roomOf(i)
	before := countClashes(roomSlice(ri))

	for k := 0; k < len(pool); k++ {
		rk := roomOf(k)
		if rk == ri {
			continue
		}
		if sameBracket && pool[k].TotalPoints != pool[i].TotalPoints {
			continue
		}
		otherBefore := countClashes(roomSlice(rk))
		pool[i], pool[k] = pool[k], pool[i]
		after := countClashes(roomSlice(ri)) + countClashes(roomSlice(rk))
		if after < before+otherBefore {
			return true
		}
		pool[i], pool[k] = pool[k], pool[i]
	}
	return false
}
