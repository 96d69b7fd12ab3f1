package pairing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tabcore/debate-tab/models"
)

var (
	ErrTooFewBreakingTeams = errors.New("at least two breaking teams are required")
	ErrRoomNotRanked       = errors.New("room has no recorded ranks")
)

// SeedQuarterfinals partitions the breaking teams (ordered by standings
// rank, best first) into the opening elimination rooms. A nil entry in a
// group is a bye seat.
//
// For the 4-team format a full bracket of 8 splits cross-bracket into
// {1,4,5,8} and {2,3,6,7}, keeping the strongest team away from the
// next-strongest until the semifinal. Degenerate fields collapse: 2 teams
// go straight to a final, 3 share a single semifinal with a bye, 4-7 share
// a single combined room. The 2-team format folds a bracket of 8 into
// {1,8},{4,5},{2,7},{3,6} and any smaller field into a direct final.
func SeedQuarterfinals(ordered []*models.Team, format models.DebateFormat) ([][]*models.Team, error) {
	n := len(ordered)
	if n < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrTooFewBreakingTeams, n)
	}

	if format.TeamsPerRoom() == 2 {
		if n < 8 {
			return [][]*models.Team{{ordered[0], ordered[1]}}, nil
		}
		return [][]*models.Team{
			{ordered[0], ordered[7]},
			{ordered[3], ordered[4]},
			{ordered[1], ordered[6]},
			{ordered[2], ordered[5]},
		}, nil
	}

	switch {
	case n == 2:
		return [][]*models.Team{{ordered[0], ordered[1], nil, nil}}, nil
	case n == 3:
		return [][]*models.Team{{ordered[0], ordered[1], ordered[2], nil}}, nil
	case n < 8:
		return [][]*models.Team{{ordered[0], ordered[1], ordered[2], ordered[3]}}, nil
	default:
		return [][]*models.Team{
			{ordered[0], ordered[3], ordered[4], ordered[7]},
			{ordered[1], ordered[2], ordered[5], ordered[6]},
		}, nil
	}
}

// RoomsFromSeeds materializes seeded groups into room drafts.
func RoomsFromSeeds(groups [][]*models.Team, format models.DebateFormat) []*models.Room {
	return buildRooms(groups, format)
}

// TopFromRoom returns the IDs of the best-ranked teams of a completed
// room, best first, at most n. Bye seats shrink the result instead of
// failing, so rooms of degenerate brackets still feed the next stage.
func TopFromRoom(room *models.Room, n int) ([]int, error) {
	type ranked struct {
		teamID int
		rank   int
	}
	var results []ranked
	for i := range room.Slots {
		slot := &room.Slots[i]
		if slot.IsBye {
			continue
		}
		if slot.Rank == nil {
			return nil, fmt.Errorf("%w: room %d team %d", ErrRoomNotRanked, room.ID, slot.TeamID)
		}
		results = append(results, ranked{teamID: slot.TeamID, rank: *slot.Rank})
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("room %d seats no ranked teams", room.ID)
	}
	if n > len(results) {
		n = len(results)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].rank < results[j].rank })

	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, results[i].teamID)
	}
	return ids, nil
}
