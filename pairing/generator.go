package pairing

import (
	"context"
	"errors"
	"math/rand"

	"github.com/tabcore/debate-tab/models"
)

var ErrNotEnoughTeams = errors.New("not enough teams to fill a single room")

type GenerateDrawParams struct {
	RoundNumber int
	Format      models.DebateFormat
	// Teams eligible for the round. For power-paired rounds the generator
	// sorts internally; input order does not matter.
	Teams []*models.Team
	Rand  *rand.Rand
}

// Draw is the result of one generation run. Rooms are drafts: RoundID and
// judges are filled in later by the caller.
type Draw struct {
	Rooms []*models.Room
	// LeftoverTeamIDs are eligible teams that did not fill a complete room
	// and sit this round out. Reported, not silently dropped.
	LeftoverTeamIDs []int
	// InstitutionClashes counts same-institution pairs co-seated in any
	// room of the accepted draw.
	InstitutionClashes int
}

type DrawGenerator interface {
	GenerateDraw(ctx context.Context, params GenerateDrawParams) (*Draw, error)

	GetName() string
}

// countClashes counts same-institution pairs co-seated in a group.
func countClashes(group []*models.Team) int {
	clashes := 0
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			if group[i].Institution != "" && group[i].Institution == group[j].Institution {
				clashes++
			}
		}
	}
	return clashes
}

func countAllClashes(groups [][]*models.Team) int {
	total := 0
	for _, g := range groups {
		total += countClashes(g)
	}
	return total
}

// buildRooms turns team groups into room drafts, assigning positions in
// pool order. Position assignment is fixed per format once membership is
// fixed, so a given input ordering always yields the same seating.
func buildRooms(groups [][]*models.Team, format models.DebateFormat) []*models.Room {
	positions := format.Positions()
	rooms := make([]*models.Room, 0, len(groups))
	for _, group := range groups {
		room := &models.Room{
			Format: format,
			Status: models.RoomScheduled,
			Slots:  make([]models.Slot, 0, len(positions)),
		}
		for i := range positions {
			if i < len(group) && group[i] != nil {
				room.Slots = append(room.Slots, models.Slot{
					TeamID:   group[i].ID,
					Position: positions[i],
				})
			} else {
				room.Slots = append(room.Slots, models.Slot{
					Position: positions[i],
					IsBye:    true,
				})
			}
		}
		rooms = append(rooms, room)
	}
	return rooms
}
