// Package standings orders teams sharing identical point totals with a
// cascading comparator, evaluated lazily: first non-zero tier wins.
package standings

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/tabcore/debate-tab/models"
)

// speaksEpsilon is the deliberate slack under which speaker-point
// differences carry no signal, to avoid floating-point false positives.
const speaksEpsilon = 0.1

// TeamStanding is one row of the ranked table.
type TeamStanding struct {
	Team *models.Team `json:"team"`
	Rank int          `json:"rank"`
	// TieInfo records which tie-break rule separated this team from its
	// nearest rival, for standings-page transparency.
	TieInfo      string `json:"tie_info,omitempty"`
	FirstPlaces  int    `json:"first_places"`
	SecondPlaces int    `json:"second_places"`
}

type resolver struct {
	placements map[int]map[int]int // teamID -> rank -> count
	headToHead map[[2]int]int      // (a, b) -> a's rank in their shared room
	coinFlips  map[[2]int]int      // memoized so sorting stays consistent
	rng        *rand.Rand
}

// Resolve produces a total order over the teams: rank 1..N with no gaps.
// Placement counts and head-to-head results are derived from the completed
// rooms. The random last-resort tier draws from rng, which callers seed
// deterministically per standings snapshot so reruns are reproducible.
func Resolve(teams []*models.Team, completedRooms []*models.Room, rng *rand.Rand) []*TeamStanding {
	r := &resolver{
		placements: make(map[int]map[int]int),
		headToHead: make(map[[2]int]int),
		coinFlips:  make(map[[2]int]int),
		rng:        rng,
	}
	r.collect(completedRooms)

	ordered := make([]*models.Team, len(teams))
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TotalPoints > ordered[j].TotalPoints
	})

	result := make([]*TeamStanding, 0, len(ordered))
	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].TotalPoints == ordered[start].TotalPoints {
			end++
		}
		group := ordered[start:end]
		if len(group) > 1 {
			sort.SliceStable(group, func(i, j int) bool {
				cmp, _ := r.compare(group[i], group[j])
				return cmp < 0
			})
		}
		for i, team := range group {
			standing := &TeamStanding{
				Team:         team,
				Rank:         len(result) + 1,
				FirstPlaces:  r.placements[team.ID][1],
				SecondPlaces: r.placements[team.ID][2],
			}
			if i > 0 {
				_, rule := r.compare(group[i-1], team)
				standing.TieInfo = fmt.Sprintf("behind %s on %s", group[i-1].Name, rule)
			} else if len(group) > 1 {
				_, rule := r.compare(team, group[1])
				standing.TieInfo = fmt.Sprintf("ahead of %s on %s", group[1].Name, rule)
			}
			result = append(result, standing)
		}
		start = end
	}
	return result
}

func (r *resolver) collect(rooms []*models.Room) {
	for _, room := range rooms {
		if !room.HasResults {
			continue
		}
		for i := range room.Slots {
			a := &room.Slots[i]
			if a.IsBye || a.Rank == nil {
				continue
			}
			if r.placements[a.TeamID] == nil {
				r.placements[a.TeamID] = make(map[int]int)
			}
			r.placements[a.TeamID][*a.Rank]++
			for j := range room.Slots {
				b := &room.Slots[j]
				if i == j || b.IsBye || b.Rank == nil {
					continue
				}
				// A later meeting overwrites an earlier one.
				r.headToHead[[2]int{a.TeamID, b.TeamID}] = *a.Rank
			}
		}
	}
}

// compare returns a negative value when a ranks ahead of b, and the name of
// the tier that decided. Points are equal by construction when called.
func (r *resolver) compare(a, b *models.Team) (int, string) {
	if diff := a.TotalSpeaks - b.TotalSpeaks; math.Abs(diff) >= speaksEpsilon {
		if diff > 0 {
			return -1, "speaker points"
		}
		return 1, "speaker points"
	}

	aRank, aMet := r.headToHead[[2]int{a.ID, b.ID}]
	bRank, bMet := r.headToHead[[2]int{b.ID, a.ID}]
	if aMet && bMet && aRank != bRank {
		if aRank < bRank {
			return -1, "head-to-head"
		}
		return 1, "head-to-head"
	}

	if d := r.placements[b.ID][1] - r.placements[a.ID][1]; d != 0 {
		if d < 0 {
			return -1, "1st places"
		}
		return 1, "1st places"
	}
	if d := r.placements[b.ID][2] - r.placements[a.ID][2]; d != 0 {
		if d < 0 {
			return -1, "2nd places"
		}
		return 1, "2nd places"
	}

	return r.coinFlip(a.ID, b.ID), "coin toss"
}

// coinFlip is the explicitly nondeterministic last resort. Flips are
// memoized per pair so the sort sees a consistent ordering within one run.
func (r *resolver) coinFlip(a, b int) int {
	key := [2]int{a, b}
	if a > b {
		key = [2]int{b, a}
	}
	flip, ok := r.coinFlips[key]
	if !ok {
		flip = 1
		if r.rng.Intn(2) == 0 {
			flip = -1
		}
		r.coinFlips[key] = flip
	}
	if a > b {
		return -flip
	}
	return flip
}
