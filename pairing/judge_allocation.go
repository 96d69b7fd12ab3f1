package pairing

import (
	"math/rand"
	"sort"

	"github.com/tabcore/debate-tab/models"
)

// AllocateJudges assigns up to judgesPerRoom judges to every room, mutating
// the rooms in place. Judges are pooled senior tier first (each tier
// internally shuffled) and scanned with wrap-around, skipping judges whose
// conflict institutions match any seated team. A non-empty pool always
// yields at least one judge per room even if that judge is conflicted. The
// first judge accepted for a room chairs it.
//
// Returns the IDs of rooms left without any judge (only possible with an
// empty pool); a warning condition for manual follow-up, not an error.
func AllocateJudges(rooms []*models.Room, judges []*models.Judge, judgesPerRoom int, institutions map[int]string, rng *rand.Rand) []int {
	pool := buildJudgePool(judges, rng)

	var judgeless []int
	cursor := 0
	for _, room := range rooms {
		if len(pool) == 0 {
			judgeless = append(judgeless, room.ID)
			continue
		}

		used := make(map[int]bool, judgesPerRoom)
		room.JudgeIDs = nil
		room.ChairJudgeID = nil

		maxScans := 2 * len(pool)
		for scan := 0; scan < maxScans && len(room.JudgeIDs) < judgesPerRoom; scan++ {
			judge := pool[cursor%len(pool)]
			cursor++
			if used[judge.ID] || judgeConflictsWithRoom(judge, room, institutions) {
				continue
			}
			acceptJudge(room, judge, used)
		}

		// The conflict-free budget is exhausted: seat the next unused judge
		// regardless of conflicts rather than leave the room unjudged.
		if len(room.JudgeIDs) == 0 {
			for scan := 0; scan < len(pool); scan++ {
				judge := pool[cursor%len(pool)]
				cursor++
				if used[judge.ID] {
					continue
				}
				acceptJudge(room, judge, used)
				break
			}
		}
	}
	return judgeless
}

func acceptJudge(room *models.Room, judge *models.Judge, used map[int]bool) {
	room.JudgeIDs = append(room.JudgeIDs, judge.ID)
	used[judge.ID] = true
	if room.ChairJudgeID == nil {
		id := judge.ID
		room.ChairJudgeID = &id
	}
}

// buildJudgePool sorts judges by tier (senior first), shuffles within each
// tier, and concatenates into one priority pool.
func buildJudgePool(judges []*models.Judge, rng *rand.Rand) []*models.Judge {
	pool := make([]*models.Judge, len(judges))
	copy(pool, judges)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Tier.Priority() > pool[j].Tier.Priority()
	})

	start := 0
	for start < len(pool) {
		end := start + 1
		for end < len(pool) && pool[end].Tier == pool[start].Tier {
			end++
		}
		tier := pool[start:end]
		rng.Shuffle(len(tier), func(i, j int) {
			tier[i], tier[j] = tier[j], tier[i]
		})
		start = end
	}
	return pool
}

func judgeConflictsWithRoom(judge *models.Judge, room *models.Room, institutions map[int]string) bool {
	for _, teamID := range room.TeamIDs() {
		if judge.ConflictsWith(institutions[teamID]) {
			return true
		}
	}
	return false
}
