package models

// JudgeTier представляет уровень опыта судьи, соответствующий ENUM в БД.
type JudgeTier string

const (
	TierNovice       JudgeTier = "novice"
	TierIntermediate JudgeTier = "intermediate"
	TierExperienced  JudgeTier = "experienced"
	TierSenior       JudgeTier = "senior"
)

// Priority orders tiers for allocation, higher first.
func (t JudgeTier) Priority() int {
	switch t {
	case TierSenior:
		return 3
	case TierExperienced:
		return 2
	case TierIntermediate:
		return 1
	default:
		return 0
	}
}

// Judge is read-only to the engine; the judge pool service owns it.
type Judge struct {
	ID                   int       `json:"id" db:"id"`
	TournamentID         int       `json:"tournament_id" db:"tournament_id"`
	Name                 string    `json:"name" db:"name"`
	Institution          string    `json:"institution" db:"institution"`
	Tier                 JudgeTier `json:"tier" db:"tier"`
	ConflictInstitutions []string  `json:"conflict_institutions" db:"conflict_institutions"`
	Available            bool      `json:"available" db:"available"`
}

// ConflictsWith reports whether the judge may not see a team from the given
// institution. A judge's own institution always conflicts.
func (j *Judge) ConflictsWith(institution string) bool {
	if institution == "" {
		return false
	}
	if j.Institution == institution {
		return true
	}
	for _, ci := range j.ConflictInstitutions {
		if ci == institution {
			return true
		}
	}
	return false
}
