package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/tabcore/debate-tab/models"
)

var ErrJudgeNotFound = errors.New("judge not found")

// JudgeRepository is read-mostly: the judge pool service owns judge records.
type JudgeRepository interface {
	Create(ctx context.Context, judge *models.Judge) error
	GetByID(ctx context.Context, id int) (*models.Judge, error)
	ListAvailableByTournament(ctx context.Context, tournamentID int) ([]*models.Judge, error)
}

type postgresJudgeRepository struct {
	db *sql.DB
}

func NewPostgresJudgeRepository(db *sql.DB) JudgeRepository {
	return &postgresJudgeRepository{db: db}
}

func (r *postgresJudgeRepository) Create(ctx context.Context, judge *models.Judge) error {
	query := `
		INSERT INTO judges (tournament_id, name, institution, tier, conflict_institutions, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		judge.TournamentID,
		judge.Name,
		judge.Institution,
		judge.Tier,
		pq.Array(judge.ConflictInstitutions),
		judge.Available,
	).Scan(&judge.ID)
}

func (r *postgresJudgeRepository) scanJudge(rowScanner interface{ Scan(...interface{}) error }) (*models.Judge, error) {
	var j models.Judge
	var conflicts pq.StringArray
	err := rowScanner.Scan(
		&j.ID, &j.TournamentID, &j.Name, &j.Institution, &j.Tier, &conflicts, &j.Available,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJudgeNotFound
		}
		return nil, err
	}
	j.ConflictInstitutions = conflicts
	return &j, nil
}

func (r *postgresJudgeRepository) GetByID(ctx context.Context, id int) (*models.Judge, error) {
	query := `
		SELECT id, tournament_id, name, institution, tier, conflict_institutions, available
		FROM judges
		WHERE id = $1`
	return r.scanJudge(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresJudgeRepository) ListAvailableByTournament(ctx context.Context, tournamentID int) ([]*models.Judge, error) {
	query := `
		SELECT id, tournament_id, name, institution, tier, conflict_institutions, available
		FROM judges
		WHERE tournament_id = $1 AND available = TRUE
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	judges := make([]*models.Judge, 0)
	for rows.Next() {
		j, scanErr := r.scanJudge(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		judges = append(judges, j)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return judges, nil
}
