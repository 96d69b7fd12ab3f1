package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/tabcore/debate-tab/models"
)

var (
	ErrRoundNotFound          = errors.New("round not found")
	ErrRoundNumberConflict    = errors.New("round number already exists for this tournament")
	ErrRoundCountersExhausted = errors.New("completed debates would exceed total debates")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByID(ctx context.Context, id int) (*models.Round, error)
	GetByTournamentAndNumber(ctx context.Context, tournamentID, number int) (*models.Round, error)
	GetLastByTournament(ctx context.Context, tournamentID int) (*models.Round, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Round, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error
	SetDebateTotals(ctx context.Context, exec SQLExecutor, id, totalDebates int) error
	// IncrementCompletedDebates bumps the counter and reports the new
	// values; the counter is capped at total_debates in SQL so concurrent
	// callers cannot overshoot.
	IncrementCompletedDebates(ctx context.Context, exec SQLExecutor, id int) (completed, total int, err error)
	ResetDraw(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (tournament_id, number, type, status, motion_id, total_debates, completed_debates)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		round.TournamentID,
		round.Number,
		round.Type,
		round.Status,
		round.MotionID,
		round.TotalDebates,
		round.CompletedDebates,
	).Scan(&round.ID, &round.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrRoundNumberConflict
	}
	return err
}

func (r *postgresRoundRepository) scanRound(rowScanner interface{ Scan(...interface{}) error }) (*models.Round, error) {
	var round models.Round
	err := rowScanner.Scan(
		&round.ID, &round.TournamentID, &round.Number, &round.Type, &round.Status,
		&round.MotionID, &round.TotalDebates, &round.CompletedDebates, &round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}

const roundColumns = `id, tournament_id, number, type, status, motion_id, total_debates, completed_debates, created_at`

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	return r.scanRound(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRoundRepository) GetByTournamentAndNumber(ctx context.Context, tournamentID, number int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE tournament_id = $1 AND number = $2`
	return r.scanRound(r.db.QueryRowContext(ctx, query, tournamentID, number))
}

func (r *postgresRoundRepository) GetLastByTournament(ctx context.Context, tournamentID int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE tournament_id = $1 ORDER BY number DESC LIMIT 1`
	return r.scanRound(r.db.QueryRowContext(ctx, query, tournamentID))
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE tournament_id = $1 ORDER BY number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round, scanErr := r.scanRound(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoundStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rounds SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) SetDebateTotals(ctx context.Context, exec SQLExecutor, id, totalDebates int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rounds SET total_debates = $1, completed_debates = 0 WHERE id = $2`,
		totalDebates, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) IncrementCompletedDebates(ctx context.Context, exec SQLExecutor, id int) (int, int, error) {
	executor := r.getExecutor(exec)
	var completed, total int
	err := executor.QueryRowContext(ctx, `
		UPDATE rounds
		SET completed_debates = completed_debates + 1
		WHERE id = $1 AND completed_debates < total_debates
		RETURNING completed_debates, total_debates`,
		id).Scan(&completed, &total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrRoundCountersExhausted
		}
		return 0, 0, err
	}
	return completed, total, nil
}

func (r *postgresRoundRepository) ResetDraw(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `
		UPDATE rounds
		SET status = $1, total_debates = 0, completed_debates = 0
		WHERE id = $2`,
		models.RoundScheduled, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
