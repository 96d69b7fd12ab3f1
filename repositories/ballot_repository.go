package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/tabcore/debate-tab/models"
)

var (
	ErrBallotNotFound = errors.New("ballot not found")
	// ErrBallotImmutable signals an attempt to resubmit a ballot that
	// already left the draft state.
	ErrBallotImmutable = errors.New("ballot already submitted")
)

type BallotRepository interface {
	// GetOrCreate returns the judge's ballot for the room, creating a
	// draft when none exists. Safe under concurrent first calls.
	GetOrCreate(ctx context.Context, roomID, judgeID int) (*models.Ballot, error)
	GetByRoomAndJudge(ctx context.Context, roomID, judgeID int) (*models.Ballot, error)
	// Submit persists the ballot content and marks it submitted; a ballot
	// that is no longer draft trips ErrBallotImmutable.
	Submit(ctx context.Context, ballot *models.Ballot) error
	CountSubmittedByRoom(ctx context.Context, roomID int) (int, error)
	ListSubmittedByRoom(ctx context.Context, roomID int) ([]*models.Ballot, error)
}

type postgresBallotRepository struct {
	db *sql.DB
}

func NewPostgresBallotRepository(db *sql.DB) BallotRepository {
	return &postgresBallotRepository{db: db}
}

const ballotColumns = `
	id, room_id, judge_id, rankings, speaker_scores, team_feedback,
	feedback, status, submitted_at, created_at`

func (r *postgresBallotRepository) scanBallot(rowScanner interface{ Scan(...interface{}) error }) (*models.Ballot, error) {
	var ballot models.Ballot
	var rankings, scores, teamFeedback []byte
	err := rowScanner.Scan(
		&ballot.ID, &ballot.RoomID, &ballot.JudgeID, &rankings, &scores, &teamFeedback,
		&ballot.Feedback, &ballot.Status, &ballot.SubmittedAt, &ballot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBallotNotFound
		}
		return nil, err
	}
	if len(rankings) > 0 {
		if err := json.Unmarshal(rankings, &ballot.Rankings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rankings for ballot %d: %w", ballot.ID, err)
		}
	}
	if len(scores) > 0 {
		if err := json.Unmarshal(scores, &ballot.SpeakerScores); err != nil {
			return nil, fmt.Errorf("failed to unmarshal speaker scores for ballot %d: %w", ballot.ID, err)
		}
	}
	if len(teamFeedback) > 0 {
		if err := json.Unmarshal(teamFeedback, &ballot.TeamFeedback); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team feedback for ballot %d: %w", ballot.ID, err)
		}
	}
	return &ballot, nil
}

func (r *postgresBallotRepository) GetOrCreate(ctx context.Context, roomID, judgeID int) (*models.Ballot, error) {
	query := `
		INSERT INTO ballots (room_id, judge_id, status)
		VALUES ($1, $2, $3)
		RETURNING` + ballotColumns

	ballot, err := r.scanBallot(r.db.QueryRowContext(ctx, query, roomID, judgeID, models.BallotDraft))
	if err == nil {
		return ballot, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// Раннинг параллельных запросов: черновик уже создан другим вызовом.
		return r.GetByRoomAndJudge(ctx, roomID, judgeID)
	}
	return nil, err
}

func (r *postgresBallotRepository) GetByRoomAndJudge(ctx context.Context, roomID, judgeID int) (*models.Ballot, error) {
	query := `SELECT` + ballotColumns + ` FROM ballots WHERE room_id = $1 AND judge_id = $2`
	return r.scanBallot(r.db.QueryRowContext(ctx, query, roomID, judgeID))
}

func (r *postgresBallotRepository) Submit(ctx context.Context, ballot *models.Ballot) error {
	rankings, err := json.Marshal(ballot.Rankings)
	if err != nil {
		return fmt.Errorf("failed to marshal rankings: %w", err)
	}
	scores, err := json.Marshal(ballot.SpeakerScores)
	if err != nil {
		return fmt.Errorf("failed to marshal speaker scores: %w", err)
	}
	teamFeedback, err := json.Marshal(ballot.TeamFeedback)
	if err != nil {
		return fmt.Errorf("failed to marshal team feedback: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE ballots
		SET rankings = $1, speaker_scores = $2, team_feedback = $3, feedback = $4,
		    status = $5, submitted_at = NOW()
		WHERE id = $6 AND status = $7`,
		rankings, scores, teamFeedback, ballot.Feedback,
		models.BallotSubmitted, ballot.ID, models.BallotDraft)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrBallotImmutable)
}

func (r *postgresBallotRepository) CountSubmittedByRoom(ctx context.Context, roomID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ballots WHERE room_id = $1 AND status = $2`,
		roomID, models.BallotSubmitted).Scan(&count)
	return count, err
}

func (r *postgresBallotRepository) ListSubmittedByRoom(ctx context.Context, roomID int) ([]*models.Ballot, error) {
	query := `SELECT` + ballotColumns + ` FROM ballots WHERE room_id = $1 AND status = $2 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, roomID, models.BallotSubmitted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ballots := make([]*models.Ballot, 0)
	for rows.Next() {
		ballot, scanErr := r.scanBallot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		ballots = append(ballots, ballot)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ballots, nil
}
