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
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomClockConflict signals a lost optimistic-concurrency race on a
	// clock advance; the room already moved past the expected speech.
	ErrRoomClockConflict = errors.New("room clock was advanced concurrently")
	// ErrRoomResultsExist signals the idempotency guard: results were
	// already written for the room.
	ErrRoomResultsExist = errors.New("room results already recorded")
)

type RoomRepository interface {
	Create(ctx context.Context, exec SQLExecutor, room *models.Room) error
	GetByID(ctx context.Context, id int) (*models.Room, error)
	ListByRound(ctx context.Context, roundID int) ([]*models.Room, error)
	ListCompletedByTournament(ctx context.Context, tournamentID int) ([]*models.Room, error)
	CountByRound(ctx context.Context, roundID int) (int, error)
	DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error
	UpdateJudges(ctx context.Context, exec SQLExecutor, room *models.Room) error
	// UpdateClock persists a clock transition guarded by the speech number
	// and status the caller read, so a raced double-advance writes once.
	UpdateClock(ctx context.Context, room *models.Room, expectedSpeech int, expectedStatus models.RoomStatus) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoomStatus) error
	// SaveResults writes slot results and flips has_results exactly once;
	// a second call trips ErrRoomResultsExist.
	SaveResults(ctx context.Context, exec SQLExecutor, room *models.Room) error
}

type postgresRoomRepository struct {
	db *sql.DB
}

func NewPostgresRoomRepository(db *sql.DB) RoomRepository {
	return &postgresRoomRepository{db: db}
}

func (r *postgresRoomRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func marshalSlots(slots []models.Slot) ([]byte, error) {
	data, err := json.Marshal(slots)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room slots: %w", err)
	}
	return data, nil
}

func marshalSpeaker(speaker *models.Speaker) (interface{}, error) {
	if speaker == nil {
		return nil, nil
	}
	data, err := json.Marshal(speaker)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current speaker: %w", err)
	}
	return data, nil
}

func (r *postgresRoomRepository) Create(ctx context.Context, exec SQLExecutor, room *models.Room) error {
	executor := r.getExecutor(exec)

	slots, err := marshalSlots(room.Slots)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rooms
			(round_id, format, slots, judge_ids, chair_judge_id, status,
			 prep_duration_sec, speech_duration_sec, current_speech_number, total_speeches, has_results)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err = executor.QueryRowContext(ctx, query,
		room.RoundID,
		room.Format,
		slots,
		pq.Array(intsToInt64(room.JudgeIDs)),
		room.ChairJudgeID,
		room.Status,
		room.PrepDurationSec,
		room.SpeechDurationSec,
		room.CurrentSpeechNumber,
		room.TotalSpeeches,
		room.HasResults,
	).Scan(&room.ID, &room.CreatedAt)
	return err
}

const roomColumns = `
	id, round_id, format, slots, judge_ids, chair_judge_id, status,
	prep_start_time, prep_duration_sec, debate_start_time, speech_duration_sec,
	current_speech_number, current_speaker, speech_deadline, total_speeches,
	has_results, created_at`

func (r *postgresRoomRepository) scanRoom(rowScanner interface{ Scan(...interface{}) error }) (*models.Room, error) {
	var room models.Room
	var slots []byte
	var speaker []byte
	var judgeIDs pq.Int64Array
	err := rowScanner.Scan(
		&room.ID, &room.RoundID, &room.Format, &slots, &judgeIDs, &room.ChairJudgeID, &room.Status,
		&room.PrepStartTime, &room.PrepDurationSec, &room.DebateStartTime, &room.SpeechDurationSec,
		&room.CurrentSpeechNumber, &speaker, &room.SpeechDeadline, &room.TotalSpeeches,
		&room.HasResults, &room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(slots, &room.Slots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal slots for room %d: %w", room.ID, err)
	}
	if len(speaker) > 0 {
		room.CurrentSpeaker = &models.Speaker{}
		if err := json.Unmarshal(speaker, room.CurrentSpeaker); err != nil {
			return nil, fmt.Errorf("failed to unmarshal speaker for room %d: %w", room.ID, err)
		}
	}
	room.JudgeIDs = int64sToInts(judgeIDs)
	return &room, nil
}

func (r *postgresRoomRepository) GetByID(ctx context.Context, id int) (*models.Room, error) {
	query := `SELECT` + roomColumns + ` FROM rooms WHERE id = $1`
	return r.scanRoom(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRoomRepository) listRooms(ctx context.Context, query string, args ...interface{}) ([]*models.Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*models.Room, 0)
	for rows.Next() {
		room, scanErr := r.scanRoom(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		rooms = append(rooms, room)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *postgresRoomRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Room, error) {
	query := `SELECT` + roomColumns + ` FROM rooms WHERE round_id = $1 ORDER BY id ASC`
	return r.listRooms(ctx, query, roundID)
}

func (r *postgresRoomRepository) ListCompletedByTournament(ctx context.Context, tournamentID int) ([]*models.Room, error) {
	query := `
		SELECT` + qualifyRoomColumns("rooms") + `
		FROM rooms
		JOIN rounds ON rounds.id = rooms.round_id
		WHERE rounds.tournament_id = $1 AND rooms.has_results = TRUE
		ORDER BY rooms.id ASC`
	return r.listRooms(ctx, query, tournamentID)
}

func qualifyRoomColumns(table string) string {
	return fmt.Sprintf(`
		%[1]s.id, %[1]s.round_id, %[1]s.format, %[1]s.slots, %[1]s.judge_ids, %[1]s.chair_judge_id, %[1]s.status,
		%[1]s.prep_start_time, %[1]s.prep_duration_sec, %[1]s.debate_start_time, %[1]s.speech_duration_sec,
		%[1]s.current_speech_number, %[1]s.current_speaker, %[1]s.speech_deadline, %[1]s.total_speeches,
		%[1]s.has_results, %[1]s.created_at`, table)
}

func (r *postgresRoomRepository) CountByRound(ctx context.Context, roundID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rooms WHERE round_id = $1`, roundID).Scan(&count)
	return count, err
}

func (r *postgresRoomRepository) DeleteByRound(ctx context.Context, exec SQLExecutor, roundID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM rooms WHERE round_id = $1`, roundID)
	return err
}

func (r *postgresRoomRepository) UpdateJudges(ctx context.Context, exec SQLExecutor, room *models.Room) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rooms SET judge_ids = $1, chair_judge_id = $2 WHERE id = $3`,
		pq.Array(intsToInt64(room.JudgeIDs)), room.ChairJudgeID, room.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoomNotFound)
}

func (r *postgresRoomRepository) UpdateClock(ctx context.Context, room *models.Room, expectedSpeech int, expectedStatus models.RoomStatus) error {
	speaker, err := marshalSpeaker(room.CurrentSpeaker)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms
		SET status = $1, prep_start_time = $2, debate_start_time = $3,
		    current_speech_number = $4, current_speaker = $5, speech_deadline = $6,
		    total_speeches = $7
		WHERE id = $8 AND current_speech_number = $9 AND status = $10`,
		room.Status, room.PrepStartTime, room.DebateStartTime,
		room.CurrentSpeechNumber, speaker, room.SpeechDeadline,
		room.TotalSpeeches,
		room.ID, expectedSpeech, expectedStatus)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoomClockConflict)
}

func (r *postgresRoomRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoomStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE rooms SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoomNotFound)
}

func (r *postgresRoomRepository) SaveResults(ctx context.Context, exec SQLExecutor, room *models.Room) error {
	executor := r.getExecutor(exec)

	slots, err := marshalSlots(room.Slots)
	if err != nil {
		return err
	}

	result, err := executor.ExecContext(ctx, `
		UPDATE rooms
		SET slots = $1, status = $2, has_results = TRUE,
		    current_speaker = NULL, speech_deadline = NULL
		WHERE id = $3 AND has_results = FALSE`,
		slots, models.RoomCompleted, room.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoomResultsExist)
}
