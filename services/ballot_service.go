package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/repositories"
)

// BallotInput is one judge's submission payload.
type BallotInput struct {
	Rankings      map[int]int       `json:"rankings"`
	SpeakerScores map[int][]float64 `json:"speaker_scores"`
	TeamFeedback  map[int]string    `json:"team_feedback,omitempty"`
	Feedback      string            `json:"feedback,omitempty"`
}

// BallotRoomStatus describes how far a room's judging has progressed.
type BallotRoomStatus struct {
	SubmittedCount int  `json:"submitted_count"`
	TotalJudges    int  `json:"total_judges"`
	IsComplete     bool `json:"is_complete"`
}

type BallotService interface {
	// SubmitBallot validates and records a judge's ballot. When the last
	// assigned judge submits, the room's results are aggregated.
	SubmitBallot(ctx context.Context, roomID, judgeID int, input BallotInput) (*models.Ballot, error)
	GetBallotStatus(ctx context.Context, roomID int) (*BallotRoomStatus, error)
}

type ballotService struct {
	roomRepo   repositories.RoomRepository
	ballotRepo repositories.BallotRepository
	results    ResultsService
	logger     *slog.Logger
}

func NewBallotService(
	roomRepo repositories.RoomRepository,
	ballotRepo repositories.BallotRepository,
	results ResultsService,
	logger *slog.Logger,
) BallotService {
	return &ballotService{
		roomRepo:   roomRepo,
		ballotRepo: ballotRepo,
		results:    results,
		logger:     logger,
	}
}

func (s *ballotService) SubmitBallot(ctx context.Context, roomID, judgeID int, input BallotInput) (*models.Ballot, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	if room.Status != models.RoomSubmitted && room.Status != models.RoomJudging {
		return nil, fmt.Errorf("%w: room %d is %q", ErrRoomNotAcceptingBallots, roomID, room.Status)
	}

	assigned := false
	for _, id := range room.JudgeIDs {
		if id == judgeID {
			assigned = true
			break
		}
	}
	if !assigned {
		return nil, fmt.Errorf("%w: judge %d, room %d", ErrJudgeNotAssigned, judgeID, roomID)
	}

	if err := validateBallotInput(room, input); err != nil {
		return nil, err
	}

	ballot, err := s.ballotRepo.GetOrCreate(ctx, roomID, judgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to open ballot for judge %d: %w", judgeID, err)
	}
	if ballot.Status == models.BallotSubmitted {
		return nil, fmt.Errorf("%w: ballot %d", ErrBallotAlreadySubmitted, ballot.ID)
	}

	ballot.Rankings = input.Rankings
	ballot.SpeakerScores = input.SpeakerScores
	ballot.TeamFeedback = input.TeamFeedback
	ballot.Feedback = input.Feedback
	if err := s.ballotRepo.Submit(ctx, ballot); err != nil {
		if errors.Is(err, repositories.ErrBallotImmutable) {
			return nil, fmt.Errorf("%w: ballot %d", ErrBallotAlreadySubmitted, ballot.ID)
		}
		return nil, fmt.Errorf("failed to submit ballot %d: %w", ballot.ID, err)
	}
	ballot.Status = models.BallotSubmitted

	submitted, err := s.ballotRepo.CountSubmittedByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to count ballots for room %d: %w", roomID, err)
	}
	if submitted >= len(room.JudgeIDs) {
		if err := s.results.AggregateRoom(ctx, roomID); err != nil {
			// Бюллетень принят; агрегация доберётся при повторном триггере.
			s.logger.ErrorContext(ctx, "room aggregation failed",
				slog.Int("room_id", roomID), slog.Any("error", err))
		}
	}
	return ballot, nil
}

func (s *ballotService) GetBallotStatus(ctx context.Context, roomID int) (*BallotRoomStatus, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	submitted, err := s.ballotRepo.CountSubmittedByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to count ballots for room %d: %w", roomID, err)
	}
	return &BallotRoomStatus{
		SubmittedCount: submitted,
		TotalJudges:    len(room.JudgeIDs),
		IsComplete:     len(room.JudgeIDs) > 0 && submitted >= len(room.JudgeIDs),
	}, nil
}

// validateBallotInput checks a ballot against the room it scores: every
// seated team ranked exactly once with ranks forming 1..N, and a full set of
// speaker scores inside the format's range.
func validateBallotInput(room *models.Room, input BallotInput) error {
	teamIDs := room.TeamIDs()
	if len(input.Rankings) != len(teamIDs) {
		return fmt.Errorf("%w: %d rankings for %d teams", ErrBallotIncomplete, len(input.Rankings), len(teamIDs))
	}

	seenRanks := make(map[int]bool, len(teamIDs))
	for _, teamID := range teamIDs {
		rank, ok := input.Rankings[teamID]
		if !ok {
			return fmt.Errorf("%w: team %d is not ranked", ErrBallotIncomplete, teamID)
		}
		if rank < 1 || rank > len(teamIDs) {
			return fmt.Errorf("%w: rank %d for team %d", ErrDuplicateRanks, rank, teamID)
		}
		if seenRanks[rank] {
			return fmt.Errorf("%w: rank %d appears twice", ErrDuplicateRanks, rank)
		}
		seenRanks[rank] = true
	}

	speakers := room.Format.SpeakersPerTeam()
	minScore, maxScore := room.Format.SpeakerScoreRange()
	for _, teamID := range teamIDs {
		scores, ok := input.SpeakerScores[teamID]
		if !ok || len(scores) != speakers {
			return fmt.Errorf("%w: team %d needs %d speaker scores", ErrBallotIncomplete, teamID, speakers)
		}
		for i, score := range scores {
			if score < minScore || score > maxScore {
				return fmt.Errorf("%w: speaker %d of team %d scored %.1f (allowed %.0f-%.0f)",
					ErrScoreOutOfRange, i+1, teamID, score, minScore, maxScore)
			}
		}
	}
	return nil
}
