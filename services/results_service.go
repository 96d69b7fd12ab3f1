package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/pairing"
	"github.com/tabcore/debate-tab/repositories"
)

// ResultsService владеет единственным путём записи результатов комнаты и
// командных сумм.
type ResultsService interface {
	// AggregateRoom folds the room's submitted ballots into per-slot
	// results and applies them to team totals, exactly once. A re-trigger
	// on an already aggregated room is a silent no-op.
	AggregateRoom(ctx context.Context, roomID int) error
}

type resultsService struct {
	runTx      txRunner
	roomRepo   repositories.RoomRepository
	roundRepo  repositories.RoundRepository
	teamRepo   repositories.TeamRepository
	ballotRepo repositories.BallotRepository
	hub        *pairing.Hub
	logger     *slog.Logger
}

func NewResultsService(
	db *sql.DB,
	roomRepo repositories.RoomRepository,
	roundRepo repositories.RoundRepository,
	teamRepo repositories.TeamRepository,
	ballotRepo repositories.BallotRepository,
	hub *pairing.Hub,
	logger *slog.Logger,
) ResultsService {
	return &resultsService{
		runTx:      transactionRunner(db),
		roomRepo:   roomRepo,
		roundRepo:  roundRepo,
		teamRepo:   teamRepo,
		ballotRepo: ballotRepo,
		hub:        hub,
		logger:     logger,
	}
}

func (s *resultsService) AggregateRoom(ctx context.Context, roomID int) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	if room.HasResults {
		return nil
	}

	round, err := s.roundRepo.GetByID(ctx, room.RoundID)
	if err != nil {
		return fmt.Errorf("failed to load round %d: %w", room.RoundID, err)
	}

	ballots, err := s.ballotRepo.ListSubmittedByRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to list ballots for room %d: %w", roomID, err)
	}
	if len(ballots) == 0 {
		return fmt.Errorf("%w: room %d has no submitted ballots", ErrBallotNotFound, roomID)
	}

	if err := computeRoomResult(room, ballots); err != nil {
		return fmt.Errorf("failed to score room %d: %w", roomID, err)
	}

	var roundCompleted bool
	txErr := s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.roomRepo.SaveResults(ctx, tx, room); err != nil {
			return err
		}
		for i := range room.Slots {
			slot := &room.Slots[i]
			if slot.IsBye || slot.Points == nil || slot.TotalSpeaks == nil {
				continue
			}
			if err := s.teamRepo.ApplyRoomResult(ctx, tx, slot.TeamID, *slot.Points, *slot.TotalSpeaks); err != nil {
				return fmt.Errorf("failed to apply result for team %d: %w", slot.TeamID, err)
			}
		}
		completed, total, err := s.roundRepo.IncrementCompletedDebates(ctx, tx, round.ID)
		if err != nil {
			return fmt.Errorf("failed to bump round %d counter: %w", round.ID, err)
		}
		if completed == total {
			roundCompleted = true
			if err := s.roundRepo.UpdateStatus(ctx, tx, round.ID, models.RoundCompleted); err != nil {
				return fmt.Errorf("failed to complete round %d: %w", round.ID, err)
			}
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrRoomResultsExist) {
			// Двойной триггер агрегации; результаты уже записаны.
			s.logger.InfoContext(ctx, "aggregation re-trigger ignored", slog.Int("room_id", roomID))
			return nil
		}
		return txErr
	}

	channel := pairing.TournamentChannel(round.TournamentID)
	s.hub.BroadcastToChannel(channel, pairing.EventRoomUpdated, room)
	s.hub.BroadcastToChannel(channel, pairing.EventStandingsUpdated, map[string]int{"round_id": round.ID})
	if roundCompleted {
		s.hub.BroadcastToChannel(channel, pairing.EventRoundCompleted, map[string]int{"round_id": round.ID})
	}
	return nil
}

// computeRoomResult scores a room from its submitted ballots: slots are
// ordered by mean rank ascending (ties broken by slot order), ranks map to
// points through the format table, and speaker scores are per-speaker means
// rounded to one decimal. Bye slots are skipped.
func computeRoomResult(room *models.Room, ballots []*models.Ballot) error {
	type scored struct {
		slotIndex int
		meanRank  float64
	}

	seated := make([]scored, 0, len(room.Slots))
	for i := range room.Slots {
		if room.Slots[i].IsBye {
			continue
		}
		teamID := room.Slots[i].TeamID
		sum := 0
		for _, ballot := range ballots {
			rank, ok := ballot.Rankings[teamID]
			if !ok {
				return fmt.Errorf("ballot %d has no rank for team %d", ballot.ID, teamID)
			}
			sum += rank
		}
		seated = append(seated, scored{
			slotIndex: i,
			meanRank:  float64(sum) / float64(len(ballots)),
		})
	}

	sort.SliceStable(seated, func(a, b int) bool {
		if seated[a].meanRank != seated[b].meanRank {
			return seated[a].meanRank < seated[b].meanRank
		}
		return seated[a].slotIndex < seated[b].slotIndex
	})

	for position, entry := range seated {
		slot := &room.Slots[entry.slotIndex]
		rank := position + 1
		points, err := room.Format.PointsForRank(rank)
		if err != nil {
			return err
		}

		speakers := room.Format.SpeakersPerTeam()
		scores := make([]float64, speakers)
		total := 0.0
		for k := 0; k < speakers; k++ {
			sum := 0.0
			for _, ballot := range ballots {
				ballotScores := ballot.SpeakerScores[slot.TeamID]
				if k >= len(ballotScores) {
					return fmt.Errorf("ballot %d is missing speaker %d for team %d", ballot.ID, k+1, slot.TeamID)
				}
				sum += ballotScores[k]
			}
			scores[k] = roundToTenth(sum / float64(len(ballots)))
			total += scores[k]
		}
		total = roundToTenth(total)

		slot.Rank = &rank
		slot.Points = &points
		slot.SpeakerScores = scores
		slot.TotalSpeaks = &total
	}
	return nil
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
