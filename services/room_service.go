package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/pairing"
	"github.com/tabcore/debate-tab/repositories"
)

type RoomService interface {
	// AdvanceClock is the idempotent poll poke: it fires any elapsed timing
	// transition and returns the current room state either way.
	AdvanceClock(ctx context.Context, roomID int) (*models.Room, error)
	MarkJudging(ctx context.Context, roomID int) (*models.Room, error)
	GetRoom(ctx context.Context, roomID int) (*models.Room, error)
}

type roomService struct {
	roomRepo  repositories.RoomRepository
	roundRepo repositories.RoundRepository
	hub       *pairing.Hub
	now       func() time.Time
	logger    *slog.Logger
}

func NewRoomService(
	roomRepo repositories.RoomRepository,
	roundRepo repositories.RoundRepository,
	hub *pairing.Hub,
	now func() time.Time,
	logger *slog.Logger,
) RoomService {
	return &roomService{
		roomRepo:  roomRepo,
		roundRepo: roundRepo,
		hub:       hub,
		now:       now,
		logger:    logger,
	}
}

func (s *roomService) AdvanceClock(ctx context.Context, roomID int) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}

	now := s.now()
	expectedSpeech := room.CurrentSpeechNumber
	expectedStatus := room.Status

	var changed bool
	if room.Status == models.RoomScheduled {
		if err := room.StartPrep(now); err != nil {
			return nil, err
		}
		changed = true
	} else {
		changed, err = room.Tick(now)
		if err != nil {
			return nil, err
		}
	}
	if !changed {
		return room, nil
	}

	if err := s.roomRepo.UpdateClock(ctx, room, expectedSpeech, expectedStatus); err != nil {
		if errors.Is(err, repositories.ErrRoomClockConflict) {
			// Параллельный poke уже выполнил этот переход; отдаём свежее
			// состояние, не продвигая часы второй раз.
			return s.roomRepo.GetByID(ctx, roomID)
		}
		return nil, fmt.Errorf("failed to persist clock for room %d: %w", roomID, err)
	}

	s.broadcast(ctx, room)
	return room, nil
}

func (s *roomService) MarkJudging(ctx context.Context, roomID int) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	if err := room.MarkJudging(); err != nil {
		return nil, err
	}
	if err := s.roomRepo.UpdateStatus(ctx, nil, roomID, models.RoomJudging); err != nil {
		return nil, fmt.Errorf("failed to mark room %d judging: %w", roomID, err)
	}
	s.broadcast(ctx, room)
	return room, nil
}

func (s *roomService) GetRoom(ctx context.Context, roomID int) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

func (s *roomService) broadcast(ctx context.Context, room *models.Room) {
	round, err := s.roundRepo.GetByID(ctx, room.RoundID)
	if err != nil {
		s.logger.WarnContext(ctx, "room update not broadcast",
			slog.Int("room_id", room.ID), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToChannel(pairing.TournamentChannel(round.TournamentID), pairing.EventRoomUpdated, room)
}
