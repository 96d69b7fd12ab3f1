package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/pairing"
	"github.com/tabcore/debate-tab/repositories"
)

// DrawConfig задаёт параметры комнат, создаваемых при жеребьёвке.
type DrawConfig struct {
	PrepDurationSec   int
	SpeechDurationSec int
	JudgesPerRoom     int
}

// DrawResult is the outcome of a draw generation, warnings included.
// Leftover teams and judgeless rooms are reported, never silently dropped.
type DrawResult struct {
	Round              *models.Round `json:"round"`
	Rooms              []models.Room `json:"rooms"`
	LeftoverTeamIDs    []int         `json:"leftover_team_ids,omitempty"`
	JudgelessRoomIDs   []int         `json:"judgeless_room_ids,omitempty"`
	InstitutionClashes int           `json:"institution_clashes"`
}

type DrawService interface {
	GenerateDraw(ctx context.Context, tournamentID, roundNumber int) (*DrawResult, error)
	DeleteDraw(ctx context.Context, roundID int) error
	GetDraw(ctx context.Context, roundID int) (*models.Round, error)
}

type drawService struct {
	runTx          txRunner
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	roomRepo       repositories.RoomRepository
	teamRepo       repositories.TeamRepository
	judgeRepo      repositories.JudgeRepository
	hub            *pairing.Hub
	cfg            DrawConfig
	newRand        func() *rand.Rand
	logger         *slog.Logger
}

func NewDrawService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	roomRepo repositories.RoomRepository,
	teamRepo repositories.TeamRepository,
	judgeRepo repositories.JudgeRepository,
	hub *pairing.Hub,
	cfg DrawConfig,
	newRand func() *rand.Rand,
	logger *slog.Logger,
) DrawService {
	return &drawService{
		runTx:          transactionRunner(db),
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		roomRepo:       roomRepo,
		teamRepo:       teamRepo,
		judgeRepo:      judgeRepo,
		hub:            hub,
		cfg:            cfg,
		newRand:        newRand,
		logger:         logger,
	}
}

func (s *drawService) GenerateDraw(ctx context.Context, tournamentID, roundNumber int) (*DrawResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.TournamentSetup && tournament.Status != models.TournamentActive {
		return nil, fmt.Errorf("%w: status is %q", ErrTournamentNotActive, tournament.Status)
	}

	round, err := s.roundRepo.GetByTournamentAndNumber(ctx, tournamentID, roundNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, fmt.Errorf("%w: round %d of tournament %d", ErrRoundNotFound, roundNumber, tournamentID)
		}
		return nil, fmt.Errorf("failed to load round %d: %w", roundNumber, err)
	}

	existing, err := s.roomRepo.CountByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count rooms for round %d: %w", round.ID, err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: round %d has %d rooms", ErrDrawAlreadyExists, round.ID, existing)
	}

	confirmed := models.TeamStatusConfirmed
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed teams: %w", err)
	}

	var generator pairing.DrawGenerator
	if roundNumber == 1 {
		generator = pairing.NewRandomDrawGenerator()
	} else {
		generator = pairing.NewPowerPairingGenerator()
	}

	rng := s.newRand()
	draw, err := generator.GenerateDraw(ctx, pairing.GenerateDrawParams{
		RoundNumber: roundNumber,
		Format:      tournament.Format,
		Teams:       teams,
		Rand:        rng,
	})
	if err != nil {
		if errors.Is(err, pairing.ErrNotEnoughTeams) {
			return nil, fmt.Errorf("%w: %d confirmed teams, %d needed per room",
				ErrInsufficientTeams, len(teams), tournament.Format.TeamsPerRoom())
		}
		return nil, fmt.Errorf("draw generation failed for round %d: %w", round.ID, err)
	}

	judges, err := s.judgeRepo.ListAvailableByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available judges: %w", err)
	}
	pairing.AllocateJudges(draw.Rooms, judges, s.cfg.JudgesPerRoom, institutionsByTeam(teams), rng)

	txErr := s.runTx(ctx, func(tx *sql.Tx) error {
		for _, room := range draw.Rooms {
			room.RoundID = round.ID
			room.PrepDurationSec = s.cfg.PrepDurationSec
			room.SpeechDurationSec = s.cfg.SpeechDurationSec
			room.TotalSpeeches = tournament.Format.TotalSpeeches()
			if err := s.roomRepo.Create(ctx, tx, room); err != nil {
				return fmt.Errorf("failed to create room: %w", err)
			}
		}
		if err := s.roundRepo.SetDebateTotals(ctx, tx, round.ID, len(draw.Rooms)); err != nil {
			return fmt.Errorf("failed to set debate totals: %w", err)
		}
		if err := s.roundRepo.UpdateStatus(ctx, tx, round.ID, models.RoundInProgress); err != nil {
			return fmt.Errorf("failed to update round status: %w", err)
		}
		if tournament.Status == models.TournamentSetup {
			if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentActive); err != nil {
				return fmt.Errorf("failed to activate tournament: %w", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	round.Status = models.RoundInProgress
	round.TotalDebates = len(draw.Rooms)

	var judgeless []int
	for _, room := range draw.Rooms {
		if len(room.JudgeIDs) == 0 {
			judgeless = append(judgeless, room.ID)
		}
	}
	if len(judgeless) > 0 {
		s.logger.WarnContext(ctx, "rooms left without judges",
			slog.Int("round_id", round.ID), slog.Any("room_ids", judgeless))
	}
	if len(draw.LeftoverTeamIDs) > 0 {
		s.logger.WarnContext(ctx, "teams sitting out this round",
			slog.Int("round_id", round.ID), slog.Any("team_ids", draw.LeftoverTeamIDs))
	}

	result := &DrawResult{
		Round:              round,
		Rooms:              RoomsToValues(draw.Rooms),
		LeftoverTeamIDs:    draw.LeftoverTeamIDs,
		JudgelessRoomIDs:   judgeless,
		InstitutionClashes: draw.InstitutionClashes,
	}
	s.hub.BroadcastToChannel(pairing.TournamentChannel(tournamentID), pairing.EventDrawGenerated, result)
	return result, nil
}

func (s *drawService) DeleteDraw(ctx context.Context, roundID int) error {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to load round %d: %w", roundID, err)
	}

	rooms, err := s.roomRepo.ListByRound(ctx, roundID)
	if err != nil {
		return fmt.Errorf("failed to list rooms for round %d: %w", roundID, err)
	}
	for _, room := range rooms {
		if room.HasResults {
			return fmt.Errorf("%w: room %d is completed", ErrDrawLocked, room.ID)
		}
	}

	txErr := s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.roomRepo.DeleteByRound(ctx, tx, roundID); err != nil {
			return fmt.Errorf("failed to delete rooms: %w", err)
		}
		if err := s.roundRepo.ResetDraw(ctx, tx, roundID); err != nil {
			return fmt.Errorf("failed to reset round: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	s.hub.BroadcastToChannel(pairing.TournamentChannel(round.TournamentID), pairing.EventDrawDeleted,
		map[string]int{"round_id": roundID})
	return nil
}

func (s *drawService) GetDraw(ctx context.Context, roundID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to load round %d: %w", roundID, err)
	}
	rooms, err := s.roomRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms for round %d: %w", roundID, err)
	}
	round.Rooms = RoomsToValues(rooms)
	return round, nil
}
