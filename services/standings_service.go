package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/repositories"
	"github.com/tabcore/debate-tab/standings"
)

type StandingsService interface {
	// GetStandings returns the tie-broken table over confirmed teams,
	// rank 1..N, computed from all completed rooms.
	GetStandings(ctx context.Context, tournamentID int) ([]*standings.TeamStanding, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	roomRepo       repositories.RoomRepository
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	roomRepo repositories.RoomRepository,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		roomRepo:       roomRepo,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]*standings.TeamStanding, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	var teams []*models.Team
	var completedRooms []*models.Room

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		confirmed := models.TeamStatusConfirmed
		listed, err := s.teamRepo.ListByTournament(gCtx, tournamentID, &confirmed)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		teams = listed
		return nil
	})
	g.Go(func() error {
		listed, err := s.roomRepo.ListCompletedByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list completed rooms: %w", err)
		}
		completedRooms = listed
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(standingsSeed(tournamentID, len(completedRooms))))
	return standings.Resolve(teams, completedRooms, rng), nil
}

// standingsSeed derives the coin-flip seed from the tournament and the
// snapshot (count of completed rooms), so recomputing the same snapshot
// reproduces the same table while later snapshots may flip differently.
func standingsSeed(tournamentID, completedRooms int) int64 {
	return int64(tournamentID)<<32 | int64(completedRooms)
}
