package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/repositories"
)

// CreateTournamentInput задаёт настройку нового турнира.
type CreateTournamentInput struct {
	Name          string              `json:"name"`
	Format        models.DebateFormat `json:"format"`
	BreakingTeams int                 `json:"breaking_teams"`
	PrelimRounds  int                 `json:"prelim_rounds"`
	OrganizerID   int                 `json:"-"`
}

type TournamentService interface {
	// CreateTournament registers a tournament and its preliminary rounds
	// in one transaction.
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	AddTeam(ctx context.Context, team *models.Team) error
	AddJudge(ctx context.Context, judge *models.Judge) error
	ConfirmTeam(ctx context.Context, teamID int) error
	WithdrawTeam(ctx context.Context, teamID int) error
}

type tournamentService struct {
	runTx          txRunner
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	teamRepo       repositories.TeamRepository
	judgeRepo      repositories.JudgeRepository
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	teamRepo repositories.TeamRepository,
	judgeRepo repositories.JudgeRepository,
) TournamentService {
	return &tournamentService{
		runTx:          transactionRunner(db),
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		teamRepo:       teamRepo,
		judgeRepo:      judgeRepo,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameNeeded
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, input.Format)
	}
	if input.BreakingTeams < 2 {
		return nil, ErrInvalidBreakSize
	}
	if input.PrelimRounds < 1 {
		return nil, ErrInvalidPrelimRounds
	}

	tournament := &models.Tournament{
		Name:          strings.TrimSpace(input.Name),
		Format:        input.Format,
		Status:        models.TournamentSetup,
		BreakingTeams: input.BreakingTeams,
		OrganizerID:   input.OrganizerID,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	txErr := s.runTx(ctx, func(tx *sql.Tx) error {
		for number := 1; number <= input.PrelimRounds; number++ {
			round := &models.Round{
				TournamentID: tournament.ID,
				Number:       number,
				Type:         models.RoundPreliminary,
				Status:       models.RoundScheduled,
			}
			if err := s.roundRepo.Create(ctx, tx, round); err != nil {
				return fmt.Errorf("failed to create round %d: %w", number, err)
			}
			tournament.Rounds = append(tournament.Rounds, *round)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return tournament, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gCtx, id, nil)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		values := make([]models.Team, 0, len(teams))
		for _, team := range teams {
			values = append(values, *team)
		}
		tournament.Teams = values
		return nil
	})
	g.Go(func() error {
		rounds, err := s.roundRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list rounds: %w", err)
		}
		tournament.Rounds = RoundsToValues(rounds)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) AddTeam(ctx context.Context, team *models.Team) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", team.TournamentID, err)
	}
	if len(team.Members) != tournament.Format.SpeakersPerTeam() {
		return fmt.Errorf("%w: team needs %d members", ErrInvalidFormat, tournament.Format.SpeakersPerTeam())
	}
	if team.Status == "" {
		team.Status = models.TeamStatusPending
	}
	return s.teamRepo.Create(ctx, team)
}

func (s *tournamentService) AddJudge(ctx context.Context, judge *models.Judge) error {
	if _, err := s.tournamentRepo.GetByID(ctx, judge.TournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", judge.TournamentID, err)
	}
	return s.judgeRepo.Create(ctx, judge)
}

func (s *tournamentService) ConfirmTeam(ctx context.Context, teamID int) error {
	if err := s.teamRepo.UpdateStatus(ctx, teamID, models.TeamStatusConfirmed); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

func (s *tournamentService) WithdrawTeam(ctx context.Context, teamID int) error {
	if err := s.teamRepo.UpdateStatus(ctx, teamID, models.TeamStatusWithdrawn); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}
