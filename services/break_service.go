package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/pairing"
	"github.com/tabcore/debate-tab/repositories"
	"github.com/tabcore/debate-tab/standings"
)

// BreakResult is the announced break: the breaking teams in seeding order
// plus the cutoff stats recorded for transparency.
type BreakResult struct {
	Breaking     []*standings.TeamStanding `json:"breaking"`
	CutoffRank   int                       `json:"cutoff_rank"`
	CutoffPoints int                       `json:"cutoff_points"`
	CutoffSpeaks float64                   `json:"cutoff_speaks"`
}

// Bracket is the elimination phase view: break rounds with their rooms.
type Bracket struct {
	TournamentID   int            `json:"tournament_id"`
	Rounds         []models.Round `json:"rounds"`
	ChampionTeamID *int           `json:"champion_team_id,omitempty"`
}

type BreakService interface {
	AnnounceBreak(ctx context.Context, tournamentID int) (*BreakResult, error)
	GenerateQuarterfinals(ctx context.Context, tournamentID int) (*DrawResult, error)
	GenerateSemifinals(ctx context.Context, tournamentID, priorRoundID int) (*DrawResult, error)
	GenerateGrandFinal(ctx context.Context, tournamentID, priorRoundID int) (*DrawResult, error)
	GetBracket(ctx context.Context, tournamentID int) (*Bracket, error)
	CompleteTournament(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type breakService struct {
	runTx          txRunner
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	roomRepo       repositories.RoomRepository
	teamRepo       repositories.TeamRepository
	judgeRepo      repositories.JudgeRepository
	standings      StandingsService
	hub            *pairing.Hub
	cfg            DrawConfig
	newRand        func() *rand.Rand
	logger         *slog.Logger
}

func NewBreakService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	roomRepo repositories.RoomRepository,
	teamRepo repositories.TeamRepository,
	judgeRepo repositories.JudgeRepository,
	standingsService StandingsService,
	hub *pairing.Hub,
	cfg DrawConfig,
	newRand func() *rand.Rand,
	logger *slog.Logger,
) BreakService {
	return &breakService{
		runTx:          transactionRunner(db),
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		roomRepo:       roomRepo,
		teamRepo:       teamRepo,
		judgeRepo:      judgeRepo,
		standings:      standingsService,
		hub:            hub,
		cfg:            cfg,
		newRand:        newRand,
		logger:         logger,
	}
}

func (s *breakService) AnnounceBreak(ctx context.Context, tournamentID int) (*BreakResult, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.TournamentBreak {
		return nil, ErrBreakAlreadyDone
	}
	if tournament.Status != models.TournamentActive {
		return nil, fmt.Errorf("%w: status is %q", ErrTournamentNotActive, tournament.Status)
	}

	rounds, err := s.roundRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	for _, round := range rounds {
		if round.Type == models.RoundPreliminary && round.Status != models.RoundCompleted {
			return nil, fmt.Errorf("%w: round %d is %q", ErrPrelimsIncomplete, round.Number, round.Status)
		}
	}

	table, err := s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	n := tournament.BreakingTeams
	if n < 2 {
		return nil, ErrInvalidBreakSize
	}
	if n > len(table) {
		return nil, fmt.Errorf("%w: %d breaking slots, %d teams", ErrInsufficientTeams, n, len(table))
	}

	breaking := table[:n]
	teamIDs := make([]int, n)
	for i, standing := range breaking {
		teamIDs[i] = standing.Team.ID
	}

	txErr := s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.teamRepo.SetBreaking(ctx, tx, teamIDs); err != nil {
			return fmt.Errorf("failed to mark breaking teams: %w", err)
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentBreak); err != nil {
			return fmt.Errorf("failed to move tournament to break: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	cutoff := breaking[n-1].Team
	result := &BreakResult{
		Breaking:     breaking,
		CutoffRank:   n,
		CutoffPoints: cutoff.TotalPoints,
		CutoffSpeaks: cutoff.TotalSpeaks,
	}
	s.hub.BroadcastToChannel(pairing.TournamentChannel(tournamentID), pairing.EventBreakAnnounced, result)
	return result, nil
}

func (s *breakService) GenerateQuarterfinals(ctx context.Context, tournamentID int) (*DrawResult, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.TournamentBreak {
		return nil, fmt.Errorf("%w: status is %q", ErrBreakNotAnnounced, tournament.Status)
	}
	if err := s.ensureStageAbsent(ctx, tournamentID, models.RoundBreak, models.RoundSemi, models.RoundFinal); err != nil {
		return nil, err
	}

	table, err := s.standings.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	ordered := make([]*models.Team, 0, tournament.BreakingTeams)
	for _, standing := range table {
		if standing.Team.Breaking {
			ordered = append(ordered, standing.Team)
		}
		if len(ordered) == tournament.BreakingTeams {
			break
		}
	}

	groups, err := pairing.SeedQuarterfinals(ordered, tournament.Format)
	if err != nil {
		if errors.Is(err, pairing.ErrTooFewBreakingTeams) {
			return nil, ErrInvalidBreakSize
		}
		return nil, fmt.Errorf("failed to seed opening bracket: %w", err)
	}

	roundType := openingStageType(len(ordered), tournament.Format)
	rooms := pairing.RoomsFromSeeds(groups, tournament.Format)
	return s.createEliminationRound(ctx, tournament, roundType, rooms)
}

func (s *breakService) GenerateSemifinals(ctx context.Context, tournamentID, priorRoundID int) (*DrawResult, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	prior, err := s.completedStage(ctx, tournamentID, priorRoundID, models.RoundBreak)
	if err != nil {
		return nil, err
	}
	if err := s.ensureStageAbsent(ctx, tournamentID, models.RoundSemi, models.RoundFinal); err != nil {
		return nil, err
	}

	// Из каждой четвертьфинальной комнаты проходит половина мест.
	advance := tournament.Format.TeamsPerRoom() / 2
	groups, err := s.advancingGroups(ctx, prior.ID, advance, tournament.Format)
	if err != nil {
		return nil, err
	}
	rooms := pairing.RoomsFromSeeds(groups, tournament.Format)
	return s.createEliminationRound(ctx, tournament, models.RoundSemi, rooms)
}

func (s *breakService) GenerateGrandFinal(ctx context.Context, tournamentID, priorRoundID int) (*DrawResult, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	prior, err := s.completedStage(ctx, tournamentID, priorRoundID, models.RoundSemi)
	if err != nil {
		return nil, err
	}
	if err := s.ensureStageAbsent(ctx, tournamentID, models.RoundFinal); err != nil {
		return nil, err
	}

	// В 4-командном формате финал собирает команды полуфинала (до четырёх,
	// byes не в счёт) в порядке их результата; в 2-командном — победителей
	// каждой комнаты.
	advance := tournament.Format.TeamsPerRoom()
	if tournament.Format.TeamsPerRoom() == 2 {
		advance = 1
	}
	groups, err := s.advancingGroups(ctx, prior.ID, advance, tournament.Format)
	if err != nil {
		return nil, err
	}
	rooms := pairing.RoomsFromSeeds(groups, tournament.Format)
	return s.createEliminationRound(ctx, tournament, models.RoundFinal, rooms)
}

func (s *breakService) GetBracket(ctx context.Context, tournamentID int) (*Bracket, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	rounds, err := s.roundRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	var elimRounds []*models.Round
	for _, round := range rounds {
		if round.IsElimination() {
			elimRounds = append(elimRounds, round)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, round := range elimRounds {
		round := round
		g.Go(func() error {
			rooms, err := s.roomRepo.ListByRound(gCtx, round.ID)
			if err != nil {
				return fmt.Errorf("failed to list rooms for round %d: %w", round.ID, err)
			}
			round.Rooms = RoomsToValues(rooms)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Bracket{
		TournamentID:   tournamentID,
		Rounds:         RoundsToValues(elimRounds),
		ChampionTeamID: tournament.ChampionTeamID,
	}, nil
}

func (s *breakService) CompleteTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.TournamentCompleted {
		return tournament, nil
	}

	rounds, err := s.roundRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	var final *models.Round
	for _, round := range rounds {
		if round.Type == models.RoundFinal {
			final = round
			break
		}
	}
	if final == nil || final.Status != models.RoundCompleted {
		return nil, fmt.Errorf("%w: grand final is not completed", ErrChampionUndecided)
	}

	rooms, err := s.roomRepo.ListByRound(ctx, final.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list final rooms: %w", err)
	}

	championID := 0
	for _, room := range rooms {
		for i := range room.Slots {
			slot := &room.Slots[i]
			if !slot.IsBye && slot.Rank != nil && *slot.Rank == 1 {
				championID = slot.TeamID
			}
		}
	}
	if championID == 0 {
		return nil, ErrChampionUndecided
	}

	txErr := s.runTx(ctx, func(tx *sql.Tx) error {
		return s.tournamentRepo.SetChampion(ctx, tx, tournamentID, championID)
	})
	if txErr != nil {
		return nil, fmt.Errorf("failed to record champion: %w", txErr)
	}

	tournament.Status = models.TournamentCompleted
	tournament.ChampionTeamID = &championID
	s.hub.BroadcastToChannel(pairing.TournamentChannel(tournamentID), pairing.EventChampionDecided,
		map[string]int{"champion_team_id": championID})
	return tournament, nil
}

func (s *breakService) getTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return tournament, nil
}

// ensureStageAbsent отклоняет повторную генерацию уже существующей стадии.
func (s *breakService) ensureStageAbsent(ctx context.Context, tournamentID int, types ...models.RoundType) error {
	rounds, err := s.roundRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to list rounds: %w", err)
	}
	for _, round := range rounds {
		for _, t := range types {
			if round.Type == t {
				return fmt.Errorf("%w: round %d is %q", ErrBracketStageExists, round.Number, round.Type)
			}
		}
	}
	return nil
}

func (s *breakService) completedStage(ctx context.Context, tournamentID, roundID int, wantType models.RoundType) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to load round %d: %w", roundID, err)
	}
	if round.TournamentID != tournamentID {
		return nil, fmt.Errorf("%w: round %d belongs to tournament %d", ErrRoundNotFound, roundID, round.TournamentID)
	}
	if round.Type != wantType {
		return nil, fmt.Errorf("%w: round %d is %q, want %q", ErrPriorStageIncomplete, roundID, round.Type, wantType)
	}
	if round.Status != models.RoundCompleted {
		return nil, fmt.Errorf("%w: round %d is %q", ErrPriorStageIncomplete, roundID, round.Status)
	}
	return round, nil
}

// advancingGroups собирает проходящие команды из комнат стадии (advance
// лучших из каждой, в порядке результата) и нарезает их на комнаты
// следующей стадии.
func (s *breakService) advancingGroups(ctx context.Context, roundID, advance int, format models.DebateFormat) ([][]*models.Team, error) {
	rooms, err := s.roomRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms for round %d: %w", roundID, err)
	}

	var winners []*models.Team
	for _, room := range rooms {
		ids, err := pairing.TopFromRoom(room, advance)
		if err != nil {
			if errors.Is(err, pairing.ErrRoomNotRanked) {
				return nil, fmt.Errorf("%w: room %d has no ranks", ErrPriorStageIncomplete, room.ID)
			}
			return nil, err
		}
		for _, id := range ids {
			team, err := s.teamRepo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to load team %d: %w", id, err)
			}
			winners = append(winners, team)
		}
	}

	arity := format.TeamsPerRoom()
	var groups [][]*models.Team
	for start := 0; start < len(winners); start += arity {
		end := start + arity
		if end > len(winners) {
			end = len(winners)
		}
		group := make([]*models.Team, arity)
		copy(group, winners[start:end])
		groups = append(groups, group)
	}
	return groups, nil
}

// createEliminationRound persists a bracket stage: next round number, rooms
// with judges allocated, totals set, round opened.
func (s *breakService) createEliminationRound(ctx context.Context, tournament *models.Tournament, roundType models.RoundType, rooms []*models.Room) (*DrawResult, error) {
	last, err := s.roundRepo.GetLastByTournament(ctx, tournament.ID)
	if err != nil && !errors.Is(err, repositories.ErrRoundNotFound) {
		return nil, fmt.Errorf("failed to load last round: %w", err)
	}
	number := 1
	if last != nil {
		number = last.Number + 1
	}

	confirmed := models.TeamStatusConfirmed
	teams, err := s.teamRepo.ListByTournament(ctx, tournament.ID, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	judges, err := s.judgeRepo.ListAvailableByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	pairing.AllocateJudges(rooms, judges, s.cfg.JudgesPerRoom, institutionsByTeam(teams), s.newRand())

	round := &models.Round{
		TournamentID: tournament.ID,
		Number:       number,
		Type:         roundType,
		Status:       models.RoundScheduled,
	}

	txErr := s.runTx(ctx, func(tx *sql.Tx) error {
		if err := s.roundRepo.Create(ctx, tx, round); err != nil {
			if errors.Is(err, repositories.ErrRoundNumberConflict) {
				return ErrBracketStageExists
			}
			return fmt.Errorf("failed to create round: %w", err)
		}
		for _, room := range rooms {
			room.RoundID = round.ID
			room.PrepDurationSec = s.cfg.PrepDurationSec
			room.SpeechDurationSec = s.cfg.SpeechDurationSec
			room.TotalSpeeches = tournament.Format.TotalSpeeches()
			if err := s.roomRepo.Create(ctx, tx, room); err != nil {
				return fmt.Errorf("failed to create room: %w", err)
			}
		}
		if err := s.roundRepo.SetDebateTotals(ctx, tx, round.ID, len(rooms)); err != nil {
			return fmt.Errorf("failed to set debate totals: %w", err)
		}
		if err := s.roundRepo.UpdateStatus(ctx, tx, round.ID, models.RoundInProgress); err != nil {
			return fmt.Errorf("failed to open round: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	round.Status = models.RoundInProgress
	round.TotalDebates = len(rooms)

	var judgeless []int
	for _, room := range rooms {
		if len(room.JudgeIDs) == 0 {
			judgeless = append(judgeless, room.ID)
		}
	}
	if len(judgeless) > 0 {
		s.logger.WarnContext(ctx, "bracket rooms left without judges",
			slog.Int("round_id", round.ID), slog.Any("room_ids", judgeless))
	}

	result := &DrawResult{
		Round:            round,
		Rooms:            RoomsToValues(rooms),
		JudgelessRoomIDs: judgeless,
	}
	s.hub.BroadcastToChannel(pairing.TournamentChannel(tournament.ID), pairing.EventDrawGenerated, result)
	return result, nil
}

// openingStageType collapses degenerate fields: two teams go straight to a
// final, three share a semifinal with a bye; the 2-team format jumps to a
// final whenever a full bracket of 8 is not available.
func openingStageType(breaking int, format models.DebateFormat) models.RoundType {
	if format.TeamsPerRoom() == 2 {
		if breaking < 8 {
			return models.RoundFinal
		}
		return models.RoundBreak
	}
	switch {
	case breaking == 2:
		return models.RoundFinal
	case breaking == 3:
		return models.RoundSemi
	default:
		return models.RoundBreak
	}
}
