package services

import (
	"context"
	"time"

	"github.com/tabcore/debate-tab/models"
	"github.com/tabcore/debate-tab/repositories"
)

// Ручные фейки репозиториев для сервисных тестов.

type fakeRoomRepo struct {
	rooms       map[int]*models.Room
	clockErr    error
	saveErr     error
	clockCalls  int
	statusCalls []models.RoomStatus
}

func newFakeRoomRepo(rooms ...*models.Room) *fakeRoomRepo {
	repo := &fakeRoomRepo{rooms: make(map[int]*models.Room)}
	for _, room := range rooms {
		repo.rooms[room.ID] = room
	}
	return repo
}

func (f *fakeRoomRepo) Create(_ context.Context, _ repositories.SQLExecutor, room *models.Room) error {
	room.ID = len(f.rooms) + 1
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomRepo) GetByID(_ context.Context, id int) (*models.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, repositories.ErrRoomNotFound
	}
	copied := *room
	return &copied, nil
}

func (f *fakeRoomRepo) ListByRound(_ context.Context, roundID int) ([]*models.Room, error) {
	var out []*models.Room
	for _, room := range f.rooms {
		if room.RoundID == roundID {
			out = append(out, room)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) ListCompletedByTournament(_ context.Context, _ int) ([]*models.Room, error) {
	var out []*models.Room
	for _, room := range f.rooms {
		if room.HasResults {
			out = append(out, room)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) CountByRound(_ context.Context, roundID int) (int, error) {
	n := 0
	for _, room := range f.rooms {
		if room.RoundID == roundID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRoomRepo) DeleteByRound(_ context.Context, _ repositories.SQLExecutor, roundID int) error {
	for id, room := range f.rooms {
		if room.RoundID == roundID {
			delete(f.rooms, id)
		}
	}
	return nil
}

func (f *fakeRoomRepo) UpdateJudges(_ context.Context, _ repositories.SQLExecutor, room *models.Room) error {
	f.rooms[room.ID] = room
	return nil
}

func (f *fakeRoomRepo) UpdateClock(_ context.Context, room *models.Room, _ int, _ models.RoomStatus) error {
	f.clockCalls++
	if f.clockErr != nil {
		return f.clockErr
	}
	copied := *room
	f.rooms[room.ID] = &copied
	return nil
}

func (f *fakeRoomRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RoomStatus) error {
	f.statusCalls = append(f.statusCalls, status)
	if room, ok := f.rooms[id]; ok {
		room.Status = status
	}
	return nil
}

func (f *fakeRoomRepo) SaveResults(_ context.Context, _ repositories.SQLExecutor, room *models.Room) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	stored, ok := f.rooms[room.ID]
	if ok && stored.HasResults {
		return repositories.ErrRoomResultsExist
	}
	room.HasResults = true
	room.Status = models.RoomCompleted
	copied := *room
	f.rooms[room.ID] = &copied
	return nil
}

type fakeRoundRepo struct {
	rounds map[int]*models.Round
}

func newFakeRoundRepo(rounds ...*models.Round) *fakeRoundRepo {
	repo := &fakeRoundRepo{rounds: make(map[int]*models.Round)}
	for _, round := range rounds {
		repo.rounds[round.ID] = round
	}
	return repo
}

func (f *fakeRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	round.ID = len(f.rounds) + 1
	f.rounds[round.ID] = round
	return nil
}

func (f *fakeRoundRepo) GetByID(_ context.Context, id int) (*models.Round, error) {
	round, ok := f.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	return round, nil
}

func (f *fakeRoundRepo) GetByTournamentAndNumber(_ context.Context, tournamentID, number int) (*models.Round, error) {
	for _, round := range f.rounds {
		if round.TournamentID == tournamentID && round.Number == number {
			return round, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (f *fakeRoundRepo) GetLastByTournament(_ context.Context, tournamentID int) (*models.Round, error) {
	var last *models.Round
	for _, round := range f.rounds {
		if round.TournamentID != tournamentID {
			continue
		}
		if last == nil || round.Number > last.Number {
			last = round
		}
	}
	if last == nil {
		return nil, repositories.ErrRoundNotFound
	}
	return last, nil
}

func (f *fakeRoundRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Round, error) {
	var out []*models.Round
	for _, round := range f.rounds {
		if round.TournamentID == tournamentID {
			out = append(out, round)
		}
	}
	return out, nil
}

func (f *fakeRoundRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.RoundStatus) error {
	if round, ok := f.rounds[id]; ok {
		round.Status = status
	}
	return nil
}

func (f *fakeRoundRepo) SetDebateTotals(_ context.Context, _ repositories.SQLExecutor, id, totalDebates int) error {
	if round, ok := f.rounds[id]; ok {
		round.TotalDebates = totalDebates
	}
	return nil
}

func (f *fakeRoundRepo) IncrementCompletedDebates(_ context.Context, _ repositories.SQLExecutor, id int) (int, int, error) {
	round, ok := f.rounds[id]
	if !ok {
		return 0, 0, repositories.ErrRoundNotFound
	}
	if round.CompletedDebates >= round.TotalDebates {
		return 0, 0, repositories.ErrRoundCountersExhausted
	}
	round.CompletedDebates++
	return round.CompletedDebates, round.TotalDebates, nil
}

func (f *fakeRoundRepo) ResetDraw(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if round, ok := f.rounds[id]; ok {
		round.Status = models.RoundScheduled
		round.TotalDebates = 0
		round.CompletedDebates = 0
	}
	return nil
}

type fakeBallotRepo struct {
	ballots map[[2]int]*models.Ballot
	nextID  int
}

func newFakeBallotRepo() *fakeBallotRepo {
	return &fakeBallotRepo{ballots: make(map[[2]int]*models.Ballot)}
}

func (f *fakeBallotRepo) GetOrCreate(_ context.Context, roomID, judgeID int) (*models.Ballot, error) {
	key := [2]int{roomID, judgeID}
	if ballot, ok := f.ballots[key]; ok {
		copied := *ballot
		return &copied, nil
	}
	f.nextID++
	ballot := &models.Ballot{
		ID:      f.nextID,
		RoomID:  roomID,
		JudgeID: judgeID,
		Status:  models.BallotDraft,
	}
	f.ballots[key] = ballot
	copied := *ballot
	return &copied, nil
}

func (f *fakeBallotRepo) GetByRoomAndJudge(_ context.Context, roomID, judgeID int) (*models.Ballot, error) {
	ballot, ok := f.ballots[[2]int{roomID, judgeID}]
	if !ok {
		return nil, repositories.ErrBallotNotFound
	}
	copied := *ballot
	return &copied, nil
}

func (f *fakeBallotRepo) Submit(_ context.Context, ballot *models.Ballot) error {
	stored, ok := f.ballots[[2]int{ballot.RoomID, ballot.JudgeID}]
	if !ok {
		return repositories.ErrBallotNotFound
	}
	if stored.Status != models.BallotDraft {
		return repositories.ErrBallotImmutable
	}
	now := time.Now()
	stored.Rankings = ballot.Rankings
	stored.SpeakerScores = ballot.SpeakerScores
	stored.TeamFeedback = ballot.TeamFeedback
	stored.Feedback = ballot.Feedback
	stored.Status = models.BallotSubmitted
	stored.SubmittedAt = &now
	return nil
}

func (f *fakeBallotRepo) CountSubmittedByRoom(_ context.Context, roomID int) (int, error) {
	n := 0
	for key, ballot := range f.ballots {
		if key[0] == roomID && ballot.Status == models.BallotSubmitted {
			n++
		}
	}
	return n, nil
}

func (f *fakeBallotRepo) ListSubmittedByRoom(_ context.Context, roomID int) ([]*models.Ballot, error) {
	var out []*models.Ballot
	for key, ballot := range f.ballots {
		if key[0] == roomID && ballot.Status == models.BallotSubmitted {
			copied := *ballot
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	champions   map[int]int
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{
		tournaments: make(map[int]*models.Tournament),
		champions:   make(map[int]int),
	}
	for _, tournament := range tournaments {
		repo.tournaments[tournament.ID] = tournament
	}
	return repo
}

func (f *fakeTournamentRepo) Create(_ context.Context, tournament *models.Tournament) error {
	tournament.ID = len(f.tournaments) + 1
	f.tournaments[tournament.ID] = tournament
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	tournament, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *tournament
	return &copied, nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	if tournament, ok := f.tournaments[id]; ok {
		tournament.Status = status
	}
	return nil
}

func (f *fakeTournamentRepo) SetChampion(_ context.Context, _ repositories.SQLExecutor, id, championTeamID int) error {
	f.champions[id] = championTeamID
	if tournament, ok := f.tournaments[id]; ok {
		tournament.Status = models.TournamentCompleted
		tournament.ChampionTeamID = &championTeamID
	}
	return nil
}

type appliedResult struct {
	teamID int
	points int
	speaks float64
}

type fakeTeamRepo struct {
	teams   map[int]*models.Team
	applied []appliedResult
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: make(map[int]*models.Team)}
	for _, team := range teams {
		repo.teams[team.ID] = team
	}
	return repo
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	team.ID = len(f.teams) + 1
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (f *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID int, statusFilter *models.TeamStatus) ([]*models.Team, error) {
	var out []*models.Team
	for _, team := range f.teams {
		if team.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && team.Status != *statusFilter {
			continue
		}
		out = append(out, team)
	}
	return out, nil
}

func (f *fakeTeamRepo) UpdateStatus(_ context.Context, id int, status models.TeamStatus) error {
	if team, ok := f.teams[id]; ok {
		team.Status = status
	}
	return nil
}

func (f *fakeTeamRepo) ApplyRoomResult(_ context.Context, _ repositories.SQLExecutor, teamID, points int, speaks float64) error {
	f.applied = append(f.applied, appliedResult{teamID: teamID, points: points, speaks: speaks})
	if team, ok := f.teams[teamID]; ok {
		team.TotalPoints += points
		team.TotalSpeaks += speaks
	}
	return nil
}

func (f *fakeTeamRepo) SetBreaking(_ context.Context, _ repositories.SQLExecutor, teamIDs []int) error {
	for _, id := range teamIDs {
		if team, ok := f.teams[id]; ok {
			team.Breaking = true
		}
	}
	return nil
}

type fakeJudgeRepo struct {
	judges []*models.Judge
}

func (f *fakeJudgeRepo) Create(_ context.Context, judge *models.Judge) error {
	judge.ID = len(f.judges) + 1
	f.judges = append(f.judges, judge)
	return nil
}

func (f *fakeJudgeRepo) GetByID(_ context.Context, id int) (*models.Judge, error) {
	for _, judge := range f.judges {
		if judge.ID == id {
			copied := *judge
			return &copied, nil
		}
	}
	return nil, repositories.ErrJudgeNotFound
}

func (f *fakeJudgeRepo) ListAvailableByTournament(_ context.Context, tournamentID int) ([]*models.Judge, error) {
	var out []*models.Judge
	for _, judge := range f.judges {
		if judge.TournamentID == tournamentID && judge.Available {
			out = append(out, judge)
		}
	}
	return out, nil
}

type fakeResults struct {
	calls []int
	err   error
}

func (f *fakeResults) AggregateRoom(_ context.Context, roomID int) error {
	f.calls = append(f.calls, roomID)
	return f.err
}
