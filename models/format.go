package models

import "fmt"

// DebateFormat определяет стиль дебатов, соответствующий ENUM в БД.
type DebateFormat string

const (
	// FormatBP — British Parliamentary: четыре команды по два спикера.
	FormatBP DebateFormat = "bp"
	// FormatWSDC — формат с двумя командами по три спикера.
	FormatWSDC DebateFormat = "wsdc"
)

// SpeechTurn identifies who holds the floor for a given speech:
// the slot (seating position) within the room and the speaker index
// within that slot's team.
type SpeechTurn struct {
	SlotIndex    int
	SpeakerIndex int
}

// Speech order is fixed per format once seating is fixed. These tables are
// the canonical source of truth for turn order.
var (
	bpSpeechOrder = []SpeechTurn{
		{SlotIndex: 0, SpeakerIndex: 0}, // Prime Minister
		{SlotIndex: 1, SpeakerIndex: 0}, // Leader of Opposition
		{SlotIndex: 0, SpeakerIndex: 1}, // Deputy PM
		{SlotIndex: 1, SpeakerIndex: 1}, // Deputy LO
		{SlotIndex: 2, SpeakerIndex: 0}, // Member of Government
		{SlotIndex: 3, SpeakerIndex: 0}, // Member of Opposition
		{SlotIndex: 2, SpeakerIndex: 1}, // Government Whip
		{SlotIndex: 3, SpeakerIndex: 1}, // Opposition Whip
	}
	wsdcSpeechOrder = []SpeechTurn{
		{SlotIndex: 0, SpeakerIndex: 0},
		{SlotIndex: 1, SpeakerIndex: 0},
		{SlotIndex: 0, SpeakerIndex: 1},
		{SlotIndex: 1, SpeakerIndex: 1},
		{SlotIndex: 0, SpeakerIndex: 2},
		{SlotIndex: 1, SpeakerIndex: 2},
	}

	bpPositions   = []string{"OG", "OO", "CG", "CO"}
	wsdcPositions = []string{"Proposition", "Opposition"}

	bpPointsByRank   = map[int]int{1: 3, 2: 2, 3: 1, 4: 0}
	wsdcPointsByRank = map[int]int{1: 1, 2: 0}
)

func (f DebateFormat) Valid() bool {
	return f == FormatBP || f == FormatWSDC
}

// TeamsPerRoom возвращает количество команд в одной комнате.
func (f DebateFormat) TeamsPerRoom() int {
	if f == FormatBP {
		return 4
	}
	return 2
}

func (f DebateFormat) SpeakersPerTeam() int {
	if f == FormatBP {
		return 2
	}
	return 3
}

func (f DebateFormat) TotalSpeeches() int {
	if f == FormatBP {
		return 8
	}
	return 6
}

// Positions returns the seat labels in seating order.
func (f DebateFormat) Positions() []string {
	if f == FormatBP {
		return bpPositions
	}
	return wsdcPositions
}

func (f DebateFormat) SpeechOrder() []SpeechTurn {
	if f == FormatBP {
		return bpSpeechOrder
	}
	return wsdcSpeechOrder
}

// PointsForRank maps a final room rank (1..N) to team points.
func (f DebateFormat) PointsForRank(rank int) (int, error) {
	table := wsdcPointsByRank
	if f == FormatBP {
		table = bpPointsByRank
	}
	points, ok := table[rank]
	if !ok {
		return 0, fmt.Errorf("rank %d is out of range for format %q", rank, f)
	}
	return points, nil
}

// SpeakerScoreRange returns the inclusive bounds for a single speech score.
func (f DebateFormat) SpeakerScoreRange() (min, max float64) {
	if f == FormatBP {
		return 50, 100
	}
	return 60, 80
}
