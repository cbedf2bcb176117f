package game

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Board boundaries
	CellMin = 0
	CellMax = 8
)

// Lines holds the eight winning triples: three rows, three columns and the two diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Snapshot is a complete board state, indexed row-major (0,1,2 / 3,4,5 / 6,7,8).
type Snapshot [9]PlayerMark

// Outcome is the logical state of the game as seen from one snapshot.
type Outcome string

const (
	InProgress Outcome = "in_progress"
	Won        Outcome = "won"
	Draw       Outcome = "draw"
)

// CalculateWinner returns the mark that holds any of the eight lines, or None.
func CalculateWinner(s Snapshot) PlayerMark {
	for _, line := range Lines {
		a, b, c := s[line[0]], s[line[1]], s[line[2]]
		if a != None && a == b && a == c {
			return a
		}
	}
	return None
}

// OutcomeOf reports whether the snapshot is won, drawn or still being played.
func OutcomeOf(s Snapshot) Outcome {
	if CalculateWinner(s) != None {
		return Won
	}
	if s.IsFull() {
		return Draw
	}
	return InProgress
}

// Opponent returns the other player's mark.
func (m PlayerMark) Opponent() PlayerMark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Valid reports whether m is one of the three known marks.
func (m PlayerMark) Valid() bool {
	return m == None || m == PlayerX || m == PlayerO
}
