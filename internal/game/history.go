package game

// MoveResult tells the caller what PlayMove did. Only MoveApplied changes state.
type MoveResult int

const (
	MoveApplied MoveResult = iota
	MoveOutOfRange
	MoveGameDecided
	MoveCellOccupied
)

func (r MoveResult) String() string {
	switch r {
	case MoveApplied:
		return "applied"
	case MoveOutOfRange:
		return "out_of_range"
	case MoveGameDecided:
		return "game_decided"
	case MoveCellOccupied:
		return "cell_occupied"
	}
	return "unknown"
}

// Game owns the history of snapshots and the step currently being viewed.
// The active player and the winner are always derived from those two fields.
// A Game is not safe for concurrent use.
type Game struct {
	history []Snapshot
	step    int
}

// NewGame returns a game whose history holds a single empty snapshot.
func NewGame() *Game {
	return &Game{
		history: []Snapshot{{}},
		step:    0,
	}
}

// Step returns the index of the snapshot being viewed.
func (g *Game) Step() int {
	return g.step
}

// Len returns the number of snapshots in the history.
func (g *Game) Len() int {
	return len(g.history)
}

// History returns a copy of the snapshot history.
func (g *Game) History() []Snapshot {
	out := make([]Snapshot, len(g.history))
	copy(out, g.history)
	return out
}

// Current returns the snapshot at the current step.
func (g *Game) Current() Snapshot {
	return g.history[g.step]
}

// XIsNext reports whether X moves next. X plays on even steps.
func (g *Game) XIsNext() bool {
	return g.step%2 == 0
}

// ActivePlayer returns the mark of the player who moves next.
func (g *Game) ActivePlayer() PlayerMark {
	if g.XIsNext() {
		return PlayerX
	}
	return PlayerO
}

// Winner returns the winner of the current snapshot, if any.
func (g *Game) Winner() PlayerMark {
	return CalculateWinner(g.Current())
}

// Outcome returns the logical state of the current snapshot.
func (g *Game) Outcome() Outcome {
	return OutcomeOf(g.Current())
}

// PlayMove places the active player's mark at index. Moves on a decided board,
// on an occupied cell or outside the board leave the game untouched.
// Playing after a jump discards every snapshot after the current step.
func (g *Game) PlayMove(index int) MoveResult {
	if !inRange(index) {
		return MoveOutOfRange
	}
	current := g.Current()
	if CalculateWinner(current) != None {
		return MoveGameDecided
	}
	if current[index] != None {
		return MoveCellOccupied
	}

	next := current.Place(index, g.ActivePlayer())
	g.history = append(g.history[:g.step+1:g.step+1], next)
	g.step = len(g.history) - 1
	return MoveApplied
}

// JumpTo moves the view to step without touching the history.
// Steps outside the history are ignored.
func (g *Game) JumpTo(step int) bool {
	if step < 0 || step >= len(g.history) {
		return false
	}
	g.step = step
	return true
}
