package game

// EventKind names the two user notifications the controller understands.
type EventKind string

const (
	EventPlay EventKind = "play"
	EventJump EventKind = "jump"
)

// Event is a click forwarded up from a cell (Value is the cell index) or
// from the move list (Value is the step).
type Event struct {
	Kind  EventKind
	Value int
}

// Play builds the event sent when the cell at index is clicked.
func Play(index int) Event {
	return Event{Kind: EventPlay, Value: index}
}

// Jump builds the event sent when a move-list entry is clicked.
func Jump(step int) Event {
	return Event{Kind: EventJump, Value: step}
}

// Dispatch applies e to the game and reports whether the state changed.
func (g *Game) Dispatch(e Event) bool {
	switch e.Kind {
	case EventPlay:
		return g.PlayMove(e.Value) == MoveApplied
	case EventJump:
		if e.Value == g.step {
			return false
		}
		return g.JumpTo(e.Value)
	}
	return false
}
