package game

import (
	"errors"
	"fmt"
)

// ErrCorruptRecord is returned by Restore when a record could not have been
// produced by a sequence of legal moves.
var ErrCorruptRecord = errors.New("corrupt game record")

// Record is the serialisable form of a Game.
type Record struct {
	History []Snapshot `json:"history"`
	Step    int        `json:"step"`
}

// Record captures the game's history and current step.
func (g *Game) Record() Record {
	return Record{
		History: g.History(),
		Step:    g.step,
	}
}

// Restore rebuilds a Game from a record, checking that every snapshot follows
// from its predecessor by exactly one legal move.
func Restore(rec Record) (*Game, error) {
	if len(rec.History) == 0 {
		return nil, fmt.Errorf("%w: empty history", ErrCorruptRecord)
	}
	if rec.History[0] != (Snapshot{}) {
		return nil, fmt.Errorf("%w: first snapshot is not empty", ErrCorruptRecord)
	}
	if rec.Step < 0 || rec.Step >= len(rec.History) {
		return nil, fmt.Errorf("%w: step %d outside history of %d", ErrCorruptRecord, rec.Step, len(rec.History))
	}

	for i := 1; i < len(rec.History); i++ {
		if err := checkTransition(rec.History[i-1], rec.History[i], i); err != nil {
			return nil, err
		}
	}

	return &Game{
		history: append([]Snapshot(nil), rec.History...),
		step:    rec.Step,
	}, nil
}

func checkTransition(prev, next Snapshot, step int) error {
	if CalculateWinner(prev) != None {
		return fmt.Errorf("%w: move %d played after the game was decided", ErrCorruptRecord, step)
	}

	want := PlayerX
	if step%2 == 0 {
		want = PlayerO
	}

	changed := 0
	for i := range next {
		if !next[i].Valid() {
			return fmt.Errorf("%w: unknown mark %q in move %d", ErrCorruptRecord, next[i], step)
		}
		if prev[i] == next[i] {
			continue
		}
		if prev[i] != None || next[i] != want {
			return fmt.Errorf("%w: move %d is not a %s placement", ErrCorruptRecord, step, want)
		}
		changed++
	}
	if changed != 1 {
		return fmt.Errorf("%w: move %d changes %d cells", ErrCorruptRecord, step, changed)
	}
	return nil
}
