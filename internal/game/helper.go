package game

import "strings"

// IsFull reports whether every cell holds a mark.
func (s Snapshot) IsFull() bool {
	for _, m := range s {
		if m == None {
			return false
		}
	}
	return true
}

// Place returns a copy of s with index set to mark. The receiver is left untouched.
func (s Snapshot) Place(index int, mark PlayerMark) Snapshot {
	s[index] = mark
	return s
}

// Count returns how many cells hold a player's mark.
func (s Snapshot) Count() int {
	n := 0
	for _, m := range s {
		if m != None {
			n++
		}
	}
	return n
}

// String renders the snapshot as three rows, using "." for empty cells.
func (s Snapshot) String() string {
	var b strings.Builder
	for i, m := range s {
		if m == None {
			b.WriteByte('.')
		} else {
			b.WriteString(string(m))
		}
		if i%3 == 2 && i != len(s)-1 {
			b.WriteByte('/')
		}
	}
	return b.String()
}

func inRange(index int) bool {
	return index >= CellMin && index <= CellMax
}
