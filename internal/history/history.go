// Package history keeps an append-only undo/redo log of match snapshots.
//
// Undo and redo never truncate: each command appends the snapshot it lands
// on and moves a 1-based pointer, so every operation is an O(1) append and
// old snapshots stay reachable. The tail of Matches always equals the
// snapshot the pointer designates.
package history

import (
	"errors"

	"tabletennis-scoreboard/internal/engine"
)

var (
	ErrCannotUndo = errors.New("nothing to undo")
	ErrCannotRedo = errors.New("nothing to redo")
)

// MatchHistory is an immutable value: Point, Undo and Redo return a new
// history and leave the receiver untouched.
type MatchHistory struct {
	// Players maps side to display name, fixed at creation.
	Players map[engine.Player]string `json:"players"`

	Matches []engine.Match `json:"matches"`

	// UndoPointer is the 1-based index of the logically current snapshot.
	UndoPointer int `json:"undo_pointer"`

	// UndoCheckpoint is the pointer value at the most recent forward
	// command. It bounds how far redo may travel; a fresh point resets
	// it, invalidating any stale redo branch.
	UndoCheckpoint int `json:"undo_checkpoint"`
}

func NewMatchHistory(leftName, rightName string) MatchHistory {
	return newMatchHistory(leftName, rightName, engine.NewMatch())
}

func newMatchHistory(leftName, rightName string, m engine.Match) MatchHistory {
	return MatchHistory{
		Players: map[engine.Player]string{
			engine.PlayerLeft:  leftName,
			engine.PlayerRight: rightName,
		},
		Matches:        []engine.Match{m},
		UndoPointer:    1,
		UndoCheckpoint: 1,
	}
}

// Current is the most recently appended snapshot. Every command appends the
// snapshot its pointer lands on, so this always equals
// Matches[UndoPointer-1].
func (h MatchHistory) Current() engine.Match {
	return h.Matches[len(h.Matches)-1]
}

func (h MatchHistory) CanUndo() bool {
	return h.UndoPointer > 1
}

func (h MatchHistory) CanRedo() bool {
	return h.UndoPointer > 0 &&
		h.UndoPointer <= len(h.Matches) &&
		h.UndoPointer < h.UndoCheckpoint
}

// Point scores a rally for p on the current snapshot and appends the
// result. Forward progress moves the pointer to the new tail and resets
// the redo boundary.
func (h MatchHistory) Point(p engine.Player) (MatchHistory, error) {
	next, err := h.Current().Point(p)
	if err != nil {
		return h, err
	}

	out := h
	out.Matches = appendSnapshot(h.Matches, next)
	out.UndoPointer = len(out.Matches)
	out.UndoCheckpoint = out.UndoPointer
	return out, nil
}

// Undo appends the snapshot preceding the currently pointed-to one and
// steps the pointer back. Callers must check CanUndo first.
func (h MatchHistory) Undo() (MatchHistory, error) {
	if !h.CanUndo() {
		return h, ErrCannotUndo
	}

	out := h
	out.Matches = appendSnapshot(h.Matches, h.Matches[h.UndoPointer-2])
	out.UndoPointer = h.UndoPointer - 1
	return out, nil
}

// Redo appends the snapshot following the currently pointed-to one and
// steps the pointer forward. Callers must check CanRedo first.
func (h MatchHistory) Redo() (MatchHistory, error) {
	if !h.CanRedo() {
		return h, ErrCannotRedo
	}

	out := h
	out.Matches = appendSnapshot(h.Matches, h.Matches[h.UndoPointer])
	out.UndoPointer = h.UndoPointer + 1
	return out, nil
}

func appendSnapshot(matches []engine.Match, m engine.Match) []engine.Match {
	out := make([]engine.Match, len(matches), len(matches)+1)
	copy(out, matches)
	return append(out, m)
}
