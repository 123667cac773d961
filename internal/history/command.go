package history

import (
	"errors"

	"tabletennis-scoreboard/internal/engine"
)

var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdPoint CommandType = "Point"
	CmdUndo  CommandType = "Undo"
	CmdRedo  CommandType = "Redo"
)

type Command struct {
	Type   CommandType
	Player engine.Player
}

type EventType string

const (
	EvtPointScored  EventType = "PointScored"
	EvtGameFinished EventType = "GameFinished"
	EvtUndone       EventType = "Undone"
	EvtRedone       EventType = "Redone"
)

type Event struct {
	Type   EventType
	Player engine.Player
	Winner engine.Player
}

// Apply runs one scoreboard command against h. On success it returns the
// emitted events and the new history; on failure h comes back unchanged.
func Apply(h MatchHistory, cmd Command) ([]Event, MatchHistory, error) {
	switch cmd.Type {
	case CmdPoint:
		before := len(h.Current().FinishedGames())
		next, err := h.Point(cmd.Player)
		if err != nil {
			return nil, h, err
		}

		events := []Event{{Type: EvtPointScored, Player: cmd.Player}}
		if finished := next.Current().FinishedGames(); len(finished) > before {
			events = append(events, Event{
				Type:   EvtGameFinished,
				Winner: finished[len(finished)-1].Winner,
			})
		}
		return events, next, nil

	case CmdUndo:
		next, err := h.Undo()
		if err != nil {
			return nil, h, err
		}
		return []Event{{Type: EvtUndone}}, next, nil

	case CmdRedo:
		next, err := h.Redo()
		if err != nil {
			return nil, h, err
		}
		return []Event{{Type: EvtRedone}}, next, nil

	default:
		return nil, h, ErrUnsupportedCommand
	}
}
