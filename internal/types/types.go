// Package types holds the wire messages exchanged with scoreboard clients
// and the render view assembled from a match history. Everything a
// scoreboard needs to draw is flattened into plain JSON fields.
package types

import (
	"tabletennis-scoreboard/internal/engine"
	"tabletennis-scoreboard/internal/history"
)

// ClientMessage is what a scoreboard UI sends over the websocket.
// Type is "Point" | "Undo" | "Redo"; Player accompanies "Point".
type ClientMessage struct {
	Type   string `json:"type"`
	Player string `json:"player,omitempty"`
}

// ServerMessage is pushed to every connected client after each applied
// command. Type is "StateSnapshot" | "Error".
type ServerMessage struct {
	Type    string `json:"type"`
	Version int    `json:"version,omitempty"`
	State   *View  `json:"state,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GameView is one game as rendered on the board.
type GameView struct {
	Status      engine.GameStatus `json:"status"`
	PointsLeft  int               `json:"points_left"`
	PointsRight int               `json:"points_right"`
	Serve       engine.Player     `json:"serve,omitempty"`
	Winner      engine.Player     `json:"winner,omitempty"`
	Deuce       bool              `json:"deuce"`
}

// View is the full render state of a scoreboard session.
type View struct {
	LeftName  string `json:"left_name"`
	RightName string `json:"right_name"`

	Score        engine.Score `json:"score"`
	CurrentGame  GameView     `json:"current_game"`
	GamesPlayed  []GameView   `json:"games_played"`
	ReverseOrder bool         `json:"reverse_order"`

	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// BuildView flattens the logically current snapshot of h for rendering.
func BuildView(h history.MatchHistory) View {
	m := h.Current()

	finished := m.FinishedGames()
	played := make([]GameView, 0, len(finished))
	for _, g := range finished {
		played = append(played, gameView(g))
	}

	return View{
		LeftName:     h.Players[engine.PlayerLeft],
		RightName:    h.Players[engine.PlayerRight],
		Score:        m.Score(),
		CurrentGame:  gameView(m.CurrentGame()),
		GamesPlayed:  played,
		ReverseOrder: m.ReverseOrder(),
		CanUndo:      h.CanUndo(),
		CanRedo:      h.CanRedo(),
	}
}

func gameView(g engine.Game) GameView {
	return GameView{
		Status:      g.Status,
		PointsLeft:  g.PointsLeft,
		PointsRight: g.PointsRight,
		Serve:       g.Serve,
		Winner:      g.Winner,
		Deuce:       g.IsDeuce(),
	}
}
