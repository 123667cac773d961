package engine

import "errors"

var ErrGameFinished = errors.New("game already finished")

const (
	// WinningScore is the points target for a game.
	WinningScore = 11
	// DeuceMargin is the lead required to win once both players reach 10.
	DeuceMargin = 2
)

type GameStatus string

const (
	GameOngoing  GameStatus = "ongoing"
	GameFinished GameStatus = "finished"
)

// Game is one set of rally play to 11 points (win by 2 in deuce). It is a
// value type: Point returns a new Game and never mutates the receiver.
//
// Serve is meaningful only while Status is GameOngoing; Winner only once it
// is GameFinished.
type Game struct {
	Status       GameStatus `json:"status"`
	PointsLeft   int        `json:"points_left"`
	PointsRight  int        `json:"points_right"`
	InitialServe Player     `json:"initial_serve"`
	Serve        Player     `json:"serve,omitempty"`
	Winner       Player     `json:"winner,omitempty"`
}

func NewGame(initialServe Player) Game {
	return Game{
		Status:       GameOngoing,
		InitialServe: initialServe,
		Serve:        initialServe,
	}
}

// IsDeuce reports whether both players have reached at least 10 points.
// Deuce is sticky: once entered it holds for the rest of the game.
func (g Game) IsDeuce() bool {
	return g.PointsLeft >= WinningScore-1 && g.PointsRight >= WinningScore-1
}

func (g Game) Points(p Player) int {
	if p == PlayerLeft {
		return g.PointsLeft
	}
	return g.PointsRight
}

// Point applies one rally won by p.
//
// The deuce flag is evaluated on the state *before* the increment: the win
// condition at 11 only applies when the game was not already in deuce, and
// the per-point serve rotation kicks in from the first point played at
// 10-10. Scoring a finished game is a caller bug and returns
// ErrGameFinished.
func (g Game) Point(p Player) (Game, error) {
	if g.Status == GameFinished {
		return g, ErrGameFinished
	}

	deuce := g.IsDeuce()
	next := g
	if p == PlayerLeft {
		next.PointsLeft++
	} else {
		next.PointsRight++
	}

	if gameOver(next, deuce) {
		next.Status = GameFinished
		next.Serve = ""
		if next.PointsLeft > next.PointsRight {
			next.Winner = PlayerLeft
		} else {
			next.Winner = PlayerRight
		}
		return next, nil
	}

	// Serve changes hands every 2 points, every single point in deuce.
	// The total after this point is the 1-indexed number of the point
	// just played.
	played := next.PointsLeft + next.PointsRight
	if deuce || played%2 == 0 {
		next.Serve = g.Serve.Next()
	}
	return next, nil
}

func gameOver(g Game, deuce bool) bool {
	if !deuce {
		return g.PointsLeft == WinningScore || g.PointsRight == WinningScore
	}
	diff := g.PointsLeft - g.PointsRight
	return diff == DeuceMargin || diff == -DeuceMargin
}
