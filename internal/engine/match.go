package engine

// Match is an ordered sequence of games between the same two players. All
// games but the last are finished; the last may be ongoing or (transiently,
// never through Point) finished.
//
// Match is a value type like Game: every projection is recomputed from
// Games on access, nothing is cached.
type Match struct {
	Games []Game `json:"games"`
}

// Score is the aggregate game count per side.
type Score struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

func NewMatch() Match {
	return NewMatchWithServe(RandomPlayer())
}

// NewMatchWithServe starts a match with a known opening server. Tests and
// replays want determinism; NewMatch is the production entry point.
func NewMatchWithServe(initialServe Player) Match {
	return Match{Games: []Game{NewGame(initialServe)}}
}

func (m Match) CurrentGame() Game {
	return m.Games[len(m.Games)-1]
}

func (m Match) FinishedGames() []Game {
	finished := make([]Game, 0, len(m.Games))
	for _, g := range m.Games {
		if g.Status == GameFinished {
			finished = append(finished, g)
		}
	}
	return finished
}

// ReverseOrder reports whether the display order of the players is flipped
// for the current game. Sides swap every game, so parity of the game count
// decides.
func (m Match) ReverseOrder() bool {
	return len(m.Games)%2 == 0
}

func (m Match) Score() Score {
	var s Score
	for _, g := range m.FinishedGames() {
		if g.Winner == PlayerLeft {
			s.Left++
		} else {
			s.Right++
		}
	}
	return s
}

// Point scores one rally for p in the current game. When that finishes the
// game, a fresh one is opened immediately with the initial serve rotated
// from the finished game's initial serve, so the match is always playable.
// ErrGameFinished surfaces only if the caller somehow holds a match whose
// last game is already finished.
func (m Match) Point(p Player) (Match, error) {
	next, err := m.CurrentGame().Point(p)
	if err != nil {
		return m, err
	}

	games := make([]Game, len(m.Games), len(m.Games)+1)
	copy(games, m.Games)
	games[len(games)-1] = next

	if next.Status == GameFinished {
		games = append(games, NewGame(next.InitialServe.Next()))
	}
	return Match{Games: games}, nil
}
