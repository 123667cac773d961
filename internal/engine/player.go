package engine

import "math/rand"

type Player string

const (
	PlayerLeft  Player = "left"
	PlayerRight Player = "right"
)

// Next returns the other player. Serve rotation and game-to-game serve
// handoff are both built on this fixed 2-cycle.
func (p Player) Next() Player {
	if p == PlayerLeft {
		return PlayerRight
	}
	return PlayerLeft
}

// RandomPlayer picks the opening server for a fresh match.
func RandomPlayer() Player {
	if rand.Intn(2) == 0 {
		return PlayerLeft
	}
	return PlayerRight
}
