// Package game holds the domain model shared by the grid, collision and orchestration packages.
package game

// CoinType distinguishes ordinary coins from the bomb variant.
type CoinType string

// Coin types.
const (
	CoinNormal CoinType = "normal"
	CoinBomb   CoinType = "bomb"
)

// Actor is a player-controlled entity with a position and a score.
type Actor struct {
	ID     string `json:"id"`     // ID is unique for the lifetime of a session.
	Name   string `json:"name"`   // Display name handed to the presentation layer.
	X      int    `json:"x"`      // X is the grid column.
	Y      int    `json:"y"`      // Y is the grid row.
	Score  int    `json:"score"`  // Score never drops below zero once applied by the orchestrator.
	Active bool   `json:"active"` // Inactive actors are ignored by collision checks.
	Streak int    `json:"streak"` // Consecutive coins collected without taking damage.
}

// Coin is a collectable. Collected only ever goes from false to true.
type Coin struct {
	ID        string   `json:"id"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Type      CoinType `json:"type"`
	Value     int      `json:"value"`
	Collected bool     `json:"collected"`
}

// Enemy is a stateless damage source moved by an external system.
type Enemy struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

// Bomb explodes once. Exploded only ever goes from false to true.
type Bomb struct {
	ID       string `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Exploded bool   `json:"exploded"`
}

// State is the authoritative snapshot a resolution pass runs over.
// Players keeps insertion order so that pair evaluation and contestant lists are deterministic.
type State struct {
	Width   int
	Height  int
	Players []*Actor
	Coins   []*Coin
	Enemies []*Enemy
	Bombs   []*Bomb
}

// Player returns the actor with the given ID.
func (s *State) Player(id string) (*Actor, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ActivePlayers returns the active actors in insertion order.
func (s *State) ActivePlayers() []*Actor {
	if s == nil {
		return nil
	}
	active := make([]*Actor, 0, len(s.Players))
	for _, p := range s.Players {
		if p != nil && p.Active {
			active = append(active, p)
		}
	}
	return active
}

// CoinsLeft counts the coins that have not been collected yet.
func (s *State) CoinsLeft() int {
	left := 0
	for _, c := range s.Coins {
		if !c.Collected {
			left++
		}
	}
	return left
}

// Occupied reports whether any entity of the state sits at (x, y).
func (s *State) Occupied(x, y int) bool {
	for _, p := range s.Players {
		if p.X == x && p.Y == y {
			return true
		}
	}
	for _, c := range s.Coins {
		if !c.Collected && c.X == x && c.Y == y {
			return true
		}
	}
	for _, e := range s.Enemies {
		if e.X == x && e.Y == y {
			return true
		}
	}
	for _, b := range s.Bombs {
		if !b.Exploded && b.X == x && b.Y == y {
			return true
		}
	}
	return false
}
