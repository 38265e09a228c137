package grid

import (
	"errors"
	"math"
	"math/rand"

	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/google/uuid"
)

var (
	ErrInvalidSpawnModel = errors.New("invalid spawn model")
	ErrNotEnoughCells    = errors.New("not enough free cells")
)

// SpawnModel defines what a freshly generated field contains.
// CoinValue and BonusValue are the two possible coin values; BonusProb is the base probability of
// the bonus value, raised for cells close to the middle of the field.
// BombCoinProb is the probability that a coin is the bomb variant.
type SpawnModel struct {
	Coins        int
	CoinValue    int
	BonusValue   int
	BonusProb    float32
	BombCoinProb float32
	Bombs        int
	Enemies      int
}

func (m SpawnModel) validate() error {
	if m.Coins < 0 || m.Bombs < 0 || m.Enemies < 0 {
		return ErrInvalidSpawnModel
	}
	if m.BonusProb < 0 || m.BonusProb > 1 || m.BombCoinProb < 0 || m.BombCoinProb > 1 {
		return ErrInvalidSpawnModel
	}
	if min(m.CoinValue, m.BonusValue) < 0 {
		return ErrInvalidSpawnModel
	}
	return nil
}

// Populate places coins, bombs and enemies on distinct free cells of the state.
// Cells holding actors or live entities are never used.
func Populate(s *game.State, m SpawnModel, rng *rand.Rand) error {
	if err := m.validate(); err != nil {
		return err
	}

	free := freeCells(s, rng)
	if len(free) < m.Coins+m.Bombs+m.Enemies {
		return ErrNotEnoughCells
	}

	for i := 0; i < m.Coins; i++ {
		s.Coins = append(s.Coins, newCoin(m, free[0], s.Width, s.Height, rng))
		free = free[1:]
	}
	for i := 0; i < m.Bombs; i++ {
		s.Bombs = append(s.Bombs, &game.Bomb{ID: "bomb-" + uuid.NewString(), X: free[0][0], Y: free[0][1]})
		free = free[1:]
	}
	for i := 0; i < m.Enemies; i++ {
		s.Enemies = append(s.Enemies, &game.Enemy{ID: "enemy-" + uuid.NewString(), X: free[0][0], Y: free[0][1]})
		free = free[1:]
	}
	return nil
}

// RespawnCoins replaces a fully collected coin set with a new batch.
// It reports false and leaves the state untouched while any coin is still uncollected
// or when the model spawns no coins.
func RespawnCoins(s *game.State, m SpawnModel, rng *rand.Rand) (bool, error) {
	if m.Coins == 0 || s.CoinsLeft() > 0 {
		return false, nil
	}
	s.Coins = nil
	if err := Populate(s, SpawnModel{
		Coins:        m.Coins,
		CoinValue:    m.CoinValue,
		BonusValue:   m.BonusValue,
		BonusProb:    m.BonusProb,
		BombCoinProb: m.BombCoinProb,
	}, rng); err != nil {
		return false, err
	}
	return true, nil
}

func newCoin(m SpawnModel, cell [2]int, width, height int, rng *rand.Rand) *game.Coin {
	coin := &game.Coin{
		ID:    "coin-" + uuid.NewString(),
		X:     cell[0],
		Y:     cell[1],
		Type:  game.CoinNormal,
		Value: m.CoinValue,
	}
	if rng.Float32() < calcProb(m.BonusProb, cell, width, height) {
		coin.Value = m.BonusValue
	}
	if rng.Float32() < m.BombCoinProb {
		coin.Type = game.CoinBomb
		coin.Value = 0
	}
	return coin
}

// freeCells returns the unoccupied interior cells in random order.
func freeCells(s *game.State, rng *rand.Rand) [][2]int {
	cells := Interior(s.Width, s.Height)
	free := cells[:0]
	for _, c := range cells {
		if !s.Occupied(c[0], c[1]) {
			free = append(free, c)
		}
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	return free
}

// calcProb raises the base probability for cells close to the middle of the field.
// A cell on the middle gets base + (1-base)/10, a cell on a far corner keeps the base.
func calcProb(baseProb float32, cell [2]int, width, height int) float32 {
	midX, midY := width/2, height/2

	distToMid := math.Abs(float64(cell[0]-midX)) + math.Abs(float64(cell[1]-midY))
	maxDist := float64(midX + midY)
	if maxDist == 0 {
		return baseProb
	}

	normalizedDist := 1.0 - distToMid/maxDist
	return baseProb + (1-baseProb)*float32(normalizedDist)/10
}
