/*
Package collision resolves what happened during one tick of a room.

A Resolver owns the per-room collision ledger and coin queue. ProcessAll evaluates, in this order,
every pair of active actors, every uncollected coin, every enemy and every unexploded bomb, and
returns the collisions for feedback and the updates the orchestrator must apply. Coin and bomb
flags are flipped on the state directly; scores are left to the caller.
*/
package collision

import (
	"time"

	"github.com/beka-birhanu/vinom-haunt/game"
)

// Default damage values.
const (
	DefaultEnemyDamage = 5
	DefaultBombDamage  = 20
)

// Config tunes a Resolver.
type Config struct {
	Cooldown       time.Duration // Minimum interval between two events of the same pair.
	FairnessWindow time.Duration // How long a coin arrival stays eligible.
	NearTie        time.Duration // Arrivals closer than this are simultaneous.
	EnemyDamage    int
	BombDamage     int
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Cooldown:       DefaultCooldown,
		FairnessWindow: DefaultFairnessWindow,
		NearTie:        DefaultNearTie,
		EnemyDamage:    DefaultEnemyDamage,
		BombDamage:     DefaultBombDamage,
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the time source used by ProcessAll.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// Resolver is the collision engine of a single room. It is not safe for concurrent use.
type Resolver struct {
	cfg     Config
	ledger  *Ledger
	arbiter *Arbiter
	now     func() time.Time
}

// NewResolver returns a resolver with its own ledger and coin queue.
func NewResolver(cfg Config, options ...Option) *Resolver {
	r := &Resolver{
		cfg:     cfg,
		ledger:  NewLedger(),
		arbiter: NewArbiter(cfg.FairnessWindow, cfg.NearTie),
		now:     time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Config returns the resolver's tuning.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Ledger exposes the collision ledger.
func (r *Resolver) Ledger() *Ledger {
	return r.ledger
}

// Arbiter exposes the coin queue.
func (r *Resolver) Arbiter() *Arbiter {
	return r.arbiter
}

// NoteArrival records that an actor reached a coin's cell at the given time.
// The earliest arrival of each actor is kept until the coin is decided or the arrival expires.
func (r *Resolver) NoteArrival(actor *game.Actor, coinID string, at time.Time) {
	if actor == nil {
		return
	}
	r.arbiter.Arrive(actor.ID, coinID, actor.Score, at)
}

// Reset forgets every collision and queued arrival. Called when a game restarts.
func (r *Resolver) Reset() {
	r.ledger.Clear()
	r.arbiter.Clear()
}

// ProcessAll resolves the state at the resolver's current time.
func (r *Resolver) ProcessAll(s *game.State) Result {
	return r.ProcessAt(s, r.now())
}

// ProcessAt resolves the state as of now. A nil state or one without players yields an empty result.
func (r *Resolver) ProcessAt(s *game.State, now time.Time) Result {
	result := emptyResult()
	if s == nil || len(s.Players) == 0 {
		return result
	}

	actors := s.ActivePlayers()
	r.arbiter.Prune(now)

	r.playerCollisions(actors, now, &result)
	r.coinCollisions(s.Coins, actors, now, &result)
	r.enemyCollisions(s.Enemies, actors, now, &result)
	r.bombCollisions(s.Bombs, actors, now, &result)

	return result
}

// playerCollisions records every co-located pair, and emits only pairs off cooldown.
// The ledger is written even when the pair is on cooldown.
func (r *Resolver) playerCollisions(actors []*game.Actor, now time.Time, result *Result) {
	for i := 0; i < len(actors); i++ {
		for j := i + 1; j < len(actors); j++ {
			a, b := actors[i], actors[j]
			if a.ID == b.ID || a.X != b.X || a.Y != b.Y {
				continue
			}
			if r.ledger.RecordAndCheck(PairKey(a.ID, b.ID), now, r.cfg.Cooldown) {
				continue
			}
			result.Collisions = append(result.Collisions, OverlapCollision{
				PlayerID:      a.ID,
				OtherPlayerID: b.ID,
				X:             a.X,
				Y:             a.Y,
			})
		}
	}
}

func (r *Resolver) coinCollisions(coins []*game.Coin, actors []*game.Actor, now time.Time, result *Result) {
	for _, coin := range coins {
		if coin == nil || coin.Collected {
			continue
		}

		decision := r.arbiter.Decide(coin.ID, actorsAt(actors, coin.X, coin.Y), now)
		if decision.Winner == nil {
			continue
		}

		coin.Collected = true
		result.Collisions = append(result.Collisions, CoinCollision{
			PlayerID:    decision.Winner.ID,
			CoinID:      coin.ID,
			CoinType:    string(coin.Type),
			Value:       coin.Value,
			X:           coin.X,
			Y:           coin.Y,
			Priority:    decision.Priority,
			Contested:   decision.Contested,
			Contestants: decision.Contestants,
		})
		result.Updates = append(result.Updates, CoinCollected{
			PlayerID: decision.Winner.ID,
			CoinID:   coin.ID,
			CoinType: string(coin.Type),
			Value:    coin.Value,
		})
	}
}

func (r *Resolver) enemyCollisions(enemies []*game.Enemy, actors []*game.Actor, now time.Time, result *Result) {
	for _, enemy := range enemies {
		if enemy == nil {
			continue
		}
		for _, actor := range actorsAt(actors, enemy.X, enemy.Y) {
			key := EntityKey(actor.ID, KindEnemy, enemy.ID)
			if r.ledger.OnCooldown(key, now, r.cfg.Cooldown) {
				continue
			}
			r.ledger.Record(key, now)
			result.Collisions = append(result.Collisions, EnemyCollision{
				PlayerID: actor.ID,
				EnemyID:  enemy.ID,
				Damage:   r.cfg.EnemyDamage,
				X:        enemy.X,
				Y:        enemy.Y,
			})
		}
	}
}

func (r *Resolver) bombCollisions(bombs []*game.Bomb, actors []*game.Actor, now time.Time, result *Result) {
	for _, bomb := range bombs {
		if bomb == nil || bomb.Exploded {
			continue
		}

		present := actorsAt(actors, bomb.X, bomb.Y)
		if len(present) == 0 {
			continue
		}

		for _, actor := range present {
			key := EntityKey(actor.ID, KindBomb, bomb.ID)
			if r.ledger.OnCooldown(key, now, r.cfg.Cooldown) {
				continue
			}
			r.ledger.Record(key, now)
			result.Collisions = append(result.Collisions, BombCollision{
				PlayerID: actor.ID,
				BombID:   bomb.ID,
				Damage:   r.cfg.BombDamage,
				X:        bomb.X,
				Y:        bomb.Y,
			})
		}

		bomb.Exploded = true
		result.Updates = append(result.Updates, BombExploded{
			BombID:      bomb.ID,
			TriggeredBy: present[0].ID,
			X:           bomb.X,
			Y:           bomb.Y,
		})
	}
}

func actorsAt(actors []*game.Actor, x, y int) []*game.Actor {
	var here []*game.Actor
	for _, a := range actors {
		if a.X == x && a.Y == y {
			here = append(here, a)
		}
	}
	return here
}
