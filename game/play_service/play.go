package playservice

import (
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/beka-birhanu/vinom-haunt/game/collision"
	"github.com/beka-birhanu/vinom-haunt/game/grid"
)

// Move applies a movement request of one actor and resolves the resulting collisions.
// A move into the wall is rejected with grid.ErrWall and changes nothing.
func (g *Game) Move(actorID string, dir grid.Direction, at time.Time) (collision.Result, error) {
	g.Lock()
	defer g.Unlock()

	if g.status != StatusActive {
		return collision.Result{}, ErrGameNotActive
	}
	actor, ok := g.state.Player(actorID)
	if !ok || !actor.Active {
		return collision.Result{}, ErrUnknownPlayer
	}

	x, y, err := grid.NextValid(actor.X, actor.Y, dir, g.state.Width, g.state.Height)
	if err != nil {
		return collision.Result{}, err
	}
	actor.X, actor.Y = x, y
	g.version++

	for _, coin := range g.state.Coins {
		if !coin.Collected && coin.X == x && coin.Y == y {
			g.resolver.NoteArrival(actor, coin.ID, at)
		}
	}

	return g.resolve(at), nil
}

// Tick advances enemies and resolves collisions. It does nothing unless the game is Active.
func (g *Game) Tick(now time.Time) collision.Result {
	g.Lock()
	defer g.Unlock()

	if g.status != StatusActive {
		return collision.Result{}
	}

	g.ticks++
	if g.cfg.EnemyStepEvery > 0 && g.ticks%g.cfg.EnemyStepEvery == 0 && len(g.state.Enemies) > 0 {
		g.moveEnemies()
		g.version++
	}

	return g.resolve(now)
}

// resolve runs one collision pass, applies it and regenerates coins once they are all gone.
func (g *Game) resolve(now time.Time) collision.Result {
	res := g.resolver.ProcessAt(&g.state, now)
	if res.Empty() {
		return res
	}

	g.apply(res)
	g.version++

	if g.status == StatusActive {
		respawned, err := grid.RespawnCoins(&g.state, g.cfg.Spawn, g.rng)
		if err != nil {
			g.warn(fmt.Sprintf("respawning coins: %s", err))
		} else if respawned {
			g.info("coins respawned")
		}
	}
	return res
}

// apply credits coins and subtracts damage in event order, checking the target score after
// each scoring event. Once a winner is found the remaining events are ignored.
func (g *Game) apply(res collision.Result) {
	for _, u := range res.Updates {
		c, ok := u.(collision.CoinCollected)
		if !ok {
			continue
		}
		actor, found := g.state.Player(c.PlayerID)
		if !found {
			continue
		}
		if game.CoinType(c.CoinType) == game.CoinBomb {
			g.damage(actor, g.cfg.Collision.BombDamage)
			continue
		}
		g.credit(actor, c.Value)
		if actor.Score >= g.cfg.TargetScore {
			g.end(actor)
			return
		}
	}

	for _, c := range res.Collisions {
		switch hit := c.(type) {
		case collision.EnemyCollision:
			if actor, found := g.state.Player(hit.PlayerID); found {
				g.damage(actor, hit.Damage)
			}
		case collision.BombCollision:
			if actor, found := g.state.Player(hit.PlayerID); found {
				g.damage(actor, hit.Damage)
			}
		}
	}
}

func (g *Game) credit(a *game.Actor, value int) {
	a.Score += value
	a.Streak++
	if g.cfg.StreakBonusEvery > 0 && a.Streak%g.cfg.StreakBonusEvery == 0 {
		a.Score += g.cfg.StreakBonus
	}
}

func (g *Game) damage(a *game.Actor, amount int) {
	a.Score = max(0, a.Score-amount)
	a.Streak = 0
}

// moveEnemies steps every enemy one cell towards its closest active actor,
// along the axis with the larger gap (horizontal on ties).
func (g *Game) moveEnemies() {
	actors := g.state.ActivePlayers()
	if len(actors) == 0 {
		return
	}
	for _, e := range g.state.Enemies {
		target := closest(actors, e.X, e.Y)
		dx, dy := target.X-e.X, target.Y-e.Y

		var dir grid.Direction
		switch {
		case dx == 0 && dy == 0:
			continue
		case abs(dx) >= abs(dy) && dx > 0:
			dir = grid.Right
		case abs(dx) >= abs(dy):
			dir = grid.Left
		case dy > 0:
			dir = grid.Down
		default:
			dir = grid.Up
		}

		if x, y, err := grid.NextValid(e.X, e.Y, dir, g.state.Width, g.state.Height); err == nil {
			e.X, e.Y = x, y
		}
	}
}

func closest(actors []*game.Actor, x, y int) *game.Actor {
	best := actors[0]
	bestDist := abs(best.X-x) + abs(best.Y-y)
	for _, a := range actors[1:] {
		if d := abs(a.X-x) + abs(a.Y-y); d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// timeUp ends the game when its duration elapses. The sole leader wins; a tie has no winner.
// A paused game is left alone and timeUp reports false.
func (g *Game) timeUp() bool {
	g.Lock()
	defer g.Unlock()
	switch g.status {
	case StatusEnded:
		return true
	case StatusPaused:
		return false
	}

	var leader *game.Actor
	tied := false
	for _, p := range g.state.Players {
		switch {
		case leader == nil || p.Score > leader.Score:
			leader, tied = p, false
		case p.Score == leader.Score:
			tied = true
		}
	}
	if tied || leader == nil || leader.Score == 0 {
		leader = nil
	}
	g.end(leader)
	return true
}
