package playservice

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/beka-birhanu/vinom-haunt/game/collision"
	mpencoder "github.com/beka-birhanu/vinom-haunt/game/msgpack_encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 10, 31, 20, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func seat(id string, x, y int) Seat {
	return Seat{Actor: &game.Actor{ID: id, Name: "name-" + id, X: x, Y: y}, Owner: "client-" + id}
}

// newTestGame returns an empty 10x10 online game with two actors, no generated entities and a fixed clock.
func newTestGame(t *testing.T, cfg Config, seats ...Seat) (*Game, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: t0}
	if cfg.Width == 0 {
		cfg.Width, cfg.Height = 10, 10
	}
	cfg.Clock = clock.Now
	if len(seats) == 0 {
		seats = []Seat{seat("a", 1, 1), seat("b", 8, 8)}
	}
	g, err := NewGame(cfg, seats, &mpencoder.MsgPack{}, nil)
	require.NoError(t, err)
	return g, clock
}

func TestNewGameValidation(t *testing.T) {
	enc := &mpencoder.MsgPack{}
	tests := []struct {
		name  string
		cfg   Config
		seats []Seat
		err   error
	}{
		{
			name:  "practice needs exactly one actor",
			cfg:   Config{Mode: ModePractice, Width: 10, Height: 10},
			seats: []Seat{seat("a", 1, 1), seat("b", 2, 2)},
			err:   ErrTooManyPlayers,
		},
		{
			name:  "online needs two actors",
			cfg:   Config{Mode: ModeOnline, Width: 10, Height: 10},
			seats: []Seat{seat("a", 1, 1)},
			err:   ErrNotEnoughPlayers,
		},
		{
			name:  "at most four actors",
			cfg:   Config{Mode: ModeLocal, Width: 10, Height: 10},
			seats: []Seat{seat("a", 1, 1), seat("b", 2, 2), seat("c", 3, 3), seat("d", 4, 4), seat("e", 5, 5)},
			err:   ErrTooManyPlayers,
		},
		{
			name:  "field too small",
			cfg:   Config{Width: 4, Height: 10},
			seats: []Seat{seat("a", 1, 1), seat("b", 2, 2)},
			err:   ErrNotBigEnoughDimension,
		},
		{
			name:  "actor on the wall",
			cfg:   Config{Width: 10, Height: 10},
			seats: []Seat{seat("a", 0, 1), seat("b", 2, 2)},
			err:   ErrInvalidPlayerPosition,
		},
		{
			name:  "duplicate actor",
			cfg:   Config{Width: 10, Height: 10},
			seats: []Seat{seat("a", 1, 1), seat("a", 2, 2)},
			err:   ErrDuplicatePlayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame(tt.cfg, tt.seats, enc, nil)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := NewGame(Config{Width: 10, Height: 10}, []Seat{seat("a", 1, 1), seat("b", 2, 2)}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingEncoder)
}

func TestNewGameDoesNotAliasSeats(t *testing.T) {
	seats := []Seat{seat("a", 1, 1), seat("b", 8, 8)}
	g, _ := newTestGame(t, Config{}, seats...)

	seats[0].Actor.X = 5
	assert.Equal(t, 1, g.Snapshot().Players[0].X)
}

func TestNewGamePopulatesField(t *testing.T) {
	g, _ := newTestGame(t, Config{Spawn: spawnModel(5, 2, 1)})

	s := g.Snapshot()
	assert.Len(t, s.Coins, 5)
	assert.Len(t, s.Bombs, 2)
	assert.Len(t, s.Enemies, 1)
	assert.Equal(t, StatusSetup.String(), s.Status)
	for _, p := range s.Players {
		assert.True(t, p.Active)
		assert.Zero(t, p.Score)
	}
}

func TestLifecycle(t *testing.T) {
	g, _ := newTestGame(t, Config{})
	assert.Equal(t, StatusSetup, g.Status())

	assert.ErrorIs(t, g.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, g.Resume(), ErrInvalidTransition)

	require.NoError(t, g.Begin())
	assert.Equal(t, StatusActive, g.Status())
	assert.ErrorIs(t, g.Begin(), ErrInvalidTransition)

	require.NoError(t, g.Pause())
	assert.Equal(t, StatusPaused, g.Status())
	require.NoError(t, g.Resume())
	require.NoError(t, g.Pause())
	require.NoError(t, g.Resume())

	g.End()
	assert.Equal(t, StatusEnded, g.Status())
	assert.ErrorIs(t, g.Begin(), ErrInvalidTransition)
	assert.ErrorIs(t, g.Resume(), ErrInvalidTransition)

	v := g.Version()
	g.End()
	assert.Equal(t, v, g.Version(), "ending twice changes nothing")

	_, won := g.Winner()
	assert.False(t, won)
}

func TestReset(t *testing.T) {
	g, _ := newTestGame(t, Config{Spawn: spawnModel(3, 0, 0)})
	assert.ErrorIs(t, g.Reset(), ErrInvalidTransition)

	require.NoError(t, g.Begin())
	_, err := g.Move("a", "right", t0)
	require.NoError(t, err)
	g.End()

	require.NoError(t, g.Reset())
	assert.Equal(t, StatusSetup, g.Status())
	s := g.Snapshot()
	assert.Equal(t, 1, s.Players[0].X, "seats start over")
	assert.Len(t, s.Coins, 3)
	assert.Nil(t, s.Winner)
	assert.Zero(t, g.resolver.Ledger().Len())

	require.NoError(t, g.Begin())
}

func TestAddAndRemoveActor(t *testing.T) {
	g, _ := newTestGame(t, Config{})

	require.NoError(t, g.AddActor(&game.Actor{ID: "c", X: 4, Y: 4}, "client-c"))
	assert.ErrorIs(t, g.AddActor(&game.Actor{ID: "c", X: 5, Y: 5}, "client-c"), ErrDuplicatePlayer)
	assert.ErrorIs(t, g.AddActor(&game.Actor{ID: "d", X: 9, Y: 9}, "client-d"), ErrInvalidPlayerPosition)
	require.NoError(t, g.AddActor(&game.Actor{ID: "d", X: 5, Y: 5}, "client-d"))
	assert.ErrorIs(t, g.AddActor(&game.Actor{ID: "e", X: 6, Y: 6}, "client-e"), ErrTooManyPlayers)
	assert.True(t, g.Owns("client-c", "c"))
	assert.False(t, g.Owns("client-a", "c"))

	assert.ErrorIs(t, g.RemoveActor("zzz"), ErrUnknownPlayer)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.RemoveActor(id))
	}
	assert.Equal(t, StatusSetup, g.Status())

	require.NoError(t, g.RemoveActor("d"))
	assert.Equal(t, StatusEnded, g.Status(), "an empty room ends")
	assert.ErrorIs(t, g.AddActor(&game.Actor{ID: "f", X: 2, Y: 2}, "client-f"), ErrGameNotActive)
}

func TestSnapshotHidesSpentEntities(t *testing.T) {
	g, _ := newTestGame(t, Config{})
	g.state.Coins = []*game.Coin{{ID: "c1", X: 3, Y: 3}, {ID: "c2", X: 4, Y: 4, Collected: true}}
	g.state.Bombs = []*game.Bomb{{ID: "b1", X: 5, Y: 5, Exploded: true}}

	s := g.Snapshot()
	require.Len(t, s.Coins, 1)
	assert.Equal(t, "c1", s.Coins[0].ID)
	assert.Empty(t, s.Bombs)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "paused", StatusPaused.String())
	assert.Equal(t, "status(9)", Status(9).String())
}

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(Config{EnemyStepEvery: -3})
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, defaultTargetScore, cfg.TargetScore)
	assert.Equal(t, defaultTickRate, cfg.TickRate)
	assert.Zero(t, cfg.EnemyStepEvery)
	assert.Equal(t, collision.DefaultConfig(), cfg.Collision)
	assert.NotNil(t, cfg.Clock)

	cfg = withDefaults(Config{Collision: collision.Config{Cooldown: 250 * time.Millisecond}})
	assert.Equal(t, 250*time.Millisecond, cfg.Collision.Cooldown)
	assert.Equal(t, collision.DefaultEnemyDamage, cfg.Collision.EnemyDamage)
	assert.Equal(t, collision.DefaultBombDamage, cfg.Collision.BombDamage)
	assert.Equal(t, collision.DefaultFairnessWindow, cfg.Collision.FairnessWindow)
	assert.Equal(t, collision.DefaultNearTie, cfg.Collision.NearTie)

	cfg = withDefaults(Config{Collision: collision.Config{Cooldown: -time.Second}})
	assert.Equal(t, -time.Second, cfg.Collision.Cooldown, "a negative cooldown disables cooldowns")
}
