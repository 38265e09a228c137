/*
Package playservice owns the authoritative state of one room.

A Game moves through Setup → Active → (Paused ⇄ Active)* → Ended. While Active, every processed
move and every timer tick runs a collision pass and applies its outcome to scores; the first actor
to reach the target score ends the game. Ended is terminal: Reset builds a fresh Setup.
*/
package playservice

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/beka-birhanu/vinom-haunt/game/collision"
	"github.com/beka-birhanu/vinom-haunt/game/grid"
)

// Game-related errors.
var (
	ErrTooManyPlayers        = errors.New("too many players")
	ErrNotEnoughPlayers      = errors.New("not enough players")
	ErrNotBigEnoughDimension = errors.New("dimension is not big enough")
	ErrInvalidPlayerPosition = errors.New("player is out of the field")
	ErrDuplicatePlayer       = errors.New("player already in game")
	ErrUnknownPlayer         = errors.New("player not in game")
	ErrInvalidTransition     = errors.New("invalid game state transition")
	ErrGameNotActive         = errors.New("game is not active")
	ErrNotOwner              = errors.New("client does not control this player")
	ErrMissingEncoder        = errors.New("encoder is required")
)

const (
	maxPlayers   = 4 // Maximum number of actors in one room.
	minDimension = 5 // Minimum field dimension, walls included.

	defaultTargetScore = 50
	defaultTickRate    = 20
)

// Status is a state of the game lifecycle.
type Status int

// Lifecycle states.
const (
	StatusSetup Status = iota
	StatusActive
	StatusPaused
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusSetup:
		return "setup"
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Mode selects how many actors a room accepts and who drives them.
type Mode string

// Game modes.
const (
	ModePractice Mode = "practice" // One actor against enemies.
	ModeOnline   Mode = "online"   // One actor per remote client.
	ModeLocal    Mode = "local"    // Several actors driven by a single client.
)

func (m Mode) minPlayers() int {
	if m == ModePractice {
		return 1
	}
	return 2
}

func (m Mode) maxPlayers() int {
	if m == ModePractice {
		return 1
	}
	return maxPlayers
}

// Logger is the logging surface the game needs.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}

// Config tunes a game.
type Config struct {
	Mode             Mode
	Width            int
	Height           int
	TargetScore      int
	TickRate         int // Ticks per second of the Start loop.
	EnemyStepEvery   int // Enemies advance once every this many ticks; zero keeps them still.
	StreakBonusEvery int // Every this many consecutive coins earns StreakBonus; zero disables it.
	StreakBonus      int
	Spawn            grid.SpawnModel
	Collision        collision.Config
	Seed             int64
	Clock            func() time.Time
}

// Seat is an actor together with the client that drives it.
type Seat struct {
	Actor *game.Actor
	Owner string
}

// Game is the authoritative state of one room. All methods are safe for concurrent use;
// a single lock serializes moves and ticks so that resolution passes never overlap.
type Game struct {
	cfg      Config
	status   Status
	state    game.State
	owners   map[string]string // actor ID → owning client ID
	initial  []Seat            // seats as given at creation, used by Reset
	resolver *collision.Resolver
	rng      *rand.Rand
	now      func() time.Time
	version  int64
	ticks    int
	winner   *game.WinnerRecord
	encoder  game.Encoder
	logger   Logger

	stop     chan struct{}
	stopOnce sync.Once

	StateChan  chan []byte  // Encoded snapshots after each change.
	EventChan  chan []byte  // Encoded event batches of each non-empty pass.
	EndChan    chan []byte  // Final snapshot; closed when the loop exits.
	ActionChan chan Request // Client requests.

	sync.RWMutex
}

// NewGame validates the seats and the field, places the collectables and returns a game in Setup.
func NewGame(cfg Config, seats []Seat, e game.Encoder, logger Logger) (*Game, error) {
	cfg = withDefaults(cfg)

	if e == nil {
		return nil, ErrMissingEncoder
	}
	if len(seats) > cfg.Mode.maxPlayers() {
		return nil, ErrTooManyPlayers
	}
	if len(seats) < cfg.Mode.minPlayers() {
		return nil, ErrNotEnoughPlayers
	}
	if cfg.Width < minDimension || cfg.Height < minDimension {
		return nil, ErrNotBigEnoughDimension
	}

	g := &Game{
		cfg:     cfg,
		initial: copySeats(seats),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		now:     cfg.Clock,
		encoder: e,
		logger:  logger,
	}
	g.openChannels()
	if err := g.setup(); err != nil {
		return nil, err
	}
	return g, nil
}

func withDefaults(cfg Config) Config {
	if cfg.Mode == "" {
		cfg.Mode = ModeOnline
	}
	if cfg.TargetScore <= 0 {
		cfg.TargetScore = defaultTargetScore
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = defaultTickRate
	}
	if cfg.EnemyStepEvery < 0 {
		cfg.EnemyStepEvery = 0
	}
	cfg.Collision = collisionDefaults(cfg.Collision)
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return cfg
}

// collisionDefaults fills the zero fields of c. A negative cooldown is kept: it disables cooldowns.
func collisionDefaults(c collision.Config) collision.Config {
	d := collision.DefaultConfig()
	if c.Cooldown == 0 {
		c.Cooldown = d.Cooldown
	}
	if c.FairnessWindow <= 0 {
		c.FairnessWindow = d.FairnessWindow
	}
	if c.NearTie <= 0 {
		c.NearTie = d.NearTie
	}
	if c.EnemyDamage <= 0 {
		c.EnemyDamage = d.EnemyDamage
	}
	if c.BombDamage <= 0 {
		c.BombDamage = d.BombDamage
	}
	return c
}

func copySeats(seats []Seat) []Seat {
	out := make([]Seat, 0, len(seats))
	for _, s := range seats {
		if s.Actor == nil {
			out = append(out, s)
			continue
		}
		a := *s.Actor
		out = append(out, Seat{Actor: &a, Owner: s.Owner})
	}
	return out
}

// setup builds a fresh Setup state from the initial seats.
func (g *Game) setup() error {
	g.state = game.State{Width: g.cfg.Width, Height: g.cfg.Height}
	g.owners = make(map[string]string)
	for _, seat := range copySeats(g.initial) {
		if err := g.seat(seat); err != nil {
			return err
		}
	}
	if err := grid.Populate(&g.state, g.cfg.Spawn, g.rng); err != nil {
		return fmt.Errorf("populating field: %w", err)
	}

	g.resolver = collision.NewResolver(g.cfg.Collision, collision.WithClock(g.now))
	g.status = StatusSetup
	g.winner = nil
	g.ticks = 0
	g.version++
	return nil
}

func (g *Game) seat(s Seat) error {
	a := s.Actor
	if a == nil || a.ID == "" {
		return ErrUnknownPlayer
	}
	if _, exists := g.owners[a.ID]; exists {
		return ErrDuplicatePlayer
	}
	if !grid.IsValidPosition(a.X, a.Y, g.cfg.Width, g.cfg.Height) {
		return ErrInvalidPlayerPosition
	}
	a.Active = true
	a.Score = 0
	a.Streak = 0
	g.state.Players = append(g.state.Players, a)
	g.owners[a.ID] = s.Owner
	return nil
}

// Begin moves the game from Setup to Active.
func (g *Game) Begin() error {
	g.Lock()
	defer g.Unlock()
	return g.transition(StatusSetup, StatusActive)
}

// Pause suspends moves and ticks. Scores and positions are kept.
func (g *Game) Pause() error {
	g.Lock()
	defer g.Unlock()
	return g.transition(StatusActive, StatusPaused)
}

// Resume continues a paused game.
func (g *Game) Resume() error {
	g.Lock()
	defer g.Unlock()
	return g.transition(StatusPaused, StatusActive)
}

// End stops the game without a winner unless one was already decided. Ending twice is a no-op.
func (g *Game) End() {
	g.Lock()
	defer g.Unlock()
	g.end(nil)
}

// Reset discards an ended game and prepares a fresh Setup with the original seats.
// Channels are replaced, so consumers must read them again after a reset.
func (g *Game) Reset() error {
	g.Lock()
	defer g.Unlock()
	if g.status != StatusEnded {
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, g.status)
	}
	g.resolver.Reset()
	g.openChannels()
	return g.setup()
}

// openChannels gives the next Start loop fresh channels; the previous loop closed EndChan.
func (g *Game) openChannels() {
	g.stop = make(chan struct{})
	g.stopOnce = sync.Once{}
	g.StateChan = make(chan []byte, 16)
	g.EventChan = make(chan []byte, 64)
	g.EndChan = make(chan []byte, 1)
	g.ActionChan = make(chan Request, 64)
}

func (g *Game) transition(from, to Status) error {
	if g.status != from {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, g.status, to)
	}
	g.status = to
	g.version++
	g.info(fmt.Sprintf("game %s", to))
	return nil
}

// end moves the game to Ended, recording winner when given.
func (g *Game) end(winner *game.Actor) {
	if g.status == StatusEnded {
		return
	}
	if winner != nil {
		g.winner = &game.WinnerRecord{WinnerID: winner.ID, WinnerName: winner.Name, WinnerScore: winner.Score}
		g.info(fmt.Sprintf("game won by %s with %d", winner.ID, winner.Score))
	}
	g.status = StatusEnded
	g.version++
	g.stopOnce.Do(func() { close(g.stop) })
}

// AddActor seats a joining actor. Not allowed once the game has ended.
func (g *Game) AddActor(a *game.Actor, owner string) error {
	g.Lock()
	defer g.Unlock()
	if g.status == StatusEnded {
		return ErrGameNotActive
	}
	if len(g.state.Players) >= g.cfg.Mode.maxPlayers() {
		return ErrTooManyPlayers
	}
	if err := g.seat(Seat{Actor: a, Owner: owner}); err != nil {
		return err
	}
	g.version++
	return nil
}

// RemoveActor takes a disconnected actor out of the game. A game left without actors ends.
func (g *Game) RemoveActor(id string) error {
	g.Lock()
	defer g.Unlock()
	if _, ok := g.owners[id]; !ok {
		return ErrUnknownPlayer
	}
	delete(g.owners, id)

	players := g.state.Players[:0]
	for _, p := range g.state.Players {
		if p.ID != id {
			players = append(players, p)
		}
	}
	g.state.Players = players
	g.version++

	if len(players) == 0 {
		g.end(nil)
	}
	return nil
}

// Status returns the lifecycle state.
func (g *Game) Status() Status {
	g.RLock()
	defer g.RUnlock()
	return g.status
}

// Mode returns the game mode.
func (g *Game) Mode() Mode {
	return g.cfg.Mode
}

// Version increases with every state change.
func (g *Game) Version() int64 {
	g.RLock()
	defer g.RUnlock()
	return g.version
}

// Winner returns the winner record once the game was won.
func (g *Game) Winner() (game.WinnerRecord, bool) {
	g.RLock()
	defer g.RUnlock()
	if g.winner == nil {
		return game.WinnerRecord{}, false
	}
	return *g.winner, true
}

// Owns reports whether client drives the actor.
func (g *Game) Owns(client, actorID string) bool {
	g.RLock()
	defer g.RUnlock()
	owner, ok := g.owners[actorID]
	return ok && owner == client
}

// Snapshot copies the current state into its serializable form.
func (g *Game) Snapshot() game.Snapshot {
	g.RLock()
	defer g.RUnlock()
	return g.snapshot()
}

func (g *Game) snapshot() game.Snapshot {
	s := game.Snapshot{
		Version:     g.version,
		Status:      g.status.String(),
		Width:       g.state.Width,
		Height:      g.state.Height,
		TargetScore: g.cfg.TargetScore,
		Players:     make([]game.Actor, 0, len(g.state.Players)),
		Coins:       make([]game.Coin, 0, len(g.state.Coins)),
		Enemies:     make([]game.Enemy, 0, len(g.state.Enemies)),
		Bombs:       make([]game.Bomb, 0, len(g.state.Bombs)),
	}
	for _, p := range g.state.Players {
		s.Players = append(s.Players, *p)
	}
	for _, c := range g.state.Coins {
		if !c.Collected {
			s.Coins = append(s.Coins, *c)
		}
	}
	for _, e := range g.state.Enemies {
		s.Enemies = append(s.Enemies, *e)
	}
	for _, b := range g.state.Bombs {
		if !b.Exploded {
			s.Bombs = append(s.Bombs, *b)
		}
	}
	if g.winner != nil {
		w := *g.winner
		s.Winner = &w
	}
	return s
}

func (g *Game) info(msg string) {
	if g.logger != nil {
		g.logger.Info(msg)
	}
}

func (g *Game) warn(msg string) {
	if g.logger != nil {
		g.logger.Warning(msg)
	}
}
