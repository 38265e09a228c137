package playservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/beka-birhanu/vinom-haunt/game/collision"
	"github.com/beka-birhanu/vinom-haunt/game/grid"
)

// Request is a raw client request: an action type and its encoded payload.
type Request struct {
	From    string // ID of the client that sent the request.
	Type    byte
	Payload []byte
}

// Start begins the game and serves ticks and client requests until it ends, the context is
// cancelled or the duration elapses. A non-positive duration means no time limit, and the
// duration only runs down while the game is Active.
// The final snapshot is sent on EndChan, which is then closed.
func (g *Game) Start(ctx context.Context, duration time.Duration) {
	defer g.publishEnd()

	if err := g.Begin(); err != nil && !errors.Is(err, ErrInvalidTransition) {
		g.warn(fmt.Sprintf("starting game: %s", err))
	}

	ticker := time.NewTicker(time.Second / time.Duration(g.cfg.TickRate))
	defer ticker.Stop()

	clock := newCountdown(duration)
	defer clock.stop()

	g.RLock()
	stop := g.stop
	g.RUnlock()

	g.publishState()
	for {
		select {
		case <-ctx.Done():
			g.End()
			return
		case <-stop:
			return
		case <-clock.C():
			if g.timeUp() {
				return
			}
			clock.expire()
		case <-ticker.C:
			if res := g.Tick(g.now()); !res.Empty() {
				g.publishEvents(res)
				g.publishState()
			}
		case req := <-g.ActionChan:
			g.handleRequest(req)
		}
		clock.follow(g.Status())
	}
}

// countdown is the game duration. It only runs while the game is Active.
type countdown struct {
	timer     *time.Timer
	deadline  time.Time
	remaining time.Duration
	running   bool
}

// newCountdown returns a running countdown, or nil when d is not positive.
func newCountdown(d time.Duration) *countdown {
	if d <= 0 {
		return nil
	}
	return &countdown{timer: time.NewTimer(d), deadline: time.Now().Add(d), running: true}
}

// C fires when the time is up. It is nil while the countdown is held.
func (c *countdown) C() <-chan time.Time {
	if c == nil || !c.running {
		return nil
	}
	return c.timer.C
}

// follow holds the countdown while the game is paused and restarts it with the time left on resume.
func (c *countdown) follow(status Status) {
	if c == nil {
		return
	}
	switch {
	case status == StatusPaused && c.running:
		c.timer.Stop()
		c.remaining = max(time.Until(c.deadline), 0)
		c.running = false
	case status == StatusActive && !c.running:
		c.deadline = time.Now().Add(c.remaining)
		c.timer.Reset(c.remaining)
		c.running = true
	}
}

// expire records a timer that fired before a pause was noticed; the game ends once resumed.
func (c *countdown) expire() {
	c.remaining = 0
	c.running = false
}

func (c *countdown) stop() {
	if c != nil {
		c.timer.Stop()
	}
}

// Stop ends the game; a running Start loop returns shortly after.
func (g *Game) Stop() {
	g.End()
}

// handleRequest processes incoming requests based on their type.
func (g *Game) handleRequest(req Request) {
	switch req.Type {
	case game.StateRequestActionType:
		g.publishState()
	case game.PauseActionType:
		if err := g.Pause(); err == nil {
			g.publishState()
		}
	case game.ResumeActionType:
		if err := g.Resume(); err == nil {
			g.publishState()
		}
	case game.MoveActionType:
		a, err := g.encoder.UnmarshalAction(req.Payload)
		if err != nil {
			g.warn(fmt.Sprintf("decoding move from %s: %s", req.From, err))
			return
		}
		g.handleMove(req.From, a)
	default:
		g.warn(fmt.Sprintf("unknown request type %d from %s", req.Type, req.From))
	}
}

// handleMove validates ownership, applies the move and broadcasts the changes.
func (g *Game) handleMove(from string, a game.Action) {
	if !g.Owns(from, a.ActorID) {
		g.warn(fmt.Sprintf("%s: %s moving %s", ErrNotOwner, from, a.ActorID))
		return
	}

	res, err := g.Move(a.ActorID, grid.Direction(a.Direction), g.now())
	switch {
	case errors.Is(err, grid.ErrWall), errors.Is(err, ErrGameNotActive):
		return
	case err != nil:
		g.warn(fmt.Sprintf("move of %s rejected: %s", a.ActorID, err))
		return
	}

	if !res.Empty() {
		g.publishEvents(res)
	}
	g.publishState()
}

func (g *Game) publishState() {
	g.RLock()
	snapshot := g.snapshot()
	g.RUnlock()

	payload, err := g.encoder.MarshalGameState(snapshot)
	if err != nil {
		g.warn(fmt.Sprintf("encoding state: %s", err))
		return
	}
	select {
	case g.StateChan <- payload:
	default:
		g.warn("state channel full, dropping snapshot")
	}
}

func (g *Game) publishEvents(res collision.Result) {
	g.RLock()
	batch := ToEventBatch(res, g.version)
	g.RUnlock()

	payload, err := g.encoder.MarshalEvents(batch)
	if err != nil {
		g.warn(fmt.Sprintf("encoding events: %s", err))
		return
	}
	select {
	case g.EventChan <- payload:
	default:
		g.warn("event channel full, dropping batch")
	}
}

func (g *Game) publishEnd() {
	g.End()

	g.RLock()
	snapshot := g.snapshot()
	g.RUnlock()

	payload, err := g.encoder.MarshalGameState(snapshot)
	if err != nil {
		g.warn(fmt.Sprintf("encoding final state: %s", err))
	} else {
		g.EndChan <- payload
	}
	close(g.EndChan)
}
