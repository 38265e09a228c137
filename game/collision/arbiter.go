package collision

import (
	"sort"
	"time"

	"github.com/beka-birhanu/vinom-haunt/game"
)

const (
	// DefaultFairnessWindow bounds how long an arrival stays eligible for a contested coin.
	DefaultFairnessWindow = 50 * time.Millisecond
	// DefaultNearTie is roughly one frame; arrivals closer than this are treated as simultaneous.
	DefaultNearTie = 16 * time.Millisecond
)

// Arrival is an actor reaching a coin's cell.
type Arrival struct {
	ActorID        string
	CoinID         string
	At             time.Time
	ScoreAtArrival int
}

// Decision is the outcome of arbitrating one coin.
type Decision struct {
	Winner      *game.Actor
	Priority    int
	Contested   bool
	Contestants []string
}

// Arbiter decides which actor wins a coin reached by several actors.
// Arrivals are kept in insertion order; the queue is small because every decision purges its coin.
type Arbiter struct {
	queue          []Arrival
	fairnessWindow time.Duration
	nearTie        time.Duration
}

// NewArbiter returns an arbiter with the given windows. Non-positive values fall back to the defaults.
func NewArbiter(fairnessWindow, nearTie time.Duration) *Arbiter {
	if fairnessWindow <= 0 {
		fairnessWindow = DefaultFairnessWindow
	}
	if nearTie <= 0 {
		nearTie = DefaultNearTie
	}
	return &Arbiter{
		queue:          make([]Arrival, 0),
		fairnessWindow: fairnessWindow,
		nearTie:        nearTie,
	}
}

// Arrive enqueues an arrival unless the actor is already queued for that coin.
// It reports whether the arrival was added.
func (a *Arbiter) Arrive(actorID, coinID string, score int, at time.Time) bool {
	for _, e := range a.queue {
		if e.ActorID == actorID && e.CoinID == coinID {
			return false
		}
	}
	a.queue = append(a.queue, Arrival{ActorID: actorID, CoinID: coinID, At: at, ScoreAtArrival: score})
	return true
}

// Prune drops arrivals that are not strictly younger than the fairness window.
func (a *Arbiter) Prune(now time.Time) {
	kept := a.queue[:0]
	for _, e := range a.queue {
		if now.Sub(e.At) < a.fairnessWindow {
			kept = append(kept, e)
		}
	}
	a.queue = kept
}

// Decide picks the winner of coinID among candidates, which must all stand on the coin's cell.
//
// A single candidate wins outright with priority 1 and the queue is left alone. Otherwise every
// candidate is queued (keeping earlier arrivals), the coin's arrivals are ordered and the first one
// wins: earlier arrival first, unless the two arrivals are less than the near-tie window apart, in
// which case the lower score at arrival wins and equal scores fall back to the smaller actor ID.
// All arrivals for the coin are purged before returning.
func (a *Arbiter) Decide(coinID string, candidates []*game.Actor, now time.Time) Decision {
	switch len(candidates) {
	case 0:
		return Decision{}
	case 1:
		return Decision{Winner: candidates[0], Priority: 1}
	}

	byID := make(map[string]*game.Actor, len(candidates))
	contestants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
		contestants = append(contestants, c.ID)
		a.Arrive(c.ID, coinID, c.Score, now)
	}

	entries := make([]Arrival, 0, len(candidates))
	for _, e := range a.queue {
		if e.CoinID != coinID {
			continue
		}
		if _, present := byID[e.ActorID]; present {
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return a.before(entries[i], entries[j])
	})

	a.purge(coinID)
	return Decision{
		Winner:      byID[entries[0].ActorID],
		Priority:    len(candidates),
		Contested:   true,
		Contestants: contestants,
	}
}

// Pending returns the number of queued arrivals for coinID.
func (a *Arbiter) Pending(coinID string) int {
	n := 0
	for _, e := range a.queue {
		if e.CoinID == coinID {
			n++
		}
	}
	return n
}

// Len returns the number of queued arrivals.
func (a *Arbiter) Len() int {
	return len(a.queue)
}

// Clear empties the queue.
func (a *Arbiter) Clear() {
	a.queue = make([]Arrival, 0)
}

func (a *Arbiter) before(x, y Arrival) bool {
	gap := x.At.Sub(y.At)
	if gap < 0 {
		gap = -gap
	}
	if gap >= a.nearTie {
		return x.At.Before(y.At)
	}
	if x.ScoreAtArrival != y.ScoreAtArrival {
		return x.ScoreAtArrival < y.ScoreAtArrival
	}
	return x.ActorID < y.ActorID
}

func (a *Arbiter) purge(coinID string) {
	kept := a.queue[:0]
	for _, e := range a.queue {
		if e.CoinID != coinID {
			kept = append(kept, e)
		}
	}
	a.queue = kept
}
