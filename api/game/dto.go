// Package gameapi provides structures and utilities for managing game rooms, matchmaking and the leaderboard.
package gameapi

import (
	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/google/uuid"
)

// MatchRequest represents a request to join the online matchmaking queue.
type MatchRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	SentAt int64     `json:"sent_at" binding:"required"`
}

// LocalRequest names the actors of a same-device room.
type LocalRequest struct {
	Names []string `json:"names" binding:"required,min=2,max=4,dive=required"`
}

// SessionResponse tells a client which room it is in and where to join it.
type SessionResponse struct {
	SessionID  string   `json:"session_id"`
	SocketAddr string   `json:"socket_addr"`
	ActorIDs   []string `json:"actor_ids,omitempty"`
}

// LeaderboardResponse lists the best players.
type LeaderboardResponse struct {
	Entries []dmn.LeaderboardEntry `json:"entries"`
}
