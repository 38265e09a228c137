package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActorResult is the final standing of one actor.
type ActorResult struct {
	ActorID string `bson:"actorId" json:"actor_id"`
	Name    string `bson:"name" json:"name"`
	Score   int    `bson:"score" json:"score"`
}

// MatchResult is the record of a finished game.
type MatchResult struct {
	ID        uuid.UUID     `bson:"_id" json:"id"`
	Mode      string        `bson:"mode" json:"mode"`
	Actors    []ActorResult `bson:"actors" json:"actors"`
	WinnerID  string        `bson:"winnerId,omitempty" json:"winner_id,omitempty"`
	StartedAt time.Time     `bson:"startedAt" json:"started_at"`
	EndedAt   time.Time     `bson:"endedAt" json:"ended_at"`
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name,omitempty"`
	Wins      int    `json:"wins"`
	BestScore int    `json:"best_score"`
}

// Participant is an actor joining a new session and the client that drives it.
type Participant struct {
	ActorID  string
	Name     string
	ClientID uuid.UUID
}
