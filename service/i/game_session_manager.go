package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	playservice "github.com/beka-birhanu/vinom-haunt/game/play_service"
	"github.com/google/uuid"
)

// GameSessionManager manages game sessions and provides session-related information.
type GameSessionManager interface {
	// NewSession starts a room for the participants and returns its ID.
	NewSession(ctx context.Context, mode playservice.Mode, participants []dmn.Participant) (uuid.UUID, error)

	// SessionInfo returns the session ID of a client and the socket address to join it.
	SessionInfo(ctx context.Context, clientID uuid.UUID) (uuid.UUID, string, error)
}
