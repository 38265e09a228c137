package i

import (
	"context"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/google/uuid"
)

// PlayerAuthenticator an interface for authenticating the client ticket
type PlayerAuthenticator interface {
	Authenticate([]byte) (uuid.UUID, error)
}

// PlayerService registers players and issues their tickets.
type PlayerService interface {
	Register(ctx context.Context, name string) (*dmn.Player, string, error)
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Player, error)
}
