package i

import (
	"net/http"

	"github.com/google/uuid"
)

// ServerSocketManager manages server-side socket communication and client interactions.
type ServerSocketManager interface {
	http.Handler

	// SetClientRequestHandler sets a handler function for processing client requests.
	// The handler takes the client ID, request type, and request data as parameters.
	SetClientRequestHandler(func(uuid.UUID, byte, []byte))

	// SetClientDisconnectHandler sets a handler called once a client's connection is gone.
	SetClientDisconnectHandler(func(uuid.UUID))
	SetClientAuthenticator(PlayerAuthenticator)
	BroadcastToClients([]uuid.UUID, byte, []byte)
	Stop()
}
