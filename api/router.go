package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-haunt/api/i"
	"github.com/gin-gonic/gin"
)

// Router manages the HTTP server and its dependencies,
// including controllers, ticket authorization and the game socket.
type Router struct {
	addr                    string
	baseURL                 string
	controllers             []i.Controller
	authorizationMiddleware gin.HandlerFunc
	socketPath              string
	socket                  http.Handler
}

// Config holds configuration settings for creating a new Router instance.
type Config struct {
	Addr                    string // Address to listen on
	BaseURL                 string // Base URL for API routes
	Controllers             []i.Controller
	AuthorizationMiddleware gin.HandlerFunc
	SocketPath              string       // Path of the game socket under the base URL, e.g. "/v1/ws"
	Socket                  http.Handler // Game socket; the socket checks tickets itself
}

// NewRouter creates a new Router instance with the given configuration.
func NewRouter(config Config) *Router {
	return &Router{
		addr:                    config.Addr,
		baseURL:                 config.BaseURL,
		controllers:             config.Controllers,
		authorizationMiddleware: config.AuthorizationMiddleware,
		socketPath:              config.SocketPath,
		socket:                  config.Socket,
	}
}

// Engine builds the route tree.
//
// Routes are grouped and managed under the base URL, with the following access levels:
// - Public routes: No ticket required.
// - Protected routes: A valid ticket is required.
// - The game socket: ticket passed as a query parameter and checked on upgrade.
func (r *Router) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Setting up routes under baseURL
	api := router.Group(r.baseURL)

	{
		// Public routes (accessible without a ticket)
		publicRoutes := api.Group("/v1")
		{
			for _, c := range r.controllers {
				c.RegisterPublic(publicRoutes)
			}
		}

		// Protected routes (ticket required)
		protectedRoutes := api.Group("/v1")
		protectedRoutes.Use(r.authorizationMiddleware)
		{
			for _, c := range r.controllers {
				c.RegisterProtected(protectedRoutes)
			}
		}

		if r.socket != nil && r.socketPath != "" {
			api.GET(r.socketPath, gin.WrapH(r.socket))
		}
	}

	return router
}

const shutdownTimeout = 5 * time.Second

// Run starts the HTTP server and shuts it down once ctx is done.
func (r *Router) Run(ctx context.Context) error {
	gin.ForceConsoleColor()
	srv := &http.Server{Addr: r.addr, Handler: r.Engine()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
