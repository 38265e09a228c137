// Package gameapi handles game rooms, matchmaking and the leaderboard.
package gameapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-haunt/api/ticket"
	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	playservice "github.com/beka-birhanu/vinom-haunt/game/play_service"
	"github.com/beka-birhanu/vinom-haunt/service"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// GameController manages rooms, matchmaking and the leaderboard.
type GameController struct {
	gameSessionManager i.GameSessionManager
	playerRepo         i.PlayerRepo
	matchingService    i.Matchmaker
	leaderboard        i.Leaderboard
}

// Config holds the dependencies of a GameController.
type Config struct {
	GameSessionManager i.GameSessionManager
	PlayerRepo         i.PlayerRepo
	Matchmaker         i.Matchmaker
	Leaderboard        i.Leaderboard
}

// NewGameController initializes a GameController.
func NewGameController(c Config) (*GameController, error) {
	if c.GameSessionManager == nil || c.PlayerRepo == nil {
		return nil, service.ErrMissingDependency
	}
	return &GameController{
		gameSessionManager: c.GameSessionManager,
		playerRepo:         c.PlayerRepo,
		matchingService:    c.Matchmaker,
		leaderboard:        c.Leaderboard,
	}, nil
}

// RegisterPublic registers public routes.
func (gc *GameController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/leaderboard", gc.topPlayers)
}

// RegisterProtected registers protected routes.
func (gc *GameController) RegisterProtected(route *gin.RouterGroup) {
	matchMaking := route.Group("/gameMatch")
	{
		matchMaking.POST("/", gc.match)
		matchMaking.GET("/:ID", gc.matchInfo)
	}
	route.POST("/practice", gc.practice)
	route.POST("/local", gc.local)
}

// match queues the ticket holder for an online game.
func (gc *GameController) match(ctx *gin.Context) {
	var request MatchRequest
	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if holder, _ := ticket.PlayerID(ctx); holder != request.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "ticket does not belong to this player"})
		return
	}
	if gc.matchingService == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "matchmaking is unavailable"})
		return
	}

	latency := max(time.Now().UnixMilli()-request.SentAt, 0)

	player, err := gc.playerRepo.ByID(ctx, request.ID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = gc.matchingService.PushToQueue(context.Background(), player.ID, player.Rating, uint(latency))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while matching player"})
		return
	}

	ctx.Status(http.StatusAccepted)
}

// matchInfo tells the ticket holder which room it was placed in.
func (gc *GameController) matchInfo(ctx *gin.Context) {
	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "id not found"})
		return
	}
	if holder, _ := ticket.PlayerID(ctx); holder != ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "ticket does not belong to this player"})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	sessionID, socketAddr, err := gc.gameSessionManager.SessionInfo(timeoutCtx, ID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "No Session"})
		return
	}

	ctx.JSON(http.StatusOK, &SessionResponse{
		SessionID:  sessionID.String(),
		SocketAddr: socketAddr,
	})
}

// practice opens a single-actor room for the ticket holder.
func (gc *GameController) practice(ctx *gin.Context) {
	holder, _ := ticket.PlayerID(ctx)
	player, err := gc.playerRepo.ByID(ctx, holder)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}

	gc.openRoom(ctx, holder, playservice.ModePractice, []dmn.Participant{
		{ActorID: holder.String(), Name: player.Name, ClientID: holder},
	})
}

// local opens a room whose actors are all driven by the ticket holder's connection.
func (gc *GameController) local(ctx *gin.Context) {
	var request LocalRequest
	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holder, _ := ticket.PlayerID(ctx)
	participants := make([]dmn.Participant, 0, len(request.Names))
	for slot, name := range request.Names {
		participants = append(participants, dmn.Participant{
			ActorID:  LocalActorID(holder, slot),
			Name:     name,
			ClientID: holder,
		})
	}
	gc.openRoom(ctx, holder, playservice.ModeLocal, participants)
}

func (gc *GameController) openRoom(ctx *gin.Context, holder uuid.UUID, mode playservice.Mode, participants []dmn.Participant) {
	sessionID, err := gc.gameSessionManager.NewSession(ctx, mode, participants)
	switch {
	case errors.Is(err, service.ErrAlreadyInSession):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, socketAddr, err := gc.gameSessionManager.SessionInfo(ctx, holder)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "room closed before it could be joined"})
		return
	}

	actorIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		actorIDs = append(actorIDs, p.ActorID)
	}
	ctx.JSON(http.StatusCreated, &SessionResponse{
		SessionID:  sessionID.String(),
		SocketAddr: socketAddr,
		ActorIDs:   actorIDs,
	})
}

// topPlayers returns the leaderboard; the "limit" query parameter caps its size.
func (gc *GameController) topPlayers(ctx *gin.Context) {
	if gc.leaderboard == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard is unavailable"})
		return
	}

	limit := defaultLeaderboardSize
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLeaderboardSize)
	}

	entries, err := gc.leaderboard.Top(ctx, int64(limit))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while reading leaderboard"})
		return
	}

	for idx := range entries {
		id, err := uuid.Parse(entries[idx].PlayerID)
		if err != nil {
			continue
		}
		if p, err := gc.playerRepo.ByID(ctx, id); err == nil {
			entries[idx].Name = p.Name
		}
	}

	ctx.JSON(http.StatusOK, &LeaderboardResponse{Entries: entries})
}

// LocalActorID is the ID of the actor in the given slot of a local room.
func LocalActorID(client uuid.UUID, slot int) string {
	return fmt.Sprintf("%s#%d", client, slot)
}
