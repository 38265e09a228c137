package playerapi

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const recentResults = 10

// PlayerController handles HTTP requests related to players.
type PlayerController struct {
	playerService i.PlayerService
	resultRepo    i.MatchResultRepo
}

// NewPlayerController creates a new PlayerController.
func NewPlayerController(ps i.PlayerService, rr i.MatchResultRepo) *PlayerController {
	return &PlayerController{
		playerService: ps,
		resultRepo:    rr,
	}
}

// RegisterPublic registers public routes.
func (c *PlayerController) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/players", c.register)
}

// RegisterProtected registers protected routes.
func (c *PlayerController) RegisterProtected(route *gin.RouterGroup) {
	route.GET("/players/:ID", c.profile)
}

// register handles player creation.
func (c *PlayerController) register(ctx *gin.Context) {
	var request RegisterRequest
	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, ticket, err := c.playerService.Register(ctx, request.Name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dmn.ErrInvalidName) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, &RegisterResponse{
		ID:     player.ID.String(),
		Name:   player.Name,
		Rating: player.Rating,
		Ticket: ticket,
	})
}

// profile returns a player with its latest results.
func (c *PlayerController) profile(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	player, err := c.playerService.ByID(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}

	results := []dmn.MatchResult{}
	if c.resultRepo != nil {
		if found, err := c.resultRepo.ByActor(ctx, player.ID.String(), recentResults); err == nil && found != nil {
			results = found
		}
	}

	ctx.JSON(http.StatusOK, &PlayerResponse{
		ID:      player.ID.String(),
		Name:    player.Name,
		Rating:  player.Rating,
		Results: results,
	})
}
