package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/google/uuid"
)

const (
	// TicketPlayerClaim is the claim carrying the player ID in a ticket.
	TicketPlayerClaim = "player_id"

	defaultTicketTTL = 24 * time.Hour
)

var (
	ErrInvalidTicket = errors.New("invalid ticket")
)

// Players registers players and issues the tickets they use for the API and the game socket.
type Players struct {
	playerRepo i.PlayerRepo
	tokenizer  i.Tokenizer
	ticketTTL  time.Duration
}

// NewPlayerService creates the player service.
func NewPlayerService(pr i.PlayerRepo, t i.Tokenizer) (i.PlayerService, error) {
	return &Players{
		playerRepo: pr,
		tokenizer:  t,
		ticketTTL:  defaultTicketTTL,
	}, nil
}

// Register stores a new player and returns it along with its ticket.
func (p *Players) Register(ctx context.Context, name string) (*dmn.Player, string, error) {
	player, err := dmn.NewPlayer(name)
	if err != nil {
		return nil, "", err
	}

	if err := p.playerRepo.Save(ctx, player); err != nil {
		return nil, "", fmt.Errorf("saving player: %w", err)
	}

	ticket, err := IssueTicket(p.tokenizer, player.ID, p.ticketTTL)
	if err != nil {
		return nil, "", err
	}
	return player, ticket, nil
}

// ByID returns a registered player.
func (p *Players) ByID(ctx context.Context, id uuid.UUID) (*dmn.Player, error) {
	return p.playerRepo.ByID(ctx, id)
}

// IssueTicket signs a ticket for the player.
func IssueTicket(t i.Tokenizer, playerID uuid.UUID, ttl time.Duration) (string, error) {
	ticket, err := t.Generate(map[string]interface{}{
		TicketPlayerClaim: playerID.String(),
	}, ttl)
	if err != nil {
		return "", fmt.Errorf("issuing ticket: %w", err)
	}
	return ticket, nil
}

// TicketHolder returns the player a ticket was issued to.
func TicketHolder(t i.Tokenizer, ticket string) (uuid.UUID, error) {
	claims, err := t.Decode(ticket)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidTicket, err)
	}

	raw, ok := claims[TicketPlayerClaim].(string)
	if !ok {
		return uuid.Nil, ErrInvalidTicket
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidTicket
	}
	return id, nil
}
