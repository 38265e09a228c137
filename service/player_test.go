package service

import (
	"context"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/infrastruture/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPlayer(t *testing.T) {
	repo := newFakePlayerRepo()
	tokenizer := token.NewJwtService("secret", "test")
	svc, err := NewPlayerService(repo, tokenizer)
	require.NoError(t, err)

	player, ticket, err := svc.Register(context.Background(), "Banshee")
	require.NoError(t, err)
	assert.Equal(t, "Banshee", player.Name)
	assert.NotEmpty(t, ticket)

	stored, err := svc.ByID(context.Background(), player.ID)
	require.NoError(t, err)
	assert.Equal(t, player, stored)

	holder, err := TicketHolder(tokenizer, ticket)
	require.NoError(t, err)
	assert.Equal(t, player.ID, holder)

	_, _, err = svc.Register(context.Background(), "x")
	assert.ErrorIs(t, err, dmn.ErrInvalidName)
}

func TestTicketHolder(t *testing.T) {
	tokenizer := token.NewJwtService("secret", "test")

	t.Run("expired ticket", func(t *testing.T) {
		ticket, err := IssueTicket(tokenizer, uuid.New(), -time.Minute)
		require.NoError(t, err)
		_, err = TicketHolder(tokenizer, ticket)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})

	t.Run("ticket of another issuer secret", func(t *testing.T) {
		ticket, err := IssueTicket(token.NewJwtService("other", "test"), uuid.New(), time.Minute)
		require.NoError(t, err)
		_, err = TicketHolder(tokenizer, ticket)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})

	t.Run("missing player claim", func(t *testing.T) {
		ticket, err := tokenizer.Generate(map[string]interface{}{"role": "ghost"}, time.Minute)
		require.NoError(t, err)
		_, err = TicketHolder(tokenizer, ticket)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})
}
