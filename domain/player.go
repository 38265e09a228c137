// Package domain holds the persisted models of the server.
package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minNameLength = 2
	maxNameLength = 24

	// DefaultRating is the matchmaking rating of a new player.
	DefaultRating = 1000
)

var (
	ErrInvalidName = errors.New("name must be between 2 and 24 characters")
)

// Player is a registered participant of online and practice games.
type Player struct {
	ID        uuid.UUID `bson:"_id"`
	Name      string    `bson:"name"`
	Rating    int       `bson:"rating"`
	CreatedAt time.Time `bson:"createdAt"`
}

// NewPlayer validates the name and returns a player with a fresh ID.
func NewPlayer(name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return nil, ErrInvalidName
	}

	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Rating:    DefaultRating,
		CreatedAt: time.Now().UTC(),
	}, nil
}
