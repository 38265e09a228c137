// Package playerapi registers players and shows their profiles.
package playerapi

import (
	dmn "github.com/beka-birhanu/vinom-haunt/domain"
)

// RegisterRequest represents a request to create a player.
type RegisterRequest struct {
	Name string `json:"name" binding:"required"`
}

// RegisterResponse carries the new player and the ticket it uses from now on.
type RegisterResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Ticket string `json:"ticket"`
}

// PlayerResponse is the public profile of a player.
type PlayerResponse struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Rating  int               `json:"rating"`
	Results []dmn.MatchResult `json:"results"`
}
