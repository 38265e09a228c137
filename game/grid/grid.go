/*
Package grid provides the bounds rules of the playing field and the placement of collectables.

The field is a rectangle whose outermost ring of cells is a permanent wall. Every other cell is
traversable; there are no inner walls, so a move is legal iff its destination is inside the ring.
*/
package grid

import (
	"errors"
)

// Direction is a movement request coming from a keyboard, a gamepad or a socket.
type Direction string

// Supported directions.
const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

var (
	// Directions maps every direction to its column/row delta.
	Directions = map[Direction]struct{ DX, DY int }{
		Up:    {DX: 0, DY: -1},
		Down:  {DX: 0, DY: 1},
		Left:  {DX: -1, DY: 0},
		Right: {DX: 1, DY: 0},
	}

	ErrUnknownDirection = errors.New("unknown direction")
	ErrWall             = errors.New("destination is a wall")
)

// IsValidPosition reports whether (x, y) is a traversable cell of a width×height field.
func IsValidPosition(x, y, width, height int) bool {
	return x >= 1 && x <= width-2 && y >= 1 && y <= height-2
}

// WouldCollideWithWall reports whether moving to (toX, toY) hits the wall.
// The origin is accepted for symmetry with movement requests and does not affect the result.
func WouldCollideWithWall(fromX, fromY, toX, toY, width, height int) bool {
	return !IsValidPosition(toX, toY, width, height)
}

// Step returns the cell reached from (x, y) in the given direction. It does not check bounds.
func Step(x, y int, dir Direction) (int, int, error) {
	delta, ok := Directions[dir]
	if !ok {
		return x, y, ErrUnknownDirection
	}
	return x + delta.DX, y + delta.DY, nil
}

// NextValid returns the destination of a move, or ErrWall when the move would leave the field.
func NextValid(x, y int, dir Direction, width, height int) (int, int, error) {
	toX, toY, err := Step(x, y, dir)
	if err != nil {
		return x, y, err
	}
	if WouldCollideWithWall(x, y, toX, toY, width, height) {
		return x, y, ErrWall
	}
	return toX, toY, nil
}

// Interior returns every traversable cell, row by row.
func Interior(width, height int) [][2]int {
	if width < 3 || height < 3 {
		return nil
	}
	cells := make([][2]int, 0, (width-2)*(height-2))
	for y := 1; y <= height-2; y++ {
		for x := 1; x <= width-2; x++ {
			cells = append(cells, [2]int{x, y})
		}
	}
	return cells
}
