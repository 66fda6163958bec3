package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a cell on the grid. Zero-based, origin top-left.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManhattanDistance returns the 4-directional walking distance between
// two positions on an unobstructed grid.
func (p Position) ManhattanDistance(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// ChebyshevDistance returns the king-move distance between two positions.
// Used for square-shaped areas of effect.
func (p Position) ChebyshevDistance(o Position) int {
	dx := abs(p.X - o.X)
	dy := abs(p.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Key returns the "x,y" form used on the wire for obstacle sets.
func (p Position) Key() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

// ParsePosition parses the "x,y" wire form.
func ParsePosition(s string) (Position, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("invalid position %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Position{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Position{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	return Position{X: x, Y: y}, nil
}

// steps is the fixed adjacency exploration order (+x, -x, +y, -y).
// Every implementation of the rules must expand neighbors in this order
// so that tie-broken paths agree across client and server.
var steps = [4]Position{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
