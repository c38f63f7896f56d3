// Package grid provides the square occupancy/terrain grid the ecosystem lives on.
package grid

import "fmt"

// Coord is an immutable cell position. X selects the row, Y the column.
type Coord struct {
	X, Y int
}

// neighborOffsets lists candidate neighbor offsets in enumeration order.
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 1},
	{-1, 0}, {1, 0},
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// In reports whether c lies inside a size×size grid.
func (c Coord) In(size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// Neighbors returns the in-bounds cells adjacent to c, including diagonals.
// Out-of-bounds candidates are dropped silently.
func (c Coord) Neighbors(size int) []Coord {
	out := make([]Coord, 0, len(neighborOffsets))
	for _, d := range neighborOffsets {
		n := Coord{X: c.X + d[0], Y: c.Y + d[1]}
		if n.In(size) {
			out = append(out, n)
		}
	}
	return out
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
