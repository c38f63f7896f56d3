package grid

import (
	"errors"
	"fmt"
	"strings"
)

// NoAgent marks a cell with no occupant.
const NoAgent = -1

// ErrInvalidCoordinate is returned when a write targets a cell outside the grid.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ErrNoFreeCell is returned when a random free cell is requested from a full grid.
var ErrNoFreeCell = errors.New("no free cell")

// Intn is the slice of a random source the grid needs.
type Intn interface {
	Intn(n int) int
}

// Grid stores, per cell, the id of the agent standing there and the terrain
// underneath it. It holds identifiers only, never agents.
// Cells are stored row-major: index = x*size + y.
type Grid struct {
	size      int
	occupants []int
	terrain   []Terrain
}

// New creates a size×size grid with every cell unoccupied and Empty.
func New(size int) *Grid {
	g := &Grid{
		size:      size,
		occupants: make([]int, size*size),
		terrain:   make([]Terrain, size*size),
	}
	for i := range g.occupants {
		g.occupants[i] = NoAgent
	}
	return g
}

// Size returns the side length of the grid.
func (g *Grid) Size() int {
	return g.size
}

// Cells returns the number of cells in the grid.
func (g *Grid) Cells() int {
	return g.size * g.size
}

func (g *Grid) index(c Coord) int {
	return c.X*g.size + c.Y
}

func (g *Grid) check(c Coord) error {
	if !c.In(g.size) {
		return fmt.Errorf("%w: %v outside %dx%d grid", ErrInvalidCoordinate, c, g.size, g.size)
	}
	return nil
}

// ID returns the occupant id at c, or NoAgent. c must be in bounds.
func (g *Grid) ID(c Coord) int {
	return g.occupants[g.index(c)]
}

// Occupant returns the occupant id at c and whether the cell is occupied.
func (g *Grid) Occupant(c Coord) (int, bool) {
	id := g.occupants[g.index(c)]
	return id, id != NoAgent
}

// Terrain returns the terrain at c. c must be in bounds.
func (g *Grid) Terrain(c Coord) Terrain {
	return g.terrain[g.index(c)]
}

// SetOccupant records id as standing on c. Terrain is left untouched.
func (g *Grid) SetOccupant(c Coord, id int) error {
	if err := g.check(c); err != nil {
		return err
	}
	g.occupants[g.index(c)] = id
	return nil
}

// ClearOccupant marks c as unoccupied.
func (g *Grid) ClearOccupant(c Coord) error {
	return g.SetOccupant(c, NoAgent)
}

// SetTerrain changes the terrain at c. Occupancy is left untouched.
func (g *Grid) SetTerrain(c Coord, t Terrain) error {
	if err := g.check(c); err != nil {
		return err
	}
	g.terrain[g.index(c)] = t
	return nil
}

// Free reports whether an agent may step onto c.
func (g *Grid) Free(c Coord) bool {
	i := g.index(c)
	return g.occupants[i] == NoAgent && g.terrain[i] != Impassable
}

// EmptyCells returns every unoccupied cell in row-major order.
func (g *Grid) EmptyCells() []Coord {
	var out []Coord
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			if g.occupants[x*g.size+y] == NoAgent {
				out = append(out, Coord{X: x, Y: y})
			}
		}
	}
	return out
}

// FreeCells returns every cell an agent could be placed on, in row-major order.
func (g *Grid) FreeCells() []Coord {
	var out []Coord
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			c := Coord{X: x, Y: y}
			if g.Free(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// RandomFree picks a free cell uniformly at random.
func (g *Grid) RandomFree(src Intn) (Coord, error) {
	free := g.FreeCells()
	if len(free) == 0 {
		return Coord{}, ErrNoFreeCell
	}
	return free[src.Intn(len(free))], nil
}

// CountTerrain returns how many cells carry terrain t.
func (g *Grid) CountTerrain(t Terrain) int {
	n := 0
	for _, v := range g.terrain {
		if v == t {
			n++
		}
	}
	return n
}

// OccupiedCount returns how many cells hold an agent.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, id := range g.occupants {
		if id != NoAgent {
			n++
		}
	}
	return n
}

// String renders the grid row by row as "| <id> <terrain> |" cells.
func (g *Grid) String() string {
	var b strings.Builder
	for x := 0; x < g.size; x++ {
		b.WriteString("|")
		for y := 0; y < g.size; y++ {
			i := x*g.size + y
			fmt.Fprintf(&b, " %d %s |", g.occupants[i], g.terrain[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}
