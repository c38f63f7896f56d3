package grid

// Terrain is the ground state of a cell, independent of who stands on it.
type Terrain uint8

const (
	Empty      Terrain = iota // bare ground, can grow grass
	Vegetated                 // grass, edible by rabbits
	Impassable                // never entered, never grows grass
)

// String returns the single-letter code used in grid dumps.
func (t Terrain) String() string {
	switch t {
	case Empty:
		return "V"
	case Vegetated:
		return "H"
	case Impassable:
		return "M"
	default:
		return "?"
	}
}

// Name returns a human-readable terrain name.
func (t Terrain) Name() string {
	switch t {
	case Empty:
		return "empty"
	case Vegetated:
		return "vegetated"
	case Impassable:
		return "impassable"
	default:
		return "unknown"
	}
}
