package grid

import (
	"slices"
	"testing"
)

func TestNeighbors(t *testing.T) {
	tests := []struct {
		name string
		c    Coord
		size int
		want []Coord
	}{
		{
			name: "interior",
			c:    C(4, 5),
			size: 7,
			want: []Coord{C(3, 4), C(3, 6), C(4, 4), C(4, 6), C(5, 4), C(5, 6), C(3, 5), C(5, 5)},
		},
		{
			name: "bottom edge",
			c:    C(5, 6),
			size: 7,
			want: []Coord{C(4, 5), C(5, 5), C(6, 5), C(4, 6), C(6, 6)},
		},
		{
			name: "origin corner",
			c:    C(0, 0),
			size: 3,
			want: []Coord{C(0, 1), C(1, 1), C(1, 0)},
		},
		{
			name: "single cell grid",
			c:    C(0, 0),
			size: 1,
			want: []Coord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Neighbors(tt.size)
			if !slices.Equal(got, tt.want) {
				t.Errorf("%v.Neighbors(%d) = %v, want %v", tt.c, tt.size, got, tt.want)
			}
		})
	}
}

func TestCoordIn(t *testing.T) {
	if !C(0, 0).In(1) {
		t.Error("(0,0) should be inside a 1x1 grid")
	}
	for _, c := range []Coord{C(-1, 0), C(0, -1), C(3, 0), C(0, 3)} {
		if c.In(3) {
			t.Errorf("%v should be outside a 3x3 grid", c)
		}
	}
}
