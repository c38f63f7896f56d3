package population

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/grid"
)

func add(t *testing.T, r *Registry, s components.Species, c grid.Coord, g *genetics.Genome) int {
	t.Helper()
	id, err := r.Add(components.Agent{Species: s, Coord: c, Genome: g})
	if err != nil {
		t.Fatalf("Add(%v, %v): %v", s, c, err)
	}
	return id
}

func genome(appetite, evasion float64) *genetics.Genome {
	g := genetics.New(appetite, evasion)
	return &g
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(10)
	if r.Cap() != 100 || r.Len() != 0 {
		t.Fatalf("Cap/Len = %d/%d, want 100/0", r.Cap(), r.Len())
	}
	free := r.FreeIDs()
	for i, id := range free {
		if id != i {
			t.Fatalf("FreeIDs()[%d] = %d, want %d", i, id, i)
		}
	}
	for id := 0; id < 100; id++ {
		if _, ok := r.Get(id); ok {
			t.Fatalf("slot %d not empty", id)
		}
	}
}

func TestAddAndRemove(t *testing.T) {
	r := NewRegistry(10)

	for i, c := range []grid.Coord{grid.C(0, 0), grid.C(2, 3), grid.C(5, 4)} {
		if id := add(t, r, components.Fox, c, nil); id != i {
			t.Fatalf("fox id = %d, want %d", id, i)
		}
	}
	for i, c := range []grid.Coord{grid.C(1, 1), grid.C(6, 5), grid.C(5, 5)} {
		if id := add(t, r, components.Rabbit, c, nil); id != 3+i {
			t.Fatalf("rabbit id = %d, want %d", id, 3+i)
		}
	}
	for i, c := range []grid.Coord{grid.C(9, 1), grid.C(3, 9), grid.C(6, 7)} {
		if id := add(t, r, components.Bear, c, nil); id != 6+i {
			t.Fatalf("bear id = %d, want %d", id, 6+i)
		}
	}

	a, ok := r.Get(4)
	if !ok || a.ID != 4 || a.Species != components.Rabbit || a.Coord != grid.C(6, 5) {
		t.Errorf("Get(4) = %+v, %v", a, ok)
	}
	if free := r.FreeIDs(); free[0] != 9 || len(free) != 91 {
		t.Errorf("FreeIDs starts at %d with %d ids, want 9 with 91", free[0], len(free))
	}

	for _, id := range []int{0, 1, 5, 7} {
		if !r.Remove(id) {
			t.Errorf("Remove(%d) = false", id)
		}
	}
	if r.Remove(0) {
		t.Error("second Remove(0) reported success")
	}

	want := map[components.Species][]int{
		components.Fox:    {2},
		components.Rabbit: {3, 4},
		components.Bear:   {6, 8},
	}
	for s, ids := range want {
		if got := r.IDs(s); !reflect.DeepEqual(got, ids) {
			t.Errorf("IDs(%v) = %v, want %v", s, got, ids)
		}
		if r.Count(s) != len(ids) {
			t.Errorf("Count(%v) = %d, want %d", s, r.Count(s), len(ids))
		}
	}
	if got := r.AllIDs(); !reflect.DeepEqual(got, []int{2, 3, 4, 6, 8}) {
		t.Errorf("AllIDs = %v", got)
	}
	if got := r.Coords(components.Bear); !reflect.DeepEqual(got, []grid.Coord{grid.C(9, 1), grid.C(6, 7)}) {
		t.Errorf("Coords(bear) = %v", got)
	}

	// Surviving agents keep their state after other entities are removed.
	a, _ = r.Get(4)
	if a.Coord != grid.C(6, 5) || a.ID != 4 {
		t.Errorf("Get(4) after removals = %+v", a)
	}
}

func TestReleasedIDReusedFirst(t *testing.T) {
	r := NewRegistry(3)
	for i := 0; i < 4; i++ {
		add(t, r, components.Rabbit, grid.C(0, i%3), nil)
	}
	r.Remove(2)
	if got := add(t, r, components.Fox, grid.C(1, 1), nil); got != 2 {
		t.Errorf("next id after releasing 2 = %d, want 2", got)
	}
	if got := add(t, r, components.Fox, grid.C(1, 2), nil); got != 4 {
		t.Errorf("following id = %d, want 4", got)
	}
}

func TestFreeAndLivePartitionIDs(t *testing.T) {
	r := NewRegistry(4)
	for i := 0; i < 10; i++ {
		add(t, r, components.Species(i%3), grid.C(i/4, i%4), nil)
	}
	for _, id := range []int{1, 4, 9} {
		r.Remove(id)
	}

	seen := make(map[int]int)
	for _, id := range r.FreeIDs() {
		seen[id]++
	}
	for _, id := range r.AllIDs() {
		seen[id]++
	}
	if len(seen) != r.Cap() {
		t.Fatalf("free+live cover %d ids, want %d", len(seen), r.Cap())
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %d appears %d times", id, n)
		}
	}
}

func TestAddErrors(t *testing.T) {
	r := NewRegistry(1)

	if _, err := r.Add(components.Agent{Species: components.Fox, Coord: grid.C(1, 0)}); !errors.Is(err, grid.ErrInvalidCoordinate) {
		t.Errorf("out of bounds: err = %v, want ErrInvalidCoordinate", err)
	}
	if _, err := r.Add(components.Agent{Species: components.NumSpecies}); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("bad species: err = %v, want ErrUnknownSpecies", err)
	}

	add(t, r, components.Fox, grid.C(0, 0), nil)
	if r.HasFreeID() {
		t.Error("HasFreeID true on full registry")
	}
	if _, err := r.Add(components.Agent{Species: components.Fox}); !errors.Is(err, ErrCapacityExhausted) {
		t.Errorf("full: err = %v, want ErrCapacityExhausted", err)
	}
}

func TestAlleleFrequencies(t *testing.T) {
	r := NewRegistry(10)

	add(t, r, components.Fox, grid.C(0, 0), genome(0, 1))
	add(t, r, components.Fox, grid.C(6, 3), genome(0, 3))
	add(t, r, components.Bear, grid.C(4, 4), nil)

	freq := r.AlleleFrequencies()
	if got := freq[components.Fox][genetics.Appetite]; !reflect.DeepEqual(got, Frequencies{0: 1}) {
		t.Errorf("fox appetite = %v", got)
	}
	if got := freq[components.Fox][genetics.Evasion]; !reflect.DeepEqual(got, Frequencies{1: 0.5, 3: 0.5}) {
		t.Errorf("fox evasion = %v", got)
	}
	if len(freq[components.Rabbit]) != 0 {
		t.Errorf("rabbit frequencies = %v, want empty", freq[components.Rabbit])
	}
	if _, ok := freq[components.Bear]; ok {
		t.Error("bears appear in allele frequencies")
	}

	add(t, r, components.Rabbit, grid.C(7, 3), genome(3, 3))
	freq = r.AlleleFrequencies()
	if got := freq[components.Rabbit][genetics.Appetite]; !reflect.DeepEqual(got, Frequencies{3: 1}) {
		t.Errorf("rabbit appetite = %v", got)
	}
	if got := freq[components.Fox][genetics.Evasion].Mean(); got != 2 {
		t.Errorf("fox evasion mean = %v, want 2", got)
	}
}

func TestForEachVisitsLiveAgents(t *testing.T) {
	r := NewRegistry(5)
	for i := 0; i < 5; i++ {
		add(t, r, components.Rabbit, grid.C(i, 0), nil)
	}
	r.Remove(3)

	seen := map[int]bool{}
	r.ForEach(func(a *components.Agent) { seen[a.ID] = true })
	if len(seen) != 4 || seen[3] {
		t.Errorf("ForEach visited %v", seen)
	}
}

func TestRegistryChurn(t *testing.T) {
	r := NewRegistry(4)

	at := make(map[int]grid.Coord)
	for i := 0; i < r.Cap(); i++ {
		c := grid.C(i%4, i/4)
		at[add(t, r, components.Rabbit, c, genome(0, 0))] = c
	}
	for id := 0; id < r.Cap(); id += 2 {
		if !r.Remove(id) {
			t.Fatalf("Remove(%d) = false", id)
		}
		delete(at, id)
	}
	// Refill the released slots in reverse so entities get recycled out of order.
	for i := r.Cap() - 2; i >= 0; i -= 2 {
		c := grid.C(i%4, i/4)
		at[add(t, r, components.Fox, c, genome(0, 0))] = c
	}

	if r.Len() != r.Cap() || r.HasFreeID() {
		t.Fatalf("Len = %d, HasFreeID = %v after refill", r.Len(), r.HasFreeID())
	}
	if r.Count(components.Fox) != 8 || r.Count(components.Rabbit) != 8 {
		t.Errorf("counts fox/rabbit = %d/%d, want 8/8", r.Count(components.Fox), r.Count(components.Rabbit))
	}
	for id, c := range at {
		a, ok := r.Get(id)
		if !ok {
			t.Fatalf("Get(%d) missing", id)
		}
		if a.ID != id || a.Coord != c {
			t.Errorf("Get(%d) = id %d at %v, want at %v", id, a.ID, a.Coord, c)
		}
	}

	visited := 0
	r.ForEach(func(a *components.Agent) { visited++ })
	if visited != r.Len() {
		t.Errorf("ForEach visited %d agents, want %d", visited, r.Len())
	}
	if all := r.AllIDs(); len(all) != r.Len() {
		t.Errorf("AllIDs() has %d ids, want %d", len(all), r.Len())
	}
}
