package genetics

import (
	"testing"

	"github.com/pthm-cable/warren/rng"
)

func isAllele(v float64) bool {
	for _, a := range Alleles {
		if v == a {
			return true
		}
	}
	return false
}

func TestRandomDrawsValidAlleles(t *testing.T) {
	src := rng.New(7)
	seen := map[float64]bool{}
	for i := 0; i < 500; i++ {
		g := Random(src)
		for _, tr := range Traits {
			if !isAllele(g.Get(tr)) {
				t.Fatalf("trait %v has allele %v outside %v", tr, g.Get(tr), Alleles)
			}
			seen[g.Get(tr)] = true
		}
	}
	if len(seen) != len(Alleles) {
		t.Errorf("500 genomes covered only alleles %v", seen)
	}
}

func TestInheritPicksParentAlleles(t *testing.T) {
	a := New(1, 0)
	b := New(2, 3)
	src := rng.New(3)

	fromA, fromB := 0, 0
	for i := 0; i < 200; i++ {
		child := Inherit(a, b, src)
		if !FromParents(child, a, b) {
			t.Fatalf("child %v has an allele from neither %v nor %v", child, a, b)
		}
		if child.Appetite() == a.Appetite() {
			fromA++
		} else {
			fromB++
		}
	}
	if fromA == 0 || fromB == 0 {
		t.Errorf("appetite never drawn from one parent: fromA=%d fromB=%d", fromA, fromB)
	}
}

func TestInheritFollowsCoinFlips(t *testing.T) {
	a := New(1, 0)
	b := New(2, 3)

	child := Inherit(a, b, &rng.Script{Ints: []int{1, 0}})
	if child != New(2, 0) {
		t.Errorf("Inherit with flips (b, a) = %v, want {2 0}", child)
	}
}

func TestTraitString(t *testing.T) {
	if Appetite.String() != "appetite" || Evasion.String() != "evasion" {
		t.Errorf("unexpected trait names %q %q", Appetite, Evasion)
	}
}
