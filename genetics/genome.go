// Package genetics defines the two-trait genome carried by foxes and rabbits.
package genetics

import (
	"fmt"

	"github.com/pthm-cable/warren/rng"
)

// Trait identifies one gene of the genome.
type Trait uint8

const (
	Appetite Trait = iota // raises food gained per meal, speeds up aging
	Evasion               // raises escape chance, speeds up energy loss
	NumTraits
)

// Traits lists every trait in schema order.
var Traits = [NumTraits]Trait{Appetite, Evasion}

// Alleles lists the values a trait can take.
var Alleles = [...]float64{0, 1, 2, 3}

func (t Trait) String() string {
	switch t {
	case Appetite:
		return "appetite"
	case Evasion:
		return "evasion"
	default:
		return fmt.Sprintf("trait(%d)", uint8(t))
	}
}

// Genome holds one allele per trait.
type Genome [NumTraits]float64

// New builds a genome from explicit alleles.
func New(appetite, evasion float64) Genome {
	return Genome{Appetite: appetite, Evasion: evasion}
}

// Get returns the allele carried for t.
func (g Genome) Get(t Trait) float64 {
	return g[t]
}

// Appetite returns the appetite allele.
func (g Genome) Appetite() float64 {
	return g[Appetite]
}

// Evasion returns the evasion allele.
func (g Genome) Evasion() float64 {
	return g[Evasion]
}

// Random draws every trait independently and uniformly from Alleles.
func Random(src rng.Source) Genome {
	var g Genome
	for _, t := range Traits {
		g[t] = Alleles[src.Intn(len(Alleles))]
	}
	return g
}

// Inherit builds a child genome: each trait is copied from a or b on an
// independent coin flip. No mutation is applied.
func Inherit(a, b Genome, src rng.Source) Genome {
	var child Genome
	for _, t := range Traits {
		if src.Intn(2) == 0 {
			child[t] = a[t]
		} else {
			child[t] = b[t]
		}
	}
	return child
}

// FromParents reports whether every allele of child comes from a or b.
func FromParents(child, a, b Genome) bool {
	for _, t := range Traits {
		if child[t] != a[t] && child[t] != b[t] {
			return false
		}
	}
	return true
}

func (g Genome) String() string {
	return fmt.Sprintf("{appetite:%g evasion:%g}", g[Appetite], g[Evasion])
}
