package telemetry

import (
	"sort"

	"github.com/pthm-cable/warren/components"
	"github.com/pthm-cable/warren/genetics"
	"github.com/pthm-cable/warren/population"
)

// AlleleRecord is one row of alleles.csv: the share of a species carrying
// one allele of one trait at a given generation.
type AlleleRecord struct {
	Generation int     `csv:"generation"`
	Species    string  `csv:"species"`
	Trait      string  `csv:"trait"`
	Allele     float64 `csv:"allele"`
	Proportion float64 `csv:"proportion"`
}

// AlleleRecords flattens registry allele frequencies into rows ordered by
// species, trait and allele.
func AlleleRecords(gen int, freq map[components.Species]map[genetics.Trait]population.Frequencies) []AlleleRecord {
	var out []AlleleRecord
	for _, s := range components.Gened {
		byTrait := freq[s]
		for _, t := range genetics.Traits {
			f := byTrait[t]
			alleles := make([]float64, 0, len(f))
			for a := range f {
				alleles = append(alleles, a)
			}
			sort.Float64s(alleles)
			for _, a := range alleles {
				out = append(out, AlleleRecord{
					Generation: gen,
					Species:    s.String(),
					Trait:      t.String(),
					Allele:     a,
					Proportion: f[a],
				})
			}
		}
	}
	return out
}
