package rng

// Script is a deterministic Source that replays fixed draws, for tests that
// need to force a particular branch. Integer draws are reduced modulo n.
// Once a queue runs dry, Intn returns 0 and Float64 returns FloatFallback.
type Script struct {
	Ints          []int
	Floats        []float64
	FloatFallback float64
}

// Intn returns the next scripted integer, reduced into [0, n).
func (s *Script) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float.
func (s *Script) Float64() float64 {
	if len(s.Floats) == 0 {
		return s.FloatFallback
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

// Always returns a Script whose every integer draw is 0 and every float draw is f.
func Always(f float64) *Script {
	return &Script{FloatFallback: f}
}
