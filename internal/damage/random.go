package damage

import (
	"math/rand"
	"sync"
)

// NumberGenerator produces a stream of random values.
type NumberGenerator interface {
	Next() float64
}

// Source hands out independently seeded generators derived from one master
// seed, so a run is reproducible from that seed alone.
type Source struct {
	mu     sync.Mutex
	master *rand.Rand
}

// NewSource creates a source from the run seed.
func NewSource(seed int64) *Source {
	return &Source{master: rand.New(rand.NewSource(seed))}
}

// Rand returns a new generator seeded from the master stream.
func (s *Source) Rand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.master.Int63()))
}

// Gaussian returns a normal generator with the given mean and standard deviation.
func (s *Source) Gaussian(mean, sd float64) *Gaussian {
	return &Gaussian{Mean: mean, SD: sd, rng: s.Rand()}
}

// Uniform returns a generator uniform over [lo, hi).
func (s *Source) Uniform(lo, hi float64) *Uniform {
	return &Uniform{Min: lo, Max: hi, rng: s.Rand()}
}

// Unit returns a generator uniform over [0, 1).
func (s *Source) Unit() *Uniform {
	return s.Uniform(0, 1)
}

// Gaussian samples a normal distribution.
type Gaussian struct {
	Mean float64
	SD   float64
	rng  *rand.Rand
}

func (g *Gaussian) Next() float64 {
	return g.Mean + g.rng.NormFloat64()*g.SD
}

// Uniform samples a continuous uniform distribution.
type Uniform struct {
	Min float64
	Max float64
	rng *rand.Rand
}

func (u *Uniform) Next() float64 {
	return u.Min + u.rng.Float64()*(u.Max-u.Min)
}

// Fixed always returns the same value.
type Fixed float64

func (f Fixed) Next() float64 { return float64(f) }

// Sequence replays values in order and then repeats the last one.
type Sequence struct {
	Values []float64
	i      int
}

func (s *Sequence) Next() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.i]
	if s.i < len(s.Values)-1 {
		s.i++
	}
	return v
}
