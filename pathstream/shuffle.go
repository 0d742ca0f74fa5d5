package pathstream

import (
	"math/rand/v2"
)

// DefaultCompactFraction is the share of used slots after which the
// shuffle buffer is compacted.
const DefaultCompactFraction = 0.25

// Shuffled yields every path of a finite source exactly once, in random order.
//
// The whole source is buffered on first use. Each draw picks a random slot
// and retries while it lands on a hole left by an earlier draw; holes are
// squeezed out once they make up CompactFraction of the buffer, which keeps
// the expected number of retries below 1/(1-CompactFraction).
type Shuffled struct {
	src             Source
	rnd             *rand.Rand
	CompactFraction float64

	loaded bool
	buf    []string
	holes  int
}

// Shuffle wraps src, which must be finite. A nil rnd uses a randomly seeded generator.
func Shuffle(src Source, rnd *rand.Rand) *Shuffled {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Shuffled{src: src, rnd: rnd, CompactFraction: DefaultCompactFraction}
}

func (s *Shuffled) load() {
	s.loaded = true
	for {
		p, ok := s.src.Next()
		if !ok {
			return
		}
		if p != "" {
			s.buf = append(s.buf, p)
		}
	}
}

func (s *Shuffled) Next() (string, bool) {
	if !s.loaded {
		s.load()
	}
	if len(s.buf)-s.holes == 0 {
		return "", false
	}

	for {
		i := s.rnd.IntN(len(s.buf))
		p := s.buf[i]
		if p == "" {
			continue
		}
		s.buf[i] = ""
		s.holes++
		if float64(s.holes) >= float64(len(s.buf))*s.CompactFraction {
			s.compact()
		}
		return p, true
	}
}

func (s *Shuffled) compact() {
	n := 0
	for _, p := range s.buf {
		if p != "" {
			s.buf[n] = p
			n++
		}
	}
	clear(s.buf[n:])
	s.buf = s.buf[:n]
	s.holes = 0
}

// Remaining returns the number of paths not yet drawn.
func (s *Shuffled) Remaining() int {
	if !s.loaded {
		s.load()
	}
	return len(s.buf) - s.holes
}
