package continuum

import (
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
)

// source is the concurrency-safe uniform point generator backing keyless
// lookups. The continuum it belongs to is otherwise immutable, so this is
// the only piece of shared mutable state a built Continuum owns; access is
// serialized behind a mutex rather than handed one generator per caller, to
// keep Continuum cheap to share across goroutines without extra setup.
type source struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// newSource seeds a generator from the OS entropy pool, matching the
// reference's use of a non-deterministic device to seed its PRNG.
func newSource() *source {
	return &source{rnd: rand.New(rand.NewSource(entropySeed()))}
}

// newDeterministicSource seeds a generator from a fixed value, so tests can
// make keyless lookups reproducible.
func newDeterministicSource(seed int64) *source {
	return &source{rnd: rand.New(rand.NewSource(seed))}
}

func entropySeed() int64 {
	var buf [8]byte
	if _, err := io.ReadFull(crand.Reader, buf[:]); err != nil {
		// crypto/rand.Reader failing is an environment-level problem far
		// beyond this package's remit; fall back to a fixed seed rather
		// than leaving the continuum unconstructible over it.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// point draws a point uniformly from the full ring coordinate space.
func (s *source) point() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Uint32()
}
