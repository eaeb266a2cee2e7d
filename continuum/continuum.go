// Package continuum implements a weighted consistent-hash ring: a sorted
// sequence of (point, value) elements built from a weighted Group, answering
// keyed and keyless lookups in O(log N) and enumerating its contents for
// diagnostics.
//
// A Continuum is a pure function of the Group it was built from. There is
// no incremental membership change: when the underlying group changes, the
// caller builds a new Continuum with New and replaces the old one wholesale.
package continuum

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/maniacs-ops/cocaine-core/logging"
)

const (
	// baseSteps is the number of hash rounds a member with 100% of the
	// weight receives in a singleton group. Each round contributes one
	// quad (4 elements), so a singleton group ends up with baseSteps*4
	// ring elements: coarse enough for fast lookup, fine enough for
	// uniform key distribution.
	baseSteps = 64

	// quadsPerStep is the number of 32-bit points a single 128-bit hash
	// round is sliced into.
	quadsPerStep = 4

	// epsilon mirrors std::numeric_limits<double>::epsilon() from the
	// reference implementation: the total weight of a group must clear
	// this bound, not merely be non-zero.
	epsilon = 2.220446049250313e-16
)

// Point is an unsigned 32-bit ring coordinate, ordered by numeric value over
// the full [0, 2^32) space.
type Point = uint32

// Element is a single (point, value) entry on the ring. One member
// contributes many elements, proportional to its weight.
type Element struct {
	Point Point
	Value string
}

// Continuum is the built, immutable ring. The zero value is not usable; get
// one from New.
type Continuum struct {
	elements []Element
	hasher   Hasher
	rng      *source
	log      logging.Logger
}

type options struct {
	hasherFactory HasherFactory
	seed          *int64
	log           logging.Logger
}

// Option configures New.
type Option func(*options)

// WithHasherFactory overrides the Hasher used to build and query the ring.
// All processes that need to agree on the same ring must use the same
// factory.
func WithHasherFactory(f HasherFactory) Option {
	return func(o *options) { o.hasherFactory = f }
}

// WithSeed pins the keyless RNG to a deterministic seed, for reproducible
// tests. Production call sites should leave this unset so GetRandom draws
// from OS entropy.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = &seed }
}

// WithLogger sets the diagnostic sink. The default is a no-op logger.
func WithLogger(log logging.Logger) Option {
	return func(o *options) { o.log = log }
}

// New builds a Continuum from a snapshot of group. It fails with
// ErrInvalidGroup if the group is empty or its total weight does not clear
// epsilon, and with ErrHashUnavailable if the configured HasherFactory
// cannot produce a Hasher. Construction performs no I/O, and either produces
// a complete, usable Continuum or none at all — there is no partial result.
func New(group Group, opts ...Option) (*Continuum, error) {
	o := options{hasherFactory: defaultHasherFactory, log: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	hasher, err := o.hasherFactory()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashUnavailable, err)
	}

	length := len(group)
	weight := group.totalWeight()

	o.log.Debugf("populating continuum based on %d group elements, total weight: %f", length, weight)

	if length == 0 || weight <= epsilon {
		return nil, fmt.Errorf("%w: %d members, total weight %g", ErrInvalidGroup, length, weight)
	}

	elements := make([]Element, 0, length*baseSteps*quadsPerStep)

	names := make([]string, 0, length)
	for value := range group {
		names = append(names, value)
	}
	sort.Strings(names)

	for _, value := range names {
		w := group[value]
		slice := w / weight
		steps := int(math.Round(slice * float64(baseSteps*length)))

		for step := 0; step < steps; step++ {
			digest := hasher.Hash128(stepInput(value, uint64(step)))
			for q := 0; q < quadsPerStep; q++ {
				p := binary.LittleEndian.Uint32(digest[q*4 : q*4+4])
				elements = append(elements, Element{Point: p, Value: value})
			}
		}

		o.log.Debugf("added %d quads for %s, weight: %.2f%%, %d/%d", steps, value, slice*100, steps, length*baseSteps)
	}

	sort.Slice(elements, func(i, j int) bool {
		if elements[i].Point != elements[j].Point {
			return elements[i].Point < elements[j].Point
		}
		return elements[i].Value < elements[j].Value
	})

	unique := true
	for i := 1; i < len(elements); i++ {
		if elements[i].Point == elements[i-1].Point {
			unique = false
			break
		}
	}

	o.log.Debugf("resulting continuum population: %d points, unique: %t", len(elements), unique)

	rng := newSource()
	if o.seed != nil {
		rng = newDeterministicSource(*o.seed)
	}

	return &Continuum{elements: elements, hasher: hasher, rng: rng, log: o.log}, nil
}

// stepInput encodes the hash round input as value || step, with step fixed
// at a 64-bit little-endian width regardless of host word size. The
// reference encodes sizeof(size_t) bytes, which silently breaks ring
// compatibility between 32- and 64-bit hosts; fixing the width here is a
// deliberate deviation so any two processes agreeing on the Hasher also
// agree on the ring.
func stepInput(value string, step uint64) []byte {
	buf := make([]byte, len(value)+8)
	copy(buf, value)
	binary.LittleEndian.PutUint64(buf[len(value):], step)
	return buf
}

// foldPoint XORs the four little-endian 32-bit words of a 128-bit digest
// into the single point a lookup searches the ring for.
func foldPoint(digest [16]byte) Point {
	var p Point
	for q := 0; q < quadsPerStep; q++ {
		p ^= binary.LittleEndian.Uint32(digest[q*4 : q*4+4])
	}
	return p
}

// Get deterministically maps key to a member: it hashes the key, folds the
// digest into a target point, and returns the value of the smallest element
// whose point is strictly greater than the target, wrapping around to the
// first element if none exists. Get is a pure function of key and the
// constructed ring; it is safe to call concurrently from any number of
// goroutines.
func (c *Continuum) Get(key string) string {
	digest := c.hasher.Hash128([]byte(key))
	p := foldPoint(digest)
	e := c.upperBound(p)
	c.log.Debugf("hashed key %q -> point %d mapped to %d, value: %s", key, p, e.Point, e.Value)
	return e.Value
}

// GetRandom draws a point uniformly from the ring's coordinate space and
// resolves it the same way Get does. Over many draws the empirical
// frequency of each value converges to its share of ring occupancy, and
// hence to its share of the input group's weight. GetRandom mutates the
// Continuum's internal RNG state, which is safe for concurrent use: access
// is serialized internally.
func (c *Continuum) GetRandom() string {
	p := c.rng.point()
	e := c.upperBound(p)
	c.log.Debugf("randomized keyless point %d mapped to %d, value: %s", p, e.Point, e.Value)
	return e.Value
}

// All returns a copy of the ring's elements in ascending point order, for
// diagnostics and tests. It never mutates the Continuum.
func (c *Continuum) All() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Len returns the number of elements on the ring.
func (c *Continuum) Len() int {
	return len(c.elements)
}

func (c *Continuum) upperBound(p Point) Element {
	i := sort.Search(len(c.elements), func(i int) bool {
		return c.elements[i].Point > p
	})
	if i == len(c.elements) {
		return c.elements[0]
	}
	return c.elements[i]
}
