// Package locator is the out-of-scope consumer the continuum package
// expects: something that rebuilds a Continuum whenever its underlying
// group changes and queries it per request. It owns none of the core
// ring semantics; it only polls a GroupSource and hands off freshly built
// continua to readers.
package locator

import (
	"fmt"
	"time"

	"github.com/maniacs-ops/cocaine-core/continuum"
	"github.com/maniacs-ops/cocaine-core/logging"
	"github.com/maniacs-ops/cocaine-core/metrics"
)

// Options configures a Locator.
type Options struct {
	// Source supplies the weighted group to (re)build continua from.
	Source GroupSource

	// SourceName labels this Locator's builds and errors in Metrics.
	// Defaults to "default".
	SourceName string

	// PollInterval is how often Source is polled for changes. Defaults
	// to 30s.
	PollInterval time.Duration

	// Log receives construction and lookup diagnostics. Defaults to a
	// no-op sink.
	Log logging.Logger

	// Metrics receives build and lookup observations. Defaults to a
	// freshly constructed, unregistered Metrics.
	Metrics *metrics.Metrics

	// ContinuumOptions is passed through to continuum.New on every
	// (re)build, e.g. to pin a HasherFactory or RNG seed.
	ContinuumOptions []continuum.Option
}

// Locator holds the current Continuum behind a single-writer channel and
// replaces it wholesale with one rebuilt from every successful poll of
// Source, whether or not the group changed. Readers never observe a
// partially built continuum.
type Locator struct {
	out     <-chan *continuum.Continuum
	quit    chan struct{}
	metrics *metrics.Metrics
}

// feed runs the goroutine that owns the current continuum pointer, handing
// it to any reader of out and accepting replacements over in.
func feed(initial *continuum.Continuum, quit <-chan struct{}) (chan<- *continuum.Continuum, <-chan *continuum.Continuum) {
	in := make(chan *continuum.Continuum)
	out := make(chan *continuum.Continuum)

	go func() {
		current := initial
		for {
			select {
			case current = <-in:
			case out <- current:
			case <-quit:
				return
			}
		}
	}()

	return in, out
}

// New builds an initial Continuum from Source and starts polling it for
// changes at PollInterval. It fails if the initial load or build fails;
// it does not start polling in that case.
func New(o Options) (*Locator, error) {
	if o.Source == nil {
		return nil, fmt.Errorf("locator: Source is required")
	}
	if o.Log == nil {
		o.Log = logging.NewNop()
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 30 * time.Second
	}
	if o.SourceName == "" {
		o.SourceName = "default"
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}

	group, err := o.Source.Load()
	if err != nil {
		return nil, fmt.Errorf("loading initial routing group: %w", err)
	}

	start := time.Now()
	initial, err := continuum.New(group, buildOptions(o)...)
	if err != nil {
		o.Metrics.ObserveBuildError(o.SourceName)
		return nil, fmt.Errorf("building initial continuum: %w", err)
	}
	o.Metrics.ObserveBuild(o.SourceName, time.Since(start).Seconds(), initial.Len(), len(group))

	quit := make(chan struct{})
	in, out := feed(initial, quit)

	l := &Locator{out: out, quit: quit, metrics: o.Metrics}
	go l.poll(o, in)
	return l, nil
}

func (l *Locator) poll(o Options, in chan<- *continuum.Continuum) {
	ticker := time.NewTicker(o.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			group, err := o.Source.Load()
			if err != nil {
				o.Log.Errorf("failed to reload routing group, keeping previous continuum: %v", err)
				o.Metrics.ObserveBuildError(o.SourceName)
				continue
			}

			start := time.Now()
			next, err := continuum.New(group, buildOptions(o)...)
			if err != nil {
				o.Log.Errorf("failed to rebuild continuum, keeping previous: %v", err)
				o.Metrics.ObserveBuildError(o.SourceName)
				continue
			}
			o.Metrics.ObserveBuild(o.SourceName, time.Since(start).Seconds(), next.Len(), len(group))

			select {
			case in <- next:
			case <-l.quit:
				return
			}
		case <-l.quit:
			return
		}
	}
}

// buildOptions returns a fresh option slice for a single continuum.New
// call, so repeated (re)builds never alias or mutate o.ContinuumOptions's
// backing array.
func buildOptions(o Options) []continuum.Option {
	opts := make([]continuum.Option, 0, len(o.ContinuumOptions)+1)
	opts = append(opts, o.ContinuumOptions...)
	opts = append(opts, continuum.WithLogger(o.Log))
	return opts
}

func (l *Locator) current() *continuum.Continuum {
	return <-l.out
}

// Lookup resolves key against the currently active continuum.
func (l *Locator) Lookup(key string) string {
	v := l.current().Get(key)
	l.metrics.ObserveLookup("keyed", v)
	return v
}

// LookupRandom resolves a uniformly drawn point against the currently
// active continuum.
func (l *Locator) LookupRandom() string {
	v := l.current().GetRandom()
	l.metrics.ObserveLookup("keyless", v)
	return v
}

// All enumerates the currently active continuum's ring, for diagnostics.
func (l *Locator) All() []continuum.Element {
	return l.current().All()
}

// Metrics returns the Metrics this Locator reports build and lookup
// observations to, so callers can mount its Handler on their own mux.
func (l *Locator) Metrics() *metrics.Metrics {
	return l.metrics
}

// Close stops the background poll loop. Continua already handed to readers
// are unaffected.
func (l *Locator) Close() {
	close(l.quit)
}
