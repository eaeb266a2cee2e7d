package locator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/maniacs-ops/cocaine-core/continuum"
)

// GroupSource supplies the weighted group a Locator rebuilds its continuum
// from. A Locator performs no gossip, health checking, or replication of
// its own; all of that, if needed, lives behind the GroupSource.
type GroupSource interface {
	Load() (continuum.Group, error)
}

// StaticSource is a GroupSource over an in-memory group, for tests and
// one-shot CLI invocations that never need to rebuild.
type StaticSource continuum.Group

// Load implements GroupSource.
func (s StaticSource) Load() (continuum.Group, error) {
	return continuum.Group(s), nil
}

// FileSource loads a Group from a YAML file shaped as a flat mapping of
// member identifier to weight, e.g.:
//
//	alpha: 3
//	beta: 1
type FileSource struct {
	Path string
}

// Load implements GroupSource.
func (f FileSource) Load() (continuum.Group, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading group file %s: %w", f.Path, err)
	}

	group := continuum.Group{}
	if err := yaml.Unmarshal(data, &group); err != nil {
		return nil, fmt.Errorf("parsing group file %s: %w", f.Path, err)
	}

	return group, nil
}
