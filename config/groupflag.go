// Package config provides flag.Value and YAML adapters for assembling a
// locator's configuration from the command line or a config file, in the
// same vein as the key=value and YAML-backed flag types the platform's
// other components use.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/maniacs-ops/cocaine-core/continuum"
)

// GroupFlag is a flag.Value and yaml.Unmarshaler over a continuum.Group,
// so a weighted group can be given inline on the command line
// (-member alpha=3,beta=1) or embedded in a YAML config document, without
// requiring a separate group file.
type GroupFlag struct {
	Group continuum.Group
}

func (g GroupFlag) String() string {
	if g.Group == nil {
		return ""
	}

	pairs := make([]string, 0, len(g.Group))
	for k, v := range g.Group {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, strconv.FormatFloat(v, 'g', -1, 64)))
	}
	return strings.Join(pairs, ",")
}

// Set implements flag.Value, parsing a comma-separated list of
// member=weight pairs.
func (g *GroupFlag) Set(value string) error {
	group := continuum.Group{}

	for _, pair := range strings.Split(value, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid member=weight pair, expected format member=weight but got: %q", pair)
		}

		name := strings.TrimSpace(kv[0])
		weight, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return fmt.Errorf("invalid weight for member %q: %w", name, err)
		}
		if name == "" {
			return errors.New("member name must not be empty")
		}

		group[name] = weight
	}

	g.Group = group
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler, decoding a flat mapping of
// member identifier to weight directly into the underlying Group.
func (g *GroupFlag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	group := continuum.Group{}
	if err := unmarshal(&group); err != nil {
		return err
	}
	g.Group = group
	return nil
}
