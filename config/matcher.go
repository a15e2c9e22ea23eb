package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// PathMatcher selects files by glob, relative to a root. If Include is set a
// path must match one of its patterns; otherwise, if Exclude is set, it must
// match none; otherwise every path matches.
type PathMatcher struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Matches reports whether the slash-separated relative path is selected.
func (m PathMatcher) Matches(relPath string) bool {
	switch {
	case len(m.Include) > 0:
		return matchAny(m.Include, relPath)
	case len(m.Exclude) > 0:
		return !matchAny(m.Exclude, relPath)
	default:
		return true
	}
}

// Validate checks that every pattern is a valid glob.
func (m PathMatcher) Validate() error {
	for _, p := range append(append([]string(nil), m.Include...), m.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

func (m PathMatcher) String() string {
	switch {
	case len(m.Include) > 0:
		return fmt.Sprintf("PathMatcher{include=%v}", m.Include)
	case len(m.Exclude) > 0:
		return fmt.Sprintf("PathMatcher{exclude=%v}", m.Exclude)
	default:
		return "PathMatcher{all}"
	}
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}
