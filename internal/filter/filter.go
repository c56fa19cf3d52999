// Package filter implements the include/exclude regex matching the copy
// engine applies during enumeration: a path is excluded if its filename
// matches any exclude pattern; when include patterns are non-empty, a
// filename must match at least one of them to survive.
package filter

import (
	"fmt"
	"log/slog"
	"regexp"
)

// Chain holds the compiled include and exclude pattern sets for a run.
type Chain struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewChain creates an empty filter chain that matches everything.
func NewChain() *Chain {
	return &Chain{}
}

// AddInclude compiles pattern and adds it to the include set.
func (c *Chain) AddInclude(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile include pattern %q: %w", pattern, err)
	}
	c.include = append(c.include, re)
	return nil
}

// AddExclude compiles pattern and adds it to the exclude set.
func (c *Chain) AddExclude(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile exclude pattern %q: %w", pattern, err)
	}
	c.exclude = append(c.exclude, re)
	return nil
}

// AddIncludes compiles every pattern, logging and skipping any that fail
// to compile rather than treating them as fatal.
func AddIncludes(c *Chain, patterns []string) {
	for _, p := range patterns {
		if err := c.AddInclude(p); err != nil {
			slog.Warn("filter: skipping invalid include pattern", "pattern", p, "err", err)
		}
	}
}

// AddExcludes compiles every pattern, logging and skipping any that fail
// to compile rather than treating them as fatal.
func AddExcludes(c *Chain, patterns []string) {
	for _, p := range patterns {
		if err := c.AddExclude(p); err != nil {
			slog.Warn("filter: skipping invalid exclude pattern", "pattern", p, "err", err)
		}
	}
}

// Empty reports whether the chain has no rules at all.
func (c *Chain) Empty() bool {
	return len(c.include) == 0 && len(c.exclude) == 0
}

// Match reports whether filename should survive enumeration: it must not
// match any exclude pattern, and if include patterns exist, it must match
// at least one of them.
func (c *Chain) Match(filename string) bool {
	for _, re := range c.exclude {
		if re.MatchString(filename) {
			return false
		}
	}
	if len(c.include) == 0 {
		return true
	}
	for _, re := range c.include {
		if re.MatchString(filename) {
			return true
		}
	}
	return false
}
