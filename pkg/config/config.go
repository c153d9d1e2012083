package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/intervaltable"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/labels"
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Config describes a set of named integer interval collections and the
// operations to apply to them, in order.
type Config struct {
	Collections []Collection `yaml:"collections"`
	Operations  []Operation  `yaml:"operations,omitempty"`
}

type Collection struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
	// Ranges are "from-to" strings or single numbers
	Ranges []string `yaml:"ranges,omitempty"`
}

type Operation struct {
	Op     Op     `yaml:"op"`
	Target string `yaml:"target"`
	Range  string `yaml:"range"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a config. Unknown fields are rejected.
func Parse(b []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports every problem of the config at once.
func (r *Config) Validate() error {
	var errm error
	names := map[string]struct{}{}
	for i, c := range r.Collections {
		if c.Name == "" {
			errm = errors.Join(errm, fmt.Errorf("collection %d has no name", i))
			continue
		}
		if _, ok := names[c.Name]; ok {
			errm = errors.Join(errm, fmt.Errorf("collection %s is defined more than once", c.Name))
		}
		names[c.Name] = struct{}{}
		if _, err := labels.ValidatedSelectorFromSet(c.Labels); err != nil {
			errm = errors.Join(errm, fmt.Errorf("collection %s: %w", c.Name, err))
		}
		for _, s := range c.Ranges {
			if _, err := interval.ParseRange(s); err != nil {
				errm = errors.Join(errm, fmt.Errorf("collection %s: %w", c.Name, err))
			}
		}
	}
	for i, o := range r.Operations {
		switch o.Op {
		case OpAdd, OpRemove:
		default:
			errm = errors.Join(errm, fmt.Errorf("operation %d: unknown op %q", i, o.Op))
		}
		if _, ok := names[o.Target]; !ok {
			errm = errors.Join(errm, fmt.Errorf("operation %d: unknown target %q", i, o.Target))
		}
		if _, err := interval.ParseRange(o.Range); err != nil {
			errm = errors.Join(errm, fmt.Errorf("operation %d: %w", i, err))
		}
	}
	return errm
}

// Entries returns the collections as table entries.
func (r *Config) Entries() (intervaltable.Entries[int64], error) {
	entries := make(intervaltable.Entries[int64], 0, len(r.Collections))
	for _, c := range r.Collections {
		ivs, err := parseRanges(c.Ranges)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.Name, err)
		}
		entries = append(entries, intervaltable.NewEntry(c.Name, labels.Set(c.Labels), ivs...))
	}
	return entries, nil
}

// Apply runs the operations against t and stops at the first failure.
func (r *Config) Apply(t intervaltable.Table[int64]) error {
	for i, o := range r.Operations {
		iv, err := interval.ParseRange(o.Range)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		switch o.Op {
		case OpAdd:
			err = t.Add(o.Target, iv)
		case OpRemove:
			err = t.Remove(o.Target, iv)
		default:
			err = fmt.Errorf("unknown op %q", o.Op)
		}
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// NewTable builds a table from the collections and applies the operations.
func (r *Config) NewTable(opts ...intervaltable.Option) (intervaltable.Table[int64], error) {
	entries, err := r.Entries()
	if err != nil {
		return nil, err
	}
	t, err := intervaltable.NewTable(interval.Compare[int64], entries, nil, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

func parseRanges(ranges []string) ([]interval.Interval[int64], error) {
	ivs := make([]interval.Interval[int64], 0, len(ranges))
	for _, s := range ranges {
		iv, err := interval.ParseRange(s)
		if err != nil {
			return nil, err
		}
		ivs = append(ivs, iv)
	}
	return ivs, nil
}
