package intervaltable

import (
	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/intervaltree"
	"k8s.io/apimachinery/pkg/labels"
)

type Entry[T any] interface {
	Name() string
	Labels() labels.Set
	Intervals() []interval.Interval[T]
}

type entry[T any] struct {
	name   string
	labels labels.Set
	tree   *intervaltree.IntervalTree[T]
	// only set on entries handed to NewTable
	intervals []interval.Interval[T]
}

type Entries[T any] []Entry[T]

func (r *entry[T]) Name() string       { return r.name }
func (r *entry[T]) Labels() labels.Set { return r.labels }

func (r *entry[T]) Intervals() []interval.Interval[T] {
	if r.tree == nil {
		return r.intervals
	}
	return r.tree.Intervals()
}

// NewEntry returns an entry to seed a table with.
func NewEntry[T any](name string, l labels.Set, ivs ...interval.Interval[T]) Entry[T] {
	return &entry[T]{
		name:      name,
		labels:    l,
		intervals: ivs,
	}
}

// snapshot returns a copy of the entry that does not share state with the
// table.
func (r *entry[T]) snapshot() *entry[T] {
	return &entry[T]{
		name:   r.name,
		labels: labels.Merge(labels.Set{}, r.labels),
		tree:   r.tree.Clone(),
	}
}
