package intervaltable

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/intervaltree"
	"k8s.io/apimachinery/pkg/labels"
)

// Table holds named interval trees. All methods are safe for concurrent use;
// a mutation of one tree is observed as a whole by readers.
type Table[T any] interface {
	Create(name string, l labels.Set, ivs ...interval.Interval[T]) error
	Get(name string) (*intervaltree.IntervalTree[T], error)
	Labels(name string) (labels.Set, error)
	Delete(name string) error

	Add(name string, ivs ...interval.Interval[T]) error
	Remove(name string, ivs ...interval.Interval[T]) error
	Contains(name string, iv interval.Interval[T]) (bool, error)

	Union(a, b string) (*intervaltree.IntervalTree[T], error)
	Intersection(a, b string) (*intervaltree.IntervalTree[T], error)
	Difference(a, b string) (*intervaltree.IntervalTree[T], error)

	Iterate() *Iterator[T]

	Count() int
	Has(name string) bool
	Names() []string

	GetAll() map[string]*intervaltree.IntervalTree[T]
	GetByLabel(selector labels.Selector) map[string]*intervaltree.IntervalTree[T]
}

// ValidationFn is called for every interval added to the table, except for
// the ones the table is created with.
type ValidationFn[T any] func(iv interval.Interval[T]) error

type Option func(*options)

type options struct {
	log logr.Logger
}

// WithLogger sets the logger mutations are reported to.
func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func NewTable[T any](cmp interval.CompareFunc[T], initEntries Entries[T], v ValidationFn[T], opts ...Option) (Table[T], error) {
	o := &options{log: logr.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	r := &table[T]{
		m:          new(sync.RWMutex),
		table:      map[string]*entry[T]{},
		cmp:        cmp,
		validateFn: v,
		log:        o.log.WithName("intervaltable"),
	}

	var errm error
	for _, e := range initEntries {
		if err := r.create(e.Name(), e.Labels(), e.Intervals(), true); err != nil {
			errm = errors.Join(errm, err)
		}
	}

	return r, errm
}

type table[T any] struct {
	m          *sync.RWMutex
	table      map[string]*entry[T]
	cmp        interval.CompareFunc[T]
	validateFn ValidationFn[T]
	log        logr.Logger
}

func (r *table[T]) validate(ivs []interval.Interval[T], init bool) error {
	if r.validateFn == nil || init {
		return nil
	}
	var errm error
	for _, iv := range ivs {
		if err := r.validateFn(iv); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	return errm
}

func (r *table[T]) get(name string) (*entry[T], error) {
	e, ok := r.table[name]
	if !ok {
		return nil, fmt.Errorf("no match found for: %s", name)
	}
	return e, nil
}

func (r *table[T]) Create(name string, l labels.Set, ivs ...interval.Interval[T]) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.create(name, l, ivs, false)
}

func (r *table[T]) create(name string, l labels.Set, ivs []interval.Interval[T], init bool) error {
	if name == "" {
		return fmt.Errorf("entry name cannot be empty")
	}
	if _, ok := r.table[name]; ok {
		return fmt.Errorf("entry %s already exists", name)
	}
	if err := r.validate(ivs, init); err != nil {
		return fmt.Errorf("entry %s: %w", name, err)
	}
	r.table[name] = &entry[T]{
		name:   name,
		labels: labels.Merge(labels.Set{}, l),
		tree:   intervaltree.From(r.cmp, ivs...),
	}
	r.log.V(1).Info("create", "name", name, "labels", l.String(), "tree", r.table[name].tree.String())
	return nil
}

// Get returns a copy of the named tree.
func (r *table[T]) Get(name string) (*intervaltree.IntervalTree[T], error) {
	r.m.RLock()
	defer r.m.RUnlock()

	e, err := r.get(name)
	if err != nil {
		return nil, err
	}
	return e.tree.Clone(), nil
}

func (r *table[T]) Labels(name string) (labels.Set, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	e, err := r.get(name)
	if err != nil {
		return nil, err
	}
	return labels.Merge(labels.Set{}, e.labels), nil
}

func (r *table[T]) Delete(name string) error {
	r.m.Lock()
	defer r.m.Unlock()

	if _, err := r.get(name); err != nil {
		return err
	}
	delete(r.table, name)
	r.log.V(1).Info("delete", "name", name)
	return nil
}

func (r *table[T]) Add(name string, ivs ...interval.Interval[T]) error {
	r.m.Lock()
	defer r.m.Unlock()

	e, err := r.get(name)
	if err != nil {
		return err
	}
	if err := r.validate(ivs, false); err != nil {
		return fmt.Errorf("entry %s: %w", name, err)
	}
	e.tree.AddAll(ivs)
	r.log.V(1).Info("add", "name", name, "intervals", len(ivs), "tree", e.tree.String())
	return nil
}

func (r *table[T]) Remove(name string, ivs ...interval.Interval[T]) error {
	r.m.Lock()
	defer r.m.Unlock()

	e, err := r.get(name)
	if err != nil {
		return err
	}
	e.tree.RemoveAll(ivs)
	r.log.V(1).Info("remove", "name", name, "intervals", len(ivs), "tree", e.tree.String())
	return nil
}

func (r *table[T]) Contains(name string, iv interval.Interval[T]) (bool, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	e, err := r.get(name)
	if err != nil {
		return false, err
	}
	return e.tree.Contains(iv), nil
}

func (r *table[T]) Union(a, b string) (*intervaltree.IntervalTree[T], error) {
	return r.combine(a, b, (*intervaltree.IntervalTree[T]).Union)
}

func (r *table[T]) Intersection(a, b string) (*intervaltree.IntervalTree[T], error) {
	return r.combine(a, b, (*intervaltree.IntervalTree[T]).Intersection)
}

func (r *table[T]) Difference(a, b string) (*intervaltree.IntervalTree[T], error) {
	return r.combine(a, b, (*intervaltree.IntervalTree[T]).Difference)
}

func (r *table[T]) combine(a, b string, fn func(x, y *intervaltree.IntervalTree[T]) *intervaltree.IntervalTree[T]) (*intervaltree.IntervalTree[T], error) {
	r.m.RLock()
	defer r.m.RUnlock()

	x, errA := r.get(a)
	y, errB := r.get(b)
	if err := errors.Join(errA, errB); err != nil {
		return nil, err
	}
	return fn(x.tree, y.tree), nil
}

// Iterate returns an iterator over a snapshot of the entries, ordered by
// name.
func (r *table[T]) Iterate() *Iterator[T] {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.iterate()
}

func (r *table[T]) iterate() *Iterator[T] {
	keys := make([]string, 0, len(r.table))
	entries := make(map[string]*entry[T], len(r.table))
	for key, e := range r.table {
		keys = append(keys, key)
		entries[key] = e.snapshot()
	}
	sort.Strings(keys)

	return &Iterator[T]{current: -1, keys: keys, table: entries}
}

func (r *table[T]) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.table)
}

func (r *table[T]) Has(name string) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	_, ok := r.table[name]
	return ok
}

func (r *table[T]) Names() []string {
	r.m.RLock()
	defer r.m.RUnlock()

	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *table[T]) GetAll() map[string]*intervaltree.IntervalTree[T] {
	return r.GetByLabel(labels.Everything())
}

func (r *table[T]) GetByLabel(selector labels.Selector) map[string]*intervaltree.IntervalTree[T] {
	trees := map[string]*intervaltree.IntervalTree[T]{}

	iter := r.Iterate()
	for iter.Next() {
		e := iter.table[iter.Name()]
		if selector.Matches(e.labels) {
			trees[iter.Name()] = e.tree
		}
	}
	return trees
}
