package intervaltree

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/tree"
	"golang.org/x/exp/constraints"
)

// ErrNotSingle is returned by Single when the tree does not hold exactly one
// interval.
var ErrNotSingle = errors.New("interval tree does not hold exactly one interval")

// IntervalTree is an ordered set of closed intervals that never overlap:
// adding an interval merges it with every member it touches, removing one
// splits the members it covers. The order of the endpoints is fixed per tree.
//
// An IntervalTree is not safe for concurrent use.
type IntervalTree[T any] struct {
	cmp  interval.CompareFunc[T]
	tree *tree.Tree[interval.Interval[T]]
}

// New returns an empty tree ordering endpoints with cmp.
func New[T any](cmp interval.CompareFunc[T]) *IntervalTree[T] {
	return &IntervalTree[T]{
		cmp: cmp,
		tree: tree.New(func(a, b interval.Interval[T]) int {
			return a.Compare(b)
		}),
	}
}

// NewOrdered returns an empty tree using the natural order of T.
func NewOrdered[T constraints.Ordered]() *IntervalTree[T] {
	return New(interval.Compare[T])
}

// From returns a tree holding the union of ivs.
func From[T any](cmp interval.CompareFunc[T], ivs ...interval.Interval[T]) *IntervalTree[T] {
	r := New(cmp)
	r.AddAll(ivs)
	return r
}

// FromValues returns a tree holding the union of values, each normalized
// with interval.Parse. Nothing is built when a value is malformed.
func FromValues[T any](cmp interval.CompareFunc[T], values ...any) (*IntervalTree[T], error) {
	ivs := make([]interval.Interval[T], 0, len(values))
	for _, v := range values {
		iv, err := interval.Parse(cmp, v)
		if err != nil {
			return nil, err
		}
		ivs = append(ivs, iv)
	}
	return From(cmp, ivs...), nil
}

// normalize rebuilds iv with the order of the tree.
func (r *IntervalTree[T]) normalize(iv interval.Interval[T]) interval.Interval[T] {
	return interval.New(r.cmp, iv.Start(), iv.End())
}

// Add merges iv into the tree.
func (r *IntervalTree[T]) Add(iv interval.Interval[T]) {
	iv = r.normalize(iv)

	iv, joinedBackward, done := r.joinBackward(iv)
	if done {
		return
	}
	if _, stored := r.joinForward(iv, joinedBackward); !stored {
		r.tree.Set(iv)
	}
}

// joinBackward merges iv with the members before it. It returns the merged
// interval, whether a merge happened and whether iv turned out to be covered
// by an existing member.
func (r *IntervalTree[T]) joinBackward(iv interval.Interval[T]) (interval.Interval[T], bool, bool) {
	joined := false
	for {
		c := r.tree.Seek(iv, true)
		if !c.Prev() {
			return iv, joined, false
		}
		prev := c.Value()
		switch {
		case prev.Contains(iv):
			if joined {
				r.tree.Delete(iv)
			}
			return prev, true, true
		case prev.Intersects(iv):
			merged := prev.Union(iv)
			r.tree.Delete(prev)
			if joined {
				r.tree.Delete(iv)
			}
			r.tree.Set(merged)
			iv, joined = merged, true
		default:
			return iv, joined, false
		}
	}
}

// joinForward merges iv with the members after it. stored tells whether iv is
// already a member. It returns the merged interval and whether it is stored.
func (r *IntervalTree[T]) joinForward(iv interval.Interval[T], stored bool) (interval.Interval[T], bool) {
	joined := stored
	for {
		c := r.tree.Seek(iv, !joined)
		if !c.Valid() {
			return iv, joined
		}
		next := c.Value()
		switch {
		case next.Contains(iv):
			if joined {
				r.tree.Delete(iv)
			}
			return next, true
		case next.Intersects(iv):
			merged := next.Union(iv)
			r.tree.Delete(next)
			if joined {
				r.tree.Delete(iv)
			}
			r.tree.Set(merged)
			iv, joined = merged, true
		default:
			return iv, joined
		}
	}
}

// Remove excludes the range of iv from the tree, splitting members that
// extend beyond it.
func (r *IntervalTree[T]) Remove(iv interval.Interval[T]) {
	iv = r.normalize(iv)
	r.splitBackward(iv)
	r.splitForward(iv)
}

// splitBackward splits the members ordered before iv.
func (r *IntervalTree[T]) splitBackward(iv interval.Interval[T]) {
	c := r.tree.Seek(iv, true)
	for c.Prev() {
		prev := c.Value()
		if !prev.Intersects(iv) {
			return
		}
		r.replace(prev, prev.Difference(iv))
		// the remainders of prev never start before prev, so resume
		// strictly before the start of prev
		c = r.tree.Seek(interval.Point(r.cmp, prev.Start()), true)
	}
}

// splitForward splits the members ordered at or after iv.
func (r *IntervalTree[T]) splitForward(iv interval.Interval[T]) {
	c := r.tree.Seek(iv, true)
	for c.Valid() {
		next := c.Value()
		if !next.Intersects(iv) {
			return
		}
		r.replace(next, next.Difference(iv))
		// the remainders of next never end after next, so resume
		// strictly after the end of next
		c = r.tree.Seek(interval.Point(r.cmp, next.End()), false)
	}
}

func (r *IntervalTree[T]) replace(old interval.Interval[T], pieces []interval.Interval[T]) {
	r.tree.Delete(old)
	// cutting a single point out of the interior leaves two remainders
	// sharing that point, which must stay one member
	if len(pieces) == 2 && pieces[0].Intersects(pieces[1]) {
		pieces = []interval.Interval[T]{pieces[0].Union(pieces[1])}
	}
	for _, piece := range pieces {
		r.tree.Set(piece)
	}
}

// AddAll adds each interval in order.
func (r *IntervalTree[T]) AddAll(ivs []interval.Interval[T]) {
	for _, iv := range ivs {
		r.Add(iv)
	}
}

// RemoveAll removes each interval in order.
func (r *IntervalTree[T]) RemoveAll(ivs []interval.Interval[T]) {
	for _, iv := range ivs {
		r.Remove(iv)
	}
}

// AddValue normalizes v with interval.Parse and adds it. The tree is left
// untouched when v is malformed.
func (r *IntervalTree[T]) AddValue(v any) error {
	iv, err := interval.Parse(r.cmp, v)
	if err != nil {
		return err
	}
	r.Add(iv)
	return nil
}

// RemoveValue normalizes v with interval.Parse and removes it.
func (r *IntervalTree[T]) RemoveValue(v any) error {
	iv, err := interval.Parse(r.cmp, v)
	if err != nil {
		return err
	}
	r.Remove(iv)
	return nil
}

// ContainsValue normalizes v with interval.Parse and reports whether a member
// contains it.
func (r *IntervalTree[T]) ContainsValue(v any) (bool, error) {
	iv, err := interval.Parse(r.cmp, v)
	if err != nil {
		return false, err
	}
	return r.Contains(iv), nil
}

// Clear removes all intervals.
func (r *IntervalTree[T]) Clear() {
	r.tree.Clear()
}

// Contains returns whether a single member covers iv entirely.
func (r *IntervalTree[T]) Contains(iv interval.Interval[T]) bool {
	iv = r.normalize(iv)
	found := false
	r.neighbors(iv, func(member interval.Interval[T]) bool {
		found = member.Contains(iv)
		return !found
	})
	return found
}

// ContainsPoint returns whether a member covers v.
func (r *IntervalTree[T]) ContainsPoint(v T) bool {
	return r.Contains(interval.Point(r.cmp, v))
}

// Find returns the member covering v.
func (r *IntervalTree[T]) Find(v T) (interval.Interval[T], bool) {
	var found interval.Interval[T]
	ok := false
	r.neighbors(interval.Point(r.cmp, v), func(member interval.Interval[T]) bool {
		if member.ContainsValue(v) {
			found, ok = member, true
		}
		return !ok
	})
	return found, ok
}

// neighbors calls fn for each member intersecting iv, first walking backward
// from the position of iv and then forward. fn returns false to stop.
func (r *IntervalTree[T]) neighbors(iv interval.Interval[T], fn func(interval.Interval[T]) bool) {
	c := r.tree.Seek(iv, true)
	for c.Prev() {
		member := c.Value()
		if !member.Intersects(iv) {
			break
		}
		if !fn(member) {
			return
		}
	}
	for c = r.tree.Seek(iv, true); c.Valid(); c.Next() {
		member := c.Value()
		if !member.Intersects(iv) {
			return
		}
		if !fn(member) {
			return
		}
	}
}

// Clone returns an independent copy of the tree.
func (r *IntervalTree[T]) Clone() *IntervalTree[T] {
	return &IntervalTree[T]{
		cmp:  r.cmp,
		tree: r.tree.Clone(),
	}
}

// Union returns a new tree covering the members of r and other.
func (r *IntervalTree[T]) Union(other *IntervalTree[T]) *IntervalTree[T] {
	out := r.Clone()
	for iv := range other.All() {
		out.Add(iv)
	}
	return out
}

// Difference returns a new tree covering the members of r with the members
// of other excluded.
func (r *IntervalTree[T]) Difference(other *IntervalTree[T]) *IntervalTree[T] {
	out := r.Clone()
	for iv := range other.All() {
		out.Remove(iv)
	}
	return out
}

// Intersection returns a new tree covering what r and other have in common.
func (r *IntervalTree[T]) Intersection(other *IntervalTree[T]) *IntervalTree[T] {
	out := New(r.cmp)
	for ov := range other.All() {
		ov = r.normalize(ov)
		r.neighbors(ov, func(member interval.Interval[T]) bool {
			// neighbors only reports intersecting members
			iv, _ := member.Intersection(ov)
			out.Add(iv)
			return true
		})
	}
	return out
}

// Len returns the number of intervals.
func (r *IntervalTree[T]) Len() int { return r.tree.Len() }

func (r *IntervalTree[T]) IsEmpty() bool { return r.tree.Len() == 0 }

func (r *IntervalTree[T]) IsNotEmpty() bool { return r.tree.Len() != 0 }

// First returns the lowest interval, ok is false when the tree is empty.
func (r *IntervalTree[T]) First() (interval.Interval[T], bool) {
	return r.tree.Min()
}

// Last returns the highest interval, ok is false when the tree is empty.
func (r *IntervalTree[T]) Last() (interval.Interval[T], bool) {
	return r.tree.Max()
}

// Single returns the only interval of the tree. It fails with ErrNotSingle
// when the tree is empty or holds more than one interval.
func (r *IntervalTree[T]) Single() (interval.Interval[T], error) {
	if n := r.tree.Len(); n != 1 {
		return interval.Interval[T]{}, fmt.Errorf("%w: got %d", ErrNotSingle, n)
	}
	iv, _ := r.tree.Min()
	return iv, nil
}

// Bounds returns the smallest interval covering every member, ok is false
// when the tree is empty.
func (r *IntervalTree[T]) Bounds() (interval.Interval[T], bool) {
	first, ok := r.tree.Min()
	if !ok {
		return interval.Interval[T]{}, false
	}
	last, _ := r.tree.Max()
	return first.Union(last), true
}

// Gaps returns the intervals between consecutive members. Each gap shares
// its endpoints with the members around it.
func (r *IntervalTree[T]) Gaps() []interval.Interval[T] {
	var gaps []interval.Interval[T]
	c := r.tree.Iterate()
	if !c.Next() {
		return gaps
	}
	prev := c.Value()
	for c.Next() {
		next := c.Value()
		gaps = append(gaps, interval.New(r.cmp, prev.End(), next.Start()))
		prev = next
	}
	return gaps
}

// All returns an iterator over the intervals in ascending order. The tree
// must not be modified during the iteration.
func (r *IntervalTree[T]) All() iter.Seq[interval.Interval[T]] {
	return r.tree.All()
}

// Iterate returns a cursor positioned before the first interval.
func (r *IntervalTree[T]) Iterate() *tree.Cursor[interval.Interval[T]] {
	return r.tree.Iterate()
}

// Intervals returns the intervals in ascending order.
func (r *IntervalTree[T]) Intervals() []interval.Interval[T] {
	return r.tree.Values()
}

// Equal returns whether r and other hold the same intervals.
func (r *IntervalTree[T]) Equal(other *IntervalTree[T]) bool {
	if r.Len() != other.Len() {
		return false
	}
	a, b := r.tree.Iterate(), other.tree.Iterate()
	for a.Next() && b.Next() {
		if !a.Value().Equal(b.Value()) {
			return false
		}
	}
	return true
}

func (r *IntervalTree[T]) String() string {
	var sb strings.Builder
	sb.WriteString("IntervalTree(")
	first := true
	for iv := range r.tree.All() {
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(iv.String())
		first = false
	}
	sb.WriteString(")")
	return sb.String()
}
