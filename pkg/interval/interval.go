package interval

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/constraints"
)

// CompareFunc returns a negative number when a < b, zero when a == b and a
// positive number when a > b.
type CompareFunc[T any] func(a, b T) int

// Interval is a closed range [start, end] over an ordered domain. Intervals
// are values: every operation returns a new Interval and leaves the receiver
// untouched. The zero value is not usable, construct intervals with New or Of.
type Interval[T any] struct {
	start T
	end   T
	cmp   CompareFunc[T]
}

// New returns the interval spanning a and b, swapping them if needed so that
// start <= end.
func New[T any](cmp CompareFunc[T], a, b T) Interval[T] {
	if cmp(b, a) < 0 {
		a, b = b, a
	}
	return Interval[T]{start: a, end: b, cmp: cmp}
}

// Of returns the interval spanning a and b using the natural order of T.
func Of[T constraints.Ordered](a, b T) Interval[T] {
	return New(Compare[T], a, b)
}

// Point returns the degenerate interval [v, v].
func Point[T any](cmp CompareFunc[T], v T) Interval[T] {
	return Interval[T]{start: v, end: v, cmp: cmp}
}

// Compare is the CompareFunc for the natural order of T.
func Compare[T constraints.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}

// Start returns the lower bound of r.
func (r Interval[T]) Start() T { return r.start }

// End returns the upper bound of r.
func (r Interval[T]) End() T { return r.end }

// CompareFunc returns the order r was built with.
func (r Interval[T]) CompareFunc() CompareFunc[T] { return r.cmp }

func (r Interval[T]) String() string {
	return fmt.Sprintf("[%v, %v]", r.start, r.end)
}

// Compare orders intervals by start, then by end.
func (r Interval[T]) Compare(other Interval[T]) int {
	if c := r.cmp(r.start, other.start); c != 0 {
		return c
	}
	return r.cmp(r.end, other.end)
}

func (r Interval[T]) Equal(other Interval[T]) bool { return r.Compare(other) == 0 }

func (r Interval[T]) Less(other Interval[T]) bool { return r.Compare(other) < 0 }

// Contains returns whether other lies entirely within r.
func (r Interval[T]) Contains(other Interval[T]) bool {
	return r.cmp(other.start, r.start) >= 0 && r.cmp(other.end, r.end) <= 0
}

// ContainsValue returns whether v lies within r.
func (r Interval[T]) ContainsValue(v T) bool {
	return r.cmp(v, r.start) >= 0 && r.cmp(v, r.end) <= 0
}

// Intersects returns whether r and other share at least one point. Intervals
// that only touch at an endpoint intersect.
func (r Interval[T]) Intersects(other Interval[T]) bool {
	return r.cmp(other.start, r.end) <= 0 && r.cmp(other.end, r.start) >= 0
}

// Union returns the smallest interval covering both r and other, whether or
// not they intersect.
func (r Interval[T]) Union(other Interval[T]) Interval[T] {
	return Interval[T]{
		start: r.min(r.start, other.start),
		end:   r.max(r.end, other.end),
		cmp:   r.cmp,
	}
}

// Intersection returns the overlap of r and other. ok is false when they do
// not intersect.
func (r Interval[T]) Intersection(other Interval[T]) (Interval[T], bool) {
	if !r.Intersects(other) {
		return Interval[T]{}, false
	}
	return Interval[T]{
		start: r.max(r.start, other.start),
		end:   r.min(r.end, other.end),
		cmp:   r.cmp,
	}, true
}

// Difference returns the parts of r not covered by other, in ascending
// order. The result holds zero, one or two intervals; remainders keep the
// endpoint they share with other.
func (r Interval[T]) Difference(other Interval[T]) []Interval[T] {
	switch {
	case other.Contains(r):
		//       other
		// s-------------e
		//    s------e
		//       r
		return nil
	case !other.Intersects(r):
		return []Interval[T]{r}
	case r.cmp(r.start, other.start) < 0 && r.cmp(other.end, r.end) < 0:
		//          r
		// s-------------------e
		//      s-------e
		//        other
		return []Interval[T]{
			{start: r.start, end: other.start, cmp: r.cmp},
			{start: other.end, end: r.end, cmp: r.cmp},
		}
	case r.cmp(other.start, r.start) <= 0:
		//   other
		// s------e
		//    s------e
		//       r
		return []Interval[T]{{start: other.end, end: r.end, cmp: r.cmp}}
	default:
		//           other
		//        s------e
		//    s------e
		//       r
		return []Interval[T]{{start: r.start, end: other.start, cmp: r.cmp}}
	}
}

func (r Interval[T]) min(a, b T) T {
	if r.cmp(b, a) < 0 {
		return b
	}
	return a
}

func (r Interval[T]) max(a, b T) T {
	if r.cmp(b, a) > 0 {
		return b
	}
	return a
}
