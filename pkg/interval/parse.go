package interval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedInterval is returned when a value cannot be read as a pair of
// plain endpoints.
var ErrMalformedInterval = errors.New("malformed interval")

// Pair is an unordered pair of endpoints.
type Pair[T any] [2]T

// Parse normalizes v into an interval. Accepted shapes are Interval[T],
// *Interval[T], Pair[T], [2]T, and []T or []any holding exactly two T
// values. Endpoints are reordered when needed. Any other shape, such as a
// pair of pairs, yields an error wrapping ErrMalformedInterval.
func Parse[T any](cmp CompareFunc[T], v any) (Interval[T], error) {
	switch x := v.(type) {
	case Interval[T]:
		if x.cmp == nil {
			return Interval[T]{}, fmt.Errorf("%w: zero interval", ErrMalformedInterval)
		}
		return New(cmp, x.start, x.end), nil
	case *Interval[T]:
		if x == nil || x.cmp == nil {
			return Interval[T]{}, fmt.Errorf("%w: nil interval", ErrMalformedInterval)
		}
		return New(cmp, x.start, x.end), nil
	case Pair[T]:
		return New(cmp, x[0], x[1]), nil
	case [2]T:
		return New(cmp, x[0], x[1]), nil
	case []T:
		if len(x) != 2 {
			return Interval[T]{}, fmt.Errorf("%w: expected 2 endpoints, got %d", ErrMalformedInterval, len(x))
		}
		return New(cmp, x[0], x[1]), nil
	case []any:
		if len(x) != 2 {
			return Interval[T]{}, fmt.Errorf("%w: expected 2 endpoints, got %d", ErrMalformedInterval, len(x))
		}
		a, aok := x[0].(T)
		b, bok := x[1].(T)
		if !aok || !bok {
			return Interval[T]{}, fmt.Errorf("%w: endpoints %v are not plain values of type %T", ErrMalformedInterval, x, *new(T))
		}
		return New(cmp, a, b), nil
	default:
		return Interval[T]{}, fmt.Errorf("%w: %v (%T)", ErrMalformedInterval, v, v)
	}
}

// ParseRange parses "from-to" into an integer interval. A single number is
// read as the one-point interval. Either bound may be negative.
func ParseRange(s string) (Interval[int64], error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Interval[int64]{}, fmt.Errorf("empty range")
	}
	// skip a leading sign so "-5-3" splits after the first number
	h := strings.IndexByte(s[1:], '-')
	if h == -1 {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Interval[int64]{}, fmt.Errorf("invalid value %q", s)
		}
		return Of(v, v), nil
	}
	h++
	from, to := strings.TrimSpace(s[:h]), strings.TrimSpace(s[h+1:])
	fromInt, err := strconv.ParseInt(from, 10, 64)
	if err != nil {
		return Interval[int64]{}, fmt.Errorf("invalid from value %q in range %q", from, s)
	}
	toInt, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return Interval[int64]{}, fmt.Errorf("invalid to value %q in range %q", to, s)
	}
	return Of(fromInt, toInt), nil
}
