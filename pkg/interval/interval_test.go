package interval

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func toPairs(ivs []Interval[int]) [][2]int {
	out := make([][2]int, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, [2]int{iv.Start(), iv.End()})
	}
	return out
}

func TestNewNormalizes(t *testing.T) {
	iv := Of(5, 1)
	assert.Equal(t, 1, iv.Start())
	assert.Equal(t, 5, iv.End())
	assert.Equal(t, "[1, 5]", iv.String())
}

func TestCompare(t *testing.T) {
	cases := map[string]struct {
		a, b     Interval[int]
		expected int
	}{
		"Equal":       {a: Of(1, 2), b: Of(1, 2), expected: 0},
		"StartFirst":  {a: Of(1, 9), b: Of(2, 3), expected: -1},
		"EndBreakTie": {a: Of(1, 2), b: Of(1, 5), expected: -1},
		"Greater":     {a: Of(2, 3), b: Of(1, 5), expected: 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.a.Compare(tc.b))
			assert.Equal(t, -tc.expected, tc.b.Compare(tc.a))
			assert.Equal(t, tc.expected == 0, tc.a.Equal(tc.b))
			assert.Equal(t, tc.expected < 0, tc.a.Less(tc.b))
		})
	}
}

func TestPredicates(t *testing.T) {
	cases := map[string]struct {
		a, b       Interval[int]
		contains   bool
		intersects bool
	}{
		"Inside":     {a: Of(1, 10), b: Of(3, 4), contains: true, intersects: true},
		"Same":       {a: Of(1, 10), b: Of(1, 10), contains: true, intersects: true},
		"Touching":   {a: Of(1, 3), b: Of(3, 5), contains: false, intersects: true},
		"Disjoint":   {a: Of(1, 3), b: Of(4, 5), contains: false, intersects: false},
		"Overlap":    {a: Of(1, 5), b: Of(4, 8), contains: false, intersects: true},
		"Surrounded": {a: Of(3, 4), b: Of(1, 10), contains: false, intersects: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.contains, tc.a.Contains(tc.b))
			assert.Equal(t, tc.intersects, tc.a.Intersects(tc.b))
			assert.Equal(t, tc.intersects, tc.b.Intersects(tc.a))
		})
	}
}

func TestUnionIntersection(t *testing.T) {
	assert.Equal(t, [2]int{1, 8}, toPairs([]Interval[int]{Of(1, 3).Union(Of(5, 8))})[0])

	iv, ok := Of(1, 5).Intersection(Of(3, 8))
	assert.True(t, ok)
	assert.True(t, iv.Equal(Of(3, 5)))

	iv, ok = Of(1, 3).Intersection(Of(3, 8))
	assert.True(t, ok)
	assert.True(t, iv.Equal(Of(3, 3)))

	_, ok = Of(1, 2).Intersection(Of(3, 8))
	assert.False(t, ok)
}

func TestDifference(t *testing.T) {
	cases := map[string]struct {
		a, b     Interval[int]
		expected [][2]int
	}{
		"Covered":    {a: Of(2, 4), b: Of(1, 5), expected: [][2]int{}},
		"Same":       {a: Of(2, 4), b: Of(2, 4), expected: [][2]int{}},
		"Disjoint":   {a: Of(1, 2), b: Of(4, 5), expected: [][2]int{{1, 2}}},
		"Split":      {a: Of(1, 5), b: Of(2, 4), expected: [][2]int{{1, 2}, {4, 5}}},
		"TrimStart":  {a: Of(1, 5), b: Of(0, 3), expected: [][2]int{{3, 5}}},
		"TrimEnd":    {a: Of(1, 5), b: Of(3, 9), expected: [][2]int{{1, 3}}},
		"SameStart":  {a: Of(1, 5), b: Of(1, 3), expected: [][2]int{{3, 5}}},
		"SameEnd":    {a: Of(1, 5), b: Of(3, 5), expected: [][2]int{{1, 3}}},
		"TouchEnd":   {a: Of(1, 5), b: Of(5, 7), expected: [][2]int{{1, 5}}},
		"TouchStart": {a: Of(1, 5), b: Of(0, 1), expected: [][2]int{{1, 5}}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := toPairs(tc.a.Difference(tc.b))
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestCustomCompare(t *testing.T) {
	// reverse order: the larger number becomes the start
	rev := func(a, b int) int { return b - a }
	iv := New(rev, 1, 5)
	assert.Equal(t, 5, iv.Start())
	assert.Equal(t, 1, iv.End())
	assert.True(t, iv.ContainsValue(3))
	assert.False(t, iv.ContainsValue(6))
}

func TestParse(t *testing.T) {
	cases := map[string]struct {
		v           any
		expected    [2]int
		expectedErr bool
	}{
		"Interval":     {v: Of(1, 2), expected: [2]int{1, 2}},
		"IntervalPtr":  {v: &Interval[int]{start: 3, end: 4, cmp: Compare[int]}, expected: [2]int{3, 4}},
		"Array":        {v: [2]int{9, 7}, expected: [2]int{7, 9}},
		"Pair":         {v: Pair[int]{0, 1}, expected: [2]int{0, 1}},
		"Slice":        {v: []int{4, 2}, expected: [2]int{2, 4}},
		"AnySlice":     {v: []any{1, 2}, expected: [2]int{1, 2}},
		"PairOfPairs":  {v: [2][2]int{{0, 1}, {2, 3}}, expectedErr: true},
		"NestedAny":    {v: []any{[]int{0, 1}, []int{2, 3}}, expectedErr: true},
		"ShortSlice":   {v: []int{1}, expectedErr: true},
		"LongSlice":    {v: []int{1, 2, 3}, expectedErr: true},
		"WrongType":    {v: "1-2", expectedErr: true},
		"ZeroInterval": {v: Interval[int]{}, expectedErr: true},
		"Nil":          {v: nil, expectedErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			iv, err := Parse(Compare[int], tc.v)
			if tc.expectedErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedInterval))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, [2]int{iv.Start(), iv.End()})
		})
	}
}

func TestParseRange(t *testing.T) {
	cases := map[string]struct {
		s           string
		expected    [2]int64
		expectedErr bool
	}{
		"Normal":      {s: "1-3", expected: [2]int64{1, 3}},
		"Reversed":    {s: "8-5", expected: [2]int64{5, 8}},
		"Single":      {s: "7", expected: [2]int64{7, 7}},
		"Negative":    {s: "-5--3", expected: [2]int64{-5, -3}},
		"NegativeLow": {s: "-5-3", expected: [2]int64{-5, 3}},
		"Spaces":      {s: " 10 - 12 ", expected: [2]int64{10, 12}},
		"Empty":       {s: "", expectedErr: true},
		"BadFrom":     {s: "a-3", expectedErr: true},
		"BadTo":       {s: "1-b", expectedErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			iv, err := ParseRange(tc.s)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, [2]int64{iv.Start(), iv.End()})
		})
	}
}
