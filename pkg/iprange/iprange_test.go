package iprange

import (
	"math/rand"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tj/assert"
	"go4.org/netipx"
)

func rangeStrings(r *Set) []string {
	out := []string{}
	for _, ipRange := range r.Ranges() {
		out = append(out, ipRange.String())
	}
	return out
}

func TestAddRemove(t *testing.T) {
	cases := map[string]struct {
		add         []string
		remove      []string
		expected    []string
		expectedErr bool
	}{
		"Range": {
			add:      []string{"10.0.0.10-10.0.0.20"},
			expected: []string{"10.0.0.10-10.0.0.20"},
		},
		"Prefix": {
			add:      []string{"10.0.0.0/30"},
			expected: []string{"10.0.0.0-10.0.0.3"},
		},
		"UnmaskedPrefix": {
			add:      []string{"10.0.0.5/30"},
			expected: []string{"10.0.0.4-10.0.0.7"},
		},
		"Address": {
			add:      []string{"10.0.0.1"},
			expected: []string{"10.0.0.1-10.0.0.1"},
		},
		"Adjacent": {
			add:      []string{"10.0.0.1-10.0.0.5", "10.0.0.6-10.0.0.9"},
			expected: []string{"10.0.0.1-10.0.0.9"},
		},
		"AdjacentBackward": {
			add:      []string{"10.0.0.6-10.0.0.9", "10.0.0.1-10.0.0.5"},
			expected: []string{"10.0.0.1-10.0.0.9"},
		},
		"Fill": {
			add:      []string{"10.0.0.1-10.0.0.4", "10.0.0.6-10.0.0.9", "10.0.0.5"},
			expected: []string{"10.0.0.1-10.0.0.9"},
		},
		"Split": {
			add:      []string{"10.0.0.0/24"},
			remove:   []string{"10.0.0.10-10.0.0.20"},
			expected: []string{"10.0.0.0-10.0.0.9", "10.0.0.21-10.0.0.255"},
		},
		"RemoveAddress": {
			add:      []string{"10.0.0.1-10.0.0.3"},
			remove:   []string{"10.0.0.2"},
			expected: []string{"10.0.0.1-10.0.0.1", "10.0.0.3-10.0.0.3"},
		},
		"RemoveBound": {
			add:      []string{"10.0.0.1-10.0.0.3"},
			remove:   []string{"10.0.0.3-10.0.0.9"},
			expected: []string{"10.0.0.1-10.0.0.2"},
		},
		"RemoveAll": {
			add:      []string{"10.0.0.1-10.0.0.3", "10.0.1.0/24"},
			remove:   []string{"10.0.0.0/16"},
			expected: []string{},
		},
		"IPv6": {
			add:      []string{"2001:db8::/126", "10.0.0.1"},
			remove:   []string{"2001:db8::1"},
			expected: []string{"10.0.0.1-10.0.0.1", "2001:db8::-2001:db8::", "2001:db8::2-2001:db8::3"},
		},
		"InvalidRange": {
			add:         []string{"10.0.0.20-10.0.0.10"},
			expectedErr: true,
			expected:    []string{},
		},
		"InvalidAddress": {
			add:         []string{"10.0.0.256"},
			expectedErr: true,
			expected:    []string{},
		},
		"InvalidPrefix": {
			add:         []string{"10.0.0.0/33"},
			expectedErr: true,
			expected:    []string{},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := New()
			for _, s := range tc.add {
				err := r.AddRange(s)
				if tc.expectedErr {
					assert.Error(t, err)
				} else {
					assert.NoError(t, err)
				}
			}
			for _, s := range tc.remove {
				assert.NoError(t, r.RemoveRange(s))
			}
			if diff := cmp.Diff(tc.expected, rangeStrings(r)); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestContains(t *testing.T) {
	r := New()
	assert.NoError(t, r.AddRange("10.0.0.10-10.0.0.20"))

	assert.True(t, r.Contains("10.0.0.10"))
	assert.True(t, r.Contains("10.0.0.20"))
	assert.False(t, r.Contains("10.0.0.21"))
	assert.False(t, r.Contains("not an ip"))
	assert.True(t, r.ContainsRange(netipx.MustParseIPRange("10.0.0.12-10.0.0.14")))
	assert.False(t, r.ContainsRange(netipx.MustParseIPRange("10.0.0.12-10.0.0.24")))
	assert.False(t, r.ContainsRange(netipx.IPRange{}))
}

func TestSetOperations(t *testing.T) {
	x, y := New(), New()
	assert.NoError(t, x.AddRange("10.0.0.0-10.0.0.10"))
	assert.NoError(t, x.AddRange("10.0.0.20-10.0.0.30"))
	assert.NoError(t, y.AddRange("10.0.0.5-10.0.0.25"))

	assert.Equal(t, "IPSet(10.0.0.0-10.0.0.30)", x.Union(y).String())
	assert.Equal(t, "IPSet(10.0.0.5-10.0.0.10, 10.0.0.20-10.0.0.25)", x.Intersection(y).String())
	assert.Equal(t, "IPSet(10.0.0.0-10.0.0.4, 10.0.0.26-10.0.0.30)", x.Difference(y).String())
	assert.Equal(t, "IPSet(10.0.0.11-10.0.0.19)", y.Difference(x).String())

	// the operands are left untouched
	assert.Equal(t, "IPSet(10.0.0.0-10.0.0.10, 10.0.0.20-10.0.0.30)", x.String())
	assert.Equal(t, 2, x.Len())

	z := New()
	assert.NoError(t, z.AddRange("10.0.0.11-10.0.0.19"))
	assert.True(t, x.Union(z).Equal(x.Union(y)))
}

func TestPrefixes(t *testing.T) {
	r := New()
	assert.NoError(t, r.AddRange("10.0.0.0-10.0.0.5"))
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/30"),
		netip.MustParsePrefix("10.0.0.4/31"),
	}, r.Prefixes())
}

// TestAgainstIPSet applies random operations to a Set and to a
// netipx.IPSetBuilder and expects both to end up with the same ranges.
func TestAgainstIPSet(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	addr := func() netip.Addr {
		return netip.AddrFrom4([4]byte{10, 0, 0, byte(rnd.Intn(64))})
	}
	for i := 0; i < 50; i++ {
		r := New()
		var b netipx.IPSetBuilder
		for j := 0; j < 20; j++ {
			from, to := addr(), addr()
			if to.Less(from) {
				from, to = to, from
			}
			ipRange := netipx.IPRangeFrom(from, to)
			if rnd.Intn(3) == 0 {
				r.RemoveIPRange(ipRange)
				b.RemoveRange(ipRange)
			} else {
				r.AddIPRange(ipRange)
				b.AddRange(ipRange)
			}
		}
		want, err := b.IPSet()
		assert.NoError(t, err)
		got, err := r.IPSet()
		assert.NoError(t, err)
		assert.True(t, want.Equal(got), "want %v, got %v", want.Ranges(), got.Ranges())
		assert.Equal(t, want.Ranges(), r.Ranges())
	}
}
