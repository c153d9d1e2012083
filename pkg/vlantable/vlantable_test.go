package vlantable

import (
	"testing"

	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/tj/assert"
	"k8s.io/apimachinery/pkg/labels"
)

func rangeStrings(ivs []interval.Interval[int64]) []string {
	out := []string{}
	for _, iv := range ivs {
		out = append(out, iv.String())
	}
	return out
}

func TestClaim(t *testing.T) {
	cases := map[string]struct {
		initEntries       map[int64]labels.Set
		newSuccessEntries map[int64]labels.Set
		newFailedEntries  map[int64]labels.Set
		expectedEntries   int
	}{

		"Normal": {
			initEntries: initEntries,
			newSuccessEntries: map[int64]labels.Set{
				10: map[string]string{},
				11: map[string]string{},
			},
			newFailedEntries: map[int64]labels.Set{
				0:    map[string]string{},
				1:    map[string]string{},
				4095: map[string]string{},
				5000: map[string]string{},
			},
			expectedEntries: 5,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := New()

			for id, d := range tc.newSuccessEntries {
				err := r.Claim(id, d)
				assert.NoError(t, err)
			}
			for id, d := range tc.newFailedEntries {
				err := r.Claim(id, d)
				assert.Error(t, err)
			}
			// check table
			for id := range tc.initEntries {
				if !r.Has(id) {
					t.Errorf("%s expecting initEntry: %d\n", name, id)
				}
			}
			for id := range tc.newSuccessEntries {
				if !r.Has(id) {
					t.Errorf("%s expecting success claim entry: %d\n", name, id)
				}
			}
			if r.Has(5000) {
				t.Errorf("%s no expecting failed claim entry: %d\n", name, 5000)
			}
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, len(r.GetAll()))
			}
			assert.Equal(t, []string{"[0, 1]", "[10, 11]", "[4095, 4095]"}, rangeStrings(r.Claimed()))
			assert.Error(t, r.Claim(10, nil))
		})
	}
}

func TestClaimRange(t *testing.T) {
	cases := map[string]struct {
		claimed     []string
		rng         string
		expected    []string
		expectedErr bool
	}{
		"Empty": {
			rng:      "100-199",
			expected: []string{"[0, 1]", "[100, 199]", "[4095, 4095]"},
		},
		"Adjacent": {
			claimed:  []string{"100-199", "300"},
			rng:      "200-299",
			expected: []string{"[0, 1]", "[100, 300]", "[4095, 4095]"},
		},
		"Overlap": {
			claimed:     []string{"100-199"},
			rng:         "150-250",
			expected:    []string{"[0, 1]", "[100, 199]", "[4095, 4095]"},
			expectedErr: true,
		},
		"Reserved": {
			rng:         "1-10",
			expected:    []string{"[0, 1]", "[4095, 4095]"},
			expectedErr: true,
		},
		"Invalid": {
			rng:         "10-x",
			expected:    []string{"[0, 1]", "[4095, 4095]"},
			expectedErr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := New()
			for _, rng := range tc.claimed {
				assert.NoError(t, r.ClaimRange(rng, nil))
			}
			err := r.ClaimRange(tc.rng, labels.Set{"range": name})
			if tc.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, rangeStrings(r.Claimed()))
		})
	}
}

func TestRelease(t *testing.T) {
	r := New()
	assert.NoError(t, r.ClaimRange("10-20", labels.Set{"pool": "a"}))
	assert.Equal(t, 14, r.Count())

	assert.NoError(t, r.Release(15))
	assert.True(t, r.IsFree(15))
	assert.False(t, r.IsFree(14))
	assert.False(t, r.IsFree(5000))
	assert.Equal(t, []string{"[0, 1]", "[10, 14]", "[16, 20]", "[4095, 4095]"}, rangeStrings(r.Claimed()))
	assert.Equal(t, []string{"[2, 9]", "[15, 15]", "[21, 4094]"}, rangeStrings(r.Free()))

	assert.NoError(t, r.ReleaseRange("12-18"))
	assert.Equal(t, []string{"[0, 1]", "[10, 11]", "[19, 20]", "[4095, 4095]"}, rangeStrings(r.Claimed()))
	_, err := r.Get(12)
	assert.Error(t, err)

	// reserved ids cannot be released
	assert.Error(t, r.Release(0))
	assert.True(t, r.Has(0))
}

func TestClaimDynamic(t *testing.T) {
	r := New()
	id, err := r.ClaimDynamic(labels.Set{"dynamic": "true"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), id)

	assert.NoError(t, r.ClaimRange("3-4094", nil))
	_, err = r.FindFree()
	assert.Error(t, err)
	_, err = r.ClaimDynamic(nil)
	assert.Error(t, err)

	assert.NoError(t, r.Release(2000))
	id, err = r.FindFree()
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), id)
}

func TestGetByLabel(t *testing.T) {
	r := New()
	assert.NoError(t, r.Claim(10, labels.Set{"pool": "a"}))
	assert.NoError(t, r.Claim(11, labels.Set{"pool": "b"}))
	assert.Error(t, r.Update(12, labels.Set{"pool": "b"}))
	assert.NoError(t, r.Update(10, labels.Set{"pool": "b"}))

	d, err := r.Get(10)
	assert.NoError(t, err)
	assert.Equal(t, labels.Set{"pool": "b"}, d)

	entries := r.GetByLabel(labels.SelectorFromSet(labels.Set{"pool": "b"}))
	assert.Equal(t, 2, len(entries))
	entries = r.GetByLabel(labels.SelectorFromSet(labels.Set{"status": "reserved"}))
	assert.Equal(t, 3, len(entries))
	assert.Equal(t, 5, len(r.GetAll()))
}
