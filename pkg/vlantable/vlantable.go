package vlantable

import (
	"fmt"
	"sync"

	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/intervaltree"
	"k8s.io/apimachinery/pkg/labels"
)

type VLANTable interface {
	Get(id int64) (labels.Set, error)
	Claim(id int64, d labels.Set) error
	ClaimDynamic(d labels.Set) (int64, error)
	ClaimRange(rng string, d labels.Set) error
	Release(id int64) error
	ReleaseRange(rng string) error
	Update(id int64, d labels.Set) error

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)
	Claimed() []interval.Interval[int64]
	Free() []interval.Interval[int64]

	GetAll() map[int64]labels.Set
	GetByLabel(selector labels.Selector) map[int64]labels.Set
}

const maxVLAN = 4095

var initEntries = map[int64]labels.Set{
	0:       map[string]string{"type": "untagged", "status": "reserved"},
	1:       map[string]string{"type": "untagged", "status": "reserved"},
	maxVLAN: map[string]string{"type": "untagged", "status": "reserved"},
}

func New() VLANTable {
	r := &vlanTable{
		m:       new(sync.RWMutex),
		claimed: intervaltree.NewOrdered[int64](),
		labels:  map[int64]labels.Set{},
	}
	for id, d := range initEntries {
		r.add(id, d)
	}
	return r
}

// vlanTable keeps the claimed ids as intervals [id, id+1]: id+1 is the first
// id not covered, so claims of consecutive ids touch and merge, and
// releasing an id splits its interval exactly around it.
type vlanTable struct {
	m       *sync.RWMutex
	claimed *intervaltree.IntervalTree[int64]
	labels  map[int64]labels.Set
}

func span(from, to int64) interval.Interval[int64] {
	return interval.Of(from, to+1)
}

// inclusive converts a stored interval back to the ids it covers.
func inclusive(iv interval.Interval[int64]) interval.Interval[int64] {
	return interval.Of(iv.Start(), iv.End()-1)
}

func validate(id int64) error {
	switch id {
	case 0:
		return fmt.Errorf("VLAN %d is the untagged VLAN, cannot be added to the database", id)
	case 1:
		return fmt.Errorf("VLAN %d is the default VLAN, cannot be added to the database", id)
	case maxVLAN:
		return fmt.Errorf("VLAN %d is reserved, cannot be added to the database", id)
	}
	if id < 0 || id > maxVLAN {
		return fmt.Errorf("VLAN %d does not fit in the range from 0 to %d", id, maxVLAN)
	}
	return nil
}

func validateRange(rng string) (interval.Interval[int64], error) {
	iv, err := interval.ParseRange(rng)
	if err != nil {
		return iv, err
	}
	for _, id := range []int64{iv.Start(), iv.End()} {
		if err := validate(id); err != nil {
			return iv, err
		}
	}
	return iv, nil
}

func (r *vlanTable) add(id int64, d labels.Set) {
	r.claimed.Add(span(id, id))
	r.labels[id] = labels.Merge(labels.Set{}, d)
}

func (r *vlanTable) has(id int64) bool {
	return r.claimed.Contains(span(id, id))
}

func (r *vlanTable) Get(id int64) (labels.Set, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	d, ok := r.labels[id]
	if !ok {
		return nil, fmt.Errorf("no match found for: %d", id)
	}
	return d, nil
}

func (r *vlanTable) Claim(id int64, d labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	if err := validate(id); err != nil {
		return err
	}
	if r.has(id) {
		return fmt.Errorf("id %d is already claimed", id)
	}
	r.add(id, d)
	return nil
}

func (r *vlanTable) ClaimDynamic(d labels.Set) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	id, err := r.findFree()
	if err != nil {
		return 0, err
	}
	r.add(id, d)
	return id, nil
}

// ClaimRange claims every id of rng, "from-to" or a single id. Nothing is
// claimed when one of the ids is taken.
func (r *vlanTable) ClaimRange(rng string, d labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	iv, err := validateRange(rng)
	if err != nil {
		return err
	}
	req := intervaltree.From(interval.Compare[int64], span(iv.Start(), iv.End()))
	for used := range req.Intersection(r.claimed).All() {
		// claims next to the range only share a single point with it
		if used.Start() != used.End() {
			return fmt.Errorf("range %s overlaps claimed ids %s", iv, inclusive(used))
		}
	}
	for id := iv.Start(); id <= iv.End(); id++ {
		r.add(id, d)
	}
	return nil
}

func (r *vlanTable) Release(id int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	if err := validate(id); err != nil {
		return err
	}
	r.release(id, id)
	return nil
}

func (r *vlanTable) ReleaseRange(rng string) error {
	r.m.Lock()
	defer r.m.Unlock()

	iv, err := validateRange(rng)
	if err != nil {
		return err
	}
	r.release(iv.Start(), iv.End())
	return nil
}

func (r *vlanTable) release(from, to int64) {
	r.claimed.Remove(span(from, to))
	for id := from; id <= to; id++ {
		delete(r.labels, id)
	}
}

func (r *vlanTable) Update(id int64, d labels.Set) error {
	r.m.Lock()
	defer r.m.Unlock()

	if err := validate(id); err != nil {
		return err
	}
	if !r.has(id) {
		return fmt.Errorf("id %d is not claimed", id)
	}
	r.labels[id] = labels.Merge(labels.Set{}, d)
	return nil
}

func (r *vlanTable) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.labels)
}

func (r *vlanTable) Has(id int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.has(id)
}

func (r *vlanTable) IsFree(id int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return id >= 0 && id <= maxVLAN && !r.has(id)
}

func (r *vlanTable) FindFree() (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.findFree()
}

func (r *vlanTable) findFree() (int64, error) {
	free := r.free()
	if free.IsEmpty() {
		return -1, fmt.Errorf("no free entry found")
	}
	first, _ := free.First()
	return first.Start(), nil
}

func (r *vlanTable) free() *intervaltree.IntervalTree[int64] {
	return intervaltree.From(interval.Compare[int64], span(0, maxVLAN)).Difference(r.claimed)
}

// Claimed returns the claimed ids as inclusive ranges.
func (r *vlanTable) Claimed() []interval.Interval[int64] {
	r.m.RLock()
	defer r.m.RUnlock()

	return inclusiveAll(r.claimed)
}

// Free returns the free ids as inclusive ranges.
func (r *vlanTable) Free() []interval.Interval[int64] {
	r.m.RLock()
	defer r.m.RUnlock()

	return inclusiveAll(r.free())
}

func inclusiveAll(t *intervaltree.IntervalTree[int64]) []interval.Interval[int64] {
	ivs := make([]interval.Interval[int64], 0, t.Len())
	for iv := range t.All() {
		ivs = append(ivs, inclusive(iv))
	}
	return ivs
}

func (r *vlanTable) GetAll() map[int64]labels.Set {
	return r.GetByLabel(labels.Everything())
}

func (r *vlanTable) GetByLabel(selector labels.Selector) map[int64]labels.Set {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := map[int64]labels.Set{}
	for id, d := range r.labels {
		if selector.Matches(d) {
			entries[id] = d
		}
	}
	return entries
}
