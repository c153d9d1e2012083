package iprange

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/intervaltree"
	"go4.org/netipx"
)

// Set is a set of IP addresses kept as non-overlapping address ranges.
// Addresses are discrete, so unlike a plain interval tree the bounds of a
// removed range are removed as well and ranges that follow each other without
// a gap are joined.
type Set struct {
	tree *intervaltree.IntervalTree[netip.Addr]
}

func compareAddr(a, b netip.Addr) int { return a.Compare(b) }

func New() *Set {
	return &Set{
		tree: intervaltree.New(compareAddr),
	}
}

// ParseRange reads "from-to", a CIDR prefix or a single address.
func ParseRange(s string) (netipx.IPRange, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, "/"):
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("invalid prefix %q: %w", s, err)
		}
		return netipx.RangeOfPrefix(p), nil
	case strings.Contains(s, "-"):
		return netipx.ParseIPRange(s)
	default:
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netipx.IPRange{}, fmt.Errorf("ip address %s is invalid", s)
		}
		return netipx.IPRangeFrom(addr, addr), nil
	}
}

// AddRange parses s with ParseRange and adds it to the set.
func (r *Set) AddRange(s string) error {
	ipRange, err := ParseRange(s)
	if err != nil {
		return err
	}
	r.AddIPRange(ipRange)
	return nil
}

// RemoveRange parses s with ParseRange and removes it from the set.
func (r *Set) RemoveRange(s string) error {
	ipRange, err := ParseRange(s)
	if err != nil {
		return err
	}
	r.RemoveIPRange(ipRange)
	return nil
}

// AddIPRange adds the addresses of ipRange. Invalid ranges are ignored.
func (r *Set) AddIPRange(ipRange netipx.IPRange) {
	if !ipRange.IsValid() {
		return
	}
	from, to := ipRange.From(), ipRange.To()
	// reach out to an adjacent member so both become one range
	if prev := from.Prev(); prev.IsValid() && r.tree.ContainsPoint(prev) {
		from = prev
	}
	if next := to.Next(); next.IsValid() && r.tree.ContainsPoint(next) {
		to = next
	}
	r.tree.Add(interval.New(compareAddr, from, to))
}

// RemoveIPRange removes the addresses of ipRange. Invalid ranges are ignored.
func (r *Set) RemoveIPRange(ipRange netipx.IPRange) {
	if !ipRange.IsValid() {
		return
	}
	r.tree.Remove(interval.New(compareAddr, ipRange.From(), ipRange.To()))
	// the remainders still hold the bounds of the removed range
	r.removeAddr(ipRange.From())
	r.removeAddr(ipRange.To())
}

func (r *Set) removeAddr(addr netip.Addr) {
	member, ok := r.tree.Find(addr)
	if !ok {
		return
	}
	r.tree.Remove(member)
	if member.Start().Less(addr) {
		r.tree.Add(interval.New(compareAddr, member.Start(), addr.Prev()))
	}
	if addr.Less(member.End()) {
		r.tree.Add(interval.New(compareAddr, addr.Next(), member.End()))
	}
}

// Contains returns whether addr is in the set; an invalid address is not.
func (r *Set) Contains(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	return r.tree.ContainsPoint(ip)
}

// ContainsRange returns whether all addresses of ipRange are in the set.
func (r *Set) ContainsRange(ipRange netipx.IPRange) bool {
	if !ipRange.IsValid() {
		return false
	}
	return r.tree.Contains(interval.New(compareAddr, ipRange.From(), ipRange.To()))
}

// Ranges returns the ranges of the set in ascending order.
func (r *Set) Ranges() []netipx.IPRange {
	ranges := make([]netipx.IPRange, 0, r.tree.Len())
	for iv := range r.tree.All() {
		ranges = append(ranges, netipx.IPRangeFrom(iv.Start(), iv.End()))
	}
	return ranges
}

// IPSet returns the set as an immutable netipx.IPSet.
func (r *Set) IPSet() (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	for _, ipRange := range r.Ranges() {
		b.AddRange(ipRange)
	}
	return b.IPSet()
}

// Prefixes returns the smallest list of prefixes covering the set.
func (r *Set) Prefixes() []netip.Prefix {
	var prefixes []netip.Prefix
	for _, ipRange := range r.Ranges() {
		prefixes = ipRange.AppendPrefixes(prefixes)
	}
	return prefixes
}

func (r *Set) Len() int { return r.tree.Len() }

func (r *Set) Clone() *Set {
	return &Set{tree: r.tree.Clone()}
}

func (r *Set) Equal(other *Set) bool {
	return r.tree.Equal(other.tree)
}

// Union returns a new set holding the addresses of r and other.
func (r *Set) Union(other *Set) *Set {
	out := r.Clone()
	for _, ipRange := range other.Ranges() {
		out.AddIPRange(ipRange)
	}
	return out
}

// Intersection returns a new set holding the addresses in both r and other.
func (r *Set) Intersection(other *Set) *Set {
	out := New()
	for iv := range r.tree.Intersection(other.tree).All() {
		out.AddIPRange(netipx.IPRangeFrom(iv.Start(), iv.End()))
	}
	return out
}

// Difference returns a new set holding the addresses of r that are not in
// other.
func (r *Set) Difference(other *Set) *Set {
	out := r.Clone()
	for _, ipRange := range other.Ranges() {
		out.RemoveIPRange(ipRange)
	}
	return out
}

func (r *Set) String() string {
	ranges := r.Ranges()
	s := make([]string, 0, len(ranges))
	for _, ipRange := range ranges {
		s = append(s, ipRange.String())
	}
	return "IPSet(" + strings.Join(s, ", ") + ")"
}
