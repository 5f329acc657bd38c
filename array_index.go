package phtree

// arrayIndex is the direct-address array-hypercube secondary index:
// slots[hcPos] is non-nil iff that address is occupied. This mirrors
// the teacher's fullTable, generalized from a fixed TABLE_CAPACITY==64
// array to a slice sized 2^dim (bounded by arrayIndexMaxDim so it is
// only chosen when that is cheap). Occupancy is tracked in a parallel
// bitmap rather than a running counter, and size() is derived from it
// by population count -- the same bitmap-plus-popcount relationship
// the teacher's own compressedTable.nentries() keeps commented out as
// an alternative to its `len(t.nodes)` counter
// (`//return bitCount32(t.nodeMap)`); this index takes that alternative
// rather than the counter, since it is the one popcount64 was pulled in
// to serve.
type arrayIndex struct {
	slots    []*Entry
	occupied []uint64
}

func newArrayIndex(dim int) *arrayIndex {
	n := dim2Slots(dim)
	return &arrayIndex{
		slots:    make([]*Entry, n),
		occupied: make([]uint64, (n+63)/64),
	}
}

func (a *arrayIndex) get(hcPos int) (*Entry, bool) {
	if hcPos < 0 || hcPos >= len(a.slots) {
		return nil, false
	}
	e := a.slots[hcPos]
	return e, e != nil
}

func (a *arrayIndex) getOrCreate(hcPos int, newFn func() *Entry) (*Entry, bool) {
	if e := a.slots[hcPos]; e != nil {
		return e, false
	}
	e := newFn()
	a.slots[hcPos] = e
	a.occupied[hcPos/64] |= uint64(1) << uint(hcPos%64)
	return e, true
}

func (a *arrayIndex) remove(hcPos int) (*Entry, bool) {
	e := a.slots[hcPos]
	if e == nil {
		return nil, false
	}
	a.slots[hcPos] = nil
	a.occupied[hcPos/64] &^= uint64(1) << uint(hcPos%64)
	return e, true
}

func (a *arrayIndex) size() int {
	n := 0
	for _, word := range a.occupied {
		n += popcount64(word)
	}
	return n
}

func (a *arrayIndex) forEach(fn func(*Entry) bool) {
	for _, e := range a.slots {
		if e == nil {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

func (a *arrayIndex) forEachMasked(minMask, maxMask uint64, fn func(*Entry) bool) {
	if minMask == maxMask {
		if e, ok := a.get(int(minMask)); ok {
			fn(e)
		}
		return
	}
	for hcPos, e := range a.slots {
		if e == nil {
			continue
		}
		if hcMasked(hcPos, minMask, maxMask) {
			if !fn(e) {
				return
			}
		}
	}
}

func (a *arrayIndex) firstValue() (*Entry, bool) {
	for _, e := range a.slots {
		if e != nil {
			return e, true
		}
	}
	return nil, false
}
